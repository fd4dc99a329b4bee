package ports

import (
	"context"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
)

// StatusChangeEvent is emitted after every committed task transition.
type StatusChangeEvent struct {
	TaskID    kernel.UUID
	RobotID   *kernel.UUID
	OldStatus *task.Status
	NewStatus task.Status
	Actor     *kernel.UUID
	Reason    string
	Attempt   int
	Timestamp time.Time
}

// AlertKind classifies system alerts.
type AlertKind string

const (
	AlertRetryExhausted   AlertKind = "RETRY_EXHAUSTED"
	AlertRobotFault       AlertKind = "ROBOT_FAULT"
	AlertHeartbeatMissing AlertKind = "HEARTBEAT_MISSING"
)

// SystemAlert asks operators to look at something the engine cannot resolve.
type SystemAlert struct {
	Kind      AlertKind
	TaskID    *kernel.UUID
	RobotID   *kernel.UUID
	Message   string
	Timestamp time.Time
}

// Notifier delivers events to students, staff and operators. Delivery is
// best effort: callers log failures and never roll back a committed change.
type Notifier interface {
	NotifyStatusChange(ctx context.Context, event StatusChangeEvent) error
	RaiseAlert(ctx context.Context, alert SystemAlert) error
}

// DispatchTrigger requests an extra dispatch cycle without waiting for the
// next interval. Trigger must not block.
type DispatchTrigger interface {
	Trigger()
}
