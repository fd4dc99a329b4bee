package notify

import (
	"context"

	"luna/internal/core/ports"

	"go.uber.org/zap"
)

// LogNotifier writes every event to the structured log. It never fails and
// is always part of the fan-out.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(zap.String("component", "notifier"))}
}

func (n *LogNotifier) NotifyStatusChange(_ context.Context, event ports.StatusChangeEvent) error {
	m := newStatusChangeMessage(event)
	fields := []zap.Field{
		zap.String("task_id", m.TaskID),
		zap.String("new_status", m.NewStatus),
		zap.Int("attempt", m.Attempt),
		zap.Time("at", m.Timestamp),
	}
	if m.OldStatus != nil {
		fields = append(fields, zap.String("old_status", *m.OldStatus))
	}
	if m.RobotID != nil {
		fields = append(fields, zap.String("robot_id", *m.RobotID))
	}
	if m.Reason != "" {
		fields = append(fields, zap.String("reason", m.Reason))
	}
	n.logger.Info("task status changed", fields...)
	return nil
}

func (n *LogNotifier) RaiseAlert(_ context.Context, alert ports.SystemAlert) error {
	m := newAlertMessage(alert)
	fields := []zap.Field{
		zap.String("kind", m.Kind),
		zap.String("message", m.Message),
		zap.Time("at", m.Timestamp),
	}
	if m.TaskID != nil {
		fields = append(fields, zap.String("task_id", *m.TaskID))
	}
	if m.RobotID != nil {
		fields = append(fields, zap.String("robot_id", *m.RobotID))
	}
	n.logger.Warn("system alert", fields...)
	return nil
}
