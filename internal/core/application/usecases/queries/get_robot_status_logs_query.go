package queries

import (
	"errors"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"
)

const (
	DefaultStatusLogLimit = 50
	MaxStatusLogLimit     = 1000
)

var ErrGetRobotStatusLogsQueryIsNotConstructed = errors.New(
	"GetRobotStatusLogsQuery must be created via NewGetRobotStatusLogsQuery constructor",
)

// GetRobotStatusLogsQuery retrieves a robot's telemetry log, newest first.
type GetRobotStatusLogsQuery struct {
	robotID kernel.UUID
	limit   int
	guard   guard.ConstructorGuard
}

// NewGetRobotStatusLogsQuery creates the query. A zero limit means
// DefaultStatusLogLimit.
func NewGetRobotStatusLogsQuery(robotID kernel.UUID, limit int) (GetRobotStatusLogsQuery, error) {
	if limit == 0 {
		limit = DefaultStatusLogLimit
	}
	var limitErr error
	if limit < 1 || limit > MaxStatusLogLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxStatusLogLimit)
	}
	if err := errors.Join(robotID.Validate(), limitErr); err != nil {
		return GetRobotStatusLogsQuery{}, err
	}
	return GetRobotStatusLogsQuery{robotID: robotID, limit: limit, guard: guard.NewConstructorGuard()}, nil
}

func (q GetRobotStatusLogsQuery) Validate() error {
	return q.guard.Validate(ErrGetRobotStatusLogsQueryIsNotConstructed)
}

func (q GetRobotStatusLogsQuery) RobotID() kernel.UUID { return q.robotID }
func (q GetRobotStatusLogsQuery) Limit() int           { return q.limit }

type StatusLogView struct {
	Status     string
	Location   *string
	Battery    *float64
	SensorData map[string]any
	RecordedAt time.Time
}
