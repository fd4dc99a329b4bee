package queries

import (
	"errors"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrListRobotsQueryIsNotConstructed = errors.New("ListRobotsQuery must be created via NewListRobotsQuery constructor")

// ListRobotsQuery retrieves the registry ordered by robot name.
type ListRobotsQuery struct {
	guard guard.ConstructorGuard
}

func NewListRobotsQuery() ListRobotsQuery {
	return ListRobotsQuery{guard: guard.NewConstructorGuard()}
}

func (q ListRobotsQuery) Validate() error {
	return q.guard.Validate(ErrListRobotsQueryIsNotConstructed)
}

// RobotView is the read model of a robot. Eligible tells whether the next
// dispatch cycle would consider it under the current policy.
type RobotView struct {
	ID            kernel.UUID
	Name          string
	Status        string
	Location      *string
	Battery       *float64
	LastHeartbeat *time.Time
	SensorData    map[string]any
	Eligible      bool
}
