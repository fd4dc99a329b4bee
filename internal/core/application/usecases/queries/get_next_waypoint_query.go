package queries

import (
	"errors"
	"strings"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrGetNextWaypointQueryIsNotConstructed = errors.New(
	"GetNextWaypointQuery must be created via NewGetNextWaypointQuery constructor",
)

// GetNextWaypointQuery asks where a robot goes after completedCode. An empty
// completedCode asks for the first stop.
type GetNextWaypointQuery struct {
	taskID        kernel.UUID
	completedCode string
	guard         guard.ConstructorGuard
}

func NewGetNextWaypointQuery(taskID kernel.UUID, completedCode string) (GetNextWaypointQuery, error) {
	if err := taskID.Validate(); err != nil {
		return GetNextWaypointQuery{}, err
	}
	return GetNextWaypointQuery{
		taskID:        taskID,
		completedCode: strings.TrimSpace(completedCode),
		guard:         guard.NewConstructorGuard(),
	}, nil
}

func (q GetNextWaypointQuery) Validate() error {
	return q.guard.Validate(ErrGetNextWaypointQueryIsNotConstructed)
}

func (q GetNextWaypointQuery) TaskID() kernel.UUID   { return q.taskID }
func (q GetNextWaypointQuery) CompletedCode() string { return q.completedCode }

// GetNextWaypointQueryResponse carries either the next stop or Done when
// completedCode was the final stop.
type GetNextWaypointQueryResponse struct {
	Done bool
	Next *StopView
}
