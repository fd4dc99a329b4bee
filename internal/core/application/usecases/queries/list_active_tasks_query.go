package queries

import (
	"errors"

	"luna/internal/pkg/guard"
)

var ErrListActiveTasksQueryIsNotConstructed = errors.New(
	"ListActiveTasksQuery must be created via NewListActiveTasksQuery constructor",
)

// ListActiveTasksQuery retrieves every task that has not reached a terminal
// status, in dispatch order, together with the per-status queue depth.
type ListActiveTasksQuery struct {
	guard guard.ConstructorGuard
}

func NewListActiveTasksQuery() ListActiveTasksQuery {
	return ListActiveTasksQuery{guard: guard.NewConstructorGuard()}
}

func (q ListActiveTasksQuery) Validate() error {
	return q.guard.Validate(ErrListActiveTasksQueryIsNotConstructed)
}

type ListActiveTasksQueryResponse struct {
	Tasks []TaskView
	// Counts holds every status, terminal ones included, keyed by name.
	Counts map[string]int
}
