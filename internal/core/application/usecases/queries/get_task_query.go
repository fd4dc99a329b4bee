package queries

import (
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrGetTaskQueryIsNotConstructed = errors.New("GetTaskQuery must be created via NewGetTaskQuery constructor")

// GetTaskQuery retrieves one task with its audit history and resolved route.
//
// Example:
//
//	query, err := NewGetTaskQuery(taskID)
//	if err != nil {
//	    return err
//	}
//	details, err := handler.Handle(ctx, query)
type GetTaskQuery struct {
	taskID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetTaskQuery(taskID kernel.UUID) (GetTaskQuery, error) {
	if err := taskID.Validate(); err != nil {
		return GetTaskQuery{}, err
	}
	return GetTaskQuery{taskID: taskID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTaskQuery) Validate() error {
	return q.guard.Validate(ErrGetTaskQueryIsNotConstructed)
}

func (q GetTaskQuery) TaskID() kernel.UUID { return q.taskID }

// GetTaskQueryResponse is the task, its history oldest first, and its route
// in traversal order.
type GetTaskQueryResponse struct {
	Task    TaskView
	History []HistoryView
	Route   []StopView
}
