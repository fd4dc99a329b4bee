package commands

import (
	"context"
	"time"

	"luna/internal/core/domain/model/task"
)

// CreateTaskFromRequestCommandHandler turns an approved book request into a
// PENDING task.
type CreateTaskFromRequestCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  TaskLifecycle
	now        func() time.Time
}

func NewCreateTaskFromRequestCommandHandler(
	uowFactory UoWFactory,
	lifecycle TaskLifecycle,
	now func() time.Time,
) CreateTaskFromRequestCommandHandler {
	return CreateTaskFromRequestCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		now:        now,
	}
}

// Handle rejects unknown or retired waypoints and a request that already has
// an active task, then stores the task with its creation history row.
func (h CreateTaskFromRequestCommandHandler) Handle(ctx context.Context, cmd CreateTaskFromRequestCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	ref, err := task.RequestReference(cmd.RequestID())
	if err != nil {
		return err
	}

	details := cmd.Details()
	t, err := task.NewTask(
		cmd.TaskID(),
		ref,
		cmd.Type(),
		cmd.Priority(),
		cmd.Source(),
		cmd.Destination(),
		details.Stops,
		details.Metadata,
		h.now(),
	)
	if err != nil {
		return err
	}

	return createTask(ctx, h.uowFactory, h.lifecycle, t, details)
}
