package commands

import (
	"context"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
)

// CreateTaskFromReturnCommandHandler turns an initiated return into a
// RETURN_PICKUP task ending at the library's drop location.
type CreateTaskFromReturnCommandHandler struct {
	uowFactory   UoWFactory
	lifecycle    TaskLifecycle
	dropLocation kernel.LocationCode
	now          func() time.Time
}

func NewCreateTaskFromReturnCommandHandler(
	uowFactory UoWFactory,
	lifecycle TaskLifecycle,
	dropLocation kernel.LocationCode,
	now func() time.Time,
) CreateTaskFromReturnCommandHandler {
	return CreateTaskFromReturnCommandHandler{
		uowFactory:   uowFactory,
		lifecycle:    lifecycle,
		dropLocation: dropLocation,
		now:          now,
	}
}

func (h CreateTaskFromReturnCommandHandler) Handle(ctx context.Context, cmd CreateTaskFromReturnCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	ref, err := task.ReturnReference(cmd.ReturnID())
	if err != nil {
		return err
	}

	details := cmd.Details()
	t, err := task.NewTask(
		cmd.TaskID(),
		ref,
		task.ReturnPickup,
		cmd.Priority(),
		cmd.PickupLocation(),
		h.dropLocation,
		details.Stops,
		details.Metadata,
		h.now(),
	)
	if err != nil {
		return err
	}

	return createTask(ctx, h.uowFactory, h.lifecycle, t, details)
}
