package commands

import (
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/pkg/guard"
)

var ErrCreateTaskFromReturnCommandIsNotConstructed = errors.New(
	"CreateTaskFromReturnCommand must be created via NewCreateTaskFromReturnCommand constructor",
)

// CreateTaskFromReturnCommand asks for a pickup of a returned book. The
// destination is the handler's configured drop location.
type CreateTaskFromReturnCommand struct { //nolint:recvcheck //using for validation
	taskID   kernel.UUID
	returnID kernel.UUID
	pickup   kernel.LocationCode
	priority task.Priority
	details  TaskDetails

	guard guard.ConstructorGuard
}

func NewCreateTaskFromReturnCommand(
	taskID kernel.UUID,
	returnID kernel.UUID,
	pickupLocation string,
	priority string,
	details TaskDetails,
) (CreateTaskFromReturnCommand, error) {
	cmd := CreateTaskFromReturnCommand{
		details: details.clone(),
		guard:   guard.NewConstructorGuard(),
	}

	var pickupErr, priorityErr error
	cmd.pickup, pickupErr = kernel.NewLocationCode(pickupLocation)
	cmd.priority, priorityErr = task.ParsePriority(priority)

	if err := errors.Join(
		taskID.Validate(),
		returnID.Validate(),
		pickupErr,
		priorityErr,
		validateActor(details.Actor),
	); err != nil {
		return CreateTaskFromReturnCommand{}, err
	}

	cmd.taskID = taskID
	cmd.returnID = returnID
	return cmd, nil
}

func (c CreateTaskFromReturnCommand) Validate() error {
	return c.guard.Validate(ErrCreateTaskFromReturnCommandIsNotConstructed)
}

func (c CreateTaskFromReturnCommand) TaskID() kernel.UUID                 { return c.taskID }
func (c CreateTaskFromReturnCommand) ReturnID() kernel.UUID               { return c.returnID }
func (c CreateTaskFromReturnCommand) PickupLocation() kernel.LocationCode { return c.pickup }
func (c CreateTaskFromReturnCommand) Priority() task.Priority             { return c.priority }
func (c CreateTaskFromReturnCommand) Details() TaskDetails                { return c.details.clone() }
