package commands

import (
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/pkg/guard"
)

var ErrCreateTaskFromRequestCommandIsNotConstructed = errors.New(
	"CreateTaskFromRequestCommand must be created via NewCreateTaskFromRequestCommand constructor",
)

// CreateTaskFromRequestCommand asks for a delivery of an approved book request.
//
// Example:
//
//	cmd, err := NewCreateTaskFromRequestCommand(
//	    kernel.NewUUID(), requestID, "", "LIB-1", "DORM-A", "HIGH", TaskDetails{})
//	if err != nil {
//	    return fmt.Errorf("invalid request task: %w", err)
//	}
//	err = handler.Handle(ctx, cmd)
type CreateTaskFromRequestCommand struct { //nolint:recvcheck //using for validation
	taskID      kernel.UUID
	requestID   kernel.UUID
	taskType    task.Type
	source      kernel.LocationCode
	destination kernel.LocationCode
	priority    task.Priority
	details     TaskDetails

	guard guard.ConstructorGuard
}

// NewCreateTaskFromRequestCommand validates the request. taskType defaults to
// STUDENT_DELIVERY and priority to NORMAL; RETURN_PICKUP is reserved for
// returns.
func NewCreateTaskFromRequestCommand(
	taskID kernel.UUID,
	requestID kernel.UUID,
	taskType string,
	source string,
	destination string,
	priority string,
	details TaskDetails,
) (CreateTaskFromRequestCommand, error) {
	cmd := CreateTaskFromRequestCommand{
		details: details.clone(),
		guard:   guard.NewConstructorGuard(),
	}

	var sourceErr, destinationErr error
	cmd.source, sourceErr = kernel.NewLocationCode(source)
	cmd.destination, destinationErr = kernel.NewLocationCode(destination)

	if err := errors.Join(
		cmd.setIDs(taskID, requestID),
		cmd.setType(taskType),
		cmd.setPriority(priority),
		sourceErr,
		destinationErr,
		validateActor(details.Actor),
	); err != nil {
		return CreateTaskFromRequestCommand{}, err
	}

	return cmd, nil
}

func (c CreateTaskFromRequestCommand) Validate() error {
	return c.guard.Validate(ErrCreateTaskFromRequestCommandIsNotConstructed)
}

func (c CreateTaskFromRequestCommand) TaskID() kernel.UUID              { return c.taskID }
func (c CreateTaskFromRequestCommand) RequestID() kernel.UUID           { return c.requestID }
func (c CreateTaskFromRequestCommand) Type() task.Type                  { return c.taskType }
func (c CreateTaskFromRequestCommand) Source() kernel.LocationCode      { return c.source }
func (c CreateTaskFromRequestCommand) Destination() kernel.LocationCode { return c.destination }
func (c CreateTaskFromRequestCommand) Priority() task.Priority          { return c.priority }
func (c CreateTaskFromRequestCommand) Details() TaskDetails             { return c.details.clone() }

func (c *CreateTaskFromRequestCommand) setIDs(taskID, requestID kernel.UUID) error {
	if err := errors.Join(taskID.Validate(), requestID.Validate()); err != nil {
		return err
	}
	c.taskID = taskID
	c.requestID = requestID
	return nil
}

func (c *CreateTaskFromRequestCommand) setType(taskType string) error {
	if taskType == "" {
		c.taskType = task.StudentDelivery
		return nil
	}
	parsed, err := task.ParseType(taskType)
	if err != nil {
		return err
	}
	if err = parsed.ValidateForRequest(); err != nil {
		return err
	}
	c.taskType = parsed
	return nil
}

func (c *CreateTaskFromRequestCommand) setPriority(priority string) error {
	parsed, err := task.ParsePriority(priority)
	if err != nil {
		return err
	}
	c.priority = parsed
	return nil
}
