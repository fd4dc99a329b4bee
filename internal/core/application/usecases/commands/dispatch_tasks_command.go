package commands

import (
	"errors"

	"luna/internal/pkg/guard"
)

var ErrDispatchTasksCommandIsNotConstructed = errors.New(
	"DispatchTasksCommand must be created via NewDispatchTasksCommand constructor",
)

// DispatchTasksCommand runs one dispatch cycle: waiting tasks are matched to
// eligible robots in priority and age order.
//
// Example:
//
//	cmd := NewDispatchTasksCommand()
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    log.Printf("dispatch cycle failed: %v", err)
//	}
//	log.Printf("assigned %d tasks", result.Assigned)
type DispatchTasksCommand struct {
	guard guard.ConstructorGuard
}

func NewDispatchTasksCommand() DispatchTasksCommand {
	return DispatchTasksCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *DispatchTasksCommand) Validate() error {
	return c.guard.Validate(ErrDispatchTasksCommandIsNotConstructed)
}
