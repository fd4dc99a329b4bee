package commands

import (
	"errors"

	"luna/internal/pkg/guard"
)

var ErrDetectStaleRobotsCommandIsNotConstructed = errors.New(
	"DetectStaleRobotsCommand must be created via NewDetectStaleRobotsCommand constructor",
)

// DetectStaleRobotsCommand runs one watchdog pass over robots that hold a task.
type DetectStaleRobotsCommand struct {
	guard guard.ConstructorGuard
}

func NewDetectStaleRobotsCommand() DetectStaleRobotsCommand {
	return DetectStaleRobotsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

func (c *DetectStaleRobotsCommand) Validate() error {
	return c.guard.Validate(ErrDetectStaleRobotsCommandIsNotConstructed)
}
