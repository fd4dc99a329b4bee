package commands

import (
	"errors"
	"strings"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrCancelTaskCommandIsNotConstructed = errors.New(
	"CancelTaskCommand must be created via NewCancelTaskCommand constructor",
)

// CancelTaskCommand withdraws a task that has not started moving.
type CancelTaskCommand struct { //nolint:recvcheck //using for validation
	taskID kernel.UUID
	actor  *kernel.UUID
	reason string

	guard guard.ConstructorGuard
}

// NewCancelTaskCommand creates the command. actor is nil when the system
// cancels on its own behalf.
func NewCancelTaskCommand(taskID kernel.UUID, actor *kernel.UUID, reason string) (CancelTaskCommand, error) {
	if err := errors.Join(taskID.Validate(), validateActor(actor)); err != nil {
		return CancelTaskCommand{}, err
	}

	return CancelTaskCommand{
		taskID: taskID,
		actor:  cloneID(actor),
		reason: strings.TrimSpace(reason),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CancelTaskCommand) Validate() error {
	return c.guard.Validate(ErrCancelTaskCommandIsNotConstructed)
}

func (c CancelTaskCommand) TaskID() kernel.UUID { return c.taskID }
func (c CancelTaskCommand) Actor() *kernel.UUID { return cloneID(c.actor) }
func (c CancelTaskCommand) Reason() string      { return c.reason }
