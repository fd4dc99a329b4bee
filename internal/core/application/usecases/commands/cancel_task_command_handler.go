package commands

import (
	"context"
	"errors"

	"luna/internal/pkg/errs"
)

// cancelAttempts bounds how often a cancel re-reads a task that a dispatcher
// moved between the read and the conditional write.
const cancelAttempts = 3

// CancelTaskCommandHandler cancels PENDING, QUEUED and ASSIGNED tasks. An
// IN_PROGRESS or finished task yields an errs.IllegalTransitionError and is
// left untouched.
type CancelTaskCommandHandler struct {
	lifecycle TaskLifecycle
}

func NewCancelTaskCommandHandler(lifecycle TaskLifecycle) CancelTaskCommandHandler {
	return CancelTaskCommandHandler{lifecycle: lifecycle}
}

func (h CancelTaskCommandHandler) Handle(ctx context.Context, cmd CancelTaskCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	reason := cmd.Reason()
	if reason == "" {
		reason = "cancelled"
	}

	var err error
	for attempt := 1; attempt <= cancelAttempts; attempt++ {
		_, err = h.lifecycle.Cancel(ctx, cmd.TaskID(), cmd.Actor(), reason)
		if !errors.Is(err, errs.ErrConflict) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
	}
	return err
}
