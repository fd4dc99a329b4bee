package commands_test

import (
	"testing"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCancelTaskCommand(t *testing.T) {
	taskID := kernel.NewUUID()
	actor := kernel.NewUUID()

	cmd, err := commands.NewCancelTaskCommand(taskID, &actor, "  student withdrew ")

	require.NoError(t, err)
	assert.True(t, cmd.TaskID().IsEqual(taskID))
	assert.True(t, cmd.Actor().IsEqual(actor))
	assert.Equal(t, "student withdrew", cmd.Reason())

	_, err = commands.NewCancelTaskCommand(kernel.UUID{}, nil, "")
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	var zero commands.CancelTaskCommand
	require.ErrorIs(t, zero.Validate(), commands.ErrCancelTaskCommandIsNotConstructed)
}

func TestCancelTaskCommandHandler_Handle(t *testing.T) {
	t.Run("should default the reason", func(t *testing.T) {
		ctx := t.Context()
		taskID := kernel.NewUUID()
		cmd, err := commands.NewCancelTaskCommand(taskID, nil, "")
		require.NoError(t, err)

		lc := new(MockLifecycle)
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "cancelled").Return(nil, nil).Once()

		err = commands.NewCancelTaskCommandHandler(lc).Handle(ctx, cmd)

		require.NoError(t, err)
		lc.AssertExpectations(t)
	})

	t.Run("should surface an illegal transition", func(t *testing.T) {
		ctx := t.Context()
		taskID := kernel.NewUUID()
		cmd, err := commands.NewCancelTaskCommand(taskID, nil, "too late")
		require.NoError(t, err)

		lc := new(MockLifecycle)
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "too late").
			Return(nil, errs.NewIllegalTransitionError("task", "IN_PROGRESS", "CANCELLED")).Once()

		err = commands.NewCancelTaskCommandHandler(lc).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
	})

	t.Run("should reread after a concurrent status change", func(t *testing.T) {
		ctx := t.Context()
		taskID := kernel.NewUUID()
		cmd, err := commands.NewCancelTaskCommand(taskID, nil, "patron left")
		require.NoError(t, err)

		lc := new(MockLifecycle)
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "patron left").
			Return(nil, errs.NewConflictError("task", taskID.String(), "PENDING")).Once()
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "patron left").Return(nil, nil).Once()

		err = commands.NewCancelTaskCommandHandler(lc).Handle(ctx, cmd)

		require.NoError(t, err)
		lc.AssertExpectations(t)
		lc.AssertNumberOfCalls(t, "Cancel", 2)
	})

	t.Run("should give up on a task that keeps changing", func(t *testing.T) {
		ctx := t.Context()
		taskID := kernel.NewUUID()
		cmd, err := commands.NewCancelTaskCommand(taskID, nil, "patron left")
		require.NoError(t, err)

		lc := new(MockLifecycle)
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "patron left").
			Return(nil, errs.NewConflictError("task", taskID.String(), "QUEUED"))

		err = commands.NewCancelTaskCommandHandler(lc).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		lc.AssertNumberOfCalls(t, "Cancel", 3)
	})

	t.Run("should not retry an illegal transition", func(t *testing.T) {
		ctx := t.Context()
		taskID := kernel.NewUUID()
		cmd, err := commands.NewCancelTaskCommand(taskID, nil, "")
		require.NoError(t, err)

		lc := new(MockLifecycle)
		lc.On("Cancel", ctx, taskID, (*kernel.UUID)(nil), "cancelled").
			Return(nil, errs.NewIllegalTransitionError("task", "CANCELLED", "CANCELLED"))

		err = commands.NewCancelTaskCommandHandler(lc).Handle(ctx, cmd)

		require.ErrorIs(t, err, errs.ErrIllegalTransition)
		lc.AssertNumberOfCalls(t, "Cancel", 1)
	})

	t.Run("should reject an unconstructed command", func(t *testing.T) {
		lc := new(MockLifecycle)

		err := commands.NewCancelTaskCommandHandler(lc).Handle(t.Context(), commands.CancelTaskCommand{})

		require.ErrorIs(t, err, commands.ErrCancelTaskCommandIsNotConstructed)
		lc.AssertNotCalled(t, "Cancel")
	})
}
