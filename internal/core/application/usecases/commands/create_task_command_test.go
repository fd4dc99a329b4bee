package commands_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/policy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewCreateTaskFromRequestCommand(t *testing.T) {
	t.Run("should default type and priority", func(t *testing.T) {
		cmd, err := commands.NewCreateTaskFromRequestCommand(
			kernel.NewUUID(), kernel.NewUUID(), "", "LIB-1", "DORM-A", "", commands.TaskDetails{})

		require.NoError(t, err)
		require.NoError(t, cmd.Validate())
		assert.Equal(t, task.StudentDelivery, cmd.Type())
		assert.Equal(t, task.Normal, cmd.Priority())
		assert.Equal(t, "LIB-1", cmd.Source().String())
		assert.Equal(t, "DORM-A", cmd.Destination().String())
	})

	t.Run("should reject return pickup for a request", func(t *testing.T) {
		_, err := commands.NewCreateTaskFromRequestCommand(
			kernel.NewUUID(), kernel.NewUUID(), "RETURN_PICKUP", "LIB-1", "DORM-A", "HIGH", commands.TaskDetails{})

		require.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("should join every validation error", func(t *testing.T) {
		_, err := commands.NewCreateTaskFromRequestCommand(
			kernel.UUID{}, kernel.NewUUID(), "TELEPORT", "", "DORM-A", "SOMEDAY", commands.TaskDetails{})

		require.Error(t, err)
		assert.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "TELEPORT")
		assert.Contains(t, err.Error(), "SOMEDAY")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var cmd commands.CreateTaskFromRequestCommand
		require.ErrorIs(t, cmd.Validate(), commands.ErrCreateTaskFromRequestCommandIsNotConstructed)
	})
}

func TestNewCreateTaskFromReturnCommand(t *testing.T) {
	returnID := kernel.NewUUID()

	cmd, err := commands.NewCreateTaskFromReturnCommand(kernel.NewUUID(), returnID, " LIB-1 ", "URGENT", commands.TaskDetails{})

	require.NoError(t, err)
	assert.True(t, cmd.ReturnID().IsEqual(returnID))
	assert.Equal(t, "LIB-1", cmd.PickupLocation().String())
	assert.Equal(t, task.Urgent, cmd.Priority())

	_, err = commands.NewCreateTaskFromReturnCommand(kernel.NewUUID(), returnID, "", "", commands.TaskDetails{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestCreateTaskFromRequestCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	taskID := kernel.NewUUID()
	requestID := kernel.NewUUID()
	actor := kernel.NewUUID()
	w1, err := waypoint.NewWaypoint(kernel.NewUUID(), "Desk", kernel.MustLocationCode("LIB-1"), 0, 0, 0, nil, now)
	require.NoError(t, err)
	w2, err := waypoint.NewWaypoint(kernel.NewUUID(), "Lobby", kernel.MustLocationCode("DORM-A"), 1, 1, 0, nil, now)
	require.NoError(t, err)

	cmd, err := commands.NewCreateTaskFromRequestCommand(taskID, requestID, "STUDENT_DELIVERY", "LIB-1", "DORM-A", "HIGH",
		commands.TaskDetails{
			Stops:    []task.Stop{{WaypointID: w1.ID(), SequenceOrder: 0}, {WaypointID: w2.ID(), SequenceOrder: 1}},
			Metadata: map[string]any{"book_id": "b-42"},
			Actor:    &actor,
			Reason:   "request approved",
		})
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	waypointRepo := new(MockWaypointRepository)
	uow := new(MockUoW)
	lc := new(MockLifecycle)

	matchesTask := mock.MatchedBy(func(tk *task.Task) bool {
		return tk.ID().IsEqual(taskID) &&
			tk.Status() == task.Pending &&
			tk.Priority() == task.High &&
			tk.Reference().RequestID().IsEqual(requestID) &&
			len(tk.Stops()) == 2 &&
			tk.CreatedAt().Equal(now)
	})

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("ListByReference", ctx, mock.AnythingOfType("task.Reference")).Return([]*task.Task{}, nil).Once(),
		uow.On("WaypointRepository").Return(waypointRepo).Once(),
		waypointRepo.On("ListByIDs", ctx, []kernel.UUID{w1.ID(), w2.ID()}).Return([]*waypoint.Waypoint{w1, w2}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
		lc.On("Create", ctx, matchesTask, &actor, "request approved").Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateTaskFromRequestCommandHandler(factory, lc, clock)
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	factory.AssertExpectations(t)
	uow.AssertExpectations(t)
	taskRepo.AssertExpectations(t)
	waypointRepo.AssertExpectations(t)
	lc.AssertExpectations(t)
}

func TestCreateTaskFromRequestCommandHandler_Handle_RejectsRetiredAndUnknownWaypoints(t *testing.T) {
	ctx := t.Context()
	retired, err := waypoint.NewWaypoint(kernel.NewUUID(), "Old desk", kernel.MustLocationCode("LIB-OLD"), 0, 0, 0, nil, now)
	require.NoError(t, err)
	require.NoError(t, retired.Retire())
	unknown := kernel.NewUUID()

	cmd, err := commands.NewCreateTaskFromRequestCommand(kernel.NewUUID(), kernel.NewUUID(), "", "LIB-1", "DORM-A", "",
		commands.TaskDetails{Stops: []task.Stop{{WaypointID: retired.ID(), SequenceOrder: 0}, {WaypointID: unknown, SequenceOrder: 1}}})
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	waypointRepo := new(MockWaypointRepository)
	uow := new(MockUoW)
	lc := new(MockLifecycle)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TaskRepository").Return(taskRepo).Once()
	taskRepo.On("ListByReference", ctx, mock.Anything).Return([]*task.Task{}, nil).Once()
	uow.On("WaypointRepository").Return(waypointRepo).Once()
	waypointRepo.On("ListByIDs", ctx, mock.Anything).Return([]*waypoint.Waypoint{retired}, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	err = commands.NewCreateTaskFromRequestCommandHandler(factory, lc, clock).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrValidation)
	assert.Contains(t, err.Error(), "retired")
	assert.Contains(t, err.Error(), unknown.String())
	lc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTaskFromReturnCommandHandler_Handle_RejectsSecondActiveTask(t *testing.T) {
	ctx := t.Context()
	returnID := kernel.NewUUID()
	ref, err := task.ReturnReference(returnID)
	require.NoError(t, err)
	existing, err := task.NewTask(kernel.NewUUID(), ref, task.ReturnPickup, task.Normal,
		kernel.MustLocationCode("LIB-1"), kernel.MustLocationCode("LIB-RETURNS"), nil, nil, now)
	require.NoError(t, err)

	cmd, err := commands.NewCreateTaskFromReturnCommand(kernel.NewUUID(), returnID, "LIB-1", "", commands.TaskDetails{})
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	uow := new(MockUoW)
	lc := new(MockLifecycle)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("ListByReference", ctx, ref).Return([]*task.Task{existing}, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateTaskFromReturnCommandHandler(factory, lc, kernel.MustLocationCode("LIB-RETURNS"), clock)
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrConflict)
	assert.Contains(t, err.Error(), "active task for return "+returnID.String())
	lc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// gatedUoW holds every caller in Rollback until all of them got there, so
// each creator has finished its read-only checks before any task is written.
type gatedUoW struct {
	commands.UoW
	gate *sync.WaitGroup
}

func (u gatedUoW) Rollback(ctx context.Context) error {
	err := u.UoW.Rollback(ctx)
	u.gate.Done()
	u.gate.Wait()
	return err
}

func TestCreateTaskFromReturnCommandHandler_Handle_ConcurrentCreatesKeepOneActiveTask(t *testing.T) {
	e := newEngine(t, policy.Default())
	returnID := kernel.NewUUID()

	const writers = 4
	var gate sync.WaitGroup
	gate.Add(writers)
	store := e.store
	handler := commands.NewCreateTaskFromReturnCommandHandler(
		funcUoWFactory(func() commands.UoW { return gatedUoW{UoW: store.Create(), gate: &gate} }),
		e.machine, kernel.MustLocationCode("LIB-RETURNS"), e.clock.Now)

	results := make(chan error, writers)
	for i := 0; i < writers; i++ {
		go func() {
			cmd, err := commands.NewCreateTaskFromReturnCommand(kernel.NewUUID(), returnID, "SHELF-A", "", commands.TaskDetails{})
			if err != nil {
				gate.Done()
				results <- err
				return
			}
			results <- handler.Handle(t.Context(), cmd)
		}()
	}

	var created, conflicts int
	for i := 0; i < writers; i++ {
		err := <-results
		if err == nil {
			created++
			continue
		}
		require.ErrorIs(t, err, errs.ErrConflict)
		conflicts++
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, conflicts)

	ref, err := task.ReturnReference(returnID)
	require.NoError(t, err)
	tasks, err := e.store.Create().TaskRepository().ListByReference(t.Context(), ref)
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestCreateTaskFromReturnCommandHandler_Handle_UsesDropLocation(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewCreateTaskFromReturnCommand(kernel.NewUUID(), kernel.NewUUID(), "DORM-B", "LOW", commands.TaskDetails{})
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	uow := new(MockUoW)
	lc := new(MockLifecycle)

	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TaskRepository").Return(taskRepo).Once()
	taskRepo.On("ListByReference", ctx, mock.Anything).Return(nil, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()
	lc.On("Create", ctx, mock.MatchedBy(func(tk *task.Task) bool {
		return tk.Type() == task.ReturnPickup &&
			tk.Source().String() == "DORM-B" &&
			tk.Destination().String() == "LIB-RETURNS" &&
			tk.Priority() == task.Low
	}), (*kernel.UUID)(nil), "").Return(errors.New("store unavailable")).Once()

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCreateTaskFromReturnCommandHandler(factory, lc, kernel.MustLocationCode("LIB-RETURNS"), clock)
	err = handler.Handle(ctx, cmd)

	require.EqualError(t, err, "store unavailable")
	lc.AssertExpectations(t)
}
