package commands_test

import (
	"context"
	"time"

	"luna/internal/core/application/lifecycle"
	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

var now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func ptr[T any](v T) *T { return &v }

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) Add(ctx context.Context, t *task.Task, created *task.History) error {
	args := m.Called(ctx, t, created)
	return args.Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListPending(ctx context.Context, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateStatus(ctx context.Context, t *task.Task, expected task.Status, entry *task.History) error {
	args := m.Called(ctx, t, expected, entry)
	return args.Error(0)
}

func (m *MockTaskRepository) GetActiveByRobot(ctx context.Context, robotID kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, robotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) ListActive(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) History(ctx context.Context, taskID kernel.UUID) ([]*task.History, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.History), args.Error(1)
}

func (m *MockTaskRepository) CountByStatus(ctx context.Context) (map[task.Status]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[task.Status]int), args.Error(1)
}

func (m *MockTaskRepository) ListByReference(ctx context.Context, ref task.Reference) ([]*task.Task, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

type MockWaypointRepository struct{ mock.Mock }

func (m *MockWaypointRepository) Add(ctx context.Context, w *waypoint.Waypoint) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWaypointRepository) Update(ctx context.Context, w *waypoint.Waypoint) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWaypointRepository) Get(ctx context.Context, id kernel.UUID) (*waypoint.Waypoint, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waypoint.Waypoint), args.Error(1)
}

func (m *MockWaypointRepository) GetByCode(ctx context.Context, code kernel.LocationCode) (*waypoint.Waypoint, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waypoint.Waypoint), args.Error(1)
}

func (m *MockWaypointRepository) ListByIDs(ctx context.Context, ids []kernel.UUID) ([]*waypoint.Waypoint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*waypoint.Waypoint), args.Error(1)
}

func (m *MockWaypointRepository) List(ctx context.Context, includeRetired bool) ([]*waypoint.Waypoint, error) {
	args := m.Called(ctx, includeRetired)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*waypoint.Waypoint), args.Error(1)
}

// MockUoW satisfies every unit of work interface of the commands package.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) TaskRepository() ports.TaskRepository {
	args := m.Called()
	return args.Get(0).(ports.TaskRepository)
}

func (m *MockUoW) RobotRepository() ports.RobotRepository {
	args := m.Called()
	return args.Get(0).(ports.RobotRepository)
}

func (m *MockUoW) WaypointRepository() ports.WaypointRepository {
	args := m.Called()
	return args.Get(0).(ports.WaypointRepository)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockWaypointUoWFactory struct{ mock.Mock }

func (m *MockWaypointUoWFactory) Create() commands.WaypointUoW {
	args := m.Called()
	return args.Get(0).(commands.WaypointUoW)
}

type MockLifecycle struct{ mock.Mock }

func (m *MockLifecycle) Create(ctx context.Context, t *task.Task, actor *kernel.UUID, reason string) error {
	args := m.Called(ctx, t, actor, reason)
	return args.Error(0)
}

func (m *MockLifecycle) Queue(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockLifecycle) Assign(ctx context.Context, t *task.Task, r *robot.Robot) (lifecycle.AssignOutcome, error) {
	args := m.Called(ctx, t, r)
	return args.Get(0).(lifecycle.AssignOutcome), args.Error(1)
}

func (m *MockLifecycle) Start(ctx context.Context, taskID kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockLifecycle) Complete(ctx context.Context, taskID kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockLifecycle) Cancel(ctx context.Context, taskID kernel.UUID, actor *kernel.UUID, reason string) (*task.Task, error) {
	args := m.Called(ctx, taskID, actor, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockLifecycle) Fail(ctx context.Context, taskID kernel.UUID, reason string, kind ports.AlertKind) (lifecycle.FailResult, error) {
	args := m.Called(ctx, taskID, reason, kind)
	return args.Get(0).(lifecycle.FailResult), args.Error(1)
}

func (m *MockLifecycle) RequeueUnclaimed(ctx context.Context, taskID, robotID kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, taskID, robotID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockLifecycle) ReleaseOrphan(ctx context.Context, robotID kernel.UUID) {
	m.Called(ctx, robotID)
}

type MockTrigger struct{ mock.Mock }

func (m *MockTrigger) Trigger() {
	m.Called()
}
