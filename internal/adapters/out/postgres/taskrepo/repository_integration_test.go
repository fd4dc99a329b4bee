package taskrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"luna/internal/adapters/out/postgres/taskrepo"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// TaskRepositoryIntegrationTestSuite runs the task repository against a real
// PostgreSQL container.
type TaskRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *taskrepo.GormTaskRepository
	tracker    *MockAggregateTracker
	base       time.Time
}

func (suite *TaskRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(
		&taskrepo.TaskDTO{},
		&taskrepo.TaskWaypointDTO{},
		&taskrepo.HistoryDTO{},
	))
	suite.Require().NoError(taskrepo.CreateIndexes(db))
}

func (suite *TaskRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec(
		"TRUNCATE TABLE delivery_tasks, task_waypoints, task_status_history",
	).Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = taskrepo.NewGormTaskRepository(suite.db, suite.tracker)
	suite.base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *TaskRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *TaskRepositoryIntegrationTestSuite) TestAdd_PersistsTaskRouteAndHistory() {
	ctx := context.Background()
	w1, w2 := kernel.NewUUID(), kernel.NewUUID()
	t := suite.addTask(ctx, task.High, suite.base,
		task.Stop{WaypointID: w2, SequenceOrder: 2},
		task.Stop{WaypointID: w1, SequenceOrder: 1},
	)

	got, err := suite.repository.Get(ctx, t.ID())
	suite.Require().NoError(err)

	suite.Equal(t.ID(), got.ID())
	suite.Equal(task.Pending, got.Status())
	suite.Equal(task.High, got.Priority())
	suite.Equal(task.ReturnPickup, got.Type())
	suite.True(got.Reference().IsEqual(t.Reference()))
	suite.Equal("SHELF-A", got.Source().String())
	suite.Equal("LIB-RETURNS", got.Destination().String())
	suite.Equal(map[string]any{"barcode": "39015"}, got.Metadata())
	suite.True(got.CreatedAt().Equal(suite.base))
	suite.ElementsMatch([]task.Stop{
		{WaypointID: w1, SequenceOrder: 1},
		{WaypointID: w2, SequenceOrder: 2},
	}, got.Stops())

	history, err := suite.repository.History(ctx, t.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	suite.Nil(history[0].OldStatus())
	suite.Equal(task.Pending, history[0].NewStatus())

	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", t.ID(), t)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestAdd_DuplicateID_ReturnsConflict() {
	ctx := context.Background()
	t := suite.addTask(ctx, task.Normal, suite.base)
	created, err := task.NewCreationHistory(t, nil, "again")
	suite.Require().NoError(err)

	err = suite.repository.Add(ctx, t, created)

	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestAdd_ConcurrentSameReference_OneWins() {
	ctx := context.Background()
	first := suite.newTask(task.Normal, suite.base)

	const writers = 6
	errCh := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			t, err := task.NewTask(
				kernel.NewUUID(), first.Reference(), first.Type(), first.Priority(),
				first.Source(), first.Destination(), nil, nil, suite.base,
			)
			if err != nil {
				errCh <- err
				return
			}
			created, err := task.NewCreationHistory(t, nil, "created")
			if err != nil {
				errCh <- err
				return
			}
			errCh <- suite.repository.Add(ctx, t, created)
		}()
	}
	wg.Wait()
	close(errCh)

	var added, conflicts int
	for err := range errCh {
		if err == nil {
			added++
			continue
		}
		suite.Require().ErrorIs(err, errs.ErrConflict)
		conflicts++
	}
	suite.Equal(1, added)
	suite.Equal(writers-1, conflicts)

	tasks, err := suite.repository.ListByReference(ctx, first.Reference())
	suite.Require().NoError(err)
	suite.Len(tasks, 1)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestAdd_TerminalTaskFreesReference() {
	ctx := context.Background()
	first := suite.addTask(ctx, task.Normal, suite.base)
	suite.transition(ctx, first, task.Pending, func(t *task.Task) error { return t.Cancel(suite.base) })

	again, err := task.NewTask(
		kernel.NewUUID(), first.Reference(), first.Type(), first.Priority(),
		first.Source(), first.Destination(), nil, nil, suite.base.Add(time.Minute),
	)
	suite.Require().NoError(err)
	created, err := task.NewCreationHistory(again, nil, "created")
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Add(ctx, again, created))
}

func (suite *TaskRepositoryIntegrationTestSuite) TestGet_Unknown_ReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestListPending_DispatchOrder() {
	ctx := context.Background()
	normalOld := suite.addTask(ctx, task.Normal, suite.base)
	urgent := suite.addTask(ctx, task.Urgent, suite.base.Add(time.Minute))
	normalNew := suite.addTask(ctx, task.Normal, suite.base.Add(2*time.Minute))
	queued := suite.addTask(ctx, task.Low, suite.base)
	suite.transition(ctx, queued, task.Pending, func(t *task.Task) error { return t.Queue() })
	cancelled := suite.addTask(ctx, task.Urgent, suite.base)
	suite.transition(ctx, cancelled, task.Pending, func(t *task.Task) error { return t.Cancel(suite.base) })

	pending, err := suite.repository.ListPending(ctx, 0)
	suite.Require().NoError(err)
	suite.Equal(
		[]kernel.UUID{urgent.ID(), normalOld.ID(), normalNew.ID(), queued.ID()},
		ids(pending),
	)

	limited, err := suite.repository.ListPending(ctx, 2)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{urgent.ID(), normalOld.ID()}, ids(limited))
}

func (suite *TaskRepositoryIntegrationTestSuite) TestUpdateStatus_ConditionalWrite() {
	ctx := context.Background()
	t := suite.addTask(ctx, task.Normal, suite.base)
	robotID := kernel.NewUUID()

	suite.transition(ctx, t, task.Pending, func(t *task.Task) error { return t.Assign(robotID) })

	stale, err := suite.repository.Get(ctx, t.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(stale.Start(suite.base))
	entry := suite.history(stale, task.Pending, "stale writer")

	err = suite.repository.UpdateStatus(ctx, stale, task.Pending, entry)
	suite.Require().ErrorIs(err, errs.ErrConflict)

	got, err := suite.repository.Get(ctx, t.ID())
	suite.Require().NoError(err)
	suite.Equal(task.Assigned, got.Status())
	suite.Require().NotNil(got.AssignedRobot())
	suite.Equal(robotID, *got.AssignedRobot())

	history, err := suite.repository.History(ctx, t.ID())
	suite.Require().NoError(err)
	suite.Len(history, 2)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestUpdateStatus_UnknownTask_ReturnsNotFound() {
	ctx := context.Background()
	t := suite.newTask(task.Normal, suite.base)
	suite.Require().NoError(t.Queue())

	err := suite.repository.UpdateStatus(ctx, t, task.Pending, suite.history(t, task.Pending, ""))

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestActiveQueries() {
	ctx := context.Background()
	robotID := kernel.NewUUID()

	held := suite.addTask(ctx, task.Normal, suite.base)
	suite.transition(ctx, held, task.Pending, func(t *task.Task) error { return t.Assign(robotID) })
	suite.transition(ctx, held, task.Assigned, func(t *task.Task) error { return t.Start(suite.base) })
	waiting := suite.addTask(ctx, task.High, suite.base)
	done := suite.addTask(ctx, task.Normal, suite.base)
	suite.transition(ctx, done, task.Pending, func(t *task.Task) error { return t.Cancel(suite.base) })

	active, err := suite.repository.GetActiveByRobot(ctx, robotID)
	suite.Require().NoError(err)
	suite.Equal(held.ID(), active.ID())
	suite.Equal(task.InProgress, active.Status())
	suite.NotNil(active.StartedAt())

	_, err = suite.repository.GetActiveByRobot(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	open, err := suite.repository.ListActive(ctx)
	suite.Require().NoError(err)
	suite.Equal([]kernel.UUID{waiting.ID(), held.ID()}, ids(open))

	counts, err := suite.repository.CountByStatus(ctx)
	suite.Require().NoError(err)
	suite.Equal(map[task.Status]int{
		task.Pending:    1,
		task.InProgress: 1,
		task.Cancelled:  1,
	}, counts)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestHistory_OrderedAndUnknownTask() {
	ctx := context.Background()
	t := suite.addTask(ctx, task.Normal, suite.base)
	suite.transition(ctx, t, task.Pending, func(t *task.Task) error { return t.Queue() })
	suite.transition(ctx, t, task.Queued, func(t *task.Task) error { return t.Cancel(suite.base) })

	history, err := suite.repository.History(ctx, t.ID())
	suite.Require().NoError(err)
	suite.Require().Len(history, 3)
	suite.Equal(task.Pending, history[0].NewStatus())
	suite.Equal(task.Queued, history[1].NewStatus())
	suite.Equal(task.Cancelled, history[2].NewStatus())
	suite.Equal(task.Queued, *history[2].OldStatus())

	_, err = suite.repository.History(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *TaskRepositoryIntegrationTestSuite) TestListByReference_AttemptOrder() {
	ctx := context.Background()
	first := suite.addTask(ctx, task.Normal, suite.base)
	robotID := kernel.NewUUID()
	suite.transition(ctx, first, task.Pending, func(t *task.Task) error { return t.Assign(robotID) })
	suite.transition(ctx, first, task.Assigned, func(t *task.Task) error { return t.Fail(suite.base) })

	retry, err := first.NewRetry(kernel.NewUUID(), suite.base.Add(time.Second))
	suite.Require().NoError(err)
	created, err := task.NewCreationHistory(retry, nil, "retry")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, retry, created))
	suite.addTask(ctx, task.Normal, suite.base)

	tasks, err := suite.repository.ListByReference(ctx, first.Reference())
	suite.Require().NoError(err)
	suite.Require().Len(tasks, 2)
	suite.Equal(first.ID(), tasks[0].ID())
	suite.Equal(retry.ID(), tasks[1].ID())
	suite.Equal(1, tasks[1].Attempt())
	suite.Require().NotNil(tasks[1].RetryOf())
	suite.Equal(first.ID(), *tasks[1].RetryOf())
}

func (suite *TaskRepositoryIntegrationTestSuite) TestReferenceCheckConstraint() {
	err := suite.db.Exec(
		`INSERT INTO delivery_tasks (id, type, priority, status, source, destination, attempt, created_at)
		 VALUES (gen_random_uuid(), 'TRANSFER', 2, 'PENDING', 'A', 'B', 0, now())`,
	).Error

	suite.Require().Error(err)
	suite.Contains(err.Error(), "chk_delivery_tasks_reference")
}

func (suite *TaskRepositoryIntegrationTestSuite) newTask(priority task.Priority, createdAt time.Time, stops ...task.Stop) *task.Task {
	ref, err := task.ReturnReference(kernel.NewUUID())
	suite.Require().NoError(err)
	source, err := kernel.NewLocationCode("SHELF-A")
	suite.Require().NoError(err)
	destination, err := kernel.NewLocationCode("LIB-RETURNS")
	suite.Require().NoError(err)

	t, err := task.NewTask(
		kernel.NewUUID(), ref, task.ReturnPickup, priority,
		source, destination, stops,
		map[string]any{"barcode": "39015"},
		createdAt,
	)
	suite.Require().NoError(err)
	return t
}

func (suite *TaskRepositoryIntegrationTestSuite) addTask(ctx context.Context, priority task.Priority, createdAt time.Time, stops ...task.Stop) *task.Task {
	t := suite.newTask(priority, createdAt, stops...)
	created, err := task.NewCreationHistory(t, nil, "created")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, t, created))
	return t
}

func (suite *TaskRepositoryIntegrationTestSuite) transition(ctx context.Context, t *task.Task, from task.Status, apply func(*task.Task) error) {
	suite.Require().NoError(apply(t))
	suite.Require().NoError(suite.repository.UpdateStatus(ctx, t, from, suite.history(t, from, "")))
}

func (suite *TaskRepositoryIntegrationTestSuite) history(t *task.Task, from task.Status, reason string) *task.History {
	entry, err := task.NewHistory(kernel.NewUUID(), t.ID(), &from, t.Status(), nil, suite.base, reason)
	suite.Require().NoError(err)
	return entry
}

func ids(tasks []*task.Task) []kernel.UUID {
	out := make([]kernel.UUID, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID())
	}
	return out
}

func TestTaskRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(TaskRepositoryIntegrationTestSuite))
}
