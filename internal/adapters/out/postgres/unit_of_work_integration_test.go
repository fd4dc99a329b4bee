package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "luna/internal/adapters/out/postgres"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/ports"
	"luna/internal/pkg/errs"

	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite exercises the GORM unit of work against a
// real PostgreSQL database.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	dsn       string
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	listener  *pq.Listener
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.dsn = dsn

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)

	suite.listener = pq.NewListener(dsn, 50*time.Millisecond, time.Second, nil)
	suite.Require().NoError(suite.listener.Listen(postgres_adapter.DefaultDispatchChannel))
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec(
		"TRUNCATE TABLE delivery_tasks, task_waypoints, task_status_history, robots, robot_status_logs, waypoints",
	).Error
	suite.Require().NoError(err)
	suite.drainNotifications()
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.listener != nil {
		_ = suite.listener.Close()
	}
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_TransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "Multiple begin calls should be safe")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_CommitSpansRepositories() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	r := suite.newRobot()
	suite.Require().NoError(uow.RobotRepository().Add(ctx, r, robot.NewStatusLog(r, time.Now())))

	t := suite.newTask()
	created, err := task.NewCreationHistory(t, nil, "created")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.TaskRepository().Add(ctx, t, created))

	// visible inside the transaction, not outside it
	_, err = uow.TaskRepository().Get(ctx, t.ID())
	suite.Require().NoError(err)
	_, err = suite.factory.Create().TaskRepository().Get(ctx, t.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	suite.Require().NoError(uow.Commit(ctx))

	reader := suite.factory.Create()
	_, err = reader.TaskRepository().Get(ctx, t.ID())
	suite.Require().NoError(err)
	_, err = reader.RobotRepository().Get(ctx, r.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_RollbackDiscardsEverything() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	t := suite.newTask()
	created, err := task.NewCreationHistory(t, nil, "created")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.TaskRepository().Add(ctx, t, created))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err = suite.factory.Create().TaskRepository().Get(ctx, t.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.assertNoNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_NotifiesDispatchOnWaitingTask() {
	ctx := context.Background()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	t := suite.newTask()
	created, err := task.NewCreationHistory(t, nil, "created")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.TaskRepository().Add(ctx, t, created))

	suite.assertNoNotification()
	suite.Require().NoError(uow.Commit(ctx))
	suite.assertNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_NoNotificationForBusyRobot() {
	ctx := context.Background()
	r := suite.newRobot()
	suite.Require().NoError(suite.factory.Create().RobotRepository().Add(ctx, r, robot.NewStatusLog(r, time.Now())))
	suite.drainNotifications()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(r.Claim())
	suite.Require().NoError(uow.RobotRepository().CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, time.Now())))
	suite.Require().NoError(uow.Commit(ctx))

	suite.assertNoNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_NoNotificationForIdleHeartbeat() {
	ctx := context.Background()
	r := suite.newRobot()
	suite.Require().NoError(suite.factory.Create().RobotRepository().Add(ctx, r, robot.NewStatusLog(r, time.Now())))
	suite.drainNotifications()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(r.ApplyHeartbeat(robot.Heartbeat{RobotID: r.ID(), Status: robot.Idle, At: time.Now()}, false))
	suite.Require().NoError(uow.RobotRepository().CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, time.Now())))
	suite.Require().NoError(uow.Commit(ctx))

	suite.assertNoNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_NotifiesWhenRobotRecovers() {
	ctx := context.Background()
	r := suite.newRobot()
	suite.Require().NoError(suite.factory.Create().RobotRepository().Add(ctx, r, robot.NewStatusLog(r, time.Now())))
	suite.Require().NoError(r.ApplyHeartbeat(robot.Heartbeat{RobotID: r.ID(), Status: robot.Error, At: time.Now()}, false))
	suite.Require().NoError(suite.factory.Create().RobotRepository().CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, time.Now())))
	suite.drainNotifications()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(r.ApplyHeartbeat(robot.Heartbeat{RobotID: r.ID(), Status: robot.Idle, At: time.Now()}, false))
	suite.Require().NoError(uow.RobotRepository().CompareAndSwap(ctx, r, robot.Error, robot.NewStatusLog(r, time.Now())))
	suite.Require().NoError(uow.Commit(ctx))

	suite.assertNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) TestUnitOfWork_DispatchChannelDisabled() {
	ctx := context.Background()
	factory := postgres_adapter.NewGormUnitOfWorkFactory(suite.db, postgres_adapter.WithDispatchChannel(""))
	uow := factory.Create()
	suite.Require().NoError(uow.Begin(ctx))

	t := suite.newTask()
	created, err := task.NewCreationHistory(t, nil, "created")
	suite.Require().NoError(err)
	suite.Require().NoError(uow.TaskRepository().Add(ctx, t, created))
	suite.Require().NoError(uow.Commit(ctx))

	suite.assertNoNotification()
}

func (suite *UnitOfWorkIntegrationTestSuite) newTask() *task.Task {
	ref, err := task.RequestReference(kernel.NewUUID())
	suite.Require().NoError(err)
	src, err := kernel.NewLocationCode("LIB-DESK")
	suite.Require().NoError(err)
	dst, err := kernel.NewLocationCode("DORM-A")
	suite.Require().NoError(err)
	t, err := task.NewTask(kernel.NewUUID(), ref, task.StudentDelivery, task.Normal, src, dst, nil, nil, time.Now())
	suite.Require().NoError(err)
	return t
}

func (suite *UnitOfWorkIntegrationTestSuite) newRobot() *robot.Robot {
	r, err := robot.NewRobot(kernel.NewUUID(), "r-"+kernel.NewUUID().String()[:8])
	suite.Require().NoError(err)
	return r
}

func (suite *UnitOfWorkIntegrationTestSuite) assertNotification() {
	select {
	case n := <-suite.listener.Notify:
		suite.Require().NotNil(n)
		suite.Equal(postgres_adapter.DefaultDispatchChannel, n.Channel)
	case <-time.After(5 * time.Second):
		suite.Fail("expected a dispatch notification")
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) assertNoNotification() {
	select {
	case n := <-suite.listener.Notify:
		suite.Failf("unexpected dispatch notification", "%+v", n)
	case <-time.After(300 * time.Millisecond):
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) drainNotifications() {
	for {
		select {
		case <-suite.listener.Notify:
		case <-time.After(200 * time.Millisecond):
			return
		}
	}
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
