package robotrepo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"luna/internal/adapters/out/postgres/robotrepo"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
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

// RobotRepositoryIntegrationTestSuite runs the robot registry against a real
// PostgreSQL container.
type RobotRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *robotrepo.GormRobotRepository
	tracker    *MockAggregateTracker
	now        time.Time
}

func (suite *RobotRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&robotrepo.RobotDTO{}, &robotrepo.StatusLogDTO{}))
}

func (suite *RobotRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE robots, robot_status_logs").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	suite.repository = robotrepo.NewGormRobotRepository(suite.db, suite.tracker)
	suite.now = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
}

func (suite *RobotRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *RobotRepositoryIntegrationTestSuite) TestAdd_RoundTripsTelemetry() {
	ctx := context.Background()
	r := suite.register(ctx, "r-01", robot.Idle, "LIB-DESK", 80, suite.now)

	got, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)

	suite.Equal("r-01", got.Name())
	suite.Equal(robot.Idle, got.Status())
	suite.Require().NotNil(got.Location())
	suite.Equal("LIB-DESK", got.Location().String())
	suite.Require().NotNil(got.Battery())
	suite.InDelta(80, *got.Battery(), 0.0001)
	suite.Require().NotNil(got.LastHeartbeat())
	suite.True(got.LastHeartbeat().Equal(suite.now))
	suite.Equal(map[string]any{"lidar": "ok"}, got.SensorData())

	logs, err := suite.repository.StatusLogs(ctx, r.ID(), 10)
	suite.Require().NoError(err)
	suite.Len(logs, 1)
}

func (suite *RobotRepositoryIntegrationTestSuite) TestAdd_DuplicateName_ReturnsConflict() {
	ctx := context.Background()
	suite.register(ctx, "r-01", robot.Idle, "LIB-DESK", 80, suite.now)

	twin, err := robot.NewRobot(kernel.NewUUID(), "r-01")
	suite.Require().NoError(err)
	err = suite.repository.Add(ctx, twin, robot.NewStatusLog(twin, suite.now))

	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *RobotRepositoryIntegrationTestSuite) TestCompareAndSwap() {
	ctx := context.Background()
	r := suite.register(ctx, "r-01", robot.Idle, "LIB-DESK", 80, suite.now)

	suite.Require().NoError(r.Claim())
	suite.Require().NoError(suite.repository.CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, suite.now)))

	rival, err := suite.repository.Get(ctx, r.ID())
	suite.Require().NoError(err)
	suite.Equal(robot.Busy, rival.Status())

	err = suite.repository.CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, suite.now))
	suite.Require().ErrorIs(err, errs.ErrConflict)

	logs, err := suite.repository.StatusLogs(ctx, r.ID(), 0)
	suite.Require().NoError(err)
	suite.Len(logs, 2)
	suite.Equal(robot.Busy, logs[0].Status)
}

func (suite *RobotRepositoryIntegrationTestSuite) TestSwapStatus_KeepsNewerTelemetry() {
	ctx := context.Background()
	listed := suite.register(ctx, "r-01", robot.Idle, "LIB-DESK", 80, suite.now)

	later := suite.now.Add(5 * time.Second)
	reported, err := suite.repository.Get(ctx, listed.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(reported.ApplyHeartbeat(suite.heartbeat(listed.ID(), "", robot.Idle, "DORM-B", 40, later), false))
	suite.Require().NoError(suite.repository.CompareAndSwap(ctx, reported, robot.Idle, robot.NewStatusLog(reported, later)))

	suite.Require().NoError(listed.Claim())
	suite.Require().NoError(suite.repository.SwapStatus(ctx, listed, robot.Idle, robot.NewStatusLog(listed, later)))

	got, err := suite.repository.Get(ctx, listed.ID())
	suite.Require().NoError(err)
	suite.Equal(robot.Busy, got.Status())
	suite.Require().NotNil(got.Location())
	suite.Equal("DORM-B", got.Location().String())
	suite.Require().NotNil(got.Battery())
	suite.InDelta(40, *got.Battery(), 0.0001)
	suite.Require().NotNil(got.LastHeartbeat())
	suite.True(got.LastHeartbeat().Equal(later))

	err = suite.repository.SwapStatus(ctx, listed, robot.Idle, robot.NewStatusLog(listed, later))
	suite.Require().ErrorIs(err, errs.ErrConflict)
}

func (suite *RobotRepositoryIntegrationTestSuite) TestListIdleEligible_Filters() {
	ctx := context.Background()
	fresh := suite.now.Add(-30 * time.Second)

	suite.register(ctx, "r-b", robot.Idle, "LIB-DESK", 60, suite.now)
	suite.register(ctx, "r-a", robot.Idle, "SHELF-A", 15.5, fresh)
	suite.register(ctx, "r-low", robot.Idle, "LIB-DESK", 15, suite.now)
	suite.register(ctx, "r-stale", robot.Idle, "LIB-DESK", 90, fresh.Add(-time.Second))
	suite.register(ctx, "r-busy", robot.Busy, "LIB-DESK", 90, suite.now)

	noBattery, err := robot.NewRobot(kernel.NewUUID(), "r-unknown")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, noBattery, robot.NewStatusLog(noBattery, suite.now)))

	eligible, err := suite.repository.ListIdleEligible(ctx, fresh, 15)
	suite.Require().NoError(err)
	suite.Equal([]string{"r-a", "r-b"}, names(eligible))

	holding, err := suite.repository.ListHolding(ctx)
	suite.Require().NoError(err)
	suite.Equal([]string{"r-busy"}, names(holding))

	all, err := suite.repository.List(ctx)
	suite.Require().NoError(err)
	suite.Len(all, 6)
	suite.Equal("r-a", all[0].Name())
}

func (suite *RobotRepositoryIntegrationTestSuite) TestStatusLogs_NewestFirstWithLimit() {
	ctx := context.Background()
	r := suite.register(ctx, "r-01", robot.Idle, "LIB-DESK", 80, suite.now)

	for i := 1; i <= 3; i++ {
		at := suite.now.Add(time.Duration(i) * time.Second)
		hb := suite.heartbeat(r.ID(), "r-01", robot.Idle, fmt.Sprintf("SHELF-%d", i), 80, at)
		suite.Require().NoError(r.ApplyHeartbeat(hb, false))
		suite.Require().NoError(suite.repository.CompareAndSwap(ctx, r, robot.Idle, robot.NewStatusLog(r, at)))
	}

	logs, err := suite.repository.StatusLogs(ctx, r.ID(), 2)
	suite.Require().NoError(err)
	suite.Require().Len(logs, 2)
	suite.Equal("SHELF-3", logs[0].Location.String())
	suite.Equal("SHELF-2", logs[1].Location.String())
}

func (suite *RobotRepositoryIntegrationTestSuite) TestGet_Unknown_ReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *RobotRepositoryIntegrationTestSuite) register(
	ctx context.Context,
	name string,
	status robot.Status,
	location string,
	battery float64,
	at time.Time,
) *robot.Robot {
	r, err := robot.NewRobotFromHeartbeat(suite.heartbeat(kernel.NewUUID(), name, status, location, battery, at))
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.Add(ctx, r, robot.NewStatusLog(r, at)))
	return r
}

func (suite *RobotRepositoryIntegrationTestSuite) heartbeat(
	id kernel.UUID,
	name string,
	status robot.Status,
	location string,
	battery float64,
	at time.Time,
) robot.Heartbeat {
	code, err := kernel.NewLocationCode(location)
	suite.Require().NoError(err)
	return robot.Heartbeat{
		RobotID:    id,
		Name:       name,
		Status:     status,
		Location:   &code,
		Battery:    &battery,
		SensorData: map[string]any{"lidar": "ok"},
		At:         at,
	}
}

func names(robots []*robot.Robot) []string {
	out := make([]string, 0, len(robots))
	for _, r := range robots {
		out = append(out, r.Name())
	}
	return out
}

func TestRobotRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(RobotRepositoryIntegrationTestSuite))
}
