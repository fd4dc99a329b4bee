// Package postgres provides the GORM-based Unit of Work over the task store,
// the robot registry and the waypoint catalogue.
//
// A unit of work wraps one database transaction. Repositories obtained from
// it run inside that transaction when one is active and against the plain
// connection otherwise:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.TaskRepository().UpdateStatus(ctx, t, expected, entry); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Aggregates written through the repositories are tracked. When a commit
// leaves a task waiting or a robot idle, the unit of work issues a
// pg_notify on the dispatch channel inside the same transaction, so other
// engine instances listening on it wake their dispatcher only once the
// change is visible.
package postgres

import (
	"context"

	"luna/internal/adapters/out/postgres/robotrepo"
	"luna/internal/adapters/out/postgres/taskrepo"
	"luna/internal/adapters/out/postgres/waypointrepo"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/ports"

	"gorm.io/gorm"
)

// DefaultDispatchChannel is the LISTEN/NOTIFY channel used for dispatch wake-ups.
const DefaultDispatchChannel = "luna_dispatch"

// trackedAggregate represents an aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate any
}

// Option configures a GormUnitOfWorkFactory.
type Option func(*GormUnitOfWorkFactory)

// WithDispatchChannel sets the notification channel. An empty name disables
// commit-time notifications.
func WithDispatchChannel(name string) Option {
	return func(f *GormUnitOfWorkFactory) {
		f.channel = name
	}
}

// GormUnitOfWorkFactory creates UnitOfWork instances over one GORM connection pool.
type GormUnitOfWorkFactory struct {
	db      *gorm.DB
	channel string
}

func NewGormUnitOfWorkFactory(db *gorm.DB, opts ...Option) *GormUnitOfWorkFactory {
	f := &GormUnitOfWorkFactory{
		db:      db,
		channel: DefaultDispatchChannel,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create produces a new UnitOfWork with its own transaction state and
// aggregate tracking.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		channel:           f.channel,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork coordinates one database transaction and tracks the
// aggregates written during it.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	channel           string
	trackedAggregates []trackedAggregate
}

// Begin starts a transaction. Calling Begin twice is a no-op.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		err := uow.tx.Error
		uow.tx = nil
		return err
	}

	uow.trackedAggregates = uow.trackedAggregates[:0]
	return nil
}

// Commit makes the transaction's changes permanent.
//
// Returns gorm.ErrInvalidTransaction if no transaction is active. If the
// wake-up notification fails the transaction is rolled back.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	tx := uow.tx
	uow.tx = nil

	if uow.channel != "" && uow.wakesDispatcher() {
		if err := tx.Exec("SELECT pg_notify(?, ?)", uow.channel, "").Error; err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

// Rollback discards the transaction's changes.
//
// Returns gorm.ErrInvalidTransaction if no transaction is active.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	uow.trackedAggregates = uow.trackedAggregates[:0]
	return err
}

func (uow *GormUnitOfWork) TaskRepository() ports.TaskRepository {
	return taskrepo.NewGormTaskRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) RobotRepository() ports.RobotRepository {
	return robotrepo.NewGormRobotRepository(uow.conn(), uow)
}

func (uow *GormUnitOfWork) WaypointRepository() ports.WaypointRepository {
	return waypointrepo.NewGormWaypointRepository(uow.conn(), uow)
}

// TrackAggregate registers an aggregate written within this unit of work.
// Repositories call it after each successful write.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate any) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// wakesDispatcher reports whether the transaction left work for the
// dispatcher: a task waiting for a robot or a robot that became free to
// take one. Repositories only track robots whose status changed.
func (uow *GormUnitOfWork) wakesDispatcher() bool {
	for _, tracked := range uow.trackedAggregates {
		switch a := tracked.Aggregate.(type) {
		case *task.Task:
			if a.Status().IsWaiting() {
				return true
			}
		case *robot.Robot:
			if a.Status() == robot.Idle {
				return true
			}
		}
	}
	return false
}

// Migrate creates or updates the engine's tables and indexes.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&waypointrepo.WaypointDTO{},
		&robotrepo.RobotDTO{},
		&robotrepo.StatusLogDTO{},
		&taskrepo.TaskDTO{},
		&taskrepo.TaskWaypointDTO{},
		&taskrepo.HistoryDTO{},
	)
	if err != nil {
		return err
	}
	return taskrepo.CreateIndexes(db)
}
