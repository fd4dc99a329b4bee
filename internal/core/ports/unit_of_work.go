package ports

import (
	"context"
)

// UnitOfWorkFactory hands out a fresh UnitOfWork per operation. Instances are
// never shared between goroutines.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork groups task, robot and waypoint writes into one transaction.
// Repositories returned before Begin read outside any transaction, which is
// how the query side uses them.
type UnitOfWork interface {
	Begin(ctx context.Context) error

	// Commit fails when no transaction is open.
	Commit(ctx context.Context) error

	// Rollback fails when no transaction is open. Callers defer it right
	// after Begin and discard its error once Commit has run.
	Rollback(ctx context.Context) error

	TaskRepository() TaskRepository
	RobotRepository() RobotRepository
	WaypointRepository() WaypointRepository
}
