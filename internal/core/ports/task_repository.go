// Package ports defines the contracts between the dispatch engine and its
// infrastructure: repositories, the unit of work, and outbound notifications.
package ports

import (
	"context"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
)

// TaskRepository is the Task Store. Every status change is a conditional
// write paired with exactly one history row.
type TaskRepository interface {
	// Add persists a new task, its stops and its creation history row.
	Add(ctx context.Context, t *task.Task, created *task.History) error

	// Get returns the task or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*task.Task, error)

	// ListPending returns up to limit PENDING and QUEUED tasks ordered by
	// priority desc, created_at asc, id asc.
	ListPending(ctx context.Context, limit int) ([]*task.Task, error)

	// UpdateStatus writes t only if the stored status still equals expected,
	// and appends entry in the same transaction. Zero matched rows yield an
	// errs.ConflictError and nothing is written.
	UpdateStatus(ctx context.Context, t *task.Task, expected task.Status, entry *task.History) error

	// GetActiveByRobot returns the ASSIGNED or IN_PROGRESS task held by the
	// robot, or an errs.ObjectNotFoundError.
	GetActiveByRobot(ctx context.Context, robotID kernel.UUID) (*task.Task, error)

	// ListActive returns every task that is not terminal, in dispatch order.
	ListActive(ctx context.Context) ([]*task.Task, error)

	// History returns the audit trail of a task, oldest first.
	History(ctx context.Context, taskID kernel.UUID) ([]*task.History, error)

	// CountByStatus counts tasks per status. Statuses with no tasks are omitted.
	CountByStatus(ctx context.Context) (map[task.Status]int, error)

	// ListByReference returns every attempt for a request or return, oldest first.
	ListByReference(ctx context.Context, ref task.Reference) ([]*task.Task, error)
}
