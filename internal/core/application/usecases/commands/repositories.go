// Package commands contains the operations that change engine state.
// Every command is built by its constructor, validated by its handler, and
// either written through a unit of work or delegated to the lifecycle state
// machine, which owns every task status change.
package commands

import (
	"context"

	"luna/internal/core/application/lifecycle"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Handlers depend on the narrowest one they need.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	TaskRepoFactory interface {
		TaskRepository() ports.TaskRepository
	}

	RobotRepoFactory interface {
		RobotRepository() ports.RobotRepository
	}

	WaypointRepoFactory interface {
		WaypointRepository() ports.WaypointRepository
	}

	// WaypointUoW manages transactions for catalogue-only operations.
	WaypointUoW interface {
		TxManager
		WaypointRepoFactory
	}

	WaypointUoWFactory interface {
		Create() WaypointUoW
	}

	// RobotUoW manages heartbeat ingestion: the robot write plus a read of
	// the task it holds.
	RobotUoW interface {
		TxManager
		RobotRepoFactory
		TaskRepoFactory
	}

	RobotUoWFactory interface {
		Create() RobotUoW
	}

	// UoW spans every repository. Used by operations that read across
	// aggregates before delegating writes to the state machine.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   tasks := uow.TaskRepository()
	//   robots := uow.RobotRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		TaskRepoFactory
		RobotRepoFactory
		WaypointRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)

// TaskLifecycle applies task transitions with their robot coupling, history
// and notifications. It is implemented by lifecycle.StateMachine.
type TaskLifecycle interface {
	Create(ctx context.Context, t *task.Task, actor *kernel.UUID, reason string) error
	Queue(ctx context.Context, t *task.Task) error
	Assign(ctx context.Context, t *task.Task, r *robot.Robot) (lifecycle.AssignOutcome, error)
	Start(ctx context.Context, taskID kernel.UUID) (*task.Task, error)
	Complete(ctx context.Context, taskID kernel.UUID) (*task.Task, error)
	Cancel(ctx context.Context, taskID kernel.UUID, actor *kernel.UUID, reason string) (*task.Task, error)
	Fail(ctx context.Context, taskID kernel.UUID, reason string, kind ports.AlertKind) (lifecycle.FailResult, error)
	RequeueUnclaimed(ctx context.Context, taskID, robotID kernel.UUID) (*task.Task, error)
	ReleaseOrphan(ctx context.Context, robotID kernel.UUID)
}
