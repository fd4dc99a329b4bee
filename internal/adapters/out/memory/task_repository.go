package memory

import (
	"cmp"
	"context"
	"slices"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/services"
	"luna/internal/pkg/errs"
)

// TaskRepository implements ports.TaskRepository over a Store.
type TaskRepository struct {
	uow *UnitOfWork
}

func (r *TaskRepository) Add(_ context.Context, t *task.Task, created *task.History) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := created.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		if _, exists := s.tasks[t.ID()]; exists {
			return errs.NewDuplicateError("task", t.ID().String())
		}
		ref := t.Reference()
		for _, other := range s.tasks {
			if !other.Status.IsTerminal() && sameID(other.RequestID, ref.RequestID()) && sameID(other.ReturnID, ref.ReturnID()) {
				return errs.NewDuplicateError("active task for "+ref.String(), other.ID.String())
			}
		}
		s.tasks[t.ID()] = t.Snapshot()
		s.history[t.ID()] = append(slices.Clip(s.history[t.ID()]), created)
		return nil
	})
}

func (r *TaskRepository) Get(_ context.Context, id kernel.UUID) (*task.Task, error) {
	var out *task.Task
	err := r.uow.read(func(s *state) error {
		snap, ok := s.tasks[id]
		if !ok {
			return errs.NewObjectNotFoundError("task", id.String())
		}
		var err error
		out, err = task.RestoreTask(snap)
		return err
	})
	return out, err
}

func (r *TaskRepository) ListPending(_ context.Context, limit int) ([]*task.Task, error) {
	tasks, err := r.filter(func(snap task.Snapshot) bool { return snap.Status.IsWaiting() })
	if err != nil {
		return nil, err
	}
	services.SortForDispatch(tasks)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	return tasks, nil
}

func (r *TaskRepository) UpdateStatus(
	_ context.Context,
	t *task.Task,
	expected task.Status,
	entry *task.History,
) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		stored, ok := s.tasks[t.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("task", t.ID().String())
		}
		if stored.Status != expected {
			return errs.NewConflictError("task", t.ID().String(), expected.String())
		}
		s.tasks[t.ID()] = t.Snapshot()
		s.history[t.ID()] = append(slices.Clip(s.history[t.ID()]), entry)
		return nil
	})
}

func (r *TaskRepository) GetActiveByRobot(_ context.Context, robotID kernel.UUID) (*task.Task, error) {
	tasks, err := r.filter(func(snap task.Snapshot) bool {
		return snap.Status.IsActive() && snap.AssignedRobot != nil && snap.AssignedRobot.IsEqual(robotID)
	})
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return nil, errs.NewObjectNotFoundError("active task of robot", robotID.String())
	}
	return tasks[0], nil
}

func (r *TaskRepository) ListActive(_ context.Context) ([]*task.Task, error) {
	tasks, err := r.filter(func(snap task.Snapshot) bool { return !snap.Status.IsTerminal() })
	if err != nil {
		return nil, err
	}
	services.SortForDispatch(tasks)
	return tasks, nil
}

func (r *TaskRepository) History(_ context.Context, taskID kernel.UUID) ([]*task.History, error) {
	var out []*task.History
	err := r.uow.read(func(s *state) error {
		if _, ok := s.tasks[taskID]; !ok {
			return errs.NewObjectNotFoundError("task", taskID.String())
		}
		out = slices.Clone(s.history[taskID])
		return nil
	})
	return out, err
}

func (r *TaskRepository) CountByStatus(_ context.Context) (map[task.Status]int, error) {
	counts := make(map[task.Status]int)
	err := r.uow.read(func(s *state) error {
		for _, snap := range s.tasks {
			counts[snap.Status]++
		}
		return nil
	})
	return counts, err
}

func (r *TaskRepository) ListByReference(_ context.Context, ref task.Reference) ([]*task.Task, error) {
	tasks, err := r.filter(func(snap task.Snapshot) bool {
		return sameID(snap.RequestID, ref.RequestID()) && sameID(snap.ReturnID, ref.ReturnID())
	})
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		if c := cmp.Compare(a.Attempt(), b.Attempt()); c != 0 {
			return c
		}
		return a.CreatedAt().Compare(b.CreatedAt())
	})
	return tasks, nil
}

func (r *TaskRepository) filter(keep func(task.Snapshot) bool) ([]*task.Task, error) {
	var out []*task.Task
	err := r.uow.read(func(s *state) error {
		for _, snap := range s.tasks {
			if !keep(snap) {
				continue
			}
			t, err := task.RestoreTask(snap)
			if err != nil {
				return err
			}
			out = append(out, t)
		}
		return nil
	})
	return out, err
}

func sameID(a, b *kernel.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
