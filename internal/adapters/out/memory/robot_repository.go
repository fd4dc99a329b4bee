package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/pkg/errs"
)

// RobotRepository implements ports.RobotRepository over a Store.
type RobotRepository struct {
	uow *UnitOfWork
}

func (r *RobotRepository) Add(_ context.Context, rb *robot.Robot, log robot.StatusLog) error {
	if err := rb.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		if _, exists := s.robots[rb.ID()]; exists {
			return errs.NewDuplicateError("robot", rb.ID().String())
		}
		for _, other := range s.robots {
			if other.Name == rb.Name() {
				return errs.NewDuplicateError("robot name", rb.Name())
			}
		}
		s.robots[rb.ID()] = rb.Snapshot()
		s.logs[rb.ID()] = append(slices.Clip(s.logs[rb.ID()]), log)
		return nil
	})
}

func (r *RobotRepository) Get(_ context.Context, id kernel.UUID) (*robot.Robot, error) {
	var out *robot.Robot
	err := r.uow.read(func(s *state) error {
		snap, ok := s.robots[id]
		if !ok {
			return errs.NewObjectNotFoundError("robot", id.String())
		}
		var err error
		out, err = robot.RestoreRobot(snap)
		return err
	})
	return out, err
}

func (r *RobotRepository) CompareAndSwap(
	_ context.Context,
	rb *robot.Robot,
	expected robot.Status,
	log robot.StatusLog,
) error {
	if err := rb.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		stored, ok := s.robots[rb.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("robot", rb.ID().String())
		}
		if stored.Status != expected {
			return errs.NewConflictError("robot", rb.ID().String(), expected.String())
		}
		s.robots[rb.ID()] = rb.Snapshot()
		s.logs[rb.ID()] = append(slices.Clip(s.logs[rb.ID()]), log)
		return nil
	})
}

func (r *RobotRepository) SwapStatus(
	_ context.Context,
	rb *robot.Robot,
	expected robot.Status,
	log robot.StatusLog,
) error {
	if err := rb.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		stored, ok := s.robots[rb.ID()]
		if !ok {
			return errs.NewObjectNotFoundError("robot", rb.ID().String())
		}
		if stored.Status != expected {
			return errs.NewConflictError("robot", rb.ID().String(), expected.String())
		}
		stored.Status = rb.Status()
		s.robots[rb.ID()] = stored
		s.logs[rb.ID()] = append(slices.Clip(s.logs[rb.ID()]), log)
		return nil
	})
}

func (r *RobotRepository) ListIdleEligible(
	_ context.Context,
	freshSince time.Time,
	minBattery float64,
) ([]*robot.Robot, error) {
	return r.list(func(rb *robot.Robot) bool { return rb.IsEligible(freshSince, minBattery) })
}

func (r *RobotRepository) ListHolding(_ context.Context) ([]*robot.Robot, error) {
	return r.list(func(rb *robot.Robot) bool { return rb.Status().IsHolding() })
}

func (r *RobotRepository) List(_ context.Context) ([]*robot.Robot, error) {
	return r.list(func(*robot.Robot) bool { return true })
}

func (r *RobotRepository) StatusLogs(_ context.Context, robotID kernel.UUID, limit int) ([]robot.StatusLog, error) {
	var out []robot.StatusLog
	err := r.uow.read(func(s *state) error {
		out = slices.Clone(s.logs[robotID])
		return nil
	})
	slices.Reverse(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

func (r *RobotRepository) list(keep func(*robot.Robot) bool) ([]*robot.Robot, error) {
	var out []*robot.Robot
	err := r.uow.read(func(s *state) error {
		for _, snap := range s.robots {
			rb, err := robot.RestoreRobot(snap)
			if err != nil {
				return err
			}
			if keep(rb) {
				out = append(out, rb)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *robot.Robot) int { return cmp.Compare(a.Name(), b.Name()) })
	return out, err
}
