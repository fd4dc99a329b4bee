package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/ports"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/policy"
)

// StaleRobotsResult summarises one watchdog pass.
type StaleRobotsResult struct {
	Checked  int
	Stale    int
	Failed   int
	Released int
	Requeued int
}

// DetectStaleRobotsCommandHandler fails the task of every BUSY or NAVIGATING
// robot that missed the configured number of consecutive heartbeats. A
// holding robot without an active task is returned to IDLE, and an ASSIGNED
// task whose robot stayed IDLE past the same window is queued again.
type DetectStaleRobotsCommandHandler struct {
	uowFactory RobotUoWFactory
	lifecycle  TaskLifecycle
	policy     policy.Provider
	now        func() time.Time
	logger     *zap.Logger
}

func NewDetectStaleRobotsCommandHandler(
	uowFactory RobotUoWFactory,
	lifecycle TaskLifecycle,
	policies policy.Provider,
	now func() time.Time,
	logger *zap.Logger,
) DetectStaleRobotsCommandHandler {
	return DetectStaleRobotsCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		policy:     policies,
		now:        now,
		logger:     logger.With(zap.String("component", "heartbeat-watchdog")),
	}
}

func (h DetectStaleRobotsCommandHandler) Handle(ctx context.Context, cmd DetectStaleRobotsCommand) (StaleRobotsResult, error) {
	if err := cmd.Validate(); err != nil {
		return StaleRobotsResult{}, err
	}

	p := h.policy.Current()
	cutoff := h.now().Add(-p.MissedHeartbeatWindow())

	robots, err := h.uowFactory.Create().RobotRepository().ListHolding(ctx)
	if err != nil {
		return StaleRobotsResult{}, err
	}

	result := StaleRobotsResult{Checked: len(robots)}
	for _, r := range robots {
		if !r.IsStale(cutoff) {
			continue
		}
		result.Stale++

		if err = h.handleStale(ctx, r, p, &result); err != nil {
			return result, err
		}
	}

	if err = h.requeueUnclaimed(ctx, cutoff, &result); err != nil {
		return result, err
	}
	return result, nil
}

// requeueUnclaimed looks for ASSIGNED tasks whose robot is IDLE. Assign
// writes the task before claiming the robot, so only assignments older than
// cutoff are touched.
func (h DetectStaleRobotsCommandHandler) requeueUnclaimed(ctx context.Context, cutoff time.Time, result *StaleRobotsResult) error {
	uow := h.uowFactory.Create()
	tasks, err := uow.TaskRepository().ListActive(ctx)
	if err != nil {
		return err
	}

	for _, t := range tasks {
		robotID := t.AssignedRobot()
		if t.Status() != task.Assigned || robotID == nil {
			continue
		}
		r, err := uow.RobotRepository().Get(ctx, *robotID)
		if err != nil {
			return err
		}
		if r.Status() != robot.Idle {
			continue
		}
		assignedAt, err := lastAssignedAt(ctx, uow.TaskRepository(), t.ID())
		if err != nil {
			return err
		}
		if assignedAt.After(cutoff) {
			continue
		}

		logger := h.logger.With(zap.String("task_id", t.ID().String()), zap.String("robot", r.Name()))
		_, err = h.lifecycle.RequeueUnclaimed(ctx, t.ID(), *robotID)
		switch {
		case err == nil:
			logger.Warn("requeued task its robot never claimed")
			result.Requeued++
		case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrIllegalTransition):
			logger.Info("task changed before it could be requeued", zap.Error(err))
		default:
			return err
		}
	}
	return nil
}

func lastAssignedAt(ctx context.Context, repo ports.TaskRepository, taskID kernel.UUID) (time.Time, error) {
	history, err := repo.History(ctx, taskID)
	if err != nil {
		return time.Time{}, err
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].NewStatus() == task.Assigned {
			return history[i].At(), nil
		}
	}
	return time.Time{}, nil
}

func (h DetectStaleRobotsCommandHandler) handleStale(ctx context.Context, r *robot.Robot, p policy.Policy, result *StaleRobotsResult) error {
	logger := h.logger.With(zap.String("robot_id", r.ID().String()), zap.String("robot", r.Name()))

	active, err := h.uowFactory.Create().TaskRepository().GetActiveByRobot(ctx, r.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		logger.Warn("silent robot holds no task, releasing")
		h.lifecycle.ReleaseOrphan(ctx, r.ID())
		result.Released++
		return nil
	}
	if err != nil {
		return err
	}

	reason := fmt.Sprintf("robot %s missed %d consecutive heartbeats", r.Name(), p.MissedHeartbeats)
	_, err = h.lifecycle.Fail(ctx, active.ID(), reason, ports.AlertHeartbeatMissing)
	switch {
	case err == nil:
		result.Failed++
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrIllegalTransition):
		logger.Info("task changed before it could be failed", zap.String("task_id", active.ID().String()), zap.Error(err))
	default:
		return err
	}
	return nil
}
