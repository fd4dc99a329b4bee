package commands

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"luna/internal/core/application/lifecycle"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/services"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/policy"
	"luna/internal/pkg/telemetry"
)

// DispatchResult summarises one cycle. Finding no robot is a normal outcome
// and shows up as Queued or as unmatched QUEUED tasks, not as an error.
type DispatchResult struct {
	Skipped       bool
	Considered    int
	Robots        int
	Assigned      int
	Queued        int
	Conflicts     int
	Compensations int
	Errors        int
}

// DispatchTasksCommandHandler runs dispatch cycles. Overlapping cycles in the
// same process are skipped; concurrent processes are kept apart by the
// conditional writes alone.
type DispatchTasksCommandHandler struct {
	uowFactory UoWFactory
	lifecycle  TaskLifecycle
	policy     policy.Provider
	matcher    services.TaskMatcher
	now        func() time.Time
	logger     *zap.Logger

	running sync.Mutex
}

func NewDispatchTasksCommandHandler(
	uowFactory UoWFactory,
	lifecycle TaskLifecycle,
	policies policy.Provider,
	now func() time.Time,
	logger *zap.Logger,
) *DispatchTasksCommandHandler {
	return &DispatchTasksCommandHandler{
		uowFactory: uowFactory,
		lifecycle:  lifecycle,
		policy:     policies,
		matcher:    services.NewTaskMatcher(),
		now:        now,
		logger:     logger.With(zap.String("component", "dispatcher")),
	}
}

// Handle runs a cycle. A conflict or failure on one match is counted and the
// cycle moves on to the next.
func (h *DispatchTasksCommandHandler) Handle(ctx context.Context, cmd DispatchTasksCommand) (DispatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return DispatchResult{}, err
	}

	if !h.running.TryLock() {
		telemetry.DispatchSkipped.Inc()
		return DispatchResult{Skipped: true}, nil
	}
	defer h.running.Unlock()

	started := time.Now()
	defer func() {
		telemetry.DispatchDuration.Observe(time.Since(started).Seconds())
	}()

	p := h.policy.Current()
	tasks, robots, err := h.load(ctx, p)
	if err != nil {
		return DispatchResult{}, err
	}

	result := DispatchResult{Considered: len(tasks), Robots: len(robots)}
	plan := h.matcher.Match(tasks, robots)

	for _, m := range plan.Matches {
		if err = ctx.Err(); err != nil {
			return result, err
		}

		outcome, err := h.lifecycle.Assign(ctx, m.Task, m.Robot)
		if err != nil {
			result.Errors++
			h.logger.Error("assignment failed",
				zap.String("task_id", m.Task.ID().String()),
				zap.String("robot_id", m.Robot.ID().String()),
				zap.Error(err),
			)
			continue
		}

		switch outcome {
		case lifecycle.Assigned:
			result.Assigned++
			telemetry.DispatchAssigned.Inc()
		case lifecycle.TaskConflict:
			result.Conflicts++
			telemetry.DispatchConflicts.Inc()
		case lifecycle.Compensated:
			result.Compensations++
			telemetry.DispatchCompensations.Inc()
		}
	}

	for _, t := range plan.Unmatched {
		if t.Status() != task.Pending {
			continue
		}
		err = h.lifecycle.Queue(ctx, t)
		switch {
		case err == nil:
			result.Queued++
		case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrIllegalTransition):
			result.Conflicts++
			telemetry.DispatchConflicts.Inc()
		default:
			result.Errors++
			h.logger.Error("queue task", zap.String("task_id", t.ID().String()), zap.Error(err))
		}
	}

	h.recordQueueDepth(ctx)
	telemetry.DispatchCycles.Inc()

	if result.Assigned+result.Queued+result.Conflicts+result.Compensations+result.Errors > 0 {
		h.logger.Info("dispatch cycle finished",
			zap.Int("considered", result.Considered),
			zap.Int("robots", result.Robots),
			zap.Int("assigned", result.Assigned),
			zap.Int("queued", result.Queued),
			zap.Int("conflicts", result.Conflicts),
			zap.Int("compensations", result.Compensations),
			zap.Int("errors", result.Errors),
		)
	}

	return result, nil
}

func (h *DispatchTasksCommandHandler) load(ctx context.Context, p policy.Policy) ([]*task.Task, []*robot.Robot, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	tasks, err := uow.TaskRepository().ListPending(ctx, p.BatchSize)
	if err != nil {
		return nil, nil, err
	}
	if len(tasks) == 0 {
		return nil, nil, nil
	}

	robots, err := uow.RobotRepository().ListIdleEligible(ctx, h.now().Add(-p.StalenessWindow), p.MinBattery)
	if err != nil {
		return nil, nil, err
	}
	return tasks, robots, nil
}

func (h *DispatchTasksCommandHandler) recordQueueDepth(ctx context.Context) {
	uow := h.uowFactory.Create()
	counts, err := uow.TaskRepository().CountByStatus(ctx)
	if err != nil {
		h.logger.Warn("count tasks by status", zap.Error(err))
		return
	}
	for _, s := range []task.Status{task.Pending, task.Queued, task.Assigned, task.InProgress} {
		telemetry.QueueDepth.WithLabelValues(s.String()).Set(float64(counts[s]))
	}
}
