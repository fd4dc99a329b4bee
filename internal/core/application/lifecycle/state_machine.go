package lifecycle

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
	"luna/internal/pkg/telemetry"
)

// robotWriteAttempts bounds the fresh-read retries of a robot-side update.
const robotWriteAttempts = 3

// AssignOutcome reports what happened to one planned assignment.
type AssignOutcome int

const (
	// Assigned means both the task and the robot were updated.
	Assigned AssignOutcome = iota + 1
	// TaskConflict means the task changed since it was listed; nothing was written.
	TaskConflict
	// Compensated means the robot could not be claimed and the task was
	// moved back to QUEUED.
	Compensated
)

func (o AssignOutcome) String() string {
	switch o {
	case Assigned:
		return "assigned"
	case TaskConflict:
		return "task_conflict"
	case Compensated:
		return "compensated"
	default:
		return "unknown"
	}
}

// FailResult describes a failed task and its replacement, if any.
type FailResult struct {
	Failed    *task.Task
	Retry     *task.Task
	Exhausted bool
}

// Option configures a StateMachine.
type Option func(*StateMachine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *StateMachine) { m.now = now }
}

// WithDispatchTrigger requests a dispatch cycle whenever a robot is released
// or a replacement task is created.
func WithDispatchTrigger(trigger ports.DispatchTrigger) Option {
	return func(m *StateMachine) { m.trigger = trigger }
}

// StateMachine is the single writer of task status.
type StateMachine struct {
	uowFactory ports.UnitOfWorkFactory
	notifier   ports.Notifier
	policy     policy.Provider
	trigger    ports.DispatchTrigger
	now        func() time.Time
	logger     *zap.Logger
}

// NewStateMachine creates a StateMachine.
func NewStateMachine(
	uowFactory ports.UnitOfWorkFactory,
	notifier ports.Notifier,
	policies policy.Provider,
	logger *zap.Logger,
	opts ...Option,
) *StateMachine {
	m := &StateMachine{
		uowFactory: uowFactory,
		notifier:   notifier,
		policy:     policies,
		now:        time.Now,
		logger:     logger.With(zap.String("component", "lifecycle")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create stores a new PENDING task with its creation history row and
// announces it.
func (m *StateMachine) Create(ctx context.Context, t *task.Task, actor *kernel.UUID, reason string) error {
	created, err := task.NewCreationHistory(t, actor, reason)
	if err != nil {
		return err
	}

	uow := m.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TaskRepository().Add(ctx, t, created); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	m.announce(ctx, t, created)
	m.requestDispatch()
	return nil
}

// Queue parks a PENDING task that found no robot this cycle.
func (m *StateMachine) Queue(ctx context.Context, t *task.Task) error {
	prior := t.Status()
	if err := t.Queue(); err != nil {
		return err
	}
	return m.commitTask(ctx, t, prior, nil, "no eligible robot")
}

// Assign binds t to r: task first, then robot. A task conflict leaves
// everything untouched; a robot that cannot be claimed is compensated by
// moving the task back to QUEUED. t and r are updated in place on success.
func (m *StateMachine) Assign(ctx context.Context, t *task.Task, r *robot.Robot) (AssignOutcome, error) {
	prior := t.Status()
	if err := t.Assign(r.ID()); err != nil {
		return 0, err
	}

	err := m.commitTask(ctx, t, prior, nil, fmt.Sprintf("assigned to robot %s", r.Name()))
	if errors.Is(err, errs.ErrConflict) {
		return TaskConflict, nil
	}
	if err != nil {
		return 0, err
	}

	robotPrior := r.Status()
	claimErr := r.Claim()
	if claimErr == nil {
		_, claimErr = m.swapRobot(ctx, r.ID(), func(fresh *robot.Robot) (bool, error) {
			if fresh.Status() != robotPrior {
				return false, errs.NewConflictError("robot", fresh.ID().String(), robotPrior.String())
			}
			return true, fresh.Claim()
		})
	}
	if claimErr == nil {
		return Assigned, nil
	}

	m.logger.Warn("robot rejected assignment, requeueing task",
		zap.String("task_id", t.ID().String()),
		zap.String("robot_id", r.ID().String()),
		zap.Error(claimErr),
	)
	err = m.compensate(ctx, t.ID(), r.Name())
	if errors.Is(err, errs.ErrIllegalTransition) {
		m.logger.Info("task left ASSIGNED before compensation", zap.String("task_id", t.ID().String()))
		return Compensated, nil
	}
	if err != nil {
		return 0, fmt.Errorf("compensate assignment of task %s: %w", t.ID(), errors.Join(claimErr, err))
	}
	return Compensated, nil
}

// Start moves an ASSIGNED task to IN_PROGRESS and its robot to NAVIGATING.
func (m *StateMachine) Start(ctx context.Context, taskID kernel.UUID) (*task.Task, error) {
	t, robotID, err := m.transition(ctx, taskID, nil, "robot started navigating", func(t *task.Task) error {
		return t.Start(m.now())
	})
	if err != nil {
		return nil, err
	}

	if robotID != nil {
		m.updateRobot(ctx, *robotID, func(r *robot.Robot) (bool, error) {
			if r.Status() == robot.Navigating {
				return false, nil
			}
			return true, r.StartNavigating()
		})
	}
	return t, nil
}

// Complete finishes an IN_PROGRESS task and releases its robot.
func (m *StateMachine) Complete(ctx context.Context, taskID kernel.UUID) (*task.Task, error) {
	t, robotID, err := m.transition(ctx, taskID, nil, "arrived at final stop", func(t *task.Task) error {
		return t.Complete(m.now())
	})
	if err != nil {
		return nil, err
	}
	m.release(ctx, robotID)
	return t, nil
}

// Cancel withdraws a task that has not started moving. An IN_PROGRESS or
// terminal task yields an errs.IllegalTransitionError and nothing changes.
func (m *StateMachine) Cancel(ctx context.Context, taskID kernel.UUID, actor *kernel.UUID, reason string) (*task.Task, error) {
	t, robotID, err := m.transition(ctx, taskID, actor, reason, func(t *task.Task) error {
		return t.Cancel(m.now())
	})
	if err != nil {
		return nil, err
	}
	m.release(ctx, robotID)
	return t, nil
}

// Fail moves an ASSIGNED or IN_PROGRESS task to FAILED. While the retry
// budget allows, a PENDING replacement is created in the same transaction;
// otherwise a retry-exhausted alert is raised. kind classifies the cause and
// is reported as an alert as well.
func (m *StateMachine) Fail(ctx context.Context, taskID kernel.UUID, reason string, kind ports.AlertKind) (FailResult, error) {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return FailResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TaskRepository()
	t, err := repo.Get(ctx, taskID)
	if err != nil {
		return FailResult{}, err
	}

	prior := t.Status()
	robotID := t.AssignedRobot()
	now := m.now()
	if err = t.Fail(now); err != nil {
		return FailResult{}, err
	}
	entry, err := m.history(t, prior, nil, reason)
	if err != nil {
		return FailResult{}, err
	}
	if err = repo.UpdateStatus(ctx, t, prior, entry); err != nil {
		return FailResult{}, err
	}

	result := FailResult{Failed: t}
	var retryEntry *task.History
	if t.Attempt() < m.policy.Current().MaxRetries {
		retry, err := t.NewRetry(kernel.NewUUID(), now)
		if err != nil {
			return FailResult{}, err
		}
		retryEntry, err = task.NewCreationHistory(retry, nil,
			fmt.Sprintf("retry %d of failed task %s", retry.Attempt(), t.ID()))
		if err != nil {
			return FailResult{}, err
		}
		if err = repo.Add(ctx, retry, retryEntry); err != nil {
			return FailResult{}, err
		}
		result.Retry = retry
	} else {
		result.Exhausted = true
	}

	if err = uow.Commit(ctx); err != nil {
		return FailResult{}, err
	}

	m.announce(ctx, t, entry, withRobot(robotID))
	m.alert(ctx, ports.SystemAlert{
		Kind:      kind,
		TaskID:    &taskID,
		RobotID:   robotID,
		Message:   reason,
		Timestamp: now,
	})

	if result.Retry != nil {
		telemetry.TaskRetries.Inc()
		m.announce(ctx, result.Retry, retryEntry)
		m.requestDispatch()
	} else {
		m.alert(ctx, ports.SystemAlert{
			Kind:   ports.AlertRetryExhausted,
			TaskID: &taskID,
			Message: fmt.Sprintf("task %s failed after %d retries and will not be retried: %s",
				taskID, t.Attempt(), reason),
			Timestamp: now,
		})
	}

	m.release(ctx, robotID)
	return result, nil
}

// RequeueUnclaimed moves an ASSIGNED task back to QUEUED when robotID never
// became BUSY for it, which is left behind when undoing a rejected claim
// failed. A task that moved on or names another robot is a conflict.
func (m *StateMachine) RequeueUnclaimed(ctx context.Context, taskID, robotID kernel.UUID) (*task.Task, error) {
	t, _, err := m.transition(ctx, taskID, nil, "assignment never claimed by its robot", func(t *task.Task) error {
		if t.Status() == task.Assigned && !t.IsHeldBy(robotID) {
			return errs.NewConflictError("task", taskID.String(), "assigned to robot "+robotID.String())
		}
		return t.Requeue()
	})
	if err != nil {
		return nil, err
	}

	m.requestDispatch()
	return t, nil
}

// ReleaseOrphan returns a robot that is BUSY or NAVIGATING without an active
// task to IDLE.
func (m *StateMachine) ReleaseOrphan(ctx context.Context, robotID kernel.UUID) {
	m.release(ctx, &robotID)
}

// transition loads a task, applies apply and writes it conditionally on the
// status it was read with. It returns the task and the robot it held before.
func (m *StateMachine) transition(
	ctx context.Context,
	taskID kernel.UUID,
	actor *kernel.UUID,
	reason string,
	apply func(t *task.Task) error,
) (*task.Task, *kernel.UUID, error) {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.TaskRepository()
	t, err := repo.Get(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}

	prior := t.Status()
	robotID := t.AssignedRobot()
	if err = apply(t); err != nil {
		return nil, nil, err
	}

	entry, err := m.history(t, prior, actor, reason)
	if err != nil {
		return nil, nil, err
	}
	if err = repo.UpdateStatus(ctx, t, prior, entry); err != nil {
		return nil, nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}

	m.announce(ctx, t, entry, withRobot(robotID))
	return t, robotID, nil
}

// commitTask writes an already transitioned task.
func (m *StateMachine) commitTask(ctx context.Context, t *task.Task, prior task.Status, actor *kernel.UUID, reason string) error {
	entry, err := m.history(t, prior, actor, reason)
	if err != nil {
		return err
	}

	uow := m.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.TaskRepository().UpdateStatus(ctx, t, prior, entry); err != nil {
		return err
	}
	if err = uow.Commit(ctx); err != nil {
		return err
	}

	m.announce(ctx, t, entry)
	return nil
}

func (m *StateMachine) compensate(ctx context.Context, taskID kernel.UUID, robotName string) error {
	_, _, err := m.transition(ctx, taskID, nil, fmt.Sprintf("robot %s rejected assignment", robotName), func(t *task.Task) error {
		return t.Requeue()
	})
	return err
}

func (m *StateMachine) history(t *task.Task, prior task.Status, actor *kernel.UUID, reason string) (*task.History, error) {
	return task.NewHistory(kernel.NewUUID(), t.ID(), &prior, t.Status(), actor, m.now(), reason)
}

// swapRobot reads the robot, applies change and writes the resulting status
// in one unit of work. Only the status column is written, so telemetry from
// heartbeats is never rolled back. change reports whether there is anything
// to write.
func (m *StateMachine) swapRobot(ctx context.Context, robotID kernel.UUID, change func(r *robot.Robot) (bool, error)) (bool, error) {
	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.RobotRepository()
	r, err := repo.Get(ctx, robotID)
	if err != nil {
		return false, err
	}

	prior := r.Status()
	changed, err := change(r)
	if err != nil || !changed {
		return false, err
	}
	if err = repo.SwapStatus(ctx, r, prior, robot.NewStatusLog(r, m.now())); err != nil {
		return false, err
	}
	if err = uow.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// updateRobot runs swapRobot, retrying on conflict. Failures are logged: the
// task side has already committed.
func (m *StateMachine) updateRobot(ctx context.Context, robotID kernel.UUID, change func(r *robot.Robot) (bool, error)) bool {
	logger := m.logger.With(zap.String("robot_id", robotID.String()))

	for attempt := 1; attempt <= robotWriteAttempts; attempt++ {
		changed, err := m.swapRobot(ctx, robotID, change)
		switch {
		case err == nil:
			return changed
		case errors.Is(err, errs.ErrConflict):
			logger.Debug("robot changed concurrently, retrying", zap.Int("attempt", attempt))
		case errors.Is(err, errs.ErrIllegalTransition):
			logger.Warn("robot update skipped", zap.Error(err))
			return false
		default:
			logger.Error("write robot", zap.Error(err))
			return false
		}
	}

	logger.Error("robot update gave up after repeated conflicts")
	return false
}

// release returns a robot to IDLE unless it reported a fault.
func (m *StateMachine) release(ctx context.Context, robotID *kernel.UUID) {
	if robotID == nil {
		return
	}
	released := m.updateRobot(ctx, *robotID, func(r *robot.Robot) (bool, error) {
		return r.Release()
	})
	if released {
		m.requestDispatch()
	}
}

func (m *StateMachine) requestDispatch() {
	if m.trigger != nil {
		m.trigger.Trigger()
	}
}

type announceOption func(*ports.StatusChangeEvent)

func withRobot(robotID *kernel.UUID) announceOption {
	return func(e *ports.StatusChangeEvent) {
		if e.RobotID == nil {
			e.RobotID = robotID
		}
	}
}

func (m *StateMachine) announce(ctx context.Context, t *task.Task, entry *task.History, opts ...announceOption) {
	event := ports.StatusChangeEvent{
		TaskID:    t.ID(),
		RobotID:   t.AssignedRobot(),
		OldStatus: entry.OldStatus(),
		NewStatus: entry.NewStatus(),
		Actor:     entry.Actor(),
		Reason:    entry.Reason(),
		Attempt:   t.Attempt(),
		Timestamp: entry.At(),
	}
	for _, opt := range opts {
		opt(&event)
	}

	from := "NONE"
	if event.OldStatus != nil {
		from = event.OldStatus.String()
	}
	telemetry.TaskTransitions.WithLabelValues(from, event.NewStatus.String()).Inc()

	m.logger.Info("task status changed",
		zap.String("task_id", event.TaskID.String()),
		zap.String("from", from),
		zap.String("to", event.NewStatus.String()),
		zap.String("reason", event.Reason),
	)

	if err := m.notifier.NotifyStatusChange(ctx, event); err != nil {
		m.logger.Error("status change notification failed",
			zap.String("task_id", event.TaskID.String()),
			zap.Error(err),
		)
	}
}

func (m *StateMachine) alert(ctx context.Context, alert ports.SystemAlert) {
	telemetry.SystemAlerts.WithLabelValues(string(alert.Kind)).Inc()
	m.logger.Warn("system alert", zap.String("kind", string(alert.Kind)), zap.String("message", alert.Message))

	if err := m.notifier.RaiseAlert(ctx, alert); err != nil {
		m.logger.Error("system alert delivery failed", zap.String("kind", string(alert.Kind)), zap.Error(err))
	}
}
