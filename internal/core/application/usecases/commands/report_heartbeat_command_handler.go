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
	"luna/internal/core/domain/services"
	"luna/internal/core/ports"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/telemetry"
)

// heartbeatWriteAttempts bounds the retries of a heartbeat whose robot row
// changed between read and conditional write.
const heartbeatWriteAttempts = 3

// HeartbeatResult reports the registry state after a heartbeat and what it
// did to the robot's task.
type HeartbeatResult struct {
	Registered  bool
	RobotStatus robot.Status
	TaskID      *kernel.UUID
	TaskStatus  *task.Status
}

// ReportHeartbeatCommandHandler ingests robot telemetry. The robot row is
// upserted with a conditional write; task effects follow after commit:
//   - ERROR or MAINTENANCE while holding a task fails the task
//   - NAVIGATING while the held task is ASSIGNED starts it
//   - arriving at the final stop of an IN_PROGRESS task completes it
//   - a robot becoming IDLE triggers a dispatch cycle
type ReportHeartbeatCommandHandler struct {
	robotUoWFactory    RobotUoWFactory
	waypointUoWFactory WaypointUoWFactory
	lifecycle          TaskLifecycle
	trigger            ports.DispatchTrigger
	sequencer          services.RouteSequencer
	now                func() time.Time
	logger             *zap.Logger
}

func NewReportHeartbeatCommandHandler(
	robotUoWFactory RobotUoWFactory,
	waypointUoWFactory WaypointUoWFactory,
	lifecycle TaskLifecycle,
	trigger ports.DispatchTrigger,
	now func() time.Time,
	logger *zap.Logger,
) ReportHeartbeatCommandHandler {
	return ReportHeartbeatCommandHandler{
		robotUoWFactory:    robotUoWFactory,
		waypointUoWFactory: waypointUoWFactory,
		lifecycle:          lifecycle,
		trigger:            trigger,
		sequencer:          services.NewRouteSequencer(),
		now:                now,
		logger:             logger.With(zap.String("component", "heartbeat")),
	}
}

type appliedHeartbeat struct {
	robot      *robot.Robot
	prior      robot.Status
	registered bool
	active     *task.Task
}

func (h ReportHeartbeatCommandHandler) Handle(ctx context.Context, cmd ReportHeartbeatCommand) (HeartbeatResult, error) {
	if err := cmd.Validate(); err != nil {
		return HeartbeatResult{}, err
	}

	hb := cmd.Heartbeat(h.now())

	var (
		applied appliedHeartbeat
		err     error
	)
	for attempt := 1; ; attempt++ {
		applied, err = h.apply(ctx, hb)
		if err == nil {
			break
		}
		if !errors.Is(err, errs.ErrConflict) || attempt == heartbeatWriteAttempts {
			return HeartbeatResult{}, err
		}
		h.logger.Debug("robot changed concurrently, retrying heartbeat",
			zap.String("robot_id", hb.RobotID.String()), zap.Int("attempt", attempt))
	}
	telemetry.Heartbeats.WithLabelValues(hb.Status.String()).Inc()

	result := HeartbeatResult{
		Registered:  applied.registered,
		RobotStatus: applied.robot.Status(),
	}

	if applied.robot.Status() == robot.Idle && (applied.registered || applied.prior != robot.Idle) {
		h.trigger.Trigger()
	}

	if applied.active == nil {
		return result, nil
	}

	t, err := h.react(ctx, applied, hb)
	if err != nil {
		return HeartbeatResult{}, err
	}
	id, status := t.ID(), t.Status()
	result.TaskID, result.TaskStatus = &id, &status
	return result, nil
}

// apply upserts the robot in one transaction.
func (h ReportHeartbeatCommandHandler) apply(ctx context.Context, hb robot.Heartbeat) (appliedHeartbeat, error) {
	uow := h.robotUoWFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return appliedHeartbeat{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	robots := uow.RobotRepository()
	r, err := robots.Get(ctx, hb.RobotID)
	if errors.Is(err, errs.ErrObjectNotFound) {
		return h.register(ctx, uow, hb)
	}
	if err != nil {
		return appliedHeartbeat{}, err
	}

	active, err := uow.TaskRepository().GetActiveByRobot(ctx, r.ID())
	if errors.Is(err, errs.ErrObjectNotFound) {
		active, err = nil, nil
	}
	if err != nil {
		return appliedHeartbeat{}, err
	}

	prior := r.Status()
	if err = r.ApplyHeartbeat(hb, active != nil); err != nil {
		return appliedHeartbeat{}, err
	}
	if err = robots.CompareAndSwap(ctx, r, prior, robot.NewStatusLog(r, hb.At)); err != nil {
		return appliedHeartbeat{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return appliedHeartbeat{}, err
	}

	return appliedHeartbeat{robot: r, prior: prior, active: active}, nil
}

func (h ReportHeartbeatCommandHandler) register(ctx context.Context, uow RobotUoW, hb robot.Heartbeat) (appliedHeartbeat, error) {
	r, err := robot.NewRobotFromHeartbeat(hb)
	if err != nil {
		return appliedHeartbeat{}, err
	}
	if err = uow.RobotRepository().Add(ctx, r, robot.NewStatusLog(r, hb.At)); err != nil {
		return appliedHeartbeat{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return appliedHeartbeat{}, err
	}

	h.logger.Info("robot registered on first heartbeat",
		zap.String("robot_id", r.ID().String()), zap.String("name", r.Name()))
	return appliedHeartbeat{robot: r, registered: true}, nil
}

// react applies the task effects of a committed heartbeat. Transitions lost
// to a concurrent writer are logged, not returned: the heartbeat itself was
// recorded and the next one re-evaluates.
func (h ReportHeartbeatCommandHandler) react(ctx context.Context, applied appliedHeartbeat, hb robot.Heartbeat) (*task.Task, error) {
	t := applied.active
	logger := h.logger.With(
		zap.String("robot_id", applied.robot.ID().String()),
		zap.String("task_id", t.ID().String()),
	)

	if hb.Status.IsFault() {
		reason := fmt.Sprintf("robot %s reported %s", applied.robot.Name(), hb.Status)
		result, err := h.lifecycle.Fail(ctx, t.ID(), reason, ports.AlertRobotFault)
		if err != nil {
			return t, h.tolerate(logger, "fail task", err)
		}
		return result.Failed, nil
	}

	if t.Status() == task.Assigned && hb.Status == robot.Navigating {
		started, err := h.lifecycle.Start(ctx, t.ID())
		if err != nil {
			return t, h.tolerate(logger, "start task", err)
		}
		t = started
	}

	if t.Status() != task.InProgress || hb.Location == nil {
		return t, nil
	}

	route, err := h.route(ctx, t)
	if err != nil {
		return t, err
	}
	if !h.sequencer.IsFinalStop(route, *hb.Location) {
		return t, nil
	}

	completed, err := h.lifecycle.Complete(ctx, t.ID())
	if err != nil {
		return t, h.tolerate(logger, "complete task", err)
	}
	return completed, nil
}

func (h ReportHeartbeatCommandHandler) route(ctx context.Context, t *task.Task) (services.Route, error) {
	stops := t.Stops()
	if len(stops) == 0 {
		return h.sequencer.Sequence(t, nil)
	}

	ids := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.WaypointID)
	}

	uow := h.waypointUoWFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	catalogue, err := uow.WaypointRepository().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return h.sequencer.Sequence(t, catalogue)
}

func (h ReportHeartbeatCommandHandler) tolerate(logger *zap.Logger, action string, err error) error {
	if errors.Is(err, errs.ErrConflict) || errors.Is(err, errs.ErrIllegalTransition) {
		logger.Info(action+" skipped, task changed concurrently", zap.Error(err))
		return nil
	}
	return err
}
