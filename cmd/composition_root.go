package cmd

import (
	"errors"
	"time"

	"luna/internal/adapters/in/http"
	"luna/internal/core/application/lifecycle"
	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/application/usecases/queries"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/ports"
	"luna/internal/jobs"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/policy"

	"go.uber.org/zap"
)

// CompositionRoot wires the engine: one state machine, one dispatch trigger
// and one policy holder shared by every handler.
type CompositionRoot struct {
	uowFactory   ports.UnitOfWorkFactory
	notifier     ports.Notifier
	policy       *policy.Holder
	trigger      *jobs.DispatchTrigger
	lifecycle    *lifecycle.StateMachine
	dropLocation kernel.LocationCode
	now          func() time.Time
	logger       *zap.Logger

	// the dispatch handler serializes cycles, so every caller shares it
	dispatchHandler *commands.DispatchTasksCommandHandler
}

func NewCompositionRoot(
	cfg Config,
	uowFactory ports.UnitOfWorkFactory,
	notifier ports.Notifier,
	holder *policy.Holder,
	logger *zap.Logger,
) (*CompositionRoot, error) {
	dropLocation, dropErr := kernel.NewLocationCode(cfg.ReturnDropLocation)

	var errList []error
	if uowFactory == nil {
		errList = append(errList, errs.NewValueIsRequiredError("unit of work factory"))
	}
	if notifier == nil {
		errList = append(errList, errs.NewValueIsRequiredError("notifier"))
	}
	if holder == nil {
		errList = append(errList, errs.NewValueIsRequiredError("policy"))
	}
	if logger == nil {
		errList = append(errList, errs.NewValueIsRequiredError("logger"))
	}
	if err := errors.Join(append(errList, dropErr)...); err != nil {
		return nil, err
	}

	c := &CompositionRoot{
		uowFactory:   uowFactory,
		notifier:     notifier,
		policy:       holder,
		trigger:      jobs.NewDispatchTrigger(),
		dropLocation: dropLocation,
		now:          time.Now,
		logger:       logger,
	}
	c.lifecycle = lifecycle.NewStateMachine(
		uowFactory,
		notifier,
		holder,
		logger,
		lifecycle.WithDispatchTrigger(c.trigger),
	)
	c.dispatchHandler = commands.NewDispatchTasksCommandHandler(c.commandUoWFactory(), c.lifecycle, holder, c.now, logger)
	return c, nil
}

// DispatchTrigger is shared by the state machine, the heartbeat handler and
// the Postgres listener.
func (c *CompositionRoot) DispatchTrigger() *jobs.DispatchTrigger {
	return c.trigger
}

func (c *CompositionRoot) Policy() *policy.Holder {
	return c.policy
}

func (c *CompositionRoot) CreateCreateTaskFromRequestCommandHandler() commands.CreateTaskFromRequestCommandHandler {
	return commands.NewCreateTaskFromRequestCommandHandler(c.commandUoWFactory(), c.lifecycle, c.now)
}

func (c *CompositionRoot) CreateCreateTaskFromReturnCommandHandler() commands.CreateTaskFromReturnCommandHandler {
	return commands.NewCreateTaskFromReturnCommandHandler(c.commandUoWFactory(), c.lifecycle, c.dropLocation, c.now)
}

func (c *CompositionRoot) CreateCancelTaskCommandHandler() commands.CancelTaskCommandHandler {
	return commands.NewCancelTaskCommandHandler(c.lifecycle)
}

func (c *CompositionRoot) CreateReportHeartbeatCommandHandler() commands.ReportHeartbeatCommandHandler {
	var robotUoWs commands.RobotUoWFactory = FuncRobotUoWFactory(func() commands.RobotUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportHeartbeatCommandHandler(robotUoWs, c.waypointUoWFactory(), c.lifecycle, c.trigger, c.now, c.logger)
}

func (c *CompositionRoot) CreateCreateWaypointCommandHandler() commands.CreateWaypointCommandHandler {
	return commands.NewCreateWaypointCommandHandler(c.waypointUoWFactory(), c.now)
}

func (c *CompositionRoot) CreateRetireWaypointCommandHandler() commands.RetireWaypointCommandHandler {
	return commands.NewRetireWaypointCommandHandler(c.waypointUoWFactory())
}

func (c *CompositionRoot) CreateDispatchTasksCommandHandler() *commands.DispatchTasksCommandHandler {
	return c.dispatchHandler
}

func (c *CompositionRoot) CreateDetectStaleRobotsCommandHandler() commands.DetectStaleRobotsCommandHandler {
	var f commands.RobotUoWFactory = FuncRobotUoWFactory(func() commands.RobotUoW {
		return c.uowFactory.Create()
	})
	return commands.NewDetectStaleRobotsCommandHandler(f, c.lifecycle, c.policy, c.now, c.logger)
}

func (c *CompositionRoot) CreateGetTaskQueryHandler() queries.GetTaskQueryHandler {
	return queries.NewGetTaskQueryHandler(c.readerFactory())
}

func (c *CompositionRoot) CreateGetNextWaypointQueryHandler() queries.GetNextWaypointQueryHandler {
	return queries.NewGetNextWaypointQueryHandler(c.readerFactory())
}

func (c *CompositionRoot) CreateListActiveTasksQueryHandler() queries.ListActiveTasksQueryHandler {
	return queries.NewListActiveTasksQueryHandler(c.readerFactory())
}

func (c *CompositionRoot) CreateListRobotsQueryHandler() queries.ListRobotsQueryHandler {
	return queries.NewListRobotsQueryHandler(c.readerFactory(), c.policy, c.now)
}

func (c *CompositionRoot) CreateGetRobotStatusLogsQueryHandler() queries.GetRobotStatusLogsQueryHandler {
	return queries.NewGetRobotStatusLogsQueryHandler(c.readerFactory())
}

func (c *CompositionRoot) CreateListWaypointsQueryHandler() queries.ListWaypointsQueryHandler {
	return queries.NewListWaypointsQueryHandler(c.readerFactory())
}

// CreateHTTPServer binds every use case to the HTTP API.
func (c *CompositionRoot) CreateHTTPServer() (*http.Server, error) {
	return http.NewServer(http.Handlers{
		CreateTaskFromRequest: c.CreateCreateTaskFromRequestCommandHandler(),
		CreateTaskFromReturn:  c.CreateCreateTaskFromReturnCommandHandler(),
		CancelTask:            c.CreateCancelTaskCommandHandler(),
		ReportHeartbeat:       c.CreateReportHeartbeatCommandHandler(),
		CreateWaypoint:        c.CreateCreateWaypointCommandHandler(),
		RetireWaypoint:        c.CreateRetireWaypointCommandHandler(),
		Dispatch:              c.CreateDispatchTasksCommandHandler(),
		GetTask:               c.CreateGetTaskQueryHandler(),
		GetNextWaypoint:       c.CreateGetNextWaypointQueryHandler(),
		ListActiveTasks:       c.CreateListActiveTasksQueryHandler(),
		ListRobots:            c.CreateListRobotsQueryHandler(),
		GetRobotStatusLogs:    c.CreateGetRobotStatusLogsQueryHandler(),
		ListWaypoints:         c.CreateListWaypointsQueryHandler(),
	}, c.logger)
}

// CreateJobManager schedules the dispatch loop and the heartbeat watchdog at
// the intervals of the policy in force at startup.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	p := c.policy.Current()
	return jobs.NewJobManager(
		c.dispatchHandler,
		c.trigger,
		p.DispatchInterval,
		c.CreateDetectStaleRobotsCommandHandler(),
		p.HeartbeatInterval,
		c.logger,
	)
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) waypointUoWFactory() commands.WaypointUoWFactory {
	return FuncWaypointUoWFactory(func() commands.WaypointUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) readerFactory() queries.ReaderFactory {
	return FuncReaderFactory(func() queries.Reader {
		return c.uowFactory.Create()
	})
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncRobotUoWFactory func() commands.RobotUoW

func (f FuncRobotUoWFactory) Create() commands.RobotUoW {
	return f()
}

type FuncWaypointUoWFactory func() commands.WaypointUoW

func (f FuncWaypointUoWFactory) Create() commands.WaypointUoW {
	return f()
}

type FuncReaderFactory func() queries.Reader

func (f FuncReaderFactory) Create() queries.Reader {
	return f()
}
