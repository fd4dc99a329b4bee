package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"luna/internal/adapters/out/memory"
	"luna/internal/core/application/lifecycle"
	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/ports"
	"luna/internal/pkg/policy"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type funcUoWFactory func() commands.UoW

func (f funcUoWFactory) Create() commands.UoW { return f() }

type funcRobotUoWFactory func() commands.RobotUoW

func (f funcRobotUoWFactory) Create() commands.RobotUoW { return f() }

type funcWaypointUoWFactory func() commands.WaypointUoW

func (f funcWaypointUoWFactory) Create() commands.WaypointUoW { return f() }

type testClock struct {
	mu sync.Mutex
	at time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []ports.StatusChangeEvent
	alerts []ports.SystemAlert
}

func (n *recordingNotifier) NotifyStatusChange(_ context.Context, event ports.StatusChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) RaiseAlert(_ context.Context, alert ports.SystemAlert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, alert)
	return nil
}

func (n *recordingNotifier) alertKinds() []ports.AlertKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	kinds := make([]ports.AlertKind, 0, len(n.alerts))
	for _, a := range n.alerts {
		kinds = append(kinds, a.Kind)
	}
	return kinds
}

type countingTrigger struct {
	mu    sync.Mutex
	count int
}

func (c *countingTrigger) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingTrigger) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// engine wires the command handlers to an in-memory store and a real state
// machine, the way the composition root does.
type engine struct {
	store    *memory.UnitOfWorkFactory
	clock    *testClock
	notifier *recordingNotifier
	trigger  *countingTrigger
	policy   *policy.Holder
	machine  *lifecycle.StateMachine

	createFromReturn  commands.CreateTaskFromReturnCommandHandler
	createFromRequest commands.CreateTaskFromRequestCommandHandler
	createWaypoint    commands.CreateWaypointCommandHandler
	heartbeat         commands.ReportHeartbeatCommandHandler
	dispatch          *commands.DispatchTasksCommandHandler
	watchdog          commands.DetectStaleRobotsCommandHandler
}

func newEngine(t *testing.T, p policy.Policy) *engine {
	t.Helper()

	holder, err := policy.NewHolder(p)
	require.NoError(t, err)

	e := &engine{
		store:    memory.NewUnitOfWorkFactory(memory.NewStore()),
		clock:    &testClock{at: now},
		notifier: &recordingNotifier{},
		trigger:  &countingTrigger{},
		policy:   holder,
	}

	logger := zap.NewNop()
	machine := lifecycle.NewStateMachine(e.store, e.notifier, holder, logger,
		lifecycle.WithClock(e.clock.Now),
		lifecycle.WithDispatchTrigger(e.trigger),
	)
	e.machine = machine

	var uowFactory commands.UoWFactory = funcUoWFactory(func() commands.UoW { return e.store.Create() })
	var robotFactory commands.RobotUoWFactory = funcRobotUoWFactory(func() commands.RobotUoW { return e.store.Create() })
	var waypointFactory commands.WaypointUoWFactory = funcWaypointUoWFactory(func() commands.WaypointUoW { return e.store.Create() })

	e.createFromReturn = commands.NewCreateTaskFromReturnCommandHandler(
		uowFactory, machine, kernel.MustLocationCode("LIB-RETURNS"), e.clock.Now)
	e.createFromRequest = commands.NewCreateTaskFromRequestCommandHandler(uowFactory, machine, e.clock.Now)
	e.createWaypoint = commands.NewCreateWaypointCommandHandler(waypointFactory, e.clock.Now)
	e.heartbeat = commands.NewReportHeartbeatCommandHandler(robotFactory, waypointFactory, machine, e.trigger, e.clock.Now, logger)
	e.dispatch = commands.NewDispatchTasksCommandHandler(uowFactory, machine, holder, e.clock.Now, logger)
	e.watchdog = commands.NewDetectStaleRobotsCommandHandler(robotFactory, machine, holder, e.clock.Now, logger)
	return e
}

func (e *engine) addWaypoint(t *testing.T, name, code string) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateWaypointCommand(id, name, code, 0, 0, 0, nil)
	require.NoError(t, err)
	require.NoError(t, e.createWaypoint.Handle(t.Context(), cmd))
	return id
}

func (e *engine) returnTask(t *testing.T, pickup, priority string, stops ...task.Stop) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateTaskFromReturnCommand(id, kernel.NewUUID(), pickup, priority,
		commands.TaskDetails{Stops: stops})
	require.NoError(t, err)
	require.NoError(t, e.createFromReturn.Handle(t.Context(), cmd))
	return id
}

func (e *engine) requestTask(t *testing.T, priority string) kernel.UUID {
	t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewCreateTaskFromRequestCommand(id, kernel.NewUUID(), "", "LIB-DESK", "DORM-A", priority,
		commands.TaskDetails{})
	require.NoError(t, err)
	require.NoError(t, e.createFromRequest.Handle(t.Context(), cmd))
	return id
}

func (e *engine) report(t *testing.T, robotID kernel.UUID, name, status, location string, battery float64) commands.HeartbeatResult {
	t.Helper()
	cmd, err := commands.NewReportHeartbeatCommand(robotID, name, status, &location, &battery, nil)
	require.NoError(t, err)
	result, err := e.heartbeat.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func (e *engine) runDispatch(t *testing.T) commands.DispatchResult {
	t.Helper()
	result, err := e.dispatch.Handle(t.Context(), commands.NewDispatchTasksCommand())
	require.NoError(t, err)
	return result
}

func (e *engine) task(t *testing.T, id kernel.UUID) *task.Task {
	t.Helper()
	tk, err := e.store.Create().TaskRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return tk
}

func (e *engine) robot(t *testing.T, id kernel.UUID) *robot.Robot {
	t.Helper()
	r, err := e.store.Create().RobotRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return r
}

func (e *engine) retriesOf(t *testing.T, failed *task.Task) []*task.Task {
	t.Helper()
	all, err := e.store.Create().TaskRepository().ListByReference(t.Context(), failed.Reference())
	require.NoError(t, err)
	var out []*task.Task
	for _, tk := range all {
		if r := tk.RetryOf(); r != nil && r.IsEqual(failed.ID()) {
			out = append(out, tk)
		}
	}
	return out
}

func statusesOf(history []*task.History) []task.Status {
	out := make([]task.Status, 0, len(history))
	for _, h := range history {
		out = append(out, h.NewStatus())
	}
	return out
}
