package task

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

var (
	// ErrTaskIsNotConstructed is returned when a Task was not created through
	// NewTask, RestoreTask or NewRetry.
	ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask constructor")
)

// Task is the aggregate root of a single delivery. It owns its status, its
// robot binding and its ordered stops; every status change goes through the
// transition table in status.go.
//
// Invariants:
//   - exactly one of request id and return id is set (see Reference)
//   - a robot is assigned if and only if the status is ASSIGNED or IN_PROGRESS
//   - stop sequence orders and waypoint ids are unique
//   - metadata is stored verbatim and never interpreted
type Task struct {
	id            kernel.UUID
	reference     Reference
	taskType      Type
	priority      Priority
	status        Status
	assignedRobot *kernel.UUID
	source        kernel.LocationCode
	destination   kernel.LocationCode
	stops         []Stop
	metadata      map[string]any
	createdAt     time.Time
	startedAt     *time.Time
	completedAt   *time.Time

	// attempt counts replacements for the same reference, starting at 0.
	attempt int
	// retryOf is the failed task this one replaces.
	retryOf *kernel.UUID

	isConstructed bool
}

// NewTask creates a PENDING task. The creation history entry is built by the
// caller (see NewCreationHistory) so that both are stored together.
func NewTask(
	id kernel.UUID,
	reference Reference,
	taskType Type,
	priority Priority,
	source kernel.LocationCode,
	destination kernel.LocationCode,
	stops []Stop,
	metadata map[string]any,
	createdAt time.Time,
) (*Task, error) {
	t := &Task{
		status:        Pending,
		createdAt:     createdAt.UTC(),
		metadata:      maps.Clone(metadata),
		isConstructed: true,
	}

	if err := errors.Join(
		t.setID(id),
		t.setReference(reference),
		t.setType(taskType),
		t.setPriority(priority),
		t.setEndpoints(source, destination),
		t.setStops(stops),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// Snapshot is the flat representation used by persistence adapters.
type Snapshot struct {
	ID            kernel.UUID
	RequestID     *kernel.UUID
	ReturnID      *kernel.UUID
	Type          Type
	Priority      Priority
	Status        Status
	AssignedRobot *kernel.UUID
	Source        kernel.LocationCode
	Destination   kernel.LocationCode
	Stops         []Stop
	Metadata      map[string]any
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
	Attempt       int
	RetryOf       *kernel.UUID
}

// RestoreTask rebuilds a task from storage, re-checking every invariant.
func RestoreTask(s Snapshot) (*Task, error) {
	reference, err := NewReference(s.RequestID, s.ReturnID)
	if err != nil {
		return nil, err
	}

	t := &Task{
		createdAt:     s.CreatedAt.UTC(),
		startedAt:     cloneTime(s.StartedAt),
		completedAt:   cloneTime(s.CompletedAt),
		metadata:      maps.Clone(s.Metadata),
		retryOf:       cloneID(s.RetryOf),
		isConstructed: true,
	}

	if err = errors.Join(
		t.setID(s.ID),
		t.setReference(reference),
		t.setType(s.Type),
		t.setPriority(s.Priority),
		t.setEndpoints(s.Source, s.Destination),
		t.setStops(s.Stops),
		t.setAttempt(s.Attempt),
		t.setStatus(s.Status, s.AssignedRobot),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// Snapshot returns a deep copy of the task's state.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:            t.id,
		RequestID:     t.reference.RequestID(),
		ReturnID:      t.reference.ReturnID(),
		Type:          t.taskType,
		Priority:      t.priority,
		Status:        t.status,
		AssignedRobot: cloneID(t.assignedRobot),
		Source:        t.source,
		Destination:   t.destination,
		Stops:         slices.Clone(t.stops),
		Metadata:      maps.Clone(t.metadata),
		CreatedAt:     t.createdAt,
		StartedAt:     cloneTime(t.startedAt),
		CompletedAt:   cloneTime(t.completedAt),
		Attempt:       t.attempt,
		RetryOf:       cloneID(t.retryOf),
	}
}

// Validate ensures the task was built by one of its constructors.
func (t *Task) Validate() error {
	if t == nil || !t.isConstructed {
		return ErrTaskIsNotConstructed
	}
	return nil
}

// IsEqual compares tasks by identity.
func (t *Task) IsEqual(other *Task) bool {
	return other != nil && t.id.IsEqual(other.id)
}

func (t *Task) ID() kernel.UUID                  { return t.id }
func (t *Task) Reference() Reference             { return t.reference }
func (t *Task) Type() Type                       { return t.taskType }
func (t *Task) Priority() Priority               { return t.priority }
func (t *Task) Status() Status                   { return t.status }
func (t *Task) Source() kernel.LocationCode      { return t.source }
func (t *Task) Destination() kernel.LocationCode { return t.destination }
func (t *Task) CreatedAt() time.Time             { return t.createdAt }
func (t *Task) StartedAt() *time.Time            { return cloneTime(t.startedAt) }
func (t *Task) CompletedAt() *time.Time          { return cloneTime(t.completedAt) }
func (t *Task) Attempt() int                     { return t.attempt }
func (t *Task) RetryOf() *kernel.UUID            { return cloneID(t.retryOf) }

// AssignedRobot is nil unless the task is ASSIGNED or IN_PROGRESS.
func (t *Task) AssignedRobot() *kernel.UUID {
	return cloneID(t.assignedRobot)
}

// Stops returns the route stops in the order they were given. Use the route
// sequencer for traversal order.
func (t *Task) Stops() []Stop {
	return slices.Clone(t.stops)
}

// Metadata returns a shallow copy of the opaque metadata map.
func (t *Task) Metadata() map[string]any {
	return maps.Clone(t.metadata)
}

// IsHeldBy reports whether robotID is the assigned robot.
func (t *Task) IsHeldBy(robotID kernel.UUID) bool {
	return t.assignedRobot != nil && t.assignedRobot.IsEqual(robotID)
}

// Queue moves a PENDING task that found no robot to QUEUED. An assignment
// is only undone through Requeue, which also drops the robot.
func (t *Task) Queue() error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.status != Pending {
		return errs.NewIllegalTransitionError("task", t.status.String(), Queued.String())
	}
	return t.transition(Queued)
}

// Assign binds the task to a robot.
func (t *Task) Assign(robotID kernel.UUID) error {
	if err := robotID.Validate(); err != nil {
		return err
	}
	if err := t.transition(Assigned); err != nil {
		return err
	}
	t.assignedRobot = &robotID
	return nil
}

// Requeue undoes an assignment whose robot could not be claimed.
func (t *Task) Requeue() error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.status != Assigned {
		return errs.NewIllegalTransitionError("task", t.status.String(), Queued.String())
	}
	if err := t.transition(Queued); err != nil {
		return err
	}
	t.assignedRobot = nil
	return nil
}

// Start records that the robot has begun driving the route.
func (t *Task) Start(at time.Time) error {
	if err := t.transition(InProgress); err != nil {
		return err
	}
	started := at.UTC()
	t.startedAt = &started
	return nil
}

// Complete records arrival at the final stop.
func (t *Task) Complete(at time.Time) error {
	return t.finish(Completed, at)
}

// Fail records that the robot could not finish the task.
func (t *Task) Fail(at time.Time) error {
	return t.finish(Failed, at)
}

// Cancel withdraws a task that has not started moving.
func (t *Task) Cancel(at time.Time) error {
	return t.finish(Cancelled, at)
}

// NewRetry creates the PENDING replacement for a FAILED task: same reference,
// type, priority, endpoints, stops and metadata, attempt+1, retryOf set.
func (t *Task) NewRetry(id kernel.UUID, createdAt time.Time) (*Task, error) {
	if t.status != Failed {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status",
			fmt.Errorf("only FAILED tasks can be retried, task is %s", t.status),
		)
	}

	retry, err := NewTask(
		id,
		t.reference,
		t.taskType,
		t.priority,
		t.source,
		t.destination,
		t.stops,
		t.metadata,
		createdAt,
	)
	if err != nil {
		return nil, err
	}

	retry.attempt = t.attempt + 1
	retry.retryOf = cloneID(&t.id)
	return retry, nil
}

func (t *Task) finish(to Status, at time.Time) error {
	if err := t.transition(to); err != nil {
		return err
	}
	completed := at.UTC()
	t.completedAt = &completed
	t.assignedRobot = nil
	return nil
}

func (t *Task) transition(to Status) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := t.status.ValidateTransition(to); err != nil {
		return err
	}
	t.status = to
	return nil
}

func (t *Task) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Task) setReference(reference Reference) error {
	if err := reference.Validate(); err != nil {
		return err
	}
	t.reference = reference
	return nil
}

func (t *Task) setType(taskType Type) error {
	if err := taskType.Validate(); err != nil {
		return err
	}
	t.taskType = taskType
	return nil
}

func (t *Task) setPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	t.priority = priority
	return nil
}

func (t *Task) setEndpoints(source, destination kernel.LocationCode) error {
	if err := errors.Join(source.Validate(), destination.Validate()); err != nil {
		return err
	}
	t.source = source
	t.destination = destination
	return nil
}

func (t *Task) setStops(stops []Stop) error {
	if err := validateStops(stops); err != nil {
		return err
	}
	t.stops = slices.Clone(stops)
	return nil
}

func (t *Task) setAttempt(attempt int) error {
	if attempt < 0 {
		return errs.NewValueIsOutOfRangeError("attempt", attempt, 0, "unbounded")
	}
	t.attempt = attempt
	return nil
}

func (t *Task) setStatus(status Status, robot *kernel.UUID) error {
	if err := status.Validate(); err != nil {
		return err
	}
	if err := status.ValidateCanHaveRobot(robot != nil); err != nil {
		return err
	}
	if robot != nil {
		if err := robot.Validate(); err != nil {
			return err
		}
	}
	t.status = status
	t.assignedRobot = cloneID(robot)
	return nil
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	c := *ts
	return &c
}
