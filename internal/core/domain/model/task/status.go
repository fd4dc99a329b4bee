package task

import (
	"fmt"

	"luna/internal/pkg/errs"
)

// Status is the lifecycle state of a delivery task.
//
//	PENDING ──┬──> QUEUED ──┬──> ASSIGNED ──> IN_PROGRESS ──┬──> COMPLETED
//	          │             │      │  │                     └──> FAILED
//	          └─────────────┼──────┘  ├──> FAILED
//	                        │         ├──> CANCELLED
//	          CANCELLED <───┘         └──> QUEUED (compensation)
//
// COMPLETED, FAILED and CANCELLED are terminal.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota
	Pending
	Queued
	Assigned
	InProgress
	Completed
	Failed
	Cancelled
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "UNKNOWN",
		Pending:    "PENDING",
		Queued:     "QUEUED",
		Assigned:   "ASSIGNED",
		InProgress: "IN_PROGRESS",
		Completed:  "COMPLETED",
		Failed:     "FAILED",
		Cancelled:  "CANCELLED",
	}
}

// transitions is the complete table of legal moves. Anything absent is illegal.
func transitions() map[Status][]Status {
	//nolint:exhaustive // terminal and unknown states have no exits
	return map[Status][]Status{
		Pending:    {Queued, Assigned, Cancelled},
		Queued:     {Assigned, Cancelled},
		Assigned:   {InProgress, Failed, Cancelled, Queued},
		InProgress: {Completed, Failed},
	}
}

// ParseStatus converts the persisted/wire form back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid task status", s))
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid task status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transitions are possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Failed || s == Cancelled
}

// IsActive reports whether a task in this state holds a robot.
func (s Status) IsActive() bool {
	return s == Assigned || s == InProgress
}

// IsWaiting reports whether the task is eligible for dispatch.
func (s Status) IsWaiting() bool {
	return s == Pending || s == Queued
}

// CanTransitionTo reports whether s -> to is in the transition table.
func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions()[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateTransition returns an IllegalTransitionError when s -> to is not allowed.
func (s Status) ValidateTransition(to Status) error {
	if !s.CanTransitionTo(to) {
		return errs.NewIllegalTransitionError("task", s.String(), to.String())
	}
	return nil
}

// ValidateCanHaveRobot checks the binding invariant: a robot is assigned if
// and only if the task is ASSIGNED or IN_PROGRESS.
func (s Status) ValidateCanHaveRobot(hasRobot bool) error {
	if hasRobot && !s.IsActive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"assigned robot",
			fmt.Errorf("%s task cannot have a robot", s),
		)
	}
	if !hasRobot && s.IsActive() {
		return errs.NewValueIsInvalidErrorWithCause(
			"assigned robot",
			fmt.Errorf("%s task must have a robot", s),
		)
	}
	return nil
}
