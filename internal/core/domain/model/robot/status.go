package robot

import (
	"fmt"

	"luna/internal/pkg/errs"
)

// Status is the operational state of a robot. IDLE is the only dispatchable
// state. BUSY and NAVIGATING are set by the engine while a task is held;
// ERROR and MAINTENANCE are reported by the robot or operators.
type Status int

const (
	Unknown Status = iota
	Idle
	Busy
	Navigating
	Error
	Maintenance
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:     "UNKNOWN",
		Idle:        "IDLE",
		Busy:        "BUSY",
		Navigating:  "NAVIGATING",
		Error:       "ERROR",
		Maintenance: "MAINTENANCE",
	}
}

// ParseStatus converts the wire form reported in heartbeats.
func ParseStatus(s string) (Status, error) {
	for status, str := range getStatusStrings() {
		if str == s && status != Unknown {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("robot status", fmt.Errorf("%q is not a valid robot status", s))
}

func (s Status) Validate() error {
	if s <= Unknown || s > Maintenance {
		return errs.NewValueIsInvalidErrorWithCause("robot status", fmt.Errorf("%d is not a valid robot status", s))
	}
	return nil
}

func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsHolding reports whether the status is one the engine sets while a task is held.
func (s Status) IsHolding() bool {
	return s == Busy || s == Navigating
}

// IsFault reports whether the robot cannot work until an operator intervenes.
func (s Status) IsFault() bool {
	return s == Error || s == Maintenance
}
