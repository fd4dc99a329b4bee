package task

import (
	"fmt"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

// MaxSequenceOrder bounds sequence orders of a route.
const MaxSequenceOrder = 10_000

// Stop joins a task to a catalogue waypoint at a position of its route.
type Stop struct {
	WaypointID    kernel.UUID
	SequenceOrder int
}

// Validate checks the waypoint id and the sequence bounds.
func (s Stop) Validate() error {
	if err := s.WaypointID.Validate(); err != nil {
		return err
	}
	if s.SequenceOrder < 0 || s.SequenceOrder > MaxSequenceOrder {
		return errs.NewValueIsOutOfRangeError("sequence order", s.SequenceOrder, 0, MaxSequenceOrder)
	}
	return nil
}

func validateStops(stops []Stop) error {
	seenOrder := make(map[int]struct{}, len(stops))
	seenWaypoint := make(map[kernel.UUID]struct{}, len(stops))
	for _, s := range stops {
		if err := s.Validate(); err != nil {
			return err
		}
		if _, dup := seenOrder[s.SequenceOrder]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"waypoints",
				fmt.Errorf("sequence order %d is used more than once", s.SequenceOrder),
			)
		}
		if _, dup := seenWaypoint[s.WaypointID]; dup {
			return errs.NewValueIsInvalidErrorWithCause(
				"waypoints",
				fmt.Errorf("waypoint %s is used more than once", s.WaypointID),
			)
		}
		seenOrder[s.SequenceOrder] = struct{}{}
		seenWaypoint[s.WaypointID] = struct{}{}
	}
	return nil
}
