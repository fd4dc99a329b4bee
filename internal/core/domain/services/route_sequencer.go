package services

import (
	"cmp"
	"fmt"
	"slices"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/pkg/errs"
)

// RouteStop is one resolved location of a task's route. WaypointID is nil for
// the implicit destination stop of a task without waypoints.
type RouteStop struct {
	WaypointID    *kernel.UUID
	Name          string
	Code          kernel.LocationCode
	SequenceOrder int
}

// Route is the ordered list of stops a robot traverses.
type Route []RouteStop

// Final returns the last stop. Arrival there completes the task.
func (r Route) Final() RouteStop {
	return r[len(r)-1]
}

// RouteSequencer resolves a task's stops against the waypoint catalogue and
// answers "where next" questions. It is deterministic and holds no state.
type RouteSequencer struct{}

// NewRouteSequencer creates a RouteSequencer.
func NewRouteSequencer() RouteSequencer {
	return RouteSequencer{}
}

// Sequence returns the route in ascending sequence order. Retired waypoints
// still resolve; a task without stops is routed straight to its destination.
func (s RouteSequencer) Sequence(t *task.Task, catalogue []*waypoint.Waypoint) (Route, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	stops := t.Stops()
	if len(stops) == 0 {
		return Route{{Name: t.Destination().String(), Code: t.Destination()}}, nil
	}

	byID := make(map[kernel.UUID]*waypoint.Waypoint, len(catalogue))
	for _, w := range catalogue {
		if w.Validate() == nil {
			byID[w.ID()] = w
		}
	}

	slices.SortFunc(stops, func(a, b task.Stop) int {
		return cmp.Compare(a.SequenceOrder, b.SequenceOrder)
	})

	route := make(Route, 0, len(stops))
	for _, stop := range stops {
		w, ok := byID[stop.WaypointID]
		if !ok {
			return nil, errs.NewObjectNotFoundError("waypoint", stop.WaypointID.String())
		}
		id := w.ID()
		route = append(route, RouteStop{
			WaypointID:    &id,
			Name:          w.Name(),
			Code:          w.Code(),
			SequenceOrder: stop.SequenceOrder,
		})
	}

	return route, nil
}

// NextStop returns the stop after completedCode. An empty completedCode
// yields the first stop; the final stop yields done. A code that is not on
// the route is a validation error.
func (s RouteSequencer) NextStop(route Route, completedCode string) (next RouteStop, done bool, err error) {
	if len(route) == 0 {
		return RouteStop{}, false, errs.NewValueIsRequiredError("route")
	}
	if completedCode == "" {
		return route[0], false, nil
	}

	for i, stop := range route {
		if stop.Code.String() != completedCode {
			continue
		}
		if i == len(route)-1 {
			return RouteStop{}, true, nil
		}
		return route[i+1], false, nil
	}

	return RouteStop{}, false, errs.NewValueIsInvalidErrorWithCause(
		"completed location",
		fmt.Errorf("%q is not on the route", completedCode),
	)
}

// IsFinalStop reports whether code is where the route ends.
func (s RouteSequencer) IsFinalStop(route Route, code kernel.LocationCode) bool {
	return len(route) > 0 && route.Final().Code.IsEqual(code)
}
