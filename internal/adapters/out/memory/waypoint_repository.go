package memory

import (
	"cmp"
	"context"
	"slices"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/pkg/errs"
)

// WaypointRepository implements ports.WaypointRepository over a Store.
type WaypointRepository struct {
	uow *UnitOfWork
}

func (r *WaypointRepository) Add(_ context.Context, w *waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		if _, exists := s.waypoints[w.ID()]; exists {
			return errs.NewDuplicateError("waypoint", w.ID().String())
		}
		for _, other := range s.waypoints {
			if other.Code.IsEqual(w.Code()) {
				return errs.NewDuplicateError("waypoint code", w.Code().String())
			}
			if other.Name == w.Name() {
				return errs.NewDuplicateError("waypoint name", w.Name())
			}
		}
		s.waypoints[w.ID()] = w.Snapshot()
		return nil
	})
}

func (r *WaypointRepository) Update(_ context.Context, w *waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}
	return r.uow.write(func(s *state) error {
		if _, ok := s.waypoints[w.ID()]; !ok {
			return errs.NewObjectNotFoundError("waypoint", w.ID().String())
		}
		s.waypoints[w.ID()] = w.Snapshot()
		return nil
	})
}

func (r *WaypointRepository) Get(_ context.Context, id kernel.UUID) (*waypoint.Waypoint, error) {
	var out *waypoint.Waypoint
	err := r.uow.read(func(s *state) error {
		snap, ok := s.waypoints[id]
		if !ok {
			return errs.NewObjectNotFoundError("waypoint", id.String())
		}
		var err error
		out, err = waypoint.RestoreWaypoint(snap)
		return err
	})
	return out, err
}

func (r *WaypointRepository) GetByCode(_ context.Context, code kernel.LocationCode) (*waypoint.Waypoint, error) {
	var out *waypoint.Waypoint
	err := r.uow.read(func(s *state) error {
		for _, snap := range s.waypoints {
			if snap.Code.IsEqual(code) {
				var err error
				out, err = waypoint.RestoreWaypoint(snap)
				return err
			}
		}
		return errs.NewObjectNotFoundError("waypoint", code.String())
	})
	return out, err
}

func (r *WaypointRepository) ListByIDs(_ context.Context, ids []kernel.UUID) ([]*waypoint.Waypoint, error) {
	var out []*waypoint.Waypoint
	err := r.uow.read(func(s *state) error {
		for _, id := range ids {
			snap, ok := s.waypoints[id]
			if !ok {
				continue
			}
			w, err := waypoint.RestoreWaypoint(snap)
			if err != nil {
				return err
			}
			out = append(out, w)
		}
		return nil
	})
	return out, err
}

func (r *WaypointRepository) List(_ context.Context, includeRetired bool) ([]*waypoint.Waypoint, error) {
	var out []*waypoint.Waypoint
	err := r.uow.read(func(s *state) error {
		for _, snap := range s.waypoints {
			if !includeRetired && !snap.Active {
				continue
			}
			w, err := waypoint.RestoreWaypoint(snap)
			if err != nil {
				return err
			}
			out = append(out, w)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *waypoint.Waypoint) int {
		return cmp.Compare(a.Code().String(), b.Code().String())
	})
	return out, err
}
