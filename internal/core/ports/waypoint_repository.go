package ports

import (
	"context"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/waypoint"
)

// WaypointRepository is the waypoint catalogue.
type WaypointRepository interface {
	// Add stores a waypoint. A duplicate name or code yields an errs.ConflictError.
	Add(ctx context.Context, w *waypoint.Waypoint) error

	// Update persists the active flag and metadata of an existing waypoint.
	Update(ctx context.Context, w *waypoint.Waypoint) error

	Get(ctx context.Context, id kernel.UUID) (*waypoint.Waypoint, error)
	GetByCode(ctx context.Context, code kernel.LocationCode) (*waypoint.Waypoint, error)

	// ListByIDs returns the waypoints that exist among ids, retired ones included.
	ListByIDs(ctx context.Context, ids []kernel.UUID) ([]*waypoint.Waypoint, error)

	// List returns waypoints ordered by code.
	List(ctx context.Context, includeRetired bool) ([]*waypoint.Waypoint, error)
}
