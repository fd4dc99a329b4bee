package queries

import (
	"errors"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrListWaypointsQueryIsNotConstructed = errors.New(
	"ListWaypointsQuery must be created via NewListWaypointsQuery constructor",
)

// ListWaypointsQuery retrieves the catalogue ordered by code.
type ListWaypointsQuery struct {
	includeRetired bool
	guard          guard.ConstructorGuard
}

func NewListWaypointsQuery(includeRetired bool) ListWaypointsQuery {
	return ListWaypointsQuery{includeRetired: includeRetired, guard: guard.NewConstructorGuard()}
}

func (q ListWaypointsQuery) Validate() error {
	return q.guard.Validate(ErrListWaypointsQueryIsNotConstructed)
}

func (q ListWaypointsQuery) IncludeRetired() bool { return q.includeRetired }

type WaypointView struct {
	ID        kernel.UUID
	Name      string
	Code      string
	X, Y, Z   float64
	Metadata  map[string]any
	Active    bool
	CreatedAt time.Time
}
