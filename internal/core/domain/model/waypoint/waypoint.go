package waypoint

import (
	"errors"
	"maps"
	"math"
	"strings"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

// MaxNameLength bounds waypoint names.
const MaxNameLength = 100

var (
	// ErrWaypointIsNotConstructed is returned when a Waypoint was not created
	// through NewWaypoint or RestoreWaypoint.
	ErrWaypointIsNotConstructed = errors.New("Waypoint must be created via NewWaypoint constructor")
)

// Waypoint is a named campus location robots can be routed through. Tasks
// reference waypoints by id; retiring a waypoint hides it from new tasks but
// leaves existing references intact.
type Waypoint struct {
	id            kernel.UUID
	name          string
	code          kernel.LocationCode
	x, y, z       float64
	metadata      map[string]any
	active        bool
	createdAt     time.Time
	isConstructed bool
}

// NewWaypoint creates an active waypoint.
func NewWaypoint(
	id kernel.UUID,
	name string,
	code kernel.LocationCode,
	x, y, z float64,
	metadata map[string]any,
	createdAt time.Time,
) (*Waypoint, error) {
	w := &Waypoint{
		metadata:      maps.Clone(metadata),
		active:        true,
		createdAt:     createdAt.UTC(),
		isConstructed: true,
	}

	if err := errors.Join(
		w.setID(id),
		w.setName(name),
		w.setCode(code),
		w.setCoordinates(x, y, z),
	); err != nil {
		return nil, err
	}

	return w, nil
}

// Snapshot is the flat representation used by persistence adapters.
type Snapshot struct {
	ID        kernel.UUID
	Name      string
	Code      kernel.LocationCode
	X, Y, Z   float64
	Metadata  map[string]any
	Active    bool
	CreatedAt time.Time
}

// RestoreWaypoint rebuilds a waypoint from storage.
func RestoreWaypoint(s Snapshot) (*Waypoint, error) {
	w, err := NewWaypoint(s.ID, s.Name, s.Code, s.X, s.Y, s.Z, s.Metadata, s.CreatedAt)
	if err != nil {
		return nil, err
	}
	w.active = s.Active
	return w, nil
}

// Snapshot returns a copy of the waypoint's state.
func (w *Waypoint) Snapshot() Snapshot {
	return Snapshot{
		ID:        w.id,
		Name:      w.name,
		Code:      w.code,
		X:         w.x,
		Y:         w.y,
		Z:         w.z,
		Metadata:  maps.Clone(w.metadata),
		Active:    w.active,
		CreatedAt: w.createdAt,
	}
}

func (w *Waypoint) Validate() error {
	if w == nil || !w.isConstructed {
		return ErrWaypointIsNotConstructed
	}
	return nil
}

func (w *Waypoint) ID() kernel.UUID           { return w.id }
func (w *Waypoint) Name() string              { return w.name }
func (w *Waypoint) Code() kernel.LocationCode { return w.code }
func (w *Waypoint) X() float64                { return w.x }
func (w *Waypoint) Y() float64                { return w.y }
func (w *Waypoint) Z() float64                { return w.z }
func (w *Waypoint) Metadata() map[string]any  { return maps.Clone(w.metadata) }
func (w *Waypoint) IsActive() bool            { return w.active }
func (w *Waypoint) CreatedAt() time.Time      { return w.createdAt }
func (w *Waypoint) IsEqual(other *Waypoint) bool {
	return other != nil && w.id.IsEqual(other.id)
}

// Retire hides the waypoint from new tasks. Retiring twice is a no-op.
func (w *Waypoint) Retire() error {
	if err := w.Validate(); err != nil {
		return err
	}
	w.active = false
	return nil
}

// ValidateUsable rejects retired waypoints when a new task references them.
func (w *Waypoint) ValidateUsable() error {
	if err := w.Validate(); err != nil {
		return err
	}
	if !w.active {
		return errs.NewValueIsInvalidErrorWithCause("waypoint", errors.New(w.code.String()+" is retired"))
	}
	return nil
}

func (w *Waypoint) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	w.id = id
	return nil
}

func (w *Waypoint) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	if len(name) > MaxNameLength {
		return errs.NewValueIsOutOfRangeError("name length", len(name), 1, MaxNameLength)
	}
	w.name = name
	return nil
}

func (w *Waypoint) setCode(code kernel.LocationCode) error {
	if err := code.Validate(); err != nil {
		return err
	}
	w.code = code
	return nil
}

func (w *Waypoint) setCoordinates(x, y, z float64) error {
	for _, c := range []float64{x, y, z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errs.NewValueIsInvalidError("coordinates")
		}
	}
	w.x, w.y, w.z = x, y, z
	return nil
}
