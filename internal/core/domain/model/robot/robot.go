package robot

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

// MaxNameLength bounds robot names.
const MaxNameLength = 100

var (
	// ErrRobotIsNotConstructed is returned when a Robot was not created through
	// NewRobot or RestoreRobot.
	ErrRobotIsNotConstructed = errors.New("Robot must be created via NewRobot constructor")
)

// Robot is the registry's aggregate root. Its status is the single source of
// truth for dispatch eligibility; location, battery and sensor data are the
// latest telemetry and are never interpreted beyond eligibility and arrival.
type Robot struct {
	id            kernel.UUID
	name          string
	status        Status
	location      *kernel.LocationCode
	battery       *float64
	lastHeartbeat *time.Time
	sensorData    map[string]any
	isConstructed bool
}

// NewRobot registers a robot in IDLE state with no telemetry yet.
func NewRobot(id kernel.UUID, name string) (*Robot, error) {
	r := &Robot{
		status:        Idle,
		isConstructed: true,
	}

	if err := errors.Join(r.setID(id), r.setName(name)); err != nil {
		return nil, err
	}

	return r, nil
}

// NewRobotFromHeartbeat registers an unknown robot from its first report.
// The name falls back to the robot id when the report carries none.
func NewRobotFromHeartbeat(hb Heartbeat) (*Robot, error) {
	if err := hb.Validate(); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(hb.Name)
	if name == "" {
		name = hb.RobotID.String()
	}
	r, err := NewRobot(hb.RobotID, name)
	if err != nil {
		return nil, err
	}
	r.status = hb.Status
	r.recordTelemetry(hb)
	return r, nil
}

// Snapshot is the flat representation used by persistence adapters.
type Snapshot struct {
	ID            kernel.UUID
	Name          string
	Status        Status
	Location      *kernel.LocationCode
	Battery       *float64
	LastHeartbeat *time.Time
	SensorData    map[string]any
}

// RestoreRobot rebuilds a robot from storage.
func RestoreRobot(s Snapshot) (*Robot, error) {
	r := &Robot{isConstructed: true}

	var batteryErr error
	if s.Battery != nil && (*s.Battery < MinBattery || *s.Battery > MaxBattery) {
		batteryErr = errs.NewValueIsOutOfRangeError("battery", *s.Battery, MinBattery, MaxBattery)
	}

	if err := errors.Join(r.setID(s.ID), r.setName(s.Name), s.Status.Validate(), batteryErr); err != nil {
		return nil, err
	}

	r.status = s.Status
	r.location = cloneCode(s.Location)
	r.battery = cloneFloat(s.Battery)
	r.lastHeartbeat = cloneTime(s.LastHeartbeat)
	r.sensorData = cloneSensorData(s.SensorData)
	return r, nil
}

// Snapshot returns a deep copy of the robot's state.
func (r *Robot) Snapshot() Snapshot {
	return Snapshot{
		ID:            r.id,
		Name:          r.name,
		Status:        r.status,
		Location:      cloneCode(r.location),
		Battery:       cloneFloat(r.battery),
		LastHeartbeat: cloneTime(r.lastHeartbeat),
		SensorData:    cloneSensorData(r.sensorData),
	}
}

func (r *Robot) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRobotIsNotConstructed
	}
	return nil
}

func (r *Robot) IsEqual(other *Robot) bool {
	return other != nil && r.id.IsEqual(other.id)
}

func (r *Robot) ID() kernel.UUID                { return r.id }
func (r *Robot) Name() string                   { return r.name }
func (r *Robot) Status() Status                 { return r.status }
func (r *Robot) Location() *kernel.LocationCode { return cloneCode(r.location) }
func (r *Robot) Battery() *float64              { return cloneFloat(r.battery) }
func (r *Robot) LastHeartbeat() *time.Time      { return cloneTime(r.lastHeartbeat) }
func (r *Robot) SensorData() map[string]any     { return cloneSensorData(r.sensorData) }

// IsAt reports whether the last reported location equals code.
func (r *Robot) IsAt(code kernel.LocationCode) bool {
	return r.location != nil && r.location.IsEqual(code)
}

// IsEligible reports whether the robot may receive a task: IDLE, a heartbeat
// no older than freshSince, and a known battery level above minBattery.
func (r *Robot) IsEligible(freshSince time.Time, minBattery float64) bool {
	if r.status != Idle || r.lastHeartbeat == nil || r.battery == nil {
		return false
	}
	return !r.lastHeartbeat.Before(freshSince) && *r.battery > minBattery
}

// IsStale reports whether the last heartbeat is older than cutoff.
func (r *Robot) IsStale(cutoff time.Time) bool {
	return r.lastHeartbeat == nil || r.lastHeartbeat.Before(cutoff)
}

// ApplyHeartbeat merges a telemetry report. Reported ERROR and MAINTENANCE
// always apply. Any other reported status is ignored while the robot holds a
// task in an engine-managed BUSY or NAVIGATING state; the engine moves those.
// Telemetry (location, battery, sensors, timestamp) is always recorded.
func (r *Robot) ApplyHeartbeat(hb Heartbeat, holdsTask bool) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if err := hb.Validate(); err != nil {
		return err
	}
	if !hb.RobotID.IsEqual(r.id) {
		return errs.NewValueIsInvalidErrorWithCause(
			"heartbeat",
			fmt.Errorf("report for %s applied to robot %s", hb.RobotID, r.id),
		)
	}

	switch {
	case hb.Status.IsFault():
		r.status = hb.Status
	case holdsTask && r.status.IsHolding():
		// engine-managed
	default:
		r.status = hb.Status
	}

	r.recordTelemetry(hb)
	return nil
}

// Claim reserves an IDLE robot for a task.
func (r *Robot) Claim() error {
	return r.moveTo(Busy, Idle)
}

// StartNavigating marks a claimed robot as driving its route.
func (r *Robot) StartNavigating() error {
	return r.moveTo(Navigating, Busy)
}

// Release returns a robot to IDLE after its task ends. A robot in ERROR or
// MAINTENANCE keeps that status; released reports whether IDLE was set.
func (r *Robot) Release() (released bool, err error) {
	if err = r.Validate(); err != nil {
		return false, err
	}
	switch {
	case r.status.IsFault():
		return false, nil
	case r.status.IsHolding():
		r.status = Idle
		return true, nil
	default:
		return false, nil
	}
}

func (r *Robot) moveTo(to Status, allowedFrom ...Status) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for _, from := range allowedFrom {
		if r.status == from {
			r.status = to
			return nil
		}
	}
	return errs.NewIllegalTransitionError("robot", r.status.String(), to.String())
}

func (r *Robot) recordTelemetry(hb Heartbeat) {
	if hb.Location != nil {
		r.location = cloneCode(hb.Location)
	}
	if hb.Battery != nil {
		r.battery = cloneFloat(hb.Battery)
	}
	if hb.SensorData != nil {
		r.sensorData = cloneSensorData(hb.SensorData)
	}
	at := hb.At.UTC()
	r.lastHeartbeat = &at
}

func (r *Robot) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Robot) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	if len(name) > MaxNameLength {
		return errs.NewValueIsOutOfRangeError("name length", len(name), 1, MaxNameLength)
	}
	r.name = name
	return nil
}

func cloneCode(c *kernel.LocationCode) *kernel.LocationCode {
	if c == nil {
		return nil
	}
	v := *c
	return &v
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func cloneTime(ts *time.Time) *time.Time {
	if ts == nil {
		return nil
	}
	v := *ts
	return &v
}
