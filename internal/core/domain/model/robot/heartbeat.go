package robot

import (
	"errors"
	"maps"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

const (
	MinBattery = 0.0
	MaxBattery = 100.0
)

// Heartbeat is a single telemetry report from a robot.
type Heartbeat struct {
	RobotID    kernel.UUID
	Name       string
	Status     Status
	Location   *kernel.LocationCode
	Battery    *float64
	SensorData map[string]any
	At         time.Time
}

// Validate checks the report before it touches the registry.
func (h Heartbeat) Validate() error {
	var batteryErr error
	if h.Battery != nil && (*h.Battery < MinBattery || *h.Battery > MaxBattery) {
		batteryErr = errs.NewValueIsOutOfRangeError("battery", *h.Battery, MinBattery, MaxBattery)
	}
	var locationErr error
	if h.Location != nil {
		locationErr = h.Location.Validate()
	}
	var atErr error
	if h.At.IsZero() {
		atErr = errs.NewValueIsRequiredError("heartbeat timestamp")
	}
	return errors.Join(h.RobotID.Validate(), h.Status.Validate(), batteryErr, locationErr, atErr)
}

func cloneSensorData(m map[string]any) map[string]any {
	return maps.Clone(m)
}
