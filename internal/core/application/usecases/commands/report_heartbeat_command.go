package commands

import (
	"errors"
	"maps"
	"strings"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"
)

var ErrReportHeartbeatCommandIsNotConstructed = errors.New(
	"ReportHeartbeatCommand must be created via NewReportHeartbeatCommand constructor",
)

// ReportHeartbeatCommand is one telemetry report from a robot. Location,
// battery and sensor data are optional; absent values keep what the registry
// already knows.
type ReportHeartbeatCommand struct { //nolint:recvcheck //using for validation
	robotID    kernel.UUID
	name       string
	status     robot.Status
	location   *kernel.LocationCode
	battery    *float64
	sensorData map[string]any

	guard guard.ConstructorGuard
}

// NewReportHeartbeatCommand validates a report. name is only used when the
// robot is seen for the first time.
func NewReportHeartbeatCommand(
	robotID kernel.UUID,
	name string,
	status string,
	location *string,
	battery *float64,
	sensorData map[string]any,
) (ReportHeartbeatCommand, error) {
	cmd := ReportHeartbeatCommand{
		robotID:    robotID,
		name:       strings.TrimSpace(name),
		sensorData: maps.Clone(sensorData),
		guard:      guard.NewConstructorGuard(),
	}

	var statusErr, locationErr, batteryErr error
	cmd.status, statusErr = robot.ParseStatus(status)
	if location != nil {
		var code kernel.LocationCode
		code, locationErr = kernel.NewLocationCode(*location)
		cmd.location = &code
	}
	if battery != nil {
		if *battery < robot.MinBattery || *battery > robot.MaxBattery {
			batteryErr = errs.NewValueIsOutOfRangeError("battery", *battery, robot.MinBattery, robot.MaxBattery)
		}
		b := *battery
		cmd.battery = &b
	}

	if err := errors.Join(robotID.Validate(), statusErr, locationErr, batteryErr); err != nil {
		return ReportHeartbeatCommand{}, err
	}
	return cmd, nil
}

func (c ReportHeartbeatCommand) Validate() error {
	return c.guard.Validate(ErrReportHeartbeatCommandIsNotConstructed)
}

func (c ReportHeartbeatCommand) RobotID() kernel.UUID { return c.robotID }
func (c ReportHeartbeatCommand) Status() robot.Status { return c.status }

// Heartbeat builds the domain report stamped with the receive time.
func (c ReportHeartbeatCommand) Heartbeat(at time.Time) robot.Heartbeat {
	hb := robot.Heartbeat{
		RobotID:    c.robotID,
		Name:       c.name,
		Status:     c.status,
		SensorData: maps.Clone(c.sensorData),
		At:         at,
	}
	if c.location != nil {
		code := *c.location
		hb.Location = &code
	}
	if c.battery != nil {
		b := *c.battery
		hb.Battery = &b
	}
	return hb
}
