package robot

import (
	"time"

	"luna/internal/core/domain/model/kernel"
)

// StatusLog is one append-only telemetry row written on every
// status-affecting update.
type StatusLog struct {
	ID         kernel.UUID
	RobotID    kernel.UUID
	Status     Status
	Location   *kernel.LocationCode
	Battery    *float64
	SensorData map[string]any
	RecordedAt time.Time
}

// NewStatusLog captures the robot's current state.
func NewStatusLog(r *Robot, at time.Time) StatusLog {
	return StatusLog{
		ID:         kernel.NewUUID(),
		RobotID:    r.id,
		Status:     r.status,
		Location:   cloneCode(r.location),
		Battery:    cloneFloat(r.battery),
		SensorData: cloneSensorData(r.sensorData),
		RecordedAt: at.UTC(),
	}
}
