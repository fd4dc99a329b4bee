// Package robotrepo persists the robot registry and its status log.
package robotrepo

import (
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type RobotDTO struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name          string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	Status        string            `gorm:"type:varchar(16);not null;index"`
	Location      *string           `gorm:"type:varchar(120)"`
	Battery       *float64          `gorm:"type:double precision"`
	LastHeartbeat *time.Time        `gorm:"index"`
	SensorData    datatypes.JSONMap `gorm:"type:jsonb"`
}

func (RobotDTO) TableName() string {
	return "robots"
}

// StatusLogDTO is one robot_status_logs row. Seq breaks ties between rows
// recorded at the same instant.
type StatusLogDTO struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Seq        int64             `gorm:"type:bigserial;autoIncrement;<-:false;index"`
	RobotID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_robot_status_logs_robot,priority:1"`
	Status     string            `gorm:"type:varchar(16);not null"`
	Location   *string           `gorm:"type:varchar(120)"`
	Battery    *float64          `gorm:"type:double precision"`
	SensorData datatypes.JSONMap `gorm:"type:jsonb"`
	RecordedAt time.Time         `gorm:"not null;index:idx_robot_status_logs_robot,priority:2"`
}

func (StatusLogDTO) TableName() string {
	return "robot_status_logs"
}

func fromDomain(r *robot.Robot) RobotDTO {
	snap := r.Snapshot()
	return RobotDTO{
		ID:            snap.ID.Bytes(),
		Name:          snap.Name,
		Status:        snap.Status.String(),
		Location:      rawCode(snap.Location),
		Battery:       snap.Battery,
		LastHeartbeat: snap.LastHeartbeat,
		SensorData:    datatypes.JSONMap(snap.SensorData),
	}
}

// stateColumns are the columns CompareAndSwap rewrites. The name is fixed
// at registration.
func stateColumns(r *robot.Robot) map[string]any {
	dto := fromDomain(r)
	return map[string]any{
		"status":         dto.Status,
		"location":       dto.Location,
		"battery":        dto.Battery,
		"last_heartbeat": dto.LastHeartbeat,
		"sensor_data":    dto.SensorData,
	}
}

func toDomain(dto RobotDTO) (*robot.Robot, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	status, err := robot.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	location, err := domainCode(dto.Location)
	if err != nil {
		return nil, err
	}

	return robot.RestoreRobot(robot.Snapshot{
		ID:            id,
		Name:          dto.Name,
		Status:        status,
		Location:      location,
		Battery:       dto.Battery,
		LastHeartbeat: dto.LastHeartbeat,
		SensorData:    dto.SensorData,
	})
}

func logFromDomain(l robot.StatusLog) StatusLogDTO {
	return StatusLogDTO{
		ID:         l.ID.Bytes(),
		RobotID:    l.RobotID.Bytes(),
		Status:     l.Status.String(),
		Location:   rawCode(l.Location),
		Battery:    l.Battery,
		SensorData: datatypes.JSONMap(l.SensorData),
		RecordedAt: l.RecordedAt,
	}
}

func logToDomain(dto StatusLogDTO) (robot.StatusLog, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return robot.StatusLog{}, err
	}
	robotID, err := kernel.UUIDFromBytes(dto.RobotID[:])
	if err != nil {
		return robot.StatusLog{}, err
	}
	status, err := robot.ParseStatus(dto.Status)
	if err != nil {
		return robot.StatusLog{}, err
	}
	location, err := domainCode(dto.Location)
	if err != nil {
		return robot.StatusLog{}, err
	}

	return robot.StatusLog{
		ID:         id,
		RobotID:    robotID,
		Status:     status,
		Location:   location,
		Battery:    dto.Battery,
		SensorData: dto.SensorData,
		RecordedAt: dto.RecordedAt,
	}, nil
}

func rawCode(c *kernel.LocationCode) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func domainCode(s *string) (*kernel.LocationCode, error) {
	if s == nil {
		return nil, nil
	}
	c, err := kernel.NewLocationCode(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
