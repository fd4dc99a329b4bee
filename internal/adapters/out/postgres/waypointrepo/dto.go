// Package waypointrepo persists the waypoint catalogue.
package waypointrepo

import (
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/waypoint"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WaypointDTO struct {
	ID        uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Name      string            `gorm:"type:varchar(100);not null;uniqueIndex"`
	Code      string            `gorm:"type:varchar(120);not null;uniqueIndex"`
	X         float64           `gorm:"column:coord_x;not null"`
	Y         float64           `gorm:"column:coord_y;not null"`
	Z         float64           `gorm:"column:coord_z;not null"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb"`
	Active    bool              `gorm:"not null;default:true"`
	CreatedAt time.Time         `gorm:"not null"`
}

func (WaypointDTO) TableName() string {
	return "waypoints"
}

func fromDomain(w *waypoint.Waypoint) WaypointDTO {
	snap := w.Snapshot()
	return WaypointDTO{
		ID:        snap.ID.Bytes(),
		Name:      snap.Name,
		Code:      snap.Code.String(),
		X:         snap.X,
		Y:         snap.Y,
		Z:         snap.Z,
		Metadata:  datatypes.JSONMap(snap.Metadata),
		Active:    snap.Active,
		CreatedAt: snap.CreatedAt,
	}
}

func toDomain(dto WaypointDTO) (*waypoint.Waypoint, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	code, err := kernel.NewLocationCode(dto.Code)
	if err != nil {
		return nil, err
	}

	return waypoint.RestoreWaypoint(waypoint.Snapshot{
		ID:        id,
		Name:      dto.Name,
		Code:      code,
		X:         dto.X,
		Y:         dto.Y,
		Z:         dto.Z,
		Metadata:  dto.Metadata,
		Active:    dto.Active,
		CreatedAt: dto.CreatedAt,
	})
}
