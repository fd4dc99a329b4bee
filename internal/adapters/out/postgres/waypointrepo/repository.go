package waypointrepo

import (
	"context"
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/waypoint"
	"luna/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormWaypointRepository implements ports.WaypointRepository using GORM.
type GormWaypointRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormWaypointRepository(db *gorm.DB, tracker aggregateTracker) *GormWaypointRepository {
	return &GormWaypointRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormWaypointRepository) Add(ctx context.Context, w *waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}

	dto := fromDomain(w)
	err := r.db.WithContext(ctx).Create(&dto).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewDuplicateError("waypoint", w.Code().String())
	}
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(w.ID(), w)
	return nil
}

// Update writes the mutable columns. Name and code never change.
func (r *GormWaypointRepository) Update(ctx context.Context, w *waypoint.Waypoint) error {
	if err := w.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&WaypointDTO{}).
		Where("id = ?", w.ID().Bytes()).
		Updates(map[string]any{
			"active":   w.IsActive(),
			"metadata": datatypes.JSONMap(w.Metadata()),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.NewObjectNotFoundError("waypoint", w.ID().String())
	}

	r.tracker.TrackAggregate(w.ID(), w)
	return nil
}

func (r *GormWaypointRepository) Get(ctx context.Context, id kernel.UUID) (*waypoint.Waypoint, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx).Where("id = ?", id.Bytes()), id.String())
}

func (r *GormWaypointRepository) GetByCode(ctx context.Context, code kernel.LocationCode) (*waypoint.Waypoint, error) {
	if err := code.Validate(); err != nil {
		return nil, err
	}
	return r.first(r.db.WithContext(ctx).Where("code = ?", code.String()), code.String())
}

func (r *GormWaypointRepository) ListByIDs(ctx context.Context, ids []kernel.UUID) ([]*waypoint.Waypoint, error) {
	if len(ids) == 0 {
		return []*waypoint.Waypoint{}, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	return r.find(r.db.WithContext(ctx).Where("id IN ?", raw).Order("code ASC"))
}

func (r *GormWaypointRepository) List(ctx context.Context, includeRetired bool) ([]*waypoint.Waypoint, error) {
	query := r.db.WithContext(ctx).Order("code ASC")
	if !includeRetired {
		query = query.Where("active = ?", true)
	}
	return r.find(query)
}

func (r *GormWaypointRepository) first(query *gorm.DB, key string) (*waypoint.Waypoint, error) {
	var dto WaypointDTO
	err := query.First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("waypoint", key)
	}
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormWaypointRepository) find(query *gorm.DB) ([]*waypoint.Waypoint, error) {
	var dtos []WaypointDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	waypoints := make([]*waypoint.Waypoint, 0, len(dtos))
	for _, dto := range dtos {
		w, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		waypoints = append(waypoints, w)
	}
	return waypoints, nil
}
