package robotrepo

import (
	"context"
	"errors"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
	"luna/internal/pkg/errs"

	"gorm.io/gorm"
)

var holdingStatuses = []string{robot.Busy.String(), robot.Navigating.String()}

// GormRobotRepository implements ports.RobotRepository using GORM.
type GormRobotRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormRobotRepository(db *gorm.DB, tracker aggregateTracker) *GormRobotRepository {
	return &GormRobotRepository{
		db:      db,
		tracker: tracker,
	}
}

func (r *GormRobotRepository) Add(ctx context.Context, rb *robot.Robot, log robot.StatusLog) error {
	if err := rb.Validate(); err != nil {
		return err
	}

	dto := fromDomain(rb)
	logDTO := logFromDomain(log)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dto).Error; err != nil {
			return err
		}
		return tx.Create(&logDTO).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errs.NewDuplicateError("robot", rb.Name())
	}
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(rb.ID(), rb)
	return nil
}

func (r *GormRobotRepository) Get(ctx context.Context, id kernel.UUID) (*robot.Robot, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto RobotDTO
	err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("robot", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}

// CompareAndSwap is a conditional UPDATE keyed on the expected status. Only
// writes that change the status are tracked for dispatch wake-ups.
func (r *GormRobotRepository) CompareAndSwap(ctx context.Context, rb *robot.Robot, expected robot.Status, log robot.StatusLog) error {
	if err := rb.Validate(); err != nil {
		return err
	}

	logDTO := logFromDomain(log)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RobotDTO{}).
			Where("id = ? AND status = ?", rb.ID().Bytes(), expected.String()).
			Updates(stateColumns(rb))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewConflictError("robot", rb.ID().String(), expected.String())
		}
		return tx.Create(&logDTO).Error
	})
	if err != nil {
		return err
	}

	if rb.Status() != expected {
		r.tracker.TrackAggregate(rb.ID(), rb)
	}
	return nil
}

// SwapStatus is CompareAndSwap restricted to the status column. Telemetry
// written by a heartbeat since rb was read stays as stored.
func (r *GormRobotRepository) SwapStatus(ctx context.Context, rb *robot.Robot, expected robot.Status, log robot.StatusLog) error {
	if err := rb.Validate(); err != nil {
		return err
	}

	logDTO := logFromDomain(log)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&RobotDTO{}).
			Where("id = ? AND status = ?", rb.ID().Bytes(), expected.String()).
			Update("status", rb.Status().String())
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return errs.NewConflictError("robot", rb.ID().String(), expected.String())
		}
		return tx.Create(&logDTO).Error
	})
	if err != nil {
		return err
	}

	if rb.Status() != expected {
		r.tracker.TrackAggregate(rb.ID(), rb)
	}
	return nil
}

func (r *GormRobotRepository) ListIdleEligible(ctx context.Context, freshSince time.Time, minBattery float64) ([]*robot.Robot, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status = ?", robot.Idle.String()).
		Where("last_heartbeat >= ?", freshSince).
		Where("battery IS NOT NULL AND battery > ?", minBattery).
		Order("name ASC"))
}

func (r *GormRobotRepository) ListHolding(ctx context.Context) ([]*robot.Robot, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status IN ?", holdingStatuses).
		Order("name ASC"))
}

func (r *GormRobotRepository) List(ctx context.Context) ([]*robot.Robot, error) {
	return r.find(r.db.WithContext(ctx).Order("name ASC"))
}

func (r *GormRobotRepository) StatusLogs(ctx context.Context, robotID kernel.UUID, limit int) ([]robot.StatusLog, error) {
	query := r.db.WithContext(ctx).
		Where("robot_id = ?", robotID.Bytes()).
		Order("recorded_at DESC, seq DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var dtos []StatusLogDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	logs := make([]robot.StatusLog, 0, len(dtos))
	for _, dto := range dtos {
		l, err := logToDomain(dto)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (r *GormRobotRepository) find(query *gorm.DB) ([]*robot.Robot, error) {
	var dtos []RobotDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	robots := make([]*robot.Robot, 0, len(dtos))
	for _, dto := range dtos {
		rb, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		robots = append(robots, rb)
	}
	return robots, nil
}
