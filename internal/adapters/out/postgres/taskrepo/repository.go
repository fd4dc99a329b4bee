package taskrepo

import (
	"context"
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/pkg/errs"

	"gorm.io/gorm"
)

var (
	waitingStatuses = []string{task.Pending.String(), task.Queued.String()}
	activeStatuses  = []string{task.Assigned.String(), task.InProgress.String()}
	terminal        = []string{task.Completed.String(), task.Failed.String(), task.Cancelled.String()}
)

// dispatchOrder is priority desc, age asc, id asc, matching the matcher.
const dispatchOrder = "priority DESC, created_at ASC, id ASC"

// GormTaskRepository implements ports.TaskRepository using GORM.
type GormTaskRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormTaskRepository(db *gorm.DB, tracker aggregateTracker) *GormTaskRepository {
	return &GormTaskRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the task, its route and its creation history row.
func (r *GormTaskRepository) Add(ctx context.Context, t *task.Task, created *task.History) error {
	if err := errors.Join(t.Validate(), created.Validate()); err != nil {
		return err
	}

	dto := fromDomain(t)
	history := historyFromDomain(created)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&dto).Error; err != nil {
			return err
		}
		return tx.Create(&history).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// the primary key or the active reference index
		return errs.NewDuplicateError("task "+t.ID().String()+" or active task for", t.Reference().String())
	}
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(t.ID(), t)
	return nil
}

func (r *GormTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto TaskDTO
	err := r.db.WithContext(ctx).Preload("Stops").First(&dto, "id = ?", id.Bytes()).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("task", id.String())
	}
	if err != nil {
		return nil, err
	}

	return toDomain(dto)
}

func (r *GormTaskRepository) ListPending(ctx context.Context, limit int) ([]*task.Task, error) {
	query := r.db.WithContext(ctx).Preload("Stops").
		Where("status IN ?", waitingStatuses).
		Order(dispatchOrder)
	if limit > 0 {
		query = query.Limit(limit)
	}
	return r.find(query)
}

// UpdateStatus writes the transition only if the stored status still equals
// expected, and appends entry in the same transaction.
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, t *task.Task, expected task.Status, entry *task.History) error {
	if err := errors.Join(t.Validate(), entry.Validate()); err != nil {
		return err
	}

	history := historyFromDomain(entry)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&TaskDTO{}).
			Where("id = ? AND status = ?", t.ID().Bytes(), expected.String()).
			Updates(statusColumns(t))
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missOrConflict(tx, t.ID(), expected)
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(t.ID(), t)
	return nil
}

func (r *GormTaskRepository) missOrConflict(tx *gorm.DB, id kernel.UUID, expected task.Status) error {
	var count int64
	if err := tx.Model(&TaskDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("task", id.String())
	}
	return errs.NewConflictError("task", id.String(), expected.String())
}

func (r *GormTaskRepository) GetActiveByRobot(ctx context.Context, robotID kernel.UUID) (*task.Task, error) {
	var dto TaskDTO
	err := r.db.WithContext(ctx).Preload("Stops").
		Where("assigned_robot_id = ? AND status IN ?", robotID.Bytes(), activeStatuses).
		Order("created_at ASC").
		First(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewObjectNotFoundError("active task of robot", robotID.String())
	}
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

func (r *GormTaskRepository) ListActive(ctx context.Context) ([]*task.Task, error) {
	return r.find(r.db.WithContext(ctx).Preload("Stops").
		Where("status NOT IN ?", terminal).
		Order(dispatchOrder))
}

// History returns the audit rows oldest first.
func (r *GormTaskRepository) History(ctx context.Context, taskID kernel.UUID) ([]*task.History, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&TaskDTO{}).Where("id = ?", taskID.Bytes()).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, errs.NewObjectNotFoundError("task", taskID.String())
	}

	var dtos []HistoryDTO
	if err := r.db.WithContext(ctx).
		Where("task_id = ?", taskID.Bytes()).
		Order("changed_at ASC, seq ASC").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	entries := make([]*task.History, 0, len(dtos))
	for _, dto := range dtos {
		h, err := historyToDomain(dto)
		if err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, nil
}

func (r *GormTaskRepository) CountByStatus(ctx context.Context) (map[task.Status]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	if err := r.db.WithContext(ctx).Model(&TaskDTO{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[task.Status]int, len(rows))
	for _, row := range rows {
		status, err := task.ParseStatus(row.Status)
		if err != nil {
			return nil, err
		}
		counts[status] = row.Count
	}
	return counts, nil
}

func (r *GormTaskRepository) ListByReference(ctx context.Context, ref task.Reference) ([]*task.Task, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Preload("Stops")
	if id := ref.RequestID(); id != nil {
		query = query.Where("request_id = ?", id.Bytes())
	} else {
		query = query.Where("return_id = ?", ref.ReturnID().Bytes())
	}
	return r.find(query.Order("attempt ASC, created_at ASC"))
}

func (r *GormTaskRepository) find(query *gorm.DB) ([]*task.Task, error) {
	var dtos []TaskDTO
	if err := query.Find(&dtos).Error; err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(dtos))
	for _, dto := range dtos {
		t, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
