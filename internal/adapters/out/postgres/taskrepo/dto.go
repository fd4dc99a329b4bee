// Package taskrepo persists the task aggregate: the delivery_tasks row, its
// task_waypoints route joins and the append-only task_status_history audit.
package taskrepo

import (
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TaskDTO is a delivery_tasks row. Exactly one of RequestID and ReturnID is
// set; the check constraint enforces it for writers other than this engine.
type TaskDTO struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey"`
	RequestID       *uuid.UUID        `gorm:"type:uuid;index;check:chk_delivery_tasks_reference,(request_id IS NULL) <> (return_id IS NULL)"`
	ReturnID        *uuid.UUID        `gorm:"type:uuid;index"`
	Type            string            `gorm:"type:varchar(32);not null"`
	Priority        int               `gorm:"type:smallint;not null;index:idx_delivery_tasks_dispatch,priority:3,sort:desc"`
	Status          string            `gorm:"type:varchar(16);not null;index"`
	AssignedRobotID *uuid.UUID        `gorm:"type:uuid;index"`
	Source          string            `gorm:"type:varchar(120);not null"`
	Destination     string            `gorm:"type:varchar(120);not null"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	Attempt         int               `gorm:"not null;default:0"`
	RetryOf         *uuid.UUID        `gorm:"type:uuid"`
	CreatedAt       time.Time         `gorm:"not null;index:idx_delivery_tasks_dispatch,priority:4"`
	StartedAt       *time.Time
	CompletedAt     *time.Time

	Stops []TaskWaypointDTO `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (TaskDTO) TableName() string {
	return "delivery_tasks"
}

// activeReferenceIndex allows one non-terminal task per request or return.
// A retry is inserted after its failed predecessor is marked FAILED within
// the same transaction, so the index is never hit by the retry path.
const activeReferenceIndex = `CREATE UNIQUE INDEX IF NOT EXISTS uq_delivery_tasks_active_reference
	ON delivery_tasks (COALESCE(request_id, return_id))
	WHERE status NOT IN ('COMPLETED', 'FAILED', 'CANCELLED')`

// CreateIndexes adds the indexes struct tags cannot express. It expects the
// delivery_tasks table to exist.
func CreateIndexes(db *gorm.DB) error {
	return db.Exec(activeReferenceIndex).Error
}

// TaskWaypointDTO joins a task to a catalogue waypoint at a route position.
type TaskWaypointDTO struct {
	TaskID        uuid.UUID `gorm:"type:uuid;primaryKey;uniqueIndex:uq_task_waypoints_sequence,priority:1"`
	WaypointID    uuid.UUID `gorm:"type:uuid;primaryKey;index"`
	SequenceOrder int       `gorm:"not null;uniqueIndex:uq_task_waypoints_sequence,priority:2"`
}

func (TaskWaypointDTO) TableName() string {
	return "task_waypoints"
}

// HistoryDTO is one task_status_history row. Seq is assigned by the database
// and orders rows written within the same instant.
type HistoryDTO struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Seq       int64      `gorm:"type:bigserial;autoIncrement;<-:false;index"`
	TaskID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OldStatus *string    `gorm:"type:varchar(16)"`
	NewStatus string     `gorm:"type:varchar(16);not null"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	ChangedAt time.Time  `gorm:"not null"`
	Reason    string     `gorm:"type:varchar(500)"`
}

func (HistoryDTO) TableName() string {
	return "task_status_history"
}

func fromDomain(t *task.Task) TaskDTO {
	snap := t.Snapshot()

	stops := make([]TaskWaypointDTO, 0, len(snap.Stops))
	for _, s := range snap.Stops {
		stops = append(stops, TaskWaypointDTO{
			TaskID:        snap.ID.Bytes(),
			WaypointID:    s.WaypointID.Bytes(),
			SequenceOrder: s.SequenceOrder,
		})
	}

	return TaskDTO{
		ID:              snap.ID.Bytes(),
		RequestID:       rawID(snap.RequestID),
		ReturnID:        rawID(snap.ReturnID),
		Type:            snap.Type.String(),
		Priority:        int(snap.Priority),
		Status:          snap.Status.String(),
		AssignedRobotID: rawID(snap.AssignedRobot),
		Source:          snap.Source.String(),
		Destination:     snap.Destination.String(),
		Metadata:        datatypes.JSONMap(snap.Metadata),
		Attempt:         snap.Attempt,
		RetryOf:         rawID(snap.RetryOf),
		CreatedAt:       snap.CreatedAt,
		StartedAt:       snap.StartedAt,
		CompletedAt:     snap.CompletedAt,
		Stops:           stops,
	}
}

// statusColumns are the columns a transition may change.
func statusColumns(t *task.Task) map[string]any {
	snap := t.Snapshot()
	return map[string]any{
		"status":            snap.Status.String(),
		"assigned_robot_id": rawID(snap.AssignedRobot),
		"started_at":        snap.StartedAt,
		"completed_at":      snap.CompletedAt,
	}
}

func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	taskType, err := task.ParseType(dto.Type)
	if err != nil {
		return nil, err
	}
	status, err := task.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	source, err := kernel.NewLocationCode(dto.Source)
	if err != nil {
		return nil, err
	}
	destination, err := kernel.NewLocationCode(dto.Destination)
	if err != nil {
		return nil, err
	}

	stops := make([]task.Stop, 0, len(dto.Stops))
	for _, s := range dto.Stops {
		waypointID, idErr := kernel.UUIDFromBytes(s.WaypointID[:])
		if idErr != nil {
			return nil, idErr
		}
		stops = append(stops, task.Stop{WaypointID: waypointID, SequenceOrder: s.SequenceOrder})
	}

	snap := task.Snapshot{
		ID:          id,
		Type:        taskType,
		Priority:    task.Priority(dto.Priority),
		Status:      status,
		Source:      source,
		Destination: destination,
		Stops:       stops,
		Metadata:    dto.Metadata,
		Attempt:     dto.Attempt,
		CreatedAt:   dto.CreatedAt,
		StartedAt:   dto.StartedAt,
		CompletedAt: dto.CompletedAt,
	}
	if snap.RequestID, err = domainID(dto.RequestID); err != nil {
		return nil, err
	}
	if snap.ReturnID, err = domainID(dto.ReturnID); err != nil {
		return nil, err
	}
	if snap.AssignedRobot, err = domainID(dto.AssignedRobotID); err != nil {
		return nil, err
	}
	if snap.RetryOf, err = domainID(dto.RetryOf); err != nil {
		return nil, err
	}

	return task.RestoreTask(snap)
}

func historyFromDomain(h *task.History) HistoryDTO {
	dto := HistoryDTO{
		ID:        h.ID().Bytes(),
		TaskID:    h.TaskID().Bytes(),
		NewStatus: h.NewStatus().String(),
		ActorID:   rawID(h.Actor()),
		ChangedAt: h.At(),
		Reason:    h.Reason(),
	}
	if old := h.OldStatus(); old != nil {
		s := old.String()
		dto.OldStatus = &s
	}
	return dto
}

func historyToDomain(dto HistoryDTO) (*task.History, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	taskID, err := kernel.UUIDFromBytes(dto.TaskID[:])
	if err != nil {
		return nil, err
	}
	newStatus, err := task.ParseStatus(dto.NewStatus)
	if err != nil {
		return nil, err
	}
	var oldStatus *task.Status
	if dto.OldStatus != nil {
		old, parseErr := task.ParseStatus(*dto.OldStatus)
		if parseErr != nil {
			return nil, parseErr
		}
		oldStatus = &old
	}
	actor, err := domainID(dto.ActorID)
	if err != nil {
		return nil, err
	}

	return task.NewHistory(id, taskID, oldStatus, newStatus, actor, dto.ChangedAt, dto.Reason)
}

func rawID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func domainID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
