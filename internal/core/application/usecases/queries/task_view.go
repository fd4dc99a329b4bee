package queries

import (
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/services"
)

// TaskView is the read model of a task.
type TaskView struct {
	ID            kernel.UUID
	RequestID     *kernel.UUID
	ReturnID      *kernel.UUID
	Type          string
	Priority      string
	Status        string
	AssignedRobot *kernel.UUID
	Source        string
	Destination   string
	Metadata      map[string]any
	Attempt       int
	RetryOf       *kernel.UUID
	CreatedAt     time.Time
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// HistoryView is one audit row.
type HistoryView struct {
	OldStatus *string
	NewStatus string
	Actor     *kernel.UUID
	At        time.Time
	Reason    string
}

// StopView is one resolved route stop. WaypointID is nil for the implicit
// destination stop.
type StopView struct {
	WaypointID    *kernel.UUID
	Name          string
	Code          string
	SequenceOrder int
}

func newTaskView(t *task.Task) TaskView {
	ref := t.Reference()
	return TaskView{
		ID:            t.ID(),
		RequestID:     ref.RequestID(),
		ReturnID:      ref.ReturnID(),
		Type:          t.Type().String(),
		Priority:      t.Priority().String(),
		Status:        t.Status().String(),
		AssignedRobot: t.AssignedRobot(),
		Source:        t.Source().String(),
		Destination:   t.Destination().String(),
		Metadata:      t.Metadata(),
		Attempt:       t.Attempt(),
		RetryOf:       t.RetryOf(),
		CreatedAt:     t.CreatedAt(),
		StartedAt:     t.StartedAt(),
		CompletedAt:   t.CompletedAt(),
	}
}

func newHistoryView(h *task.History) HistoryView {
	v := HistoryView{
		NewStatus: h.NewStatus().String(),
		Actor:     h.Actor(),
		At:        h.At(),
		Reason:    h.Reason(),
	}
	if old := h.OldStatus(); old != nil {
		s := old.String()
		v.OldStatus = &s
	}
	return v
}

func newStopView(s services.RouteStop) StopView {
	return StopView{
		WaypointID:    s.WaypointID,
		Name:          s.Name,
		Code:          s.Code.String(),
		SequenceOrder: s.SequenceOrder,
	}
}
