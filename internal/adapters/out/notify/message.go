// Package notify delivers task status changes and system alerts. Each sink
// implements ports.Notifier; Fanout combines them.
package notify

import (
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/ports"
)

// Message types, as written to every sink.
const (
	TypeStatusChange = "TASK_STATUS_CHANGE"
	TypeSystemAlert  = "SYSTEM_ALERT"
)

// StatusChangeMessage is the wire form of ports.StatusChangeEvent.
type StatusChangeMessage struct {
	Type      string    `json:"type"`
	TaskID    string    `json:"task_id"`
	RobotID   *string   `json:"robot_id,omitempty"`
	OldStatus *string   `json:"old_status,omitempty"`
	NewStatus string    `json:"new_status"`
	Actor     *string   `json:"actor,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Attempt   int       `json:"attempt"`
	Timestamp time.Time `json:"timestamp"`
}

// AlertMessage is the wire form of ports.SystemAlert.
type AlertMessage struct {
	Type      string    `json:"type"`
	Kind      string    `json:"kind"`
	TaskID    *string   `json:"task_id,omitempty"`
	RobotID   *string   `json:"robot_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func newStatusChangeMessage(e ports.StatusChangeEvent) StatusChangeMessage {
	m := StatusChangeMessage{
		Type:      TypeStatusChange,
		TaskID:    e.TaskID.String(),
		RobotID:   idString(e.RobotID),
		NewStatus: e.NewStatus.String(),
		Actor:     idString(e.Actor),
		Reason:    e.Reason,
		Attempt:   e.Attempt,
		Timestamp: e.Timestamp.UTC(),
	}
	if e.OldStatus != nil {
		old := e.OldStatus.String()
		m.OldStatus = &old
	}
	return m
}

func newAlertMessage(a ports.SystemAlert) AlertMessage {
	return AlertMessage{
		Type:      TypeSystemAlert,
		Kind:      string(a.Kind),
		TaskID:    idString(a.TaskID),
		RobotID:   idString(a.RobotID),
		Message:   a.Message,
		Timestamp: a.Timestamp.UTC(),
	}
}

func idString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
