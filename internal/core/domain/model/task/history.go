package task

import (
	"errors"
	"strings"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
)

// MaxReasonLength bounds the free-text reason stored with a history entry.
const MaxReasonLength = 500

// ErrHistoryIsNotConstructed is returned for a zero-value History.
var ErrHistoryIsNotConstructed = errors.New("History must be created via NewHistory constructor")

// History is one append-only audit row. OldStatus is nil for the creation
// entry and Actor is nil when the engine itself made the change.
type History struct {
	id            kernel.UUID
	taskID        kernel.UUID
	oldStatus     *Status
	newStatus     Status
	actor         *kernel.UUID
	at            time.Time
	reason        string
	isConstructed bool
}

// NewHistory validates and builds a history entry. Reasons longer than
// MaxReasonLength are truncated.
func NewHistory(
	id kernel.UUID,
	taskID kernel.UUID,
	oldStatus *Status,
	newStatus Status,
	actor *kernel.UUID,
	at time.Time,
	reason string,
) (*History, error) {
	if err := errors.Join(id.Validate(), taskID.Validate(), newStatus.Validate()); err != nil {
		return nil, err
	}
	if oldStatus != nil {
		if err := oldStatus.Validate(); err != nil {
			return nil, err
		}
	}
	if actor != nil {
		if err := actor.Validate(); err != nil {
			return nil, err
		}
	}
	if at.IsZero() {
		return nil, errs.NewValueIsRequiredError("history timestamp")
	}

	reason = strings.TrimSpace(reason)
	if r := []rune(reason); len(r) > MaxReasonLength {
		reason = string(r[:MaxReasonLength])
	}

	var old *Status
	if oldStatus != nil {
		o := *oldStatus
		old = &o
	}

	return &History{
		id:            id,
		taskID:        taskID,
		oldStatus:     old,
		newStatus:     newStatus,
		actor:         cloneID(actor),
		at:            at.UTC(),
		reason:        reason,
		isConstructed: true,
	}, nil
}

// NewCreationHistory builds the nil -> PENDING entry for a freshly created task.
func NewCreationHistory(t *Task, actor *kernel.UUID, reason string) (*History, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return NewHistory(kernel.NewUUID(), t.ID(), nil, t.Status(), actor, t.CreatedAt(), reason)
}

func (h *History) Validate() error {
	if h == nil || !h.isConstructed {
		return ErrHistoryIsNotConstructed
	}
	return nil
}

func (h *History) ID() kernel.UUID     { return h.id }
func (h *History) TaskID() kernel.UUID { return h.taskID }
func (h *History) NewStatus() Status   { return h.newStatus }
func (h *History) At() time.Time       { return h.at }
func (h *History) Reason() string      { return h.reason }

// OldStatus is nil for the creation entry.
func (h *History) OldStatus() *Status {
	if h.oldStatus == nil {
		return nil
	}
	o := *h.oldStatus
	return &o
}

// Actor is nil for system-initiated changes.
func (h *History) Actor() *kernel.UUID {
	return cloneID(h.actor)
}
