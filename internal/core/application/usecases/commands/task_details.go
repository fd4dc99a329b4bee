package commands

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/pkg/errs"
)

// TaskDetails carries the optional parts of a new task.
type TaskDetails struct {
	// Stops is the ordered waypoint route. Empty means straight to the
	// destination.
	Stops    []task.Stop
	Metadata map[string]any
	// Actor is the staff member or student who caused the task; nil for the
	// system.
	Actor *kernel.UUID
	// Reason is recorded on the creation history row.
	Reason string
}

func (d TaskDetails) clone() TaskDetails {
	return TaskDetails{
		Stops:    slices.Clone(d.Stops),
		Metadata: maps.Clone(d.Metadata),
		Actor:    cloneID(d.Actor),
		Reason:   strings.TrimSpace(d.Reason),
	}
}

func cloneID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func validateActor(actor *kernel.UUID) error {
	if actor == nil {
		return nil
	}
	return actor.Validate()
}

// createTask checks the route against the waypoint catalogue and the
// reference against existing active tasks, then hands the task to the state
// machine.
func createTask(ctx context.Context, uowFactory UoWFactory, lc TaskLifecycle, t *task.Task, details TaskDetails) error {
	if err := checkCreatable(ctx, uowFactory, t); err != nil {
		return err
	}
	return lc.Create(ctx, t, details.Actor, details.Reason)
}

func checkCreatable(ctx context.Context, uowFactory UoWFactory, t *task.Task) error {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	existing, err := uow.TaskRepository().ListByReference(ctx, t.Reference())
	if err != nil {
		return err
	}
	for _, other := range existing {
		if !other.Status().IsTerminal() {
			return errs.NewDuplicateError("active task for "+t.Reference().String(), other.ID().String())
		}
	}

	stops := t.Stops()
	if len(stops) == 0 {
		return nil
	}

	ids := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.WaypointID)
	}
	found, err := uow.WaypointRepository().ListByIDs(ctx, ids)
	if err != nil {
		return err
	}

	known := make(map[kernel.UUID]bool, len(found))
	var errList []error
	for _, w := range found {
		known[w.ID()] = true
		if err = w.ValidateUsable(); err != nil {
			errList = append(errList, err)
		}
	}
	for _, id := range ids {
		if !known[id] {
			errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
				"stops", fmt.Errorf("waypoint %s does not exist", id)))
		}
	}
	return errors.Join(errList...)
}

