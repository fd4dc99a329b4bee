package commands

import (
	"context"
	"time"

	"luna/internal/core/domain/model/waypoint"
)

// CreateWaypointCommandHandler stores a new active waypoint. A taken name or
// code yields an errs.ConflictError.
type CreateWaypointCommandHandler struct {
	uowFactory WaypointUoWFactory
	now        func() time.Time
}

func NewCreateWaypointCommandHandler(uowFactory WaypointUoWFactory, now func() time.Time) CreateWaypointCommandHandler {
	return CreateWaypointCommandHandler{
		uowFactory: uowFactory,
		now:        now,
	}
}

func (h CreateWaypointCommandHandler) Handle(ctx context.Context, cmd CreateWaypointCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	x, y, z := cmd.Coordinates()
	w, err := waypoint.NewWaypoint(cmd.WaypointID(), cmd.Name(), cmd.Code(), x, y, z, cmd.Metadata(), h.now())
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.WaypointRepository().Add(ctx, w); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
