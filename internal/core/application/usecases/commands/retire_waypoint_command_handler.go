package commands

import (
	"context"
)

// RetireWaypointCommandHandler marks a waypoint inactive. Retiring twice is
// not an error.
type RetireWaypointCommandHandler struct {
	uowFactory WaypointUoWFactory
}

func NewRetireWaypointCommandHandler(uowFactory WaypointUoWFactory) RetireWaypointCommandHandler {
	return RetireWaypointCommandHandler{uowFactory: uowFactory}
}

func (h RetireWaypointCommandHandler) Handle(ctx context.Context, cmd RetireWaypointCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.WaypointRepository()
	w, err := repo.Get(ctx, cmd.WaypointID())
	if err != nil {
		return err
	}

	if err = w.Retire(); err != nil {
		return err
	}

	if err = repo.Update(ctx, w); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
