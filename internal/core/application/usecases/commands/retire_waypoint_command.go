package commands

import (
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/guard"
)

var ErrRetireWaypointCommandIsNotConstructed = errors.New(
	"RetireWaypointCommand must be created via NewRetireWaypointCommand constructor",
)

// RetireWaypointCommand withdraws a waypoint from new routes. Tasks that
// already reference it keep their route.
type RetireWaypointCommand struct { //nolint:recvcheck //using for validation
	waypointID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRetireWaypointCommand(waypointID kernel.UUID) (RetireWaypointCommand, error) {
	if err := waypointID.Validate(); err != nil {
		return RetireWaypointCommand{}, err
	}
	return RetireWaypointCommand{
		waypointID: waypointID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

func (c RetireWaypointCommand) Validate() error {
	return c.guard.Validate(ErrRetireWaypointCommandIsNotConstructed)
}

func (c RetireWaypointCommand) WaypointID() kernel.UUID { return c.waypointID }
