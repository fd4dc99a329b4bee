package commands

import (
	"errors"
	"maps"
	"strings"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"
)

var ErrCreateWaypointCommandIsNotConstructed = errors.New(
	"CreateWaypointCommand must be created via NewCreateWaypointCommand constructor",
)

// CreateWaypointCommand adds a named location to the catalogue.
type CreateWaypointCommand struct { //nolint:recvcheck //using for validation
	waypointID kernel.UUID
	name       string
	code       kernel.LocationCode
	x, y, z    float64
	metadata   map[string]any

	guard guard.ConstructorGuard
}

func NewCreateWaypointCommand(
	waypointID kernel.UUID,
	name string,
	code string,
	x, y, z float64,
	metadata map[string]any,
) (CreateWaypointCommand, error) {
	cmd := CreateWaypointCommand{
		waypointID: waypointID,
		name:       strings.TrimSpace(name),
		x:          x,
		y:          y,
		z:          z,
		metadata:   maps.Clone(metadata),
		guard:      guard.NewConstructorGuard(),
	}

	var codeErr, nameErr error
	cmd.code, codeErr = kernel.NewLocationCode(code)
	if cmd.name == "" {
		nameErr = errs.NewValueIsRequiredError("name")
	}

	if err := errors.Join(waypointID.Validate(), nameErr, codeErr); err != nil {
		return CreateWaypointCommand{}, err
	}
	return cmd, nil
}

func (c CreateWaypointCommand) Validate() error {
	return c.guard.Validate(ErrCreateWaypointCommandIsNotConstructed)
}

func (c CreateWaypointCommand) WaypointID() kernel.UUID        { return c.waypointID }
func (c CreateWaypointCommand) Name() string                   { return c.name }
func (c CreateWaypointCommand) Code() kernel.LocationCode      { return c.code }
func (c CreateWaypointCommand) Coordinates() (x, y, z float64) { return c.x, c.y, c.z }
func (c CreateWaypointCommand) Metadata() map[string]any       { return maps.Clone(c.metadata) }
