package http

import (
	"net/http"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/application/usecases/queries"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ListWaypoints handles GET /api/v1/waypoints.
func (s *Server) ListWaypoints(ctx echo.Context, params servers.ListWaypointsParams) error {
	query := queries.NewListWaypointsQuery(value(params.IncludeRetired))

	waypoints, err := s.handlers.ListWaypoints.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "retrieve waypoints")
	}

	response := make([]servers.Waypoint, len(waypoints))
	for i, w := range waypoints {
		response[i] = fromWaypointView(w)
	}

	return ctx.JSON(http.StatusOK, response)
}

// CreateWaypoint handles POST /api/v1/waypoints.
func (s *Server) CreateWaypoint(ctx echo.Context) error {
	var body servers.CreateWaypointJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	waypointID := kernel.NewUUID()
	cmd, err := commands.NewCreateWaypointCommand(
		waypointID,
		body.Name,
		body.Code,
		body.X, body.Y, body.Z,
		toMetadata(body.Metadata),
	)
	if err != nil {
		return s.fail(ctx, err, "create waypoint")
	}

	if err = s.handlers.CreateWaypoint.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "create waypoint")
	}

	return ctx.JSON(http.StatusCreated, servers.WaypointCreated{Id: fromID(waypointID)})
}

// RetireWaypoint handles POST /api/v1/waypoints/{waypointId}/retire.
func (s *Server) RetireWaypoint(ctx echo.Context, waypointId openapi_types.UUID) error {
	id, err := toID(waypointId)
	if err != nil {
		return s.fail(ctx, err, "retire waypoint")
	}
	cmd, err := commands.NewRetireWaypointCommand(id)
	if err != nil {
		return s.fail(ctx, err, "retire waypoint")
	}

	if err = s.handlers.RetireWaypoint.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "retire waypoint")
	}

	return ctx.NoContent(http.StatusNoContent)
}
