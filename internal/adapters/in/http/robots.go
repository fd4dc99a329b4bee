package http

import (
	"net/http"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/application/usecases/queries"
	"luna/internal/generated/servers"

	"github.com/labstack/echo/v4"
)

// ReportHeartbeat handles POST /api/v1/robots/{robotId}/heartbeat. It is the
// HTTP counterpart of the MQTT heartbeat topic.
func (s *Server) ReportHeartbeat(ctx echo.Context, robotId servers.RobotId) error {
	var body servers.ReportHeartbeatJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, err := toID(robotId)
	if err != nil {
		return s.fail(ctx, err, "report heartbeat")
	}

	cmd, err := commands.NewReportHeartbeatCommand(
		id,
		value(body.Name),
		string(body.Status),
		body.Location,
		body.Battery,
		toMetadata(body.SensorData),
	)
	if err != nil {
		return s.fail(ctx, err, "report heartbeat")
	}

	res, err := s.handlers.ReportHeartbeat.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err, "report heartbeat")
	}

	response := servers.HeartbeatAccepted{
		Registered:  res.Registered,
		RobotStatus: servers.RobotStatus(res.RobotStatus.String()),
		TaskId:      fromOptionalID(res.TaskID),
	}
	if res.TaskStatus != nil {
		status := servers.TaskStatus(res.TaskStatus.String())
		response.TaskStatus = &status
	}

	return ctx.JSON(http.StatusOK, response)
}

// ListRobots handles GET /api/v1/robots.
func (s *Server) ListRobots(ctx echo.Context) error {
	robots, err := s.handlers.ListRobots.Handle(ctx.Request().Context(), queries.NewListRobotsQuery())
	if err != nil {
		return s.fail(ctx, err, "retrieve robots")
	}

	response := make([]servers.Robot, len(robots))
	for i, r := range robots {
		response[i] = fromRobotView(r)
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetRobotStatusLogs handles GET /api/v1/robots/{robotId}/status-logs.
func (s *Server) GetRobotStatusLogs(ctx echo.Context, robotId servers.RobotId, params servers.GetRobotStatusLogsParams) error {
	id, err := toID(robotId)
	if err != nil {
		return s.fail(ctx, err, "retrieve status logs")
	}
	query, err := queries.NewGetRobotStatusLogsQuery(id, value(params.Limit))
	if err != nil {
		return s.fail(ctx, err, "retrieve status logs")
	}

	logs, err := s.handlers.GetRobotStatusLogs.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "retrieve status logs")
	}

	response := make([]servers.RobotStatusLog, len(logs))
	for i, l := range logs {
		response[i] = fromStatusLogView(l)
	}

	return ctx.JSON(http.StatusOK, response)
}
