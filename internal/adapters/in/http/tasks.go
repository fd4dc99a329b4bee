package http

import (
	"errors"
	"net/http"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/application/usecases/queries"
	"luna/internal/core/domain/model/kernel"
	"luna/internal/generated/servers"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// CreateTaskFromRequest handles POST /api/v1/tasks/requests.
func (s *Server) CreateTaskFromRequest(ctx echo.Context) error {
	var body servers.CreateTaskFromRequestJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	requestID, idErr := toID(body.RequestId)
	details, detailsErr := taskDetails(body.Stops, body.Metadata, body.Actor, body.Reason)
	if err := errors.Join(idErr, detailsErr); err != nil {
		return s.fail(ctx, err, "create task")
	}

	taskID := kernel.NewUUID()
	cmd, err := commands.NewCreateTaskFromRequestCommand(
		taskID,
		requestID,
		string(value(body.TaskType)),
		body.Source,
		body.Destination,
		string(value(body.Priority)),
		details,
	)
	if err != nil {
		return s.fail(ctx, err, "create task")
	}

	if err = s.handlers.CreateTaskFromRequest.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "create task")
	}

	return ctx.JSON(http.StatusCreated, servers.TaskCreated{Id: fromID(taskID)})
}

// CreateTaskFromReturn handles POST /api/v1/tasks/returns.
func (s *Server) CreateTaskFromReturn(ctx echo.Context) error {
	var body servers.CreateTaskFromReturnJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	returnID, idErr := toID(body.ReturnId)
	details, detailsErr := taskDetails(body.Stops, body.Metadata, body.Actor, body.Reason)
	if err := errors.Join(idErr, detailsErr); err != nil {
		return s.fail(ctx, err, "create task")
	}

	taskID := kernel.NewUUID()
	cmd, err := commands.NewCreateTaskFromReturnCommand(
		taskID,
		returnID,
		body.PickupLocation,
		string(value(body.Priority)),
		details,
	)
	if err != nil {
		return s.fail(ctx, err, "create task")
	}

	if err = s.handlers.CreateTaskFromReturn.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "create task")
	}

	return ctx.JSON(http.StatusCreated, servers.TaskCreated{Id: fromID(taskID)})
}

func taskDetails(
	stops *[]servers.StopInput,
	metadata *servers.Metadata,
	actor *openapi_types.UUID,
	reason *string,
) (commands.TaskDetails, error) {
	routeStops, stopsErr := toStops(stops)
	actorID, actorErr := toOptionalID(actor)
	if err := errors.Join(stopsErr, actorErr); err != nil {
		return commands.TaskDetails{}, err
	}

	return commands.TaskDetails{
		Stops:    routeStops,
		Metadata: toMetadata(metadata),
		Actor:    actorID,
		Reason:   value(reason),
	}, nil
}

// ListActiveTasks handles GET /api/v1/tasks/active.
func (s *Server) ListActiveTasks(ctx echo.Context) error {
	res, err := s.handlers.ListActiveTasks.Handle(ctx.Request().Context(), queries.NewListActiveTasksQuery())
	if err != nil {
		return s.fail(ctx, err, "retrieve tasks")
	}

	response := servers.ActiveTasks{
		Tasks:  make([]servers.Task, len(res.Tasks)),
		Counts: res.Counts,
	}
	for i, t := range res.Tasks {
		response.Tasks[i] = fromTaskView(t)
	}
	if response.Counts == nil {
		response.Counts = map[string]int{}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetTask handles GET /api/v1/tasks/{taskId}.
func (s *Server) GetTask(ctx echo.Context, taskId servers.TaskId) error {
	id, err := toID(taskId)
	if err != nil {
		return s.fail(ctx, err, "retrieve task")
	}
	query, err := queries.NewGetTaskQuery(id)
	if err != nil {
		return s.fail(ctx, err, "retrieve task")
	}

	res, err := s.handlers.GetTask.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "retrieve task")
	}

	response := servers.TaskDetails{
		Task:    fromTaskView(res.Task),
		History: make([]servers.TaskHistoryEntry, len(res.History)),
		Route:   make([]servers.RouteStop, len(res.Route)),
	}
	for i, h := range res.History {
		response.History[i] = fromHistoryView(h)
	}
	for i, stop := range res.Route {
		response.Route[i] = fromStopView(stop)
	}

	return ctx.JSON(http.StatusOK, response)
}

// CancelTask handles POST /api/v1/tasks/{taskId}/cancel. The body is
// optional.
func (s *Server) CancelTask(ctx echo.Context, taskId servers.TaskId) error {
	var body servers.CancelTaskJSONRequestBody
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	id, idErr := toID(taskId)
	actor, actorErr := toOptionalID(body.Actor)
	if err := errors.Join(idErr, actorErr); err != nil {
		return s.fail(ctx, err, "cancel task")
	}

	cmd, err := commands.NewCancelTaskCommand(id, actor, value(body.Reason))
	if err != nil {
		return s.fail(ctx, err, "cancel task")
	}

	if err = s.handlers.CancelTask.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err, "cancel task")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetNextWaypoint handles GET /api/v1/tasks/{taskId}/next-waypoint.
func (s *Server) GetNextWaypoint(ctx echo.Context, taskId servers.TaskId, params servers.GetNextWaypointParams) error {
	id, err := toID(taskId)
	if err != nil {
		return s.fail(ctx, err, "resolve next waypoint")
	}
	query, err := queries.NewGetNextWaypointQuery(id, value(params.Completed))
	if err != nil {
		return s.fail(ctx, err, "resolve next waypoint")
	}

	res, err := s.handlers.GetNextWaypoint.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err, "resolve next waypoint")
	}

	response := servers.NextWaypoint{Done: res.Done}
	if res.Next != nil {
		next := fromStopView(*res.Next)
		response.Next = &next
	}

	return ctx.JSON(http.StatusOK, response)
}

// DispatchTasks handles POST /api/v1/dispatch. A cycle that overlaps a
// running one reports skipped.
func (s *Server) DispatchTasks(ctx echo.Context) error {
	res, err := s.handlers.Dispatch.Handle(ctx.Request().Context(), commands.NewDispatchTasksCommand())
	if err != nil {
		return s.fail(ctx, err, "dispatch tasks")
	}

	return ctx.JSON(http.StatusOK, servers.DispatchResult{
		Skipped:       res.Skipped,
		Considered:    res.Considered,
		Robots:        res.Robots,
		Assigned:      res.Assigned,
		Queued:        res.Queued,
		Conflicts:     res.Conflicts,
		Compensations: res.Compensations,
		Errors:        res.Errors,
	})
}
