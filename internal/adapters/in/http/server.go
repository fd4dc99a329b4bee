package http

import (
	"context"
	"errors"
	"net/http"

	"luna/internal/core/application/usecases/commands"
	"luna/internal/core/application/usecases/queries"
	"luna/internal/generated/servers"
	"luna/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type (
	CreateTaskFromRequestHandler interface {
		Handle(ctx context.Context, cmd commands.CreateTaskFromRequestCommand) error
	}
	CreateTaskFromReturnHandler interface {
		Handle(ctx context.Context, cmd commands.CreateTaskFromReturnCommand) error
	}
	CancelTaskHandler interface {
		Handle(ctx context.Context, cmd commands.CancelTaskCommand) error
	}
	ReportHeartbeatHandler interface {
		Handle(ctx context.Context, cmd commands.ReportHeartbeatCommand) (commands.HeartbeatResult, error)
	}
	CreateWaypointHandler interface {
		Handle(ctx context.Context, cmd commands.CreateWaypointCommand) error
	}
	RetireWaypointHandler interface {
		Handle(ctx context.Context, cmd commands.RetireWaypointCommand) error
	}
	DispatchHandler interface {
		Handle(ctx context.Context, cmd commands.DispatchTasksCommand) (commands.DispatchResult, error)
	}

	GetTaskHandler interface {
		Handle(ctx context.Context, query queries.GetTaskQuery) (queries.GetTaskQueryResponse, error)
	}
	GetNextWaypointHandler interface {
		Handle(ctx context.Context, query queries.GetNextWaypointQuery) (queries.GetNextWaypointQueryResponse, error)
	}
	ListActiveTasksHandler interface {
		Handle(ctx context.Context, query queries.ListActiveTasksQuery) (queries.ListActiveTasksQueryResponse, error)
	}
	ListRobotsHandler interface {
		Handle(ctx context.Context, query queries.ListRobotsQuery) ([]queries.RobotView, error)
	}
	GetRobotStatusLogsHandler interface {
		Handle(ctx context.Context, query queries.GetRobotStatusLogsQuery) ([]queries.StatusLogView, error)
	}
	ListWaypointsHandler interface {
		Handle(ctx context.Context, query queries.ListWaypointsQuery) ([]queries.WaypointView, error)
	}
)

// Handlers groups the use cases the HTTP API exposes.
type Handlers struct {
	// Command handlers
	CreateTaskFromRequest CreateTaskFromRequestHandler
	CreateTaskFromReturn  CreateTaskFromReturnHandler
	CancelTask            CancelTaskHandler
	ReportHeartbeat       ReportHeartbeatHandler
	CreateWaypoint        CreateWaypointHandler
	RetireWaypoint        RetireWaypointHandler
	Dispatch              DispatchHandler

	// Query handlers
	GetTask            GetTaskHandler
	GetNextWaypoint    GetNextWaypointHandler
	ListActiveTasks    ListActiveTasksHandler
	ListRobots         ListRobotsHandler
	GetRobotStatusLogs GetRobotStatusLogsHandler
	ListWaypoints      ListWaypointsHandler
}

func (h Handlers) validate() error {
	required := map[string]any{
		"create task from request handler": h.CreateTaskFromRequest,
		"create task from return handler":  h.CreateTaskFromReturn,
		"cancel task handler":              h.CancelTask,
		"report heartbeat handler":         h.ReportHeartbeat,
		"create waypoint handler":          h.CreateWaypoint,
		"retire waypoint handler":          h.RetireWaypoint,
		"dispatch handler":                 h.Dispatch,
		"get task handler":                 h.GetTask,
		"get next waypoint handler":        h.GetNextWaypoint,
		"list active tasks handler":        h.ListActiveTasks,
		"list robots handler":              h.ListRobots,
		"get robot status logs handler":    h.GetRobotStatusLogs,
		"list waypoints handler":           h.ListWaypoints,
	}

	var errList []error
	for name, handler := range required {
		if handler == nil {
			errList = append(errList, errs.NewValueIsRequiredError(name))
		}
	}
	return errors.Join(errList...)
}

// Server implements servers.ServerInterface on top of the application's
// command and query handlers.
type Server struct {
	handlers Handlers
	logger   *zap.Logger
}

var _ servers.ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, logger *zap.Logger) (*Server, error) {
	if err := handlers.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}

	return &Server{
		handlers: handlers,
		logger:   logger.With(zap.String("component", "http")),
	}, nil
}

// statusOf maps engine errors onto HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrIllegalTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a servers.Error. Internal errors are logged and their
// text is not returned to the client.
func (s *Server) fail(ctx echo.Context, err error, action string) error {
	code := statusOf(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("action", action),
			zap.String("path", ctx.Path()),
			zap.Error(err),
		)
		message = "Failed to " + action
	}

	return ctx.JSON(code, servers.Error{
		Code:    code,
		Message: message,
	})
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, servers.Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
