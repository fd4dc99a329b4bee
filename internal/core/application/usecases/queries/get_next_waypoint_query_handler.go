package queries

import (
	"context"

	"luna/internal/core/domain/services"
)

type GetNextWaypointQueryHandler struct {
	readers   ReaderFactory
	sequencer services.RouteSequencer
}

func NewGetNextWaypointQueryHandler(readers ReaderFactory) GetNextWaypointQueryHandler {
	return GetNextWaypointQueryHandler{readers: readers, sequencer: services.NewRouteSequencer()}
}

// Handle returns a validation error when the completed code is not on the
// task's route.
func (h GetNextWaypointQueryHandler) Handle(
	ctx context.Context,
	query GetNextWaypointQuery,
) (GetNextWaypointQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetNextWaypointQueryResponse{}, err
	}

	reader := h.readers.Create()
	t, err := reader.TaskRepository().Get(ctx, query.TaskID())
	if err != nil {
		return GetNextWaypointQueryResponse{}, err
	}

	route, err := loadRoute(ctx, reader, h.sequencer, t)
	if err != nil {
		return GetNextWaypointQueryResponse{}, err
	}

	next, done, err := h.sequencer.NextStop(route, query.CompletedCode())
	if err != nil {
		return GetNextWaypointQueryResponse{}, err
	}
	if done {
		return GetNextWaypointQueryResponse{Done: true}, nil
	}

	view := newStopView(next)
	return GetNextWaypointQueryResponse{Next: &view}, nil
}
