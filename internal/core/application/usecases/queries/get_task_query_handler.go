package queries

import (
	"context"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/task"
	"luna/internal/core/domain/services"
)

type GetTaskQueryHandler struct {
	readers   ReaderFactory
	sequencer services.RouteSequencer
}

func NewGetTaskQueryHandler(readers ReaderFactory) GetTaskQueryHandler {
	return GetTaskQueryHandler{readers: readers, sequencer: services.NewRouteSequencer()}
}

// Handle returns an errs.ObjectNotFoundError for an unknown task.
func (h GetTaskQueryHandler) Handle(ctx context.Context, query GetTaskQuery) (GetTaskQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetTaskQueryResponse{}, err
	}

	reader := h.readers.Create()
	t, err := reader.TaskRepository().Get(ctx, query.TaskID())
	if err != nil {
		return GetTaskQueryResponse{}, err
	}

	history, err := reader.TaskRepository().History(ctx, t.ID())
	if err != nil {
		return GetTaskQueryResponse{}, err
	}

	route, err := loadRoute(ctx, reader, h.sequencer, t)
	if err != nil {
		return GetTaskQueryResponse{}, err
	}

	response := GetTaskQueryResponse{
		Task:    newTaskView(t),
		History: make([]HistoryView, 0, len(history)),
		Route:   make([]StopView, 0, len(route)),
	}
	for _, entry := range history {
		response.History = append(response.History, newHistoryView(entry))
	}
	for _, stop := range route {
		response.Route = append(response.Route, newStopView(stop))
	}
	return response, nil
}

// loadRoute resolves the task's stops against the catalogue, retired
// waypoints included.
func loadRoute(ctx context.Context, reader WaypointReader, sequencer services.RouteSequencer, t *task.Task) (services.Route, error) {
	stops := t.Stops()
	if len(stops) == 0 {
		return sequencer.Sequence(t, nil)
	}

	ids := make([]kernel.UUID, 0, len(stops))
	for _, s := range stops {
		ids = append(ids, s.WaypointID)
	}
	catalogue, err := reader.WaypointRepository().ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return sequencer.Sequence(t, catalogue)
}
