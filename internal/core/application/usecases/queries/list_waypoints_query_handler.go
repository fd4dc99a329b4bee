package queries

import (
	"context"
)

type ListWaypointsQueryHandler struct {
	readers ReaderFactory
}

func NewListWaypointsQueryHandler(readers ReaderFactory) ListWaypointsQueryHandler {
	return ListWaypointsQueryHandler{readers: readers}
}

func (h ListWaypointsQueryHandler) Handle(ctx context.Context, query ListWaypointsQuery) ([]WaypointView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	waypoints, err := h.readers.Create().WaypointRepository().List(ctx, query.IncludeRetired())
	if err != nil {
		return nil, err
	}

	views := make([]WaypointView, 0, len(waypoints))
	for _, w := range waypoints {
		views = append(views, WaypointView{
			ID:        w.ID(),
			Name:      w.Name(),
			Code:      w.Code().String(),
			X:         w.X(),
			Y:         w.Y(),
			Z:         w.Z(),
			Metadata:  w.Metadata(),
			Active:    w.IsActive(),
			CreatedAt: w.CreatedAt(),
		})
	}
	return views, nil
}
