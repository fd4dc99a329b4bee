package queries

import (
	"context"
)

type GetRobotStatusLogsQueryHandler struct {
	readers ReaderFactory
}

func NewGetRobotStatusLogsQueryHandler(readers ReaderFactory) GetRobotStatusLogsQueryHandler {
	return GetRobotStatusLogsQueryHandler{readers: readers}
}

// Handle returns an errs.ObjectNotFoundError for an unknown robot.
func (h GetRobotStatusLogsQueryHandler) Handle(ctx context.Context, query GetRobotStatusLogsQuery) ([]StatusLogView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	repo := h.readers.Create().RobotRepository()
	if _, err := repo.Get(ctx, query.RobotID()); err != nil {
		return nil, err
	}

	logs, err := repo.StatusLogs(ctx, query.RobotID(), query.Limit())
	if err != nil {
		return nil, err
	}

	views := make([]StatusLogView, 0, len(logs))
	for _, l := range logs {
		v := StatusLogView{
			Status:     l.Status.String(),
			Battery:    l.Battery,
			SensorData: l.SensorData,
			RecordedAt: l.RecordedAt,
		}
		if l.Location != nil {
			code := l.Location.String()
			v.Location = &code
		}
		views = append(views, v)
	}
	return views, nil
}
