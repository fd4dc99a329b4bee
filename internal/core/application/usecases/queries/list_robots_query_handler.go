package queries

import (
	"context"
	"time"

	"luna/internal/core/domain/model/robot"
	"luna/internal/pkg/policy"
)

type ListRobotsQueryHandler struct {
	readers ReaderFactory
	policy  policy.Provider
	now     func() time.Time
}

func NewListRobotsQueryHandler(readers ReaderFactory, policies policy.Provider, now func() time.Time) ListRobotsQueryHandler {
	return ListRobotsQueryHandler{readers: readers, policy: policies, now: now}
}

func (h ListRobotsQueryHandler) Handle(ctx context.Context, query ListRobotsQuery) ([]RobotView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	robots, err := h.readers.Create().RobotRepository().List(ctx)
	if err != nil {
		return nil, err
	}

	p := h.policy.Current()
	freshSince := h.now().Add(-p.StalenessWindow)

	views := make([]RobotView, 0, len(robots))
	for _, r := range robots {
		views = append(views, newRobotView(r, r.IsEligible(freshSince, p.MinBattery)))
	}
	return views, nil
}

func newRobotView(r *robot.Robot, eligible bool) RobotView {
	v := RobotView{
		ID:            r.ID(),
		Name:          r.Name(),
		Status:        r.Status().String(),
		Battery:       r.Battery(),
		LastHeartbeat: r.LastHeartbeat(),
		SensorData:    r.SensorData(),
		Eligible:      eligible,
	}
	if loc := r.Location(); loc != nil {
		code := loc.String()
		v.Location = &code
	}
	return v
}
