package notify

import (
	"context"
	"errors"

	"luna/internal/core/ports"
	"luna/internal/pkg/telemetry"

	"go.uber.org/zap"
)

// Sink is a named notifier.
type Sink struct {
	Name     string
	Notifier ports.Notifier
}

// Fanout delivers every event to all sinks. A failing sink does not stop the
// others; its failure is counted, logged and returned joined with the rest.
type Fanout struct {
	sinks  []Sink
	logger *zap.Logger
}

func NewFanout(logger *zap.Logger, sinks ...Sink) *Fanout {
	return &Fanout{
		sinks:  sinks,
		logger: logger.With(zap.String("component", "notifier")),
	}
}

func (f *Fanout) NotifyStatusChange(ctx context.Context, event ports.StatusChangeEvent) error {
	return f.each(func(n ports.Notifier) error {
		return n.NotifyStatusChange(ctx, event)
	})
}

func (f *Fanout) RaiseAlert(ctx context.Context, alert ports.SystemAlert) error {
	return f.each(func(n ports.Notifier) error {
		return n.RaiseAlert(ctx, alert)
	})
}

func (f *Fanout) each(deliver func(ports.Notifier) error) error {
	var errList []error
	for _, sink := range f.sinks {
		if err := deliver(sink.Notifier); err != nil {
			telemetry.NotificationFailures.WithLabelValues(sink.Name).Inc()
			f.logger.Warn("notification not delivered", zap.String("sink", sink.Name), zap.Error(err))
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}
