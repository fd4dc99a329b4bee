// Package pgnotify wakes the local dispatcher when another engine instance
// commits dispatchable work. It LISTENs on the channel the postgres unit of
// work notifies on.
package pgnotify

import (
	"context"
	"errors"
	"time"

	"luna/internal/core/ports"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const (
	minReconnectInterval = 200 * time.Millisecond
	maxReconnectInterval = 30 * time.Second
	pingInterval         = 90 * time.Second
)

var ErrListenerIsNotConstructed = errors.New("Listener must be created via NewListener constructor")

type Listener struct {
	dsn     string
	channel string
	trigger ports.DispatchTrigger
	logger  *zap.Logger
	guard   guard.ConstructorGuard
}

func NewListener(dsn, channel string, trigger ports.DispatchTrigger, logger *zap.Logger) (*Listener, error) {
	var errList []error
	if dsn == "" {
		errList = append(errList, errs.NewValueIsRequiredError("dsn"))
	}
	if channel == "" {
		errList = append(errList, errs.NewValueIsRequiredError("channel"))
	}
	if trigger == nil {
		errList = append(errList, errs.NewValueIsRequiredError("trigger"))
	}
	if logger == nil {
		errList = append(errList, errs.NewValueIsRequiredError("logger"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	return &Listener{
		dsn:     dsn,
		channel: channel,
		trigger: trigger,
		logger:  logger.With(zap.String("component", "pgnotify"), zap.String("channel", channel)),
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Run listens until ctx is done. Every notification, and every reconnect
// (notifications may have been missed meanwhile), triggers a dispatch cycle.
func (l *Listener) Run(ctx context.Context) error {
	if l == nil {
		return ErrListenerIsNotConstructed
	}
	if err := l.guard.Validate(ErrListenerIsNotConstructed); err != nil {
		return err
	}

	listener := pq.NewListener(l.dsn, minReconnectInterval, maxReconnectInterval, l.onEvent)
	defer func() { _ = listener.Close() }()

	if err := listener.Listen(l.channel); err != nil {
		return err
	}
	l.logger.Info("listening for dispatch wake-ups")

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n != nil {
				l.logger.Debug("dispatch wake-up", zap.Int("pid", n.BePid))
			}
			l.trigger.Trigger()
		case <-ticker.C:
			go func() {
				if err := listener.Ping(); err != nil {
					l.logger.Warn("listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}

func (l *Listener) onEvent(ev pq.ListenerEventType, err error) {
	switch ev {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		l.logger.Warn("listener connection lost", zap.Error(err))
	case pq.ListenerEventReconnected:
		l.logger.Info("listener reconnected")
	case pq.ListenerEventConnected:
	}
}
