package jobs

import (
	"context"
	"time"

	"luna/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type WatchdogHandler interface {
	Handle(ctx context.Context, cmd commands.DetectStaleRobotsCommand) (commands.StaleRobotsResult, error)
}

// HeartbeatWatchdogJob checks robots that hold a task once per heartbeat
// interval.
type HeartbeatWatchdogJob struct {
	handler  WatchdogHandler
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewHeartbeatWatchdogJob(handler WatchdogHandler, interval time.Duration, logger *zap.Logger) *HeartbeatWatchdogJob {
	logger = logger.With(zap.String("component", "heartbeat_watchdog_job"))
	return &HeartbeatWatchdogJob{
		handler:  handler,
		interval: interval,
		cron:     newCron(logger),
		logger:   logger,
	}
}

func (j *HeartbeatWatchdogJob) Start() error {
	j.cron.Schedule(cron.Every(j.interval), cron.FuncJob(j.run))
	j.cron.Start()

	j.logger.Info("heartbeat watchdog started", zap.Duration("interval", j.interval))
	return nil
}

func (j *HeartbeatWatchdogJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.Info("heartbeat watchdog stopped")
}

func (j *HeartbeatWatchdogJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout(j.interval))
	defer cancel()

	result, err := j.handler.Handle(ctx, commands.NewDetectStaleRobotsCommand())
	if err != nil {
		j.logger.Error("watchdog pass failed", zap.Error(err))
		return
	}
	if result.Stale > 0 || result.Released > 0 || result.Requeued > 0 {
		j.logger.Warn("stale robots handled",
			zap.Int("checked", result.Checked),
			zap.Int("stale", result.Stale),
			zap.Int("failed", result.Failed),
			zap.Int("released", result.Released),
			zap.Int("requeued", result.Requeued))
	}
}
