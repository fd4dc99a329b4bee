package jobs

import (
	"context"
	"time"

	"luna/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// skippedRetryDelay spaces out re-runs of a request that arrived while
// another cycle was running.
const skippedRetryDelay = 50 * time.Millisecond

type DispatchHandler interface {
	Handle(ctx context.Context, cmd commands.DispatchTasksCommand) (commands.DispatchResult, error)
}

// DispatchJob runs a dispatch cycle every interval and whenever the trigger
// fires in between.
type DispatchJob struct {
	handler  DispatchHandler
	trigger  *DispatchTrigger
	interval time.Duration
	cron     *cron.Cron
	logger   *zap.Logger

	stop chan struct{}
	done chan struct{}
}

func NewDispatchJob(handler DispatchHandler, trigger *DispatchTrigger, interval time.Duration, logger *zap.Logger) *DispatchJob {
	logger = logger.With(zap.String("component", "dispatch_job"))
	return &DispatchJob{
		handler:  handler,
		trigger:  trigger,
		interval: interval,
		cron:     newCron(logger),
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (j *DispatchJob) Start() error {
	j.cron.Schedule(cron.Every(j.interval), cron.FuncJob(j.run))
	j.cron.Start()
	go j.listen()

	j.logger.Info("dispatch job started", zap.Duration("interval", j.interval))
	return nil
}

// Stop waits for a running cycle to finish.
func (j *DispatchJob) Stop() {
	<-j.cron.Stop().Done()
	close(j.stop)
	<-j.done
	j.logger.Info("dispatch job stopped")
}

func (j *DispatchJob) listen() {
	defer close(j.done)
	for {
		select {
		case <-j.stop:
			return
		case <-j.trigger.C():
			j.run()
		}
	}
}

func (j *DispatchJob) run() {
	ctx, cancel := context.WithTimeout(context.Background(), cycleTimeout(j.interval))
	defer cancel()

	result, err := j.handler.Handle(ctx, commands.NewDispatchTasksCommand())
	if err != nil {
		j.logger.Error("dispatch cycle failed", zap.Error(err))
		return
	}
	if result.Skipped {
		// the running cycle may have read its work before this request
		time.AfterFunc(skippedRetryDelay, j.trigger.Trigger)
		return
	}
	if result.Assigned > 0 || result.Conflicts > 0 || result.Errors > 0 {
		j.logger.Info("dispatch cycle",
			zap.Int("considered", result.Considered),
			zap.Int("robots", result.Robots),
			zap.Int("assigned", result.Assigned),
			zap.Int("queued", result.Queued),
			zap.Int("conflicts", result.Conflicts),
			zap.Int("compensations", result.Compensations),
			zap.Int("errors", result.Errors))
	}
}
