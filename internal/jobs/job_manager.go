package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const minCycleTimeout = 10 * time.Second

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	dispatchJob *DispatchJob
	watchdogJob *HeartbeatWatchdogJob
}

// NewJobManager creates the dispatch loop and the heartbeat watchdog.
func NewJobManager(
	dispatchHandler DispatchHandler,
	trigger *DispatchTrigger,
	dispatchInterval time.Duration,
	watchdogHandler WatchdogHandler,
	heartbeatInterval time.Duration,
	logger *zap.Logger,
) *JobManager {
	return &JobManager{
		dispatchJob: NewDispatchJob(dispatchHandler, trigger, dispatchInterval, logger),
		watchdogJob: NewHeartbeatWatchdogJob(watchdogHandler, heartbeatInterval, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.dispatchJob.Start(); err != nil {
		return fmt.Errorf("failed to start dispatch job: %w", err)
	}

	if err := jm.watchdogJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.dispatchJob.Stop()
		return fmt.Errorf("failed to start heartbeat watchdog job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.watchdogJob.Stop()
	jm.dispatchJob.Stop()
}

// newCron builds a scheduler that skips a run while the previous one is
// still going and recovers panics.
func newCron(logger *zap.Logger) *cron.Cron {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	return cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)
}

func cycleTimeout(interval time.Duration) time.Duration {
	return max(4*interval, minCycleTimeout)
}
