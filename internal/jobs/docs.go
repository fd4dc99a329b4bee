// Package jobs provides the engine's scheduled background work.
//
// This package implements interval jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. DispatchJob - runs a dispatch cycle every DISPATCH_INTERVAL, and again
// whenever its DispatchTrigger fires (task created, robot back to IDLE, or a
// wake-up from another instance)
// 2. HeartbeatWatchdogJob - runs every HEARTBEAT_INTERVAL and fails the task
// of any robot that went silent
//
// # Usage
//
//	trigger := jobs.NewDispatchTrigger()
//	jobManager := jobs.NewJobManager(dispatchHandler, trigger, 2*time.Second,
//		watchdogHandler, 10*time.Second, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Finding no robot is a normal dispatch outcome and is not logged as an
// error. Failed cycles are logged and the next cycle runs as scheduled.
package jobs
