// Package telemetry exposes the engine's Prometheus metrics.
package telemetry

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	TaskTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luna_task_transitions_total",
		Help: "Committed task status transitions",
	}, []string{"from", "to"})
	TaskRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_task_retries_total",
		Help: "Replacement tasks created after a failure",
	})
	SystemAlerts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luna_system_alerts_total",
		Help: "System alerts raised",
	}, []string{"kind"})
	DispatchCycles = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_dispatch_cycles_total",
		Help: "Completed dispatch cycles",
	})
	DispatchSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_dispatch_cycles_skipped_total",
		Help: "Dispatch cycles skipped because another one was running",
	})
	DispatchAssigned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_dispatch_assigned_total",
		Help: "Tasks assigned to robots",
	})
	DispatchConflicts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_dispatch_conflicts_total",
		Help: "Assignments skipped on a concurrent modification",
	})
	DispatchCompensations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "luna_dispatch_compensations_total",
		Help: "Assignments rolled back because the robot could not be claimed",
	})
	DispatchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "luna_dispatch_cycle_duration_seconds",
		Help:    "Duration of a dispatch cycle",
		Buckets: prometheus.DefBuckets,
	})
	QueueDepth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "luna_task_queue_depth",
		Help: "Tasks waiting for a robot, by status",
	}, []string{"status"})
	Heartbeats = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luna_robot_heartbeats_total",
		Help: "Heartbeats ingested, by reported status",
	}, []string{"status"})
	NotificationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "luna_notification_failures_total",
		Help: "Notifications that could not be delivered, by sink",
	}, []string{"sink"})
)

// Register adds every collector to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			TaskTransitions,
			TaskRetries,
			SystemAlerts,
			DispatchCycles,
			DispatchSkipped,
			DispatchAssigned,
			DispatchConflicts,
			DispatchCompensations,
			DispatchDuration,
			QueueDepth,
			Heartbeats,
			NotificationFailures,
		)
	})
}

// Handler exposes /metrics with the singleton registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
