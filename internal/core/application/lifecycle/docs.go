// Package lifecycle applies task transitions together with their robot-side
// effects, history rows and notifications.
//
// Each entity is written with its own conditional update. A task transition
// commits first; the robot follows in a separate unit of work and is retried
// on conflict with fresh state. When the robot cannot be claimed during
// assignment the task is moved back to QUEUED by a compensating transition.
//
// Notifications are sent only after the corresponding commit and never cause
// a rollback. Delivery failures are logged.
package lifecycle
