// Package services provides domain services that work across aggregates:
//   - TaskMatcher: plans task/robot pairs for a dispatch cycle
//   - RouteSequencer: resolves and walks a task's waypoint route
//
// Both are stateless and never touch storage.
package services
