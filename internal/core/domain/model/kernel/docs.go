// Package kernel holds the value objects shared by every aggregate of the
// dispatch engine:
//   - UUID: identifiers for tasks, robots, waypoints, history rows and actors
//   - LocationCode: an opaque campus location code, compared only for equality
//
// Both are immutable and their zero values fail Validate.
package kernel
