// Package robot implements the robot registry aggregate: operational status,
// heartbeat merge rules, dispatch eligibility and the status log.
package robot
