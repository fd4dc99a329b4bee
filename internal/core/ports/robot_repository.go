package ports

import (
	"context"
	"time"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/core/domain/model/robot"
)

// RobotRepository is the Robot Registry.
type RobotRepository interface {
	// Add registers a robot and appends its first status log row. A robot
	// with the same id or name yields an errs.ConflictError.
	Add(ctx context.Context, r *robot.Robot, log robot.StatusLog) error

	// Get returns the robot or an errs.ObjectNotFoundError.
	Get(ctx context.Context, id kernel.UUID) (*robot.Robot, error)

	// CompareAndSwap writes r only if the stored status still equals expected
	// and appends log. Zero matched rows yield an errs.ConflictError.
	CompareAndSwap(ctx context.Context, r *robot.Robot, expected robot.Status, log robot.StatusLog) error

	// SwapStatus is CompareAndSwap for engine-side transitions: only the
	// status of r is written, so location, battery, sensor data and last
	// heartbeat reported since r was read are kept.
	SwapStatus(ctx context.Context, r *robot.Robot, expected robot.Status, log robot.StatusLog) error

	// ListIdleEligible returns IDLE robots with a heartbeat at or after
	// freshSince and a battery above minBattery, ordered by name.
	ListIdleEligible(ctx context.Context, freshSince time.Time, minBattery float64) ([]*robot.Robot, error)

	// ListHolding returns BUSY and NAVIGATING robots ordered by name.
	ListHolding(ctx context.Context) ([]*robot.Robot, error)

	// List returns every robot ordered by name.
	List(ctx context.Context) ([]*robot.Robot, error)

	// StatusLogs returns up to limit log rows of a robot, newest first.
	StatusLogs(ctx context.Context, robotID kernel.UUID, limit int) ([]robot.StatusLog, error)
}
