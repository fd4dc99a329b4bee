// Package policy holds the tunable knobs of the dispatch engine: retry budget,
// heartbeat timing, battery floor and dispatch cadence.
//
// Values start from Default, are overridden by environment configuration and
// may be overridden again by a YAML file that is watched for changes. Readers
// always go through a Provider so a reload is visible on the next call.
package policy

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"

	"luna/internal/pkg/errs"
)

// Policy is an immutable set of engine settings.
type Policy struct {
	// MaxRetries is how many replacement tasks may be created for one
	// request or return after failures.
	MaxRetries int `yaml:"max_retries"`

	// StalenessWindow excludes robots whose last heartbeat is older than this
	// from dispatch.
	StalenessWindow time.Duration `yaml:"heartbeat_staleness"`

	HeartbeatInterval time.Duration `yaml:"heartbeat_interval"`
	MissedHeartbeats  int           `yaml:"missed_heartbeats"`

	// MinBattery is the exclusive battery floor, in percent.
	MinBattery float64 `yaml:"min_battery"`

	DispatchInterval time.Duration `yaml:"dispatch_interval"`
	BatchSize        int           `yaml:"dispatch_batch_size"`
}

// Default returns the built-in policy.
func Default() Policy {
	return Policy{
		MaxRetries:        2,
		StalenessWindow:   30 * time.Second,
		HeartbeatInterval: 10 * time.Second,
		MissedHeartbeats:  3,
		MinBattery:        15,
		DispatchInterval:  2 * time.Second,
		BatchSize:         50,
	}
}

// Validate checks every field.
func (p Policy) Validate() error {
	var errList []error
	if p.MaxRetries < 0 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("max_retries", p.MaxRetries, 0, "unbounded"))
	}
	if p.StalenessWindow <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"heartbeat_staleness", fmt.Errorf("must be positive, got %s", p.StalenessWindow)))
	}
	if p.HeartbeatInterval <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"heartbeat_interval", fmt.Errorf("must be positive, got %s", p.HeartbeatInterval)))
	}
	if p.MissedHeartbeats < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("missed_heartbeats", p.MissedHeartbeats, 1, "unbounded"))
	}
	if p.MinBattery < 0 || p.MinBattery > 100 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("min_battery", p.MinBattery, 0, 100))
	}
	if p.DispatchInterval <= 0 {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause(
			"dispatch_interval", fmt.Errorf("must be positive, got %s", p.DispatchInterval)))
	}
	if p.BatchSize < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("dispatch_batch_size", p.BatchSize, 1, "unbounded"))
	}
	return errors.Join(errList...)
}

// MissedHeartbeatWindow is how long a robot holding a task may stay silent
// before its task is failed.
func (p Policy) MissedHeartbeatWindow() time.Duration {
	return time.Duration(p.MissedHeartbeats) * p.HeartbeatInterval
}

// Merge returns base with every field present in the YAML document replaced.
func Merge(base Policy, data []byte) (Policy, error) {
	merged := base
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return base, fmt.Errorf("decode policy: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return base, err
	}
	return merged, nil
}

// LoadFile reads a YAML policy file on top of base.
func LoadFile(path string, base Policy) (Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read policy file %s: %w", path, err)
	}
	return Merge(base, data)
}

// Provider exposes the policy in force.
type Provider interface {
	Current() Policy
}

// Holder is a Provider whose policy can be swapped atomically.
type Holder struct {
	current atomic.Pointer[Policy]
}

// NewHolder creates a holder with an initial policy.
func NewHolder(initial Policy) (*Holder, error) {
	h := &Holder{}
	if err := h.Store(initial); err != nil {
		return nil, err
	}
	return h, nil
}

// Current returns the policy in force.
func (h *Holder) Current() Policy {
	return *h.current.Load()
}

// Store replaces the policy. Invalid policies are rejected and the previous
// one stays in force.
func (h *Holder) Store(p Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}
	h.current.Store(&p)
	return nil
}

// Static is a Provider that never changes.
type Static Policy

func (s Static) Current() Policy { return Policy(s) }
