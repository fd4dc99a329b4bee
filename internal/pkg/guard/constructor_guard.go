// Package guard detects domain values that were created as zero values
// instead of through their constructors.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is given.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in value objects and entities. Its zero value
// reports "not constructed"; NewConstructorGuard returns a guard that reports
// "constructed". It carries no pointers and is safe to copy and share.
//
//	type Waypoint struct {
//	    code  string
//	    guard guard.ConstructorGuard
//	}
//
//	func (w Waypoint) Validate() error {
//	    return w.guard.Validate(ErrWaypointIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks an object as built by its constructor.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns nil for a constructed guard. For a zero-value guard it
// returns validationError, or ErrDefaultConstructorGuard when that is nil.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
