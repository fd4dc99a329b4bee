package kernel

import (
	"fmt"
	"strings"

	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"
)

// MaxLocationCodeLength bounds location codes to the width of the code columns.
const MaxLocationCodeLength = 120

// ErrLocationCodeIsNotConstructed is returned when a zero-value LocationCode is used.
var ErrLocationCodeIsNotConstructed = errs.NewValueIsRequiredError(
	"location code must be created via NewLocationCode")

// LocationCode is an opaque campus location identifier such as "LIB-1" or
// "LIB-RETURNS". The engine never interprets it beyond equality; waypoints,
// task endpoints and robot positions are all expressed with it.
//
// Surrounding whitespace is trimmed. Codes are case-sensitive.
type LocationCode struct { //nolint:recvcheck // pointer receiver only on the setter
	code  string
	guard guard.ConstructorGuard
}

// NewLocationCode validates and wraps a location code.
func NewLocationCode(code string) (LocationCode, error) {
	lc := LocationCode{guard: guard.NewConstructorGuard()}
	if err := lc.setCode(code); err != nil {
		return LocationCode{}, err
	}
	return lc, nil
}

// MustLocationCode is NewLocationCode for literals known to be valid.
func MustLocationCode(code string) LocationCode {
	lc, err := NewLocationCode(code)
	if err != nil {
		panic(err)
	}
	return lc
}

// Validate reports whether the code was built by NewLocationCode.
func (l LocationCode) Validate() error {
	return l.guard.Validate(ErrLocationCodeIsNotConstructed)
}

func (l LocationCode) String() string {
	return l.code
}

// IsEqual compares two codes. Zero values are never equal to anything.
func (l LocationCode) IsEqual(other LocationCode) bool {
	if l.Validate() != nil || other.Validate() != nil {
		return false
	}
	return l.code == other.code
}

func (l *LocationCode) setCode(code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return errs.NewValueIsRequiredError("location code")
	}
	if len(code) > MaxLocationCodeLength {
		return errs.NewValueIsOutOfRangeErrorWithCause("location code length", len(code), 1, MaxLocationCodeLength,
			fmt.Errorf("%q is too long", code[:16]+"..."))
	}
	l.code = code
	return nil
}
