package errs

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below unwraps to exactly one of them so
// callers can classify failures with errors.Is.
var (
	ErrObjectNotFound    = errors.New("object not found")
	ErrValueIsInvalid    = errors.New("value is invalid")
	ErrValueIsOutOfRange = errors.New("value is out of range")
	ErrValueIsRequired   = errors.New("value is required")
	ErrConflict          = errors.New("conflict")
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrValidation matches every malformed-input error (required, invalid,
	// out of range). It is never returned directly.
	ErrValidation = errors.New("validation failed")
)

// validationError is embedded by the malformed-input error types so that
// errors.Is(err, ErrValidation) holds for all of them.
type validationError struct{}

// Is reports whether target is ErrValidation.
func (validationError) Is(target error) bool {
	return target == ErrValidation //nolint:errorlint // sentinel comparison
}

// ObjectNotFoundError is returned when a referenced entity does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

// NewObjectNotFoundErrorWithCause creates an ObjectNotFoundError wrapping cause.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, e.ID, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError is returned when a value fails a business rule.
type ValueIsInvalidError struct {
	validationError
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError without a cause.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause creates a ValueIsInvalidError wrapping cause.
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError is returned when a value falls outside [Min, Max].
type ValueIsOutOfRangeError struct {
	validationError
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates a ValueIsOutOfRangeError without a cause.
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

// NewValueIsOutOfRangeErrorWithCause creates a ValueIsOutOfRangeError wrapping cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max))
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError is returned when a mandatory value is missing.
type ValueIsRequiredError struct {
	validationError
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates a ValueIsRequiredError without a cause.
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause creates a ValueIsRequiredError wrapping cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ConflictError is returned when a conditional write finds state that differs
// from what the caller observed. The caller is expected to re-read and retry.
type ConflictError struct {
	Entity   string
	ID       any
	Expected string

	duplicate bool
}

// NewConflictError creates a ConflictError for entity id whose stored state no
// longer matches expected.
func NewConflictError(entity string, id any, expected string) *ConflictError {
	return &ConflictError{
		Entity:   entity,
		ID:       id,
		Expected: expected,
	}
}

// NewDuplicateError creates a ConflictError for a unique key that is taken.
func NewDuplicateError(entity string, key any) *ConflictError {
	return &ConflictError{
		Entity:    entity,
		ID:        key,
		duplicate: true,
	}
}

func (e *ConflictError) Error() string {
	if e.duplicate {
		return fmt.Sprintf("%s: %s %v already exists", ErrConflict, e.Entity, e.ID)
	}
	if e.Expected == "" {
		return fmt.Sprintf("%s: %s %v was modified concurrently", ErrConflict, e.Entity, e.ID)
	}
	return fmt.Sprintf("%s: %s %v is no longer %s", ErrConflict, e.Entity, e.ID, e.Expected)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// IllegalTransitionError is returned when a state change is not in the
// entity's transition table. State is left untouched.
type IllegalTransitionError struct {
	Entity string
	From   string
	To     string
}

// NewIllegalTransitionError creates an IllegalTransitionError.
func NewIllegalTransitionError(entity, from, to string) *IllegalTransitionError {
	return &IllegalTransitionError{
		Entity: entity,
		From:   from,
		To:     to,
	}
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("%s: %s cannot move from %s to %s", ErrIllegalTransition, e.Entity, e.From, e.To)
}

func (e *IllegalTransitionError) Unwrap() error {
	return ErrIllegalTransition
}

func sanitize(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
