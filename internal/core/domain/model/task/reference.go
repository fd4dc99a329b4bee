package task

import (
	"errors"

	"luna/internal/core/domain/model/kernel"
	"luna/internal/pkg/errs"
	"luna/internal/pkg/guard"
)

// ErrReferenceIsNotConstructed is returned when a zero-value Reference is used.
var ErrReferenceIsNotConstructed = errs.NewValueIsRequiredError("reference must be created via NewReference")

// Reference points a task at the approved book request or return that
// produced it. Exactly one of the two identifiers is set.
type Reference struct {
	requestID *kernel.UUID
	returnID  *kernel.UUID
	guard     guard.ConstructorGuard
}

// NewReference fails unless exactly one of requestID and returnID is non-nil.
func NewReference(requestID, returnID *kernel.UUID) (Reference, error) {
	if (requestID == nil) == (returnID == nil) {
		return Reference{}, errs.NewValueIsInvalidErrorWithCause(
			"reference",
			errors.New("exactly one of request id and return id must be set"),
		)
	}
	for _, id := range []*kernel.UUID{requestID, returnID} {
		if id == nil {
			continue
		}
		if err := id.Validate(); err != nil {
			return Reference{}, err
		}
	}
	return Reference{
		requestID: cloneID(requestID),
		returnID:  cloneID(returnID),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RequestReference builds a Reference for an approved book request.
func RequestReference(requestID kernel.UUID) (Reference, error) {
	return NewReference(&requestID, nil)
}

// ReturnReference builds a Reference for a book return.
func ReturnReference(returnID kernel.UUID) (Reference, error) {
	return NewReference(nil, &returnID)
}

func (r Reference) Validate() error {
	return r.guard.Validate(ErrReferenceIsNotConstructed)
}

// RequestID is nil for return tasks.
func (r Reference) RequestID() *kernel.UUID {
	return cloneID(r.requestID)
}

// ReturnID is nil for request tasks.
func (r Reference) ReturnID() *kernel.UUID {
	return cloneID(r.returnID)
}

// IsEqual compares both identifiers.
func (r Reference) IsEqual(other Reference) bool {
	return idsEqual(r.requestID, other.requestID) && idsEqual(r.returnID, other.returnID)
}

func (r Reference) String() string {
	if r.requestID != nil {
		return "request " + r.requestID.String()
	}
	if r.returnID != nil {
		return "return " + r.returnID.String()
	}
	return "reference"
}

func cloneID(id *kernel.UUID) *kernel.UUID {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func idsEqual(a, b *kernel.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqual(*b)
}
