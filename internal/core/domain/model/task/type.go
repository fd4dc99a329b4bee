package task

import (
	"fmt"

	"luna/internal/pkg/errs"
)

// Type classifies what a task is for.
type Type int

const (
	UnknownType Type = iota
	StudentDelivery
	ReturnPickup
	InterStaff
	Workstation
	Transfer
)

func getTypeStrings() map[Type]string {
	return map[Type]string{
		UnknownType:     "UNKNOWN",
		StudentDelivery: "STUDENT_DELIVERY",
		ReturnPickup:    "RETURN_PICKUP",
		InterStaff:      "INTER_STAFF",
		Workstation:     "WORKSTATION",
		Transfer:        "TRANSFER",
	}
}

// ParseType converts the wire form back to a Type.
func ParseType(s string) (Type, error) {
	for t, str := range getTypeStrings() {
		if str == s && t != UnknownType {
			return t, nil
		}
	}
	return UnknownType, errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%q is not a valid task type", s))
}

func (t Type) Validate() error {
	if t <= UnknownType || t > Transfer {
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%d is not a valid task type", t))
	}
	return nil
}

func (t Type) String() string {
	if str, ok := getTypeStrings()[t]; ok {
		return str
	}
	return "UNKNOWN"
}

// ValidateForRequest rejects types that cannot originate from a book request.
func (t Type) ValidateForRequest() error {
	if t == ReturnPickup {
		return errs.NewValueIsInvalidErrorWithCause("type", fmt.Errorf("%s is reserved for returns", t))
	}
	return t.Validate()
}
