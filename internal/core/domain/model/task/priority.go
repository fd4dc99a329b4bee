package task

import (
	"fmt"

	"luna/internal/pkg/errs"
)

// Priority orders dispatch. Higher values are served first.
type Priority int

const (
	UnknownPriority Priority = iota
	Low
	Normal
	High
	Urgent
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		UnknownPriority: "UNKNOWN",
		Low:             "LOW",
		Normal:          "NORMAL",
		High:            "HIGH",
		Urgent:          "URGENT",
	}
}

// ParsePriority converts the wire form; an empty string yields Normal.
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return Normal, nil
	}
	for p, str := range getPriorityStrings() {
		if str == s && p != UnknownPriority {
			return p, nil
		}
	}
	return UnknownPriority, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
}

func (p Priority) Validate() error {
	if p < Low || p > Urgent {
		return errs.NewValueIsOutOfRangeError("priority", int(p), int(Low), int(Urgent))
	}
	return nil
}

func (p Priority) String() string {
	if str, ok := getPriorityStrings()[p]; ok {
		return str
	}
	return "UNKNOWN"
}
