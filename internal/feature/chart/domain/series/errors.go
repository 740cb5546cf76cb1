package series

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyWindow is returned by Project when there are no bars to scale an axis to.
	ErrEmptyWindow = errors.New("empty price window")

	// ErrInvalidWindow is returned when a moving average window is out of range or too many are requested.
	ErrInvalidWindow = errors.New("moving average windows must be 1..1000 and at most 8 distinct")

	// ErrMalformedBar marks a raw bar that is missing a required field or has an unparseable date.
	ErrMalformedBar = errors.New("malformed price bar")
)

// MalformedBarError reports one raw bar that could not be decoded.
type MalformedBarError struct {
	Index int    // Position of the bar in the raw input
	Field string // JSON field name at fault
	Err   error  // Underlying cause, if any
}

func (e *MalformedBarError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bar %d: %s: %v", e.Index, e.Field, e.Err)
	}
	return fmt.Sprintf("bar %d: %s is required", e.Index, e.Field)
}

// Unwrap lets errors.Is match both ErrMalformedBar and the underlying cause.
func (e *MalformedBarError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMalformedBar, e.Err}
	}
	return []error{ErrMalformedBar}
}
