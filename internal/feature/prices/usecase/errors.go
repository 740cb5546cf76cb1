package usecase

import "errors"

var (
	// ErrInvalidDays is returned when a requested look-back exceeds MaxDays or a sync range is not positive.
	ErrInvalidDays = errors.New("invalid number of days")

	// ErrInvalidDateRange is returned when a sync range ends before it starts.
	ErrInvalidDateRange = errors.New("start date must not be after end date")
)
