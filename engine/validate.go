package engine

import (
	"errors"
	"fmt"
)

// Validate rejects malformed shift records before they reach the engine.
// It returns the first violation found, as a *ValidationError.
//
// Checks:
//   - ScheduledEnd strictly after ScheduledStart
//   - when both actual instants are present, ActualEnd strictly after ActualStart
//   - RateMultiplier within rates' (0, UpperBound]
//   - Status is known
//
// Negative BreakMinutes are not rejected; the calculator clamps them to zero.
func Validate(s ShiftRecord, rates RateTable) error {
	if !s.ScheduledEnd.After(s.ScheduledStart) {
		return &ValidationError{
			ShiftID: s.ID,
			Field:   "scheduled_end",
			Reason:  "must be after scheduled_start",
			Err:     ErrInvalidInterval,
		}
	}
	if s.hasActual() && !s.ActualEnd.After(*s.ActualStart) {
		return &ValidationError{
			ShiftID: s.ID,
			Field:   "actual_end",
			Reason:  "must be after actual_start",
			Err:     ErrInvalidInterval,
		}
	}
	if !rates.IsValid(s.RateMultiplier) {
		return &ValidationError{
			ShiftID: s.ID,
			Field:   "rate_multiplier",
			Reason:  fmt.Sprintf("%v outside (0, %v]", s.RateMultiplier, rates.upperBound()),
			Err:     ErrInvalidRate,
		}
	}
	if !s.Status.Valid() {
		return &ValidationError{
			ShiftID: s.ID,
			Field:   "status",
			Reason:  fmt.Sprintf("unknown status %q", s.Status),
			Err:     ErrInvalidStatus,
		}
	}
	return nil
}

// ValidateAll validates every shift and joins the failures.
func ValidateAll(shifts []ShiftRecord, rates RateTable) error {
	var errs []error
	for _, s := range shifts {
		if err := Validate(s, rates); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
