/*
errors.go - Centralized error types for the calculation engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers (API, stores) wrap these with context and test them with errors.Is.

ERROR CATEGORIES:
  1. Input errors - Malformed shift records (interval, rate, status)
  2. Lookup errors - Missing shifts in a ShiftStore
  3. Configuration errors - Unknown period types

EMPTY INPUT:
  Zero shifts is NOT an error. Every aggregate returns well-defined zero
  values. Division by a zero previous-period total is defined as 0.

SEE ALSO:
  - validate.go: Produces ValidationError values
  - time.go: Produces IntervalError values
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidInterval is returned when an interval ends before it starts
	// (or, for shifts, does not end strictly after it starts).
	ErrInvalidInterval = errors.New("invalid interval: end before start")

	// ErrInvalidRate is returned for multipliers outside (0, upper bound].
	ErrInvalidRate = errors.New("invalid rate multiplier")

	// ErrInvalidStatus is returned for unknown shift statuses.
	ErrInvalidStatus = errors.New("invalid shift status")

	// ErrInvalidPeriodType is returned when a period type is not recognized.
	ErrInvalidPeriodType = errors.New("invalid period type")

	// ErrShiftNotFound is returned by stores for unknown shift IDs.
	ErrShiftNotFound = errors.New("shift not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// IntervalError describes an interval whose end precedes its start.
type IntervalError struct {
	Start time.Time
	End   time.Time
}

func (e *IntervalError) Error() string {
	return fmt.Sprintf("invalid interval: end %s before start %s",
		e.End.Format(time.RFC3339), e.Start.Format(time.RFC3339))
}

func (e *IntervalError) Unwrap() error {
	return ErrInvalidInterval
}

// ValidationError reports a rejected shift record.
type ValidationError struct {
	ShiftID ShiftID
	Field   string
	Reason  string
	Err     error // one of the sentinels above
}

func (e *ValidationError) Error() string {
	if e.ShiftID == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("shift %s: %s: %s", e.ShiftID, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidInterval) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidPeriodType)
}

// IsNotFound returns true if the error indicates a missing shift.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound)
}
