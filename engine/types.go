/*
Package engine provides the pay period and hours calculation engine.

PURPOSE:
  This package contains the deterministic rules that turn raw shift records
  into paid minutes, premium minutes, period-bucketed aggregates and estimated
  pay. Everything here is a pure function over values: the engine owns no
  state, performs no I/O and never logs.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftRecord: An immutable shift as supplied by the persistence layer
  - Status: Lifecycle state of a shift (scheduled, in progress, ...)
  - Cents: Money in minor currency units (never floating point)
  - ShiftID: Type-safe identifier

DATA FLOW:
  ShiftRecord -> calculator.go (paid/premium minutes, pay)
              -> period.go     (which pay period does it belong to?)
              -> summary.go    (period totals, rate buckets, deltas)
              -> insights/     (trends, histograms, narrative insights)

DESIGN PRINCIPLES:
  1. Immutability: Results are new values, inputs are never modified
  2. Precision: Money is computed with decimal.Decimal and rounded once
  3. Explicit calendars: No hidden timezone or week-start globals
  4. Total functions: Malformed input is clamped, Validate() rejects it

USAGE:
  shift := engine.ShiftRecord{
      ScheduledStart: nine,
      ScheduledEnd:   five,
      BreakMinutes:   30,
      RateMultiplier: 1.0,
      Status:         engine.StatusCompleted,
  }
  paid := engine.PaidMinutes(shift) // 450

SEE ALSO:
  - time.go: Interval math and day splitting
  - calculator.go: Per-shift derived values
  - period.go: Pay period resolution
  - summary.go: Period aggregation
*/
package engine

import "time"

// =============================================================================
// MONEY
// =============================================================================

// Cents is an amount of money in minor currency units.
type Cents int64

// CentsPtr is a convenience for optional base rates.
func CentsPtr(c Cents) *Cents { return &c }

// =============================================================================
// SHIFT RECORD - Input owned by the caller
// =============================================================================

type ShiftID string

// Status is the lifecycle state of a shift.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ShiftRecord is a single worked (or planned) shift.
//
// The engine treats it as immutable. Derived values (paid minutes, premium
// minutes, pay) are never stored on the record; they are recomputed from it.
type ShiftRecord struct {
	ID ShiftID

	ScheduledStart time.Time
	ScheduledEnd   time.Time

	// Clock-in/out. Only used when BOTH are present.
	ActualStart *time.Time
	ActualEnd   *time.Time

	// Unpaid break. Negative values are treated as zero.
	BreakMinutes int

	// 1.0 = regular rate, > 1.0 = premium (overtime, holiday, enhanced).
	RateMultiplier float64

	// Optional display override for the rate.
	RateLabel string

	Status Status

	// Soft-delete flag maintained by the persistence layer.
	Deleted bool
}

// EffectiveStart returns the clock-in time when both actual instants are
// present, else the scheduled start.
func (s ShiftRecord) EffectiveStart() time.Time {
	if s.hasActual() {
		return *s.ActualStart
	}
	return s.ScheduledStart
}

// EffectiveEnd returns the clock-out time when both actual instants are
// present, else the scheduled end.
func (s ShiftRecord) EffectiveEnd() time.Time {
	if s.hasActual() {
		return *s.ActualEnd
	}
	return s.ScheduledEnd
}

func (s ShiftRecord) hasActual() bool {
	return s.ActualStart != nil && s.ActualEnd != nil
}

// IsPremium reports whether the whole shift is paid above the regular rate.
func (s ShiftRecord) IsPremium() bool { return s.RateMultiplier > 1.0 }

// countsAsActual is true for shifts that belong in "actual" reporting.
func (s ShiftRecord) countsAsActual() bool {
	return !s.Deleted && s.Status == StatusCompleted
}

// countsAsScheduled is true for shifts that belong in "scheduled" reporting.
func (s ShiftRecord) countsAsScheduled() bool {
	return !s.Deleted && s.Status != StatusCancelled
}
