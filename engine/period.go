package engine

import (
	"time"
)

// =============================================================================
// PAY PERIOD - Half-open reporting window
// =============================================================================

// PayPeriod is a reporting window [Start, End).
// End is exclusive and equals the Start of the next period of the same type
// and anchor, so periods tile the timeline with no gaps or overlaps.
type PayPeriod struct {
	Start time.Time
	End   time.Time
	Type  PeriodType
}

// Contains returns true if t is within [Start, End).
func (p PayPeriod) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// String returns a string representation of the period.
func (p PayPeriod) String() string {
	return string(p.Type) + "[" + p.Start.Format("2006-01-02") + ", " + p.End.Format("2006-01-02") + ")"
}

// PeriodType defines how periods are calculated
type PeriodType string

const (
	PeriodWeekly   PeriodType = "weekly"   // Calendar week, Calendar.WeekStart first
	PeriodBiweekly PeriodType = "biweekly" // 14-day tiles anchored at a reference date
	PeriodMonthly  PeriodType = "monthly"  // Calendar month
)

// ParsePeriodType converts a string to a PeriodType.
func ParsePeriodType(s string) (PeriodType, error) {
	switch PeriodType(s) {
	case PeriodWeekly, PeriodBiweekly, PeriodMonthly:
		return PeriodType(s), nil
	}
	return "", ErrInvalidPeriodType
}

// =============================================================================
// PERIOD RESOLVER - Determines which period an instant falls into
// =============================================================================

// Resolver maps instants to pay periods.
//
// ReferenceDate anchors biweekly tiling. Moving it shifts the whole tiling.
// When nil, the anchor is the first Calendar.WeekStart day on or after
// 1970-01-01, so biweekly periods start on the same weekday as weekly ones.
type Resolver struct {
	Calendar      Calendar
	ReferenceDate *time.Time
}

// PeriodContaining returns the period of the given type that contains t.
// Unknown types fall back to weekly.
func (r Resolver) PeriodContaining(t time.Time, typ PeriodType) PayPeriod {
	cal := r.Calendar
	switch typ {
	case PeriodMonthly:
		start := cal.StartOfMonth(t)
		return PayPeriod{Start: start, End: start.AddDate(0, 1, 0), Type: PeriodMonthly}

	case PeriodBiweekly:
		anchor := r.anchorDay()
		days := floorDiv(cal.dayNumber(t)-cal.dayNumber(anchor), 14)
		start := cal.AddDays(anchor, days*14)
		return PayPeriod{Start: start, End: cal.AddDays(start, 14), Type: PeriodBiweekly}

	default:
		start := cal.StartOfWeek(t)
		return PayPeriod{Start: start, End: cal.AddDays(start, 7), Type: PeriodWeekly}
	}
}

func (r Resolver) anchorDay() time.Time {
	cal := r.Calendar
	if r.ReferenceDate != nil {
		return cal.StartOfDay(*r.ReferenceDate)
	}
	epoch := time.Date(1970, time.January, 1, 0, 0, 0, 0, cal.loc())
	offset := (int(cal.WeekStart) - int(epoch.Weekday()) + 7) % 7
	return cal.AddDays(epoch, offset)
}

// Previous returns the period before p.
// Weekly and biweekly step back a fixed number of days; monthly steps to the
// prior calendar month, whatever its length.
func (r Resolver) Previous(p PayPeriod) PayPeriod {
	return r.step(p, -1)
}

// Next returns the period following p.
func (r Resolver) Next(p PayPeriod) PayPeriod {
	return r.step(p, 1)
}

func (r Resolver) step(p PayPeriod, dir int) PayPeriod {
	cal := r.Calendar
	switch p.Type {
	case PeriodMonthly:
		start := cal.StartOfMonth(p.Start).AddDate(0, dir, 0)
		return PayPeriod{Start: start, End: start.AddDate(0, 1, 0), Type: PeriodMonthly}
	case PeriodBiweekly:
		start := cal.AddDays(p.Start, 14*dir)
		return PayPeriod{Start: start, End: cal.AddDays(start, 14), Type: PeriodBiweekly}
	default:
		start := cal.AddDays(p.Start, 7*dir)
		return PayPeriod{Start: start, End: cal.AddDays(start, 7), Type: PeriodWeekly}
	}
}

// Periods returns the ordered periods covering [from, to).
func (r Resolver) Periods(from, to time.Time, typ PeriodType) []PayPeriod {
	if !to.After(from) {
		return nil
	}
	var periods []PayPeriod
	for p := r.PeriodContaining(from, typ); p.Start.Before(to); p = r.Next(p) {
		periods = append(periods, p)
	}
	return periods
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// =============================================================================
// ASSIGNMENT - Which shifts belong to a period
// =============================================================================

// AssignOptions controls Assign filtering.
type AssignOptions struct {
	// IncludeCancelled keeps cancelled and soft-deleted shifts.
	IncludeCancelled bool
}

// Assign returns the shifts whose ScheduledStart falls in [p.Start, p.End),
// preserving input order.
func Assign(shifts []ShiftRecord, p PayPeriod, opts AssignOptions) []ShiftRecord {
	result := make([]ShiftRecord, 0, len(shifts))
	for _, s := range shifts {
		if !p.Contains(s.ScheduledStart) {
			continue
		}
		if !opts.IncludeCancelled && (s.Deleted || s.Status == StatusCancelled) {
			continue
		}
		result = append(result, s)
	}
	return result
}
