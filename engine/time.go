package engine

import (
	"time"
)

// =============================================================================
// CALENDAR - Explicit timezone and week-start configuration
// =============================================================================

// Calendar carries the locale-dependent settings used for day, week and month
// boundaries. It is passed by value; there is no package-level default that
// callers can mutate.
type Calendar struct {
	Location  *time.Location
	WeekStart time.Weekday
}

// DefaultCalendar is UTC with weeks starting on Monday.
func DefaultCalendar() Calendar {
	return Calendar{Location: time.UTC, WeekStart: time.Monday}
}

func (c Calendar) loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StartOfDay returns local midnight of the day containing t.
func (c Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc())
}

// AddDays moves a local midnight by n calendar days. DST-safe.
func (c Calendar) AddDays(day time.Time, n int) time.Time {
	day = day.In(c.loc())
	return time.Date(day.Year(), day.Month(), day.Day()+n, 0, 0, 0, 0, c.loc())
}

// StartOfWeek returns local midnight of the first day of the week containing t.
func (c Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) - int(c.WeekStart) + 7) % 7
	return c.AddDays(day, -offset)
}

// StartOfMonth returns local midnight of the first day of t's month.
func (c Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc())
}

// StartOfYear returns local midnight of January 1st of t's year.
func (c Calendar) StartOfYear(t time.Time) time.Time {
	t = t.In(c.loc())
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, c.loc())
}

// SameDay reports whether a and b fall on the same local calendar day.
func (c Calendar) SameDay(a, b time.Time) bool {
	a, b = a.In(c.loc()), b.In(c.loc())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// dayNumber counts calendar days since 1970-01-01 for t's local date.
// Wall-clock based, so DST transitions never shift the count.
func (c Calendar) dayNumber(t time.Time) int {
	t = t.In(c.loc())
	civil := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return int(civil.Unix() / 86400)
}

// =============================================================================
// INTERVAL MATH
// =============================================================================

// MinutesBetween returns the floor of whole minutes elapsed from start to end.
// When end is before start it returns 0 and an *IntervalError.
func MinutesBetween(start, end time.Time) (int, error) {
	if end.Before(start) {
		return 0, &IntervalError{Start: start, End: end}
	}
	return int(end.Sub(start) / time.Minute), nil
}

// SpansDayBoundary reports whether start and end fall on different calendar days.
func (c Calendar) SpansDayBoundary(start, end time.Time) bool {
	return !c.SameDay(start, end)
}

// DaySegment is the share of an interval that falls on one calendar day.
type DaySegment struct {
	Day     time.Time // local midnight
	Minutes int
}

// SplitAcrossDays splits [start, end) into one segment per calendar day touched.
//
// Segment minutes always sum to MinutesBetween(start, end). Each segment is
// measured as a difference of whole minutes elapsed since start, so sub-minute
// offsets never lose or gain a minute across the split. Days fully inside the
// interval get their real length (1440, or 1380/1500 on DST transitions).
// An interval ending exactly at midnight does not produce an empty last day.
func (c Calendar) SplitAcrossDays(start, end time.Time) ([]DaySegment, error) {
	if _, err := MinutesBetween(start, end); err != nil {
		return nil, err
	}

	day := c.StartOfDay(start)
	if !end.After(start) {
		return []DaySegment{{Day: day, Minutes: 0}}, nil
	}

	var segments []DaySegment
	elapsed := 0
	for cursor := start; cursor.Before(end); {
		next := c.AddDays(day, 1)
		if next.After(end) {
			next = end
		}
		upTo := int(next.Sub(start) / time.Minute)
		segments = append(segments, DaySegment{Day: day, Minutes: upTo - elapsed})
		elapsed = upTo
		cursor = next
		day = c.AddDays(day, 1)
	}
	return segments, nil
}
