package insights

import (
	"time"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// WINDOWS - Calendar week / month / year
// =============================================================================

// Scope is the length of a rollup window.
type Scope string

const (
	ScopeWeek  Scope = "week"
	ScopeMonth Scope = "month"
	ScopeYear  Scope = "year"
)

// Window is a half-open calendar range [Start, End).
// Unlike a pay period it is never anchored: weeks follow Calendar.WeekStart,
// months and years follow the calendar.
type Window struct {
	Scope Scope
	Start time.Time
	End   time.Time
}

// Contains returns true if t is within [Start, End).
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Window returns the window of the given scope containing at.
// Unknown scopes fall back to week.
func (e Engine) Window(scope Scope, at time.Time) Window {
	cal := e.Calendar
	switch scope {
	case ScopeYear:
		start := cal.StartOfYear(at)
		return Window{Scope: ScopeYear, Start: start, End: start.AddDate(1, 0, 0)}
	case ScopeMonth:
		start := cal.StartOfMonth(at)
		return Window{Scope: ScopeMonth, Start: start, End: start.AddDate(0, 1, 0)}
	default:
		start := cal.StartOfWeek(at)
		return Window{Scope: ScopeWeek, Start: start, End: cal.AddDays(start, 7)}
	}
}

// Previous returns the window of the same scope immediately before w.
func (e Engine) Previous(w Window) Window {
	switch w.Scope {
	case ScopeYear:
		return Window{Scope: ScopeYear, Start: w.Start.AddDate(-1, 0, 0), End: w.Start}
	case ScopeMonth:
		return Window{Scope: ScopeMonth, Start: w.Start.AddDate(0, -1, 0), End: w.Start}
	default:
		return Window{Scope: ScopeWeek, Start: e.Calendar.AddDays(w.Start, -7), End: w.Start}
	}
}

// inWindow returns the counted shifts whose scheduled start is in w.
func (e Engine) inWindow(shifts []engine.ShiftRecord, w Window) []engine.ShiftRecord {
	var result []engine.ShiftRecord
	for _, s := range e.counted(shifts) {
		if w.Contains(s.ScheduledStart) {
			result = append(result, s)
		}
	}
	return result
}

// =============================================================================
// METRICS - Rollup of one window against the previous one
// =============================================================================

// Metrics is a window's summary compared with the window before it.
type Metrics struct {
	Window   Window
	Summary  engine.Summary
	Previous engine.Summary

	// Relative change in total hours, 0 when the previous window is empty.
	Change float64
}

// Metrics summarizes shifts in w and in the window before it.
func (e Engine) Metrics(shifts []engine.ShiftRecord, w Window) Metrics {
	current := e.Aggregator.Summarize(e.inWindow(shifts, w))
	previous := e.Aggregator.Summarize(e.inWindow(shifts, e.Previous(w)))

	return Metrics{
		Window:   w,
		Summary:  current,
		Previous: previous,
		Change:   engine.ComparedToPrevious(current, previous),
	}
}

// Weekly, Monthly and Yearly are shorthands for Metrics over the window
// containing at.
func (e Engine) Weekly(shifts []engine.ShiftRecord, at time.Time) Metrics {
	return e.Metrics(shifts, e.Window(ScopeWeek, at))
}

func (e Engine) Monthly(shifts []engine.ShiftRecord, at time.Time) Metrics {
	return e.Metrics(shifts, e.Window(ScopeMonth, at))
}

func (e Engine) Yearly(shifts []engine.ShiftRecord, at time.Time) Metrics {
	return e.Metrics(shifts, e.Window(ScopeYear, at))
}
