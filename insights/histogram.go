package insights

import (
	"fmt"
	"time"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// HISTOGRAMS - Dense charts, empty bars included
// =============================================================================

// Bucket is one bar of a histogram.
type Bucket struct {
	Label   string
	Start   time.Time // local midnight of the bar's first day; zero for weekday bars
	Minutes int
	Shifts  int
}

// Hours returns the bar's paid minutes in hours.
func (b Bucket) Hours() float64 { return float64(b.Minutes) / 60 }

// add attributes s to bars[i].
func add(bars []Bucket, i int, s engine.ShiftRecord) {
	bars[i].Minutes += engine.PaidMinutes(s)
	bars[i].Shifts++
}

// barTime picks the instant that selects a shift's bar. Window membership
// is decided on ScheduledStart, as in Metrics; the effective start only
// chooses the bar, and only when it stays inside w.
func barTime(s engine.ShiftRecord, w Window) (time.Time, bool) {
	if !w.Contains(s.ScheduledStart) {
		return time.Time{}, false
	}
	if start := s.EffectiveStart(); w.Contains(start) {
		return start, true
	}
	return s.ScheduledStart, true
}

// ByWeekday returns 7 bars starting at Calendar.WeekStart. A shift scheduled
// in w counts toward the weekday it actually started on.
func (e Engine) ByWeekday(shifts []engine.ShiftRecord, w Window) []Bucket {
	bars := make([]Bucket, 7)
	for i := range bars {
		bars[i].Label = time.Weekday((int(e.Calendar.WeekStart) + i) % 7).String()[:3]
	}

	loc := e.location()
	for _, s := range e.counted(shifts) {
		start, ok := barTime(s, w)
		if !ok {
			continue
		}
		i := (int(start.In(loc).Weekday()) - int(e.Calendar.WeekStart) + 7) % 7
		add(bars, i, s)
	}
	return bars
}

// ByWeekOfMonth returns one bar per calendar week touched by the month
// containing at (4 to 6 bars). Only shifts scheduled inside the month count,
// so the first and last bars may cover fewer than 7 days of data.
func (e Engine) ByWeekOfMonth(shifts []engine.ShiftRecord, at time.Time) []Bucket {
	cal := e.Calendar
	month := e.Window(ScopeMonth, at)

	var bars []Bucket
	for start := cal.StartOfWeek(month.Start); start.Before(month.End); start = cal.AddDays(start, 7) {
		bars = append(bars, Bucket{
			Label: fmt.Sprintf("Week %d", len(bars)+1),
			Start: start,
		})
	}

	for _, s := range e.counted(shifts) {
		start, ok := barTime(s, month)
		if !ok {
			continue
		}
		for i := len(bars) - 1; i >= 0; i-- {
			if !start.Before(bars[i].Start) {
				add(bars, i, s)
				break
			}
		}
	}
	return bars
}

// ByMonthOfYear returns 12 bars for the year containing at.
func (e Engine) ByMonthOfYear(shifts []engine.ShiftRecord, at time.Time) []Bucket {
	year := e.Window(ScopeYear, at)

	bars := make([]Bucket, 12)
	for i := range bars {
		start := year.Start.AddDate(0, i, 0)
		bars[i] = Bucket{Label: start.Month().String()[:3], Start: start}
	}

	loc := e.location()
	for _, s := range e.counted(shifts) {
		start, ok := barTime(s, year)
		if !ok {
			continue
		}
		add(bars, int(start.In(loc).Month())-1, s)
	}
	return bars
}

func (e Engine) location() *time.Location {
	if e.Calendar.Location == nil {
		return time.UTC
	}
	return e.Calendar.Location
}
