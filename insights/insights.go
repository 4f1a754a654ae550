/*
Package insights derives trends, charts and narrative insights from shifts.

PURPOSE:
  Sits on top of the engine package. Where engine answers "how many minutes
  in this pay period?", insights answers "how does this week compare to the
  last one, which weekdays are busiest, is the schedule steady, and is the
  worker heading for burnout?".

  Everything is a pure function of (shifts, instant). The Engine holds
  configuration only and is safe to share between goroutines.

KEY CONCEPTS:
  - Window: A calendar week, month or year used for rollups
  - Metrics: A window's Summary plus the previous window and relative change
  - Bucket: One bar of a dense histogram (empty bars are kept as zero)
  - Consistency: Variance of per-shift paid hours
  - BurnoutRisk: Bounded weighted score in [0, 1] bucketed into levels
  - Rule / Insight: Independent checks producing prioritized messages

SEE ALSO:
  - windows.go: Window arithmetic and Metrics rollups
  - histogram.go: Weekday, week-of-month and month-of-year charts
  - risk.go: Consistency and burnout scoring
  - rules.go: Insight rules and their ordering
*/
package insights

import (
	"time"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// THRESHOLDS
// =============================================================================

// Thresholds are the fixed cut points used by consistency, risk and rules.
type Thresholds struct {
	// Trailing 7-day paid hours above which burnout risk starts to grow.
	WeeklyHours float64
	// Hours above WeeklyHours at which the hours increment saturates.
	WeeklyHoursSpan float64

	// Population variance of shift hours (h²) below which a schedule is consistent.
	ConsistencyVariance float64
	MinShiftsForConsistency int

	// Streak length tolerated before consecutive days add risk.
	MaxConsecutiveDays int
	// Rest days expected in any trailing 7 days.
	MinRestDays int

	// Relative change in weekly hours that counts as a trend.
	TrendChange float64
	// Share of premium minutes in a month that is called out.
	PremiumShare float64
}

// DefaultThresholds returns the standard cut points.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WeeklyHours:             48,
		WeeklyHoursSpan:         12,
		ConsistencyVariance:     2.0,
		MinShiftsForConsistency: 3,
		MaxConsecutiveDays:      6,
		MinRestDays:             2,
		TrendChange:             0.25,
		PremiumShare:            0.5,
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes insights with one calendar, aggregator and set of thresholds.
type Engine struct {
	Calendar   engine.Calendar
	Aggregator engine.Aggregator
	Thresholds Thresholds

	// Which shifts count. Zero value is engine.ModeActual.
	Mode engine.Mode

	// Rules evaluated by Report. Nil means DefaultRules().
	Rules []Rule
}

// New returns an Engine for the policy with default thresholds and rules.
func New(policy *engine.PayPolicy) Engine {
	return Engine{
		Calendar:   policy.Calendar,
		Aggregator: policy.Aggregator(),
		Thresholds: DefaultThresholds(),
		Mode:       engine.ModeActual,
	}
}

// counted applies the engine's reporting mode.
func (e Engine) counted(shifts []engine.ShiftRecord) []engine.ShiftRecord {
	return e.Mode.Filter(shifts)
}

// =============================================================================
// REPORT - Everything a dashboard needs in one value
// =============================================================================

// Report bundles the rollups, charts, scores and insights for one instant.
type Report struct {
	GeneratedAt time.Time

	Week  Metrics
	Month Metrics
	Year  Metrics

	ByWeekday     []Bucket // week containing GeneratedAt
	ByWeekOfMonth []Bucket // month containing GeneratedAt
	ByMonthOfYear []Bucket // year containing GeneratedAt

	Consistency Consistency // shifts of the current month
	Burnout     BurnoutRisk

	Insights []Insight
}

// Report builds a complete Report for the instant at.
func (e Engine) Report(shifts []engine.ShiftRecord, at time.Time) Report {
	week := e.Window(ScopeWeek, at)
	month := e.Window(ScopeMonth, at)
	year := e.Window(ScopeYear, at)

	r := Report{
		GeneratedAt:   at,
		Week:          e.Metrics(shifts, week),
		Month:         e.Metrics(shifts, month),
		Year:          e.Metrics(shifts, year),
		ByWeekday:     e.ByWeekday(shifts, week),
		ByWeekOfMonth: e.ByWeekOfMonth(shifts, at),
		ByMonthOfYear: e.ByMonthOfYear(shifts, at),
		Consistency:   e.Consistency(e.inWindow(shifts, month)),
		Burnout:       e.Burnout(shifts, at),
	}

	r.Insights = Evaluate(e.rules(), Facts{
		Week:        r.Week,
		Month:       r.Month,
		ByWeekday:   r.ByWeekday,
		Consistency: r.Consistency,
		Burnout:     r.Burnout,
		Thresholds:  e.Thresholds,
	})
	return r
}

func (e Engine) rules() []Rule {
	if e.Rules == nil {
		return DefaultRules()
	}
	return e.Rules
}
