package insights

import (
	"fmt"
	"sort"
)

// =============================================================================
// INSIGHTS
// =============================================================================

// Priority orders insights for presentation, higher first.
type Priority int

const (
	PriorityLow    Priority = 1
	PriorityMedium Priority = 2
	PriorityHigh   Priority = 3
)

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Insight is one narrative observation.
type Insight struct {
	Kind     string
	Priority Priority
	Title    string
	Message  string
}

// Facts are the precomputed values rules inspect.
type Facts struct {
	Week        Metrics
	Month       Metrics
	ByWeekday   []Bucket
	Consistency Consistency
	Burnout     BurnoutRisk
	Thresholds  Thresholds
}

// Rule inspects one metric and emits at most one insight.
// Rules must not depend on each other or on evaluation order.
type Rule func(Facts) (Insight, bool)

// DefaultRules returns the standard rule set in tie-break order.
func DefaultRules() []Rule {
	return []Rule{
		BurnoutRule,
		LongWeekRule,
		RestDaysRule,
		TrendRule,
		PremiumShareRule,
		ConsistencyRule,
		BusiestDayRule,
	}
}

// Evaluate runs every rule and orders the results by priority, high first.
// Equal priorities keep rule order.
func Evaluate(rules []Rule, facts Facts) []Insight {
	result := make([]Insight, 0, len(rules))
	for _, rule := range rules {
		if in, ok := rule(facts); ok {
			result = append(result, in)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority > result[j].Priority
	})
	return result
}

// =============================================================================
// RULES
// =============================================================================

// BurnoutRule reports the burnout risk level when it is moderate or worse.
func BurnoutRule(f Facts) (Insight, bool) {
	switch f.Burnout.Level {
	case RiskCritical, RiskHigh:
		return Insight{
			Kind:     "burnout",
			Priority: PriorityHigh,
			Title:    "Burnout risk is " + string(f.Burnout.Level),
			Message:  fmt.Sprintf("Risk score %.2f. Consider reducing hours or adding rest days.", f.Burnout.Score),
		}, true
	case RiskModerate:
		return Insight{
			Kind:     "burnout",
			Priority: PriorityMedium,
			Title:    "Burnout risk is moderate",
			Message:  fmt.Sprintf("Risk score %.2f.", f.Burnout.Score),
		}, true
	}
	return Insight{}, false
}

// LongWeekRule fires when the last 7 days exceed Thresholds.WeeklyHours.
func LongWeekRule(f Facts) (Insight, bool) {
	hours := f.Burnout.Factors.WeeklyHours
	if hours <= f.Thresholds.WeeklyHours {
		return Insight{}, false
	}
	return Insight{
		Kind:     "long_week",
		Priority: PriorityHigh,
		Title:    "Long week",
		Message:  fmt.Sprintf("%.1f hours in the last 7 days, above %.0f.", hours, f.Thresholds.WeeklyHours),
	}, true
}

// RestDaysRule fires when the last 7 days hold fewer than Thresholds.MinRestDays rest days.
func RestDaysRule(f Facts) (Insight, bool) {
	rest := f.Burnout.Factors.RestDays
	if rest >= f.Thresholds.MinRestDays {
		return Insight{}, false
	}
	return Insight{
		Kind:     "rest_days",
		Priority: PriorityMedium,
		Title:    "Not enough rest days",
		Message:  fmt.Sprintf("%d rest day(s) in the last 7 days.", rest),
	}, true
}

// TrendRule compares this week with the previous one and fires when the
// change reaches Thresholds.TrendChange in either direction.
func TrendRule(f Facts) (Insight, bool) {
	change := f.Week.Change
	switch {
	case f.Week.Previous.TotalMinutes == 0:
		return Insight{}, false
	case change >= f.Thresholds.TrendChange:
		return Insight{
			Kind:     "trend",
			Priority: PriorityMedium,
			Title:    "Hours up this week",
			Message:  fmt.Sprintf("%.0f%% more than last week.", change*100),
		}, true
	case change <= -f.Thresholds.TrendChange:
		return Insight{
			Kind:     "trend",
			Priority: PriorityLow,
			Title:    "Hours down this week",
			Message:  fmt.Sprintf("%.0f%% less than last week.", -change*100),
		}, true
	}
	return Insight{}, false
}

// PremiumShareRule fires when the share of this month's minutes paid above
// the regular rate reaches Thresholds.PremiumShare.
func PremiumShareRule(f Facts) (Insight, bool) {
	sum := f.Month.Summary
	if sum.TotalMinutes == 0 {
		return Insight{}, false
	}
	share := float64(sum.PremiumMinutes) / float64(sum.TotalMinutes)
	if share < f.Thresholds.PremiumShare {
		return Insight{}, false
	}
	return Insight{
		Kind:     "premium_share",
		Priority: PriorityLow,
		Title:    "Mostly premium hours",
		Message:  fmt.Sprintf("%.0f%% of this month's hours are paid above the regular rate.", share*100),
	}, true
}

// ConsistencyRule fires when shift lengths vary little around their mean.
func ConsistencyRule(f Facts) (Insight, bool) {
	if !f.Consistency.Consistent {
		return Insight{}, false
	}
	return Insight{
		Kind:     "consistency",
		Priority: PriorityLow,
		Title:    "Consistent schedule",
		Message:  fmt.Sprintf("Shifts average %.1f hours with little variation.", f.Consistency.MeanHours),
	}, true
}

// BusiestDayRule names the weekday with the most minutes this week, if any.
func BusiestDayRule(f Facts) (Insight, bool) {
	best := -1
	for i, b := range f.ByWeekday {
		if b.Minutes > 0 && (best < 0 || b.Minutes > f.ByWeekday[best].Minutes) {
			best = i
		}
	}
	if best < 0 {
		return Insight{}, false
	}
	b := f.ByWeekday[best]
	return Insight{
		Kind:     "busiest_day",
		Priority: PriorityLow,
		Title:    "Busiest day: " + b.Label,
		Message:  fmt.Sprintf("%.1f hours this week.", b.Hours()),
	}, true
}
