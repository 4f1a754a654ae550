/*
summary.go - Period aggregation

PURPOSE:
  Reduces a set of shifts into a Summary: how many minutes were worked,
  how many of them at a premium, the average shift, and (when a base rate is
  known) the estimated pay. Also groups minutes by rate multiplier and
  compares one period against the previous one.

REPORTING MODES:
  The two modes are separate operations and must not be conflated:

    SummarizeActual:    completed shifts only ("what did I work?")
    SummarizeScheduled: every non-cancelled shift ("what is planned?")

  Summarize itself applies no status filter; callers that already filtered
  (e.g. via Assign) use it directly.

INVARIANTS:
  - RegularMinutes = TotalMinutes - PremiumMinutes
  - AverageMinutes = TotalMinutes / ShiftCount, 0 for an empty set
  - Sum of Breakdown minutes = TotalMinutes
  - EstimatedPay is nil unless Aggregator.BaseRate is set
  - ComparedToPrevious is exactly 0 when the previous total is 0

SEE ALSO:
  - calculator.go: Per-shift values summed here
  - period.go: Assign() selects the shifts of a period
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY - Aggregated values for a set of shifts
// =============================================================================

// Summary is the reduction of a set of shifts.
type Summary struct {
	TotalMinutes   int
	RegularMinutes int
	PremiumMinutes int
	ShiftCount     int
	AverageMinutes float64

	// Present only when a base hourly rate was supplied.
	EstimatedPay *Cents

	// Ordered ascending by multiplier.
	Breakdown []RateBucket
}

// TotalHours returns TotalMinutes in hours.
func (s Summary) TotalHours() float64 { return float64(s.TotalMinutes) / 60 }

// RateBucket groups paid minutes sharing one multiplier.
type RateBucket struct {
	Label      string
	Multiplier float64
	Minutes    int
	Shifts     int
	Pay        *Cents
}

// =============================================================================
// AGGREGATOR
// =============================================================================

// Aggregator reduces shifts with a rate table and an optional base rate.
type Aggregator struct {
	Rates    RateTable
	BaseRate *Cents
}

// NewAggregator returns an Aggregator using DefaultRates.
func NewAggregator(base *Cents) Aggregator {
	return Aggregator{Rates: DefaultRates(), BaseRate: base}
}

// Summarize reduces every shift passed in, with no status filtering.
func (a Aggregator) Summarize(shifts []ShiftRecord) Summary {
	var sum Summary
	var pay Cents

	for _, s := range shifts {
		paid := PaidMinutes(s)
		sum.TotalMinutes += paid
		sum.PremiumMinutes += PremiumMinutes(s)
		sum.ShiftCount++
		if a.BaseRate != nil {
			pay += EstimatedPayCents(s, *a.BaseRate)
		}
	}

	sum.RegularMinutes = sum.TotalMinutes - sum.PremiumMinutes
	if sum.ShiftCount > 0 {
		sum.AverageMinutes = float64(sum.TotalMinutes) / float64(sum.ShiftCount)
	}
	if a.BaseRate != nil {
		sum.EstimatedPay = &pay
	}
	sum.Breakdown = a.Breakdown(shifts)
	return sum
}

// SummarizeActual reduces completed, non-deleted shifts.
func (a Aggregator) SummarizeActual(shifts []ShiftRecord) Summary {
	return a.Summarize(filter(shifts, ShiftRecord.countsAsActual))
}

// SummarizeScheduled reduces non-cancelled, non-deleted shifts.
func (a Aggregator) SummarizeScheduled(shifts []ShiftRecord) Summary {
	return a.Summarize(filter(shifts, ShiftRecord.countsAsScheduled))
}

// Mode selects which shifts a report counts.
type Mode string

const (
	ModeActual    Mode = "actual"
	ModeScheduled Mode = "scheduled"
)

// ParseMode converts a query value to a Mode. Empty means actual.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeActual:
		return ModeActual, nil
	case ModeScheduled:
		return ModeScheduled, nil
	}
	return "", fmt.Errorf("unknown reporting mode %q", s)
}

// Filter keeps the shifts counted by m. The zero Mode behaves as ModeActual.
func (m Mode) Filter(shifts []ShiftRecord) []ShiftRecord {
	if m == ModeScheduled {
		return filter(shifts, ShiftRecord.countsAsScheduled)
	}
	return filter(shifts, ShiftRecord.countsAsActual)
}

// SummarizeMode dispatches to SummarizeActual or SummarizeScheduled.
func (a Aggregator) SummarizeMode(shifts []ShiftRecord, m Mode) Summary {
	return a.Summarize(m.Filter(shifts))
}

func filter(shifts []ShiftRecord, keep func(ShiftRecord) bool) []ShiftRecord {
	result := make([]ShiftRecord, 0, len(shifts))
	for _, s := range shifts {
		if keep(s) {
			result = append(result, s)
		}
	}
	return result
}

// =============================================================================
// RATE BREAKDOWN
// =============================================================================

// Breakdown groups shifts by distinct multiplier, ascending.
//
// Multipliers are keyed by their shortest decimal representation so that
// 1.5 entered twice always lands in one bucket.
func (a Aggregator) Breakdown(shifts []ShiftRecord) []RateBucket {
	type group struct {
		multiplier decimal.Decimal
		bucket     RateBucket
		pay        Cents
	}
	groups := make(map[string]*group)

	for _, s := range shifts {
		m, key := multiplierKey(s.RateMultiplier)
		g, ok := groups[key]
		if !ok {
			g = &group{
				multiplier: m,
				bucket: RateBucket{
					Label:      a.Rates.Label(s.RateMultiplier),
					Multiplier: s.RateMultiplier,
				},
			}
			groups[key] = g
		}
		g.bucket.Minutes += PaidMinutes(s)
		g.bucket.Shifts++
		if a.BaseRate != nil {
			g.pay += EstimatedPayCents(s, *a.BaseRate)
		}
	}

	ordered := make([]*group, 0, len(groups))
	for _, g := range groups {
		ordered = append(ordered, g)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].multiplier.LessThan(ordered[j].multiplier)
	})

	buckets := make([]RateBucket, len(ordered))
	for i, g := range ordered {
		b := g.bucket
		if a.BaseRate != nil {
			pay := g.pay
			b.Pay = &pay
		}
		buckets[i] = b
	}
	return buckets
}

// multiplierKey returns the sort value and grouping key of m. Non-finite
// multipliers share one bucket that sorts first.
func multiplierKey(m float64) (decimal.Decimal, string) {
	if !finite(m) {
		return decimal.NewFromInt(-1), InvalidMultiplierLabel
	}
	d := decimal.NewFromFloat(m)
	return d, d.String()
}

// =============================================================================
// PERIOD COMPARISON
// =============================================================================

// ComparedToPrevious returns the relative change in total hours,
// (current - previous) / previous. A zero previous total yields 0.
func ComparedToPrevious(current, previous Summary) float64 {
	if previous.TotalMinutes == 0 {
		return 0
	}
	return (current.TotalHours() - previous.TotalHours()) / previous.TotalHours()
}
