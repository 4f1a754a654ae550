package engine

import "time"

// =============================================================================
// PAY POLICY - The engine's configuration surface
// =============================================================================

// PayPolicy bundles every recognized engine option:
//
//	PeriodType    weekly | biweekly | monthly
//	ReferenceDate anchors biweekly tiling (optional)
//	BaseRate      hourly base in cents; enables pay estimation (optional)
//	Rates         label table plus the valid-rate upper bound
//	Calendar      timezone and week start
//
// Policies are built by the factory package from JSON/YAML definitions.
type PayPolicy struct {
	ID            string
	Name          string
	PeriodType    PeriodType
	ReferenceDate *time.Time
	BaseRate      *Cents
	Rates         RateTable
	Calendar      Calendar
}

// DefaultPolicy is weekly, UTC, Monday-start, default rates, no base rate.
func DefaultPolicy() *PayPolicy {
	return &PayPolicy{
		ID:         "default",
		Name:       "Default",
		PeriodType: PeriodWeekly,
		Rates:      DefaultRates(),
		Calendar:   DefaultCalendar(),
	}
}

// Resolver returns a period resolver for this policy.
func (p *PayPolicy) Resolver() Resolver {
	return Resolver{Calendar: p.Calendar, ReferenceDate: p.ReferenceDate}
}

// Aggregator returns an aggregator for this policy.
func (p *PayPolicy) Aggregator() Aggregator {
	return Aggregator{Rates: p.Rates, BaseRate: p.BaseRate}
}

// CurrentPeriod returns the policy's period containing t.
func (p *PayPolicy) CurrentPeriod(t time.Time) PayPeriod {
	return p.Resolver().PeriodContaining(t, p.PeriodType)
}
