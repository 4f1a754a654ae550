/*
calculator.go - Per-shift derived values

PURPOSE:
  Answers "how much of this shift is paid, how much of it is premium, and
  what is it worth?" for a single ShiftRecord.

RULES:
  PaidMinutes    = max(0, minutes(effectiveStart, effectiveEnd) - max(0, break))
  PremiumMinutes = PaidMinutes if RateMultiplier > 1.0, else 0
  Pay            = round(PaidMinutes / 60 * baseRate * RateMultiplier)

  Premium classification is all-or-nothing: a shift either is or is not at
  a premium rate in its entirety. It is never pro-rated within a shift.

MALFORMED INPUT:
  An effective end before the effective start yields 0 paid minutes rather
  than a negative or wrapped value. Validate() exists to reject such records
  before they get here.

EXAMPLE:
  09:00-17:00, 30 min break, 1.5x, base 2000 cents/hour
    PaidMinutes       = 450
    PremiumMinutes    = 450
    EstimatedPayCents = 22500

SEE ALSO:
  - rates.go: Rate validation and labels
  - summary.go: Sums these values across shifts
*/
package engine

import (
	"github.com/shopspring/decimal"
)

var minutesPerHour = decimal.NewFromInt(60)

// PaidMinutes returns the compensable minutes of s. Never negative.
func PaidMinutes(s ShiftRecord) int {
	worked, err := MinutesBetween(s.EffectiveStart(), s.EffectiveEnd())
	if err != nil {
		return 0
	}
	brk := s.BreakMinutes
	if brk < 0 {
		brk = 0
	}
	if paid := worked - brk; paid > 0 {
		return paid
	}
	return 0
}

// PremiumMinutes returns the paid minutes of s that are above the regular rate.
func PremiumMinutes(s ShiftRecord) int {
	if !s.IsPremium() {
		return 0
	}
	return PaidMinutes(s)
}

// EstimatedPayCents returns the pay for s at the given hourly base rate.
// Computed in decimal and rounded half away from zero to whole cents.
func EstimatedPayCents(s ShiftRecord, base Cents) Cents {
	return payFor(PaidMinutes(s), base, s.RateMultiplier)
}

func payFor(paidMinutes int, base Cents, multiplier float64) Cents {
	if paidMinutes == 0 || multiplier <= 0 || !finite(multiplier) {
		return 0
	}
	pay := decimal.NewFromInt(int64(paidMinutes)).
		Mul(decimal.NewFromInt(int64(base))).
		Mul(decimal.NewFromFloat(multiplier)).
		Div(minutesPerHour).
		Round(0)
	return Cents(pay.IntPart())
}

// =============================================================================
// SHIFT METRICS - All derived values in one struct
// =============================================================================

// ShiftMetrics is the enriched view of one shift.
type ShiftMetrics struct {
	Shift          ShiftRecord
	PaidMinutes    int
	PremiumMinutes int
	RateLabel      string
	EstimatedPay   *Cents
}

// Enrich computes every derived value of s. EstimatedPay is nil unless base is set.
func Enrich(s ShiftRecord, rates RateTable, base *Cents) ShiftMetrics {
	m := ShiftMetrics{
		Shift:          s,
		PaidMinutes:    PaidMinutes(s),
		PremiumMinutes: PremiumMinutes(s),
		RateLabel:      rates.LabelFor(s),
	}
	if base != nil {
		pay := EstimatedPayCents(s, *base)
		m.EstimatedPay = &pay
	}
	return m
}
