package engine_test

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/shift-engine/engine"
)

func dayShift(day int, breakMin int, multiplier float64) engine.ShiftRecord {
	return engine.ShiftRecord{
		ID:             engine.ShiftID(fmt.Sprintf("s-%d", day)),
		ScheduledStart: at(2025, 3, day, 9, 0),
		ScheduledEnd:   at(2025, 3, day, 17, 0),
		BreakMinutes:   breakMin,
		RateMultiplier: multiplier,
		Status:         engine.StatusCompleted,
	}
}

func timePtr(t time.Time) *time.Time { return &t }

// =============================================================================
// PAID / PREMIUM MINUTES
// =============================================================================

func TestPaidMinutes_RegularShiftWithBreak(t *testing.T) {
	// GIVEN: 09:00-17:00, 30 minute break, regular rate
	// THEN: 450 paid, 0 premium
	s := dayShift(10, 30, 1.0)

	assert.Equal(t, 450, engine.PaidMinutes(s))
	assert.Equal(t, 0, engine.PremiumMinutes(s))
}

func TestPaidMinutes_PremiumShift_AllMinutesPremium(t *testing.T) {
	// GIVEN: Same shift at 1.5x
	// THEN: Every paid minute is premium, pay = 7.5h * 20.00 * 1.5
	s := dayShift(10, 30, 1.5)

	assert.Equal(t, 450, engine.PaidMinutes(s))
	assert.Equal(t, 450, engine.PremiumMinutes(s))
	assert.Equal(t, engine.Cents(22500), engine.EstimatedPayCents(s, 2000))
}

func TestPaidMinutes_BreakLongerThanShift_Zero(t *testing.T) {
	s := engine.ShiftRecord{
		ScheduledStart: at(2025, 3, 10, 9, 0),
		ScheduledEnd:   at(2025, 3, 10, 10, 0),
		BreakMinutes:   90,
		RateMultiplier: 1.0,
	}

	assert.Equal(t, 0, engine.PaidMinutes(s))
}

func TestPaidMinutes_NegativeBreak_TreatedAsZero(t *testing.T) {
	s := dayShift(10, -60, 1.0)

	assert.Equal(t, 480, engine.PaidMinutes(s), "negative break must not inflate paid time")
}

func TestPaidMinutes_EndBeforeStart_Zero(t *testing.T) {
	s := engine.ShiftRecord{
		ScheduledStart: at(2025, 3, 10, 17, 0),
		ScheduledEnd:   at(2025, 3, 10, 9, 0),
		RateMultiplier: 1.5,
	}

	assert.Equal(t, 0, engine.PaidMinutes(s))
	assert.Equal(t, 0, engine.PremiumMinutes(s))
}

func TestPaidMinutes_PrefersActualWhenBothPresent(t *testing.T) {
	s := dayShift(10, 0, 1.0)
	s.ActualStart = timePtr(at(2025, 3, 10, 9, 15))
	s.ActualEnd = timePtr(at(2025, 3, 10, 18, 0))

	assert.Equal(t, 525, engine.PaidMinutes(s))
}

func TestPaidMinutes_OnlyClockIn_FallsBackToScheduled(t *testing.T) {
	s := dayShift(10, 0, 1.0)
	s.ActualStart = timePtr(at(2025, 3, 10, 9, 15))

	assert.Equal(t, 480, engine.PaidMinutes(s))
}

func TestPaidMinutes_Overnight(t *testing.T) {
	s := engine.ShiftRecord{
		ScheduledStart: at(2025, 3, 10, 22, 0),
		ScheduledEnd:   at(2025, 3, 11, 6, 0),
		BreakMinutes:   45,
		RateMultiplier: 1.3,
	}

	assert.Equal(t, 435, engine.PaidMinutes(s))
	assert.Equal(t, 435, engine.PremiumMinutes(s))
}

func TestPremiumMinutes_NeverExceedsPaid(t *testing.T) {
	multipliers := []float64{0.5, 1.0, 1.0000001, 1.3, 1.5, 2.0}
	breaks := []int{-30, 0, 30, 480, 600}

	for _, m := range multipliers {
		for _, b := range breaks {
			s := dayShift(10, b, m)
			paid := engine.PaidMinutes(s)
			premium := engine.PremiumMinutes(s)

			assert.GreaterOrEqual(t, paid, 0)
			assert.LessOrEqual(t, premium, paid)
			if m > 1.0 {
				assert.Equal(t, paid, premium, "multiplier %v", m)
			} else {
				assert.Equal(t, 0, premium, "multiplier %v", m)
			}
		}
	}
}

// =============================================================================
// PAY
// =============================================================================

func TestEstimatedPayCents_RoundsToWholeCents(t *testing.T) {
	// 1 minute at 10.00/hour = 16.666... cents
	s := engine.ShiftRecord{
		ScheduledStart: at(2025, 3, 10, 9, 0),
		ScheduledEnd:   at(2025, 3, 10, 9, 1),
		RateMultiplier: 1.0,
	}

	assert.Equal(t, engine.Cents(17), engine.EstimatedPayCents(s, 1000))
}

func TestEstimatedPayCents_ZeroPaid_ZeroPay(t *testing.T) {
	s := dayShift(10, 600, 2.0)

	assert.Equal(t, engine.Cents(0), engine.EstimatedPayCents(s, 2500))
}

func TestEnrich(t *testing.T) {
	s := dayShift(10, 30, 2.0)

	m := engine.Enrich(s, engine.DefaultRates(), engine.CentsPtr(2000))

	assert.Equal(t, 450, m.PaidMinutes)
	assert.Equal(t, 450, m.PremiumMinutes)
	assert.Equal(t, "Bank Holiday", m.RateLabel)
	if assert.NotNil(t, m.EstimatedPay) {
		assert.Equal(t, engine.Cents(30000), *m.EstimatedPay)
	}

	noRate := engine.Enrich(s, engine.DefaultRates(), nil)
	assert.Nil(t, noRate.EstimatedPay)
}

// =============================================================================
// RATES
// =============================================================================

func TestIsValidRate(t *testing.T) {
	for _, m := range []float64{0.5, 1.0, 1.5, 2.0, engine.DefaultRateUpperBound} {
		assert.True(t, engine.IsValidRate(m), "%v should be valid", m)
	}
	for _, m := range []float64{0, -1, 15.0, engine.DefaultRateUpperBound + 0.01, math.NaN(), math.Inf(1)} {
		assert.False(t, engine.IsValidRate(m), "%v should be invalid", m)
	}
}

func TestRateTable_ConfigurableUpperBound(t *testing.T) {
	rates := engine.DefaultRates()
	rates.UpperBound = 20

	assert.True(t, rates.IsValid(15.0))
	assert.False(t, rates.IsValid(20.5))
}

func TestRateLabel(t *testing.T) {
	tests := []struct {
		multiplier float64
		want       string
	}{
		{1.0, "Regular"},
		{1.3, "Overtime (Bracket)"},
		{1.5, "Extra"},
		{2.0, "Bank Holiday"},
		{1.75, "1.8x"},
		{1.25, "1.3x"},
		{3.0, "3.0x"},
		{0.5, "0.5x"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.RateLabel(tt.multiplier), "multiplier %v", tt.multiplier)
	}
}

func TestRateLabel_NonFinite(t *testing.T) {
	for _, m := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		assert.NotPanics(t, func() {
			assert.Equal(t, engine.InvalidMultiplierLabel, engine.RateLabel(m))
		}, "multiplier %v", m)
		assert.False(t, engine.IsValidRate(m))
	}
}

func TestEstimatedPayCents_NonFiniteMultiplier_Zero(t *testing.T) {
	for _, m := range []float64{math.NaN(), math.Inf(1)} {
		s := dayShift(10, 30, m)

		assert.NotPanics(t, func() {
			assert.Equal(t, engine.Cents(0), engine.EstimatedPayCents(s, 2000))
		}, "multiplier %v", m)
	}
}

func TestRateTable_LabelFor_PrefersOverride(t *testing.T) {
	rates := engine.DefaultRates()
	s := dayShift(10, 0, 1.5)

	assert.Equal(t, "Extra", rates.LabelFor(s))

	s.RateLabel = "Sunday"
	assert.Equal(t, "Sunday", rates.LabelFor(s))
}
