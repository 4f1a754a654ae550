package engine_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// SUMMARIZE
// =============================================================================

func TestSummarize_TenIdenticalShifts(t *testing.T) {
	// GIVEN: Ten 09:00-17:00 shifts, 30 min break, regular rate, 20.00/hour
	// THEN: 4500 paid minutes and 1500.00 estimated pay
	var shifts []engine.ShiftRecord
	for day := 3; day < 13; day++ {
		shifts = append(shifts, dayShift(day, 30, 1.0))
	}

	sum := engine.NewAggregator(engine.CentsPtr(2000)).Summarize(shifts)

	assert.Equal(t, 4500, sum.TotalMinutes)
	assert.Equal(t, 4500, sum.RegularMinutes)
	assert.Equal(t, 0, sum.PremiumMinutes)
	assert.Equal(t, 10, sum.ShiftCount)
	assert.Equal(t, 450.0, sum.AverageMinutes)
	assert.Equal(t, 75.0, sum.TotalHours())
	require.NotNil(t, sum.EstimatedPay)
	assert.Equal(t, engine.Cents(150000), *sum.EstimatedPay)
}

func TestSummarize_Empty_WellDefinedZeros(t *testing.T) {
	sum := engine.NewAggregator(nil).Summarize(nil)

	assert.Equal(t, 0, sum.TotalMinutes)
	assert.Equal(t, 0, sum.ShiftCount)
	assert.Equal(t, 0.0, sum.AverageMinutes)
	assert.Nil(t, sum.EstimatedPay)
	assert.Empty(t, sum.Breakdown)

	withRate := engine.NewAggregator(engine.CentsPtr(2000)).Summarize(nil)
	require.NotNil(t, withRate.EstimatedPay)
	assert.Equal(t, engine.Cents(0), *withRate.EstimatedPay)
}

func TestSummarize_NoBaseRate_NoPay(t *testing.T) {
	sum := engine.NewAggregator(nil).Summarize([]engine.ShiftRecord{dayShift(10, 30, 1.5)})

	assert.Nil(t, sum.EstimatedPay)
	require.Len(t, sum.Breakdown, 1)
	assert.Nil(t, sum.Breakdown[0].Pay)
}

func mixedShifts() []engine.ShiftRecord {
	holiday := dayShift(13, 0, 2.0)
	holiday.ScheduledEnd = at(2025, 3, 13, 13, 0)

	return []engine.ShiftRecord{
		dayShift(10, 30, 1.0), // 450
		dayShift(11, 30, 1.5), // 450 premium
		dayShift(12, 30, 1.0), // 450
		holiday,               // 240 premium
	}
}

func TestSummarize_PremiumAndRegularSplit(t *testing.T) {
	sum := engine.NewAggregator(nil).Summarize(mixedShifts())

	assert.Equal(t, 1590, sum.TotalMinutes)
	assert.Equal(t, 690, sum.PremiumMinutes)
	assert.Equal(t, 900, sum.RegularMinutes)
	assert.Equal(t, sum.TotalMinutes, sum.RegularMinutes+sum.PremiumMinutes)
}

// =============================================================================
// REPORTING MODES
// =============================================================================

func TestSummarizeActual_vs_Scheduled(t *testing.T) {
	// GIVEN: One shift of each status plus a soft-deleted completed shift
	completed := dayShift(10, 0, 1.0)
	scheduled := dayShift(11, 0, 1.0)
	scheduled.Status = engine.StatusScheduled
	inProgress := dayShift(12, 0, 1.0)
	inProgress.Status = engine.StatusInProgress
	cancelled := dayShift(13, 0, 1.0)
	cancelled.Status = engine.StatusCancelled
	deleted := dayShift(14, 0, 1.0)
	deleted.Deleted = true

	shifts := []engine.ShiftRecord{completed, scheduled, inProgress, cancelled, deleted}
	agg := engine.NewAggregator(nil)

	// THEN: Actual counts completed only, scheduled counts every live shift
	actual := agg.SummarizeActual(shifts)
	planned := agg.SummarizeScheduled(shifts)

	assert.Equal(t, 1, actual.ShiftCount)
	assert.Equal(t, 480, actual.TotalMinutes)
	assert.Equal(t, 3, planned.ShiftCount)
	assert.Equal(t, 1440, planned.TotalMinutes)
}

// =============================================================================
// RATE BREAKDOWN
// =============================================================================

func TestBreakdown_GroupedAscending(t *testing.T) {
	shifts := mixedShifts()
	agg := engine.NewAggregator(engine.CentsPtr(2000))

	buckets := agg.Breakdown(shifts)

	require.Len(t, buckets, 3)

	assert.Equal(t, "Regular", buckets[0].Label)
	assert.Equal(t, 900, buckets[0].Minutes)
	assert.Equal(t, 2, buckets[0].Shifts)
	assert.Equal(t, engine.Cents(30000), *buckets[0].Pay)

	assert.Equal(t, "Extra", buckets[1].Label)
	assert.Equal(t, 450, buckets[1].Minutes)
	assert.Equal(t, engine.Cents(22500), *buckets[1].Pay)

	assert.Equal(t, "Bank Holiday", buckets[2].Label)
	assert.Equal(t, 240, buckets[2].Minutes)
	assert.Equal(t, engine.Cents(16000), *buckets[2].Pay)
}

func TestBreakdown_MinutesSumToTotal(t *testing.T) {
	shifts := append(mixedShifts(), dayShift(14, 15, 1.75), dayShift(15, 600, 1.3))
	agg := engine.NewAggregator(nil)

	sum := agg.Summarize(shifts)
	total := 0
	for i, b := range sum.Breakdown {
		total += b.Minutes
		if i > 0 {
			assert.Less(t, sum.Breakdown[i-1].Multiplier, b.Multiplier)
		}
	}

	assert.Equal(t, sum.TotalMinutes, total)
}

func TestBreakdown_NonFiniteMultiplier_OwnBucket(t *testing.T) {
	// GIVEN: Unvalidated records with NaN and infinite multipliers
	shifts := []engine.ShiftRecord{
		dayShift(10, 30, 1.0),
		dayShift(11, 30, math.NaN()),
		dayShift(12, 30, math.Inf(1)),
	}
	agg := engine.NewAggregator(engine.CentsPtr(2000))

	// WHEN: Summarizing
	var sum engine.Summary
	require.NotPanics(t, func() { sum = agg.Summarize(shifts) })

	// THEN: The bad rows share one leading bucket and minutes still add up
	require.Len(t, sum.Breakdown, 2)
	assert.Equal(t, engine.InvalidMultiplierLabel, sum.Breakdown[0].Label)
	assert.Equal(t, 900, sum.Breakdown[0].Minutes)
	assert.Equal(t, engine.Cents(0), *sum.Breakdown[0].Pay)
	assert.Equal(t, 1350, sum.TotalMinutes)
	assert.Equal(t, engine.Cents(15000), *sum.EstimatedPay)
}

// =============================================================================
// PERIOD COMPARISON
// =============================================================================

func TestComparedToPrevious(t *testing.T) {
	prev := engine.Summary{TotalMinutes: 600}

	assert.InDelta(t, 0.5, engine.ComparedToPrevious(engine.Summary{TotalMinutes: 900}, prev), 1e-9)
	assert.InDelta(t, -0.5, engine.ComparedToPrevious(engine.Summary{TotalMinutes: 300}, prev), 1e-9)
	assert.InDelta(t, 0.0, engine.ComparedToPrevious(engine.Summary{TotalMinutes: 600}, prev), 1e-9)
}

func TestComparedToPrevious_ZeroPrevious_ExactlyZero(t *testing.T) {
	for _, cur := range []int{0, 1, 4500} {
		got := engine.ComparedToPrevious(engine.Summary{TotalMinutes: cur}, engine.Summary{})
		assert.Equal(t, 0.0, got)
	}
}

func TestParseMode(t *testing.T) {
	m, err := engine.ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, engine.ModeActual, m)

	m, err = engine.ParseMode("scheduled")
	require.NoError(t, err)
	assert.Equal(t, engine.ModeScheduled, m)

	_, err = engine.ParseMode("planned")
	assert.Error(t, err)
}

func TestSummarizeMode_MatchesDedicatedOperations(t *testing.T) {
	cancelled := dayShift(13, 0, 1.0)
	cancelled.Status = engine.StatusCancelled
	scheduled := dayShift(14, 0, 1.0)
	scheduled.Status = engine.StatusScheduled
	shifts := append(mixedShifts(), cancelled, scheduled)
	agg := engine.NewAggregator(nil)

	assert.Equal(t, agg.SummarizeActual(shifts), agg.SummarizeMode(shifts, engine.ModeActual))
	assert.Equal(t, agg.SummarizeScheduled(shifts), agg.SummarizeMode(shifts, engine.ModeScheduled))
}
