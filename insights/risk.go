/*
risk.go - Schedule consistency and burnout scoring

PURPOSE:
  Two scores derived from recent shifts:

  CONSISTENCY
    Population variance of per-shift paid hours. A schedule is consistent
    when the variance is below Thresholds.ConsistencyVariance (2.0 h²) and
    there are at least Thresholds.MinShiftsForConsistency shifts.

  BURNOUT RISK
    Sum of four bounded increments, so the score is always in [0, 1]:

      factor                               max    grows with
      ---------------------------------    ----   ----------------------------
      trailing 7-day hours over threshold  0.35   excess / WeeklyHoursSpan
      longest run of consecutive days      0.25   0.05 per day over the limit
      overtime frequency (28 days)         0.20   share of premium shifts
      missing rest days (trailing 7 days)  0.20   0.10 per missing day

    Levels: low < 0.25 <= moderate < 0.50 <= high < 0.75 <= critical

  Days are calendar days of each shift's effective start.
*/
package insights

import (
	"math"
	"time"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// CONSISTENCY
// =============================================================================

// Consistency describes how much shift lengths vary.
type Consistency struct {
	Shifts     int
	MeanHours  float64
	Variance   float64 // h²
	Consistent bool
}

// Consistency scores the counted shifts passed in.
func (e Engine) Consistency(shifts []engine.ShiftRecord) Consistency {
	counted := e.counted(shifts)
	c := Consistency{Shifts: len(counted)}
	if c.Shifts == 0 {
		return c
	}

	hours := make([]float64, len(counted))
	for i, s := range counted {
		hours[i] = float64(engine.PaidMinutes(s)) / 60
		c.MeanHours += hours[i]
	}
	c.MeanHours /= float64(c.Shifts)

	for _, h := range hours {
		d := h - c.MeanHours
		c.Variance += d * d
	}
	c.Variance /= float64(c.Shifts)

	c.Consistent = c.Shifts >= e.Thresholds.MinShiftsForConsistency &&
		c.Variance < e.Thresholds.ConsistencyVariance
	return c
}

// =============================================================================
// BURNOUT RISK
// =============================================================================

// RiskLevel is an ordered bucket of the burnout score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Maximum contribution of each factor.
const (
	maxHoursIncrement    = 0.35
	maxStreakIncrement   = 0.25
	maxOvertimeIncrement = 0.20
	maxRestIncrement     = 0.20

	streakStep = 0.05
	restStep   = 0.10

	lookbackDays = 28
)

// LevelFor buckets a score.
func LevelFor(score float64) RiskLevel {
	switch {
	case score < 0.25:
		return RiskLow
	case score < 0.5:
		return RiskModerate
	case score < 0.75:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// Rank orders levels, low = 0.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskModerate:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	}
	return 0
}

// RiskFactors are the raw measurements behind a BurnoutRisk.
type RiskFactors struct {
	WeeklyHours     float64 // trailing 7 days
	ConsecutiveDays int     // longest run in the last 28 days
	OvertimeShare   float64 // premium shifts / shifts, last 28 days
	RestDays        int     // days without a shift, trailing 7 days
}

// RiskContributions are the bounded increments summed into Score.
type RiskContributions struct {
	Hours    float64
	Streak   float64
	Overtime float64
	Rest     float64
}

// BurnoutRisk is the scored result.
type BurnoutRisk struct {
	Score         float64
	Level         RiskLevel
	Factors       RiskFactors
	Contributions RiskContributions
}

// Burnout scores the shifts worked up to and including the day of at.
func (e Engine) Burnout(shifts []engine.ShiftRecord, at time.Time) BurnoutRisk {
	cal := e.Calendar
	th := e.Thresholds
	today := cal.StartOfDay(at)
	end := cal.AddDays(today, 1)
	weekFrom := cal.AddDays(today, -6)
	lookbackFrom := cal.AddDays(today, -(lookbackDays - 1))

	var f RiskFactors
	worked := make(map[string]bool)
	weekWorked := make(map[string]bool)
	shiftCount, premiumCount := 0, 0

	for _, s := range e.counted(shifts) {
		start := s.EffectiveStart()
		if start.Before(lookbackFrom) || !start.Before(end) {
			continue
		}
		key := dayKey(start, e.location())
		worked[key] = true
		shiftCount++
		if s.IsPremium() {
			premiumCount++
		}
		if !start.Before(weekFrom) {
			weekWorked[key] = true
			f.WeeklyHours += float64(engine.PaidMinutes(s)) / 60
		}
	}

	run := 0
	for day := lookbackFrom; day.Before(end); day = cal.AddDays(day, 1) {
		if worked[dayKey(day, e.location())] {
			run++
			f.ConsecutiveDays = max(f.ConsecutiveDays, run)
		} else {
			run = 0
		}
	}
	if shiftCount > 0 {
		f.OvertimeShare = float64(premiumCount) / float64(shiftCount)
	}
	f.RestDays = 7 - len(weekWorked)

	var c RiskContributions
	if th.WeeklyHoursSpan > 0 {
		c.Hours = clamp((f.WeeklyHours-th.WeeklyHours)/th.WeeklyHoursSpan, 0, 1) * maxHoursIncrement
	}
	c.Streak = clamp(float64(f.ConsecutiveDays-th.MaxConsecutiveDays)*streakStep, 0, maxStreakIncrement)
	c.Overtime = clamp(f.OvertimeShare, 0, 1) * maxOvertimeIncrement
	c.Rest = clamp(float64(th.MinRestDays-f.RestDays)*restStep, 0, maxRestIncrement)

	score := clamp(c.Hours+c.Streak+c.Overtime+c.Rest, 0, 1)
	return BurnoutRisk{
		Score:         score,
		Level:         LevelFor(score),
		Factors:       f,
		Contributions: c,
	}
}

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("2006-01-02")
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
