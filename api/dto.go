/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's value types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Shifts:
    ShiftDTO (record + derived minutes/pay), ShiftRequest

  Periods:
    PeriodDTO, SummaryDTO, RateBucketDTO, PeriodSummaryResponse,
    ClosedPeriodDTO

  Dashboard / insights:
    MetricsDTO, DashboardResponse, BucketDTO, ReportDTO

  Policy:
    factory.PayPolicyJSON is used as-is

  Scenarios:
    ScenarioDTO, LoadScenarioRequest

VALIDATION:
  Request types carry go-playground/validator tags for shape checks
  (required fields, known statuses). Domain rules such as the valid rate
  range depend on the active pay policy and are checked by engine.Validate
  in the handler.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PayPolicyJSON type
*/
package api

import (
	"time"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/insights"
)

// =============================================================================
// SHIFTS
// =============================================================================

// ShiftDTO is a shift plus its derived values.
type ShiftDTO struct {
	ID             string     `json:"id"`
	ScheduledStart time.Time  `json:"scheduled_start"`
	ScheduledEnd   time.Time  `json:"scheduled_end"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	BreakMinutes   int        `json:"break_minutes"`
	RateMultiplier float64    `json:"rate_multiplier"`
	RateLabel      string     `json:"rate_label"`
	Status         string     `json:"status"`
	Deleted        bool       `json:"deleted,omitempty"`

	PaidMinutes       int    `json:"paid_minutes"`
	PremiumMinutes    int    `json:"premium_minutes"`
	EstimatedPayCents *int64 `json:"estimated_pay_cents,omitempty"`
}

// ShiftRequest creates or replaces a shift.
// A zero RateMultiplier means regular rate; an empty Status means scheduled.
type ShiftRequest struct {
	ScheduledStart time.Time  `json:"scheduled_start" validate:"required"`
	ScheduledEnd   time.Time  `json:"scheduled_end" validate:"required"`
	ActualStart    *time.Time `json:"actual_start" validate:"required_with=ActualEnd"`
	ActualEnd      *time.Time `json:"actual_end" validate:"required_with=ActualStart"`
	BreakMinutes   int        `json:"break_minutes"`
	RateMultiplier float64    `json:"rate_multiplier" validate:"gte=0"`
	RateLabel      string     `json:"rate_label" validate:"max=64"`
	Status         string     `json:"status" validate:"omitempty,oneof=scheduled in_progress completed cancelled"`
}

// ShiftListResponse is returned by GET /api/shifts.
type ShiftListResponse struct {
	From   time.Time  `json:"from"`
	To     time.Time  `json:"to"`
	Shifts []ShiftDTO `json:"shifts"`
}

// =============================================================================
// PERIODS AND SUMMARIES
// =============================================================================

// PeriodDTO is a pay period [start, end).
type PeriodDTO struct {
	Type  string    `json:"type"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RateBucketDTO is one row of the rate breakdown.
type RateBucketDTO struct {
	Label      string  `json:"label"`
	Multiplier float64 `json:"multiplier"`
	Minutes    int     `json:"minutes"`
	Hours      float64 `json:"hours"`
	Shifts     int     `json:"shifts"`
	PayCents   *int64  `json:"pay_cents,omitempty"`
}

// SummaryDTO is an engine.Summary on the wire.
type SummaryDTO struct {
	TotalMinutes      int             `json:"total_minutes"`
	TotalHours        float64         `json:"total_hours"`
	RegularMinutes    int             `json:"regular_minutes"`
	PremiumMinutes    int             `json:"premium_minutes"`
	ShiftCount        int             `json:"shift_count"`
	AverageMinutes    float64         `json:"average_minutes"`
	EstimatedPayCents *int64          `json:"estimated_pay_cents,omitempty"`
	Breakdown         []RateBucketDTO `json:"breakdown"`
}

// PeriodSummaryResponse is returned by GET /api/periods/summary.
type PeriodSummaryResponse struct {
	Mode     string     `json:"mode"`
	Period   PeriodDTO  `json:"period"`
	Summary  SummaryDTO `json:"summary"`
	Previous PeriodDTO  `json:"previous_period"`
	// Previous period totals, for the comparison line.
	PreviousSummary SummaryDTO `json:"previous_summary"`
	Change          float64    `json:"change"`
}

// ClosedPeriodDTO is one entry of GET /api/periods/closed.
type ClosedPeriodDTO struct {
	PolicyID string     `json:"policy_id"`
	Period   PeriodDTO  `json:"period"`
	Summary  SummaryDTO `json:"summary"`
	ClosedAt time.Time  `json:"closed_at"`
}

// RateDTO describes one multiplier.
type RateDTO struct {
	Multiplier float64 `json:"multiplier"`
	Label      string  `json:"label"`
	Valid      bool    `json:"valid"`
}

// RateTableResponse is returned by GET /api/rates without ?multiplier.
type RateTableResponse struct {
	UpperBound float64   `json:"upper_bound"`
	Rates      []RateDTO `json:"rates"`
}

// =============================================================================
// DASHBOARD AND INSIGHTS
// =============================================================================

// WindowDTO is a calendar window [start, end).
type WindowDTO struct {
	Scope string    `json:"scope"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// MetricsDTO is one dashboard card.
type MetricsDTO struct {
	Window   WindowDTO  `json:"window"`
	Summary  SummaryDTO `json:"summary"`
	Previous SummaryDTO `json:"previous"`
	Change   float64    `json:"change"`
}

// DashboardResponse is returned by GET /api/dashboard.
type DashboardResponse struct {
	At    time.Time  `json:"at"`
	Week  MetricsDTO `json:"week"`
	Month MetricsDTO `json:"month"`
	Year  MetricsDTO `json:"year"`
}

// BucketDTO is one histogram bar.
type BucketDTO struct {
	Label   string    `json:"label"`
	Start   time.Time `json:"start"`
	Minutes int       `json:"minutes"`
	Hours   float64   `json:"hours"`
	Shifts  int       `json:"shifts"`
}

// InsightDTO is one generated observation.
type InsightDTO struct {
	Kind     string `json:"kind"`
	Priority string `json:"priority"`
	Title    string `json:"title"`
	Message  string `json:"message"`
}

// BurnoutDTO is the burnout score with its inputs.
type BurnoutDTO struct {
	Score           float64 `json:"score"`
	Level           string  `json:"level"`
	WeeklyHours     float64 `json:"weekly_hours"`
	ConsecutiveDays int     `json:"consecutive_days"`
	OvertimeShare   float64 `json:"overtime_share"`
	RestDays        int     `json:"rest_days"`
}

// ConsistencyDTO summarizes shift-length spread.
type ConsistencyDTO struct {
	Shifts     int     `json:"shifts"`
	MeanHours  float64 `json:"mean_hours"`
	Variance   float64 `json:"variance"`
	Consistent bool    `json:"consistent"`
}

// ReportDTO is returned by GET /api/insights.
type ReportDTO struct {
	GeneratedAt   time.Time      `json:"generated_at"`
	Week          MetricsDTO     `json:"week"`
	Month         MetricsDTO     `json:"month"`
	Year          MetricsDTO     `json:"year"`
	ByWeekday     []BucketDTO    `json:"by_weekday"`
	ByWeekOfMonth []BucketDTO    `json:"by_week_of_month"`
	ByMonthOfYear []BucketDTO    `json:"by_month_of_year"`
	Consistency   ConsistencyDTO `json:"consistency"`
	Burnout       BurnoutDTO     `json:"burnout"`
	Insights      []InsightDTO   `json:"insights"`
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest is the body of POST /api/scenarios/load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// FieldError is one entry of a validation failure.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func centsPtr(c *engine.Cents) *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}

func toShiftDTO(m engine.ShiftMetrics) ShiftDTO {
	s := m.Shift
	return ShiftDTO{
		ID:                string(s.ID),
		ScheduledStart:    s.ScheduledStart,
		ScheduledEnd:      s.ScheduledEnd,
		ActualStart:       s.ActualStart,
		ActualEnd:         s.ActualEnd,
		BreakMinutes:      s.BreakMinutes,
		RateMultiplier:    s.RateMultiplier,
		RateLabel:         m.RateLabel,
		Status:            string(s.Status),
		Deleted:           s.Deleted,
		PaidMinutes:       m.PaidMinutes,
		PremiumMinutes:    m.PremiumMinutes,
		EstimatedPayCents: centsPtr(m.EstimatedPay),
	}
}

func (req ShiftRequest) toShift(id engine.ShiftID) engine.ShiftRecord {
	rate := req.RateMultiplier
	if rate == 0 {
		rate = 1.0
	}
	status := engine.Status(req.Status)
	if status == "" {
		status = engine.StatusScheduled
	}
	return engine.ShiftRecord{
		ID:             id,
		ScheduledStart: req.ScheduledStart,
		ScheduledEnd:   req.ScheduledEnd,
		ActualStart:    req.ActualStart,
		ActualEnd:      req.ActualEnd,
		BreakMinutes:   req.BreakMinutes,
		RateMultiplier: rate,
		RateLabel:      req.RateLabel,
		Status:         status,
	}
}

func toPeriodDTO(p engine.PayPeriod) PeriodDTO {
	return PeriodDTO{Type: string(p.Type), Start: p.Start, End: p.End}
}

func toSummaryDTO(s engine.Summary) SummaryDTO {
	breakdown := make([]RateBucketDTO, len(s.Breakdown))
	for i, b := range s.Breakdown {
		breakdown[i] = RateBucketDTO{
			Label:      b.Label,
			Multiplier: b.Multiplier,
			Minutes:    b.Minutes,
			Hours:      float64(b.Minutes) / 60,
			Shifts:     b.Shifts,
			PayCents:   centsPtr(b.Pay),
		}
	}
	return SummaryDTO{
		TotalMinutes:      s.TotalMinutes,
		TotalHours:        s.TotalHours(),
		RegularMinutes:    s.RegularMinutes,
		PremiumMinutes:    s.PremiumMinutes,
		ShiftCount:        s.ShiftCount,
		AverageMinutes:    s.AverageMinutes,
		EstimatedPayCents: centsPtr(s.EstimatedPay),
		Breakdown:         breakdown,
	}
}

func toMetricsDTO(m insights.Metrics) MetricsDTO {
	return MetricsDTO{
		Window: WindowDTO{
			Scope: string(m.Window.Scope),
			Start: m.Window.Start,
			End:   m.Window.End,
		},
		Summary:  toSummaryDTO(m.Summary),
		Previous: toSummaryDTO(m.Previous),
		Change:   m.Change,
	}
}

func toBucketDTOs(bars []insights.Bucket) []BucketDTO {
	dtos := make([]BucketDTO, len(bars))
	for i, b := range bars {
		dtos[i] = BucketDTO{
			Label:   b.Label,
			Start:   b.Start,
			Minutes: b.Minutes,
			Hours:   b.Hours(),
			Shifts:  b.Shifts,
		}
	}
	return dtos
}

func toReportDTO(r insights.Report) ReportDTO {
	items := make([]InsightDTO, len(r.Insights))
	for i, in := range r.Insights {
		items[i] = InsightDTO{
			Kind:     in.Kind,
			Priority: in.Priority.String(),
			Title:    in.Title,
			Message:  in.Message,
		}
	}
	return ReportDTO{
		GeneratedAt:   r.GeneratedAt,
		Week:          toMetricsDTO(r.Week),
		Month:         toMetricsDTO(r.Month),
		Year:          toMetricsDTO(r.Year),
		ByWeekday:     toBucketDTOs(r.ByWeekday),
		ByWeekOfMonth: toBucketDTOs(r.ByWeekOfMonth),
		ByMonthOfYear: toBucketDTOs(r.ByMonthOfYear),
		Consistency: ConsistencyDTO{
			Shifts:     r.Consistency.Shifts,
			MeanHours:  r.Consistency.MeanHours,
			Variance:   r.Consistency.Variance,
			Consistent: r.Consistency.Consistent,
		},
		Burnout: BurnoutDTO{
			Score:           r.Burnout.Score,
			Level:           string(r.Burnout.Level),
			WeeklyHours:     r.Burnout.Factors.WeeklyHours,
			ConsecutiveDays: r.Burnout.Factors.ConsecutiveDays,
			OvertimeShare:   r.Burnout.Factors.OvertimeShare,
			RestDays:        r.Burnout.Factors.RestDays,
		},
		Insights: items,
	}
}
