/*
handlers_test.go - HTTP tests for the API handlers

Tests for:
- Shift CRUD, validation and soft delete
- Period resolution and period summaries in both reporting modes
- Rate lookup, policy replacement and persistence
- Dashboard and insights endpoints
- Request logging middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/engine/store"
	"github.com/warp/shift-engine/logger"
	"github.com/warp/shift-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// Wednesday evening; the current weekly period is [Mar 10, Mar 17).
var testNow = time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)

func newTestHandler(t *testing.T, st engine.ShiftStore) (*Handler, http.Handler) {
	t.Helper()
	if st == nil {
		st = store.NewMemory()
	}
	h := NewHandler(st, engine.DefaultPolicy(), nil)
	h.Now = func() time.Time { return testNow }
	return h, NewRouter(h, nil)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func workShift(id string, start time.Time, hours int, status engine.Status) engine.ShiftRecord {
	return engine.ShiftRecord{
		ID:             engine.ShiftID(id),
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Duration(hours) * time.Hour),
		RateMultiplier: 1.0,
		Status:         status,
	}
}

func seed(t *testing.T, st engine.ShiftStore, shifts ...engine.ShiftRecord) {
	t.Helper()
	for _, s := range shifts {
		require.NoError(t, st.Save(context.Background(), s))
	}
}

func day(d, hour int) time.Time {
	return time.Date(2025, 3, d, hour, 0, 0, 0, time.UTC)
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestHealth(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodGet, "/api/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCreateShift_AssignsIDAndDerivedValues(t *testing.T) {
	// GIVEN: A completed 9:00-17:30 shift with a 30 minute break
	_, router := newTestHandler(t, nil)
	body := map[string]any{
		"scheduled_start": "2025-03-10T09:00:00Z",
		"scheduled_end":   "2025-03-10T17:30:00Z",
		"break_minutes":   30,
		"status":          "completed",
	}

	// WHEN: Creating it
	rec := do(t, router, http.MethodPost, "/api/shifts", body)

	// THEN: It gets a UUID, regular rate and 480 paid minutes
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAs[ShiftDTO](t, rec)
	_, err := uuid.Parse(created.ID)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, created.RateMultiplier)
	assert.Equal(t, "Regular", created.RateLabel)
	assert.Equal(t, 480, created.PaidMinutes)
	assert.Equal(t, 0, created.PremiumMinutes)
	assert.Nil(t, created.EstimatedPayCents)

	// AND: It can be read back
	rec = do(t, router, http.MethodGet, "/api/shifts/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decodeAs[ShiftDTO](t, rec).Status)
}

func TestCreateShift_DefaultsToScheduled(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPost, "/api/shifts", map[string]any{
		"scheduled_start": "2025-03-14T22:00:00Z",
		"scheduled_end":   "2025-03-15T06:00:00Z",
		"rate_multiplier": 1.3,
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeAs[ShiftDTO](t, rec)
	assert.Equal(t, "scheduled", created.Status)
	assert.Equal(t, "Overtime (Bracket)", created.RateLabel)
	assert.Equal(t, 480, created.PremiumMinutes)
}

func TestCreateShift_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   any
		detail string
	}{
		{
			name:   "malformed json",
			body:   `{"scheduled_start":`,
			detail: "",
		},
		{
			name:   "missing start",
			body:   map[string]any{"scheduled_end": "2025-03-10T17:00:00Z"},
			detail: "ScheduledStart",
		},
		{
			name: "unknown status",
			body: map[string]any{
				"scheduled_start": "2025-03-10T09:00:00Z",
				"scheduled_end":   "2025-03-10T17:00:00Z",
				"status":          "paused",
			},
			detail: "oneof",
		},
		{
			name: "only clock-in",
			body: map[string]any{
				"scheduled_start": "2025-03-10T09:00:00Z",
				"scheduled_end":   "2025-03-10T17:00:00Z",
				"actual_start":    "2025-03-10T09:00:00Z",
			},
			detail: "required_with",
		},
		{
			name: "end before start",
			body: map[string]any{
				"scheduled_start": "2025-03-10T17:00:00Z",
				"scheduled_end":   "2025-03-10T09:00:00Z",
			},
			detail: "scheduled_end",
		},
		{
			name: "rate above bound",
			body: map[string]any{
				"scheduled_start": "2025-03-10T09:00:00Z",
				"scheduled_end":   "2025-03-10T17:00:00Z",
				"rate_multiplier": 15,
			},
			detail: "rate_multiplier",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, router := newTestHandler(t, nil)

			rec := do(t, router, http.MethodPost, "/api/shifts", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.detail)
		})
	}
}

func TestListShifts_DefaultsToCurrentPeriod(t *testing.T) {
	// GIVEN: One shift this week, one last week, one deleted this week
	st := store.NewMemory()
	deleted := workShift("gone", day(11, 9), 8, engine.StatusCompleted)
	deleted.Deleted = true
	seed(t, st,
		workShift("this-week", day(10, 9), 8, engine.StatusCompleted),
		workShift("last-week", day(3, 9), 8, engine.StatusCompleted),
		deleted,
	)
	_, router := newTestHandler(t, st)

	// WHEN: Listing without a range
	rec := do(t, router, http.MethodGet, "/api/shifts", nil)

	// THEN: Only the live shift of the current week is listed
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeAs[ShiftListResponse](t, rec)
	require.Len(t, list.Shifts, 1)
	assert.Equal(t, "this-week", list.Shifts[0].ID)
	assert.True(t, list.From.Equal(day(10, 0)))

	// AND: Explicit ranges and include_deleted widen the result
	rec = do(t, router, http.MethodGet, "/api/shifts?from=2025-03-01&to=2025-03-17&include_deleted=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[ShiftListResponse](t, rec).Shifts, 3)

	rec = do(t, router, http.MethodGet, "/api/shifts?include_deleted=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/shifts?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateShift(t *testing.T) {
	st := store.NewMemory()
	gone := workShift("gone", day(11, 9), 8, engine.StatusCompleted)
	gone.Deleted = true
	seed(t, st, workShift("s-1", day(10, 9), 8, engine.StatusScheduled), gone)
	_, router := newTestHandler(t, st)

	body := map[string]any{
		"scheduled_start": "2025-03-10T09:00:00Z",
		"scheduled_end":   "2025-03-10T17:00:00Z",
		"break_minutes":   60,
		"status":          "completed",
	}

	rec := do(t, router, http.MethodPut, "/api/shifts/s-1", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeAs[ShiftDTO](t, rec)
	assert.Equal(t, "s-1", updated.ID)
	assert.Equal(t, 420, updated.PaidMinutes)

	stored, err := st.Get(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, engine.StatusCompleted, stored.Status)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPut, "/api/shifts/missing", body).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodPut, "/api/shifts/gone", body).Code)
}

func TestDeleteShift_SoftDeletes(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, workShift("s-1", day(10, 9), 8, engine.StatusCompleted))
	_, router := newTestHandler(t, st)

	rec := do(t, router, http.MethodDelete, "/api/shifts/s-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Still readable by ID, flagged deleted
	rec = do(t, router, http.MethodGet, "/api/shifts/s-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeAs[ShiftDTO](t, rec).Deleted)

	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/api/shifts/missing", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/shifts/missing", nil).Code)
}

// =============================================================================
// PERIODS
// =============================================================================

func TestCurrentPeriod(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodGet, "/api/periods/current?at=2025-03-12", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeAs[PeriodDTO](t, rec)
	assert.Equal(t, "weekly", p.Type)
	assert.True(t, p.Start.Equal(day(10, 0)))
	assert.True(t, p.End.Equal(day(17, 0)))
}

func TestListPeriods_Tiles(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodGet, "/api/periods?from=2025-03-10&to=2025-03-31", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	periods := decodeAs[[]PeriodDTO](t, rec)
	require.Len(t, periods, 3)
	for i := 1; i < len(periods); i++ {
		assert.True(t, periods[i].Start.Equal(periods[i-1].End))
	}
}

func summaryFixture(t *testing.T) http.Handler {
	t.Helper()
	st := store.NewMemory()
	cancelled := workShift("cancelled", day(13, 9), 8, engine.StatusCancelled)
	seed(t, st,
		workShift("mon", day(10, 9), 8, engine.StatusCompleted),
		workShift("tue", day(11, 9), 8, engine.StatusCompleted),
		workShift("fri", day(14, 9), 8, engine.StatusScheduled),
		cancelled,
		workShift("prev", day(4, 9), 8, engine.StatusCompleted),
	)
	_, router := newTestHandler(t, st)
	return router
}

func TestPeriodSummary_ActualMode(t *testing.T) {
	// GIVEN: Two completed shifts this week, one last week
	router := summaryFixture(t)

	// WHEN: Summarizing the current week
	rec := do(t, router, http.MethodGet, "/api/periods/summary?at=2025-03-12T18:00:00Z", nil)

	// THEN: Only completed shifts count, doubling last week
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAs[PeriodSummaryResponse](t, rec)
	assert.Equal(t, "actual", resp.Mode)
	assert.Equal(t, 960, resp.Summary.TotalMinutes)
	assert.Equal(t, 2, resp.Summary.ShiftCount)
	assert.Equal(t, 480, resp.PreviousSummary.TotalMinutes)
	assert.True(t, resp.Previous.Start.Equal(day(3, 0)))
	assert.InDelta(t, 1.0, resp.Change, 1e-9)
	require.Len(t, resp.Summary.Breakdown, 1)
	assert.Equal(t, "Regular", resp.Summary.Breakdown[0].Label)
}

func TestPeriodSummary_ScheduledMode(t *testing.T) {
	router := summaryFixture(t)

	rec := do(t, router, http.MethodGet, "/api/periods/summary?at=2025-03-12T18:00:00Z&mode=scheduled", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAs[PeriodSummaryResponse](t, rec)
	assert.Equal(t, 1440, resp.Summary.TotalMinutes)
	assert.InDelta(t, 2.0, resp.Change, 1e-9)
}

func TestPeriodSummary_BadMode(t *testing.T) {
	router := summaryFixture(t)

	rec := do(t, router, http.MethodGet, "/api/periods/summary?mode=planned", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// RATES AND POLICY
// =============================================================================

func TestGetRates(t *testing.T) {
	_, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodGet, "/api/rates?multiplier=1.5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RateDTO{Multiplier: 1.5, Label: "Extra", Valid: true}, decodeAs[RateDTO](t, rec))

	rec = do(t, router, http.MethodGet, "/api/rates?multiplier=12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RateDTO{Multiplier: 12, Label: "12.0x", Valid: false}, decodeAs[RateDTO](t, rec))

	rec = do(t, router, http.MethodGet, "/api/rates", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	table := decodeAs[RateTableResponse](t, rec)
	assert.Equal(t, 10.0, table.UpperBound)
	assert.Len(t, table.Rates, 4)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/rates?multiplier=lots", nil).Code)
}

func TestGetRates_NonFiniteMultiplier(t *testing.T) {
	_, router := newTestHandler(t, nil)

	for _, v := range []string{"Inf", "-Inf", "NaN", "infinity"} {
		rec := do(t, router, http.MethodGet, "/api/rates?multiplier="+v, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code, v)
		assert.Contains(t, rec.Body.String(), "finite", v)
	}
}

func TestUpdatePolicy_SwitchesPeriodsAndPay(t *testing.T) {
	// GIVEN: The default weekly policy and one completed shift
	st := store.NewMemory()
	seed(t, st, workShift("mon", day(10, 9), 8, engine.StatusCompleted))
	h, router := newTestHandler(t, st)

	// WHEN: Replacing it with a monthly policy with a base rate
	rec := do(t, router, http.MethodPut, "/api/policy", map[string]any{
		"period_type":     "monthly",
		"base_rate_cents": 2000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: The ID is kept and periods and pay follow the new policy
	assert.Equal(t, "default", h.Policy().ID)

	rec = do(t, router, http.MethodGet, "/api/periods/current?at=2025-03-12", nil)
	p := decodeAs[PeriodDTO](t, rec)
	assert.Equal(t, "monthly", p.Type)
	assert.True(t, p.Start.Equal(day(1, 0)))

	rec = do(t, router, http.MethodGet, "/api/shifts/mon", nil)
	shift := decodeAs[ShiftDTO](t, rec)
	require.NotNil(t, shift.EstimatedPayCents)
	assert.Equal(t, int64(16000), *shift.EstimatedPayCents)

	rec = do(t, router, http.MethodGet, "/api/policy", nil)
	assert.Contains(t, rec.Body.String(), `"base_rate_cents":2000`)
}

func TestUpdatePolicy_Invalid(t *testing.T) {
	h, router := newTestHandler(t, nil)

	rec := do(t, router, http.MethodPut, "/api/policy", map[string]any{"period_type": "fortnightly"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, engine.PeriodWeekly, h.Policy().PeriodType)
}

func TestUpdatePolicy_PersistsInSQLite(t *testing.T) {
	// GIVEN: A handler backed by SQLite
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	h, router := newTestHandler(t, st)
	require.NotNil(t, h.Policies)

	// WHEN: The policy is replaced
	rec := do(t, router, http.MethodPut, "/api/policy", map[string]any{"period_type": "biweekly", "reference_date": "2025-01-06"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: A fresh handler on the same store picks it up
	restarted := NewHandler(st, engine.DefaultPolicy(), nil)
	require.NoError(t, restarted.LoadPolicy(context.Background()))
	assert.Equal(t, engine.PeriodBiweekly, restarted.Policy().PeriodType)
	require.NotNil(t, restarted.Policy().ReferenceDate)
}

// =============================================================================
// DASHBOARD AND INSIGHTS
// =============================================================================

func TestGetDashboard(t *testing.T) {
	st := store.NewMemory()
	seed(t, st,
		workShift("jan", time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC), 8, engine.StatusCompleted),
		workShift("mar-4", day(4, 9), 8, engine.StatusCompleted),
		workShift("mar-11", day(11, 9), 6, engine.StatusCompleted),
		workShift("mar-12", day(12, 9), 8, engine.StatusCompleted),
	)
	_, router := newTestHandler(t, st)

	rec := do(t, router, http.MethodGet, "/api/dashboard", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeAs[DashboardResponse](t, rec)
	assert.Equal(t, 840, resp.Week.Summary.TotalMinutes)
	assert.Equal(t, 480, resp.Week.Previous.TotalMinutes)
	assert.Equal(t, 1320, resp.Month.Summary.TotalMinutes)
	assert.Equal(t, 1800, resp.Year.Summary.TotalMinutes)
	assert.Equal(t, "week", resp.Week.Window.Scope)

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/api/dashboard?mode=x", nil).Code)
}

func TestGetInsights(t *testing.T) {
	st := store.NewMemory()
	seed(t, st, workShift("mar-11", day(11, 9), 8, engine.StatusCompleted))
	_, router := newTestHandler(t, st)

	rec := do(t, router, http.MethodGet, "/api/insights?at=2025-03-12T18:00:00Z", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeAs[ReportDTO](t, rec)
	assert.Len(t, report.ByWeekday, 7)
	assert.Len(t, report.ByMonthOfYear, 12)
	assert.Equal(t, "Tue", report.ByWeekday[1].Label)
	assert.Equal(t, 480, report.ByWeekday[1].Minutes)
	assert.Equal(t, "low", report.Burnout.Level)
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(store.NewMemory(), nil, logger.NewWriter(&buf, logger.Config{Level: "info", Format: "json"}))
	router := NewRouter(h, nil)

	do(t, router, http.MethodGet, "/api/health", nil)
	do(t, router, http.MethodGet, "/api/shifts/missing", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "request", first["msg"])
	assert.Equal(t, "/api/health", first["path"])
	assert.Equal(t, float64(200), first["status"])
	assert.NotEmpty(t, first["request_id"])

	assert.Contains(t, lines[1], `"status":404`)
}
