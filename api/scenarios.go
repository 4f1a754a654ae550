/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	shifts for demos. Each scenario installs a pay policy and a set of
	shifts positioned relative to the current time, so the dashboard always
	has something to show.

AVAILABLE SCENARIOS:

	regular-week:  Two weeks of 9-to-5 weekday shifts, weekly pay
	night-shifts:  Overnight shifts crossing midnight, biweekly pay
	mixed-rates:   Regular, extra, bank holiday and custom rates plus a
	               cancelled shift
	burnout:       Thirteen consecutive twelve-hour days, monthly pay

HOW SCENARIOS WORK:
 1. Reset the store (clear all shifts)
 2. Install the scenario's pay policy via the factory
 3. Generate shifts around Handler.Now in the policy's calendar
 4. Shifts already over are completed (with clock times), the one in
    progress is in_progress, later ones are scheduled

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "night-shifts"}

ADDING NEW SCENARIOS:
 1. Add to 'scenarios' slice with ID, name, description
 2. Give it a policy preset and a shift generator

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler, policy persistence
  - factory/policy.go: Policy presets
*/
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/store/sqlite"
)

// ErrUnknownScenario is returned for an unrecognized scenario ID.
var ErrUnknownScenario = errors.New("unknown scenario")

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

type scenario struct {
	ScenarioDTO
	policy func(cal engine.Calendar, now time.Time) string
	shifts func(cal engine.Calendar, now time.Time) []engine.ShiftRecord
}

var scenarios = []scenario{
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "regular-week",
			Name:        "Regular Week",
			Description: "Weekday 9-to-5 shifts with a lunch break, last week and this week",
		},
		policy: func(engine.Calendar, time.Time) string {
			return factory.StandardPolicyJSON("standard", "Standard Weekly", 1500)
		},
		shifts: regularWeekShifts,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "night-shifts",
			Name:        "Night Shifts",
			Description: "Overnight shifts at the overtime bracket rate, paid biweekly",
		},
		policy: func(cal engine.Calendar, now time.Time) string {
			anchor := cal.AddDays(cal.StartOfWeek(now), -7)
			return factory.BiweeklyPolicyJSON("biweekly", "Biweekly Nights", anchor.Format(factory.DateLayout), 1800)
		},
		shifts: nightShifts,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "mixed-rates",
			Name:        "Mixed Rates",
			Description: "Regular, extra, bank holiday and custom rate shifts with one cancellation",
		},
		policy: func(engine.Calendar, time.Time) string {
			return factory.StandardPolicyJSON("standard", "Standard Weekly", 1500)
		},
		shifts: mixedRateShifts,
	},
	{
		ScenarioDTO: ScenarioDTO{
			ID:          "burnout",
			Name:        "Burnout Risk",
			Description: "Thirteen consecutive twelve-hour days, half of them at the extra rate",
		},
		policy: func(engine.Calendar, time.Time) string {
			return factory.MonthlyPolicyJSON("monthly", "Monthly")
		},
		shifts: burnoutShifts,
	},
}

func findScenario(id string) (scenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return scenario{}, false
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = s.ScenarioDTO
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	current := h.currentScenario
	h.mu.RUnlock()

	s, ok := findScenario(current)
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, s.ScenarioDTO)
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.LoadScenarioByID(r.Context(), req.ScenarioID)
	switch {
	case errors.Is(err, ErrUnknownScenario):
		writeError(w, http.StatusBadRequest, "Unknown scenario", err)
		return
	case errors.Is(err, errors.ErrUnsupported):
		writeError(w, http.StatusNotImplemented, "Store cannot be reset", err)
		return
	case err != nil:
		h.internalError(w, r, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetDatabase clears all shifts.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		if errors.Is(err, errors.ErrUnsupported) {
			writeError(w, http.StatusNotImplemented, "Store cannot be reset", err)
			return
		}
		h.internalError(w, r, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	resetter, ok := h.Store.(Resetter)
	if !ok {
		return fmt.Errorf("reset: %w", errors.ErrUnsupported)
	}
	if err := resetter.Reset(ctx); err != nil {
		return err
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	return nil
}

// LoadScenarioByID resets the store, installs the scenario's policy and
// seeds its shifts.
func (h *Handler) LoadScenarioByID(ctx context.Context, id string) error {
	s, ok := findScenario(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScenario, id)
	}
	if err := h.reset(ctx); err != nil {
		return err
	}

	// Presets are UTC, Monday-start.
	now := h.Now()
	policy, err := h.createPolicyFromJSON(ctx, s.policy(engine.DefaultCalendar(), now))
	if err != nil {
		return err
	}

	shifts := s.shifts(policy.Calendar, now)
	for _, shift := range shifts {
		if err := h.Store.Save(ctx, shift); err != nil {
			return fmt.Errorf("seed shift %s: %w", shift.ID, err)
		}
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()

	h.Log.Info("scenario loaded", "scenario", id, "shifts", len(shifts), "policy", policy.ID)
	return nil
}

// createPolicyFromJSON parses, persists and activates a policy.
func (h *Handler) createPolicyFromJSON(ctx context.Context, jsonStr string) (*engine.PayPolicy, error) {
	policy, err := h.PolicyFactory.ParsePolicy(jsonStr)
	if err != nil {
		return nil, err
	}
	if h.Policies != nil {
		record := sqlite.PolicyRecord{ID: policy.ID, Name: policy.Name, ConfigJSON: jsonStr}
		if err := h.Policies.SavePolicy(ctx, record); err != nil {
			return nil, err
		}
	}
	h.setPolicy(policy)
	return policy, nil
}

// =============================================================================
// SHIFT GENERATORS
// =============================================================================

// shiftAt builds a shift whose status follows now: over shifts are
// completed with clock times, the running one is in progress, the rest
// scheduled. lateMinutes offsets the clock-in.
func shiftAt(id string, start time.Time, length time.Duration, breakMin int, rate float64, lateMinutes int, now time.Time) engine.ShiftRecord {
	end := start.Add(length)
	s := engine.ShiftRecord{
		ID:             engine.ShiftID(id),
		ScheduledStart: start,
		ScheduledEnd:   end,
		BreakMinutes:   breakMin,
		RateMultiplier: rate,
		Status:         engine.StatusScheduled,
	}
	switch {
	case !end.After(now):
		clockIn := start.Add(time.Duration(lateMinutes) * time.Minute)
		clockOut := end
		s.ActualStart, s.ActualEnd = &clockIn, &clockOut
		s.Status = engine.StatusCompleted
	case !start.After(now):
		s.Status = engine.StatusInProgress
	}
	return s
}

// at returns hour:min on the given local midnight.
func at(day time.Time, hour, min int) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, min, 0, 0, day.Location())
}

func regularWeekShifts(cal engine.Calendar, now time.Time) []engine.ShiftRecord {
	lastWeek := cal.AddDays(cal.StartOfWeek(now), -7)

	var shifts []engine.ShiftRecord
	for week := 0; week < 2; week++ {
		for d := 0; d < 5; d++ {
			day := cal.AddDays(lastWeek, week*7+d)
			id := fmt.Sprintf("regular-%s", day.Format("20060102"))
			shifts = append(shifts, shiftAt(id, at(day, 9, 0), 8*time.Hour+30*time.Minute, 30, 1.0, d%3, now))
		}
	}
	return shifts
}

func nightShifts(cal engine.Calendar, now time.Time) []engine.ShiftRecord {
	lastWeek := cal.AddDays(cal.StartOfWeek(now), -7)

	var shifts []engine.ShiftRecord
	for week := 0; week < 2; week++ {
		for d := 0; d < 4; d++ {
			day := cal.AddDays(lastWeek, week*7+d)
			id := fmt.Sprintf("night-%s", day.Format("20060102"))
			shifts = append(shifts, shiftAt(id, at(day, 22, 0), 8*time.Hour, 45, 1.3, 0, now))
		}
	}
	return shifts
}

func mixedRateShifts(cal engine.Calendar, now time.Time) []engine.ShiftRecord {
	week := cal.StartOfWeek(now)
	lastWeek := cal.AddDays(week, -7)
	day := func(base time.Time, n int) time.Time { return cal.AddDays(base, n) }

	shifts := []engine.ShiftRecord{
		shiftAt("mixed-prev-1", at(day(lastWeek, 0), 9, 0), 8*time.Hour, 30, 1.0, 0, now),
		shiftAt("mixed-prev-2", at(day(lastWeek, 2), 9, 0), 8*time.Hour, 30, 1.0, 0, now),
		shiftAt("mixed-prev-3", at(day(lastWeek, 4), 9, 0), 8*time.Hour, 30, 1.5, 0, now),

		shiftAt("mixed-regular", at(day(week, 0), 9, 0), 8*time.Hour, 30, 1.0, 5, now),
		shiftAt("mixed-extra", at(day(week, 1), 14, 0), 6*time.Hour, 0, 1.5, 0, now),
		shiftAt("mixed-holiday", at(day(week, 2), 8, 0), 8*time.Hour, 60, 2.0, 0, now),
		shiftAt("mixed-cancelled", at(day(week, 3), 9, 0), 8*time.Hour, 30, 1.0, 0, now),
		shiftAt("mixed-weekend", at(day(week, 5), 10, 0), 5*time.Hour, 0, 1.25, 0, now),
	}

	shifts[6].Status = engine.StatusCancelled
	shifts[6].ActualStart, shifts[6].ActualEnd = nil, nil
	shifts[7].RateLabel = "Weekend"
	return shifts
}

func burnoutShifts(cal engine.Calendar, now time.Time) []engine.ShiftRecord {
	today := cal.StartOfDay(now)

	var shifts []engine.ShiftRecord
	for d := -12; d <= 0; d++ {
		day := cal.AddDays(today, d)
		rate := 1.0
		if d%2 == 0 {
			rate = 1.5
		}
		id := fmt.Sprintf("burnout-%s", day.Format("20060102"))
		shifts = append(shifts, shiftAt(id, at(day, 7, 0), 12*time.Hour, 30, rate, 0, now))
	}
	return shifts
}
