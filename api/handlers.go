/*
handlers.go - HTTP API handlers for the shift hours engine

PURPOSE:
  Exposes the pay period and hours engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to the engine,
  insights and dashboard packages.

ENDPOINTS:
  Shifts:
    GET    /api/shifts                 List shifts (?from&to&include_deleted)
    POST   /api/shifts                 Create shift
    GET    /api/shifts/{id}            Get shift with derived values
    PUT    /api/shifts/{id}            Replace shift
    DELETE /api/shifts/{id}            Soft delete

  Periods:
    GET    /api/periods                Periods tiling [from, to)
    GET    /api/periods/current        Pay period containing ?at
    GET    /api/periods/summary        Period totals vs previous (?at&mode)
    GET    /api/periods/closed         Recently closed periods (scheduler.go)

  Rates:
    GET    /api/rates                  Rate table, or one ?multiplier

  Reporting:
    GET    /api/dashboard              Week / month / year cards (?at&mode)
    GET    /api/insights               Full insights report (?at&mode)

  Policy:
    GET    /api/policy                 Active pay policy
    PUT    /api/policy                 Replace pay policy

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: Shift persistence (sqlite, bolt or memory)
  - Policies: Optional policy persistence (sqlite only)
  - PolicyFactory: JSON to PayPolicy conversion
  - The active PayPolicy, swapped atomically on PUT /api/policy

INSTANTS:
  ?at, ?from and ?to accept RFC 3339 instants or YYYY-MM-DD dates. Dates
  are read as local midnight in the policy's timezone. ?at defaults to now.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed JSON, validator failures, engine validation errors
  - 404: Shift not found (soft-deleted shifts included)
  - 500: Store errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/warp/shift-engine/dashboard"
	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/factory"
	"github.com/warp/shift-engine/insights"
	"github.com/warp/shift-engine/logger"
	"github.com/warp/shift-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// PolicyStore persists pay policy definitions.
type PolicyStore interface {
	SavePolicy(ctx context.Context, policy sqlite.PolicyRecord) error
	GetPolicy(ctx context.Context, id string) (*sqlite.PolicyRecord, error)
}

// Resetter clears every shift. Demo scenarios require it.
type Resetter interface {
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         engine.ShiftStore
	Policies      PolicyStore
	PolicyFactory *factory.PolicyFactory
	Log           logger.Logger

	// Now is the clock used when a request has no ?at.
	Now func() time.Time

	// Closer, when set, serves GET /api/periods/closed.
	Closer *PeriodCloseScheduler

	validate *validator.Validate

	mu              sync.RWMutex
	policy          *engine.PayPolicy
	currentScenario string
}

// NewHandler creates a handler. Policies are persisted when the store
// supports it. A nil policy means engine.DefaultPolicy; a nil log discards.
func NewHandler(store engine.ShiftStore, policy *engine.PayPolicy, log logger.Logger) *Handler {
	if policy == nil {
		policy = engine.DefaultPolicy()
	}
	if log == nil {
		log = logger.Noop()
	}
	h := &Handler{
		Store:         store,
		PolicyFactory: factory.NewPolicyFactory(),
		Log:           log,
		Now:           time.Now,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		policy:        policy,
	}
	if ps, ok := store.(PolicyStore); ok {
		h.Policies = ps
	}
	return h
}

// Policy returns the active pay policy.
func (h *Handler) Policy() *engine.PayPolicy {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.policy
}

func (h *Handler) setPolicy(p *engine.PayPolicy) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.policy = p
}

// LoadPolicy replaces the active policy with the stored one of the same ID,
// if any. Stored policies win over configuration so PUT /api/policy survives
// restarts.
func (h *Handler) LoadPolicy(ctx context.Context) error {
	if h.Policies == nil {
		return nil
	}
	record, err := h.Policies.GetPolicy(ctx, h.Policy().ID)
	if err != nil {
		return err
	}
	if record == nil {
		return nil
	}
	policy, err := h.PolicyFactory.ParsePolicy(record.ConfigJSON)
	if err != nil {
		return fmt.Errorf("stored policy %s: %w", record.ID, err)
	}
	h.setPolicy(policy)
	h.Log.Info("loaded stored pay policy", "id", record.ID, "version", record.Version)
	return nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns shifts scheduled in [from, to), defaulting to the
// current pay period.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	policy := h.Policy()
	period := policy.CurrentPeriod(h.Now())

	from, err := h.instantParam(r, "from", period.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from", err)
		return
	}
	to, err := h.instantParam(r, "to", period.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to", err)
		return
	}
	includeDeleted := false
	if v := r.URL.Query().Get("include_deleted"); v != "" {
		if includeDeleted, err = strconv.ParseBool(v); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid include_deleted", err)
			return
		}
	}

	shifts, err := h.Store.Range(r.Context(), from, to, includeDeleted)
	if err != nil {
		h.internalError(w, r, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(engine.Enrich(s, policy.Rates, policy.BaseRate))
	}
	writeJSON(w, http.StatusOK, ShiftListResponse{From: from, To: to, Shifts: dtos})
}

// GetShift returns one shift with its derived values.
func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift, err := h.Store.Get(r.Context(), engine.ShiftID(chi.URLParam(r, "id")))
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	policy := h.Policy()
	writeJSON(w, http.StatusOK, toShiftDTO(engine.Enrich(shift, policy.Rates, policy.BaseRate)))
}

// CreateShift validates and stores a new shift under a fresh ID.
func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req ShiftRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.saveShift(w, r, req.toShift(engine.ShiftID(uuid.NewString())), http.StatusCreated)
}

// UpdateShift replaces an existing, non-deleted shift.
func (h *Handler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	id := engine.ShiftID(chi.URLParam(r, "id"))

	var req ShiftRequest
	if !h.decode(w, r, &req) {
		return
	}

	existing, err := h.Store.Get(r.Context(), id)
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if existing.Deleted {
		writeError(w, http.StatusNotFound, "Shift not found", engine.ErrShiftNotFound)
		return
	}
	h.saveShift(w, r, req.toShift(id), http.StatusOK)
}

func (h *Handler) saveShift(w http.ResponseWriter, r *http.Request, shift engine.ShiftRecord, status int) {
	policy := h.Policy()
	if err := engine.Validate(shift, policy.Rates); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid shift", err)
		return
	}
	if err := h.Store.Save(r.Context(), shift); err != nil {
		h.internalError(w, r, "Failed to save shift", err)
		return
	}
	h.Log.Debug("shift saved", "id", shift.ID, "status", shift.Status)
	writeJSON(w, status, toShiftDTO(engine.Enrich(shift, policy.Rates, policy.BaseRate)))
}

// DeleteShift soft-deletes a shift. It stays readable by ID.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := engine.ShiftID(chi.URLParam(r, "id"))
	if err := h.Store.SoftDelete(r.Context(), id); err != nil {
		h.storeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": string(id)})
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns the policy's periods intersecting [from, to).
// Defaults to the current year.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	policy := h.Policy()
	now := h.Now()
	yearStart := policy.Calendar.StartOfYear(now)

	from, err := h.instantParam(r, "from", yearStart)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid from", err)
		return
	}
	to, err := h.instantParam(r, "to", yearStart.AddDate(1, 0, 0))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid to", err)
		return
	}

	periods := policy.Resolver().Periods(from, to, policy.PeriodType)
	dtos := make([]PeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = toPeriodDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CurrentPeriod returns the pay period containing ?at.
func (h *Handler) CurrentPeriod(w http.ResponseWriter, r *http.Request) {
	at, err := h.instantParam(r, "at", h.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(h.Policy().CurrentPeriod(at)))
}

// PeriodSummary summarizes the period containing ?at and compares it with
// the previous period.
func (h *Handler) PeriodSummary(w http.ResponseWriter, r *http.Request) {
	at, err := h.instantParam(r, "at", h.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid at", err)
		return
	}
	mode, err := engine.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid mode", err)
		return
	}

	policy := h.Policy()
	period := policy.CurrentPeriod(at)
	previous := policy.Resolver().Previous(period)

	shifts, err := h.Store.Range(r.Context(), previous.Start, period.End, false)
	if err != nil {
		h.internalError(w, r, "Failed to load shifts", err)
		return
	}

	agg := policy.Aggregator()
	current := agg.SummarizeMode(engine.Assign(shifts, period, engine.AssignOptions{}), mode)
	before := agg.SummarizeMode(engine.Assign(shifts, previous, engine.AssignOptions{}), mode)

	writeJSON(w, http.StatusOK, PeriodSummaryResponse{
		Mode:            string(mode),
		Period:          toPeriodDTO(period),
		Summary:         toSummaryDTO(current),
		Previous:        toPeriodDTO(previous),
		PreviousSummary: toSummaryDTO(before),
		Change:          engine.ComparedToPrevious(current, before),
	})
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// GetRates returns the rate table, or the label and validity of ?multiplier.
func (h *Handler) GetRates(w http.ResponseWriter, r *http.Request) {
	rates := h.Policy().Rates

	if v := r.URL.Query().Get("multiplier"); v != "" {
		m, err := strconv.ParseFloat(v, 64)
		if err == nil && (math.IsNaN(m) || math.IsInf(m, 0)) {
			err = fmt.Errorf("multiplier %q is not a finite number", v)
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid multiplier", err)
			return
		}
		writeJSON(w, http.StatusOK, RateDTO{Multiplier: m, Label: rates.Label(m), Valid: rates.IsValid(m)})
		return
	}

	dtos := make([]RateDTO, len(rates.Entries))
	for i, e := range rates.Entries {
		dtos[i] = RateDTO{Multiplier: e.Multiplier, Label: e.Label, Valid: rates.IsValid(e.Multiplier)}
	}
	writeJSON(w, http.StatusOK, RateTableResponse{UpperBound: rates.UpperBound, Rates: dtos})
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// dashboardFor builds a dashboard service for the active policy and ?mode.
func (h *Handler) dashboardFor(r *http.Request) (*dashboard.Service, time.Time, error) {
	at, err := h.instantParam(r, "at", h.Now())
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("at: %w", err)
	}
	mode, err := engine.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		return nil, time.Time{}, err
	}
	e := insights.New(h.Policy())
	e.Mode = mode
	return dashboard.NewService(h.Store, e, h.Log), at, nil
}

// GetDashboard returns the week, month and year cards.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	svc, at, err := h.dashboardFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	snap, err := svc.Load(r.Context(), at)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			// Client went away; nothing useful to write.
			return
		}
		h.internalError(w, r, "Failed to load dashboard", err)
		return
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		At:    snap.At,
		Week:  toMetricsDTO(snap.Week),
		Month: toMetricsDTO(snap.Month),
		Year:  toMetricsDTO(snap.Year),
	})
}

// GetInsights returns histograms, risk scores and narrative insights.
func (h *Handler) GetInsights(w http.ResponseWriter, r *http.Request) {
	svc, at, err := h.dashboardFor(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query", err)
		return
	}

	report, err := svc.Report(r.Context(), at)
	if err != nil {
		h.internalError(w, r, "Failed to build insights", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// =============================================================================
// POLICY HANDLERS
// =============================================================================

// GetPolicy returns the active pay policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.PolicyFactory.ToJSON(h.Policy()))
}

// UpdatePolicy replaces the active pay policy. Unset fields take defaults.
func (h *Handler) UpdatePolicy(w http.ResponseWriter, r *http.Request) {
	var req factory.PayPolicyJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ID == "" {
		req.ID = h.Policy().ID
	}

	// Validate by parsing
	policy, err := h.PolicyFactory.FromJSON(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid policy configuration", err)
		return
	}

	stored := h.PolicyFactory.ToJSON(policy)
	if h.Policies != nil {
		configJSON, err := json.Marshal(stored)
		if err != nil {
			h.internalError(w, r, "Failed to encode policy", err)
			return
		}
		record := sqlite.PolicyRecord{ID: policy.ID, Name: policy.Name, ConfigJSON: string(configJSON)}
		if err := h.Policies.SavePolicy(r.Context(), record); err != nil {
			h.internalError(w, r, "Failed to save policy", err)
			return
		}
	}

	h.setPolicy(policy)
	h.Log.Info("pay policy replaced", "id", policy.ID, "period_type", policy.PeriodType)
	writeJSON(w, http.StatusOK, stored)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// decode reads and validates a JSON body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeError(w, http.StatusBadRequest, "Invalid request", err)
			return false
		}
		fields := make([]FieldError, len(verrs))
		for i, fe := range verrs {
			fields[i] = FieldError{Field: fe.Field(), Rule: fe.Tag()}
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "Validation failed",
			Code:    "validation",
			Details: fields,
		})
		return false
	}
	return true
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	if engine.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Shift not found", err)
		return
	}
	h.internalError(w, r, "Store error", err)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request, message string, err error) {
	h.Log.Error(message, "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, message, err)
}

// instantParam parses an RFC 3339 instant or a YYYY-MM-DD date in the
// policy's timezone. Missing parameters yield def.
func (h *Handler) instantParam(r *http.Request, name string, def time.Time) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	loc := h.Policy().Calendar.Location
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(factory.DateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: want RFC 3339 or YYYY-MM-DD, got %q", name, v)
	}
	return t, nil
}
