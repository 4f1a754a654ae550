/*
scheduler.go - Automated pay period close scheduler

PURPOSE:
  Periodically checks whether the active policy's pay period has rolled
  over and, for every period that ended since the last check, records a
  closing summary (actual mode) and logs it.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - The first check only remembers the current period; nothing closes
  - Each period is closed once; a change to the policy ID, period type,
    reference date or calendar restarts tracking
  - Keeps the most recent closings in memory for GET /api/periods/closed

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 minute)
  - Keep: How many closings to retain (default: 12)

USAGE:
  scheduler := NewPeriodCloseScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: PeriodSummary endpoint (same computation, on demand)
  - engine/period.go: Resolver.Next
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/warp/shift-engine/engine"
)

// ClosedPeriod is the record written when a pay period ends.
type ClosedPeriod struct {
	PolicyID string
	Period   engine.PayPeriod
	Summary  engine.Summary
	ClosedAt time.Time
}

// PeriodCloseScheduler closes pay periods as they end.
type PeriodCloseScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Keep          int

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	tracking string
	open     *engine.PayPeriod
	closed   []ClosedPeriod
}

// NewPeriodCloseScheduler creates a new scheduler.
func NewPeriodCloseScheduler(handler *Handler) *PeriodCloseScheduler {
	return &PeriodCloseScheduler{
		Handler:       handler,
		CheckInterval: time.Minute,
		Keep:          12,
	}
}

// Start begins the scheduler.
func (ps *PeriodCloseScheduler) Start() {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.ticker != nil {
		return
	}
	ps.ticker = time.NewTicker(ps.CheckInterval)
	ps.stop = make(chan struct{})
	ps.wg.Add(1)

	go ps.run(ps.ticker, ps.stop)

	ps.Handler.Log.Info("period close scheduler started", "interval", ps.CheckInterval)
}

// Stop stops the scheduler and waits for an in-flight check.
func (ps *PeriodCloseScheduler) Stop() {
	ps.mu.Lock()
	if ps.ticker == nil {
		ps.mu.Unlock()
		return
	}
	ps.ticker.Stop()
	close(ps.stop)
	ps.ticker = nil
	ps.mu.Unlock()

	ps.wg.Wait()
	ps.Handler.Log.Info("period close scheduler stopped")
}

func (ps *PeriodCloseScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer ps.wg.Done()

	// Run immediately on start
	ps.Check(context.Background(), ps.Handler.Now())

	for {
		select {
		case <-ticker.C:
			ps.Check(context.Background(), ps.Handler.Now())
		case <-stop:
			return
		}
	}
}

// Check closes every period that ended at or before now. It returns the
// periods closed by this call.
func (ps *PeriodCloseScheduler) Check(ctx context.Context, now time.Time) []ClosedPeriod {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	log := ps.Handler.Log
	policy := ps.Handler.Policy()
	current := policy.CurrentPeriod(now)

	if key := trackingKey(policy); ps.open == nil || ps.tracking != key {
		ps.tracking = key
		ps.open = &current
		return nil
	}

	resolver := policy.Resolver()
	var done []ClosedPeriod
	for p := *ps.open; !now.Before(p.End); p = resolver.Next(p) {
		shifts, err := ps.Handler.Store.Range(ctx, p.Start, p.End, false)
		if err != nil {
			// Retry on the next tick
			log.Error("period close failed", "period", p.String(), "error", err)
			break
		}
		c := ClosedPeriod{
			PolicyID: policy.ID,
			Period:   p,
			Summary:  policy.Aggregator().SummarizeActual(shifts),
			ClosedAt: now,
		}
		done = append(done, c)
		next := resolver.Next(p)
		ps.open = &next

		log.Info("pay period closed",
			"policy", policy.ID,
			"period", p.String(),
			"shifts", c.Summary.ShiftCount,
			"hours", c.Summary.TotalHours(),
		)
	}

	ps.closed = append(ps.closed, done...)
	if ps.Keep > 0 && len(ps.closed) > ps.Keep {
		ps.closed = ps.closed[len(ps.closed)-ps.Keep:]
	}
	return done
}

// Closed returns the retained closings, most recent last.
func (ps *PeriodCloseScheduler) Closed() []ClosedPeriod {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]ClosedPeriod(nil), ps.closed...)
}

// ListClosedPeriods serves GET /api/periods/closed.
func (ps *PeriodCloseScheduler) ListClosedPeriods(w http.ResponseWriter, r *http.Request) {
	closed := ps.Closed()
	dtos := make([]ClosedPeriodDTO, len(closed))
	for i, c := range closed {
		dtos[i] = ClosedPeriodDTO{
			PolicyID: c.PolicyID,
			Period:   toPeriodDTO(c.Period),
			Summary:  toSummaryDTO(c.Summary),
			ClosedAt: c.ClosedAt,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// trackingKey identifies the period boundaries a policy produces.
func trackingKey(p *engine.PayPolicy) string {
	ref := ""
	if p.ReferenceDate != nil {
		ref = p.ReferenceDate.UTC().Format(time.RFC3339)
	}
	loc := time.UTC
	if p.Calendar.Location != nil {
		loc = p.Calendar.Location
	}
	return fmt.Sprintf("%s|%s|%s|%s|%s", p.ID, p.PeriodType, ref, loc, p.Calendar.WeekStart)
}
