/*
Package dashboard computes the week / month / year rollups shown together.

PURPOSE:
  The three rollups read the same shift snapshot and are independent of each
  other, so Refresh computes them in parallel. Each goroutine writes only its
  own slot of the Snapshot; errgroup.Wait is the only synchronization.

CANCELLATION:
  Cooperative. A refresh superseded by a newer request (cancelled context)
  returns ctx.Err() instead of a Snapshot, even if every rollup finished.
  The rollups themselves are short and have no cancellation points.

SEE ALSO:
  - insights/windows.go: Metrics for one window
  - api/handlers.go: GET /api/dashboard
*/
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/insights"
	"github.com/warp/shift-engine/logger"
)

// Snapshot is the combined result of one refresh.
type Snapshot struct {
	At    time.Time
	Week  insights.Metrics
	Month insights.Metrics
	Year  insights.Metrics
}

// Service loads shifts from a store and refreshes dashboards.
type Service struct {
	Store    engine.ShiftStore
	Insights insights.Engine
	Log      logger.Logger
}

// NewService wires a Service. A nil log discards output.
func NewService(store engine.ShiftStore, e insights.Engine, log logger.Logger) *Service {
	if log == nil {
		log = logger.Noop()
	}
	return &Service{Store: store, Insights: e, Log: log}
}

// Refresh computes the three rollups for at in parallel.
func (s *Service) Refresh(ctx context.Context, shifts []engine.ShiftRecord, at time.Time) (Snapshot, error) {
	snap := Snapshot{At: at}
	scopes := []struct {
		scope insights.Scope
		slot  *insights.Metrics
	}{
		{insights.ScopeWeek, &snap.Week},
		{insights.ScopeMonth, &snap.Month},
		{insights.ScopeYear, &snap.Year},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, sc := range scopes {
		sc := sc
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			*sc.slot = s.Insights.Metrics(shifts, s.Insights.Window(sc.scope, at))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if err := ctx.Err(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Load fetches every shift needed for at's rollups (the current and the
// previous year) and refreshes.
func (s *Service) Load(ctx context.Context, at time.Time) (Snapshot, error) {
	shifts, err := s.shiftsFor(ctx, at)
	if err != nil {
		return Snapshot{}, err
	}

	start := time.Now()
	snap, err := s.Refresh(ctx, shifts, at)
	if err != nil {
		return Snapshot{}, err
	}
	s.Log.Debug("dashboard refreshed", "shifts", len(shifts), "took", time.Since(start))
	return snap, nil
}

// Report fetches the same range as Load and builds a full insights report.
func (s *Service) Report(ctx context.Context, at time.Time) (insights.Report, error) {
	shifts, err := s.shiftsFor(ctx, at)
	if err != nil {
		return insights.Report{}, err
	}
	return s.Insights.Report(shifts, at), nil
}

func (s *Service) shiftsFor(ctx context.Context, at time.Time) ([]engine.ShiftRecord, error) {
	year := s.Insights.Window(insights.ScopeYear, at)
	from := s.Insights.Previous(year).Start

	// The previous year covers every comparison window and the burnout lookback.
	shifts, err := s.Store.Range(ctx, from, year.End, false)
	if err != nil {
		return nil, fmt.Errorf("load shifts: %w", err)
	}
	return shifts, nil
}
