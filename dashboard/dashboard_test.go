package dashboard_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/dashboard"
	"github.com/warp/shift-engine/engine"
	"github.com/warp/shift-engine/engine/store"
	"github.com/warp/shift-engine/insights"
)

func completed(month time.Month, day, hours int) engine.ShiftRecord {
	start := time.Date(2025, month, day, 9, 0, 0, 0, time.UTC)
	return engine.ShiftRecord{
		ID:             engine.ShiftID(start.Format("2006-01-02")),
		ScheduledStart: start,
		ScheduledEnd:   start.Add(time.Duration(hours) * time.Hour),
		RateMultiplier: 1.0,
		Status:         engine.StatusCompleted,
	}
}

func sample() []engine.ShiftRecord {
	return []engine.ShiftRecord{
		completed(time.January, 15, 8),
		completed(time.March, 4, 8),
		completed(time.March, 11, 6),
		completed(time.March, 12, 8),
	}
}

func newService(t *testing.T, shifts []engine.ShiftRecord) *dashboard.Service {
	t.Helper()
	mem := store.NewMemory()
	for _, s := range shifts {
		require.NoError(t, mem.Save(context.Background(), s))
	}
	return dashboard.NewService(mem, insights.New(engine.DefaultPolicy()), nil)
}

func TestRefresh_MatchesSequentialMetrics(t *testing.T) {
	// GIVEN: The same snapshot computed in parallel and sequentially
	svc := newService(t, nil)
	at := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)

	snap, err := svc.Refresh(context.Background(), sample(), at)
	require.NoError(t, err)

	// THEN: Each slot holds its own scope's metrics
	e := svc.Insights
	assert.Equal(t, e.Weekly(sample(), at), snap.Week)
	assert.Equal(t, e.Monthly(sample(), at), snap.Month)
	assert.Equal(t, e.Yearly(sample(), at), snap.Year)

	assert.Equal(t, 840, snap.Week.Summary.TotalMinutes)
	assert.Equal(t, 1320, snap.Month.Summary.TotalMinutes)
	assert.Equal(t, 1800, snap.Year.Summary.TotalMinutes)
}

func TestRefresh_CancelledContext(t *testing.T) {
	svc := newService(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Refresh(ctx, sample(), time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))

	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRefresh_ConcurrentCallers(t *testing.T) {
	svc := newService(t, nil)
	at := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	shifts := sample()

	results := make(chan dashboard.Snapshot, 8)
	for i := 0; i < cap(results); i++ {
		go func() {
			snap, err := svc.Refresh(context.Background(), shifts, at)
			assert.NoError(t, err)
			results <- snap
		}()
	}

	for i := 0; i < cap(results); i++ {
		snap := <-results
		assert.Equal(t, 1800, snap.Year.Summary.TotalMinutes)
	}
}

func TestLoad_ReadsFromStore(t *testing.T) {
	deleted := completed(time.March, 13, 8)
	deleted.Deleted = true
	svc := newService(t, append(sample(), deleted))

	snap, err := svc.Load(context.Background(), time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 840, snap.Week.Summary.TotalMinutes)
	assert.Equal(t, 480, snap.Week.Previous.TotalMinutes)
}

func TestReport_ReadsFromStore(t *testing.T) {
	svc := newService(t, sample())

	report, err := svc.Report(context.Background(), time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 3, report.Month.Summary.ShiftCount)
	assert.Len(t, report.ByMonthOfYear, 12)
}

type failingStore struct{ engine.ShiftStore }

func (failingStore) Range(context.Context, time.Time, time.Time, bool) ([]engine.ShiftRecord, error) {
	return nil, errors.New("disk on fire")
}

func TestLoad_StoreError(t *testing.T) {
	svc := dashboard.NewService(failingStore{}, insights.New(engine.DefaultPolicy()), nil)

	_, err := svc.Load(context.Background(), time.Now())

	assert.ErrorContains(t, err, "disk on fire")
}
