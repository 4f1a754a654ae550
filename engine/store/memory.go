// Package store provides ShiftStore implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/warp/shift-engine/engine"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu     sync.RWMutex
	order  []engine.ShiftID
	shifts map[engine.ShiftID]engine.ShiftRecord
}

func NewMemory() *Memory {
	return &Memory{
		shifts: make(map[engine.ShiftID]engine.ShiftRecord),
	}
}

// Save upserts a shift. Replacing keeps the original insertion position.
func (m *Memory) Save(_ context.Context, shift engine.ShiftRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.shifts[shift.ID]; !exists {
		m.order = append(m.order, shift.ID)
	}
	m.shifts[shift.ID] = shift
	return nil
}

func (m *Memory) Get(_ context.Context, id engine.ShiftID) (engine.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.shifts[id]
	if !ok {
		return engine.ShiftRecord{}, engine.ErrShiftNotFound
	}
	return s, nil
}

func (m *Memory) Range(_ context.Context, from, to time.Time, includeDeleted bool) ([]engine.ShiftRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []engine.ShiftRecord
	for _, id := range m.order {
		s := m.shifts[id]
		if s.Deleted && !includeDeleted {
			continue
		}
		if !s.ScheduledStart.Before(from) && s.ScheduledStart.Before(to) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *Memory) SoftDelete(_ context.Context, id engine.ShiftID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.shifts[id]
	if !ok {
		return engine.ErrShiftNotFound
	}
	s.Deleted = true
	m.shifts[id] = s
	return nil
}

// Reset drops every shift. Used when loading demo scenarios.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.order = nil
	m.shifts = make(map[engine.ShiftID]engine.ShiftRecord)
	return nil
}

var _ engine.ShiftStore = (*Memory)(nil)
