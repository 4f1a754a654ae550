/*
store.go - Persistence interface for shift records

PURPOSE:
  Defines the boundary between the engine's callers and the database.
  The engine never imports a store; the API and dashboard load shifts
  through this interface and hand plain slices to the engine.

CONTRACT:
  - Save upserts a record by ID
  - Range returns shifts whose ScheduledStart is in [from, to), in
    insertion order, skipping soft-deleted rows unless includeDeleted
  - SoftDelete flags a row; rows are never physically removed

IMPLEMENTATIONS:
  - engine/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go: SQLite
  - store/bolt/bolt.go: bbolt embedded key/value file

SEE ALSO:
  - period.go: Assign() applies the same period filter in memory
*/
package engine

import (
	"context"
	"time"
)

// ShiftStore persists shift records.
type ShiftStore interface {
	// Save inserts or replaces a shift by ID.
	Save(ctx context.Context, shift ShiftRecord) error

	// Get returns one shift, or ErrShiftNotFound.
	Get(ctx context.Context, id ShiftID) (ShiftRecord, error)

	// Range returns shifts with ScheduledStart in [from, to).
	Range(ctx context.Context, from, to time.Time, includeDeleted bool) ([]ShiftRecord, error)

	// SoftDelete marks a shift deleted, or returns ErrShiftNotFound.
	SoftDelete(ctx context.Context, id ShiftID) error
}
