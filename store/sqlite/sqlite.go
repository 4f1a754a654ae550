/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements engine.ShiftStore, plus persistence of pay policy definitions,
  using SQLite. The same SQL works on PostgreSQL with minor dialect changes.

SOFT DELETE:
  Shifts are never physically removed. SoftDelete sets deleted = 1 and
  Range skips those rows unless asked to include them.

KEY TABLES:
  shifts:       One row per shift. seq preserves insertion order and is
                kept when a shift is replaced.
  pay_policies: Pay policy JSON (factory schema), versioned on every save

INSTANTS:
  Stored as UTC text with fixed nanosecond width, so string comparison in
  SQL orders the same way as time comparison. Loaded values are UTC.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened in WAL mode so
  readers don't block the single writer.

USAGE:
  store, err := sqlite.New("./shifts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). Use ":memory:" in tests.

SEE ALSO:
  - engine/store.go: Interface definition
  - engine/store/memory.go: In-memory implementation for testing
  - store/bolt/bolt.go: bbolt implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/shift-engine/engine"
)

// timeLayout sorts lexically in the same order as the instants it encodes.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store implements engine.ShiftStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		scheduled_start TEXT NOT NULL,
		scheduled_end TEXT NOT NULL,
		actual_start TEXT,
		actual_end TEXT,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		rate_multiplier REAL NOT NULL,
		rate_label TEXT,
		status TEXT NOT NULL,
		deleted INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);

	-- Range queries by period
	CREATE INDEX IF NOT EXISTS idx_shifts_scheduled_start
		ON shifts(scheduled_start);

	CREATE TABLE IF NOT EXISTS pay_policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SHIFT STORE (engine.ShiftStore interface)
// =============================================================================

const shiftColumns = `id, scheduled_start, scheduled_end, actual_start, actual_end,
	break_minutes, rate_multiplier, rate_label, status, deleted`

// Save inserts a shift or replaces it in place.
func (s *Store) Save(ctx context.Context, shift engine.ShiftRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO shifts (` + shiftColumns + `, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			scheduled_start = excluded.scheduled_start,
			scheduled_end = excluded.scheduled_end,
			actual_start = excluded.actual_start,
			actual_end = excluded.actual_end,
			break_minutes = excluded.break_minutes,
			rate_multiplier = excluded.rate_multiplier,
			rate_label = excluded.rate_label,
			status = excluded.status,
			deleted = excluded.deleted,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		string(shift.ID),
		formatTime(shift.ScheduledStart),
		formatTime(shift.ScheduledEnd),
		nullTime(shift.ActualStart),
		nullTime(shift.ActualEnd),
		shift.BreakMinutes,
		shift.RateMultiplier,
		nullString(shift.RateLabel),
		string(shift.Status),
		shift.Deleted,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to save shift %s: %w", shift.ID, err)
	}
	return nil
}

// Get returns one shift by ID, including soft-deleted ones.
func (s *Store) Get(ctx context.Context, id engine.ShiftID) (engine.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT "+shiftColumns+" FROM shifts WHERE id = ?", string(id))
	shift, err := scanShift(row)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ShiftRecord{}, engine.ErrShiftNotFound
	}
	return shift, err
}

// Range returns shifts with scheduled_start in [from, to), in insertion order.
func (s *Store) Range(ctx context.Context, from, to time.Time, includeDeleted bool) ([]engine.ShiftRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE scheduled_start >= ? AND scheduled_start < ?
		  AND (deleted = 0 OR ?)
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, formatTime(from), formatTime(to), includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	var shifts []engine.ShiftRecord
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

// SoftDelete flags a shift as deleted.
func (s *Store) SoftDelete(ctx context.Context, id engine.ShiftID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx,
		"UPDATE shifts SET deleted = 1, updated_at = ? WHERE id = ?",
		formatTime(time.Now()), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to delete shift %s: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrShiftNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanShift(row scanner) (engine.ShiftRecord, error) {
	var (
		shift          engine.ShiftRecord
		id             string
		scheduledStart string
		scheduledEnd   string
		actualStart    sql.NullString
		actualEnd      sql.NullString
		rateLabel      sql.NullString
		status         string
	)

	err := row.Scan(
		&id, &scheduledStart, &scheduledEnd, &actualStart, &actualEnd,
		&shift.BreakMinutes, &shift.RateMultiplier, &rateLabel, &status, &shift.Deleted,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return shift, err
	}
	if err != nil {
		return shift, fmt.Errorf("failed to scan shift: %w", err)
	}

	shift.ID = engine.ShiftID(id)
	shift.Status = engine.Status(status)
	shift.RateLabel = rateLabel.String
	if shift.ScheduledStart, err = time.Parse(timeLayout, scheduledStart); err != nil {
		return shift, fmt.Errorf("shift %s: scheduled_start: %w", id, err)
	}
	if shift.ScheduledEnd, err = time.Parse(timeLayout, scheduledEnd); err != nil {
		return shift, fmt.Errorf("shift %s: scheduled_end: %w", id, err)
	}
	if shift.ActualStart, err = parseNullTime(actualStart); err != nil {
		return shift, fmt.Errorf("shift %s: actual_start: %w", id, err)
	}
	if shift.ActualEnd, err = parseNullTime(actualEnd); err != nil {
		return shift, fmt.Errorf("shift %s: actual_end: %w", id, err)
	}
	return shift, nil
}

// =============================================================================
// PAY POLICY STORE
// =============================================================================

// PolicyRecord is a stored pay policy with its JSON definition.
type PolicyRecord struct {
	ID         string
	Name       string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SavePolicy saves a policy record, bumping its version on update.
func (s *Store) SavePolicy(ctx context.Context, policy PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO pay_policies (id, name, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			config_json = excluded.config_json,
			version = pay_policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query, policy.ID, policy.Name, policy.ConfigJSON, now, now)
	return err
}

// GetPolicy retrieves a policy by ID. Returns nil, nil when absent.
func (s *Store) GetPolicy(ctx context.Context, id string) (*PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var p PolicyRecord
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, config_json, version, created_at, updated_at FROM pay_policies WHERE id = ?",
		id,
	).Scan(&p.ID, &p.Name, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all shifts (for demo scenarios). Policies are kept.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM shifts")
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

func parseNullTime(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ engine.ShiftStore = (*Store)(nil)
