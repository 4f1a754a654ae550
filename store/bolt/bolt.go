/*
Package bolt provides a bbolt-backed ShiftStore.

PURPOSE:
  A single-file embedded store for deployments that do not want SQLite's
  cgo dependency.

LAYOUT:
  bucket "shifts"  ShiftID -> JSON record (includes its insertion sequence)
  bucket "order"   big-endian sequence -> ShiftID

  Range walks "order" with a cursor, so results come back in insertion
  order without sorting. Replacing a shift keeps its sequence.

SEE ALSO:
  - engine/store.go: ShiftStore contract
  - store/sqlite/sqlite.go: SQL implementation of the same contract
*/
package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/warp/shift-engine/engine"
)

var (
	bucketShifts = []byte("shifts")
	bucketOrder  = []byte("order")
)

// Store implements engine.ShiftStore on a bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the database file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt db: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, creating the buckets.
func New(db *bolt.DB) (*Store, error) {
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketShifts, bucketOrder} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// RECORD ENCODING
// =============================================================================

type record struct {
	Seq            uint64     `json:"seq"`
	ID             string     `json:"id"`
	ScheduledStart time.Time  `json:"scheduled_start"`
	ScheduledEnd   time.Time  `json:"scheduled_end"`
	ActualStart    *time.Time `json:"actual_start,omitempty"`
	ActualEnd      *time.Time `json:"actual_end,omitempty"`
	BreakMinutes   int        `json:"break_minutes"`
	RateMultiplier float64    `json:"rate_multiplier"`
	RateLabel      string     `json:"rate_label,omitempty"`
	Status         string     `json:"status"`
	Deleted        bool       `json:"deleted,omitempty"`
}

func toRecord(seq uint64, s engine.ShiftRecord) record {
	return record{
		Seq:            seq,
		ID:             string(s.ID),
		ScheduledStart: s.ScheduledStart,
		ScheduledEnd:   s.ScheduledEnd,
		ActualStart:    s.ActualStart,
		ActualEnd:      s.ActualEnd,
		BreakMinutes:   s.BreakMinutes,
		RateMultiplier: s.RateMultiplier,
		RateLabel:      s.RateLabel,
		Status:         string(s.Status),
		Deleted:        s.Deleted,
	}
}

func (r record) shift() engine.ShiftRecord {
	return engine.ShiftRecord{
		ID:             engine.ShiftID(r.ID),
		ScheduledStart: r.ScheduledStart,
		ScheduledEnd:   r.ScheduledEnd,
		ActualStart:    r.ActualStart,
		ActualEnd:      r.ActualEnd,
		BreakMinutes:   r.BreakMinutes,
		RateMultiplier: r.RateMultiplier,
		RateLabel:      r.RateLabel,
		Status:         engine.Status(r.Status),
		Deleted:        r.Deleted,
	}
}

func seqKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

func get(b *bolt.Bucket, id engine.ShiftID) (record, bool, error) {
	data := b.Get([]byte(id))
	if data == nil {
		return record{}, false, nil
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return record{}, false, fmt.Errorf("failed to unmarshal shift %s: %w", id, err)
	}
	return r, true, nil
}

func put(b *bolt.Bucket, r record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal shift %s: %w", r.ID, err)
	}
	return b.Put([]byte(r.ID), data)
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (s *Store) Save(ctx context.Context, shift engine.ShiftRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		shifts := tx.Bucket(bucketShifts)

		existing, ok, err := get(shifts, shift.ID)
		if err != nil {
			return err
		}
		seq := existing.Seq
		if !ok {
			order := tx.Bucket(bucketOrder)
			if seq, err = order.NextSequence(); err != nil {
				return err
			}
			if err := order.Put(seqKey(seq), []byte(shift.ID)); err != nil {
				return err
			}
		}
		return put(shifts, toRecord(seq, shift))
	})
}

func (s *Store) Get(ctx context.Context, id engine.ShiftID) (engine.ShiftRecord, error) {
	if err := ctx.Err(); err != nil {
		return engine.ShiftRecord{}, err
	}
	var result engine.ShiftRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		r, ok, err := get(tx.Bucket(bucketShifts), id)
		if err != nil {
			return err
		}
		if !ok {
			return engine.ErrShiftNotFound
		}
		result = r.shift()
		return nil
	})
	return result, err
}

func (s *Store) Range(ctx context.Context, from, to time.Time, includeDeleted bool) ([]engine.ShiftRecord, error) {
	var result []engine.ShiftRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		shifts := tx.Bucket(bucketShifts)
		c := tx.Bucket(bucketOrder).Cursor()

		for k, id := c.First(); k != nil; k, id = c.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, ok, err := get(shifts, engine.ShiftID(id))
			if err != nil {
				return err
			}
			if !ok || (r.Deleted && !includeDeleted) {
				continue
			}
			if !r.ScheduledStart.Before(from) && r.ScheduledStart.Before(to) {
				result = append(result, r.shift())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) SoftDelete(ctx context.Context, id engine.ShiftID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		shifts := tx.Bucket(bucketShifts)
		r, ok, err := get(shifts, id)
		if err != nil {
			return err
		}
		if !ok {
			return engine.ErrShiftNotFound
		}
		r.Deleted = true
		return put(shifts, r)
	})
}

// Reset drops every shift and restarts the sequence.
func (s *Store) Reset(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketShifts, bucketOrder} {
			if err := tx.DeleteBucket(name); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ engine.ShiftStore = (*Store)(nil)
