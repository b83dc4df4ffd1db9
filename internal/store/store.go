// Package store provides a generic record store that keeps a whole collection
// in memory and rewrites a durable snapshot after every mutation.
package store

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when no record carries the requested ID.
	ErrNotFound = errors.New("record not found")
	// ErrPersist wraps snapshot read and write failures.
	ErrPersist = errors.New("snapshot persistence failed")
)

// Record is implemented by every type a Store can hold.
type Record[R any] interface {
	GetID() int
	WithID(id int) R
}

// Snapshotter reads and writes the full collection in one operation.
// Load must return (nil, nil) when no snapshot exists yet.
type Snapshotter[R any] interface {
	Load() ([]R, error)
	Save(records []R) error
}

// Store owns one homogeneous collection together with its ID counter.
type Store[R Record[R]] struct {
	name    string
	snap    Snapshotter[R]
	logger  *zap.Logger
	mu      sync.RWMutex
	records []R
	nextID  int
	loadErr error
}

// Open builds a store and loads its snapshot. A missing snapshot yields an
// empty collection. An unreadable one also yields an empty collection; the
// failure is logged and kept available through LoadErr.
func Open[R Record[R]](name string, snap Snapshotter[R], logger *zap.Logger) *Store[R] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store[R]{
		name:   name,
		snap:   snap,
		logger: logger.With(zap.String("store", name)),
		nextID: 1,
	}
	s.load()
	return s
}

func (s *Store[R]) load() {
	records, err := s.snap.Load()
	if err != nil {
		s.loadErr = fmt.Errorf("%w: load %s: %v", ErrPersist, s.name, err)
		s.logger.Error("snapshot unreadable, starting empty", zap.Error(err))
		return
	}
	s.records = records
	for _, r := range records {
		if r.GetID() >= s.nextID {
			s.nextID = r.GetID() + 1
		}
	}
	s.logger.Info("snapshot loaded", zap.Int("records", len(records)), zap.Int("next_id", s.nextID))
}

// LoadErr reports the failure encountered while loading, if any.
func (s *Store[R]) LoadErr() error {
	return s.loadErr
}

// save must be called with the write lock held.
func (s *Store[R]) save() error {
	if err := s.snap.Save(s.records); err != nil {
		s.logger.Error("snapshot write failed", zap.Error(err), zap.Int("records", len(s.records)))
		return fmt.Errorf("%w: save %s: %v", ErrPersist, s.name, err)
	}
	return nil
}

// NextID returns the ID the next Insert will assign.
func (s *Store[R]) NextID() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID
}

// Insert assigns the next ID to r, appends it and persists the collection.
// On a persistence error the record stays in memory and is still returned.
func (s *Store[R]) Insert(r R) (R, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r = r.WithID(s.nextID)
	s.nextID++
	s.records = append(s.records, r)
	return r, s.save()
}

// FindByID returns the record with the given ID.
func (s *Store[R]) FindByID(id int) (R, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.GetID() == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// FindAll returns, in collection order, every record matching pred.
func (s *Store[R]) FindAll(pred func(R) bool) []R {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]R, 0)
	for _, r := range s.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

// All returns a copy of the whole collection.
func (s *Store[R]) All() []R {
	return s.FindAll(func(R) bool { return true })
}

// Len returns the number of records held.
func (s *Store[R]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// UpdateWhere applies mutate to the record with the given ID and persists.
// The record ID cannot be changed by mutate. Nothing is written when the
// record does not exist.
func (s *Store[R]) UpdateWhere(id int, mutate func(*R)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		if s.records[i].GetID() != id {
			continue
		}
		mutate(&s.records[i])
		s.records[i] = s.records[i].WithID(id)
		return s.save()
	}
	return fmt.Errorf("%s %d: %w", s.name, id, ErrNotFound)
}

// DeleteWhere removes every record with the given ID and persists the
// collection, even when nothing matched.
func (s *Store[R]) DeleteWhere(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	for _, r := range s.records {
		if r.GetID() != id {
			kept = append(kept, r)
		}
	}
	// Zero the tail so removed records are not retained by the backing array.
	var zero R
	for i := len(kept); i < len(s.records); i++ {
		s.records[i] = zero
	}
	s.records = kept
	return s.save()
}
