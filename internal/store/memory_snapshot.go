package store

import (
	"sync"
)

// MemorySnapshot is an in-memory implementation of Snapshotter.
// It keeps a private copy of the last saved collection and counts writes.
type MemorySnapshot[R any] struct {
	records []R
	saved   bool
	saves   int
	mu      sync.RWMutex
}

// NewMemorySnapshot creates a snapshot optionally seeded with records.
// Seeding counts as an existing snapshot.
func NewMemorySnapshot[R any](seed ...R) *MemorySnapshot[R] {
	m := &MemorySnapshot[R]{}
	if len(seed) > 0 {
		m.records = append([]R(nil), seed...)
		m.saved = true
	}
	return m
}

// Load returns a copy of the last saved collection, or nil if nothing was saved.
func (m *MemorySnapshot[R]) Load() ([]R, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.saved {
		return nil, nil
	}
	return append([]R(nil), m.records...), nil
}

// Save replaces the held collection with a copy of records.
func (m *MemorySnapshot[R]) Save(records []R) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append([]R(nil), records...)
	m.saved = true
	m.saves++
	return nil
}

// Saves returns how many times Save has been called.
func (m *MemorySnapshot[R]) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
