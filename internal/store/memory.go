package store

import (
	"errors"
	"sync"

	"github.com/i474232898/weather-widget/internal/weather"
)

var (
	// ErrNotFound is returned when no snapshot has been fetched yet.
	ErrNotFound = errors.New("no weather data fetched yet")
)

// MemoryStore is a concurrency-safe single-slot holder for the current
// snapshot. Saving replaces the previous snapshot; nothing is merged or kept.
type MemoryStore struct {
	mu sync.RWMutex

	current *weather.Snapshot
	saves   uint64
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveSnapshot replaces the current snapshot.
func (s *MemoryStore) SaveSnapshot(snapshot weather.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &snapshot
	s.saves++
}

// GetLatest returns the current snapshot.
func (s *MemoryStore) GetLatest() (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return weather.Snapshot{}, ErrNotFound
	}
	return *s.current, nil
}

// Generation returns how many snapshots have been saved so far.
func (s *MemoryStore) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}
