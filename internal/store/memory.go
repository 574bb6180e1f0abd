package store

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/i474232898/weather-daily-overview/internal/weather"
)

var (
	// ErrNotFound is returned when no overview is stored for a location.
	ErrNotFound = errors.New("no overview for location")
)

// history holds the overviews generated for one location, oldest first.
type history struct {
	overviews []weather.Overview
}

// MemoryStore is a concurrency-safe in-memory cache of generated overviews.
type MemoryStore struct {
	mu sync.RWMutex

	// key: LocationQuery.Key()
	data map[string]*history

	maxHistory int           // max number of overviews per location
	maxAge     time.Duration // optional max age, measured on GeneratedAt
	clock      clockwork.Clock
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited; so is maxAge <= 0.
func NewMemoryStore(maxHistory int, maxAge time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		data:       make(map[string]*history),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		clock:      clock,
	}
}

// SaveOverview appends an overview for a location and enforces retention.
func (s *MemoryStore) SaveOverview(q weather.LocationQuery, ov weather.Overview) {
	key := q.Key()

	s.mu.Lock()
	defer s.mu.Unlock()

	h, ok := s.data[key]
	if !ok {
		h = &history{}
		s.data[key] = h
	}
	h.overviews = append(h.overviews, ov)

	if s.maxHistory > 0 && len(h.overviews) > s.maxHistory {
		over := len(h.overviews) - s.maxHistory
		h.overviews = h.overviews[over:]
	}

	// The newest entry is always kept, even when it is already older than maxAge.
	if s.maxAge > 0 {
		cutoff := s.clock.Now().Add(-s.maxAge)
		i := 0
		for ; i < len(h.overviews)-1; i++ {
			if !h.overviews[i].GeneratedAt.Before(cutoff) {
				break
			}
		}
		h.overviews = h.overviews[i:]
	}
}

// GetLatest returns the most recent overview for a location.
func (s *MemoryStore) GetLatest(q weather.LocationQuery) (weather.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[q.Key()]
	if !ok || len(h.overviews) == 0 {
		return weather.Overview{}, ErrNotFound
	}
	return h.overviews[len(h.overviews)-1], nil
}

// GetRange returns all overviews for a location generated between from and to (inclusive).
func (s *MemoryStore) GetRange(q weather.LocationQuery, from, to time.Time) ([]weather.Overview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, ok := s.data[q.Key()]
	if !ok || len(h.overviews) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.Overview
	for _, ov := range h.overviews {
		if !ov.GeneratedAt.Before(from) && !ov.GeneratedAt.After(to) {
			result = append(result, ov)
		}
	}
	if len(result) == 0 {
		return nil, ErrNotFound
	}
	return result, nil
}

// Locations returns the number of locations with at least one overview.
func (s *MemoryStore) Locations() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
