package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dharmasatrya/flightproxy/internal/models"
)

type memoryEntry struct {
	itineraries []models.Itinerary
	storedAt    time.Time
	expiresAt   time.Time
}

// MemoryStore is a process-local ResultStore. Entries expire after TTL; when MaxEntries is
// reached the oldest entry is evicted.
type MemoryStore struct {
	entries    map[string]memoryEntry
	mu         sync.RWMutex
	ttl        time.Duration
	maxEntries int
	interval   time.Duration
	now        func() time.Time
}

type MemoryConfig struct {
	TTL           time.Duration
	MaxEntries    int
	SweepInterval time.Duration
}

func DefaultMemoryConfig() MemoryConfig {
	return MemoryConfig{
		TTL:           30 * time.Minute,
		MaxEntries:    10000,
		SweepInterval: time.Minute,
	}
}

type MemoryOption func(s *MemoryStore)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

func NewMemoryStore(cfg MemoryConfig, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries:    make(map[string]memoryEntry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		interval:   cfg.SweepInterval,
		now:        time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *MemoryStore) Put(_ context.Context, searchID string, itineraries []models.Itinerary) error {
	now := s.now()
	entry := memoryEntry{
		itineraries: cloneItineraries(itineraries),
		storedAt:    now,
	}
	if s.ttl > 0 {
		entry.expiresAt = now.Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[searchID]; !exists && s.maxEntries > 0 && len(s.entries) >= s.maxEntries {
		s.evictLocked(now)
	}
	s.entries[searchID] = entry

	return nil
}

func (s *MemoryStore) Get(_ context.Context, searchID string) ([]models.Itinerary, error) {
	s.mu.RLock()
	entry, ok := s.entries[searchID]
	s.mu.RUnlock()

	if !ok || s.expired(entry, s.now()) {
		return nil, ErrNotFound
	}

	return cloneItineraries(entry.itineraries), nil
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every SweepInterval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context) error {
	if s.interval <= 0 || s.ttl <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.entries)
	return nil
}

func (s *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// evictLocked makes room for one entry: expired entries first, otherwise the oldest.
func (s *MemoryStore) evictLocked(now time.Time) {
	var oldestID string
	var oldest time.Time
	for id, entry := range s.entries {
		if s.expired(entry, now) {
			delete(s.entries, id)
			continue
		}
		if oldestID == "" || entry.storedAt.Before(oldest) {
			oldestID = id
			oldest = entry.storedAt
		}
	}

	if len(s.entries) >= s.maxEntries && oldestID != "" {
		delete(s.entries, oldestID)
	}
}

// cloneItineraries copies down to the legs so neither writers nor readers share backing arrays
// with the stored entry. nil becomes an empty set.
func cloneItineraries(in []models.Itinerary) []models.Itinerary {
	out := make([]models.Itinerary, len(in))
	for i, it := range in {
		it.Legs = slices.Clone(it.Legs)
		out[i] = it
	}
	return out
}
