package cache

import (
	"context"
	"sync"
	"time"

	"github.com/expensetracker/backend/internal/domain/shared"
)

// sweepInterval is how often expired entries are dropped from the map.
const sweepInterval = 5 * time.Minute

// InMemoryIdempotencyStore deduplicates within a single process: a map of
// event ID to expiry instant. It backs the notifier when Redis is
// disabled; cross-instance deduplication needs the Redis store.
type InMemoryIdempotencyStore struct {
	mu     sync.RWMutex
	expiry map[string]time.Time
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore creates the store and starts its sweeper
// goroutine; Close stops it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	s := &InMemoryIdempotencyStore{
		expiry: make(map[string]time.Time),
		stop:   make(chan struct{}),
	}
	s.wg.Add(1)
	go s.sweep()
	return s
}

// MarkProcessed records the event ID for ttl. It reports true when the ID
// was fresh and false when a live entry already exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.expiry[eventID]; ok && now.Before(exp) {
		return false, nil
	}
	s.expiry[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether a live entry exists for the event ID.
func (s *InMemoryIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.expiry[eventID]
	return ok && time.Now().Before(exp), nil
}

// Close stops the sweeper. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.once.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored entries, expired ones included.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.expiry)
}

func (s *InMemoryIdempotencyStore) sweep() {
	defer s.wg.Done()

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup drops entries whose expiry has passed.
func (s *InMemoryIdempotencyStore) cleanup() {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, exp := range s.expiry {
		if now.After(exp) {
			delete(s.expiry, id)
		}
	}
}
