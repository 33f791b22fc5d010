package payment

import (
	"context"
	"sync"
	"time"
)

// MemoryIdempotencyStore is an in-memory IdempotencyStore for tests and
// single-instance deployments.
type MemoryIdempotencyStore struct {
	mu    sync.Mutex
	seen  map[string]time.Time
	nowFn func() time.Time
}

func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		seen:  make(map[string]time.Time),
		nowFn: time.Now,
	}
}

func (s *MemoryIdempotencyStore) Claim(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFn()
	if claimedAt, ok := s.seen[eventID]; ok && now.Sub(claimedAt) < idempotencyTTL {
		return false, nil
	}
	s.seen[eventID] = now
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, eventID)
	return nil
}
