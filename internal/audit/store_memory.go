package audit

import (
	"context"
	"sync"

	id "pcnappeal/pkg/domain"
)

// InMemoryStore keeps events per case. Used in development and tests; it
// intentionally favors clarity over performance.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CaseID][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CaseID][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CaseID] = append(s.events[event.CaseID], event)
	return nil
}

func (s *InMemoryStore) ListByCase(_ context.Context, caseID id.CaseID) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Event{}, s.events[caseID]...), nil
}
