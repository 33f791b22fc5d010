package appeal

import (
	"context"
	"sort"
	"sync"

	"pcnappeal/internal/rules"
	id "pcnappeal/pkg/domain"
)

// MemoryStore is an in-memory CaseStore for tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	cases map[id.CaseID]Case
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cases: make(map[id.CaseID]Case)}
}

func (s *MemoryStore) Create(_ context.Context, c Case) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cases[c.ID] = cloneCase(c)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, caseID id.CaseID) (Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cases[caseID]
	if !ok {
		return Case{}, ErrNotFound
	}
	return cloneCase(c), nil
}

func (s *MemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Case, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Case
	for _, c := range s.cases {
		if c.UserID == userID {
			out = append(out, cloneCase(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, c Case, expectedVersion int64) (Case, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.cases[c.ID]
	if !ok {
		return Case{}, ErrNotFound
	}
	if stored.Version != expectedVersion {
		return Case{}, ErrVersionConflict
	}
	c.Version = expectedVersion + 1
	s.cases[c.ID] = cloneCase(c)
	return cloneCase(c), nil
}

// cloneCase deep-copies the slices and pointer fields so callers can never
// mutate stored state through a returned Case.
func cloneCase(c Case) Case {
	out := c
	if c.PrimaryDefence != nil {
		primary := *c.PrimaryDefence
		primary.Evidence = append([]string(nil), c.PrimaryDefence.Evidence...)
		out.PrimaryDefence = &primary
	}
	if c.SupportingDefences != nil {
		out.SupportingDefences = append([]rules.Defence(nil), c.SupportingDefences...)
		for i := range out.SupportingDefences {
			out.SupportingDefences[i].Evidence = append([]string(nil), c.SupportingDefences[i].Evidence...)
		}
	}
	if c.GeneralDefences != nil {
		out.GeneralDefences = append([]string(nil), c.GeneralDefences...)
	}
	if c.Facts.PaidUntil != nil {
		paidUntil := *c.Facts.PaidUntil
		out.Facts.PaidUntil = &paidUntil
	}
	return out
}
