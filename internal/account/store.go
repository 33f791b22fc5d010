package account

import (
	"context"
	"sync"

	id "pcnappeal/pkg/domain"
)

// Store persists accounts. Get for an unknown user returns a zero-value
// free account rather than an error; accounts exist implicitly.
type Store interface {
	Get(ctx context.Context, userID id.UserID) (Account, error)
	Put(ctx context.Context, a Account) error
}

// MemoryStore is an in-memory Store.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[id.UserID]Account
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[id.UserID]Account)}
}

func (s *MemoryStore) Get(_ context.Context, userID id.UserID) (Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[userID]; ok {
		return a, nil
	}
	return Account{UserID: userID, Plan: PlanFree}, nil
}

func (s *MemoryStore) Put(_ context.Context, a Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[a.UserID] = a
	return nil
}
