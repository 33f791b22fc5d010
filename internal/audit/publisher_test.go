package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "pcnappeal/pkg/domain"
)

// failingStore scripts Append failures.
type failingStore struct {
	InMemoryStore
	err error
}

func (s *failingStore) Append(ctx context.Context, event Event) error {
	if s.err != nil {
		return s.err
	}
	return s.InMemoryStore.Append(ctx, event)
}

func TestPublisher_Emit(t *testing.T) {
	ctx := context.Background()
	caseID := id.NewCaseID()

	t.Run("persists the event with derived category and timestamp", func(t *testing.T) {
		store := NewInMemoryStore()
		p := NewPublisher(store)

		p.Emit(ctx, Event{
			CaseID:   caseID,
			Action:   string(EventPaymentConfirmed),
			Decision: "paid",
		})

		events, err := store.ListByCase(ctx, caseID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, CategoryCompliance, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
	})

	t.Run("keeps an explicit timestamp", func(t *testing.T) {
		store := NewInMemoryStore()
		p := NewPublisher(store)
		at := time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC)

		p.Emit(ctx, Event{CaseID: caseID, Action: string(EventCaseCreated), Timestamp: at})

		events, err := store.ListByCase(ctx, caseID)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, at, events[0].Timestamp)
		assert.Equal(t, CategoryOperations, events[0].Category)
	})

	t.Run("a store failure does not propagate", func(t *testing.T) {
		store := &failingStore{err: errors.New("db down")}
		store.events = map[id.CaseID][]Event{}
		p := NewPublisher(store)

		// Emit must never panic or fail the caller's transition.
		p.Emit(ctx, Event{CaseID: caseID, Action: string(EventCaseCreated)})
	})
}

func TestAuditEvent_Category(t *testing.T) {
	assert.Equal(t, CategoryCompliance, EventPaymentConfirmed.Category())
	assert.Equal(t, CategoryCompliance, EventLetterGenerated.Category())
	assert.Equal(t, CategoryOperations, EventCaseCreated.Category())
	assert.Equal(t, CategoryOperations, AuditEvent("something_new").Category())
}
