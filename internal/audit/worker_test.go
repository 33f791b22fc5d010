package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcnappeal/internal/platform/logger"
)

// fakeOutbox serves scripted batches.
type fakeOutbox struct {
	mu      sync.Mutex
	entries []OutboxEntry
	marked  [][]uuid.UUID
}

func (f *fakeOutbox) NextBatch(_ context.Context, limit int) ([]OutboxEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) > limit {
		return append([]OutboxEntry(nil), f.entries[:limit]...), nil
	}
	return append([]OutboxEntry(nil), f.entries...), nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, ids)
	remaining := f.entries[:0]
	for _, e := range f.entries {
		published := false
		for _, id := range ids {
			if e.ID == id {
				published = true
				break
			}
		}
		if !published {
			remaining = append(remaining, e)
		}
	}
	f.entries = remaining
	return nil
}

// fakeBroker records publishes and can fail on a specific key.
type fakeBroker struct {
	mu       sync.Mutex
	keys     []string
	failKey  string
	failWith error
}

func (f *fakeBroker) Publish(_ context.Context, key, _ []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failKey != "" && string(key) == f.failKey {
		return f.failWith
	}
	f.keys = append(f.keys, string(key))
	return nil
}

func entry(key string) OutboxEntry {
	return OutboxEntry{ID: uuid.New(), Key: key, Payload: []byte(`{}`)}
}

func TestWorker_Drain(t *testing.T) {
	ctx := context.Background()

	t.Run("publishes oldest first and marks after ack", func(t *testing.T) {
		outbox := &fakeOutbox{entries: []OutboxEntry{entry("case-1"), entry("case-1"), entry("case-2")}}
		broker := &fakeBroker{}
		w := NewWorker(outbox, broker, logger.New(), nil)

		require.NoError(t, w.drain(ctx))

		assert.Equal(t, []string{"case-1", "case-1", "case-2"}, broker.keys)
		assert.Empty(t, outbox.entries)
		require.Len(t, outbox.marked, 1)
		assert.Len(t, outbox.marked[0], 3)
	})

	t.Run("stops at the first failure to preserve ordering", func(t *testing.T) {
		first := entry("case-1")
		blocked := entry("case-2")
		after := entry("case-3")
		outbox := &fakeOutbox{entries: []OutboxEntry{first, blocked, after}}
		broker := &fakeBroker{failKey: "case-2", failWith: errors.New("broker down")}
		w := NewWorker(outbox, broker, logger.New(), nil)

		require.NoError(t, w.drain(ctx))

		// Only the entry before the failure was published and removed; the
		// failed one and everything after stay for the next tick.
		assert.Equal(t, []string{"case-1"}, broker.keys)
		require.Len(t, outbox.entries, 2)
		assert.Equal(t, blocked.ID, outbox.entries[0].ID)
		assert.Equal(t, after.ID, outbox.entries[1].ID)
	})

	t.Run("an empty outbox is a quiet no-op", func(t *testing.T) {
		outbox := &fakeOutbox{}
		w := NewWorker(outbox, &fakeBroker{}, logger.New(), nil)
		require.NoError(t, w.drain(ctx))
		assert.Empty(t, outbox.marked)
	})
}
