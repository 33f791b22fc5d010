package audit

import (
	"context"

	"github.com/google/uuid"

	id "pcnappeal/pkg/domain"
)

// Store persists audit events. The postgres implementation writes to an
// outbox table; Kafka is the source of truth once the worker publishes.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCase(ctx context.Context, caseID id.CaseID) ([]Event, error)
}

// OutboxEntry is one unpublished event waiting for the Kafka worker.
type OutboxEntry struct {
	ID      uuid.UUID
	Key     string
	Payload []byte
}

// OutboxStore is implemented by stores that buffer events for asynchronous
// publishing.
type OutboxStore interface {
	// NextBatch returns up to limit unpublished entries, oldest first.
	NextBatch(ctx context.Context, limit int) ([]OutboxEntry, error)
	// MarkPublished removes entries that reached the broker.
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
