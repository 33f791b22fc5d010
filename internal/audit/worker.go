package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// RecordPublisher produces one audit record to the broker. Satisfied by the
// platform Kafka producer.
type RecordPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Worker drains the outbox to Kafka. It polls on an interval, publishes
// oldest-first keyed by case id so per-case ordering survives partitioning,
// and deletes entries only after the broker acknowledges them.
type Worker struct {
	outbox    OutboxStore
	publisher RecordPublisher
	logger    *slog.Logger
	metrics   *Metrics
	interval  time.Duration
	batchSize int
}

func NewWorker(outbox OutboxStore, publisher RecordPublisher, logger *slog.Logger, metrics *Metrics) *Worker {
	return &Worker{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		interval:  2 * time.Second,
		batchSize: 100,
	}
}

// Run drains the outbox until the context is canceled. Publish failures are
// logged and retried on the next tick; entries stay in the outbox until
// acknowledged, so delivery is at-least-once.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.drain(ctx); err != nil {
				w.metrics.IncOutboxErrors()
				w.logger.ErrorContext(ctx, "outbox drain failed", "error", err)
			}
		}
	}
}

func (w *Worker) drain(ctx context.Context) error {
	entries, err := w.outbox.NextBatch(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := w.publisher.Publish(ctx, []byte(entry.Key), entry.Payload); err != nil {
			// Stop at the first failure to preserve ordering; the
			// remainder is retried next tick.
			break
		}
		published = append(published, entry.ID)
	}

	if len(published) == 0 {
		return nil
	}
	if err := w.outbox.MarkPublished(ctx, published); err != nil {
		return err
	}
	w.metrics.IncOutboxPublished(len(published))
	return nil
}
