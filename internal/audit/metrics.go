package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit pipeline.
type Metrics struct {
	EventsEmitted   prometheus.Counter
	PersistFailures prometheus.Counter
	OutboxPublished prometheus.Counter
	OutboxErrors    prometheus.Counter
}

// NewMetrics creates and registers all audit pipeline metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_audit_events_emitted_total",
			Help: "Total audit events persisted to the store",
		}),
		PersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_audit_persist_failures_total",
			Help: "Total audit events that failed to persist",
		}),
		OutboxPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_audit_outbox_published_total",
			Help: "Total outbox entries published to Kafka",
		}),
		OutboxErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_audit_outbox_errors_total",
			Help: "Total outbox publish attempts that failed",
		}),
	}
}

func (m *Metrics) IncEventsEmitted() {
	if m != nil {
		m.EventsEmitted.Inc()
	}
}

func (m *Metrics) IncPersistFailures() {
	if m != nil {
		m.PersistFailures.Inc()
	}
}

func (m *Metrics) IncOutboxPublished(n int) {
	if m != nil {
		m.OutboxPublished.Add(float64(n))
	}
}

func (m *Metrics) IncOutboxErrors() {
	if m != nil {
		m.OutboxErrors.Inc()
	}
}
