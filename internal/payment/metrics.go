package payment

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for webhook reconciliation.
type Metrics struct {
	Confirmed         *prometheus.CounterVec
	Duplicates        prometheus.Counter
	Rejected          prometheus.Counter
	Discarded         *prometheus.CounterVec
	SignatureFailures prometheus.Counter
}

// NewMetrics creates and registers all payment metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		Confirmed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcnappeal_payments_reconciled_total",
			Help: "Total payments reconciled against cases, by plan",
		}, []string{"plan"}),
		Duplicates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_payment_duplicates_total",
			Help: "Total duplicate webhook deliveries absorbed",
		}),
		Rejected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_payments_rejected_total",
			Help: "Total payments rejected by case state",
		}),
		Discarded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pcnappeal_webhook_discarded_total",
			Help: "Total webhook events acknowledged without action, by reason",
		}, []string{"reason"}),
		SignatureFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_webhook_signature_failures_total",
			Help: "Total webhook deliveries with invalid signatures",
		}),
	}
}

func (m *Metrics) IncConfirmed(plan string) {
	if m != nil {
		m.Confirmed.WithLabelValues(plan).Inc()
	}
}

func (m *Metrics) IncDuplicates() {
	if m != nil {
		m.Duplicates.Inc()
	}
}

func (m *Metrics) IncRejected() {
	if m != nil {
		m.Rejected.Inc()
	}
}

func (m *Metrics) IncDiscarded(reason string) {
	if m != nil {
		m.Discarded.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) IncSignatureFailures() {
	if m != nil {
		m.SignatureFailures.Inc()
	}
}
