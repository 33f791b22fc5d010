// Package metrics provides observability for the appeal workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks case lifecycle activity.
type Metrics struct {
	CasesCreated       prometheus.Counter
	CasesAnalyzed      prometheus.Counter
	AnalysisRefused    prometheus.Counter
	PaymentsConfirmed  prometheus.Counter
	LettersGenerated   prometheus.Counter
	LetterFailures     prometheus.Counter
	VersionConflicts   prometheus.Counter
	FallbackRankings   prometheus.Counter
	AnalysisDuration   prometheus.Histogram
	GenerationDuration prometheus.Histogram
}

// New creates and registers all appeal workflow metrics.
func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_cases_created_total",
			Help: "Total appeal cases created",
		}),
		CasesAnalyzed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_cases_analyzed_total",
			Help: "Total defence analysis passes completed",
		}),
		AnalysisRefused: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_analysis_refused_total",
			Help: "Total analysis requests refused for incomplete facts or wrong state",
		}),
		PaymentsConfirmed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_payments_confirmed_total",
			Help: "Total payment confirmations applied to cases",
		}),
		LettersGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_letters_generated_total",
			Help: "Total appeal letters generated",
		}),
		LetterFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_letter_failures_total",
			Help: "Total letter generation attempts that failed and rolled back",
		}),
		VersionConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_version_conflicts_total",
			Help: "Total optimistic concurrency conflicts on case writes",
		}),
		FallbackRankings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pcnappeal_fallback_rankings_total",
			Help: "Total analysis passes that produced only general fallback defences",
		}),
		AnalysisDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcnappeal_analysis_duration_seconds",
			Help:    "Defence analysis latency",
			Buckets: prometheus.DefBuckets,
		}),
		GenerationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "pcnappeal_generation_duration_seconds",
			Help:    "Letter generation latency including the downstream call",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

func (m *Metrics) IncCasesCreated() {
	if m != nil {
		m.CasesCreated.Inc()
	}
}

func (m *Metrics) IncCasesAnalyzed() {
	if m != nil {
		m.CasesAnalyzed.Inc()
	}
}

func (m *Metrics) IncAnalysisRefused() {
	if m != nil {
		m.AnalysisRefused.Inc()
	}
}

func (m *Metrics) IncPaymentsConfirmed() {
	if m != nil {
		m.PaymentsConfirmed.Inc()
	}
}

func (m *Metrics) IncLettersGenerated() {
	if m != nil {
		m.LettersGenerated.Inc()
	}
}

func (m *Metrics) IncLetterFailures() {
	if m != nil {
		m.LetterFailures.Inc()
	}
}

func (m *Metrics) IncVersionConflicts() {
	if m != nil {
		m.VersionConflicts.Inc()
	}
}

func (m *Metrics) IncFallbackRankings() {
	if m != nil {
		m.FallbackRankings.Inc()
	}
}

func (m *Metrics) ObserveAnalysisDuration(seconds float64) {
	if m != nil {
		m.AnalysisDuration.Observe(seconds)
	}
}

func (m *Metrics) ObserveGenerationDuration(seconds float64) {
	if m != nil {
		m.GenerationDuration.Observe(seconds)
	}
}
