// Package metrics exposes Prometheus collectors for the reply pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TurnsTotal counts finished turns by reply source (generated, playbook, category, crisis).
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomspace_turns_total",
			Help: "Chat turns answered, by reply source.",
		},
		[]string{"source"},
	)

	// GenerationTotal counts generation attempts by outcome (ok, unavailable).
	GenerationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomspace_generation_total",
			Help: "Text generation calls, by outcome.",
		},
		[]string{"purpose", "outcome"},
	)

	// GenerationSeconds observes generation latency, including failed calls.
	GenerationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bloomspace_generation_seconds",
			Help:    "Latency of text generation calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 90},
		},
	)

	// LookupTotal counts live lookups by outcome (hit, miss, disabled).
	LookupTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bloomspace_lookup_total",
			Help: "Live lookup calls, by outcome.",
		},
		[]string{"outcome"},
	)

	// QualityRejectedTotal counts generated replies discarded by the quality gate.
	QualityRejectedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bloomspace_quality_rejected_total",
			Help: "Generated replies rejected by the quality gate.",
		},
	)

	// StoreErrorsTotal counts persistence failures surfaced to callers.
	StoreErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bloomspace_store_errors_total",
			Help: "Conversation store failures during a turn.",
		},
	)
)

func init() {
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(GenerationTotal)
	prometheus.MustRegister(GenerationSeconds)
	prometheus.MustRegister(LookupTotal)
	prometheus.MustRegister(QualityRejectedTotal)
	prometheus.MustRegister(StoreErrorsTotal)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
