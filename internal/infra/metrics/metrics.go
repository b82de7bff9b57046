// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	webhookEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Received payment webhook events by type and outcome (processed/ignored/duplicate/invalid/error).",
		},
		[]string{"type", "outcome"},
	)

	generationCallLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_call_latency_ms",
			Help:    "Generation provider call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 15000},
		},
		[]string{"op", "success"},
	)

	statusLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_lookups_total",
			Help: "Status API lookups by result (found/missing).",
		},
		[]string{"result"},
	)

	reconcilerPasses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_sessions_total",
			Help: "Sessions examined by the reconciler, by action taken.",
		},
		[]string{"action"},
	)
)

// MustRegister registers collectors with the default registry (idempotent).
func MustRegister() {
	once.Do(func() {
		prometheus.MustRegister(
			webhookEvents, generationCallLatencyMs,
			statusLookups, reconcilerPasses,
		)
	})
}

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// -------- Webhook helpers --------

func IncWebhookEvent(eventType, outcome string) {
	webhookEvents.WithLabelValues(norm(eventType), norm(outcome)).Inc()
}

// -------- Generation helpers --------

func ObserveGenerationCall(op string, latencyMs int64, success bool) {
	generationCallLatencyMs.WithLabelValues(norm(op), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

// -------- Status API helpers --------

func IncStatusLookup(found bool) {
	result := "missing"
	if found {
		result = "found"
	}
	statusLookups.WithLabelValues(result).Inc()
}

// -------- Reconciler helpers --------

func IncReconciled(action string) {
	reconcilerPasses.WithLabelValues(norm(action)).Inc()
}
