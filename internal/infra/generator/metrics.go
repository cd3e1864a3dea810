package generator

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts generation calls by backend and result
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "generator_requests_total",
			Help: "Total number of text generation requests by backend and result",
		},
		[]string{"backend", "result"},
	)

	// RequestDuration measures generation latency; local models are slow
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generator_request_duration_seconds",
			Help:    "Time taken by text generation requests",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		},
		[]string{"backend"},
	)
)

// Request results.
const (
	resultSuccess     = "success"
	resultFailure     = "failure"
	resultCircuitOpen = "circuit_open"
	resultRateLimited = "rate_limited"
)

func recordRequest(backend, result string, duration time.Duration) {
	RequestsTotal.WithLabelValues(backend, result).Inc()
	if result == resultSuccess || result == resultFailure {
		RequestDuration.WithLabelValues(backend).Observe(duration.Seconds())
	}
}
