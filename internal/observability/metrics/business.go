package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Entry outcomes of one ingestion run.
const (
	OutcomeInserted   = "inserted"
	OutcomeDuplicate  = "duplicate"
	OutcomeSkipped    = "skipped"
	OutcomeStoreError = "store_error"
)

// Enrichment outcomes. Only OutcomeEnrichOK carries model output; the other
// two mean the fallback triple was stored.
const (
	OutcomeEnrichOK             = "ok"
	OutcomeEnrichTransportError = "transport_error"
	OutcomeEnrichParseError     = "parse_error"
)

// Content fetch results.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// FeedFetchTotal counts feed fetches per source and result
	FeedFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetch_total",
			Help: "Total number of feed fetches by source and result",
		},
		[]string{"source", "result"},
	)

	// FeedFetchDuration measures feed download and parse time
	FeedFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feed_fetch_duration_seconds",
			Help:    "Time to download and parse a feed",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// IngestEntriesTotal counts feed entries by pipeline outcome
	IngestEntriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_entries_total",
			Help: "Total number of feed entries processed by outcome",
		},
		[]string{"source", "outcome"},
	)

	// IngestRunDuration measures one full pass over all sources
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of one ingestion run",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800, 3600},
		},
	)

	// EnrichmentTotal counts enrichment calls by outcome
	EnrichmentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "enrichment_total",
			Help: "Total number of enrichment calls by outcome",
		},
		[]string{"outcome"},
	)

	// ContentFetchTotal counts article page fetches by result
	ContentFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_total",
			Help: "Total number of article page fetches by result",
		},
		[]string{"result"},
	)

	// ContentFetchDuration measures article page fetch time
	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time to download an article page",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	// ContentExtractedChars observes the length of extracted body text
	ContentExtractedChars = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_extracted_chars",
			Help:    "Length of extracted article text in characters",
			Buckets: prometheus.ExponentialBuckets(100, 2, 10),
		},
	)
)

// RecordFeedFetch records one feed fetch attempt.
func RecordFeedFetch(source string, success bool, duration time.Duration) {
	result := ResultSuccess
	if !success {
		result = ResultFailure
	}
	FeedFetchTotal.WithLabelValues(source, result).Inc()
	FeedFetchDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordIngestOutcome records the fate of one feed entry.
func RecordIngestOutcome(source, outcome string) {
	IngestEntriesTotal.WithLabelValues(source, outcome).Inc()
}

// RecordIngestRun records the duration of a completed run.
func RecordIngestRun(duration time.Duration) {
	IngestRunDuration.Observe(duration.Seconds())
}

// RecordEnrichment records one enrichment outcome.
func RecordEnrichment(outcome string) {
	EnrichmentTotal.WithLabelValues(outcome).Inc()
}

// RecordContentFetch records an article page fetch. chars is the length of the
// extracted text and is only observed on success.
func RecordContentFetch(success bool, duration time.Duration, chars int) {
	ContentFetchDuration.Observe(duration.Seconds())
	if !success {
		ContentFetchTotal.WithLabelValues(ResultFailure).Inc()
		return
	}
	ContentFetchTotal.WithLabelValues(ResultSuccess).Inc()
	ContentExtractedChars.Observe(float64(chars))
}
