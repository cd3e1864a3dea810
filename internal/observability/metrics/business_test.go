package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// histogramCount reads the sample count of a histogram.
func histogramCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestRecordFeedFetch(t *testing.T) {
	before := testutil.ToFloat64(FeedFetchTotal.WithLabelValues("metrics-test", ResultFailure))

	RecordFeedFetch("metrics-test", false, 2*time.Second)
	RecordFeedFetch("metrics-test", true, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(FeedFetchTotal.WithLabelValues("metrics-test", ResultFailure)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(FeedFetchTotal.WithLabelValues("metrics-test", ResultSuccess)), 1.0)
}

func TestRecordIngestOutcome(t *testing.T) {
	for _, outcome := range []string{OutcomeInserted, OutcomeDuplicate, OutcomeSkipped, OutcomeStoreError} {
		before := testutil.ToFloat64(IngestEntriesTotal.WithLabelValues("metrics-test", outcome))
		RecordIngestOutcome("metrics-test", outcome)
		assert.Equal(t, before+1, testutil.ToFloat64(IngestEntriesTotal.WithLabelValues("metrics-test", outcome)), outcome)
	}
}

func TestRecordEnrichment(t *testing.T) {
	before := testutil.ToFloat64(EnrichmentTotal.WithLabelValues(OutcomeEnrichParseError))

	RecordEnrichment(OutcomeEnrichParseError)

	assert.Equal(t, before+1, testutil.ToFloat64(EnrichmentTotal.WithLabelValues(OutcomeEnrichParseError)))
}

func TestRecordContentFetch(t *testing.T) {
	beforeOK := testutil.ToFloat64(ContentFetchTotal.WithLabelValues(ResultSuccess))
	beforeFail := testutil.ToFloat64(ContentFetchTotal.WithLabelValues(ResultFailure))

	RecordContentFetch(true, 300*time.Millisecond, 1200)
	RecordContentFetch(false, 10*time.Second, 0)

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ContentFetchTotal.WithLabelValues(ResultSuccess)))
	assert.Equal(t, beforeFail+1, testutil.ToFloat64(ContentFetchTotal.WithLabelValues(ResultFailure)))
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "GET /news/{id}", "404"))

	RecordHTTPRequest("GET", "GET /news/{id}", 404, 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "GET /news/{id}", "404")))
}

func TestMetricsFunctions_AllCallable(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordIngestRun(42 * time.Second)
		SetCircuitBreakerState("metrics-test", 2)
	})
	assert.Equal(t, 2.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("metrics-test")))
}

func TestRecordIngestRun(t *testing.T) {
	before := histogramCount(t, IngestRunDuration)

	RecordIngestRun(90 * time.Second)

	assert.Equal(t, before+1, histogramCount(t, IngestRunDuration))
}
