package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"newsdigest/internal/handler/http/pathutil"
	"newsdigest/internal/observability/metrics"
)

// MetricsMiddleware records request count, duration and in-flight requests.
// Paths are normalized so ids do not become label values.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		rec := newStatusRecorder(w)

		start := time.Now()
		next.ServeHTTP(rec, r)

		metrics.RecordHTTPRequest(r.Method, path, rec.status, time.Since(start))
	})
}

// MetricsHandler returns an HTTP handler for the Prometheus metrics endpoint.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
