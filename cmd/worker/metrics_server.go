package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	workerPkg "newsdigest/internal/infra/worker"
)

// newMetricsServer exposes GET /metrics on the given port.
func newMetricsServer(port int) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// runMetricsServer serves Prometheus metrics until ctx is cancelled.
func runMetricsServer(ctx context.Context, logger *slog.Logger, port int) error {
	return workerPkg.Serve(ctx, newMetricsServer(port), logger, "metrics server")
}
