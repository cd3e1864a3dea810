package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"newsdigest/internal/resilience/circuitbreaker"
)

// BreakerSource lists circuit breakers to report on /health/breakers.
type BreakerSource func() []*circuitbreaker.CircuitBreaker

// HealthServer serves the worker probes:
//
//   - /health: liveness, always 200
//
//   - /health/ready: 200 once SetReady(true) was called, 503 otherwise
//
//   - /health/breakers: state of every registered circuit breaker
//
//     hs := worker.NewHealthServer(":9091", logger)
//     go hs.Start(ctx)
//     hs.SetReady(true)
type HealthServer struct {
	addr     string
	logger   *slog.Logger
	isReady  *atomic.Bool
	server   *http.Server
	breakers []BreakerSource
}

type healthResponse struct {
	Status string `json:"status"`
}

type breakerStatus struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

type breakersResponse struct {
	Status   string          `json:"status"`
	Breakers []breakerStatus `json:"breakers"`
}

// NewHealthServer creates a health server listening on addr. It starts not ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthServer{
		addr:    addr,
		logger:  logger,
		isReady: &atomic.Bool{},
	}
}

// AddBreakers registers a source of circuit breakers. Sources are evaluated on
// every request, so breakers created after start-up are reported too.
// It must be called before Start.
func (h *HealthServer) AddBreakers(src BreakerSource) {
	h.breakers = append(h.breakers, src)
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.handleLiveness)
	mux.HandleFunc("GET /health/ready", h.handleReadiness)
	mux.HandleFunc("GET /health/breakers", h.handleBreakers)
	return mux
}

// Start serves until ctx is cancelled and then shuts down with a 5 second
// grace period. A clean shutdown returns nil.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return Serve(ctx, h.server, h.logger, "health server")
}

// SetReady changes the /health/ready answer.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, _ *http.Request) {
	if h.isReady.Load() {
		h.writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
		return
	}
	h.writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "not ready"})
}

// handleBreakers reports "degraded" while any breaker is open. The status code
// stays 200: an open breaker is not a reason to restart the worker.
func (h *HealthServer) handleBreakers(w http.ResponseWriter, _ *http.Request) {
	resp := breakersResponse{Status: "ok", Breakers: []breakerStatus{}}
	for _, src := range h.breakers {
		for _, cb := range src() {
			if cb == nil {
				continue
			}
			resp.Breakers = append(resp.Breakers, breakerStatus{
				Name:  cb.Name(),
				State: cb.State().String(),
			})
			if cb.IsOpen() {
				resp.Status = "degraded"
			}
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *HealthServer) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

// Serve runs srv until ctx is cancelled, then shuts it down with a 5 second
// grace period. A clean shutdown returns nil.
func Serve(ctx context.Context, srv *http.Server, logger *slog.Logger, name string) error {
	errChan := make(chan error, 1)
	go func() {
		logger.Info(name+" starting", slog.String("addr", srv.Addr))
		errChan <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		logger.Info(name + " shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error(name+" shutdown failed", slog.Any("error", err))
			return err
		}
		logger.Info(name + " stopped")
		return nil

	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error(name+" failed", slog.Any("error", err))
		return err
	}
}
