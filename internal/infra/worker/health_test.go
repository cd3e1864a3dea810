package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/infra/worker"
	"newsdigest/internal/resilience/circuitbreaker"
)

/* ───── ヘルパ ───── */

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

/* ───── テスト ───── */

func TestHealthServer_Liveness(t *testing.T) {
	hs := worker.NewHealthServer(":0", nopLogger())

	rec, body := get(t, hs.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", body["status"])
}

func TestHealthServer_Readiness(t *testing.T) {
	hs := worker.NewHealthServer(":0", nopLogger())

	rec, body := get(t, hs.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body["status"])

	hs.SetReady(true)
	rec, body = get(t, hs.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])

	hs.SetReady(false)
	rec, _ = get(t, hs.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthServer_Breakers(t *testing.T) {
	closed := circuitbreaker.New(circuitbreaker.DefaultConfig("generator-noop"))
	open := circuitbreaker.New(circuitbreaker.FeedFetchConfig("down.example.com"))
	for range 10 {
		_, _ = open.Execute(func() (any, error) { return nil, errors.New("boom") })
	}
	require.True(t, open.IsOpen())

	t.Run("no sources", func(t *testing.T) {
		hs := worker.NewHealthServer(":0", nopLogger())
		rec, body := get(t, hs.Handler(), "/health/breakers")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", body["status"])
		assert.Empty(t, body["breakers"])
	})

	t.Run("all closed", func(t *testing.T) {
		hs := worker.NewHealthServer(":0", nopLogger())
		hs.AddBreakers(func() []*circuitbreaker.CircuitBreaker { return []*circuitbreaker.CircuitBreaker{closed, nil} })
		_, body := get(t, hs.Handler(), "/health/breakers")
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, []any{map[string]any{"name": "generator-noop", "state": "closed"}}, body["breakers"])
	})

	t.Run("one open is degraded but 200", func(t *testing.T) {
		hs := worker.NewHealthServer(":0", nopLogger())
		hs.AddBreakers(func() []*circuitbreaker.CircuitBreaker { return []*circuitbreaker.CircuitBreaker{closed} })
		hs.AddBreakers(func() []*circuitbreaker.CircuitBreaker { return []*circuitbreaker.CircuitBreaker{open} })
		rec, body := get(t, hs.Handler(), "/health/breakers")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "degraded", body["status"])
		assert.Len(t, body["breakers"], 2)
	})
}

func TestHealthServer_StartAndShutdown(t *testing.T) {
	addr := freeAddr(t)
	hs := worker.NewHealthServer(addr, nopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hs.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("Start did not return after cancellation")
	}
}

func TestHealthServer_StartFailsOnBusyPort(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	hs := worker.NewHealthServer(l.Addr().String(), nopLogger())
	err = hs.Start(context.Background())
	assert.Error(t, err)
}
