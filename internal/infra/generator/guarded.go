package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"newsdigest/internal/resilience/circuitbreaker"
)

// Backend is a single text-generation API.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Guarded wraps a Backend with a per-call timeout, an optional rate limit, a
// circuit breaker and request metrics.
type Guarded struct {
	name    string
	next    Backend
	breaker *circuitbreaker.CircuitBreaker
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger
}

// NewGuarded wraps next. ratePerMinute <= 0 disables the limiter.
func NewGuarded(name string, next Backend, timeout time.Duration, ratePerMinute int) *Guarded {
	g := &Guarded{
		name:    name,
		next:    next,
		breaker: circuitbreaker.New(circuitbreaker.GeneratorConfig(name)),
		timeout: timeout,
		logger:  slog.Default(),
	}
	if ratePerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(ratePerMinute)), 1)
	}
	return g
}

// Name returns the backend name.
func (g *Guarded) Name() string {
	return g.name
}

// Breaker exposes the circuit breaker for health reporting.
func (g *Guarded) Breaker() *circuitbreaker.CircuitBreaker {
	return g.breaker
}

// Generate implements enrich.Generator.
func (g *Guarded) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			recordRequest(g.name, resultRateLimited, 0)
			return "", fmt.Errorf("generator rate limit: %w", err)
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := circuitbreaker.Do(g.breaker, func() (string, error) {
		return g.next.Generate(ctx, prompt)
	})
	duration := time.Since(start)

	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen):
		recordRequest(g.name, resultCircuitOpen, duration)
		g.logger.WarnContext(ctx, "generator circuit breaker open, request rejected",
			slog.String("backend", g.name),
			slog.String("state", g.breaker.State().String()))
		return "", fmt.Errorf("%s unavailable: %w", g.name, err)
	case err != nil:
		recordRequest(g.name, resultFailure, duration)
		return "", err
	}

	recordRequest(g.name, resultSuccess, duration)
	g.logger.DebugContext(ctx, "generation completed",
		slog.String("backend", g.name),
		slog.Int("output_length", len(out)),
		slog.Duration("duration", duration))
	return out, nil
}
