package generator

import (
	"context"
	"errors"
)

// ErrNoopBackend is returned by every NoOp call.
var ErrNoopBackend = errors.New("generator disabled")

// NoOp is a backend that never produces output. Every article then receives
// the enrichment fallback, which makes it usable offline and in development.
type NoOp struct{}

// NewNoOp creates a NoOp backend.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Generate always returns ErrNoopBackend.
func (NoOp) Generate(context.Context, string) (string, error) {
	return "", ErrNoopBackend
}
