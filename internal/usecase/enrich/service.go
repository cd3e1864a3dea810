// Package enrich implements the enrichment contract: summarize an article and
// label it with a topic and a sentiment from closed vocabularies.
//
// The generation backend is an unreliable external system. Every failure mode
// (transport, HTTP status, non-JSON output, schema violations, unknown labels)
// degrades to a well-defined default, so Enrich never fails.
package enrich

import (
	"context"
	"log/slog"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/utils/text"
)

const (
	// MaxInputRunes bounds the content embedded in the prompt.
	MaxInputRunes = 4000
	// FallbackSummaryRunes is the length of the summary used when the model gives none.
	FallbackSummaryRunes = 500
	// rawExcerptRunes bounds model output copied into logs.
	rawExcerptRunes = 300
)

// Generator sends a prompt to a text-generation backend and returns its raw output.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is the enrichment triple. Fallback results have the same shape as
// model results.
type Result struct {
	Summary   string
	Topic     entity.Topic
	Sentiment entity.Sentiment
}

// Fallback returns the default triple for already-truncated content.
func Fallback(truncated string) Result {
	return Result{
		Summary:   fallbackSummary(truncated),
		Topic:     entity.DefaultTopic,
		Sentiment: entity.DefaultSentiment,
	}
}

func fallbackSummary(truncated string) string {
	return text.TruncateRunes(truncated, FallbackSummaryRunes)
}

// Service enriches article content through a Generator.
type Service struct {
	Generator Generator
	logger    *slog.Logger
}

// NewService creates an enrichment Service.
func NewService(gen Generator) *Service {
	return &Service{
		Generator: gen,
		logger:    slog.Default(),
	}
}

// Enrich summarizes and classifies content. It never returns an error; see the
// package documentation.
func (s *Service) Enrich(ctx context.Context, content string) Result {
	truncated := text.TruncateRunes(content, MaxInputRunes)
	start := time.Now()

	raw, err := s.Generator.Generate(ctx, BuildPrompt(truncated))
	if err != nil {
		s.logger.Warn("enrichment call failed, using fallback",
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		metrics.RecordEnrichment(metrics.OutcomeEnrichTransportError)
		return Fallback(truncated)
	}

	result, err := ParseResponse(raw, truncated)
	if err != nil {
		s.logger.Warn("failed to parse enrichment response, using fallback",
			slog.Any("error", err),
			slog.String("raw_excerpt", text.Excerpt(raw, rawExcerptRunes)))
		metrics.RecordEnrichment(metrics.OutcomeEnrichParseError)
		return Fallback(truncated)
	}

	s.logger.Debug("article enriched",
		slog.String("topic", string(result.Topic)),
		slog.String("sentiment", string(result.Sentiment)),
		slog.Duration("duration", time.Since(start)))
	metrics.RecordEnrichment(metrics.OutcomeEnrichOK)
	return result
}
