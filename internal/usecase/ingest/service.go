// Package ingest runs the ingestion pipeline: read each configured feed,
// skip known URLs, fetch and extract the article page, enrich the content
// and store the result.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/observability/tracing"
	"newsdigest/internal/repository"
	"newsdigest/internal/utils/text"
)

const (
	maxTitleRunes = 500
	maxImageURL   = 1000
)

// Service runs the pipeline over a fixed list of sources. Sources are
// processed one at a time, entries in feed order.
type Service struct {
	sources     []entity.Source
	feeds       FeedReader
	pages       PageFetcher
	enricher    Enricher
	articleRepo repository.ArticleRepository
	logger      *slog.Logger
}

// NewService creates an ingestion Service. The sources slice is copied.
func NewService(
	sources []entity.Source,
	feeds FeedReader,
	pages PageFetcher,
	enricher Enricher,
	articleRepo repository.ArticleRepository,
) *Service {
	return &Service{
		sources:     append([]entity.Source(nil), sources...),
		feeds:       feeds,
		pages:       pages,
		enricher:    enricher,
		articleRepo: articleRepo,
		logger:      slog.Default(),
	}
}

// Run performs one pass over every source. Feed and store failures are
// logged, counted and skipped. Only cancellation of ctx stops the run early;
// the partial stats are returned together with the context error.
func (s *Service) Run(ctx context.Context) (*RunStats, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.Run",
		trace.WithAttributes(attribute.Int("ingest.sources", len(s.sources))))
	defer span.End()

	start := time.Now()
	stats := &RunStats{}

	err := s.run(ctx, stats)

	stats.Duration = time.Since(start)
	metrics.RecordIngestRun(stats.Duration)
	span.SetAttributes(
		attribute.Int("ingest.entries", stats.Entries),
		attribute.Int("ingest.inserted", stats.Inserted),
	)

	attrs := []any{
		slog.Int("sources", stats.Sources),
		slog.Int("entries", stats.Entries),
		slog.Int("inserted", stats.Inserted),
		slog.Int("duplicated", stats.Duplicated),
		slog.Int("skipped", stats.Skipped),
		slog.Int("feed_errors", stats.FeedErrors),
		slog.Int("store_errors", stats.StoreErrors),
		slog.Duration("duration", stats.Duration),
	}
	if err != nil {
		tracing.RecordError(span, err)
		s.logger.WarnContext(ctx, "ingestion run interrupted", append(attrs, slog.Any("error", err))...)
		return stats, err
	}

	s.logger.InfoContext(ctx, "ingestion run completed", attrs...)
	return stats, nil
}

func (s *Service) run(ctx context.Context, stats *RunStats) error {
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Sources++
		if err := s.processSource(ctx, src, stats); err != nil {
			return err
		}
	}
	return nil
}

// processSource returns an error only when ctx is done.
func (s *Service) processSource(ctx context.Context, src entity.Source, stats *RunStats) error {
	ctx, span := tracing.GetTracer().Start(ctx, "ingest.source",
		trace.WithAttributes(
			attribute.String("source.name", src.Name),
			attribute.String("source.feed_url", src.FeedURL),
		))
	defer span.End()

	s.logger.InfoContext(ctx, "fetching feed",
		slog.String("source", src.Name),
		slog.String("feed_url", src.FeedURL))

	entries, err := s.feeds.Entries(ctx, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		stats.FeedErrors++
		tracing.RecordError(span, err)
		s.logger.ErrorContext(ctx, "failed to fetch feed, skipping source",
			slog.String("source", src.Name),
			slog.String("feed_url", src.FeedURL),
			slog.Any("error", err))
		return nil
	}

	for entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Entries++
		outcome := s.processEntry(ctx, src, entry)
		switch outcome {
		case metrics.OutcomeInserted:
			stats.Inserted++
		case metrics.OutcomeDuplicate:
			stats.Duplicated++
		case metrics.OutcomeStoreError:
			stats.StoreErrors++
		default:
			stats.Skipped++
		}
		metrics.RecordIngestOutcome(src.Name, outcome)
	}
	return nil
}

// processEntry runs one entry through the pipeline and returns its outcome.
func (s *Service) processEntry(ctx context.Context, src entity.Source, entry FeedEntry) string {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		s.logger.DebugContext(ctx, "skipping entry without title or link",
			slog.String("source", src.Name),
			slog.String("title", title),
			slog.String("url", link))
		return metrics.OutcomeSkipped
	}

	exists, err := s.articleRepo.ExistsByURL(ctx, link)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to check article url",
			slog.String("url", link),
			slog.Any("error", err))
		return metrics.OutcomeStoreError
	}
	if exists {
		return metrics.OutcomeDuplicate
	}

	page := s.pages.FetchPage(ctx, link)
	content := firstNonEmpty(page.Text, entry.Summary, title)
	if content == "" {
		return metrics.OutcomeSkipped
	}

	image := firstNonEmpty(boundedImage(entry.MediaURL()), boundedImage(page.ImageURL))

	result := s.enricher.Enrich(ctx, content)

	art := &entity.Article{
		Source:      src.Name,
		Title:       text.TruncateRunes(title, maxTitleRunes),
		URL:         link,
		Content:     content,
		PublishedAt: entry.PublishedAt,
		Summary:     result.Summary,
		Topic:       result.Topic,
		Sentiment:   result.Sentiment,
		ImageURL:    image,
	}
	if err := art.Validate(); err != nil {
		s.logger.WarnContext(ctx, "skipping invalid article",
			slog.String("url", link),
			slog.Any("error", err))
		return metrics.OutcomeSkipped
	}

	if err := s.articleRepo.Create(ctx, art); err != nil {
		if errors.Is(err, repository.ErrDuplicateURL) {
			s.logger.InfoContext(ctx, "article already stored",
				slog.String("url", link))
			return metrics.OutcomeDuplicate
		}
		s.logger.ErrorContext(ctx, "failed to store article",
			slog.String("url", link),
			slog.Any("error", fmt.Errorf("create article: %w", err)))
		return metrics.OutcomeStoreError
	}

	s.logger.InfoContext(ctx, "article stored",
		slog.Int64("id", art.ID),
		slog.String("source", src.Name),
		slog.String("title", art.Title),
		slog.String("topic", string(art.Topic)),
		slog.String("sentiment", string(art.Sentiment)),
		slog.Bool("has_image", art.ImageURL != ""))
	return metrics.OutcomeInserted
}

// boundedImage drops image URLs too long for the image_url column.
func boundedImage(u string) string {
	if len(u) > maxImageURL {
		return ""
	}
	return u
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
