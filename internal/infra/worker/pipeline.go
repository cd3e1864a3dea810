package worker

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"newsdigest/internal/domain/entity"
	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/infra/generator"
	"newsdigest/internal/infra/scraper"
	pkgconfig "newsdigest/internal/pkg/config"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/usecase/enrich"
	"newsdigest/internal/usecase/ingest"
)

// Pipeline is a fully wired ingestion service plus the components whose
// breakers are reported on /health/breakers.
type Pipeline struct {
	Service   *ingest.Service
	Feeds     *scraper.FeedReader
	Pages     *fetcher.PageFetcher
	Generator *generator.Guarded
}

// NewPipeline loads the fetcher and generator configuration from the
// environment and wires the ingestion service for sources. Config fallback
// metrics are registered with reg.
func NewPipeline(sources []entity.Source, database *sql.DB, reg prometheus.Registerer, logger *slog.Logger) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fr := pkgconfig.NewReporter(logger, pkgconfig.NewConfigMetrics("content_fetch", reg))
	fetchCfg := fetcher.LoadConfigFromEnv(fr)
	fr.Finish()
	if err := fetchCfg.Validate(); err != nil {
		return nil, fmt.Errorf("content fetch config: %w", err)
	}

	gr := pkgconfig.NewReporter(logger, pkgconfig.NewConfigMetrics("enricher", reg))
	genCfg := generator.LoadConfigFromEnv(gr)
	gr.Finish()
	gen, err := generator.New(genCfg)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	p := &Pipeline{
		Feeds:     scraper.NewFeedReader(nil),
		Pages:     fetcher.NewPageFetcher(fetchCfg, nil),
		Generator: gen,
	}
	p.Service = ingest.NewService(
		sources,
		p.Feeds,
		p.Pages,
		enrich.NewService(gen),
		pgRepo.NewArticleRepo(database),
	)

	logger.Info("ingestion pipeline initialized",
		slog.Int("sources", len(sources)),
		slog.String("extractor", fetchCfg.Extractor),
		slog.Bool("deny_private_ips", fetchCfg.DenyPrivateIPs),
		slog.String("generator", gen.Name()))
	return p, nil
}

// Breakers lists every circuit breaker of the pipeline.
func (p *Pipeline) Breakers() []*circuitbreaker.CircuitBreaker {
	out := []*circuitbreaker.CircuitBreaker{p.Generator.Breaker(), p.Pages.Breaker()}
	return append(out, p.Feeds.Breakers()...)
}
