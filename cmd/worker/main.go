package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"newsdigest/internal/config"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/infra/db"
	workerPkg "newsdigest/internal/infra/worker"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/tracing"
	pkgconfig "newsdigest/internal/pkg/config"
	envconfig "newsdigest/pkg/config"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger); err != nil {
		logger.Error("worker failed", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

func run(ctx context.Context, logger *slog.Logger) error {
	shutdownTracing := tracing.NewProvider("newsdigest-worker", envconfig.GetEnvFloat("TRACING_SAMPLE_RATIO", 1.0))
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	// Worker configuration (fail-open: invalid values fall back to defaults)
	workerMetrics := workerPkg.NewWorkerMetrics(prometheus.DefaultRegisterer)
	reporter := pkgconfig.NewReporter(logger, workerMetrics.ConfigMetrics)
	cfg := workerPkg.LoadConfigFromEnv(reporter)
	reporter.Finish()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("worker config: %w", err)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("crawl_timeout", cfg.CrawlTimeout),
		slog.Bool("run_on_start", cfg.RunOnStart),
		slog.Int("health_port", cfg.HealthPort),
		slog.Int("metrics_port", cfg.MetricsPort))

	sources, err := config.LoadSources(envconfig.GetEnvString("SOURCES_FILE", ""))
	if err != nil {
		return err
	}

	database, err := initDatabase(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	pipeline, err := workerPkg.NewPipeline(sources.All(), database, prometheus.DefaultRegisterer, logger)
	if err != nil {
		return err
	}

	job := workerPkg.NewJob(pipeline.Service, cfg.CrawlTimeout, workerMetrics, logger)
	scheduler, err := workerPkg.NewScheduler(cfg, job, workerMetrics, logger)
	if err != nil {
		return err
	}

	healthServer := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	healthServer.AddBreakers(pipeline.Breakers)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return healthServer.Start(gctx) })
	g.Go(func() error { return runMetricsServer(gctx, logger, cfg.MetricsPort) })
	g.Go(func() error {
		if cfg.RunOnStart {
			// Errors are logged and counted by the job; the schedule keeps going.
			_, _ = job.Run(gctx)
		}
		scheduler.Run(gctx)
		return nil
	})

	healthServer.SetReady(true)
	logger.Info("worker started",
		slog.Int("sources", sources.Len()),
		slog.String("schedule", cfg.CronSchedule))

	err = g.Wait()
	healthServer.SetReady(false)
	return err
}

// initDatabase opens the pool and makes sure the schema exists.
func initDatabase(ctx context.Context) (*sql.DB, error) {
	database, err := db.Open(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return database, nil
}
