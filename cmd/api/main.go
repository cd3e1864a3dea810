package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"newsdigest/internal/common/pagination"
	hhttp "newsdigest/internal/handler/http"
	harticle "newsdigest/internal/handler/http/article"
	"newsdigest/internal/handler/http/respond"
	pgRepo "newsdigest/internal/infra/adapter/persistence/postgres"
	"newsdigest/internal/infra/db"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/observability/tracing"
	artUC "newsdigest/internal/usecase/article"
	"newsdigest/pkg/config"
)

// maxBodyBytes limits POST /news bodies.
const maxBodyBytes = 1 << 20

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.NewProvider("newsdigest-api", config.GetEnvFloat("TRACING_SAMPLE_RATIO", 1.0))
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Error("failed to shut down tracer provider", slog.Any("error", err))
		}
	}()

	database := initDatabase(ctx, logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := config.GetEnvString("VERSION", "dev")
	handler := setupServer(logger, database, version)

	if err := runServer(ctx, logger, handler, version); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// initLogger builds the JSON logger from LOG_LEVEL and installs it as default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initDatabase opens the pool and creates the schema.
func initDatabase(ctx context.Context, logger *slog.Logger) *sql.DB {
	database, err := db.Open(ctx)
	if err != nil {
		logger.Error("failed to open database", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupServer wires repositories, routes and the middleware chain.
func setupServer(logger *slog.Logger, database *sql.DB, version string) http.Handler {
	repo := pgRepo.NewArticleRepo(database)
	artSvc := artUC.NewService(repo)
	artSvc.Pagination = pagination.LoadFromEnv()

	mux := http.NewServeMux()
	harticle.Register(mux, artSvc, logger)

	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Articles: repo, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	requestTimeout := config.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	logger.Info("routes registered",
		slog.Int("pagination_default_limit", artSvc.Pagination.DefaultLimit),
		slog.Int("pagination_max_limit", artSvc.Pagination.MaxLimit),
		slog.Duration("request_timeout", requestTimeout))

	return applyMiddleware(logger, mux, requestTimeout)
}

// applyMiddleware wraps handler, outermost first:
// Request ID → Recovery → Tracing → Logging → Metrics → Input validation → Timeout
func applyMiddleware(logger *slog.Logger, handler http.Handler, requestTimeout time.Duration) http.Handler {
	return hhttp.Chain(handler,
		hhttp.RequestID,
		hhttp.Recover(logger),
		tracing.Middleware,
		hhttp.Logging(logger),
		hhttp.MetricsMiddleware,
		hhttp.InputValidation(maxBodyBytes),
		hhttp.Timeout(requestTimeout),
	)
}

// runServer serves until ctx is cancelled and then shuts down gracefully.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler, version string) error {
	addr := config.GetEnvString("HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris
		BaseContext: func(_ net.Listener) context.Context {
			return context.WithoutCancel(ctx)
		},
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
