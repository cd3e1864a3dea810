// Command ingest runs one-off maintenance tasks: a single ingestion run,
// schema creation, listing the configured feeds and checking their health.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"newsdigest/internal/config"
	"newsdigest/internal/handler/http/respond"
	"newsdigest/internal/infra/db"
	workerPkg "newsdigest/internal/infra/worker"
	"newsdigest/internal/observability/logging"
	"newsdigest/internal/usecase/ingest"
	envconfig "newsdigest/pkg/config"
)

func main() {
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logger.Error("command failed", slog.String("error", respond.SanitizeError(err)))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ingest",
		Short:         "One-off ingestion and maintenance commands for newsdigest",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("sources", envconfig.GetEnvString("SOURCES_FILE", ""),
		"YAML sources file (default: built-in list)")

	root.AddCommand(newRunCmd(), newMigrateCmd(), newSourcesCmd(), newCheckCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the ingestion pipeline once and print the stats",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := loadSources(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			database, err := openDatabase(ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			pipeline, err := workerPkg.NewPipeline(sources.All(), database, prometheus.DefaultRegisterer, slog.Default())
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			stats, runErr := pipeline.Service.Run(ctx)
			printStats(cmd.OutOrStdout(), stats)
			return runErr
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", envconfig.GetEnvDuration("CRAWL_TIMEOUT", 30*time.Minute),
		"upper bound for the whole run")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func newSourcesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sources",
		Short: "List the configured feeds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := loadSources(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFEED URL")
			for _, src := range sources.All() {
				fmt.Fprintf(tw, "%s\t%s\n", src.Name, src.FeedURL)
			}
			return tw.Flush()
		},
	}
}

func loadSources(cmd *cobra.Command) (config.Sources, error) {
	path, err := cmd.Flags().GetString("sources")
	if err != nil {
		return config.Sources{}, err
	}
	return config.LoadSources(path)
}

// openDatabase opens the pool and creates the schema; every command that
// touches the store needs both.
func openDatabase(ctx context.Context) (*sql.DB, error) {
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

func printStats(w io.Writer, stats *ingest.RunStats) {
	if stats == nil {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "sources\t%d\n", stats.Sources)
	fmt.Fprintf(tw, "entries\t%d\n", stats.Entries)
	fmt.Fprintf(tw, "inserted\t%d\n", stats.Inserted)
	fmt.Fprintf(tw, "duplicated\t%d\n", stats.Duplicated)
	fmt.Fprintf(tw, "skipped\t%d\n", stats.Skipped)
	fmt.Fprintf(tw, "feed errors\t%d\n", stats.FeedErrors)
	fmt.Fprintf(tw, "store errors\t%d\n", stats.StoreErrors)
	fmt.Fprintf(tw, "duration\t%s\n", stats.Duration.Round(time.Millisecond))
	_ = tw.Flush()
}
