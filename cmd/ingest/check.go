package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/scraper"
	"newsdigest/internal/usecase/ingest"
)

// Feed diagnostic statuses.
const (
	statusOK      = "OK"
	statusEmpty   = "EMPTY"
	statusTimeout = "TIMEOUT"
	statusError   = "ERROR"
)

// FeedDiagnostic is the result of reading one feed.
type FeedDiagnostic struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	Status       string `json:"status"`
	ItemCount    int    `json:"item_count"`
	LatestDate   string `json:"latest_date,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	ResponseTime int64  `json:"response_time_ms"`
}

func newCheckCmd() *cobra.Command {
	var (
		timeout time.Duration
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Read every configured feed and report its health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sources, err := loadSources(cmd)
			if err != nil {
				return err
			}

			reader := scraper.NewFeedReader(nil)
			diags := make([]FeedDiagnostic, 0, sources.Len())
			for _, src := range sources.All() {
				diags = append(diags, diagnoseFeed(cmd.Context(), reader, src, timeout))
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(diags)
			}
			return writeDiagnostics(cmd.OutOrStdout(), diags)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 15*time.Second, "timeout per feed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}

func diagnoseFeed(ctx context.Context, feeds ingest.FeedReader, src entity.Source, timeout time.Duration) FeedDiagnostic {
	diag := FeedDiagnostic{Name: src.Name, URL: src.FeedURL}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	entries, err := feeds.Entries(ctx, src)
	if err != nil {
		diag.Status = statusError
		if errors.Is(err, context.DeadlineExceeded) {
			diag.Status = statusTimeout
		}
		diag.ErrorMessage = err.Error()
		diag.ResponseTime = time.Since(start).Milliseconds()
		return diag
	}

	var latest time.Time
	for e := range entries {
		diag.ItemCount++
		if e.PublishedAt != nil && e.PublishedAt.After(latest) {
			latest = *e.PublishedAt
		}
	}
	if !latest.IsZero() {
		diag.LatestDate = latest.UTC().Format(time.RFC3339)
	}

	diag.Status = statusOK
	if diag.ItemCount == 0 {
		diag.Status = statusEmpty
	}
	diag.ResponseTime = time.Since(start).Milliseconds()
	return diag
}

func writeDiagnostics(w io.Writer, diags []FeedDiagnostic) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tITEMS\tLATEST\tTIME\tERROR")
	healthy := 0
	for _, d := range diags {
		if d.Status == statusOK {
			healthy++
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%dms\t%s\n",
			d.Name, d.Status, d.ItemCount, d.LatestDate, d.ResponseTime, d.ErrorMessage)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d/%d feeds healthy\n", healthy, len(diags))
	return err
}
