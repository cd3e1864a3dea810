package ingest

import (
	"context"
	"iter"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/usecase/enrich"
)

// FeedEntry is one item of a parsed feed.
type FeedEntry struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt *time.Time
	// MediaURLs holds candidate image URLs in priority order.
	MediaURLs []string
}

// MediaURL returns the first non-empty media URL, or "".
func (e FeedEntry) MediaURL() string {
	for _, u := range e.MediaURLs {
		if u != "" {
			return u
		}
	}
	return ""
}

// Page is the result of fetching an article page. A failed fetch is an
// empty Page.
type Page struct {
	Text     string
	HTML     string
	ImageURL string
}

// FeedReader reads the entries of one source.
type FeedReader interface {
	Entries(ctx context.Context, src entity.Source) (iter.Seq[FeedEntry], error)
}

// PageFetcher downloads an article page and extracts its text and image.
// It never fails; failures yield an empty Page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) Page
}

// Enricher summarizes and classifies article content.
type Enricher interface {
	Enrich(ctx context.Context, content string) enrich.Result
}

// RunStats summarizes one pipeline run.
type RunStats struct {
	Sources     int
	Entries     int
	Inserted    int
	Duplicated  int
	Skipped     int
	FeedErrors  int
	StoreErrors int
	Duration    time.Duration
}
