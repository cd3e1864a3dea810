// Package scraper reads RSS and Atom feeds with the gofeed library.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/usecase/ingest"
)

const (
	// DefaultTimeout bounds one feed download.
	DefaultTimeout = 10 * time.Second
	// maxFeedSize bounds the feed body read into memory.
	maxFeedSize = 10 * 1024 * 1024
)

// ErrUnexpectedStatus indicates a non-2xx feed response.
var ErrUnexpectedStatus = errors.New("unexpected feed status")

// FeedReader implements ingest.FeedReader. Each feed host gets its own
// circuit breaker so one dead site does not affect the others.
type FeedReader struct {
	client *http.Client
	parser *gofeed.Parser
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*circuitbreaker.CircuitBreaker
}

// NewFeedReader creates a FeedReader. A nil client gets DefaultTimeout.
func NewFeedReader(client *http.Client) *FeedReader {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &FeedReader{
		client:   client,
		parser:   gofeed.NewParser(),
		logger:   slog.Default(),
		breakers: make(map[string]*circuitbreaker.CircuitBreaker),
	}
}

// Entries downloads and parses the feed of src. Entries are converted
// lazily in feed order while the sequence is ranged over.
func (r *FeedReader) Entries(ctx context.Context, src entity.Source) (iter.Seq[ingest.FeedEntry], error) {
	start := time.Now()

	feed, err := circuitbreaker.Do(r.breakerFor(src.FeedURL), func() (*gofeed.Feed, error) {
		return r.fetch(ctx, src.FeedURL)
	})
	metrics.RecordFeedFetch(src.Name, err == nil, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read feed %s: %w", src.Name, err)
	}

	r.logger.DebugContext(ctx, "feed parsed",
		slog.String("source", src.Name),
		slog.Int("items", len(feed.Items)),
		slog.Duration("duration", time.Since(start)))

	items := feed.Items
	return func(yield func(ingest.FeedEntry) bool) {
		for _, it := range items {
			if it == nil {
				continue
			}
			if !yield(toEntry(it)) {
				return
			}
		}
	}, nil
}

// fetch performs the HTTP request and parse without the circuit breaker.
func (r *FeedReader) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", fetcher.BrowserUserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := r.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

// Breakers returns the per-host circuit breakers created so far, ordered by
// name.
func (r *FeedReader) Breakers() []*circuitbreaker.CircuitBreaker {
	r.mu.Lock()
	out := make([]*circuitbreaker.CircuitBreaker, 0, len(r.breakers))
	for _, cb := range r.breakers {
		out = append(out, cb)
	}
	r.mu.Unlock()

	slices.SortFunc(out, func(a, b *circuitbreaker.CircuitBreaker) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return out
}

func (r *FeedReader) breakerFor(feedURL string) *circuitbreaker.CircuitBreaker {
	host := feedURL
	if u, err := url.Parse(feedURL); err == nil && u.Host != "" {
		host = u.Host
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	cb, ok := r.breakers[host]
	if !ok {
		cb = circuitbreaker.New(circuitbreaker.FeedFetchConfig(host))
		r.breakers[host] = cb
	}
	return cb
}

func toEntry(it *gofeed.Item) ingest.FeedEntry {
	entry := ingest.FeedEntry{
		Title:     strings.TrimSpace(it.Title),
		Link:      strings.TrimSpace(it.Link),
		Summary:   strings.TrimSpace(it.Description),
		MediaURLs: mediaURLs(it),
	}

	switch {
	case it.PublishedParsed != nil:
		t := *it.PublishedParsed
		entry.PublishedAt = &t
	case it.UpdatedParsed != nil:
		t := *it.UpdatedParsed
		entry.PublishedAt = &t
	}
	return entry
}

// mediaURLs collects image candidates: enclosures, media:content,
// media:thumbnail, then the same two inside media:group.
func mediaURLs(it *gofeed.Item) []string {
	var urls []string
	add := func(u string) {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}

	for _, enc := range it.Enclosures {
		if enc != nil {
			add(enc.URL)
		}
	}

	media := it.Extensions["media"]
	for _, name := range []string{"content", "thumbnail"} {
		for _, e := range media[name] {
			add(e.Attrs["url"])
		}
	}
	for _, group := range media["group"] {
		for _, name := range []string{"content", "thumbnail"} {
			for _, e := range childExtensions(group, name) {
				add(e.Attrs["url"])
			}
		}
	}
	return urls
}

func childExtensions(e ext.Extension, name string) []ext.Extension {
	if e.Children == nil {
		return nil
	}
	return e.Children[name]
}
