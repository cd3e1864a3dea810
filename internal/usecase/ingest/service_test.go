package ingest_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/infra/fetcher"
	"newsdigest/internal/infra/scraper"
	"newsdigest/internal/usecase/enrich"
	"newsdigest/internal/usecase/ingest"
)

var (
	srcA = entity.Source{Name: "A", FeedURL: "https://a.example.com/rss"}
	srcB = entity.Source{Name: "B", FeedURL: "https://b.example.com/rss"}
)

func entry(title, link string) ingest.FeedEntry {
	return ingest.FeedEntry{Title: title, Link: link}
}

func TestRun_EndToEnd_EnrichmentTimeoutFallsBack(t *testing.T) {
	html := `<article><p>Hello</p><p>World</p></article>`
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {entry("T", "http://x/a")},
	}}
	pages := &stubPages{pages: map[string]ingest.Page{
		"http://x/a": {Text: fetcher.ExtractText(html), HTML: html},
	}}
	enricher := enrich.NewService(failingGenerator{err: context.DeadlineExceeded})
	repo := &memRepo{}

	stats, err := ingest.NewService([]entity.Source{srcA}, feeds, pages, enricher, repo).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Inserted)
	stored := repo.stored()
	require.Len(t, stored, 1)
	assert.Equal(t, "T", stored[0].Title)
	assert.Equal(t, "http://x/a", stored[0].URL)
	assert.Equal(t, "A", stored[0].Source)
	assert.Equal(t, "Hello World", stored[0].Content)
	assert.Equal(t, "Hello World", stored[0].Summary)
	assert.Equal(t, entity.TopicGeneral, stored[0].Topic)
	assert.Equal(t, entity.SentimentNeutral, stored[0].Sentiment)
	assert.Empty(t, stored[0].ImageURL)
}

func TestRun_Idempotent(t *testing.T) {
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {entry("One", "https://a.example.com/1"), entry("Two", "https://a.example.com/2")},
	}}
	pages := &stubPages{pages: map[string]ingest.Page{}}
	repo := &memRepo{}
	svc := ingest.NewService([]entity.Source{srcA}, feeds, pages, &fixedEnricher{result: techResult()}, repo)

	first, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, first.Inserted)

	second, err := svc.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 2, second.Duplicated)
	assert.Len(t, repo.stored(), 2)
	// Known URLs are not fetched again.
	assert.Len(t, pages.fetched, 2)
}

func TestRun_ContentFallbackOrder(t *testing.T) {
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {
			{Title: "Page wins", Link: "https://a.example.com/1", Summary: "feed summary"},
			{Title: "Summary wins", Link: "https://a.example.com/2", Summary: "feed summary"},
			{Title: "Title wins", Link: "https://a.example.com/3"},
		},
	}}
	pages := &stubPages{pages: map[string]ingest.Page{
		"https://a.example.com/1": {Text: "page text"},
		"https://a.example.com/2": {Text: "   "},
	}}
	enricher := &fixedEnricher{result: techResult()}
	repo := &memRepo{}

	_, err := ingest.NewService([]entity.Source{srcA}, feeds, pages, enricher, repo).Run(context.Background())
	require.NoError(t, err)

	stored := repo.stored()
	require.Len(t, stored, 3)
	assert.Equal(t, "page text", stored[0].Content)
	assert.Equal(t, "feed summary", stored[1].Content)
	assert.Equal(t, "Title wins", stored[2].Content)
	assert.Equal(t, []string{"page text", "feed summary", "Title wins"}, enricher.inputs)
}

func TestRun_ImagePriority(t *testing.T) {
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {
			{Title: "Media", Link: "https://a.example.com/1", MediaURLs: []string{"", "https://cdn/feed.jpg"}},
			{Title: "Page", Link: "https://a.example.com/2"},
			{Title: "None", Link: "https://a.example.com/3"},
		},
	}}
	pages := &stubPages{pages: map[string]ingest.Page{
		"https://a.example.com/1": {Text: "x", ImageURL: "https://cdn/page1.jpg"},
		"https://a.example.com/2": {Text: "y", ImageURL: "https://cdn/page2.jpg"},
		"https://a.example.com/3": {Text: "z"},
	}}
	repo := &memRepo{}

	_, err := ingest.NewService([]entity.Source{srcA}, feeds, pages, &fixedEnricher{result: techResult()}, repo).Run(context.Background())
	require.NoError(t, err)

	stored := repo.stored()
	require.Len(t, stored, 3)
	assert.Equal(t, "https://cdn/feed.jpg", stored[0].ImageURL)
	assert.Equal(t, "https://cdn/page2.jpg", stored[1].ImageURL)
	assert.Empty(t, stored[2].ImageURL)
}

func TestRun_OversizedFeedImageFallsBackToPageImage(t *testing.T) {
	long := "https://cdn/" + strings.Repeat("a", 1000) + ".jpg"
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {
			{Title: "Long", Link: "https://a.example.com/1", MediaURLs: []string{long}},
			{Title: "Both long", Link: "https://a.example.com/2", MediaURLs: []string{long}},
		},
	}}
	pages := &stubPages{pages: map[string]ingest.Page{
		"https://a.example.com/1": {Text: "x", ImageURL: "https://cdn/og.jpg"},
		"https://a.example.com/2": {Text: "y", ImageURL: long},
	}}
	repo := &memRepo{}

	_, err := ingest.NewService([]entity.Source{srcA}, feeds, pages, &fixedEnricher{result: techResult()}, repo).Run(context.Background())
	require.NoError(t, err)

	stored := repo.stored()
	require.Len(t, stored, 2)
	assert.Equal(t, "https://cdn/og.jpg", stored[0].ImageURL)
	assert.Empty(t, stored[1].ImageURL)
}

func TestRun_SkipsEntriesWithoutTitleOrLink(t *testing.T) {
	feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
		srcA.FeedURL: {
			entry("", "https://a.example.com/1"),
			entry("No link", "  "),
			entry("Ok", "https://a.example.com/3"),
		},
	}}
	repo := &memRepo{}

	stats, err := ingest.NewService([]entity.Source{srcA}, feeds, &stubPages{}, &fixedEnricher{result: techResult()}, repo).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 2, stats.Skipped)
	assert.Equal(t, 1, stats.Inserted)
}

func TestRun_FeedErrorContinuesWithNextSource(t *testing.T) {
	feeds := &stubFeeds{
		entries: map[string][]ingest.FeedEntry{srcB.FeedURL: {entry("B1", "https://b.example.com/1")}},
		errs:    map[string]error{srcA.FeedURL: errBoom},
	}
	repo := &memRepo{}

	stats, err := ingest.NewService([]entity.Source{srcA, srcB}, feeds, &stubPages{}, &fixedEnricher{result: techResult()}, repo).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Sources)
	assert.Equal(t, 1, stats.FeedErrors)
	assert.Equal(t, 1, stats.Inserted)
	assert.Equal(t, []string{"A", "B"}, feeds.calls)
}

func TestRun_StoreErrors(t *testing.T) {
	t.Run("create failure is counted and the batch continues", func(t *testing.T) {
		feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
			srcA.FeedURL: {entry("One", "https://a.example.com/1"), entry("Two", "https://a.example.com/2")},
		}}
		repo := &memRepo{createErr: errBoom}
		enricher := &fixedEnricher{result: techResult()}

		stats, err := ingest.NewService([]entity.Source{srcA}, feeds, &stubPages{}, enricher, repo).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 2, stats.StoreErrors)
		assert.Len(t, enricher.inputs, 2)
		assert.Empty(t, repo.stored())
	})

	t.Run("lookup failure skips the entry", func(t *testing.T) {
		feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
			srcA.FeedURL: {entry("One", "https://a.example.com/1")},
		}}
		repo := &memRepo{existsErr: errBoom}
		enricher := &fixedEnricher{result: techResult()}

		stats, err := ingest.NewService([]entity.Source{srcA}, feeds, &stubPages{}, enricher, repo).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.StoreErrors)
		assert.Empty(t, enricher.inputs)
	})

	t.Run("duplicate race counts as duplicated", func(t *testing.T) {
		feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
			srcA.FeedURL: {entry("One", "https://a.example.com/1")},
		}}
		repo := &memRepo{raceURLs: map[string]bool{"https://a.example.com/1": true}}

		stats, err := ingest.NewService([]entity.Source{srcA}, feeds, &stubPages{}, &fixedEnricher{result: techResult()}, repo).Run(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, stats.Duplicated)
		assert.Equal(t, 0, stats.StoreErrors)
	})
}

func TestRun_ContextCancellation(t *testing.T) {
	t.Run("canceled before start", func(t *testing.T) {
		feeds := &stubFeeds{}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats, err := ingest.NewService([]entity.Source{srcA, srcB}, feeds, &stubPages{}, &fixedEnricher{}, &memRepo{}).Run(ctx)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, stats.Sources)
		assert.Empty(t, feeds.calls)
	})

	t.Run("canceled between entries keeps partial stats", func(t *testing.T) {
		feeds := &stubFeeds{entries: map[string][]ingest.FeedEntry{
			srcA.FeedURL: {entry("One", "https://a.example.com/1"), entry("Two", "https://a.example.com/2")},
			srcB.FeedURL: {entry("B1", "https://b.example.com/1")},
		}}
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		enricher := &fixedEnricher{result: techResult(), onEnrich: cancel}
		repo := &memRepo{}

		stats, err := ingest.NewService([]entity.Source{srcA, srcB}, feeds, &stubPages{}, enricher, repo).Run(ctx)

		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, stats.Entries)
		assert.Equal(t, 1, stats.Inserted)
		assert.Equal(t, []string{"A"}, feeds.calls)
	})
}

func TestRun_WithFeedReaderAndPageFetcher(t *testing.T) {
	mux := http.NewServeMux()
	var base string
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>Local</title>
<item><title>Story</title><link>%[1]s/story</link><pubDate>Tue, 02 Jan 2024 10:00:00 +0000</pubDate></item>
<item><title>Broken</title><link>%[1]s/missing</link><description>Only the feed summary</description></item>
</channel></rss>`, base)
	})
	mux.HandleFunc("/story", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><meta property="og:image" content="/lead.jpg"></head>
<body><div class="post-content"><p>Full</p><p>story.</p></div></body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	cfg := fetcher.DefaultConfig()
	cfg.Timeout = 2 * time.Second
	repo := &memRepo{}
	svc := ingest.NewService(
		[]entity.Source{{Name: "Local", FeedURL: srv.URL + "/rss"}},
		scraper.NewFeedReader(nil),
		fetcher.NewPageFetcher(cfg, nil),
		&fixedEnricher{result: techResult()},
		repo,
	)

	stats, err := svc.Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inserted)
	stored := repo.stored()
	require.Len(t, stored, 2)

	assert.Equal(t, "Full story.", stored[0].Content)
	assert.Equal(t, srv.URL+"/lead.jpg", stored[0].ImageURL)
	require.NotNil(t, stored[0].PublishedAt)
	assert.True(t, stored[0].PublishedAt.Equal(time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)))

	assert.Equal(t, "Only the feed summary", stored[1].Content)
	assert.Nil(t, stored[1].PublishedAt)
}
