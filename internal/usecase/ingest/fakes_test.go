package ingest_test

import (
	"context"
	"errors"
	"iter"
	"slices"
	"sync"
	"time"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
	"newsdigest/internal/usecase/enrich"
	"newsdigest/internal/usecase/ingest"
)

/* ───── フェイク ───── */

// memRepo is an in-memory ArticleRepository with a unique url constraint.
type memRepo struct {
	mu        sync.Mutex
	articles  []*entity.Article
	createErr error
	existsErr error
	// raceURLs are reported as absent by ExistsByURL but rejected by Create.
	raceURLs map[string]bool
}

func (r *memRepo) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.raceURLs[a.URL] {
		return repository.ErrDuplicateURL
	}
	for _, existing := range r.articles {
		if a.URL != "" && existing.URL == a.URL {
			return repository.ErrDuplicateURL
		}
	}
	a.ID = int64(len(r.articles) + 1)
	a.CreatedAt = time.Now()
	cp := *a
	r.articles = append(r.articles, &cp)
	return nil
}

func (r *memRepo) Get(_ context.Context, id int64) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memRepo) GetByURL(_ context.Context, url string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.URL == url {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	if r.existsErr != nil {
		return false, r.existsErr
	}
	a, _ := r.GetByURL(ctx, url)
	return a != nil, nil
}

func (r *memRepo) List(context.Context, repository.ListFilter, int, int) ([]*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.articles), nil
}

func (r *memRepo) Count(context.Context, repository.ListFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.articles)), nil
}

func (r *memRepo) stored() []*entity.Article {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.articles)
}

// stubFeeds serves fixed entries per feed URL.
type stubFeeds struct {
	entries map[string][]ingest.FeedEntry
	errs    map[string]error
	calls   []string
}

func (f *stubFeeds) Entries(_ context.Context, src entity.Source) (iter.Seq[ingest.FeedEntry], error) {
	f.calls = append(f.calls, src.Name)
	if err := f.errs[src.FeedURL]; err != nil {
		return nil, err
	}
	return slices.Values(f.entries[src.FeedURL]), nil
}

// stubPages serves fixed pages per URL; unknown URLs yield an empty page.
type stubPages struct {
	pages   map[string]ingest.Page
	fetched []string
}

func (p *stubPages) FetchPage(_ context.Context, url string) ingest.Page {
	p.fetched = append(p.fetched, url)
	return p.pages[url]
}

// fixedEnricher returns the same result for every call.
type fixedEnricher struct {
	result   enrich.Result
	inputs   []string
	onEnrich func()
}

func (e *fixedEnricher) Enrich(_ context.Context, content string) enrich.Result {
	e.inputs = append(e.inputs, content)
	if e.onEnrich != nil {
		e.onEnrich()
	}
	return e.result
}

// failingGenerator simulates a backend that never answers in time.
type failingGenerator struct{ err error }

func (g failingGenerator) Generate(context.Context, string) (string, error) {
	return "", g.err
}

var errBoom = errors.New("boom")

func techResult() enrich.Result {
	return enrich.Result{Summary: "sum", Topic: entity.TopicTechnology, Sentiment: entity.SentimentPositive}
}
