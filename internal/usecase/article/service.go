package article

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsdigest/internal/common/pagination"
	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// CreateInput represents the input parameters for creating a new article.
// Optional fields use their zero value for "absent".
type CreateInput struct {
	Source      string
	Title       string
	URL         string
	Content     string
	PublishedAt *time.Time
	ImageURL    string
}

// ListResult is one page of a filtered listing.
type ListResult struct {
	Total int64
	Items []*entity.Article
}

// Service provides article use cases.
type Service struct {
	Repo       repository.ArticleRepository
	Pagination pagination.Config
}

// NewService creates a Service with the default pagination limits.
func NewService(repo repository.ArticleRepository) *Service {
	return &Service{Repo: repo, Pagination: pagination.DefaultConfig()}
}

// CreateOrGet stores a manually submitted article. When the URL is already
// stored the existing record is returned and created is false. Articles
// created here are not enriched: topic general, sentiment neutral and no
// summary.
func (s *Service) CreateOrGet(ctx context.Context, in CreateInput) (art *entity.Article, created bool, err error) {
	art = &entity.Article{
		Source:      strings.TrimSpace(in.Source),
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Content:     in.Content,
		PublishedAt: in.PublishedAt,
		ImageURL:    strings.TrimSpace(in.ImageURL),
		Topic:       entity.DefaultTopic,
		Sentiment:   entity.DefaultSentiment,
	}
	if err := art.Validate(); err != nil {
		return nil, false, err
	}

	if art.URL != "" {
		existing, err := s.Repo.GetByURL(ctx, art.URL)
		if err != nil {
			return nil, false, fmt.Errorf("get article by url: %w", err)
		}
		if existing != nil {
			return existing, false, nil
		}
	}

	if err := s.Repo.Create(ctx, art); err != nil {
		if !errors.Is(err, repository.ErrDuplicateURL) {
			return nil, false, fmt.Errorf("create article: %w", err)
		}
		// Lost an insert race; the other writer's row is the answer.
		existing, getErr := s.Repo.GetByURL(ctx, art.URL)
		if getErr != nil {
			return nil, false, fmt.Errorf("get article after duplicate: %w", getErr)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("create article: %w", err)
		}
		slog.InfoContext(ctx, "article created concurrently, returning stored record",
			slog.String("url", art.URL),
			slog.Int64("id", existing.ID))
		return existing, false, nil
	}
	return art, true, nil
}

// List returns one page of articles matching filter together with the total
// number of matches.
func (s *Service) List(ctx context.Context, filter repository.ListFilter, params pagination.Params) (*ListResult, error) {
	if err := params.Validate(s.Pagination); err != nil {
		return nil, err
	}
	filter.Topic = strings.TrimSpace(filter.Topic)
	filter.Query = strings.TrimSpace(filter.Query)

	total, err := s.Repo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count articles: %w", err)
	}

	items, err := s.Repo.List(ctx, filter, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}

	return &ListResult{Total: total, Items: items}, nil
}

// Get retrieves a single article by its ID.
// Returns ErrInvalidArticleID if the ID is not positive.
// Returns ErrArticleNotFound if the article does not exist.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Article, error) {
	if id <= 0 {
		return nil, ErrInvalidArticleID
	}

	article, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get article: %w", err)
	}
	if article == nil {
		return nil, ErrArticleNotFound
	}
	return article, nil
}
