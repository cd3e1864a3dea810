// Package repository declares the persistence contracts used by the use cases.
package repository

import (
	"context"
	"errors"

	"newsdigest/internal/domain/entity"
)

// ErrDuplicateURL is returned by Create when another article already holds the URL.
var ErrDuplicateURL = errors.New("article url already exists")

// ListFilter narrows List and Count. Empty fields do not filter.
type ListFilter struct {
	// Topic matches as a case-insensitive substring of the stored topic.
	Topic string
	// Query matches as a case-insensitive substring of title or content.
	Query string
}

type ArticleRepository interface {
	// Create inserts the article in its own transaction and sets ID and CreatedAt.
	// A unique violation on url is reported as ErrDuplicateURL.
	Create(ctx context.Context, article *entity.Article) error
	// Get returns (nil, nil) when no article has the id.
	Get(ctx context.Context, id int64) (*entity.Article, error)
	// GetByURL returns (nil, nil) when no article has the url.
	GetByURL(ctx context.Context, url string) (*entity.Article, error)
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// List returns articles ordered by published_at DESC NULLS LAST, created_at DESC.
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*entity.Article, error)
	Count(ctx context.Context, filter ListFilter) (int64, error)
}
