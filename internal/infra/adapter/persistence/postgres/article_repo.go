package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"newsdigest/internal/domain/entity"
	"newsdigest/internal/repository"
)

// uniqueViolation is the SQLSTATE PostgreSQL reports for a unique constraint failure.
const uniqueViolation = "23505"

const articleColumns = `id, source, title, url, content, published_at, summary, topic, sentiment, image_url, created_at`

type ArticleRepo struct {
	db           *sql.DB
	queryBuilder *ArticleQueryBuilder
}

func NewArticleRepo(db *sql.DB) repository.ArticleRepository {
	return &ArticleRepo{
		db:           db,
		queryBuilder: NewArticleQueryBuilder(),
	}
}

// Create inserts one article inside its own transaction. Any failure rolls the
// transaction back, so a failed insert leaves no partial row behind.
func (repo *ArticleRepo) Create(ctx context.Context, article *entity.Article) (err error) {
	const query = `
INSERT INTO news (source, title, url, content, published_at, summary, topic, sentiment, image_url)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, created_at`

	tx, err := repo.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Create: BeginTx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, query,
		nullString(article.Source),
		article.Title,
		nullString(article.URL),
		article.Content,
		nullTime(article.PublishedAt),
		nullString(article.Summary),
		nullString(string(article.Topic)),
		nullString(string(article.Sentiment)),
		nullString(article.ImageURL),
	).Scan(&article.ID, &article.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: %w", repository.ErrDuplicateURL)
		}
		return fmt.Errorf("Create: %w", err)
	}

	if err = tx.Commit(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Create: Commit: %w", repository.ErrDuplicateURL)
		}
		return fmt.Errorf("Create: Commit: %w", err)
	}
	return nil
}

func (repo *ArticleRepo) Get(ctx context.Context, id int64) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + `
FROM news
WHERE id = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) GetByURL(ctx context.Context, url string) (*entity.Article, error) {
	const query = `SELECT ` + articleColumns + `
FROM news
WHERE url = $1
LIMIT 1`
	article, err := scanArticle(repo.db.QueryRowContext(ctx, query, url))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("GetByURL: %w", err)
	}
	return article, nil
}

func (repo *ArticleRepo) ExistsByURL(ctx context.Context, url string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM news WHERE url = $1)`
	var exists bool
	if err := repo.db.QueryRowContext(ctx, query, url).Scan(&exists); err != nil {
		return false, fmt.Errorf("ExistsByURL: %w", err)
	}
	return exists, nil
}

func (repo *ArticleRepo) List(ctx context.Context, filter repository.ListFilter, limit, offset int) ([]*entity.Article, error) {
	where, args, next := repo.queryBuilder.BuildWhereClause(filter)
	query := `SELECT ` + articleColumns + `
FROM news
` + where + `
ORDER BY published_at DESC NULLS LAST, created_at DESC, id DESC
` + fmt.Sprintf("LIMIT $%d OFFSET $%d", next, next+1)
	args = append(args, limit, offset)

	rows, err := repo.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	articles := make([]*entity.Article, 0, limit)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	return articles, nil
}

func (repo *ArticleRepo) Count(ctx context.Context, filter repository.ListFilter) (int64, error) {
	where, args, _ := repo.queryBuilder.BuildWhereClause(filter)
	query := `SELECT COUNT(*) FROM news ` + where

	var count int64
	if err := repo.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("Count: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (*entity.Article, error) {
	var (
		article                                entity.Article
		source, url, summary, topic, sentiment sql.NullString
		imageURL                               sql.NullString
		publishedAt                            sql.NullTime
	)
	if err := row.Scan(&article.ID, &source, &article.Title, &url, &article.Content,
		&publishedAt, &summary, &topic, &sentiment, &imageURL, &article.CreatedAt); err != nil {
		return nil, err
	}
	article.Source = source.String
	article.URL = url.String
	article.Summary = summary.String
	article.Topic = entity.Topic(topic.String)
	article.Sentiment = entity.Sentiment(sentiment.String)
	article.ImageURL = imageURL.String
	if publishedAt.Valid {
		t := publishedAt.Time
		article.PublishedAt = &t
	}
	return &article, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
