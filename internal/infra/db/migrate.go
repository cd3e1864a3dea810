package db

import (
	"context"
	"database/sql"
	"fmt"
)

const createNewsTable = `
CREATE TABLE IF NOT EXISTS news (
    id           BIGSERIAL PRIMARY KEY,
    source       VARCHAR(255),
    title        VARCHAR(500) NOT NULL,
    url          VARCHAR(1000),
    content      TEXT NOT NULL,
    published_at TIMESTAMPTZ,
    summary      TEXT,
    topic        VARCHAR(32),
    sentiment    VARCHAR(16),
    image_url    VARCHAR(1000),
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT uq_news_url UNIQUE (url)
)`

// 語彙制約: enrich のフォールバック値以外は入らない
const addVocabularyConstraints = `
DO $$
BEGIN
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_news_topic') THEN
        ALTER TABLE news ADD CONSTRAINT chk_news_topic
        CHECK (topic IN ('politics', 'economy', 'technology', 'sports', 'health', 'entertainment', 'world', 'general'));
    END IF;
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_news_sentiment') THEN
        ALTER TABLE news ADD CONSTRAINT chk_news_sentiment
        CHECK (sentiment IN ('positive', 'negative', 'neutral'));
    END IF;
END $$;`

var indexes = []string{
	// ORDER BY published_at DESC NULLS LAST, created_at DESC
	`CREATE INDEX IF NOT EXISTS idx_news_published_at ON news (published_at DESC NULLS LAST, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_news_topic ON news (topic)`,
}

// pg_trgm がない環境でも起動できるよう失敗は無視する
var searchIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_news_title_trgm ON news USING gin (title gin_trgm_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_news_content_trgm ON news USING gin (content gin_trgm_ops)`,
}

// MigrateUp creates the news table, its constraints and indexes. It is idempotent.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createNewsTable); err != nil {
		return fmt.Errorf("create news table: %w", err)
	}

	if _, err := db.ExecContext(ctx, addVocabularyConstraints); err != nil {
		return fmt.Errorf("add vocabulary constraints: %w", err)
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}

	// pg_trgm拡張を有効化(ILIKE検索高速化用)
	_, _ = db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS pg_trgm`)
	for _, idx := range searchIndexes {
		_, _ = db.ExecContext(ctx, idx)
	}

	return nil
}
