// Package entity defines the core domain entities and validation logic for the application.
// It contains the Article and Source business objects, the closed topic and sentiment
// vocabularies used by enrichment, and domain-specific errors.
package entity

import (
	"strings"
	"time"

	"newsdigest/internal/utils/text"
)

// Article represents a news article stored by the aggregator.
// Optional string fields use the empty string for "unset"; the persistence
// layer maps them to NULL.
type Article struct {
	ID          int64
	Source      string
	Title       string
	URL         string
	Content     string
	PublishedAt *time.Time
	Summary     string
	Topic       Topic
	Sentiment   Sentiment
	ImageURL    string
	CreatedAt   time.Time
}

const (
	maxTitleLength = 500
	maxURLColumn   = 1000
)

// Validate checks the invariants that must hold before an article is persisted.
// Topic and Sentiment must already be normalised; use ParseTopic and ParseSentiment
// for untrusted input.
func (a *Article) Validate() error {
	if strings.TrimSpace(a.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if text.CountRunes(a.Title) > maxTitleLength {
		return &ValidationError{Field: "title", Message: "title must not exceed 500 characters"}
	}
	if strings.TrimSpace(a.Content) == "" {
		return &ValidationError{Field: "content", Message: "content is required"}
	}
	if a.URL != "" {
		if err := ValidateURL("url", a.URL); err != nil {
			return err
		}
	}
	if a.ImageURL != "" && len(a.ImageURL) > maxURLColumn {
		return &ValidationError{Field: "image_url", Message: "image_url must not exceed 1000 characters"}
	}
	if !a.Topic.Valid() {
		return &ValidationError{Field: "topic", Message: "unknown topic " + string(a.Topic)}
	}
	if !a.Sentiment.Valid() {
		return &ValidationError{Field: "sentiment", Message: "unknown sentiment " + string(a.Sentiment)}
	}
	return nil
}
