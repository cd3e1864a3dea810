// Package article provides the HTTP handlers for the /news endpoints.
package article

import (
	"time"

	"newsdigest/internal/domain/entity"
)

// DTO is the article JSON. Unset optional fields are null.
type DTO struct {
	ID          int64      `json:"id"`
	Source      *string    `json:"source"`
	Title       string     `json:"title"`
	URL         *string    `json:"url"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"published_at"`
	Summary     *string    `json:"summary"`
	Topic       string     `json:"topic"`
	Sentiment   string     `json:"sentiment"`
	ImageURL    *string    `json:"image_url"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toDTO(a *entity.Article) DTO {
	out := DTO{
		ID:        a.ID,
		Source:    optional(a.Source),
		Title:     a.Title,
		URL:       optional(a.URL),
		Content:   a.Content,
		Summary:   optional(a.Summary),
		Topic:     string(a.Topic),
		Sentiment: string(a.Sentiment),
		ImageURL:  optional(a.ImageURL),
		CreatedAt: a.CreatedAt.UTC(),
	}
	if a.PublishedAt != nil {
		p := a.PublishedAt.UTC()
		out.PublishedAt = &p
	}
	return out
}

func toDTOs(items []*entity.Article) []DTO {
	out := make([]DTO, 0, len(items))
	for _, a := range items {
		out = append(out, toDTO(a))
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
