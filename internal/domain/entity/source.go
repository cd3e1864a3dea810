package entity

import "strings"

// Source describes one RSS feed the ingestion pipeline polls.
type Source struct {
	Name    string
	FeedURL string
}

// Validate checks that the source has a name and a usable feed URL.
func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := ValidateURL("feed_url", s.FeedURL); err != nil {
		return err
	}
	return nil
}
