package entity

import (
	"fmt"
	"net/url"
)

// ValidateURL checks that raw is an absolute http(s) URL with a host that
// fits the url columns. field names the offending input in the returned
// *ValidationError ("url", "feed_url").
//
// Private or loopback hosts pass here; the page fetcher decides about those
// when it resolves the host.
func ValidateURL(field, raw string) error {
	switch {
	case raw == "":
		return &ValidationError{Field: field, Message: field + " is required"}
	case len(raw) > maxURLColumn:
		return &ValidationError{Field: field, Message: fmt.Sprintf("%s must not exceed %d characters", field, maxURLColumn)}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Field: field, Message: field + " is malformed"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: field, Message: field + " must use http or https"}
	}
	if u.Hostname() == "" {
		return &ValidationError{Field: field, Message: field + " must have a host"}
	}
	return nil
}
