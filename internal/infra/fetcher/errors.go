package fetcher

import "errors"

// Sentinel errors for page fetching. They never leave FetchPage, which
// degrades to an empty page, but they are logged and asserted in tests.
var (
	// ErrInvalidURL indicates a URL that is not absolute http(s) with a host.
	ErrInvalidURL = errors.New("invalid url")

	// ErrPrivateIP indicates a URL that resolves to a private, loopback or
	// link-local address while DenyPrivateIPs is enabled.
	ErrPrivateIP = errors.New("url resolves to private ip address")

	// ErrTooManyRedirects indicates the redirect chain exceeded MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrUnexpectedStatus indicates a non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

var errEmptyDocument = errors.New("empty html document")
