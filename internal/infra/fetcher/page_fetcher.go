// Package fetcher downloads article pages and extracts their text and a
// representative image.
package fetcher

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"newsdigest/internal/observability/metrics"
	"newsdigest/internal/resilience/circuitbreaker"
	"newsdigest/internal/usecase/ingest"
)

// fetchedPage is the raw result of a successful GET.
type fetchedPage struct {
	html     []byte
	finalURL *url.URL
}

// PageFetcher implements ingest.PageFetcher. It is safe for concurrent use.
type PageFetcher struct {
	client         *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	config         Config
	extractor      Extractor
	logger         *slog.Logger
}

// NewPageFetcher creates a PageFetcher. A nil extractor selects the one
// named in config.
func NewPageFetcher(config Config, extractor Extractor) *PageFetcher {
	if extractor == nil {
		extractor = NewExtractor(config.Extractor)
	}

	f := &PageFetcher{
		circuitBreaker: circuitbreaker.New(circuitbreaker.PageFetchConfig()),
		config:         config,
		extractor:      extractor,
		logger:         slog.Default(),
	}

	f.client = &http.Client{
		Timeout: config.Timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > f.config.MaxRedirects {
				return fmt.Errorf("%w: %d redirects", ErrTooManyRedirects, len(via))
			}
			// Redirect targets get the same checks as the original URL.
			if err := validateURL(req.Context(), req.URL.String(), f.config.DenyPrivateIPs); err != nil {
				return fmt.Errorf("redirect target validation failed: %w", err)
			}
			return nil
		},
	}

	return f
}

// Breaker returns the circuit breaker shared by all page downloads.
func (f *PageFetcher) Breaker() *circuitbreaker.CircuitBreaker {
	return f.circuitBreaker
}

// FetchPage downloads urlStr and extracts its text and image. Any failure is
// logged and yields an empty Page.
func (f *PageFetcher) FetchPage(ctx context.Context, urlStr string) ingest.Page {
	start := time.Now()

	page, err := f.fetch(ctx, urlStr)
	if err != nil {
		f.logger.WarnContext(ctx, "failed to fetch article page",
			slog.String("url", urlStr),
			slog.Any("error", err),
			slog.Duration("duration", time.Since(start)))
		metrics.RecordContentFetch(false, time.Since(start), 0)
		return ingest.Page{}
	}

	text, image := f.extractor.Extract(page.html, page.finalURL)
	metrics.RecordContentFetch(true, time.Since(start), len(text))

	return ingest.Page{
		Text:     text,
		HTML:     string(page.html),
		ImageURL: image,
	}
}

func (f *PageFetcher) fetch(ctx context.Context, urlStr string) (fetchedPage, error) {
	if err := validateURL(ctx, urlStr, f.config.DenyPrivateIPs); err != nil {
		return fetchedPage{}, err
	}

	return circuitbreaker.Do(f.circuitBreaker, func() (fetchedPage, error) {
		return f.doFetch(ctx, urlStr)
	})
}

// doFetch performs the HTTP request without the circuit breaker.
func (f *PageFetcher) doFetch(ctx context.Context, urlStr string) (fetchedPage, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, urlStr, nil)
	if err != nil {
		return fetchedPage{}, fmt.Errorf("%w: failed to create request: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", BrowserUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		// Unwrap so redirect-policy sentinels stay matchable.
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil {
			return fetchedPage{}, urlErr.Err
		}
		return fetchedPage{}, fmt.Errorf("http request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fetchedPage{}, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodySize+1))
	if err != nil {
		return fetchedPage{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > f.config.MaxBodySize {
		return fetchedPage{}, fmt.Errorf("%w: exceeds limit %d bytes", ErrBodyTooLarge, f.config.MaxBodySize)
	}

	finalURL := resp.Request.URL
	return fetchedPage{html: body, finalURL: finalURL}, nil
}
