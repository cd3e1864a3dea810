package fetcher

import (
	"fmt"
	"time"

	pkgconfig "newsdigest/internal/pkg/config"
)

// BrowserUserAgent is sent with every feed and page request. Several news
// sites answer non-browser agents with a consent wall or a 403.
const BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Extractor names accepted by CONTENT_EXTRACTOR.
const (
	ExtractorHeuristic   = "heuristic"
	ExtractorReadability = "readability"
)

// Config holds the configuration for article page fetching.
type Config struct {
	// Timeout bounds a single page request, redirects included.
	// Default: 10s
	Timeout time.Duration

	// MaxBodySize is enforced while reading, not from Content-Length.
	// Default: 10MB
	MaxBodySize int64

	// MaxRedirects is the maximum number of redirects to follow.
	// Default: 5
	MaxRedirects int

	// DenyPrivateIPs rejects URLs (and redirect targets) resolving to
	// private addresses.
	// Default: false
	DenyPrivateIPs bool

	// Extractor selects the text extraction algorithm.
	// Default: heuristic
	Extractor string
}

// DefaultConfig returns the default page fetch configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:        10 * time.Second,
		MaxBodySize:    10 * 1024 * 1024,
		MaxRedirects:   5,
		DenyPrivateIPs: false,
		Extractor:      ExtractorHeuristic,
	}
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}

	minBodySize := int64(1024)
	maxBodySize := int64(100 * 1024 * 1024)
	if c.MaxBodySize < minBodySize || c.MaxBodySize > maxBodySize {
		return fmt.Errorf("max body size must be between %d and %d bytes, got %d", minBodySize, maxBodySize, c.MaxBodySize)
	}

	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	return validateExtractor(c.Extractor)
}

func validateExtractor(name string) error {
	switch name {
	case ExtractorHeuristic, ExtractorReadability:
		return nil
	}
	return fmt.Errorf("unknown extractor %q (want %s or %s)", name, ExtractorHeuristic, ExtractorReadability)
}

// LoadConfigFromEnv loads the configuration from environment variables.
// Invalid values fall back to the defaults and are reported through r.
//
// Environment variables:
//   - CONTENT_FETCH_TIMEOUT: duration string, e.g. "10s"
//   - CONTENT_FETCH_MAX_BODY_SIZE: integer in bytes
//   - CONTENT_FETCH_MAX_REDIRECTS: integer
//   - CONTENT_FETCH_DENY_PRIVATE_IPS: boolean
//   - CONTENT_EXTRACTOR: "heuristic" or "readability"
func LoadConfigFromEnv(r *pkgconfig.Reporter) Config {
	cfg := DefaultConfig()

	cfg.Timeout = pkgconfig.Report(r, "content_fetch_timeout",
		pkgconfig.LoadEnvDuration("CONTENT_FETCH_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Second, 2*time.Minute)
		}))
	cfg.MaxBodySize = int64(pkgconfig.Report(r, "content_fetch_max_body_size",
		pkgconfig.LoadEnvInt("CONTENT_FETCH_MAX_BODY_SIZE", int(cfg.MaxBodySize), func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1024, 100*1024*1024)
		})))
	cfg.MaxRedirects = pkgconfig.Report(r, "content_fetch_max_redirects",
		pkgconfig.LoadEnvInt("CONTENT_FETCH_MAX_REDIRECTS", cfg.MaxRedirects, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 0, 10)
		}))
	cfg.DenyPrivateIPs = pkgconfig.Report(r, "content_fetch_deny_private_ips",
		pkgconfig.LoadEnvBool("CONTENT_FETCH_DENY_PRIVATE_IPS", cfg.DenyPrivateIPs))
	cfg.Extractor = pkgconfig.Report(r, "content_extractor",
		pkgconfig.LoadEnvWithFallback("CONTENT_EXTRACTOR", cfg.Extractor, validateExtractor))

	return cfg
}
