package fetcher_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"newsdigest/internal/infra/fetcher"
	pkgconfig "newsdigest/internal/pkg/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := fetcher.DefaultConfig()

	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxBodySize)
	assert.Equal(t, 5, cfg.MaxRedirects)
	assert.False(t, cfg.DenyPrivateIPs)
	assert.Equal(t, fetcher.ExtractorHeuristic, cfg.Extractor)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*fetcher.Config)
	}{
		{name: "zero timeout", mutate: func(c *fetcher.Config) { c.Timeout = 0 }},
		{name: "tiny body", mutate: func(c *fetcher.Config) { c.MaxBodySize = 10 }},
		{name: "huge body", mutate: func(c *fetcher.Config) { c.MaxBodySize = 1 << 40 }},
		{name: "negative redirects", mutate: func(c *fetcher.Config) { c.MaxRedirects = -1 }},
		{name: "too many redirects", mutate: func(c *fetcher.Config) { c.MaxRedirects = 11 }},
		{name: "unknown extractor", mutate: func(c *fetcher.Config) { c.Extractor = "mercury" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := fetcher.DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("CONTENT_FETCH_TIMEOUT", "5s")
	t.Setenv("CONTENT_FETCH_MAX_REDIRECTS", "3")
	t.Setenv("CONTENT_FETCH_DENY_PRIVATE_IPS", "true")
	t.Setenv("CONTENT_EXTRACTOR", "readability")
	t.Setenv("CONTENT_FETCH_MAX_BODY_SIZE", "12")

	r := pkgconfig.NewReporter(nil, pkgconfig.NewConfigMetrics("fetcher_test", prometheus.NewRegistry()))
	cfg := fetcher.LoadConfigFromEnv(r)

	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 3, cfg.MaxRedirects)
	assert.True(t, cfg.DenyPrivateIPs)
	assert.Equal(t, fetcher.ExtractorReadability, cfg.Extractor)
	assert.Equal(t, fetcher.DefaultConfig().MaxBodySize, cfg.MaxBodySize, "out-of-range size falls back")
	assert.True(t, r.Finish())
}
