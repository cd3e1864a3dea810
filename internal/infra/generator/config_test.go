package generator_test

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/infra/generator"
	pkgconfig "newsdigest/internal/pkg/config"
)

func newReporter() *pkgconfig.Reporter {
	return pkgconfig.NewReporter(nil, pkgconfig.NewConfigMetrics("generator_test", prometheus.NewRegistry()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := generator.DefaultConfig()

	assert.Equal(t, generator.BackendOllama, cfg.Backend)
	assert.Equal(t, 120*time.Second, cfg.Timeout)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.BaseURL)
	assert.Equal(t, "llama3.1", cfg.Ollama.Model)
	assert.Equal(t, generator.Params{Temperature: 0.1, TopP: 0.9, MaxTokens: 512}, cfg.Params)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*generator.Config)
		wantErr error
		ok      bool
	}{
		{name: "noop", mutate: func(c *generator.Config) { c.Backend = generator.BackendNoop }, ok: true},
		{name: "unknown backend", mutate: func(c *generator.Config) { c.Backend = "gemini" }, wantErr: generator.ErrUnknownBackend},
		{name: "openai without key", mutate: func(c *generator.Config) { c.Backend = generator.BackendOpenAI }, wantErr: generator.ErrMissingAPIKey},
		{name: "claude without key", mutate: func(c *generator.Config) { c.Backend = generator.BackendClaude }, wantErr: generator.ErrMissingAPIKey},
		{
			name: "openai with key",
			mutate: func(c *generator.Config) {
				c.Backend = generator.BackendOpenAI
				c.OpenAI.APIKey = "sk"
			},
			ok: true,
		},
		{name: "zero timeout", mutate: func(c *generator.Config) { c.Timeout = 0 }},
		{name: "negative rate", mutate: func(c *generator.Config) { c.RatePerMinute = -1 }},
		{name: "bad ollama url", mutate: func(c *generator.Config) { c.Ollama.BaseURL = "localhost:11434" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := generator.DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("ENRICHER_BACKEND", "openai")
	t.Setenv("ENRICHER_TIMEOUT", "30s")
	t.Setenv("ENRICHER_RATE_PER_MINUTE", "20")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_BASE_URL", "http://localhost:11434/v1")
	t.Setenv("OPENAI_MODEL", "llama3.1")

	r := newReporter()
	cfg := generator.LoadConfigFromEnv(r)

	assert.False(t, r.Finish())
	assert.Equal(t, generator.BackendOpenAI, cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 20, cfg.RatePerMinute)
	assert.Equal(t, "sk-env", cfg.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:11434/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "llama3.1", cfg.OpenAI.Model)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFromEnv_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("ENRICHER_BACKEND", "gemini")
	t.Setenv("ENRICHER_TIMEOUT", "forever")
	t.Setenv("ENRICHER_TOP_P", "1.5")
	t.Setenv("OLLAMA_BASE_URL", "not a url")

	r := newReporter()
	cfg := generator.LoadConfigFromEnv(r)

	assert.True(t, r.Finish())
	def := generator.DefaultConfig()
	assert.Equal(t, def.Backend, cfg.Backend)
	assert.Equal(t, def.Timeout, cfg.Timeout)
	assert.Equal(t, def.Params.TopP, cfg.Params.TopP)
	assert.Equal(t, def.Ollama.BaseURL, cfg.Ollama.BaseURL)
}

func TestNew_BuildsConfiguredBackend(t *testing.T) {
	cfg := generator.DefaultConfig()
	cfg.Backend = generator.BackendNoop

	g, err := generator.New(cfg)
	require.NoError(t, err)
	assert.Equal(t, "noop", g.Name())

	cfg.Backend = generator.BackendClaude
	_, err = generator.New(cfg)
	assert.ErrorIs(t, err, generator.ErrMissingAPIKey)
}
