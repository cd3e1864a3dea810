// Package generator provides the text-generation backends used for article
// enrichment: a local Ollama server, OpenAI-compatible chat completion APIs
// and Anthropic's Claude. Every backend is wrapped by Guarded, which adds a
// circuit breaker, an optional rate limit and Prometheus metrics.
package generator

import (
	"errors"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"

	pkgconfig "newsdigest/internal/pkg/config"
	envconfig "newsdigest/pkg/config"
)

// Backend names accepted by ENRICHER_BACKEND.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
	BackendClaude = "claude"
	BackendNoop   = "noop"
)

var (
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown generator backend")
	// ErrMissingAPIKey is returned when a hosted backend has no API key.
	ErrMissingAPIKey = errors.New("generator api key is required")
)

// Params are the sampling options shared by every backend.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
}

// OllamaConfig configures the Ollama backend.
type OllamaConfig struct {
	BaseURL string
	Model   string
}

// OpenAIConfig configures the OpenAI backend. BaseURL may point at any
// OpenAI-compatible server.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// ClaudeConfig configures the Claude backend.
type ClaudeConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Config selects and configures the generation backend.
type Config struct {
	// Backend is one of ollama, openai, claude, noop.
	Backend string

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// RatePerMinute caps generation calls. 0 means unlimited.
	RatePerMinute int

	Params Params
	Ollama OllamaConfig
	OpenAI OpenAIConfig
	Claude ClaudeConfig
}

// DefaultConfig returns the configuration for a local Ollama server.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendOllama,
		Timeout:       120 * time.Second,
		RatePerMinute: 0,
		Params: Params{
			Temperature: 0.1,
			TopP:        0.9,
			MaxTokens:   512,
		},
		Ollama: OllamaConfig{
			BaseURL: "http://localhost:11434",
			Model:   "llama3.1",
		},
		OpenAI: OpenAIConfig{
			BaseURL: "https://api.openai.com/v1",
			Model:   "gpt-4o-mini",
		},
		Claude: ClaudeConfig{
			Model: string(anthropic.ModelClaudeSonnet4_5_20250929),
		},
	}
}

// Validate checks the configuration for the selected backend.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.RatePerMinute < 0 {
		return fmt.Errorf("rate per minute must not be negative, got %d", c.RatePerMinute)
	}
	if c.Params.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", c.Params.MaxTokens)
	}

	switch c.Backend {
	case BackendOllama:
		if err := pkgconfig.ValidateHTTPURL(c.Ollama.BaseURL); err != nil {
			return fmt.Errorf("ollama base url: %w", err)
		}
		if c.Ollama.Model == "" {
			return errors.New("ollama model is required")
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai: %w", ErrMissingAPIKey)
		}
	case BackendClaude:
		if c.Claude.APIKey == "" {
			return fmt.Errorf("claude: %w", ErrMissingAPIKey)
		}
	case BackendNoop:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	return nil
}

func validateBackend(name string) error {
	switch name {
	case BackendOllama, BackendOpenAI, BackendClaude, BackendNoop:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrUnknownBackend, name)
}

// LoadConfigFromEnv loads the generator configuration. Invalid values fall
// back to the defaults and are reported through r.
//
// Environment variables:
//   - ENRICHER_BACKEND (ollama)
//   - ENRICHER_TIMEOUT (120s)
//   - ENRICHER_RATE_PER_MINUTE (0, unlimited)
//   - ENRICHER_TEMPERATURE (0.1), ENRICHER_TOP_P (0.9), ENRICHER_MAX_TOKENS (512)
//   - OLLAMA_BASE_URL, OLLAMA_MODEL
//   - OPENAI_API_KEY, OPENAI_BASE_URL, OPENAI_MODEL
//   - ANTHROPIC_API_KEY, ANTHROPIC_BASE_URL, CLAUDE_MODEL
func LoadConfigFromEnv(r *pkgconfig.Reporter) Config {
	cfg := DefaultConfig()

	cfg.Backend = pkgconfig.Report(r, "enricher_backend",
		pkgconfig.LoadEnvWithFallback("ENRICHER_BACKEND", cfg.Backend, validateBackend))
	cfg.Timeout = pkgconfig.Report(r, "enricher_timeout",
		pkgconfig.LoadEnvDuration("ENRICHER_TIMEOUT", cfg.Timeout, func(d time.Duration) error {
			return pkgconfig.ValidateDuration(d, time.Second, 10*time.Minute)
		}))
	cfg.RatePerMinute = pkgconfig.Report(r, "enricher_rate_per_minute",
		pkgconfig.LoadEnvInt("ENRICHER_RATE_PER_MINUTE", cfg.RatePerMinute, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 0, 6000)
		}))
	cfg.Params.Temperature = pkgconfig.Report(r, "enricher_temperature",
		pkgconfig.LoadEnvFloat("ENRICHER_TEMPERATURE", cfg.Params.Temperature, func(v float64) error {
			return pkgconfig.ValidateFloatRange(v, 0, 2)
		}))
	cfg.Params.TopP = pkgconfig.Report(r, "enricher_top_p",
		pkgconfig.LoadEnvFloat("ENRICHER_TOP_P", cfg.Params.TopP, func(v float64) error {
			return pkgconfig.ValidateFloatRange(v, 0, 1)
		}))
	cfg.Params.MaxTokens = pkgconfig.Report(r, "enricher_max_tokens",
		pkgconfig.LoadEnvInt("ENRICHER_MAX_TOKENS", cfg.Params.MaxTokens, func(v int) error {
			return pkgconfig.ValidateIntRange(v, 1, 8192)
		}))

	cfg.Ollama.BaseURL = pkgconfig.Report(r, "ollama_base_url",
		pkgconfig.LoadEnvWithFallback("OLLAMA_BASE_URL", cfg.Ollama.BaseURL, pkgconfig.ValidateHTTPURL))
	cfg.Ollama.Model = envconfig.GetEnvString("OLLAMA_MODEL", cfg.Ollama.Model)

	cfg.OpenAI.APIKey = envconfig.GetEnvString("OPENAI_API_KEY", "")
	cfg.OpenAI.BaseURL = pkgconfig.Report(r, "openai_base_url",
		pkgconfig.LoadEnvWithFallback("OPENAI_BASE_URL", cfg.OpenAI.BaseURL, pkgconfig.ValidateHTTPURL))
	cfg.OpenAI.Model = envconfig.GetEnvString("OPENAI_MODEL", cfg.OpenAI.Model)

	cfg.Claude.APIKey = envconfig.GetEnvString("ANTHROPIC_API_KEY", "")
	cfg.Claude.BaseURL = envconfig.GetEnvString("ANTHROPIC_BASE_URL", "")
	cfg.Claude.Model = envconfig.GetEnvString("CLAUDE_MODEL", cfg.Claude.Model)

	return cfg
}
