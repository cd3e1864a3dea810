package generator

import "log/slog"

// New builds the configured backend wrapped in Guarded.
func New(cfg Config) (*Guarded, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var backend Backend
	var model string
	switch cfg.Backend {
	case BackendOllama:
		backend = NewOllama(cfg.Ollama, cfg.Params, cfg.Timeout)
		model = cfg.Ollama.Model
	case BackendOpenAI:
		backend = NewOpenAI(cfg.OpenAI, cfg.Params)
		model = cfg.OpenAI.Model
	case BackendClaude:
		backend = NewClaude(cfg.Claude, cfg.Params)
		model = cfg.Claude.Model
	default:
		backend = NewNoOp()
	}

	slog.Info("Initialized generator",
		slog.String("backend", cfg.Backend),
		slog.String("model", model),
		slog.Duration("timeout", cfg.Timeout),
		slog.Int("rate_per_minute", cfg.RatePerMinute))

	return NewGuarded(cfg.Backend, backend, cfg.Timeout, cfg.RatePerMinute), nil
}
