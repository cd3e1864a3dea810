package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse is returned when a backend answers without any text.
	ErrEmptyResponse = errors.New("generator returned empty response")
	// ErrUnexpectedStatus is returned for a non-2xx HTTP status.
	ErrUnexpectedStatus = errors.New("generator returned unexpected status")
)

// maxErrorBody bounds how much of an error response is kept for the log.
const maxErrorBody = 512

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Ollama generates text with the non-streaming /api/generate endpoint of an
// Ollama server.
type Ollama struct {
	client   *http.Client
	endpoint string
	model    string
	params   Params
}

// NewOllama creates an Ollama backend. timeout bounds the whole HTTP exchange.
func NewOllama(cfg OllamaConfig, params Params, timeout time.Duration) *Ollama {
	return &Ollama{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/api/generate",
		model:    cfg.Model,
		params:   params,
	}
}

// Generate sends prompt to Ollama and returns the "response" field.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  o.model,
		Prompt: prompt,
		Stream: false,
		Options: ollamaOptions{
			Temperature: o.params.Temperature,
			TopP:        o.params.TopP,
			NumPredict:  o.params.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}

	var out ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", ErrEmptyResponse
	}
	return out.Response, nil
}
