package generator

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Claude generates text with Anthropic's Messages API.
type Claude struct {
	client anthropic.Client
	model  string
	params Params
}

// NewClaude creates a Claude backend. SDK retries are disabled; failures are
// absorbed by the circuit breaker and the enrichment fallback.
func NewClaude(cfg ClaudeConfig, params Params) *Claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Claude{
		client: anthropic.NewClient(opts...),
		model:  cfg.Model,
		params: params,
	}
}

// Generate sends prompt as a single user message and returns the first
// content block, which must be text.
func (c *Claude) Generate(ctx context.Context, prompt string) (string, error) {
	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(c.params.MaxTokens),
		Temperature: anthropic.Float(c.params.Temperature),
		TopP:        anthropic.Float(c.params.TopP),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		return "", ErrEmptyResponse
	}
	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", fmt.Errorf("claude api returned unexpected content type %q", message.Content[0].Type)
	}
	if textBlock.Text == "" {
		return "", ErrEmptyResponse
	}
	return textBlock.Text, nil
}
