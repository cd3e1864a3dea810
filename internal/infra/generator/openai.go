package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAI generates text through the chat completion API. Any server that
// speaks the OpenAI protocol works, including Ollama's /v1 endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
	params Params
}

// NewOpenAI creates an OpenAI backend.
func NewOpenAI(cfg OpenAIConfig, params Params) *OpenAI {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		params: params,
	}
}

// Generate sends prompt as a single user message.
func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		}},
		Temperature: float32(o.params.Temperature),
		TopP:        float32(o.params.TopP),
		MaxTokens:   o.params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Choices can be empty on content-filtered responses.
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
