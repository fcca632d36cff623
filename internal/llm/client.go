// Package llm wraps the hosted OpenAI-compatible providers: Groq for chat
// completion and an embeddings endpoint (local Ollama by default).
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"lorebot/internal/config"
)

// Client issues completion calls against a Groq-style chat endpoint. One
// request per call, no retries: failures surface to the caller.
type Client struct {
	llm         *openai.LLM
	maxTokens   int
	temperature float64
}

// NewClient builds a completion client from config. The HTTP timeout bounds
// the whole request; there is no user-facing cancellation beyond it.
func NewClient(cfg config.GroqConfig) (*Client, error) {
	model, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing completion client: %w", err)
	}
	return &Client{
		llm:         model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
	}, nil
}

// Complete sends one prompt to the configured model and returns the trimmed
// response text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("completion: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// CompleteWithModel is Complete with a per-call model override. The reranker
// uses it to score on a faster model than the answering one.
func (c *Client) CompleteWithModel(ctx context.Context, model, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt,
		llms.WithModel(model),
		llms.WithMaxTokens(c.maxTokens),
		llms.WithTemperature(c.temperature),
	)
	if err != nil {
		return "", fmt.Errorf("completion (%s): %w", model, err)
	}
	return strings.TrimSpace(out), nil
}
