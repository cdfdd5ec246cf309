// Package llm is the source of assistant text. Providers turn a system
// prompt and a conversation into a reply; they know nothing about drawings.
package llm

import (
	"context"
	"fmt"
	"time"

	"sketch-editor/tools/config"
)

// Client is the interface for LLM providers
type Client interface {
	Complete(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error)
	CompleteWithRetry(ctx context.Context, systemPrompt string, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error)
}

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config selects and authenticates a provider. It is passed explicitly;
// nothing in this package reads the environment.
type Config struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// NewClient builds the client named by cfg.Provider.
func NewClient(cfg Config) (Client, error) {
	switch cfg.Provider {
	case ProviderAnthropic, "":
		if err := config.Require("anthropic API key", cfg.APIKey); err != nil {
			return nil, err
		}
		return NewAnthropicClient(cfg), nil
	case ProviderOpenAI:
		if err := config.Require("openai API key or base URL", cfg.APIKey+cfg.BaseURL); err != nil {
			return nil, err
		}
		return NewOpenAIClient(cfg), nil
	}
	return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
}

type completeFunc func(ctx context.Context, systemPrompt string, messages []Message, opts *RequestOptions) (*Response, error)

// backoff is the wait before retry attempt i. Tests shorten it.
var backoff = func(i int) time.Duration {
	return time.Duration(1<<uint(i)) * time.Second
}

// completeWithRetry attempts completion with retries on failure
func completeWithRetry(ctx context.Context, complete completeFunc, systemPrompt string, messages []Message, maxRetries int, opts *RequestOptions) (*Response, error) {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		resp, err := complete(ctx, systemPrompt, messages, opts)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		// Don't retry on context cancellation
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i == maxRetries-1 {
			break
		}

		select {
		case <-time.After(backoff(i)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
