package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch-editor/tools/config"
)

func init() {
	backoff = func(int) time.Duration { return time.Millisecond }
}

func TestNewClient(t *testing.T) {
	c, err := NewClient(Config{Provider: ProviderAnthropic, APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, c)

	c, err = NewClient(Config{Provider: ProviderOpenAI, BaseURL: "http://localhost:11434/v1"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, c)

	_, err = NewClient(Config{Provider: ProviderAnthropic})
	assert.ErrorIs(t, err, config.ErrMissing)
	_, err = NewClient(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, config.ErrMissing)
	_, err = NewClient(Config{Provider: "mystery", APIKey: "k"})
	assert.ErrorContains(t, err, "mystery")
}

func TestAnthropicComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "sys", req.System)
		assert.Equal(t, 100, req.MaxTokens)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "draw a circle", req.Messages[0].Content)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"claude-test","stop_reason":"max_tokens",
			"content":[{"type":"text","text":"{\"action\":"},{"type":"tool_use"},{"type":"text","text":"\"draw\"}"}],
			"usage":{"input_tokens":12,"output_tokens":34}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{APIKey: "secret", BaseURL: srv.URL + "/"})
	resp, err := c.Complete(context.Background(), "sys", []Message{{Role: "user", Content: "draw a circle"}}, &RequestOptions{MaxTokens: 100})
	require.NoError(t, err)
	assert.Equal(t, `{"action":"draw"}`, resp.Content)
	assert.Equal(t, 12, resp.InputTokens)
	assert.Equal(t, 34, resp.OutputTokens)
	assert.Equal(t, "claude-test", resp.Model)
	assert.True(t, resp.WasTruncated())
}

func TestAnthropicAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{APIKey: "x", BaseURL: srv.URL})
	_, err := c.Complete(context.Background(), "", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "bad key")
}

func TestCompleteWithRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}],"stop_reason":"end_turn"}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient(Config{APIKey: "x", BaseURL: srv.URL})
	resp, err := c.CompleteWithRetry(context.Background(), "", nil, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, 3, calls)
	assert.False(t, resp.WasTruncated())
}

func TestCompleteWithRetryGivesUp(t *testing.T) {
	calls := 0
	failing := func(context.Context, string, []Message, *RequestOptions) (*Response, error) {
		calls++
		return nil, errors.New("boom")
	}
	_, err := completeWithRetry(context.Background(), failing, "", nil, 2, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 2, calls)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls = 0
	_, err = completeWithRetry(ctx, failing, "", nil, 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "local-model", req.Model)
		require.Len(t, req.Messages, 3)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "assistant", req.Messages[2].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","model":"local-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"length"}],
			"usage":{"prompt_tokens":5,"completion_tokens":7,"total_tokens":12}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(Config{APIKey: "x", BaseURL: srv.URL + "/v1", Model: "local-model"})
	resp, err := c.Complete(context.Background(), "sys", []Message{
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "partial"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", resp.Content)
	assert.Equal(t, 5, resp.InputTokens)
	assert.Equal(t, 7, resp.OutputTokens)
	assert.True(t, resp.WasTruncated())
}
