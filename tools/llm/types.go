package llm

import "time"

// Message represents a conversation message
type Message struct {
	Role    string // "user" or "assistant"
	Content string
}

// RequestOptions configures an LLM request
type RequestOptions struct {
	MaxTokens int
}

// Response from an LLM completion
type Response struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Model        string
	StopReason   string // "end_turn", "max_tokens", "stop_sequence"
}

// WasTruncated returns true if the response hit the token limit
func (r *Response) WasTruncated() bool {
	return r.StopReason == StopMaxTokens
}

const (
	StopEndTurn   = "end_turn"
	StopMaxTokens = "max_tokens"

	// DefaultMaxTokens bounds a reply when RequestOptions does not.
	DefaultMaxTokens = 8192
)

func maxTokens(opts *RequestOptions) int {
	if opts != nil && opts.MaxTokens > 0 {
		return opts.MaxTokens
	}
	return DefaultMaxTokens
}
