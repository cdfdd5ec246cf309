// Package artist asks an assistant for drawing commands and keeps asking,
// with the rejection reason as feedback, until one is accepted.
package artist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sketch-editor/entities/command"
	"sketch-editor/entities/shape"
	"sketch-editor/tools/llm"
	"sketch-editor/tools/logger"
)

const (
	DefaultMaxRetries = 2
	maxContinuations  = 3
	requestRetries    = 2
	defaultMaxTokens  = 8192
)

// ApplyFunc hands an accepted command to the document. A *command.Rejection
// from it is fed back to the assistant like a sanitizer rejection.
type ApplyFunc func(cmd *command.Command) error

// Artist handles LLM interactions for drawing commands.
type Artist struct {
	client     llm.Client
	log        *logger.Logger
	protocol   string
	maxRetries int
}

// New creates an Artist. protocol is the command reference shown to the
// assistant in the system prompt. maxRetries below 0 means DefaultMaxRetries.
func New(client llm.Client, protocol string, maxRetries int, log *logger.Logger) *Artist {
	if log == nil {
		log = logger.Default()
	}
	if maxRetries < 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Artist{
		client:     client,
		log:        log.WithPrefix("artist"),
		protocol:   protocol,
		maxRetries: maxRetries,
	}
}

// Reply is an accepted assistant answer.
type Reply struct {
	Command  *command.Command
	Raw      string
	Attempts int
	Response *llm.Response
}

// Compose asks for a command fulfilling instruction against the current
// shapes. When apply is nil the sanitized command is returned unapplied.
func (a *Artist) Compose(ctx context.Context, instruction string, current []shape.Shape, apply ApplyFunc) (*Reply, error) {
	done := a.log.Step("compose")
	defer done()

	prompt, err := buildUserPrompt(instruction, current)
	if err != nil {
		return nil, err
	}
	messages := []llm.Message{{Role: "user", Content: prompt}}
	opts := &llm.RequestOptions{MaxTokens: defaultMaxTokens}

	var lastErr error
	for attempt := 0; attempt <= a.maxRetries; attempt++ {
		content, resp, err := a.completeWithContinuation(ctx, messages, opts)
		if err != nil {
			return nil, err
		}

		cmd, err := command.Sanitize(content)
		if err == nil && apply != nil {
			err = apply(cmd)
		}
		if err == nil {
			return &Reply{Command: cmd, Raw: content, Attempts: attempt + 1, Response: resp}, nil
		}

		var rej *command.Rejection
		if !errors.As(err, &rej) {
			return nil, fmt.Errorf("apply assistant command: %w", err)
		}
		lastErr = err
		a.log.Warn("reply rejected", "attempt", attempt+1, "of", a.maxRetries+1, "reason", rej.Error())
		if attempt < a.maxRetries {
			messages = appendRetry(messages, content, feedback(rej))
		}
	}

	return nil, fmt.Errorf("no acceptable command after %d attempts: %w", a.maxRetries+1, lastErr)
}

// completeWithContinuation handles responses that hit the token limit
func (a *Artist) completeWithContinuation(ctx context.Context, messages []llm.Message, opts *llm.RequestOptions) (string, *llm.Response, error) {
	system := a.systemPrompt()
	resp, err := a.client.CompleteWithRetry(ctx, system, messages, requestRetries, opts)
	if err != nil {
		return "", nil, fmt.Errorf("LLM request failed: %w", err)
	}
	a.log.Tokens(resp.InputTokens, resp.OutputTokens)

	content := resp.Content
	if !resp.WasTruncated() {
		return content, resp, nil
	}

	a.log.Warn("response truncated, requesting continuation")
	for i := 0; i < maxContinuations; i++ {
		contMessages := append(messages[:len(messages):len(messages)],
			llm.Message{Role: "assistant", Content: content},
			llm.Message{Role: "user", Content: "Continue exactly where you left off. Do not repeat anything."},
		)

		contResp, err := a.client.CompleteWithRetry(ctx, system, contMessages, requestRetries, opts)
		if err != nil {
			return "", nil, fmt.Errorf("continuation request failed: %w", err)
		}
		a.log.Tokens(contResp.InputTokens, contResp.OutputTokens)

		content += contResp.Content
		resp = contResp
		if !contResp.WasTruncated() {
			break
		}
		if i == maxContinuations-1 {
			a.log.Warn("max continuations reached, response may be incomplete")
		}
	}

	return content, resp, nil
}

func (a *Artist) systemPrompt() string {
	return fmt.Sprintf(`You edit a 2D technical drawing by replying with one command.

%s

Reply with exactly one command inside a single fenced block:

`+"```json"+`
{"version": 1, "action": "draw", "shapes": [...]}
`+"```"+`

Rules:
- Coordinates are in drawing units, angles in degrees
- Use "draw" to add shapes, "mutate" to add, update or delete by id
- Only use ids that appear in the current document
- Anything outside the fenced block is ignored`, a.protocol)
}

func buildUserPrompt(instruction string, current []shape.Shape) (string, error) {
	if current == nil {
		current = []shape.Shape{}
	}
	doc, err := json.MarshalIndent(current, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode current document: %w", err)
	}
	return fmt.Sprintf("CURRENT DOCUMENT (%d shapes):\n%s\n\nINSTRUCTION:\n%s",
		len(current), doc, strings.TrimSpace(instruction)), nil
}

func feedback(rej *command.Rejection) string {
	return fmt.Sprintf("Your command was rejected (%s): %s\n\nPlease fix it and reply with the corrected command only.", rej.Code, rej.Message)
}

func appendRetry(messages []llm.Message, assistantContent, userFeedback string) []llm.Message {
	return append(messages,
		llm.Message{Role: "assistant", Content: assistantContent},
		llm.Message{Role: "user", Content: userFeedback},
	)
}
