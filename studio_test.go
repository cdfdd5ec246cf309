package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch-editor/entities/command"
	"sketch-editor/tools/llm"
	"sketch-editor/tools/logger"
)

type cannedClient struct {
	content string
	prompts []string
}

func (c *cannedClient) Complete(ctx context.Context, systemPrompt string, messages []llm.Message, opts *llm.RequestOptions) (*llm.Response, error) {
	c.prompts = append(c.prompts, messages[len(messages)-1].Content)
	return &llm.Response{Content: c.content, StopReason: llm.StopEndTurn}, nil
}

func (c *cannedClient) CompleteWithRetry(ctx context.Context, systemPrompt string, messages []llm.Message, maxRetries int, opts *llm.RequestOptions) (*llm.Response, error) {
	return c.Complete(ctx, systemPrompt, messages, opts)
}

func newTestStudio(t *testing.T) *Studio {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OutputDir = t.TempDir()
	s, err := NewStudio(cfg, logger.Discard())
	require.NoError(t, err)
	return s
}

func TestStudio_RawSessionFlow(t *testing.T) {
	ctx := context.Background()
	s := newTestStudio(t)
	var out bytes.Buffer

	input := strings.Join([]string{
		`{"action":"draw","shapes":[{"type":"circle","cx":0,"cy":0,"r":5},{"type":"point","x":1,"y":1}]}`,
		`:raw {"action":"draw","shapes":[{"type":"circle","cx":0,"cy":0,"r":-5}]}`,
		":undo",
		":undo",
		":redo",
		":show",
		":save plan.yaml",
		":frobnicate",
		":quit",
		":undo",
	}, "\n")

	require.NoError(t, s.Run(ctx, strings.NewReader(input), &out))
	text := out.String()

	assert.Contains(t, text, "draw: 2 added, 0 updated, 0 deleted")
	assert.Contains(t, text, "rejected (INVALID_SHAPE)")
	assert.Contains(t, text, "undone, 0 shapes")
	assert.Contains(t, text, "nothing to undo")
	assert.Contains(t, text, "redone, 2 shapes")
	assert.Contains(t, text, `"type": "circle"`)
	assert.Contains(t, text, "saved 2 shapes")
	assert.Contains(t, text, "unknown command :frobnicate")

	data, err := os.ReadFile(filepath.Join(s.store.Dir(), "plan.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "type: point")
	assert.Equal(t, 2, s.Session().Len(), "lines after :quit are not read")
}

func TestStudio_SaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := newTestStudio(t)
	_, err := s.ApplyText(ctx, `{"action":"draw","shapes":[{"type":"line","x1":0,"y1":0,"x2":1,"y2":1}]}`)
	require.NoError(t, err)
	res, err := s.Save("doc")
	require.NoError(t, err)

	other := newTestStudio(t)
	n, err := other.Load(ctx, res.Path)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, other.Session().CanUndo())
}

func TestStudio_AskUsesAssistant(t *testing.T) {
	ctx := context.Background()
	client := &cannedClient{content: "```json\n{\"version\":1,\"action\":\"draw\",\"shapes\":[{\"type\":\"rect\",\"x\":0,\"y\":0,\"w\":4,\"h\":2}]}\n```"}
	s := newTestStudio(t).WithAssistant(client, ProtocolReference)

	var out bytes.Buffer
	quit, err := s.Handle(ctx, "draw a small rectangle", &out)
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Contains(t, out.String(), "1 added")
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "draw a small rectangle")
}

func TestStudio_AskWithoutAssistant(t *testing.T) {
	_, err := newTestStudio(t).Ask(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrNoAssistant)
}

func TestStudio_Check(t *testing.T) {
	s := newTestStudio(t)

	cmd, err := s.Check(`{"action":"mutate","operations":[{"type":"delete","id":"shape_1"}]}`)
	require.NoError(t, err)
	assert.Equal(t, "mutate(1)", cmd.String())

	_, err = s.Check(`{"version":7,"action":"draw","shapes":[]}`)
	require.ErrorIs(t, err, command.ErrUnsupportedVersion)
	data, err := rejectionJSON(err)
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":"UNSUPPORTED_VERSION","message":"unsupported protocol version 7 (expected 1)","metadata":{"version":"7"}}`, string(data))
}

func TestStudioConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AnthropicKey = "a"
	cfg.OpenAIKey = "o"
	cfg.StrictReferences = true

	assert.Equal(t, "a", cfg.LLMConfig().APIKey)
	cfg.Provider = llm.ProviderOpenAI
	assert.Equal(t, "o", cfg.LLMConfig().APIKey)
	assert.True(t, cfg.Policy().StrictReferences)
	assert.False(t, cfg.Policy().RevalidatePatches)
}

func TestProtocolReferenceIDs(t *testing.T) {
	assert.Contains(t, ProtocolReference, "may only use ids listed in the current document")
	assert.NotContains(t, ProtocolReference, "added earlier in the")
}

func TestStudioConfigLevel(t *testing.T) {
	cfg := DefaultConfig()
	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelInfo, level)

	cfg.LogLevel = "warn"
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelWarn, level)

	cfg.VerboseLogging = true
	level, err = cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, logger.LevelDebug, level)

	cfg = DefaultConfig()
	cfg.LogLevel = "loud"
	_, err = cfg.Level()
	assert.Error(t, err)
}
