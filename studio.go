package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"sketch-editor/entities/artist"
	"sketch-editor/entities/command"
	"sketch-editor/entities/document"
	"sketch-editor/entities/session"
	"sketch-editor/tools/interchange"
	"sketch-editor/tools/llm"
	"sketch-editor/tools/logger"
)

// ErrNoAssistant is returned when an instruction needs an assistant but no
// client was configured.
var ErrNoAssistant = errors.New("no assistant configured")

// Studio wires an editing session to files and, optionally, an assistant.
type Studio struct {
	config  StudioConfig
	session *session.Session
	store   *interchange.Store
	artist  *artist.Artist
	log     *logger.Logger
}

// NewStudio creates a studio with an empty document.
func NewStudio(config StudioConfig, log *logger.Logger) (*Studio, error) {
	if config.OutputDir == "" {
		config.OutputDir = DefaultConfig().OutputDir
	}
	if log == nil {
		log = logger.Default()
	}

	store, err := interchange.New(config.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	return &Studio{
		config: config,
		session: session.New(session.Options{
			Policy:       config.Policy(),
			HistoryLimit: config.HistoryLimit,
			Logger:       log,
		}),
		store: store,
		log:   log.WithPrefix("studio"),
	}, nil
}

// WithAssistant lets the studio turn plain instructions into commands.
func (s *Studio) WithAssistant(client llm.Client, protocol string) *Studio {
	s.artist = artist.New(client, protocol, s.config.MaxRetries, s.log)
	return s
}

// Session exposes the editing session.
func (s *Studio) Session() *session.Session { return s.session }

// Check sanitizes raw text without touching the document.
func (s *Studio) Check(raw string) (*command.Command, error) {
	cmd, err := command.Sanitize(raw)
	if err != nil {
		s.log.Rejected(err)
		return nil, err
	}
	s.log.Debug("command accepted", "command", cmd.String())
	return cmd, nil
}

// ApplyText applies one raw assistant reply.
func (s *Studio) ApplyText(ctx context.Context, raw string) (*document.Result, error) {
	return s.session.ApplyText(ctx, raw)
}

// Ask has the assistant carry out instruction on the current document.
func (s *Studio) Ask(ctx context.Context, instruction string) (*document.Result, error) {
	if s.artist == nil {
		return nil, ErrNoAssistant
	}
	var res *document.Result
	_, err := s.artist.Compose(ctx, instruction, s.session.Shapes(), func(cmd *command.Command) error {
		r, err := s.session.Apply(ctx, cmd)
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Load appends the shapes of a document file as one undoable step.
func (s *Studio) Load(ctx context.Context, path string) (int, error) {
	geoms, err := s.store.Import(path)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	ids, err := s.session.Import(ctx, geoms)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", path, err)
	}
	return len(ids), nil
}

// Save writes the document under the output directory.
func (s *Studio) Save(name string) (*interchange.Result, error) {
	res, err := s.store.Export(s.session.Shapes(), name, interchange.Options{})
	if err != nil {
		return nil, err
	}
	s.log.Info("document saved", "path", res.Path, "shapes", res.Shapes)
	return res, nil
}

// Show writes the document as JSON.
func (s *Studio) Show(w io.Writer) error {
	return interchange.Encode(w, s.session.Shapes(), interchange.FormatJSON)
}

// Run reads one instruction per line until in is exhausted or ctx is done.
// Lines starting with ':' are editor commands; others go to the assistant,
// or are applied as raw command text when there is none.
func (s *Studio) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		quit, err := s.Handle(ctx, scanner.Text(), out)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
		if quit {
			return nil
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

// Handle executes a single interactive line and reports whether to quit.
func (s *Studio) Handle(ctx context.Context, line string, out io.Writer) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	if !strings.HasPrefix(line, ":") {
		var res *document.Result
		var err error
		if s.artist != nil {
			res, err = s.Ask(ctx, line)
		} else {
			res, err = s.ApplyText(ctx, line)
		}
		if err != nil {
			return false, describeError(err)
		}
		printResult(out, res)
		return false, nil
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "q", "quit", "exit":
		return true, nil
	case "undo":
		if !s.session.Undo(ctx) {
			fmt.Fprintln(out, "nothing to undo")
			return false, nil
		}
		fmt.Fprintf(out, "undone, %d shapes\n", s.session.Len())
	case "redo":
		if !s.session.Redo(ctx) {
			fmt.Fprintln(out, "nothing to redo")
			return false, nil
		}
		fmt.Fprintf(out, "redone, %d shapes\n", s.session.Len())
	case "show":
		return false, s.Show(out)
	case "save":
		res, err := s.Save(arg)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(out, "saved %d shapes to %s\n", res.Shapes, res.Path)
	case "load":
		n, err := s.Load(ctx, arg)
		if err != nil {
			return false, describeError(err)
		}
		fmt.Fprintf(out, "loaded %d shapes\n", n)
	case "raw":
		res, err := s.ApplyText(ctx, arg)
		if err != nil {
			return false, describeError(err)
		}
		printResult(out, res)
	default:
		return false, fmt.Errorf("unknown command :%s (try :undo, :redo, :show, :save, :load, :raw, :quit)", name)
	}
	return false, nil
}

func printResult(out io.Writer, res *document.Result) {
	fmt.Fprintf(out, "%s: %d added, %d updated, %d deleted", res.Action, len(res.Added), len(res.Updated), len(res.Deleted))
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, ", %d skipped", len(res.Skipped))
	}
	fmt.Fprintln(out)
	for _, sk := range res.Skipped {
		fmt.Fprintf(out, "  operations[%d] %s: %s\n", sk.Index, sk.ID, sk.Reason)
	}
}

// describeError prefixes rejections with their code.
func describeError(err error) error {
	var rej *command.Rejection
	if errors.As(err, &rej) {
		return fmt.Errorf("rejected (%s): %w", rej.Code, err)
	}
	return err
}

// rejectionJSON is the machine readable form printed by check.
func rejectionJSON(err error) ([]byte, error) {
	var rej *command.Rejection
	if !errors.As(err, &rej) {
		return nil, err
	}
	return json.Marshal(struct {
		Code     command.Code      `json:"code"`
		Message  string            `json:"message"`
		Metadata map[string]string `json:"metadata,omitempty"`
	}{rej.Code, rej.Message, rej.Metadata})
}
