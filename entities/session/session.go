// Package session ties a document to its undo history and runs every change
// through the command protocol.
package session

import (
	"context"
	"errors"
	"fmt"

	"sketch-editor/entities/command"
	"sketch-editor/entities/document"
	"sketch-editor/entities/history"
	"sketch-editor/entities/shape"
	"sketch-editor/tools/logger"
)

// Options configures a Session. The zero value is usable.
type Options struct {
	Policy       document.Policy
	HistoryLimit int
	IDs          document.IDGenerator
	Logger       *logger.Logger
}

// Session is one editing session: a document, its history, and the path from
// assistant text to recorded change. It is not safe for concurrent use.
type Session struct {
	doc  *document.Document
	hist *history.History
	log  *logger.Logger
}

// New starts a session on an empty document.
func New(opts Options) *Session {
	docOpts := []document.Option{document.WithPolicy(opts.Policy)}
	if opts.IDs != nil {
		docOpts = append(docOpts, document.WithIDGenerator(opts.IDs))
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	doc := document.New(docOpts...)
	return &Session{
		doc:  doc,
		hist: history.New(doc, opts.HistoryLimit),
		log:  log.WithPrefix("session"),
	}
}

// ApplyText sanitizes raw assistant output and applies the command it holds.
// A *command.Rejection leaves the document and history untouched.
func (s *Session) ApplyText(ctx context.Context, raw string) (*document.Result, error) {
	cmd, err := command.Sanitize(raw)
	if err != nil {
		s.reject(ctx, "unknown", err)
		return nil, err
	}
	return s.Apply(ctx, cmd)
}

// Apply runs an already validated command and records it in the history when
// it changed the document.
func (s *Session) Apply(ctx context.Context, cmd *command.Command) (*document.Result, error) {
	if cmd == nil {
		return nil, fmt.Errorf("session: nil command")
	}
	action := string(cmd.Action)
	res, err := s.doc.Apply(cmd)
	if err != nil {
		var rej *command.Rejection
		if errors.As(err, &rej) {
			s.reject(ctx, action, err)
			return nil, err
		}
		recordCommand(ctx, action, "error")
		s.log.Error("apply failed", "command", cmd.String(), "error", err)
		return nil, fmt.Errorf("apply %s: %w", cmd, err)
	}

	recordCommand(ctx, action, "applied")
	recordApplied(ctx, len(res.Skipped), s.doc.Len())
	for _, sk := range res.Skipped {
		s.log.Debug("operation skipped", "index", sk.Index, "id", sk.ID, "reason", sk.Reason)
	}
	s.log.Applied(action, len(res.Added), len(res.Updated), len(res.Deleted), len(res.Skipped))

	if res.Changed() {
		s.hist.Record()
	}
	return res, nil
}

// Draw appends geometries created in code as one undoable step.
func (s *Session) Draw(ctx context.Context, geoms ...shape.Geometry) ([]string, error) {
	res, err := s.Apply(ctx, command.Draw(geoms...))
	if err != nil {
		return nil, err
	}
	return res.Added, nil
}

// Edit applies operations created in code as one undoable step.
func (s *Session) Edit(ctx context.Context, ops ...command.Operation) (*document.Result, error) {
	return s.Apply(ctx, command.Mutate(ops...))
}

// Import appends shapes read from a document file as one undoable step.
func (s *Session) Import(ctx context.Context, geoms []shape.Geometry) ([]string, error) {
	if len(geoms) == 0 {
		return nil, nil
	}
	s.log.Info("importing shapes", "count", len(geoms))
	return s.Draw(ctx, geoms...)
}

// Undo steps back one change. It returns false when there is nothing to undo.
func (s *Session) Undo(ctx context.Context) bool {
	moved := s.hist.Undo()
	recordHistoryMove(ctx, "undo", moved)
	if moved {
		s.log.Debug("undo", "cursor", s.hist.Cursor(), "shapes", s.doc.Len())
	}
	return moved
}

// Redo reapplies the change last undone. It returns false when there is none.
func (s *Session) Redo(ctx context.Context) bool {
	moved := s.hist.Redo()
	recordHistoryMove(ctx, "redo", moved)
	if moved {
		s.log.Debug("redo", "cursor", s.hist.Cursor(), "shapes", s.doc.Len())
	}
	return moved
}

func (s *Session) CanUndo() bool { return s.hist.CanUndo() }
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// Shapes returns a copy of the document content in z-order.
func (s *Session) Shapes() []shape.Shape { return s.doc.Shapes() }

// Len returns the number of shapes in the document.
func (s *Session) Len() int { return s.doc.Len() }

// Policy returns the mutate policy of the document.
func (s *Session) Policy() document.Policy { return s.doc.Policy() }

func (s *Session) reject(ctx context.Context, action string, err error) {
	code := "unknown"
	var rej *command.Rejection
	if errors.As(err, &rej) {
		code = string(rej.Code)
	}
	recordCommand(ctx, action, "rejected")
	recordRejection(ctx, code)
	s.log.Rejected(err)
}
