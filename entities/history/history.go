// Package history keeps a bounded timeline of document snapshots for undo
// and redo.
package history

import (
	"fmt"

	"sketch-editor/entities/shape"
)

// DefaultLimit is the number of snapshots kept when no limit is given.
const DefaultLimit = 50

// Document is what the history snapshots and restores.
type Document interface {
	Shapes() []shape.Shape
	Restore(shapes []shape.Shape) error
}

// Snapshot is an immutable deep copy of a document's shapes.
type Snapshot struct {
	shapes []shape.Shape
}

// Shapes returns a copy of the snapshot content.
func (s Snapshot) Shapes() []shape.Shape {
	return shape.CloneAll(s.shapes)
}

// History is an ordered list of snapshots plus a cursor at the one that
// matches the document. It is owned by one editing session.
type History struct {
	doc       Document
	snapshots []Snapshot
	cursor    int
	limit     int
}

// New starts a timeline for doc whose first snapshot is its current content.
// A limit below 1 means DefaultLimit.
func New(doc Document, limit int) *History {
	if limit < 1 {
		limit = DefaultLimit
	}
	h := &History{doc: doc, limit: limit}
	h.snapshots = []Snapshot{take(doc)}
	return h
}

func take(doc Document) Snapshot {
	// Shapes already returns a deep copy.
	return Snapshot{shapes: doc.Shapes()}
}

// Record snapshots the document after a change. Snapshots ahead of the
// cursor are discarded and the oldest is evicted once the limit is passed.
func (h *History) Record() {
	h.check()
	h.snapshots = append(h.snapshots[:h.cursor+1], take(h.doc))
	if len(h.snapshots) > h.limit {
		drop := len(h.snapshots) - h.limit
		clear(h.snapshots[:drop])
		h.snapshots = h.snapshots[drop:]
	}
	h.cursor = len(h.snapshots) - 1
}

// Undo restores the previous snapshot. It returns false at the earliest one.
func (h *History) Undo() bool {
	h.check()
	if h.cursor == 0 {
		return false
	}
	h.moveTo(h.cursor - 1)
	return true
}

// Redo restores the next snapshot. It returns false at the latest one.
func (h *History) Redo() bool {
	h.check()
	if h.cursor == len(h.snapshots)-1 {
		return false
	}
	h.moveTo(h.cursor + 1)
	return true
}

func (h *History) CanUndo() bool { return h.cursor > 0 }

func (h *History) CanRedo() bool { return h.cursor < len(h.snapshots)-1 }

// Len returns the number of snapshots held.
func (h *History) Len() int { return len(h.snapshots) }

// Cursor returns the index of the snapshot matching the document.
func (h *History) Cursor() int { return h.cursor }

// Current returns the snapshot at the cursor.
func (h *History) Current() Snapshot { return h.snapshots[h.cursor] }

func (h *History) moveTo(i int) {
	if err := h.doc.Restore(h.snapshots[i].shapes); err != nil {
		panic(fmt.Sprintf("history: snapshot %d cannot be restored: %v", i, err))
	}
	h.cursor = i
}

// check panics when the cursor no longer points into the timeline.
func (h *History) check() {
	if h.cursor < 0 || h.cursor >= len(h.snapshots) {
		panic(fmt.Sprintf("history: cursor %d outside %d snapshots", h.cursor, len(h.snapshots)))
	}
}
