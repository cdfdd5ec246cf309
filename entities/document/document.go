// Package document holds the in-memory drawing and the mutation engine that
// applies validated commands to it.
package document

import (
	"errors"
	"fmt"

	"sketch-editor/entities/command"
	"sketch-editor/entities/shape"
)

// ErrInconsistent marks a broken internal invariant, such as two shapes
// sharing an identifier. It is a programming error, never a rejection of input.
var ErrInconsistent = errors.New("document: internal consistency violated")

// Policy decides how mutate commands treat questionable operations. The zero
// value is the tolerant policy: unknown ids are skipped and patched shapes are
// not re-validated.
type Policy struct {
	// StrictReferences fails the whole command when update or delete names
	// an id that is not in the document.
	StrictReferences bool

	// RevalidatePatches fails the whole command when a patched shape breaks
	// the shape schema or the patch names fields the shape does not have.
	RevalidatePatches bool
}

// Option configures a Document.
type Option func(*Document)

// WithIDGenerator replaces the default identifier generator.
func WithIDGenerator(gen IDGenerator) Option {
	return func(d *Document) { d.newID = gen }
}

// WithPolicy sets the mutate policy.
func WithPolicy(p Policy) Option {
	return func(d *Document) { d.policy = p }
}

// Document is an ordered collection of uniquely identified shapes. Order is
// insertion order and only matters for z-order. A Document belongs to one
// editing session and is not safe for concurrent use.
type Document struct {
	shapes []shape.Shape
	index  map[string]int
	newID  IDGenerator
	policy Policy
}

// New creates an empty document.
func New(opts ...Option) *Document {
	d := &Document{
		index: make(map[string]int),
		newID: UUIDv7(ShapeIDPrefix),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Len returns the number of shapes.
func (d *Document) Len() int { return len(d.shapes) }

// Policy returns the mutate policy in effect.
func (d *Document) Policy() Policy { return d.policy }

// Shapes returns a deep copy of the shapes in z-order.
func (d *Document) Shapes() []shape.Shape {
	return shape.CloneAll(d.shapes)
}

// Get returns a copy of the shape with id.
func (d *Document) Get(id string) (shape.Shape, bool) {
	i, ok := d.index[id]
	if !ok {
		return shape.Shape{}, false
	}
	return d.shapes[i].Clone(), true
}

// Restore replaces the content with a copy of shapes, keeping their ids.
func (d *Document) Restore(shapes []shape.Shape) error {
	index, err := buildIndex(shapes)
	if err != nil {
		return err
	}
	d.shapes = shape.CloneAll(shapes)
	d.index = index
	return nil
}

// Append adds geometries built by the tool layer. They must satisfy the shape
// schema; the new ids are returned in order.
func (d *Document) Append(geoms ...shape.Geometry) ([]string, error) {
	res, err := d.Apply(command.Draw(geoms...))
	if err != nil {
		return nil, err
	}
	return res.Added, nil
}

func buildIndex(shapes []shape.Shape) (map[string]int, error) {
	index := make(map[string]int, len(shapes))
	for i, s := range shapes {
		if s.ID == "" || s.Geometry == nil {
			return nil, fmt.Errorf("%w: shape %d has no id or geometry", ErrInconsistent, i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInconsistent, s.ID)
		}
		index[s.ID] = i
	}
	return index, nil
}
