package document

import (
	"fmt"
	"strings"

	"sketch-editor/entities/command"
	"sketch-editor/entities/shape"
)

// Skip records an operation that was tolerated rather than applied.
type Skip struct {
	Index  int
	ID     string
	Reason string
}

// Result reports what Apply did.
type Result struct {
	Action  command.Action
	Added   []string
	Updated []string
	Deleted []string
	Skipped []Skip
}

// Changed reports whether the document content differs from before Apply.
func (r *Result) Changed() bool {
	return len(r.Added)+len(r.Updated)+len(r.Deleted) > 0
}

// working is the copy a command is applied to. Deleted entries are left as
// tombstones (nil geometry) and dropped when the copy is committed.
type working struct {
	shapes []shape.Shape
	index  map[string]int
}

// Apply executes cmd against the document. The document changes only if the
// whole command succeeds. Errors are either *command.Rejection (the command
// conflicts with the document under the current policy) or wrap
// ErrInconsistent.
func (d *Document) Apply(cmd *command.Command) (*Result, error) {
	if cmd == nil {
		return nil, fmt.Errorf("apply: nil command")
	}
	if cmd.Version != command.Version {
		return nil, fmt.Errorf("apply: command version %d, engine speaks %d", cmd.Version, command.Version)
	}

	w := &working{
		shapes: make([]shape.Shape, len(d.shapes), len(d.shapes)+cmd.Size()),
		index:  make(map[string]int, len(d.index)+cmd.Size()),
	}
	copy(w.shapes, d.shapes)
	for id, i := range d.index {
		w.index[id] = i
	}

	res := &Result{Action: cmd.Action}
	var err error
	switch cmd.Action {
	case command.ActionDraw:
		for i, g := range cmd.Shapes {
			if err = d.add(w, res, fmt.Sprintf("shapes[%d]", i), g); err != nil {
				break
			}
		}
	case command.ActionMutate:
		for i, op := range cmd.Operations {
			if err = d.applyOp(w, res, i, op); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("apply: unknown action %q", cmd.Action)
	}
	if err != nil {
		return nil, err
	}

	d.commit(w)
	return res, nil
}

func (d *Document) applyOp(w *working, res *Result, i int, op command.Operation) error {
	path := fmt.Sprintf("operations[%d]", i)
	switch op := op.(type) {
	case command.AddOp:
		return d.add(w, res, path+".shape", op.Shape)

	case command.UpdateOp:
		at, ok := w.index[op.ID]
		if !ok {
			return d.unresolved(res, path, i, op.ID)
		}
		cur := w.shapes[at]
		patched, ignored := shape.Patch(cur.Geometry, op.Patch)
		if d.policy.RevalidatePatches {
			if len(ignored) > 0 {
				return command.InvalidOperation(path, "patch fields %s do not apply to %s (fields: %s)",
					strings.Join(ignored, ", "), cur.Kind(), strings.Join(shape.FieldNames(cur.Kind()), ", "))
			}
			if err := shape.Validate(patched); err != nil {
				return command.InvalidShape(path+".patch", err)
			}
		}
		if len(ignored) == len(op.Patch) {
			res.Skipped = append(res.Skipped, Skip{Index: i, ID: op.ID, Reason: "patch has no applicable fields"})
			return nil
		}
		w.shapes[at] = shape.Shape{ID: cur.ID, Geometry: patched}
		res.Updated = append(res.Updated, op.ID)
		return nil

	case command.DeleteOp:
		at, ok := w.index[op.ID]
		if !ok {
			return d.unresolved(res, path, i, op.ID)
		}
		w.shapes[at] = shape.Shape{}
		delete(w.index, op.ID)
		res.Deleted = append(res.Deleted, op.ID)
		return nil
	}
	return fmt.Errorf("apply: unhandled operation %T", op)
}

func (d *Document) add(w *working, res *Result, path string, g shape.Geometry) error {
	if err := shape.Validate(g); err != nil {
		return command.InvalidShape(path, err)
	}
	id := d.newID()
	if id == "" {
		return fmt.Errorf("%w: generator returned an empty id", ErrInconsistent)
	}
	if _, taken := w.index[id]; taken {
		return fmt.Errorf("%w: generated id %q already in use", ErrInconsistent, id)
	}
	w.index[id] = len(w.shapes)
	w.shapes = append(w.shapes, shape.Shape{ID: id, Geometry: shape.Clone(g)})
	res.Added = append(res.Added, id)
	return nil
}

func (d *Document) unresolved(res *Result, path string, i int, id string) error {
	if d.policy.StrictReferences {
		return command.InvalidOperation(path, "unknown shape id %q", id)
	}
	res.Skipped = append(res.Skipped, Skip{Index: i, ID: id, Reason: "unknown shape id"})
	return nil
}

// commit compacts tombstones away and makes w the document content.
func (d *Document) commit(w *working) {
	shapes := make([]shape.Shape, 0, len(w.index))
	index := make(map[string]int, len(w.index))
	for _, s := range w.shapes {
		if s.Geometry == nil {
			continue
		}
		index[s.ID] = len(shapes)
		shapes = append(shapes, s)
	}
	d.shapes = shapes
	d.index = index
}
