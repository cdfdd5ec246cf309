// Package command implements the drawing command protocol: the grammar an
// assistant must follow to change a document, and the sanitizer that turns
// untrusted text into a fully validated Command.
package command

import (
	"encoding/json"
	"fmt"

	"sketch-editor/entities/shape"
)

const (
	// Version is the only protocol version accepted.
	Version = 1

	MaxShapes     = 5000
	MaxOperations = 2000
)

// Action selects the payload a command carries.
type Action string

const (
	ActionDraw   Action = "draw"
	ActionMutate Action = "mutate"
)

// Command is a validated instruction, consumed once by the mutation engine.
// Draw commands carry Shapes, mutate commands carry Operations.
type Command struct {
	Version    int
	Action     Action
	Shapes     []shape.Geometry
	Operations []Operation
}

// Draw builds a draw command from geometries created in code.
func Draw(shapes ...shape.Geometry) *Command {
	return &Command{Version: Version, Action: ActionDraw, Shapes: shapes}
}

// Mutate builds a mutate command from operations created in code.
func Mutate(ops ...Operation) *Command {
	return &Command{Version: Version, Action: ActionMutate, Operations: ops}
}

// OpType is the tag of a mutate operation.
type OpType string

const (
	OpAdd    OpType = "add"
	OpUpdate OpType = "update"
	OpDelete OpType = "delete"
)

// Operation is one step of a mutate command: AddOp, UpdateOp or DeleteOp.
type Operation interface {
	Type() OpType
	wire() map[string]any
}

// AddOp appends a new shape.
type AddOp struct {
	Shape shape.Geometry
}

// UpdateOp merges Patch onto the fields of the shape with ID.
type UpdateOp struct {
	ID    string
	Patch map[string]any
}

// DeleteOp removes the shape with ID.
type DeleteOp struct {
	ID string
}

func (AddOp) Type() OpType    { return OpAdd }
func (UpdateOp) Type() OpType { return OpUpdate }
func (DeleteOp) Type() OpType { return OpDelete }

func (op AddOp) wire() map[string]any {
	return map[string]any{"type": string(OpAdd), "shape": shape.Fields(op.Shape)}
}

func (op UpdateOp) wire() map[string]any {
	return map[string]any{"type": string(OpUpdate), "id": op.ID, "patch": op.Patch}
}

func (op DeleteOp) wire() map[string]any {
	return map[string]any{"type": string(OpDelete), "id": op.ID}
}

// Map returns the wire form of c. Sanitizing its JSON encoding yields an
// equal command.
func (c *Command) Map() map[string]any {
	out := map[string]any{"version": c.Version, "action": string(c.Action)}
	switch c.Action {
	case ActionDraw:
		shapes := make([]any, len(c.Shapes))
		for i, g := range c.Shapes {
			shapes[i] = shape.Fields(g)
		}
		out["shapes"] = shapes
	case ActionMutate:
		ops := make([]any, len(c.Operations))
		for i, op := range c.Operations {
			ops[i] = op.wire()
		}
		out["operations"] = ops
	}
	return out
}

func (c *Command) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Map())
}

// Size is the number of shapes or operations carried.
func (c *Command) Size() int {
	if c.Action == ActionMutate {
		return len(c.Operations)
	}
	return len(c.Shapes)
}

func (c *Command) String() string {
	return fmt.Sprintf("%s(%d)", c.Action, c.Size())
}
