package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"

	"sketch-editor/entities/shape"
)

// Sanitize converts raw assistant text into a validated command. Any failure
// is returned as a *Rejection and nothing of the command is kept.
func Sanitize(raw string) (*Command, error) {
	obj, err := Parse(Extract(raw))
	if err != nil {
		return nil, noValidPayload(err)
	}
	return SanitizeObject(obj)
}

// SanitizeObject validates an already parsed payload.
func SanitizeObject(obj map[string]any) (*Command, error) {
	if err := CheckVersion(obj["version"]); err != nil {
		return nil, err
	}

	rawAction, present := obj["action"]
	action, _ := rawAction.(string)
	switch Action(action) {
	case ActionDraw:
		items, ok := obj["shapes"].([]any)
		if !ok {
			return nil, schemaMismatch("draw command requires a shapes array")
		}
		shapes, err := SanitizeShapes(items)
		if err != nil {
			return nil, err
		}
		return &Command{Version: Version, Action: ActionDraw, Shapes: shapes}, nil

	case ActionMutate:
		items, ok := obj["operations"].([]any)
		if !ok {
			return nil, schemaMismatch("mutate command requires an operations array")
		}
		ops, err := sanitizeOperations(items)
		if err != nil {
			return nil, err
		}
		return &Command{Version: Version, Action: ActionMutate, Operations: ops}, nil
	}

	if !present || rawAction == nil {
		return nil, schemaMismatch("missing action")
	}
	return nil, schemaMismatch("unrecognized action %v", rawAction)
}

// SanitizeShapes validates a list of candidate shapes the way a draw command
// does. Importers use it so files get no more trust than assistant text.
func SanitizeShapes(items []any) ([]shape.Geometry, error) {
	if len(items) > MaxShapes {
		return nil, limitExceeded("shapes", len(items), MaxShapes)
	}
	out := make([]shape.Geometry, 0, len(items))
	for i, item := range items {
		path := fmt.Sprintf("shapes[%d]", i)
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, InvalidShape(path, errors.New("not an object"))
		}
		g, err := shape.Decode(obj)
		if err != nil {
			return nil, InvalidShape(path, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func sanitizeOperations(items []any) ([]Operation, error) {
	if len(items) > MaxOperations {
		return nil, limitExceeded("operations", len(items), MaxOperations)
	}
	out := make([]Operation, 0, len(items))
	for i, item := range items {
		op, err := sanitizeOperation(fmt.Sprintf("operations[%d]", i), item)
		if err != nil {
			return nil, err
		}
		out = append(out, op)
	}
	return out, nil
}

func sanitizeOperation(path string, item any) (Operation, error) {
	obj, ok := item.(map[string]any)
	if !ok {
		return nil, InvalidOperation(path, "not an object")
	}

	rawType, present := obj["type"]
	opType, _ := rawType.(string)
	switch OpType(opType) {
	case OpAdd:
		candidate, ok := obj["shape"].(map[string]any)
		if !ok {
			return nil, InvalidOperation(path, "add requires a shape object")
		}
		g, err := shape.Decode(candidate)
		if err != nil {
			return nil, InvalidShape(path+".shape", err)
		}
		return AddOp{Shape: g}, nil

	case OpUpdate:
		id, ok := requireID(obj)
		if !ok {
			return nil, InvalidOperation(path, "update requires a non-empty string id")
		}
		patch, ok := obj["patch"].(map[string]any)
		if !ok {
			return nil, InvalidOperation(path, "update requires a patch object")
		}
		return UpdateOp{ID: id, Patch: maps.Clone(patch)}, nil

	case OpDelete:
		id, ok := requireID(obj)
		if !ok {
			return nil, InvalidOperation(path, "delete requires a non-empty string id")
		}
		return DeleteOp{ID: id}, nil
	}

	if !present || rawType == nil {
		return nil, InvalidOperation(path, "missing operation type")
	}
	return nil, InvalidOperation(path, "unrecognized operation type %v", rawType)
}

func requireID(obj map[string]any) (string, bool) {
	id, ok := obj["id"].(string)
	if !ok || strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

// CheckVersion accepts an absent version as the current one.
func CheckVersion(v any) error {
	if v == nil {
		return nil
	}
	var n float64
	switch x := v.(type) {
	case json.Number:
		f, err := strconv.ParseFloat(string(x), 64)
		if err != nil {
			return unsupportedVersion(x)
		}
		n = f
	case float64:
		n = x
	case int:
		n = float64(x)
	default:
		return unsupportedVersion(fmt.Sprintf("%q", fmt.Sprint(v)))
	}
	if n != Version {
		return unsupportedVersion(v)
	}
	return nil
}
