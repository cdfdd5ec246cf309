package shape

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
)

// FieldError describes why a candidate shape was refused.
type FieldError struct {
	Kind   Kind   // empty when the type tag itself is the problem
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Kind == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s.%s %s", e.Kind, e.Field, e.Reason)
}

// field binds a whitelisted key to its storage inside a geometry.
type field struct {
	name     string
	num      *float64
	str      *string
	optional bool
	numDef   float64
	strDef   string
	allowed  []string
}

func num(name string, p *float64) field { return field{name: name, num: p} }

func optNum(name string, p *float64, def float64) field {
	return field{name: name, num: p, optional: true, numDef: def}
}

func str(name string, p *string) field { return field{name: name, str: p} }

func optEnum(name string, p *string, def string, allowed ...string) field {
	return field{name: name, str: p, optional: true, strDef: def, allowed: allowed}
}

// decode stores v into the field, falling back to the default for optional
// fields. present is false when the key is absent or null.
func (f field) decode(v any, present bool) error {
	if f.num != nil {
		x, isNum := toFloat(v)
		switch {
		case present && isNum && isFinite(x):
			*f.num = x
		case f.optional:
			*f.num = f.numDef
		case !present:
			return errors.New("is required")
		case !isNum:
			return errors.New("must be a number")
		default:
			return errors.New("must be a finite number")
		}
		return nil
	}

	s, isStr := v.(string)
	switch {
	case present && isStr && (len(f.allowed) == 0 || slices.Contains(f.allowed, s)):
		*f.str = s
	case f.optional:
		*f.str = f.strDef
	case !present:
		return errors.New("is required")
	default:
		return errors.New("must be a string")
	}
	return nil
}

// set assigns v without range or enum checks. Numbers must still be finite.
// It reports whether v was usable for the field.
func (f field) set(v any) bool {
	if f.num != nil {
		x, ok := toFloat(v)
		if !ok || !isFinite(x) {
			return false
		}
		*f.num = x
		return true
	}
	s, ok := v.(string)
	if ok {
		*f.str = s
	}
	return ok
}

func (f field) value() any {
	if f.num != nil {
		return *f.num
	}
	return *f.str
}

// Decode builds a geometry from a generic object (as produced by a JSON or
// YAML decoder). Only whitelisted keys are read; everything else is dropped.
func Decode(obj map[string]any) (Geometry, error) {
	raw, ok := obj["type"]
	if !ok || raw == nil {
		return nil, &FieldError{Field: "type", Reason: "missing shape type"}
	}
	name, ok := raw.(string)
	if !ok {
		return nil, &FieldError{Field: "type", Reason: "shape type must be a string"}
	}
	g, ok := New(Kind(name))
	if !ok {
		return nil, &FieldError{Field: "type", Reason: fmt.Sprintf("unrecognized shape type %q", name)}
	}

	for _, f := range g.schema() {
		v, present := obj[f.name]
		if err := f.decode(v, present && v != nil); err != nil {
			return nil, &FieldError{Kind: g.Kind(), Field: f.name, Reason: err.Error()}
		}
	}

	if err := Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}

// Fields returns the whitelisted fields of g, including its "type" tag.
func Fields(g Geometry) map[string]any {
	out := map[string]any{"type": string(g.Kind())}
	for _, f := range g.schema() {
		out[f.name] = f.value()
	}
	return out
}

// FieldNames returns the whitelisted keys of a kind, excluding "type".
func FieldNames(kind Kind) []string {
	g, ok := New(kind)
	if !ok {
		return nil
	}
	fields := g.schema()
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.name
	}
	return names
}

// Patch returns a copy of g with patch shallow-merged onto its fields. The
// result is not validated. Keys that are not fields of g, and values whose
// type does not fit the field, are left out and reported as ignored.
func Patch(g Geometry, patch map[string]any) (Geometry, []string) {
	out := Clone(g)
	byName := make(map[string]field)
	for _, f := range out.schema() {
		byName[f.name] = f
	}

	var ignored []string
	for _, key := range slices.Sorted(maps.Keys(patch)) {
		f, ok := byName[key]
		if !ok || !f.set(patch[key]) {
			ignored = append(ignored, key)
		}
	}
	return out, ignored
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		x, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			// Out-of-range literals parse to ±Inf; they are numbers, just not finite ones.
			var numErr *strconv.NumError
			if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
				return x, true
			}
			return 0, false
		}
		return x, true
	}
	return 0, false
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
