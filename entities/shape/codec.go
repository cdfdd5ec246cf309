package shape

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape is a geometry that belongs to a document under ID.
type Shape struct {
	ID string
	Geometry
}

// Clone returns a deep copy of s.
func (s Shape) Clone() Shape {
	return Shape{ID: s.ID, Geometry: Clone(s.Geometry)}
}

// Map returns the flat wire form of s: its fields, "type" and "id".
func (s Shape) Map() map[string]any {
	m := Fields(s.Geometry)
	if s.ID != "" {
		m["id"] = s.ID
	}
	return m
}

func (s Shape) MarshalJSON() ([]byte, error) {
	if s.Geometry == nil {
		return nil, fmt.Errorf("shape %q has no geometry", s.ID)
	}
	return json.Marshal(s.Map())
}

// UnmarshalJSON decodes and validates a shape. An "id" key is kept when it is
// a string; whether it is honoured is up to the caller.
func (s *Shape) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return fmt.Errorf("decode shape: %w", err)
	}
	if obj == nil {
		return fmt.Errorf("decode shape: not an object")
	}
	g, err := Decode(obj)
	if err != nil {
		return err
	}
	id, _ := obj["id"].(string)
	*s = Shape{ID: id, Geometry: g}
	return nil
}

// CloneAll deep-copies a shape sequence.
func CloneAll(shapes []Shape) []Shape {
	if shapes == nil {
		return nil
	}
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		out[i] = s.Clone()
	}
	return out
}
