package interchange

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sketch-editor/entities/command"
	"sketch-editor/entities/shape"
)

func sampleShapes() []shape.Shape {
	return []shape.Shape{
		{ID: "shape_1", Geometry: &shape.Line{X1: 0, Y1: 0, X2: 10, Y2: 5}},
		{ID: "shape_2", Geometry: &shape.Text{X: 1, Y: 2, Text: "A-A", Height: 3.5, Align: "center"}},
		{ID: "shape_3", Geometry: &shape.Arc{CX: 1, CY: 1, R: 2, StartAngle: 0, EndAngle: 180}},
	}
}

func geometries(shapes []shape.Shape) []shape.Geometry {
	out := make([]shape.Geometry, len(shapes))
	for i, s := range shapes {
		out[i] = s.Geometry
	}
	return out
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("plan.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("a/b/plan.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("plan.json"))
	assert.Equal(t, FormatJSON, FormatFromPath("plan"))
}

func TestStoreRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			store, err := New(t.TempDir())
			require.NoError(t, err)

			res, err := store.Export(sampleShapes(), "drawing", Options{Format: format, SubDir: "exports"})
			require.NoError(t, err)
			assert.Equal(t, 3, res.Shapes)
			assert.Equal(t, filepath.Join(store.Dir(), "exports", "drawing"+format.ext()), res.Path)

			got, err := store.Import(res.Path)
			require.NoError(t, err)
			assert.Equal(t, geometries(sampleShapes()), got)
		})
	}
}

func TestEncodeIncludesIDsAndVersion(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleShapes()[:1], FormatYAML))
	out := buf.String()
	assert.Contains(t, out, "version: 1")
	assert.Contains(t, out, "id: shape_1")
	assert.Contains(t, out, "type: line")

	assert.Error(t, Encode(&buf, nil, Format("svg")))
}

func TestDecodeDropsUnknownFields(t *testing.T) {
	got, err := Decode(strings.NewReader(`{"version":1,"shapes":[{"id":"x","type":"point","x":1,"y":2,"layer":"A"}]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []shape.Geometry{&shape.Point{X: 1, Y: 2}}, got)
}

func TestDecodeRejections(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		want   error
	}{
		{"not json", "shapes: []", FormatJSON, command.ErrNoValidPayload},
		{"not yaml", "shapes: [", FormatYAML, command.ErrNoValidPayload},
		{"empty yaml", "", FormatYAML, command.ErrNoValidPayload},
		{"version", `{"version":2,"shapes":[]}`, FormatJSON, command.ErrUnsupportedVersion},
		{"no shapes", "version: 1\n", FormatYAML, command.ErrSchemaMismatch},
		{"bad shape", "shapes:\n  - type: circle\n    cx: 0\n    cy: 0\n    r: -2\n", FormatYAML, command.ErrInvalidShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.format)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImportMissingFile(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = store.Import(filepath.Join(store.Dir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestExportRequiresName(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = store.Export(nil, "", Options{})
	assert.Error(t, err)
}
