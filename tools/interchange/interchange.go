// Package interchange reads and writes document files: a version number and a
// list of shapes in the native schema, as JSON or YAML.
package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sketch-editor/entities/command"
	"sketch-editor/entities/shape"
)

// Format is a document file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension; JSON otherwise.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

func (f Format) ext() string {
	if f == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Encode writes shapes, ids included, as a document file.
func Encode(w io.Writer, shapes []shape.Shape, format Format) error {
	items := make([]any, len(shapes))
	for i, s := range shapes {
		items[i] = s.Map()
	}
	doc := map[string]any{"version": command.Version, "shapes": items}

	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
	return fmt.Errorf("unknown format %q", format)
}

// Decode reads a document file. Shapes go through the same sanitizer as a
// draw command, so unknown fields are dropped and invalid shapes rejected
// with a *command.Rejection. Stored ids are not kept.
func Decode(r io.Reader, format Format) ([]shape.Geometry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var obj map[string]any
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, &command.Rejection{Code: command.CodeNoValidPayload, Message: "document is not valid YAML", Cause: err}
		}
		if obj == nil {
			return nil, &command.Rejection{Code: command.CodeNoValidPayload, Message: "document is empty"}
		}
	case FormatJSON, "":
		obj, err = command.Parse(string(bytes.TrimSpace(data)))
		if err != nil {
			return nil, &command.Rejection{Code: command.CodeNoValidPayload, Message: "document is not a JSON object", Cause: err}
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if err := command.CheckVersion(obj["version"]); err != nil {
		return nil, err
	}
	items, ok := obj["shapes"].([]any)
	if !ok {
		return nil, &command.Rejection{Code: command.CodeSchemaMismatch, Message: "document requires a shapes array"}
	}
	return command.SanitizeShapes(items)
}

// Options holds optional export settings
type Options struct {
	Format Format
	SubDir string // subdirectory within outputDir for this export
}

// Result describes a written file.
type Result struct {
	Path   string
	Shapes int
}

// Store reads and writes document files under an output directory.
type Store struct {
	outputDir string // base output directory
}

// New creates a store rooted at outputDir, which can be relative.
func New(outputDir string) (*Store, error) {
	abs, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}
	return &Store{outputDir: abs}, nil
}

// Dir returns the absolute output directory.
func (s *Store) Dir() string { return s.outputDir }

// getWorkDir returns outputDir/SubDir, creating it if needed
func (s *Store) getWorkDir(opts Options) (string, error) {
	workDir := s.outputDir
	if opts.SubDir != "" {
		workDir = filepath.Join(s.outputDir, opts.SubDir)
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	return workDir, nil
}

// Export writes shapes to name (extension added from the format when absent).
func (s *Store) Export(shapes []shape.Shape, name string, opts Options) (*Result, error) {
	if name == "" {
		return nil, fmt.Errorf("export: file name is required")
	}
	if opts.Format == "" {
		opts.Format = FormatFromPath(name)
	}
	if filepath.Ext(name) == "" {
		name += opts.Format.ext()
	}

	workDir, err := s.getWorkDir(opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Encode(&buf, shapes, opts.Format); err != nil {
		return nil, err
	}
	path := filepath.Join(workDir, filepath.Base(name))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return &Result{Path: path, Shapes: len(shapes)}, nil
}

// Import reads a document file. Relative paths are taken as given, not
// relative to the output directory.
func (s *Store) Import(path string) ([]shape.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer f.Close()
	return Decode(f, FormatFromPath(path))
}
