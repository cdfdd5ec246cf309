package command

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// jsonFence matches the first ```json block; the tag is case-insensitive.
var jsonFence = regexp.MustCompile("(?is)```[ \\t]*json\\b(.*?)```")

// Extract returns the candidate payload inside raw: the interior of the first
// fenced json block if there is one, otherwise the whole trimmed text.
// Untagged fences are not unwrapped, and a block ends at the first closing
// backticks even when they sit inside a JSON string.
func Extract(raw string) string {
	if m := jsonFence.FindStringSubmatch(raw); len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(raw)
}

// Parse decodes candidate as a single JSON object. Numbers are kept as
// json.Number so out-of-range literals can be reported as non-finite later.
func Parse(candidate string) (map[string]any, error) {
	if candidate == "" {
		return nil, errors.New("empty payload")
	}
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse payload: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("parse payload: trailing data after object")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("parse payload: top level is %s, not an object", describeJSON(v))
	}
	return obj, nil
}

func describeJSON(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	}
	return fmt.Sprintf("%T", v)
}

