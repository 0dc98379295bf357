package settings

import (
	"encoding/json"
	"path"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// Format names a settings document syntax
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSON5 Format = "json5"
	FormatYAML  Format = "yaml"
)

// FormatForPath selects the decoder for a path by its extension, case-insensitively
func FormatForPath(p string) (Format, error) {
	ext := strings.ToLower(path.Ext(p))
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".json5":
		return FormatJSON5, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", &UnsupportedExtensionError{Path: p, Extension: ext}
	}
}

// Parse decodes a settings document into an untyped tree.
// The tree only holds JSON types (map[string]any, []any, string, float64, bool, nil)
// whatever the source syntax, so the schema validator sees one shape.
func Parse(p string, text []byte) (any, error) {
	format, err := FormatForPath(p)
	if err != nil {
		return nil, err
	}

	var tree any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(text, &tree)
	case FormatJSON5:
		err = json5.Unmarshal(text, &tree)
	case FormatYAML:
		err = yaml.Unmarshal(text, &tree)
		// Empty and comment-only documents manage nothing
		if err == nil && tree == nil {
			tree = map[string]any{}
		}
	}
	if err != nil {
		return nil, &DecodeError{Path: p, Format: string(format), Err: err}
	}

	normalized, err := normalize(tree)
	if err != nil {
		return nil, &DecodeError{Path: p, Format: string(format), Err: err}
	}
	return normalized, nil
}

// normalize re-encodes a decoded tree through JSON. YAML may yield integer
// and timestamp scalars or non-string keys, which the validator does not expect.
func normalize(tree any) (any, error) {
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
