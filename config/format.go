// FILE: stratus/config/format.go
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Supported configuration file formats
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
	FormatHCL  = "hcl"
)

// decodeFile parses data in the given format into a nested map
func decodeFile(format, name string, data []byte) (map[string]any, error) {
	out := make(map[string]any)

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file '%s': %w", name, err)
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&out); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file '%s': %w", name, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file '%s': %w", name, err)
		}
		if out == nil {
			out = make(map[string]any)
		}
	case FormatHCL:
		decoded, err := decodeHCL(name, data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse HCL config file '%s': %w", name, err)
		}
		out = decoded
	default:
		return nil, fmt.Errorf("unable to determine config format for file '%s'", name)
	}

	return out, nil
}

// decodeHCL evaluates the top-level attributes of an HCL body.
// Object values become nested tables; blocks are not supported.
func decodeHCL(name string, data []byte) (map[string]any, error) {
	file, diags := hclparse.NewParser().ParseHCL(data, name)
	if diags.HasErrors() {
		return nil, diags
	}

	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}

	out := make(map[string]any, len(attrs))
	for key, attr := range attrs {
		val, valDiags := attr.Expr.Value(&hcl.EvalContext{})
		if valDiags.HasErrors() {
			return nil, valDiags
		}
		if val.IsNull() {
			continue
		}
		if !val.IsWhollyKnown() {
			return nil, fmt.Errorf("attribute %q has an unknown value", key)
		}

		raw, err := ctyjson.Marshal(val, val.Type())
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.UseNumber()
		var goVal any
		if err := decoder.Decode(&goVal); err != nil {
			return nil, fmt.Errorf("attribute %q: %w", key, err)
		}
		out[key] = goVal
	}

	return out, nil
}

// detectFileFormat determines format from file extension
func detectFileFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".tml":
		return FormatTOML
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	default:
		// .conf, .config and extension-less files are sniffed
		return ""
	}
}

// detectFormatFromContent attempts to detect format by parsing.
// Each candidate must decode into a table; a YAML scalar such as
// `key = "value"` therefore does not shadow TOML.
func detectFormatFromContent(data []byte) string {
	var table map[string]any

	if err := json.Unmarshal(data, &table); err == nil {
		return FormatJSON
	}

	table = nil
	if err := toml.Unmarshal(data, &table); err == nil {
		return FormatTOML
	}

	table = nil
	if err := yaml.Unmarshal(data, &table); err == nil && table != nil {
		return FormatYAML
	}

	if _, diags := hclparse.NewParser().ParseHCL(data, "content.hcl"); !diags.HasErrors() {
		return FormatHCL
	}

	return ""
}
