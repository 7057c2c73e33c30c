// File: stratus/config/decode.go
package config

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Scan decodes the effective values under basePath into target, a non-nil
// pointer to a struct or map. An empty basePath decodes everything.
func (c *Config) Scan(basePath string, target any) error {
	if rv := reflect.ValueOf(target); rv.Kind() != reflect.Ptr || rv.IsNil() {
		return fmt.Errorf("scan target must be a non-nil pointer, got %T", target)
	}

	c.mutex.RLock()
	tree := make(map[string]any)
	for path, item := range c.items {
		setNestedValue(tree, path, item.currentValue)
	}
	tagName := c.tagName
	c.mutex.RUnlock()

	section, leaf, ok := lookupTable(tree, basePath)
	if !ok {
		return fmt.Errorf("path %q holds a %T, not a table", basePath, leaf)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          tagName,
		WeaklyTypedInput: true,
		DecodeHook:       decodeHook(),
	})
	if err != nil {
		return fmt.Errorf("decoder creation failed: %w", err)
	}
	if err := decoder.Decode(section); err != nil {
		return fmt.Errorf("decode failed for path %q: %w", basePath, err)
	}
	return nil
}

// decodeHook converts the string forms produced by env and CLI sources.
func decodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToTimeHookFunc(time.RFC3339),
		mapstructure.StringToSliceHookFunc(","),
	)
}
