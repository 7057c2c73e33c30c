// File: stratus/config/io.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// Debug lists every path with its effective value, its default and the value
// each source supplied, in precedence order.
func (c *Config) Debug() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	order := make([]string, len(c.options.Sources))
	for i, source := range c.options.Sources {
		order[i] = string(source)
	}

	var b strings.Builder
	if c.configFilePath != "" {
		fmt.Fprintf(&b, "File: %s\n", c.configFilePath)
	}
	fmt.Fprintf(&b, "Precedence: %s\n", strings.Join(order, " > "))

	for _, path := range sortedPaths(c.items) {
		item := c.items[path]
		fmt.Fprintf(&b, "  %s = %v\n", path, item.currentValue)
		fmt.Fprintf(&b, "    default: %v\n", item.defaultValue)
		for _, source := range c.options.Sources {
			if value, set := item.values[source]; set {
				fmt.Fprintf(&b, "    %s: %v\n", source, value)
			}
		}
	}
	return b.String()
}

// WriteAtomic replaces path with data through a synced temporary file in the
// same directory, creating missing parent directories first.
func WriteAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for '%s': %w", path, err)
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	return nil
}
