// File: stratus/config/config.go
package config

import (
	"fmt"
	"sync"
)

// configItem is one registered path: its default, the value each source
// supplied and the effective value under the current precedence.
type configItem struct {
	defaultValue any
	currentValue any
	values       map[Source]any
}

// Config holds layered values keyed by dot-separated paths. A Config is safe
// for concurrent use.
type Config struct {
	mutex   sync.RWMutex
	items   map[string]configItem
	options LoadOptions

	tagName        string
	fileFormat     string
	foldKeys       bool
	configFilePath string
}

// New creates an empty Config with the default precedence.
func New() *Config {
	return NewWithOptions(DefaultLoadOptions())
}

// NewWithOptions creates an empty Config with opts.
func NewWithOptions(opts LoadOptions) *Config {
	return &Config{
		items:   make(map[string]configItem),
		options: opts,
		tagName: "toml",
	}
}

// SetFileFormat forces the format of loaded files. "" and "auto" detect it
// from the extension, then from the content.
func (c *Config) SetFileFormat(format string) error {
	switch format {
	case "", "auto", FormatTOML, FormatYAML, FormatJSON, FormatHCL:
	default:
		return fmt.Errorf("unsupported file format %q", format)
	}

	c.mutex.Lock()
	c.fileFormat = format
	c.mutex.Unlock()
	return nil
}

// SetKeyFolding lower-cases keys read from files and CLI arguments so that
// "TECHNO" matches the registered path "techno".
func (c *Config) SetKeyFolding(fold bool) {
	c.mutex.Lock()
	c.foldKeys = fold
	c.mutex.Unlock()
}

// SetLoadOptions installs opts and re-resolves every path.
func (c *Config) SetLoadOptions(opts LoadOptions) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.options = opts
	for path := range c.items {
		c.update(path, func(map[Source]any) {})
	}
}

// ConfigFile returns the last file loaded successfully, or "".
func (c *Config) ConfigFile() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.configFilePath
}

// Get returns the effective value of path and whether path is registered.
func (c *Config) Get(path string) (any, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, registered := c.items[path]
	return item.currentValue, registered
}

// Set overrides path at CLI level.
func (c *Config) Set(path string, value any) error {
	return c.SetSource(path, SourceCLI, value)
}

// SetSource records value for path as if source had supplied it.
func (c *Config) SetSource(path string, source Source, value any) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if _, registered := c.items[path]; !registered {
		return fmt.Errorf("path %s is not registered", path)
	}
	c.update(path, func(values map[Source]any) { values[source] = value })
	return nil
}

// update edits the per-source values of a registered path and re-resolves
// it. Must be called with the write lock held.
func (c *Config) update(path string, edit func(values map[Source]any)) {
	item := c.items[path]
	if item.values == nil {
		item.values = make(map[Source]any)
	}
	edit(item.values)
	item.currentValue = c.computeValue(item)
	c.items[path] = item
}

// computeValue walks the precedence list; reaching SourceDefault ends the
// search even when lower sources hold values.
func (c *Config) computeValue(item configItem) any {
	for _, source := range c.options.Sources {
		if source == SourceDefault {
			break
		}
		if value, set := item.values[source]; set {
			return value
		}
	}
	return item.defaultValue
}
