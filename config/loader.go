// File: stratus/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Source names one layer of configuration values.
type Source string

const (
	SourceDefault Source = "default"
	SourceFile    Source = "file"
	SourceEnv     Source = "env"
	SourceCLI     Source = "cli"
)

// EnvTransformFunc maps a registered path to an environment variable name.
// An empty name skips the path.
type EnvTransformFunc func(path string) string

// LoadOptions controls source precedence and the environment mapping.
type LoadOptions struct {
	// Sources lists the layers from highest to lowest precedence.
	Sources []Source

	// EnvPrefix is prepended by the default transform:
	// "STRATUS_" maps "technology.real" to STRATUS_TECHNOLOGY_REAL.
	EnvPrefix string

	// EnvTransform replaces the default path to variable mapping.
	EnvTransform EnvTransformFunc

	// EnvWhitelist restricts env lookups to these paths when not nil.
	EnvWhitelist map[string]bool
}

// DefaultLoadOptions ranks CLI over env over file over defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		Sources: []Source{SourceCLI, SourceEnv, SourceFile, SourceDefault},
	}
}

func (o LoadOptions) envName(path string) string {
	if o.EnvTransform != nil {
		return o.EnvTransform(path)
	}
	name := strings.NewReplacer(".", "_", "-", "_").Replace(path)
	return o.EnvPrefix + strings.ToUpper(name)
}

// Load reads filePath, the environment and args under the current options.
func (c *Config) Load(filePath string, args []string) error {
	c.mutex.RLock()
	opts := c.options
	c.mutex.RUnlock()
	return c.LoadWithOptions(filePath, args, opts)
}

// LoadWithOptions installs opts and loads each listed source, lowest
// precedence first. A file that exists but cannot be parsed aborts the load.
// A missing file is reported as ErrConfigNotFound, joined with any env or CLI
// errors, after the remaining sources have been applied.
func (c *Config) LoadWithOptions(filePath string, args []string, opts LoadOptions) error {
	c.SetLoadOptions(opts)

	var errs []error
	for i := len(opts.Sources) - 1; i >= 0; i-- {
		var err error
		switch opts.Sources[i] {
		case SourceFile:
			if filePath == "" {
				continue
			}
			if err = c.loadFile(filePath); err != nil && !errors.Is(err, ErrConfigNotFound) {
				return err
			}
		case SourceEnv:
			err = c.loadEnv(opts)
		case SourceCLI:
			if len(args) > 0 {
				err = c.loadCLI(args)
			}
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LoadFile replaces the file layer with the contents of path.
func (c *Config) LoadFile(path string) error {
	return c.loadFile(path)
}

// LoadEnv reads environment overrides using prefix and the current options.
func (c *Config) LoadEnv(prefix string) error {
	c.mutex.RLock()
	opts := c.options
	c.mutex.RUnlock()

	opts.EnvPrefix = prefix
	return c.loadEnv(opts)
}

// LoadCLI reads --key=value overrides from args.
func (c *Config) LoadCLI(args []string) error {
	return c.loadCLI(args)
}

// applySource records values as source's contribution and recomputes the
// affected paths. With replace set, paths missing from values lose their
// previous value from source. Unregistered paths are ignored.
// Must be called with the write lock held.
func (c *Config) applySource(source Source, values map[string]any, replace bool) {
	for path, item := range c.items {
		value, set := values[path]
		_, had := item.values[source]
		switch {
		case set:
			c.update(path, func(v map[Source]any) { v[source] = value })
		case replace && had:
			c.update(path, func(v map[Source]any) { delete(v, source) })
		}
	}
}

// loadFile parses path outside the lock and swaps in the new file layer only
// when parsing succeeded.
func (c *Config) loadFile(path string) error {
	data, err := readConfigFile(path)
	if err != nil {
		return err
	}

	c.mutex.RLock()
	format, fold := c.fileFormat, c.foldKeys
	c.mutex.RUnlock()

	if format == "" || format == "auto" {
		if format = detectFileFormat(path); format == "" {
			format = detectFormatFromContent(data)
		}
	}

	tree, err := decodeFile(format, path, data)
	if err != nil {
		return err
	}
	if fold {
		tree = foldMapKeys(tree)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	// A registered path may hold a table, so descent stops there.
	values := make(map[string]any)
	registered := func(p string) bool {
		_, ok := c.items[p]
		return ok
	}
	walkLeaves(tree, "",
		func(p string, _ map[string]any) bool { return registered(p) },
		func(p string, v any) {
			if registered(p) {
				values[p] = v
			}
		})

	c.configFilePath = path
	c.applySource(SourceFile, values, true)
	return nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil, ErrConfigNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to stat config file '%s': %w", path, err)
	case info.IsDir():
		return nil, fmt.Errorf("config path '%s' is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}
	return data, nil
}

// loadEnv looks up one variable per registered path. Values stay strings;
// Scan converts them.
func (c *Config) loadEnv(opts LoadOptions) error {
	c.mutex.RLock()
	paths := sortedPaths(c.items)
	c.mutex.RUnlock()

	values := make(map[string]any)
	for _, path := range paths {
		if opts.EnvWhitelist != nil && !opts.EnvWhitelist[path] {
			continue
		}
		name := opts.envName(path)
		if name == "" {
			continue
		}
		value, set := os.LookupEnv(name)
		if !set {
			continue
		}
		if len(value) > MaxValueSize {
			return fmt.Errorf("%w: %s", ErrValueSize, name)
		}
		values[path] = value
	}
	if len(values) == 0 {
		return nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.applySource(SourceEnv, values, false)
	return nil
}

func (c *Config) loadCLI(args []string) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCLIParse, err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.foldKeys {
		parsed = foldMapKeys(parsed)
	}
	values := flattenMap(parsed, "")
	if len(values) == 0 {
		return nil
	}
	c.applySource(SourceCLI, values, false)
	return nil
}

// parseArgs collects "--key.sub=value", "--key.sub value" and bare "--flag"
// (read as "true") into a nested table. Arguments without a leading "--"
// are skipped and a lone "--" ends parsing.
func parseArgs(args []string) (map[string]any, error) {
	result := make(map[string]any)
	for i := 0; i < len(args); i++ {
		body, isFlag := strings.CutPrefix(args[i], "--")
		if !isFlag {
			continue
		}
		if body == "" {
			break
		}

		key, value, hasValue := strings.Cut(body, "=")
		if !hasValue {
			value = "true"
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "--") {
				i++
				value = args[i]
			}
		}
		if key == "" {
			continue
		}
		if len(value) > MaxValueSize {
			return nil, fmt.Errorf("%w: --%s", ErrValueSize, key)
		}
		if segment, ok := validatePath(key); !ok {
			return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, key)
		}
		setNestedValue(result, key, value)
	}
	return result, nil
}
