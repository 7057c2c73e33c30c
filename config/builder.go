// File: stratus/config/builder.go
package config

import (
	"errors"
	"fmt"
	"os"
)

// ValidatorFunc checks a fully loaded Config.
type ValidatorFunc func(c *Config) error

// Builder assembles a Config from a defaults struct, a file, the environment
// and command-line arguments. Option errors are collected and reported by
// Build.
type Builder struct {
	cfg        *Config
	opts       LoadOptions
	defaults   any
	file       string
	args       []string
	validators []ValidatorFunc
	err        error
}

// NewBuilder starts a build with the default precedence and os.Args.
func NewBuilder() *Builder {
	return &Builder{
		cfg:  New(),
		opts: DefaultLoadOptions(),
		args: os.Args[1:],
	}
}

func (b *Builder) fail(err error) *Builder {
	b.err = errors.Join(b.err, err)
	return b
}

// WithDefaults registers every field of a struct (or struct pointer) with
// its current value as default.
func (b *Builder) WithDefaults(defaults any) *Builder {
	b.defaults = defaults
	return b
}

// WithLoadOptions replaces the source precedence and environment mapping.
// An env prefix set earlier is kept when opts has none.
func (b *Builder) WithLoadOptions(opts LoadOptions) *Builder {
	if len(opts.Sources) == 0 {
		return b.fail(fmt.Errorf("load options need at least one source"))
	}
	if opts.EnvPrefix == "" {
		opts.EnvPrefix = b.opts.EnvPrefix
	}
	b.opts = opts
	return b
}

// WithEnvPrefix maps path "technology.real" to <prefix>TECHNOLOGY_REAL.
func (b *Builder) WithEnvPrefix(prefix string) *Builder {
	b.opts.EnvPrefix = prefix
	return b
}

// WithFileFormat forces the file format instead of detecting it.
func (b *Builder) WithFileFormat(format string) *Builder {
	if err := b.cfg.SetFileFormat(format); err != nil {
		return b.fail(err)
	}
	return b
}

// WithKeyFolding matches file, env and CLI keys case-insensitively.
func (b *Builder) WithKeyFolding(fold bool) *Builder {
	b.cfg.SetKeyFolding(fold)
	return b
}

// WithFile loads path; an empty path builds without a file.
func (b *Builder) WithFile(path string) *Builder {
	b.file = path
	return b
}

// WithArgs replaces os.Args as the source of --key=value overrides.
func (b *Builder) WithArgs(args []string) *Builder {
	b.args = args
	return b
}

// WithValidator adds a check run after loading, in the order added.
func (b *Builder) WithValidator(fn ValidatorFunc) *Builder {
	if fn != nil {
		b.validators = append(b.validators, fn)
	}
	return b
}

// Build registers the defaults, loads every source and runs the validators.
// A missing file is reported as ErrConfigNotFound together with a usable
// Config; any other failure returns a nil Config.
func (b *Builder) Build() (*Config, error) {
	if b.err != nil {
		return nil, b.err
	}

	if b.defaults != nil {
		if err := b.cfg.RegisterStruct("", b.defaults); err != nil {
			return nil, fmt.Errorf("failed to register defaults: %w", err)
		}
	}

	loadErr := b.cfg.LoadWithOptions(b.file, b.args, b.opts)
	if loadErr != nil && !errors.Is(loadErr, ErrConfigNotFound) {
		return nil, loadErr
	}

	for _, validate := range b.validators {
		if err := validate(b.cfg); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return b.cfg, loadErr
}
