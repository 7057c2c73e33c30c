// FILE: stratus/config/errors.go
package config

import "errors"

// MaxValueSize bounds a single value read from the environment or the command line
const MaxValueSize = 1 << 20

var (
	// ErrConfigNotFound reports that no configuration file exists at the searched
	// location(s). It is not fatal: callers continue with defaults.
	ErrConfigNotFound = errors.New("configuration file not found")

	// ErrExplicitConfigMissing reports that an explicitly requested
	// configuration file does not exist.
	ErrExplicitConfigMissing = errors.New("explicit configuration file not found")

	// ErrNoHomeDir reports that the home directory could not be determined.
	ErrNoHomeDir = errors.New("home directory is not set")

	// ErrCLIParse wraps command-line parsing failures.
	ErrCLIParse = errors.New("failed to parse command-line arguments")

	// ErrValueSize reports a value larger than MaxValueSize.
	ErrValueSize = errors.New("value exceeds maximum size")
)
