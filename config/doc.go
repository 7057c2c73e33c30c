// File: stratus/config/doc.go

// Package config provides thread-safe, layered configuration for Stratus
// and its tools: registered defaults, a configuration file (TOML, YAML,
// JSON or HCL), environment variables and command-line arguments, merged
// with configurable precedence.
//
// Features:
//   - Multiple configuration sources with customizable precedence
//   - Thread-safe operations using sync.RWMutex
//   - Struct registration with tag support and scanning back into structs
//   - File discovery: explicit path, working directory, then home directory
//   - Optional case-insensitive keys for hand-written configuration files
//   - Source tracking to see where values originated
//   - Atomic file writes
//
// Quick Start:
//
//	type Settings struct {
//	    Techno string `toml:"techno"`
//	    Format string `toml:"format"`
//	}
//
//	loc, err := config.Discover(config.DefaultDiscoveryOptions(".st_config"), os.Args[1:])
//	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
//	    return err
//	}
//
//	cfg, err := config.NewBuilder().
//	    WithDefaults(Settings{Techno: "symbolic", Format: "vst"}).
//	    WithEnvPrefix("STRATUS_").
//	    WithFile(loc.Path).
//	    Build()
//	if err != nil {
//	    return err
//	}
//
//	var s Settings
//	err = cfg.Scan("", &s)
//
// Default Precedence (highest to lowest):
//  1. Command-line arguments (--techno=cmos045)
//  2. Environment variables (STRATUS_TECHNO=cmos045)
//  3. Configuration file (.st_config.toml)
//  4. Default values
package config
