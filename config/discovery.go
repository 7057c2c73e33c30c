// FILE: stratus/config/discovery.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Origin tells where a discovered configuration file came from
type Origin string

const (
	// OriginExplicit is a path named by a CLI flag or environment variable
	OriginExplicit Origin = "explicit"
	// OriginWorkDir is the current working directory
	OriginWorkDir Origin = "workdir"
	// OriginHome is the user's home directory
	OriginHome Origin = "home"
	// OriginDefault means no file was found and defaults apply
	OriginDefault Origin = "default"
)

// Location is the outcome of file discovery.
type Location struct {
	// Path of the selected file, empty when Origin is OriginDefault
	Path   string
	Origin Origin

	// Candidates lists every path examined, in order
	Candidates []string

	// HomeMissing is set when the home directory was unknown and skipped
	HomeMissing bool
}

// Found reports whether a configuration file was selected
func (l Location) Found() bool {
	return l.Path != ""
}

// FileDiscoveryOptions configures automatic config file discovery
type FileDiscoveryOptions struct {
	// Base name of config file, including any leading dot
	Name string

	// Extensions to try (in order) inside each directory; "" is the bare name
	Extensions []string

	// Explicit path supplied by the caller; it must exist
	Explicit string

	// CLI flag naming an explicit path (e.g., "--config"), scanned in args
	CLIFlag string

	// Whether to search in the working directory, then in the home directory
	UseCurrentDir bool
	UseHomeDir    bool

	// WorkDir overrides os.Getwd
	WorkDir string

	// HomeDir is the user's home directory; empty means unknown
	HomeDir string

	// StrictHome turns an unknown home directory into ErrNoHomeDir
	// instead of skipping that candidate
	StrictHome bool
}

// DefaultDiscoveryOptions returns sensible defaults
func DefaultDiscoveryOptions(name string) FileDiscoveryOptions {
	return FileDiscoveryOptions{
		Name:          name,
		Extensions:    []string{".toml", ".yaml", ".yml", ".json", ".hcl", ""},
		CLIFlag:       "--config",
		UseCurrentDir: true,
		UseHomeDir:    true,
	}
}

// Discover selects the configuration file to load. An explicit path wins;
// otherwise the working directory is searched before the home directory and
// the first existing regular file is returned. When nothing matches, the
// returned Location has OriginDefault and the error is ErrConfigNotFound.
func Discover(opts FileDiscoveryOptions, args []string) (Location, error) {
	loc := Location{Origin: OriginDefault}

	explicit := opts.Explicit
	if flagPath, ok := findFlagValue(args, opts.CLIFlag); ok {
		explicit = flagPath
	}
	if explicit != "" {
		loc.Candidates = append(loc.Candidates, explicit)
		ok, err := isRegularFile(explicit)
		if err != nil {
			return loc, err
		}
		if !ok {
			return loc, fmt.Errorf("%w: %s", ErrExplicitConfigMissing, explicit)
		}
		loc.Path, loc.Origin = explicit, OriginExplicit
		return loc, nil
	}

	if opts.Name == "" {
		return loc, fmt.Errorf("discovery requires a file name")
	}
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{""}
	}

	type searchDir struct {
		dir    string
		origin Origin
	}
	var dirs []searchDir

	if opts.UseCurrentDir {
		cwd := opts.WorkDir
		if cwd == "" {
			var err error
			if cwd, err = os.Getwd(); err != nil {
				return loc, fmt.Errorf("failed to determine working directory: %w", err)
			}
		}
		dirs = append(dirs, searchDir{cwd, OriginWorkDir})
	}

	if opts.UseHomeDir {
		if opts.HomeDir == "" {
			if opts.StrictHome {
				return loc, ErrNoHomeDir
			}
			loc.HomeMissing = true
		} else {
			dirs = append(dirs, searchDir{opts.HomeDir, OriginHome})
		}
	}

	for _, d := range dirs {
		for _, ext := range extensions {
			path := filepath.Join(d.dir, opts.Name+ext)
			loc.Candidates = append(loc.Candidates, path)

			ok, err := isRegularFile(path)
			if err != nil {
				return loc, err
			}
			if ok {
				loc.Path, loc.Origin = path, d.origin
				return loc, nil
			}
		}
	}

	return loc, ErrConfigNotFound
}

// findFlagValue extracts the value of flag from "--flag value" or "--flag=value"
func findFlagValue(args []string, flag string) (string, bool) {
	if flag == "" {
		return "", false
	}
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if arg == flag && i+1 < len(args) {
			return args[i+1], true
		}
		if value, ok := strings.CutPrefix(arg, flag+"="); ok {
			return value, true
		}
	}
	return "", false
}

// isRegularFile reports whether path exists and is not a directory.
// Errors other than "does not exist" are returned.
func isRegularFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check config file '%s': %w", path, err)
	}
	return !info.IsDir(), nil
}
