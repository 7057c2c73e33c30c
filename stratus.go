package stratus

import (
	"errors"
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"

	"github.com/stratus-eda/stratus/config"
	"github.com/stratus-eda/stratus/export"
	xlog "github.com/stratus-eda/stratus/internal/log"
)

const (
	// ConfigName is the base name of the user configuration file
	ConfigName = ".st_config"
	// EnvPrefix prefixes environment overrides (STRATUS_TECHNO, ...)
	EnvPrefix = "STRATUS_"
	// FallbackNotice is logged when no user configuration file exists
	FallbackNotice = "No configuration file found, using default configuration"
)

// Options controls how a session is opened. Zero values are filled from the
// process environment.
type Options struct {
	// Args are command-line arguments; "--config path" selects a file and
	// "--key=value" pairs override settings
	Args []string

	// WorkDir is searched first; os.Getwd when empty
	WorkDir string
	// HomeDir is searched second; $HOME when empty
	HomeDir string
	// ConfigPath names the file explicitly; $STRATUS_CONFIG when empty
	ConfigPath string
	// StrictHome fails resolution when the home directory is unknown
	StrictHome bool

	// Modules supplies the aggregated modules; the process registry when nil
	Modules []export.Module

	Logger *zerolog.Logger
}

// environment is the part of the process environment Stratus reads directly
type environment struct {
	Home       string `env:"HOME"`
	ConfigPath string `env:"STRATUS_CONFIG"`
}

// withEnvironment fills unset options from the process environment
func (o Options) withEnvironment() (Options, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return o, fmt.Errorf("failed to read environment: %w", err)
	}

	fallback := Options{HomeDir: e.Home, ConfigPath: e.ConfigPath}
	if err := mergo.Merge(&o, fallback); err != nil {
		return o, fmt.Errorf("failed to merge options: %w", err)
	}
	return o, nil
}

func (o Options) logger() zerolog.Logger {
	if o.Logger != nil {
		return *o.Logger
	}
	return xlog.WithComponent("stratus")
}

// discovery converts options to file discovery options
func (o Options) discovery() config.FileDiscoveryOptions {
	d := config.DefaultDiscoveryOptions(ConfigName)
	d.Explicit = o.ConfigPath
	d.WorkDir = o.WorkDir
	d.HomeDir = o.HomeDir
	d.StrictHome = o.StrictHome
	return d
}

// Resolve selects the configuration file: an explicit path, else
// <workdir>/.st_config*, else <home>/.st_config*. When none exists the
// returned Location has OriginDefault and the error is config.ErrConfigNotFound.
func Resolve(opts Options) (config.Location, error) {
	opts, err := opts.withEnvironment()
	if err != nil {
		return config.Location{Origin: config.OriginDefault}, err
	}
	return resolve(opts)
}

func resolve(opts Options) (config.Location, error) {
	logger := opts.logger()

	loc, err := config.Discover(opts.discovery(), opts.Args)
	if loc.HomeMissing {
		logger.Debug().Err(config.ErrNoHomeDir).Msg("skipping home directory configuration")
	}
	if err != nil {
		return loc, err
	}

	logger.Debug().
		Str("path", loc.Path).
		Str("origin", string(loc.Origin)).
		Msg("configuration file selected")
	return loc, nil
}

// Load reads the settings from loc over the bundled defaults, then applies
// STRATUS_* environment and --key=value command-line overrides. When loc
// holds no file the fallback notice is logged. A file that cannot be parsed
// is an error and nothing is applied.
func Load(loc config.Location, opts Options) (*Settings, error) {
	logger := opts.logger()

	defaults, err := DefaultSettings()
	if err != nil {
		return nil, err
	}

	if !loc.Found() {
		logger.Info().Msg(FallbackNotice)
	}

	s := &Settings{}
	cfg, err := config.NewBuilder().
		WithDefaults(defaults).
		WithKeyFolding(true).
		WithEnvPrefix(EnvPrefix).
		WithFile(loc.Path).
		WithArgs(opts.Args).
		WithValidator(func(c *config.Config) error {
			if err := c.Scan("", s); err != nil {
				return fmt.Errorf("failed to decode configuration: %w", err)
			}
			s.normalize()
			err := s.Validate()
			if err != nil && loc.Found() {
				return fmt.Errorf("%s: %w", loc.Path, err)
			}
			return err
		}).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	s.Source = loc
	s.cfg = cfg
	return s, nil
}

// LoadSettings resolves and loads the settings without aggregating modules.
func LoadSettings(opts Options) (*Settings, error) {
	opts, err := opts.withEnvironment()
	if err != nil {
		return nil, err
	}

	loc, err := resolve(opts)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return nil, err
	}
	return Load(loc, opts)
}

// Session is an opened Stratus environment: the settings and the composed
// namespace of every module. Pass it to the components that need it.
type Session struct {
	Settings  *Settings
	Namespace *export.Namespace
}

// Location returns where the settings came from.
func (s *Session) Location() config.Location {
	return s.Settings.Source
}

// Open resolves and loads the configuration, then composes the namespace
// from the manifest. A missing or broken module is fatal.
func Open(opts Options) (*Session, error) {
	settings, err := LoadSettings(opts)
	if err != nil {
		return nil, err
	}

	mods := opts.Modules
	if mods == nil {
		mods = Registered()
	}

	ns, err := export.NewComposer(Manifest()).
		WithModules(mods...).
		Attach(settings.Module()).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to compose modules: %w", err)
	}

	logger := opts.logger()
	for _, sh := range ns.Shadowed() {
		logger.Debug().
			Str("name", sh.Name).
			Str("from", sh.From).
			Str("to", sh.To).
			Msg("symbol shadowed")
	}

	return &Session{Settings: settings, Namespace: ns}, nil
}
