package stratus

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/stratus-eda/stratus/config"
	"github.com/stratus-eda/stratus/export"
)

//go:embed default.toml
var defaultConfig []byte

// DefaultConfig returns the bundled default configuration file.
func DefaultConfig() []byte {
	cp := make([]byte, len(defaultConfig))
	copy(cp, defaultConfig)
	return cp
}

// Technology names the technology description files.
type Technology struct {
	Symbolic string `toml:"symbolic"`
	Real     string `toml:"real"`
	Graphics string `toml:"graphics"`
	Analog   string `toml:"analog"`
}

// LogSettings controls logging.
type LogSettings struct {
	Level string `toml:"level"`
}

// Settings is the resolved Stratus configuration. It is built once by Load
// and not modified afterwards.
type Settings struct {
	Techno     string      `toml:"techno"`
	Format     string      `toml:"format"`
	Simulator  string      `toml:"simulator"`
	Technology Technology  `toml:"technology"`
	Log        LogSettings `toml:"log"`

	// Source is where the settings were read from
	Source config.Location `toml:"-"`

	cfg *config.Config
}

var (
	validFormats    = []string{"vst", "vhd"}
	validSimulators = []string{"asimut", "ghdl"}
)

// ErrInvalidSettings reports a configuration value out of range
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultSettings decodes the bundled default configuration.
func DefaultSettings() (Settings, error) {
	var s Settings
	if _, err := toml.Decode(string(defaultConfig), &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode bundled configuration: %w", err)
	}
	return s, nil
}

// normalize lower-cases enumerated values
func (s *Settings) normalize() {
	s.Format = strings.ToLower(strings.TrimSpace(s.Format))
	s.Simulator = strings.ToLower(strings.TrimSpace(s.Simulator))
	s.Techno = strings.TrimSpace(s.Techno)
	s.Log.Level = strings.ToLower(strings.TrimSpace(s.Log.Level))
}

// Validate checks enumerated and required values.
func (s *Settings) Validate() error {
	var errs []error
	if s.Techno == "" {
		errs = append(errs, fmt.Errorf("%w: techno is empty", ErrInvalidSettings))
	}
	if !slices.Contains(validFormats, s.Format) {
		errs = append(errs, fmt.Errorf("%w: format %q, want one of %v", ErrInvalidSettings, s.Format, validFormats))
	}
	if !slices.Contains(validSimulators, s.Simulator) {
		errs = append(errs, fmt.Errorf("%w: simulator %q, want one of %v", ErrInvalidSettings, s.Simulator, validSimulators))
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("%w: log level %q", ErrInvalidSettings, s.Log.Level))
	}
	return errors.Join(errs...)
}

// Dump writes the effective configuration as TOML, with enumerated values
// in their normalized form.
func (s *Settings) Dump(w io.Writer) error {
	return toml.NewEncoder(w).Encode(s)
}

// Debug describes every value with the sources that supplied it.
func (s *Settings) Debug() string {
	if s.cfg == nil {
		return ""
	}
	return s.cfg.Debug()
}

// Save writes what Dump prints to path atomically.
func (s *Settings) Save(path string) error {
	var buf bytes.Buffer
	if err := s.Dump(&buf); err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	return config.WriteAtomic(path, buf.Bytes())
}

// Module exposes the settings as the st_config module.
func (s *Settings) Module() export.Module {
	return export.NewModule(ConfigModule,
		export.Symbol{Name: "TECHNO", Value: s.Techno},
		export.Symbol{Name: "FORMAT", Value: s.Format},
		export.Symbol{Name: "SIMULATOR", Value: s.Simulator},
		export.Symbol{Name: "TECHNOLOGY", Value: s.Technology},
	)
}
