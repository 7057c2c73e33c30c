// Command stratus inspects and initialises the Stratus configuration.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/stratus-eda/stratus"
	"github.com/stratus-eda/stratus/config"
	xlog "github.com/stratus-eda/stratus/internal/log"
)

// exitError carries a process exit code
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func (e *exitError) Unwrap() error { return e.err }

const usage = `Stratus - netlist/layout description tool.

Usage:
  stratus [options] <command> [command options] [-- --key=value ...]

Commands:
  where     print the configuration file in use
  show      print the effective configuration
  init      write the default configuration file
  modules   list the module manifest
  exports   list the composed namespace

Settings may be overridden after "--", e.g. stratus show -- --techno=cmos045

Options:
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			if ee.code != 0 {
				fmt.Fprintln(os.Stderr, "stratus:", ee.err)
			}
			os.Exit(ee.code)
		}
		fmt.Fprintln(os.Stderr, "stratus:", err)
		os.Exit(1)
	}
}

// cliEnv holds the environment defaults of the global flags
type cliEnv struct {
	LogLevel string `env:"STRATUS_LOG_LEVEL" envDefault:"info"`
}

func run(args []string, stdout, stderr io.Writer) error {
	var defaults cliEnv
	if err := env.Parse(&defaults); err != nil {
		return &exitError{code: 2, err: err}
	}

	fs := flag.NewFlagSet("stratus", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "Path to the configuration file.")
	logLevel := fs.String("log-level", defaults.LogLevel, "Log level: debug, info, warn or error.")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return &exitError{code: 2, err: err}
	}

	levelSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "log-level" {
			levelSet = true
		}
	})

	xlog.Configure(xlog.Config{Level: *logLevel, Output: stderr, Console: true})
	logger := xlog.WithComponent("cli")

	// log.level from the loaded settings applies unless -log-level was given
	adopt := func(s *stratus.Settings) {
		if levelSet || s.Log.Level == "" {
			return
		}
		xlog.Configure(xlog.Config{Level: s.Log.Level, Output: stderr, Console: true})
		logger = xlog.WithComponent("cli")
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return &exitError{code: 2, err: errors.New("missing command")}
	}

	opts := stratus.Options{ConfigPath: *configPath, Logger: &logger}
	command, rest := fs.Arg(0), fs.Args()[1:]

	switch command {
	case "where":
		return runWhere(rest, opts, stdout)
	case "show":
		return runShow(rest, opts, adopt, stdout)
	case "init":
		return runInit(rest, opts, stdout)
	case "modules":
		return runModules(stdout)
	case "exports":
		return runExports(rest, opts, adopt, stdout)
	default:
		fs.Usage()
		return &exitError{code: 2, err: fmt.Errorf("unknown command %q", command)}
	}
}

// parseCommand parses a subcommand's flags; remaining arguments become setting overrides
func parseCommand(fs *flag.FlagSet, args []string, opts *stratus.Options) error {
	if err := fs.Parse(args); err != nil {
		return &exitError{code: 2, err: err}
	}
	opts.Args = fs.Args()
	return nil
}

func runWhere(args []string, opts stratus.Options, stdout io.Writer) error {
	fs := flag.NewFlagSet("where", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "List every candidate examined.")
	if err := parseCommand(fs, args, &opts); err != nil {
		return err
	}

	loc, err := stratus.Resolve(opts)
	if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return err
	}

	if loc.Found() {
		fmt.Fprintf(stdout, "%s\t%s\n", loc.Path, loc.Origin)
	} else {
		fmt.Fprintf(stdout, "%s\t(bundled)\n", config.OriginDefault)
	}

	if *verbose {
		for _, p := range loc.Candidates {
			fmt.Fprintf(stdout, "  tried %s\n", p)
		}
		if loc.HomeMissing {
			fmt.Fprintln(stdout, "  home directory unknown")
		}
	}
	return nil
}

func runShow(args []string, opts stratus.Options, adopt func(*stratus.Settings), stdout io.Writer) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	debug := fs.Bool("debug", false, "Show the source of every value.")
	out := fs.String("o", "", "Write the effective configuration to a file instead.")
	if err := parseCommand(fs, args, &opts); err != nil {
		return err
	}

	settings, err := stratus.LoadSettings(opts)
	if err != nil {
		return err
	}
	adopt(settings)

	switch {
	case *out != "":
		if err := settings.Save(*out); err != nil {
			return err
		}
		opts.Logger.Info().Str("path", *out).Msg("configuration written")
		return nil
	case *debug:
		_, err := io.WriteString(stdout, settings.Debug())
		return err
	default:
		return settings.Dump(stdout)
	}
}

func runInit(args []string, opts stratus.Options, stdout io.Writer) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	home := fs.Bool("home", false, "Write to the home directory instead of the working directory.")
	force := fs.Bool("force", false, "Overwrite an existing file.")
	if err := parseCommand(fs, args, &opts); err != nil {
		return err
	}

	dir, err := initDir(*home, opts)
	if err != nil {
		return err
	}
	path := filepath.Join(dir, stratus.ConfigName+".toml")

	if _, err := os.Stat(path); err == nil && !*force {
		return &exitError{code: 1, err: fmt.Errorf("%s already exists (use -force to overwrite)", path)}
	}

	if err := config.WriteAtomic(path, stratus.DefaultConfig()); err != nil {
		return err
	}
	fmt.Fprintln(stdout, path)
	return nil
}

func initDir(home bool, opts stratus.Options) (string, error) {
	if !home {
		return os.Getwd()
	}
	if opts.HomeDir != "" {
		return opts.HomeDir, nil
	}
	if h := os.Getenv("HOME"); h != "" {
		return h, nil
	}
	return "", config.ErrNoHomeDir
}

func runModules(stdout io.Writer) error {
	for _, m := range stratus.Modules() {
		state := "missing"
		if m.Registered {
			state = "registered"
		}
		line := fmt.Sprintf("%-18s %s", m.Name, state)
		if len(m.Only) > 0 {
			line += " (only " + strings.Join(m.Only, ", ") + ")"
		}
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func runExports(args []string, opts stratus.Options, adopt func(*stratus.Settings), stdout io.Writer) error {
	fs := flag.NewFlagSet("exports", flag.ContinueOnError)
	shadows := fs.Bool("shadowed", false, "List shadowed names instead.")
	if err := parseCommand(fs, args, &opts); err != nil {
		return err
	}

	sess, err := stratus.Open(opts)
	if err != nil {
		return err
	}
	adopt(sess.Settings)

	ns := sess.Namespace
	if *shadows {
		for _, sh := range ns.Shadowed() {
			fmt.Fprintf(stdout, "%s\t%s -> %s\n", sh.Name, sh.From, sh.To)
		}
		return nil
	}

	for _, name := range ns.Names() {
		origin, _ := ns.Origin(name)
		fmt.Fprintf(stdout, "%s\t%s\n", name, origin)
	}
	return nil
}
