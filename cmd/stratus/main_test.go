package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratus-eda/stratus"
	"github.com/stratus-eda/stratus/export"
)

// isolate points HOME at a fresh directory and clears STRATUS_* overrides
func isolate(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"STRATUS_CONFIG", "STRATUS_TECHNO", "STRATUS_FORMAT", "STRATUS_SIMULATOR", "STRATUS_LOG_LEVEL"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return -1
}

func TestWhere(t *testing.T) {
	t.Run("Default", func(t *testing.T) {
		isolate(t)

		out, _, err := runCLI(t, "where")
		require.NoError(t, err)
		assert.Equal(t, "default\t(bundled)\n", out)
	})

	t.Run("HomeFile", func(t *testing.T) {
		home := isolate(t)
		path := filepath.Join(home, ".st_config")
		require.NoError(t, os.WriteFile(path, []byte(`TECHNO = "cmos045"`), 0644))

		out, _, err := runCLI(t, "where", "-v")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, path+"\thome\n"))
		assert.Contains(t, out, "  tried "+path+"\n")
	})

	t.Run("ExplicitMissing", func(t *testing.T) {
		isolate(t)

		_, _, err := runCLI(t, "-config", filepath.Join(t.TempDir(), "none.toml"), "where")
		assert.Error(t, err)
	})
}

func TestShow(t *testing.T) {
	t.Run("FallbackNotice", func(t *testing.T) {
		isolate(t)

		out, errOut, err := runCLI(t, "show")
		require.NoError(t, err)
		assert.Contains(t, out, `techno = "symbolic"`)
		assert.Equal(t, 1, strings.Count(errOut, stratus.FallbackNotice))
	})

	t.Run("ConfigAndOverrides", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, ".st_config"), []byte(`TECHNO = "cmos045"`), 0644))

		out, errOut, err := runCLI(t, "show")
		require.NoError(t, err)
		assert.Contains(t, out, `techno = "cmos045"`)
		assert.NotContains(t, errOut, stratus.FallbackNotice)

		out, _, err = runCLI(t, "show", "--", "--simulator=ghdl")
		require.NoError(t, err)
		assert.Contains(t, out, `simulator = "ghdl"`)
	})

	t.Run("Debug", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, ".st_config"), []byte(`TECHNO = "cmos045"`), 0644))

		out, _, err := runCLI(t, "show", "-debug")
		require.NoError(t, err)
		assert.Contains(t, out, "file: cmos045")
	})

	t.Run("WriteToFile", func(t *testing.T) {
		isolate(t)
		target := filepath.Join(t.TempDir(), "effective.toml")

		out, _, err := runCLI(t, "show", "-o", target, "--", "--techno=cmos065")
		require.NoError(t, err)
		assert.Empty(t, out)

		content, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(content), `techno = "cmos065"`)
	})

	t.Run("LogLevelFromConfig", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, ".st_config.toml"), []byte("[log]\nlevel = \"error\"\n"), 0644))
		target := filepath.Join(t.TempDir(), "effective.toml")

		_, errOut, err := runCLI(t, "show", "-o", target)
		require.NoError(t, err)
		assert.NotContains(t, errOut, "configuration written")

		_, errOut, err = runCLI(t, "-log-level", "info", "show", "-o", target)
		require.NoError(t, err)
		assert.Contains(t, errOut, "configuration written")
	})

	t.Run("LogLevelFromEnvironment", func(t *testing.T) {
		isolate(t)
		t.Setenv("STRATUS_LOG_LEVEL", "warn")
		target := filepath.Join(t.TempDir(), "effective.toml")

		_, errOut, err := runCLI(t, "show", "-o", target)
		require.NoError(t, err)
		assert.NotContains(t, errOut, "configuration written")
	})

	t.Run("MalformedFile", func(t *testing.T) {
		home := isolate(t)
		require.NoError(t, os.WriteFile(filepath.Join(home, ".st_config.toml"), []byte("techno = "), 0644))

		_, errOut, err := runCLI(t, "show")
		assert.Error(t, err)
		assert.NotContains(t, errOut, stratus.FallbackNotice)
	})
}

func TestInitCommand(t *testing.T) {
	home := isolate(t)

	out, _, err := runCLI(t, "init", "-home")
	require.NoError(t, err)
	path := filepath.Join(home, ".st_config.toml")
	assert.Equal(t, path+"\n", out)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, stratus.DefaultConfig(), content)

	_, _, err = runCLI(t, "init", "-home")
	assert.Equal(t, 1, exitCode(err))

	_, _, err = runCLI(t, "init", "-home", "-force")
	require.NoError(t, err)

	out, _, err = runCLI(t, "where")
	require.NoError(t, err)
	assert.Equal(t, path+"\thome\n", out)
}

func TestModulesCommand(t *testing.T) {
	isolate(t)

	out, _, err := runCLI(t, "modules")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(stratus.Manifest()))
	assert.True(t, strings.HasPrefix(lines[0], "st_model"))
	assert.Contains(t, out, "(only GetWeightTime, GetWeightArea, GetWeightPower)")
	assert.Contains(t, lines[0], "missing")
}

func TestExportsCommand(t *testing.T) {
	isolate(t)

	_, _, err := runCLI(t, "exports")
	assert.ErrorIs(t, err, export.ErrModuleMissing)
}

func TestUsage(t *testing.T) {
	t.Run("Help", func(t *testing.T) {
		_, errOut, err := runCLI(t, "-h")
		assert.NoError(t, err)
		assert.Contains(t, errOut, "Commands:")
	})

	t.Run("MissingCommand", func(t *testing.T) {
		_, _, err := runCLI(t)
		assert.Equal(t, 2, exitCode(err))
	})

	t.Run("UnknownCommand", func(t *testing.T) {
		_, _, err := runCLI(t, "route")
		assert.Equal(t, 2, exitCode(err))
	})

	t.Run("BadFlag", func(t *testing.T) {
		_, _, err := runCLI(t, "where", "-nope")
		assert.Equal(t, 2, exitCode(err))
	})
}
