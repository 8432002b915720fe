// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termchat/internal/config"
)

// =============================================================================
// HELPERS
// =============================================================================

const testConfig = `[general]
history_dir = %q

[logging]
level = "off"

[[providers]]
name = "Alpha"
endpoint = "https://alpha.example/v1"
api_key = "sk-secret-value"
model = "org/m1"
protocol = "openai"
dialect = "stream"

[[providers]]
name = "Beta"
endpoint = "http://localhost:9000/chat"
model = "m2"
protocol = "http"
dialect = "json"
`

// isolate points HOME at an empty directory and clears the TERMCHAT_*
// overrides so the developer's own configuration is never read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	for _, name := range []string{"TERMCHAT_HISTORY_DIR", "TERMCHAT_LOG_LEVEL", "TERMCHAT_LOG_FILE", "TERMCHAT_MAX_MESSAGE_LENGTH", "TERMCHAT_API_KEY"} {
		t.Setenv(name, "")
	}
	return home
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(testConfig, filepath.Join(dir, "history"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// run executes the command tree with regular files standing in for the
// standard streams.
func run(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	dir := t.TempDir()
	in, err := os.Create(filepath.Join(dir, "stdin"))
	require.NoError(t, err)
	defer in.Close()
	out, err := os.Create(filepath.Join(dir, "stdout"))
	require.NoError(t, err)
	defer out.Close()

	var errBuf bytes.Buffer
	code = Execute(context.Background(), args, Streams{In: in, Out: out, Err: &errBuf})

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	return code, string(data), errBuf.String()
}

// =============================================================================
// SUBCOMMANDS
// =============================================================================

func TestVersion(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "version")

	assert.Equal(t, ExitSuccess, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, "termchat version "+Version)
	assert.Contains(t, stdout, "commit:")
}

func TestProviders_ListsProfilesWithoutCredentials(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)

	code, stdout, stderr := run(t, "providers", "--config", path)

	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Config: "+path)
	assert.Contains(t, stdout, "* Alpha - org/m1")
	assert.Contains(t, stdout, "  Beta - m2")
	assert.Contains(t, stdout, "https://alpha.example/v1/chat/completions")
	assert.Contains(t, stdout, "http://localhost:9000/chat")
	assert.Contains(t, stdout, "key set")
	assert.Contains(t, stdout, "no key")
	assert.NotContains(t, stdout, "sk-secret-value")
}

func TestProviders_SelectionFlags(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)

	_, stdout, _ := run(t, "providers", "--config", path, "--provider", "beta")
	assert.Contains(t, stdout, "* Beta - m2")
	assert.NotContains(t, stdout, "No provider matches")

	_, stdout, _ = run(t, "providers", "--config", path, "--provider", "alpha", "--model", "m2")
	assert.Contains(t, stdout, "* Alpha - org/m1")
	assert.Contains(t, stdout, `No provider matches provider="alpha" model="m2"`)
}

func TestProviders_BuiltInDefaults(t *testing.T) {
	isolate(t)
	code, stdout, stderr := run(t, "providers")

	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "built-in defaults")
	assert.Contains(t, stdout, "* OpenRouter")
}

func TestInit_WritesOnce(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "conf", "termchat.toml")

	code, stdout, stderr := run(t, "init", "--config", path)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "Wrote "+path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	cfg, err := config.LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Providers[0].Name, cfg.Providers[0].Name)

	code, _, stderr = run(t, "init", "--config", path)
	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, stderr, "file exists")
}

func TestInit_DefaultLocation(t *testing.T) {
	home := isolate(t)
	code, _, stderr := run(t, "init")
	require.Equal(t, ExitSuccess, code, stderr)

	_, err := os.Stat(filepath.Join(home, ".termchat", "config.toml"))
	assert.NoError(t, err)
}

// =============================================================================
// ROOT COMMAND
// =============================================================================

func TestRoot_RequiresTerminal(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)

	code, _, stderr := run(t, "--config", path)

	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, stderr, "[ERROR]")
	assert.Contains(t, stderr, "must be a terminal")

	// The history directory is prepared before the terminal is touched.
	_, err := os.Stat(filepath.Join(dir, "history"))
	assert.NoError(t, err)
}

func TestRoot_InvalidConfigExitsBeforeTerminal(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[[providers]]
name = "Broken"
endpoint = "ftp://nowhere"
model = "m"
protocol = "openai"
dialect = "stream"
`), 0600))

	code, _, stderr := run(t, "--config", path)

	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, stderr, "invalid configuration")
	assert.Contains(t, stderr, "providers[0].endpoint")
}

func TestRoot_MissingConfigFile(t *testing.T) {
	dir := isolate(t)
	code, _, stderr := run(t, "providers", "--config", filepath.Join(dir, "absent.toml"))

	assert.Equal(t, ExitGeneralError, code)
	assert.Contains(t, stderr, "absent.toml")
}

func TestRoot_UsageErrors(t *testing.T) {
	isolate(t)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"unknown command", []string{"chatty"}},
		{"extra argument", []string{"version", "now"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := run(t, tt.args...)
			assert.Equal(t, ExitUsageError, code)
			assert.Contains(t, stderr, "termchat --help")
		})
	}
}

// =============================================================================
// CONFIGURATION OVERRIDES
// =============================================================================

func TestLoadConfig_FlagsOverrideEnvironment(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)
	t.Setenv("TERMCHAT_HISTORY_DIR", filepath.Join(dir, "from-env"))
	t.Setenv("TERMCHAT_LOG_LEVEL", "debug")

	cfg, err := loadConfig("test", &Flags{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-env"), cfg.General.HistoryDir)
	assert.Equal(t, "debug", cfg.Logging.Level)

	cfg, err = loadConfig("test", &Flags{ConfigPath: path, HistoryDir: filepath.Join(dir, "from-flag"), LogLevel: "warn"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "from-flag"), cfg.General.HistoryDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadConfig_InvalidLogLevelFlag(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)

	_, err := loadConfig("test", &Flags{ConfigPath: path, LogLevel: "loud"})
	require.Error(t, err)

	var cmdErr *CommandError
	require.True(t, errors.As(err, &cmdErr))
	assert.Equal(t, "load config", cmdErr.Action)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestPrepareSession_FallsBackToFirstProfile(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir)

	setup, err := prepareSession(&Flags{ConfigPath: path, Provider: "Gamma"})
	require.NoError(t, err)
	defer setup.cleanup()

	assert.Equal(t, "Alpha", setup.options.Initial.Name)
	require.Len(t, setup.options.Notices, 1)
	assert.Contains(t, setup.options.Notices[0], "using Alpha (org/m1)")
	assert.Len(t, setup.options.Profiles, 2)
	assert.Equal(t, 10, setup.options.ContextWindow)
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitUsageError, GetExitCode(&UsageError{Err: errors.New("bad flag")}))
	assert.Equal(t, ExitGeneralError, GetExitCode(NewCommandError("termchat", "start session", "no tty", nil)))
	assert.Equal(t, ExitUsageError, GetExitCode(fmt.Errorf("wrapped: %w", &UsageError{Err: errors.New("x")})))
}
