// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/termchat/internal/cloud"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(1024*1024), cfg.General.MaxFileSize)
	assert.Equal(t, 5000, cfg.General.MaxMessageLength)
	assert.Equal(t, 10, cfg.General.ContextWindow)
	assert.Equal(t, 100, cfg.General.RedrawThrottleMs)
	assert.Equal(t, 100*time.Millisecond, cfg.EscDelay())
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "OpenRouter", cfg.Providers[0].Name)
	assert.Equal(t, "deepseek/deepseek-r1:free", cfg.Providers[0].Model)
	assert.Equal(t, "termchat", cfg.Providers[0].Headers["X-Title"])
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromPath_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[general]
history_dir = "/tmp/hist"
context_window = 4

[[providers]]
name = "Local"
endpoint = "http://localhost:8080/v1"
model = "llama"
protocol = "openai"

[[providers]]
name = "Infini"
endpoint = "https://cloud.example.com/maas/v1/chat"
api_key = "k"
model = "qwen"
protocol = "http"
dialect = "json"
[providers.headers]
X-Trace = "on"
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, "/tmp/hist", cfg.General.HistoryDir)
	assert.Equal(t, 4, cfg.General.ContextWindow)
	assert.Equal(t, 5000, cfg.General.MaxMessageLength, "missing values take defaults")

	profiles, err := cfg.Profiles()
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, cloud.ProtocolHTTP, profiles[1].Protocol)
	assert.Equal(t, cloud.DialectJSON, profiles[1].Dialect)
	assert.Equal(t, "on", profiles[1].Headers["X-Trace"])
}

func TestLoadFromPath_JSONAndYAML(t *testing.T) {
	jsonPath := writeFile(t, "config.json", `{
  "providers": [{"name": "J", "endpoint": "https://j.example.com", "model": "m"}]
}`)
	yamlPath := writeFile(t, "config.yaml", `
logging:
  level: debug
providers:
  - name: Y
    endpoint: https://y.example.com
    model: m
    dialect: json
`)

	cfg, err := LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "J", cfg.Providers[0].Name)

	cfg, err = LoadFromPath(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, "Y", cfg.Providers[0].Name)
	assert.Equal(t, "json", cfg.Providers[0].Dialect)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromPath_Legacy(t *testing.T) {
	path := writeFile(t, "config.txt", `# comment line
OpenRouter::https://openrouter.ai/api/v1::sk-1::deepseek/deepseek-r1:free::openai::{"X-Title": "Termux Chat"}

Custom::https://api.example.com/chat::sk-2::qwen::curl::{'X-A': 'b'}::infini
Broken::only-two
Weird::https://w.example.com::k::m::soap
`)

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 3)

	or := cfg.Providers[0]
	assert.Equal(t, "openai", or.Protocol)
	assert.Equal(t, "stream", or.Dialect)
	assert.Equal(t, "Termux Chat", or.Headers["X-Title"])

	custom := cfg.Providers[1]
	assert.Equal(t, "http", custom.Protocol)
	assert.Equal(t, "json", custom.Dialect)
	assert.Equal(t, "b", custom.Headers["X-A"], "single-quoted headers are repaired")

	assert.Equal(t, "openai", cfg.Providers[2].Protocol, "unknown request type falls back to openai")
}

func TestLoadFromPath_LegacyEmptyUsesDefaultProvider(t *testing.T) {
	path := writeFile(t, "config.txt", "# only comments\n")

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "OpenRouter", cfg.Providers[0].Name)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"no providers", func(c *Config) { c.Providers = nil }, "providers"},
		{"bad endpoint", func(c *Config) { c.Providers[0].Endpoint = "openrouter.ai" }, "providers[0].endpoint"},
		{"bad dialect", func(c *Config) { c.Providers[0].Dialect = "xml" }, "providers[0].dialect"},
		{"empty model", func(c *Config) { c.Providers[0].Model = "" }, "providers[0].model"},
		{"zero window", func(c *Config) { c.General.ContextWindow = 0 }, "general.context_window"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"duplicate", func(c *Config) { c.Providers = append(c.Providers, c.Providers[0]) }, "providers[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			found := false
			for _, v := range verrs {
				if v.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected error on %s, got %v", tt.field, err)
		})
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("TERMCHAT_HISTORY_DIR", "/var/tmp/h")
	t.Setenv("TERMCHAT_LOG_LEVEL", "warn")
	t.Setenv("TERMCHAT_API_KEY", "env-key")
	t.Setenv("TERMCHAT_MAX_MESSAGE_LENGTH", "1200")

	cfg := Default()
	cfg.Providers = append(cfg.Providers, ProviderConfig{Name: "B", Endpoint: "https://b.example", Model: "m", APIKey: "own"})
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "/var/tmp/h", cfg.General.HistoryDir)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1200, cfg.General.MaxMessageLength)
	assert.Equal(t, "env-key", cfg.Providers[0].APIKey)
	assert.Equal(t, "own", cfg.Providers[1].APIKey, "explicit keys are kept")
}

func TestSelectProfile(t *testing.T) {
	profiles := []*cloud.Profile{
		{Name: "OpenRouter", Model: "deepseek/deepseek-r1:free"},
		{Name: "OpenRouter", Model: "openai/gpt-4o"},
		{Name: "Local", Model: "llama"},
	}

	tests := []struct {
		name      string
		provider  string
		model     string
		want      *cloud.Profile
		wantMatch bool
	}{
		{"no flags", "", "", profiles[0], true},
		{"provider only", "local", "", profiles[2], true},
		{"provider and model", "openrouter", "OPENAI/GPT-4O", profiles[1], true},
		{"model only", "", "llama", profiles[2], true},
		{"no match", "missing", "", profiles[0], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, matched := SelectProfile(profiles, tt.provider, tt.model)
			assert.Same(t, tt.want, got)
			assert.Equal(t, tt.wantMatch, matched)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.toml")

	require.NoError(t, WriteDefault(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "OpenRouter", cfg.Providers[0].Name)

	assert.ErrorIs(t, WriteDefault(path), ErrConfigExists)
}
