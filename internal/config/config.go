// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete termchat configuration.
type Config struct {
	General   GeneralConfig    `toml:"general" json:"general" yaml:"general"`
	Logging   LoggingConfig    `toml:"logging" json:"logging" yaml:"logging"`
	UI        UIConfig         `toml:"ui" json:"ui" yaml:"ui"`
	Providers []ProviderConfig `toml:"providers" json:"providers" yaml:"providers"`

	// Source is the file the configuration was read from, empty for defaults.
	Source string `toml:"-" json:"-" yaml:"-"`
}

// GeneralConfig holds limits and locations.
type GeneralConfig struct {
	// HistoryDir is where conversations are saved. "~" is expanded.
	HistoryDir string `toml:"history_dir" json:"history_dir" yaml:"history_dir"`
	// MaxFileSize is the largest file a {{:F...}} tag may inject, in bytes.
	MaxFileSize int64 `toml:"max_file_size" json:"max_file_size" yaml:"max_file_size"`
	// MaxMessageLength caps typed messages and replies, in characters.
	MaxMessageLength int `toml:"max_message_length" json:"max_message_length" yaml:"max_message_length"`
	// ContextWindow is how many non-system messages are sent per exchange.
	ContextWindow int `toml:"context_window" json:"context_window" yaml:"context_window"`
	// RedrawThrottleMs is the minimum gap between unforced full redraws.
	RedrawThrottleMs int `toml:"redraw_throttle_ms" json:"redraw_throttle_ms" yaml:"redraw_throttle_ms"`
	// StreamFPS caps incremental redraws while a reply streams.
	StreamFPS int `toml:"stream_fps" json:"stream_fps" yaml:"stream_fps"`
	// EscDelayMs is how long the key decoder waits for the rest of a sequence.
	EscDelayMs int `toml:"esc_delay_ms" json:"esc_delay_ms" yaml:"esc_delay_ms"`
}

// LoggingConfig controls the log file.
type LoggingConfig struct {
	// File is the log file path. Empty disables logging.
	File string `toml:"file" json:"file" yaml:"file"`
	// Level is debug, info, warn, error or off.
	Level string `toml:"level" json:"level" yaml:"level"`
}

// UIConfig holds display preferences.
type UIConfig struct {
	// MarkdownTranscript renders assistant turns as markdown in the history viewer.
	MarkdownTranscript bool `toml:"markdown_transcript" json:"markdown_transcript" yaml:"markdown_transcript"`
}

// ProviderConfig is one provider endpoint.
type ProviderConfig struct {
	Name     string            `toml:"name" json:"name" yaml:"name"`
	Endpoint string            `toml:"endpoint" json:"endpoint" yaml:"endpoint"`
	APIKey   string            `toml:"api_key" json:"api_key" yaml:"api_key"`
	Model    string            `toml:"model" json:"model" yaml:"model"`
	Protocol string            `toml:"protocol" json:"protocol" yaml:"protocol"`
	Dialect  string            `toml:"dialect" json:"dialect" yaml:"dialect"`
	Headers  map[string]string `toml:"headers" json:"headers,omitempty" yaml:"headers,omitempty"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default limits.
const (
	DefaultMaxFileSize      = 1024 * 1024
	DefaultMaxMessageLength = 5000
	DefaultContextWindow    = 10
	DefaultRedrawThrottleMs = 100
	DefaultStreamFPS        = 30
	DefaultEscDelayMs       = 100
)

// DefaultProvider is used when no configuration names any provider.
func DefaultProvider() ProviderConfig {
	return ProviderConfig{
		Name:     "OpenRouter",
		Endpoint: "https://openrouter.ai/api/v1",
		Model:    "deepseek/deepseek-r1:free",
		Protocol: "openai",
		Dialect:  "stream",
		Headers: map[string]string{
			"HTTP-Referer": "https://github.com/jeranaias/termchat",
			"X-Title":      "termchat",
		},
	}
}

// Default returns a configuration with all defaults applied.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			HistoryDir:       filepath.Join("~", ".termchat", "history"),
			MaxFileSize:      DefaultMaxFileSize,
			MaxMessageLength: DefaultMaxMessageLength,
			ContextWindow:    DefaultContextWindow,
			RedrawThrottleMs: DefaultRedrawThrottleMs,
			StreamFPS:        DefaultStreamFPS,
			EscDelayMs:       DefaultEscDelayMs,
		},
		Logging: LoggingConfig{
			File:  filepath.Join("~", ".termchat", "termchat.log"),
			Level: "info",
		},
		Providers: []ProviderConfig{DefaultProvider()},
	}
}

// RedrawThrottle returns the full-redraw throttle interval.
func (c *Config) RedrawThrottle() time.Duration {
	return time.Duration(c.General.RedrawThrottleMs) * time.Millisecond
}

// EscDelay returns how long the decoder waits for pending bytes.
func (c *Config) EscDelay() time.Duration {
	return time.Duration(c.General.EscDelayMs) * time.Millisecond
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// LegacyFile is the old provider list, read from the working directory.
const LegacyFile = "config.txt"

// ConfigDir returns the termchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".termchat"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// candidatePaths lists the files Load tries, in order.
func candidatePaths() []string {
	var paths []string
	if dir, err := ConfigDir(); err == nil {
		for _, name := range []string{"config.toml", "config.json", "config.yaml", "config.yml"} {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	return append(paths, LegacyFile)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the configuration. A non-empty path must exist and is the only
// file consulted; otherwise the first existing candidate file is used, and
// defaults when none exists. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	if path != "" {
		return LoadFromPath(path)
	}
	for _, candidate := range candidatePaths() {
		if _, err := os.Stat(candidate); err == nil {
			return LoadFromPath(candidate)
		}
	}

	cfg := Default()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadFromPath loads configuration from a specific file, choosing the format
// by extension. Unknown extensions are read as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = LoadJSON(cfg, path)
	case ".yaml", ".yml":
		err = LoadYAML(cfg, path)
	case ".txt":
		err = LoadLegacy(cfg, path)
	default:
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}
	cfg.Source = path

	fillDefaults(cfg)
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadTOML decodes a TOML file into cfg.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file into cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadYAML decodes a YAML file into cfg.
func LoadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read YAML file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode YAML file: %w", err)
	}
	return nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	g := &cfg.General
	if g.HistoryDir == "" {
		g.HistoryDir = defaults.General.HistoryDir
	}
	if g.MaxFileSize == 0 {
		g.MaxFileSize = defaults.General.MaxFileSize
	}
	if g.MaxMessageLength == 0 {
		g.MaxMessageLength = defaults.General.MaxMessageLength
	}
	if g.ContextWindow == 0 {
		g.ContextWindow = defaults.General.ContextWindow
	}
	if g.RedrawThrottleMs == 0 {
		g.RedrawThrottleMs = defaults.General.RedrawThrottleMs
	}
	if g.StreamFPS == 0 {
		g.StreamFPS = defaults.General.StreamFPS
	}
	if g.EscDelayMs == 0 {
		g.EscDelayMs = defaults.General.EscDelayMs
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = defaults.Logging.Level
	}
	if cfg.Logging.File == "" && cfg.Logging.Level != "off" {
		cfg.Logging.File = defaults.Logging.File
	}

	// A file without providers still gets a usable session.
	if len(cfg.Providers) == 0 {
		cfg.Providers = defaults.Providers
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies TERMCHAT_* environment variables:
//   - TERMCHAT_HISTORY_DIR: overrides general.history_dir
//   - TERMCHAT_LOG_LEVEL: overrides logging.level
//   - TERMCHAT_LOG_FILE: overrides logging.file
//   - TERMCHAT_MAX_MESSAGE_LENGTH: overrides general.max_message_length
//   - TERMCHAT_API_KEY: credential for providers that have none
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("TERMCHAT_HISTORY_DIR"); dir != "" {
		c.General.HistoryDir = dir
	}
	if level := os.Getenv("TERMCHAT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("TERMCHAT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if v := os.Getenv("TERMCHAT_MAX_MESSAGE_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.General.MaxMessageLength = n
		}
	}
	if key := os.Getenv("TERMCHAT_API_KEY"); key != "" {
		for i := range c.Providers {
			if c.Providers[i].APIKey == "" {
				c.Providers[i].APIKey = key
			}
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	positive := func(field string, v int64) {
		if v <= 0 {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("must be positive, got %d", v)})
		}
	}

	if strings.TrimSpace(c.General.HistoryDir) == "" {
		errs = append(errs, ValidationError{Field: "general.history_dir", Message: "must not be empty"})
	}
	positive("general.max_file_size", c.General.MaxFileSize)
	positive("general.max_message_length", int64(c.General.MaxMessageLength))
	positive("general.context_window", int64(c.General.ContextWindow))
	positive("general.redraw_throttle_ms", int64(c.General.RedrawThrottleMs))
	positive("general.stream_fps", int64(c.General.StreamFPS))
	positive("general.esc_delay_ms", int64(c.General.EscDelayMs))

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error", "off":
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error, off", c.Logging.Level),
		})
	}

	if len(c.Providers) == 0 {
		errs = append(errs, ValidationError{Field: "providers", Message: "at least one provider is required"})
	}
	seen := make(map[string]bool)
	for i, p := range c.Providers {
		field := fmt.Sprintf("providers[%d]", i)
		if strings.TrimSpace(p.Name) == "" {
			errs = append(errs, ValidationError{Field: field + ".name", Message: "must not be empty"})
		}
		key := strings.ToLower(p.Name) + "\x00" + strings.ToLower(p.Model)
		if seen[key] {
			errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf("duplicate provider %s with model %s", p.Name, p.Model)})
		}
		seen[key] = true
		if strings.TrimSpace(p.Model) == "" {
			errs = append(errs, ValidationError{Field: field + ".model", Message: "must not be empty"})
		}
		if u, err := url.Parse(p.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: field + ".endpoint", Message: fmt.Sprintf("invalid URL '%s', must be http(s)://host/...", p.Endpoint)})
		}
		if _, err := cloud.ParseProtocol(p.Protocol); err != nil {
			errs = append(errs, ValidationError{Field: field + ".protocol", Message: err.Error()})
		}
		if _, err := cloud.ParseDialect(p.Dialect); err != nil {
			errs = append(errs, ValidationError{Field: field + ".dialect", Message: err.Error()})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// PROFILES
// =============================================================================

// Profiles converts the provider entries into immutable profiles, in file order.
func (c *Config) Profiles() ([]*cloud.Profile, error) {
	profiles := make([]*cloud.Profile, 0, len(c.Providers))
	for _, p := range c.Providers {
		protocol, err := cloud.ParseProtocol(p.Protocol)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		dialect, err := cloud.ParseDialect(p.Dialect)
		if err != nil {
			return nil, fmt.Errorf("provider %s: %w", p.Name, err)
		}
		headers := make(map[string]string, len(p.Headers))
		for k, v := range p.Headers {
			headers[k] = v
		}
		profiles = append(profiles, &cloud.Profile{
			Name:       strings.TrimSpace(p.Name),
			Endpoint:   strings.TrimSpace(p.Endpoint),
			Credential: strings.TrimSpace(p.APIKey),
			Model:      strings.TrimSpace(p.Model),
			Protocol:   protocol,
			Dialect:    dialect,
			Headers:    headers,
		})
	}
	return profiles, nil
}

// SelectProfile returns the first profile whose name and model match the
// given values case-insensitively; empty values match anything. When nothing
// matches, the first profile is returned with matched set to false.
func SelectProfile(profiles []*cloud.Profile, provider, model string) (p *cloud.Profile, matched bool) {
	if len(profiles) == 0 {
		return nil, false
	}
	if provider == "" && model == "" {
		return profiles[0], true
	}
	for _, p := range profiles {
		if p.Matches(provider, model) {
			return p, true
		}
	}
	return profiles[0], false
}

// HistoryPath returns the history directory with "~" expanded.
func (c *Config) HistoryPath() string {
	return util.ExpandHome(c.General.HistoryDir)
}

// LogPath returns the log file path with "~" expanded.
func (c *Config) LogPath() string {
	return util.ExpandHome(c.Logging.File)
}
