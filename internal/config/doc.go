// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads termchat's settings and provider profiles.
//
// TOML, JSON and YAML files are supported, plus the legacy one-line-per-
// provider config.txt format. Defaults fill anything a file leaves out,
// environment variables override file values, and Validate reports every
// problem at once.
//
// # Key Types
//
//   - Config: the complete configuration, built once at startup
//   - GeneralConfig: history location and the size, window and pacing limits
//   - ProviderConfig: one provider endpoint as written in the file
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (TERMCHAT_*)
//   - the file given with --config
//   - ~/.termchat/config.toml, config.json, config.yaml
//   - ./config.txt (legacy format)
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	profiles, err := cfg.Profiles()
package config
