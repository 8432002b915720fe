// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/termchat/internal/util"
)

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

const defaultHeader = `# termchat configuration file
#
# Each [[providers]] entry is one endpoint:
#   protocol = "openai"  posts to <endpoint>/chat/completions (Server-Sent Events)
#   protocol = "http"    posts to <endpoint> as written
#   dialect  = "stream"  incremental replies
#   dialect  = "json"    one whole-message reply
#
# api_key may be left empty and supplied with TERMCHAT_API_KEY.

`

// WriteDefault writes a starter TOML configuration to path. It refuses to
// overwrite an existing file.
// SECURITY: The file holds API keys, so it is written 0600.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	return SaveTOML(Default(), path)
}

// SaveTOML writes cfg to path as TOML with the explanatory header.
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString(defaultHeader)
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
