// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// legacySeparator splits the fields of a config.txt line.
const legacySeparator = "::"

// LoadLegacy reads the config.txt format, one provider per line:
//
//	name::endpoint::api_key::model[::openai|curl[::{"Header":"value"}[::infini]]]
//
// Blank lines and lines starting with # are skipped, as are lines with fewer
// than four fields. An unknown request type falls back to openai. Headers that
// are not valid JSON are retried with single quotes replaced, then dropped.
func LoadLegacy(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read legacy config: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if p, ok := parseLegacyLine(scanner.Text()); ok {
			cfg.Providers = append(cfg.Providers, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read legacy config: %w", err)
	}
	return nil
}

func parseLegacyLine(line string) (ProviderConfig, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ProviderConfig{}, false
	}

	// At most 7 fields so the headers JSON may itself contain "::".
	parts := strings.SplitN(line, legacySeparator, 7)
	if len(parts) < 4 {
		return ProviderConfig{}, false
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	p := ProviderConfig{
		Name:     parts[0],
		Endpoint: parts[1],
		APIKey:   parts[2],
		Model:    parts[3],
		Protocol: "openai",
		Dialect:  "stream",
	}
	if len(parts) > 4 && strings.EqualFold(parts[4], "curl") {
		p.Protocol = "http"
	}
	if len(parts) > 5 && parts[5] != "" {
		p.Headers = parseLegacyHeaders(parts[5])
	}
	if len(parts) > 6 {
		switch strings.ToLower(parts[6]) {
		case "infini", "true":
			p.Dialect = "json"
		}
	}
	return p, true
}

func parseLegacyHeaders(s string) map[string]string {
	var headers map[string]string
	if err := json.Unmarshal([]byte(s), &headers); err == nil {
		return headers
	}
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &headers); err == nil {
		return headers
	}
	return nil
}
