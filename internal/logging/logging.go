// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the file logger used by every termchat component.
//
// The terminal belongs to the UI while a session runs, so log output never
// goes to stdout or stderr; it is appended to a file as JSON lines.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects the log destination and verbosity.
type Options struct {
	// File is the log path. Empty disables logging.
	File string

	// Level is debug, info, warn, error or off.
	Level string
}

// ParseLevel maps a config level name to a zap level. ok is false for
// "off" and unknown names.
func ParseLevel(name string) (zapcore.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel, true
	case "", "info":
		return zapcore.InfoLevel, true
	case "warn", "warning":
		return zapcore.WarnLevel, true
	case "error":
		return zapcore.ErrorLevel, true
	default:
		return zapcore.InfoLevel, false
	}
}

// New opens the log file and returns a logger tagged with a fresh session
// id. The returned cleanup func syncs and closes the file. A disabled
// configuration yields a no-op logger.
func New(opts Options) (*zap.Logger, func(), error) {
	level, ok := ParseLevel(opts.Level)
	if !ok || opts.File == "" {
		return zap.NewNop(), func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := NewWithWriter(zapcore.AddSync(f), level)
	cleanup := func() {
		_ = logger.Sync()
		_ = f.Close()
	}
	return logger, cleanup, nil
}

// NewWithWriter builds a JSON logger writing to w at the given level.
func NewWithWriter(w zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), w, zap.NewAtomicLevelAt(level))
	return zap.New(core).With(zap.String("session", uuid.NewString()))
}
