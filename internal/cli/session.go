// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/termchat/internal/cloud"
	"github.com/jeranaias/termchat/internal/config"
	"github.com/jeranaias/termchat/internal/logging"
	"github.com/jeranaias/termchat/internal/storage"
	"github.com/jeranaias/termchat/internal/templating"
	"github.com/jeranaias/termchat/internal/ui/chat"
	"github.com/jeranaias/termchat/internal/ui/input"
	"github.com/jeranaias/termchat/internal/ui/render"
	"github.com/jeranaias/termchat/internal/ui/terminal"
)

// sessionSetup is everything a session needs before the terminal is opened.
type sessionSetup struct {
	cfg     *config.Config
	options chat.Options
	cleanup func()
}

// prepareSession loads configuration and builds the session collaborators.
// Nothing here touches the terminal, so failures can still be reported on
// stderr.
func prepareSession(flags *Flags) (*sessionSetup, error) {
	cfg, err := loadConfig("termchat", flags)
	if err != nil {
		return nil, err
	}

	var notices []string
	logger, cleanup, err := logging.New(logging.Options{File: cfg.LogPath(), Level: cfg.Logging.Level})
	if err != nil {
		logger, cleanup = zap.NewNop(), func() {}
		notices = append(notices, fmt.Sprintf("Logging disabled: %v", err))
	}

	profiles, err := cfg.Profiles()
	if err != nil {
		cleanup()
		return nil, NewCommandError("termchat", "load config", "invalid provider", err)
	}
	initial, matched := config.SelectProfile(profiles, flags.Provider, flags.Model)
	if !matched {
		notices = append(notices, fmt.Sprintf("No configured provider matches provider=%q model=%q; using %s (%s)",
			flags.Provider, flags.Model, initial.Name, initial.Model))
	}

	store, err := storage.NewStore(cfg.HistoryPath(), logger)
	if err != nil {
		cleanup()
		return nil, NewCommandError("termchat", "open history", cfg.HistoryPath(), err)
	}

	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}

	logger.Info("session configured",
		zap.String("config", cfg.Source),
		zap.String("provider", initial.Name),
		zap.String("model", initial.Model),
		zap.Bool("matched", matched),
		zap.Int("profiles", len(profiles)),
		zap.String("history_dir", store.BaseDir))

	return &sessionSetup{
		cfg: cfg,
		options: chat.Options{
			Profiles:           profiles,
			Initial:            initial,
			Exchanger:          cloud.NewClient(logger),
			Store:              store,
			Fetcher:            templating.NewFetcher(cfg.General.MaxFileSize, wd),
			Table:              templating.NewTableAt(wd),
			Throttle:           render.NewThrottle(cfg.RedrawThrottle()),
			MaxMessageLength:   cfg.General.MaxMessageLength,
			ContextWindow:      cfg.General.ContextWindow,
			StreamFPS:          cfg.General.StreamFPS,
			MarkdownTranscript: cfg.UI.MarkdownTranscript,
			WorkDir:            wd,
			Notices:            notices,
			Logger:             logger,
		},
		cleanup: cleanup,
	}, nil
}

// runSession runs the interactive session until the user exits or ctx is
// cancelled. Only configuration and terminal failures are returned; errors
// inside the session are shown in the conversation.
func runSession(ctx context.Context, streams Streams, flags *Flags) error {
	setup, err := prepareSession(flags)
	if err != nil {
		return err
	}
	defer setup.cleanup()
	logger := setup.options.Logger

	screen, err := terminal.Open(streams.In, streams.Out)
	if err != nil {
		if errors.Is(err, terminal.ErrNotTerminal) {
			return NewCommandError("termchat", "start session", "stdin and stdout must be a terminal", err)
		}
		return NewCommandError("termchat", "start session", "cannot initialize terminal", err)
	}
	defer screen.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := input.NewReader(screen.Input(), setup.cfg.EscDelay())
	go reader.Run(ctx)

	controller := chat.New(screen, setup.options)
	err = controller.Run(ctx, reader.Keys(), screen.WatchResize(ctx))
	if rerr := reader.Err(); rerr != nil {
		logger.Warn("keyboard input closed", zap.Error(rerr))
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("session ended with error", zap.Error(err))
		return err
	}
	logger.Info("session ended")
	return nil
}
