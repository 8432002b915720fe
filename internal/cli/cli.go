// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termchat/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Flags holds the persistent flags shared by every command.
type Flags struct {
	Provider   string
	Model      string
	ConfigPath string
	HistoryDir string
	LogLevel   string
}

// Streams are the process's standard streams. The session needs real files
// for In and Out because it switches the terminal into raw mode.
type Streams struct {
	In  *os.File
	Out *os.File
	Err io.Writer
}

// StdStreams returns the process's standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// =============================================================================
// COMMAND TREE
// =============================================================================

// NewRootCommand builds the termchat command tree. Running the root command
// starts an interactive session.
func NewRootCommand(streams Streams) *cobra.Command {
	flags := &Flags{}

	root := &cobra.Command{
		Use:   "termchat",
		Short: "Chat with LLM providers from the terminal",
		Long: `termchat is a terminal chat client for OpenAI-compatible and plain HTTP
chat endpoints. Replies stream into a scrolling conversation view, files can be
injected into messages with {{:Fpath}} tags, and conversations are saved as JSON.

Press Ctrl+L inside a session for commands (file, provider, clear, save, load,
history, clean, exit).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSession(cmd.Context(), streams, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.Provider, "provider", "p", "", "provider name to start with (case-insensitive)")
	pf.StringVarP(&flags.Model, "model", "m", "", "model to start with (case-insensitive)")
	pf.StringVarP(&flags.ConfigPath, "config", "c", "", "config file (.toml, .json, .yaml or legacy .txt)")
	pf.StringVar(&flags.HistoryDir, "history-dir", "", "directory for saved conversations")
	pf.StringVar(&flags.LogLevel, "log-level", "", "log level: debug, info, warn, error or off")

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})

	root.AddCommand(
		newProvidersCommand(flags),
		newInitCommand(flags),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree with args and returns the exit code.
func Execute(ctx context.Context, args []string, streams Streams) int {
	root := NewRootCommand(streams)
	root.SetArgs(args)
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	err := root.ExecuteContext(ctx)
	if err != nil && isArgumentError(err) {
		err = &UsageError{Err: err}
	}
	DisplayError(streams.Err, err)
	return GetExitCode(err)
}

// isArgumentError recognizes cobra's positional-argument and unknown
// command errors, which do not pass through the flag error func.
func isArgumentError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.Contains(msg, "accepts ") ||
		strings.Contains(msg, "arg(s)")
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadConfig reads the configuration and applies command-line overrides,
// which take precedence over the file and the environment.
func loadConfig(command string, flags *Flags) (*config.Config, error) {
	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return nil, NewCommandError(command, "load config", "invalid configuration", err)
	}

	if flags.HistoryDir != "" {
		cfg.General.HistoryDir = flags.HistoryDir
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, NewCommandError(command, "load config", "invalid configuration", err)
	}
	return cfg, nil
}
