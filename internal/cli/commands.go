// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/jeranaias/termchat/internal/config"
)

// =============================================================================
// PROVIDERS
// =============================================================================

func newProvidersCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "List the configured providers",
		Long: `List the provider profiles from the configuration, in the order the session
offers them. The profile a plain "termchat" run would start with is marked with *.
Credentials are never printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig("providers", flags)
			if err != nil {
				return err
			}
			profiles, err := cfg.Profiles()
			if err != nil {
				return NewCommandError("providers", "list", "invalid provider", err)
			}
			initial, matched := config.SelectProfile(profiles, flags.Provider, flags.Model)

			out := cmd.OutOrStdout()
			st := newOutputStyles(out)
			source := cfg.Source
			if source == "" {
				source = "built-in defaults"
			}
			fmt.Fprintln(out, st.Title.Render("Providers"))
			fmt.Fprintf(out, "%s %s\n", st.Label.Render("Config:"), st.Value.Render(source))
			fmt.Fprintln(out, st.separator(60))
			for _, p := range profiles {
				marker := " "
				if p == initial {
					marker = "*"
				}
				key := st.Success.Render("key set")
				if p.Credential == "" {
					key = st.Warning.Render("no key")
				}
				fmt.Fprintf(out, "%s %s  %s\n", marker, st.Value.Render(p.String()), key)
				fmt.Fprintf(out, "    %s\n", st.Dim.Render(p.RequestURL()))
			}
			if !matched {
				fmt.Fprintln(out, st.Warning.Render(fmt.Sprintf(
					"No provider matches provider=%q model=%q; the first profile is used", flags.Provider, flags.Model)))
			}
			return nil
		},
	}
}

// =============================================================================
// INIT
// =============================================================================

func newInitCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a starter configuration file",
		Long: `Write a commented starter TOML configuration. The file goes to --config when
given, otherwise to ~/.termchat/config.toml. An existing file is never overwritten.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.ConfigPath
			if path == "" {
				p, err := config.ConfigPathTOML()
				if err != nil {
					return NewCommandError("init", "locate config", "no home directory", err)
				}
				path = p
			}

			if err := config.WriteDefault(path); err != nil {
				if errors.Is(err, config.ErrConfigExists) {
					return NewCommandError("init", "write config", "file exists, remove it first", err)
				}
				return NewCommandError("init", "write config", path, err)
			}

			out := cmd.OutOrStdout()
			st := newOutputStyles(out)
			fmt.Fprintf(out, "%s %s\n", st.Success.Render("Wrote"), path)
			fmt.Fprintln(out, st.Dim.Render("Add an api_key to each provider, or set TERMCHAT_API_KEY."))
			return nil
		},
	}
}

// =============================================================================
// VERSION
// =============================================================================

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "termchat version %s\n", Version)
			fmt.Fprintf(out, "  commit:  %s\n", GitCommit)
			fmt.Fprintf(out, "  built:   %s\n", BuildDate)
			fmt.Fprintf(out, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}
