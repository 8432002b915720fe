// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the termchat command line.
//
// Commands always return errors; Execute decides how to display them and
// which exit code to use. Failures inside a running session never reach
// this layer: the session reports them inline.

package cli

import (
	"errors"
	"fmt"
	"io"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0
	// ExitGeneralError covers startup failures: configuration, history
	// directory and terminal initialization.
	ExitGeneralError = 1
	// ExitUsageError indicates invalid flags or arguments.
	ExitUsageError = 2
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // Command that failed (e.g., "init", "providers")
	Action  string // Action being performed (e.g., "load config")
	Reason  string // Human-readable reason
	Err     error  // Underlying error (if any)
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError wraps flag and argument parsing failures.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{
		Command: command,
		Action:  action,
		Reason:  reason,
		Err:     err,
	}
}

// =============================================================================
// DISPLAY AND EXIT
// =============================================================================

// DisplayError writes a human-readable error line to w.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	st := newOutputStyles(w)
	fmt.Fprintf(w, "%s %s\n", st.Error.Render("[ERROR]"), err.Error())

	var usage *UsageError
	if errors.As(err, &usage) {
		fmt.Fprintln(w, st.Dim.Render("Run 'termchat --help' for usage."))
	}
}

// GetExitCode determines the exit code for an error returned by a command.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsageError
	}
	return ExitGeneralError
}
