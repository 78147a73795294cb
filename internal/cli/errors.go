// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes shared by all commands.
//
// Command handlers always return errors; main displays them once and maps
// them to an exit code.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/chatfmt/internal/backend"
	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/export"
	"github.com/jeranaias/chatfmt/internal/session"
	"github.com/jeranaias/chatfmt/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess       = 0
	ExitGeneralError  = 1
	ExitUsageError    = 2
	ExitConfigError   = 3
	ExitNetworkError  = 5
	ExitNotFoundError = 7
	ExitTimeoutError  = 8
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// CommandError represents a CLI command error with context.
type CommandError struct {
	Command string // e.g. "export"
	Action  string // e.g. "write"
	Reason  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s failed: %s: %v", e.Command, e.Action, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %s", e.Command, e.Action, e.Reason)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// UsageError reports bad command-line input.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nExample: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// ConfigError wraps a failure to load, validate or save the config file.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewCommandError creates a new command error.
func NewCommandError(command, action, reason string, err error) error {
	return &CommandError{Command: command, Action: action, Reason: reason, Err: err}
}

// NewUsageError creates a usage error with an optional example.
func NewUsageError(reason, example string) error {
	return &UsageError{Reason: reason, Example: example}
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayError writes err to w, as a JSON object in JSON mode.
func DisplayError(w io.Writer, err error, jsonMode bool) {
	if err == nil {
		return
	}
	if jsonMode {
		displayErrorJSON(w, err)
		return
	}
	fmt.Fprintf(w, "%s %s\n", RenderConditional(ErrorStyle, "[ERROR]"), err.Error())
}

func displayErrorJSON(w io.Writer, err error) {
	data := ErrorData{
		Type:     errorType(err),
		ExitCode: GetExitCode(err),
	}
	command := ""
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		command = cmdErr.Command
		data.Action = cmdErr.Action
	}

	resp := NewJSONErrorResponse(command, err)
	resp.Data = data
	_ = resp.Print(w)
}

func errorType(err error) string {
	switch GetExitCode(err) {
	case ExitUsageError:
		return "usage_error"
	case ExitConfigError:
		return "config_error"
	case ExitNetworkError:
		return "network_error"
	case ExitNotFoundError:
		return "not_found_error"
	case ExitTimeoutError:
		return "timeout_error"
	default:
		return "generic_error"
	}
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	var ttyErr *TTYRequiredError
	var configErr config.ValidateErrors
	var cfgErr *ConfigError
	var apiErr *backend.APIError

	switch {
	case errors.As(err, &usageErr), errors.As(err, &ttyErr):
		return ExitUsageError
	case errors.As(err, &cfgErr), errors.As(err, &configErr):
		return ExitConfigError
	case errors.Is(err, context.DeadlineExceeded):
		return ExitTimeoutError
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, export.ErrEmptyConversation),
		errors.Is(err, session.ErrNoStore):
		return ExitNotFoundError
	case errors.Is(err, backend.ErrUnavailable),
		errors.Is(err, backend.ErrRateLimited),
		errors.Is(err, backend.ErrBadResponse),
		errors.As(err, &apiErr):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}
