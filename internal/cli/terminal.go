// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal detection for chatfmt output.
//
// Commands print colored output only to a terminal, honour NO_COLOR and
// FORCE_COLOR, and wrap to the terminal width.

package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// =============================================================================
// TTY DETECTION
// =============================================================================

// IsTTY reports whether stdin is a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY reports whether stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// TTYRequiredError is returned when a command needs an interactive terminal
// on both ends and does not have one.
type TTYRequiredError struct {
	Operation string
	Hint      string
}

func (e *TTYRequiredError) Error() string {
	msg := "not a terminal; interactive input not available"
	if e.Operation != "" {
		msg = "not a terminal; cannot " + e.Operation
	}
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// RequireTerminal fails with a TTYRequiredError unless stdin and stdout are
// both terminals. hint suggests a non-interactive alternative.
func RequireTerminal(operation, hint string) error {
	return requireTerminal(IsTTY(), IsStdoutTTY(), operation, hint)
}

func requireTerminal(stdin, stdout bool, operation, hint string) error {
	if stdin && stdout {
		return nil
	}
	return &TTYRequiredError{Operation: operation, Hint: hint}
}

// =============================================================================
// WIDTH
// =============================================================================

const (
	// DefaultTerminalWidth is used when stdout is not a terminal.
	DefaultTerminalWidth = 80

	// MinTerminalWidth keeps wrapped output readable in narrow panes.
	MinTerminalWidth = 40
)

// GetTerminalWidth returns the width of stdout, clamped to
// MinTerminalWidth, or DefaultTerminalWidth when it cannot be read.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width = 0
	}
	return clampWidth(width)
}

func clampWidth(width int) int {
	switch {
	case width <= 0:
		return DefaultTerminalWidth
	case width < MinTerminalWidth:
		return MinTerminalWidth
	default:
		return width
	}
}

// =============================================================================
// COLOR
// =============================================================================

var (
	colorMu       sync.Mutex
	colorDecided  bool
	colorsEnabled bool
)

// ColorsEnabled reports whether commands should print color. The decision
// is made once: NO_COLOR wins, then FORCE_COLOR, then whether stdout is a
// terminal. See https://no-color.org/.
func ColorsEnabled() bool {
	colorMu.Lock()
	defer colorMu.Unlock()
	if !colorDecided {
		colorsEnabled = detectColors(os.Getenv, IsStdoutTTY())
		colorDecided = true
	}
	return colorsEnabled
}

// ForceColorsEnabled pins the color decision, for --no-color and tests.
func ForceColorsEnabled(enabled bool) {
	colorMu.Lock()
	defer colorMu.Unlock()
	colorsEnabled = enabled
	colorDecided = true
}

func detectColors(getenv func(string) string, stdoutTTY bool) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}
	if getenv("FORCE_COLOR") != "" {
		return true
	}
	return stdoutTTY
}

// GetColorProfile returns the termenv profile for command output: Ascii
// when colors are off, otherwise what the terminal supports.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}
