// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds the styled components shared by the terminal renderer and the
// TUI.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// CodeStyle is the chroma style name for code blocks.
	CodeStyle string

	// ==========================================================================
	// MESSAGE STYLES
	// ==========================================================================

	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Timestamp      lipgloss.Style
	Body           lipgloss.Style
	Bold           lipgloss.Style
	Italic         lipgloss.Style
	ListMarker     lipgloss.Style
	Selected       lipgloss.Style
	Unselected     lipgloss.Style

	// ==========================================================================
	// SEGMENT STYLES
	// ==========================================================================

	CodeBlock  lipgloss.Style
	CodeBadge  lipgloss.Style
	LineNumber lipgloss.Style
	ImageCard  lipgloss.Style
	Reaction   lipgloss.Style

	// ==========================================================================
	// CHROME
	// ==========================================================================

	Header      lipgloss.Style
	InputPrompt lipgloss.Style
	StatusBar   lipgloss.Style
	Spinner     lipgloss.Style
	Hint        lipgloss.Style
	Error       lipgloss.Style
}

// NewTheme creates a theme for mode ("dark", "light" or "auto") using the
// given chroma style for code. Auto asks the terminal for its background.
func NewTheme(mode, codeStyle string) *Theme {
	var isDark bool
	switch strings.ToLower(mode) {
	case "dark":
		isDark = true
	case "light":
		isDark = false
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	if codeStyle == "" {
		codeStyle = "monokai"
	}
	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
		CodeStyle:    codeStyle,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Bold = lipgloss.NewStyle().Bold(true)
	t.Italic = lipgloss.NewStyle().Italic(true)
	t.ListMarker = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	// Selection is a colored left gutter so wrapped content keeps its width.
	t.Selected = lipgloss.NewStyle().
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(Purple).
		PaddingLeft(1)
	t.Unselected = lipgloss.NewStyle().
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)

	t.CodeBlock = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.CodeBadge = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(OverlayDim).
		Padding(0, 1).
		Bold(true)
	t.LineNumber = lipgloss.NewStyle().
		Foreground(TextMuted).
		Width(4).
		Align(lipgloss.Right).
		MarginRight(1)
	t.ImageCard = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(Amber).
		Foreground(Amber).
		Padding(0, 1)
	t.Reaction = lipgloss.NewStyle().
		Background(OverlayDim).
		Foreground(TextPrimary).
		Padding(0, 1).
		MarginRight(1)

	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(Overlay)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.StatusBar = lipgloss.NewStyle().Foreground(TextSecondary)
	t.Spinner = lipgloss.NewStyle().Foreground(Amber)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted).Italic(true)
	t.Error = lipgloss.NewStyle().Foreground(Rose).Bold(true)
}
