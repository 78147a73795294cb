// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for chatfmt.
//
// Colors are lipgloss AdaptiveColor values; NewTheme fixes the background
// (dark, light or detected) and builds the lipgloss styles used by the
// terminal renderer and the TUI.
//
// # Usage
//
//	theme := styles.NewTheme(cfg.UI.Theme, cfg.UI.CodeStyle)
//	label := theme.AssistantLabel.Render("Assistant")
package styles
