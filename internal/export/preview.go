// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Preview renders exported Markdown for the terminal with glamour. style is
// a glamour style name ("dark", "light", "notty", ...) and width the wrap
// width; 0 keeps glamour's default.
func Preview(markdown []byte, style string, width int) (string, error) {
	if style == "" || style == "auto" {
		style = "dark"
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return "", fmt.Errorf("create preview renderer: %w", err)
	}
	out, err := r.RenderBytes(markdown)
	if err != nil {
		return "", fmt.Errorf("render preview: %w", err)
	}
	return string(out), nil
}
