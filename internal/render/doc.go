// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns formatted segments into output for a target medium.
//
// Every renderer implements Renderer and receives a message, the segments
// format produced for it and its reaction tallies:
//
//   - Terminal: lipgloss styles and chroma highlighting for TTYs
//   - Plain: unstyled text for pipes and files
//   - Markdown: re-serialised Markdown with fenced code
//   - HTML: escaped fragments built with html/template
//   - JSON: a typed document of segments and spans
//
// Renderers own escaping. Segment text is data and is never trusted as
// markup.
//
// # Usage
//
//	f := format.NewFormatter(0)
//	r := render.NewTerminal(theme, width)
//	out := render.Transcript(r, f, conv)
package render
