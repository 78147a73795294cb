// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversations to Markdown, HTML and JSON files.
//
// Each exporter formats messages through the format package and the
// matching render renderer, so exports show the same bold, italic, list
// and code structure as the terminal. Reactions are included.
//
// # Usage
//
//	exp, err := export.ForFormat("html", opts)
//	path, err := export.ExportToFile(conv, exp, opts)
//
// Preview renders Markdown output with glamour for a quick look in the
// terminal before writing a file.
package export
