// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across chatfmt.
//
// # Key Functions
//
// String Utilities (display-width aware):
//   - TruncateRunes, TruncateWidth: cut with a trailing ellipsis
//   - StringWidth, PadRight: column arithmetic for tables
//   - Wrap, Indent, SingleLine: plain-text layout
//
// File Operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	preview := util.TruncateWidth(util.SingleLine(msg.Text), 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
