// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// paragraphBreak is a line break, optional whitespace, and another line break.
var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// Paragraphs splits text into paragraphs on blank lines, dropping blank
// paragraphs. Single line breaks stay inside their paragraph.
//
// When the split leaves one paragraph or none, the whole text is returned as
// a single paragraph so short replies that use single newlines for layout
// keep them. Empty text yields no paragraphs.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}

	var paragraphs []string
	for _, p := range paragraphBreak.Split(text, -1) {
		if strings.TrimSpace(p) != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) <= 1 {
		return []string{text}
	}
	return paragraphs
}

// trimLeadingBlankLines drops whole lines at the start of s that hold only
// whitespace.
func trimLeadingBlankLines(s string) string {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[:i]) != "" {
			return s
		}
		s = s[i+1:]
	}
}

// trimTrailingBlankLines drops whole lines at the end of s that hold only
// whitespace, including the line break that ends the last kept line.
func trimTrailingBlankLines(s string) string {
	for {
		i := strings.LastIndexByte(s, '\n')
		if i < 0 || strings.TrimSpace(s[i+1:]) != "" {
			return s
		}
		s = strings.TrimSuffix(s[:i], "\r")
	}
}
