// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/atotto/clipboard"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
)

// copyToClipboard copies the given text to the system clipboard.
// Returns an error if the clipboard is not available or the operation fails.
func copyToClipboard(text string) error {
	return clipboard.WriteAll(text)
}

// lastCodeBlock finds the newest code segment in the transcript.
func lastCodeBlock(msgs []model.Message, f *format.Formatter) (format.CodeSegment, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		segs := f.Format(msgs[i])
		for j := len(segs) - 1; j >= 0; j-- {
			if code, ok := segs[j].(format.CodeSegment); ok {
				return code, true
			}
		}
	}
	return format.CodeSegment{}, false
}

// nextAssistant returns the nearest assistant message index from start in
// direction dir (+1 or -1), or -1 when there is none.
func nextAssistant(msgs []model.Message, start, dir int) int {
	for i := start; i >= 0 && i < len(msgs); i += dir {
		if msgs[i].Role == model.RoleAssistant {
			return i
		}
	}
	return -1
}

// lineCount is the number of lines in s.
func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}
