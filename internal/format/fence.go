// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// DefaultLanguage is the language of a fence that carries no tag.
const DefaultLanguage = "text"

// fencePattern matches ```tag\n body ``` lazily. The tag is optional and may
// be followed by trailing blanks before the line break; the closing
// delimiter is required, so an unterminated fence never matches.
var fencePattern = regexp.MustCompile("(?s)```([^\\s`]*)[ \\t]*\\r?\\n(.*?)```")

// Tokenize splits text into Text and Code segments in document order.
//
// Text before the first fence and after the last one becomes a TextSegment
// (omitted when empty). Each fence becomes a CodeSegment with its tag, or
// DefaultLanguage, and its body trimmed of surrounding whitespace. Input
// without any complete fence yields a single TextSegment holding all of it,
// even when text is empty.
func Tokenize(text string) []Segment {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []Segment{TextSegment{Raw: text}}
	}

	segments := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segments = append(segments, TextSegment{Raw: text[last:m[0]]})
		}

		language := text[m[2]:m[3]]
		if language == "" {
			language = DefaultLanguage
		}
		segments = append(segments, CodeSegment{
			Language: language,
			Body:     strings.TrimSpace(text[m[4]:m[5]]),
		})
		last = m[1]
	}
	if last < len(text) {
		segments = append(segments, TextSegment{Raw: text[last:]})
	}
	return segments
}
