// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"regexp"
	"strings"
)

// Inline rules. Emphasis does not cross line breaks.
var (
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	italicPattern  = regexp.MustCompile(`\*(.+?)\*`)
	ordinalPattern = regexp.MustCompile(`^(\d+)\. `)
)

// BulletGlyph is the list marker recognised at the start of a line.
const BulletGlyph = "•"

const bulletPrefix = BulletGlyph + " "

// Inline rewrites one paragraph into styled spans.
//
// Rules run in a fixed order and never nest:
//  1. **X** becomes a bold span.
//  2. *X* in text not claimed by rule 1 becomes an italic span.
//  3. "• " at the start of a line becomes a bullet marker.
//  4. "N. " at the start of a line becomes an ordinal marker "N.".
//
// Line breaks become SpanBreak. Delimiters that do not close stay literal.
func Inline(paragraph string) Block {
	paragraph = strings.ReplaceAll(paragraph, "\r\n", "\n")

	runs := emphasis(paragraph)
	spans := make([]Span, 0, len(runs)+4)
	for i, run := range runs {
		if run.Kind != SpanPlain {
			spans = append(spans, run)
			continue
		}
		// Emphasis never spans a newline, so only the first run of the
		// paragraph can start at the beginning of a line.
		spans = appendLines(spans, run.Text, i == 0)
	}
	return Block{Spans: spans}
}

// emphasis applies the bold rule to the whole paragraph and the italic rule
// to what bold left as plain text.
func emphasis(s string) []Span {
	var out []Span
	for _, run := range splitMatches(s, boldPattern, SpanBold) {
		if run.Kind == SpanPlain {
			out = append(out, splitMatches(run.Text, italicPattern, SpanItalic)...)
			continue
		}
		out = append(out, run)
	}
	return out
}

// splitMatches partitions s into plain runs and runs of kind holding the
// first capture group of each non-overlapping match of re.
func splitMatches(s string, re *regexp.Regexp, kind SpanKind) []Span {
	matches := re.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		if s == "" {
			return nil
		}
		return []Span{{Kind: SpanPlain, Text: s}}
	}

	out := make([]Span, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			out = append(out, Span{Kind: SpanPlain, Text: s[last:m[0]]})
		}
		out = append(out, Span{Kind: kind, Text: s[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(s) {
		out = append(out, Span{Kind: SpanPlain, Text: s[last:]})
	}
	return out
}

// appendLines appends a plain run, turning line breaks into SpanBreak and
// line-leading list markers into marker spans. atLineStart tells whether the
// run's first line begins a line of the paragraph.
func appendLines(spans []Span, text string, atLineStart bool) []Span {
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			spans = append(spans, Span{Kind: SpanBreak, Text: "\n"})
		}
		if i > 0 || atLineStart {
			var marker *Span
			marker, line = listMarker(line)
			if marker != nil {
				spans = append(spans, *marker)
			}
		}
		if line != "" {
			spans = append(spans, Span{Kind: SpanPlain, Text: line})
		}
	}
	return spans
}

// listMarker strips a bullet or ordinal prefix from line.
func listMarker(line string) (*Span, string) {
	if strings.HasPrefix(line, bulletPrefix) {
		return &Span{Kind: SpanBullet, Text: BulletGlyph}, line[len(bulletPrefix):]
	}
	if m := ordinalPattern.FindStringSubmatchIndex(line); m != nil {
		return &Span{Kind: SpanOrdinal, Text: line[m[2]:m[3]] + "."}, line[m[1]:]
	}
	return nil, line
}
