// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// Markdown re-serialises segments as Markdown.
type Markdown struct {
	ShowTimestamps bool
}

// Message renders a bold role line, the body and the tallies as a quote.
func (m *Markdown) Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string {
	var b strings.Builder

	label, when := header(msg, m.ShowTimestamps)
	b.WriteString("**" + label + "**")
	if when != "" {
		b.WriteString(" _" + when + "_")
	}

	if body := m.Segments(segs); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	if len(reactions) > 0 {
		b.WriteString("\n\n> ")
		b.WriteString(reaction.Format(reactions))
	}
	return b.String()
}

// Segments renders segments as Markdown blocks.
func (m *Markdown) Segments(segs []format.Segment) string {
	var parts []string
	for _, seg := range segs {
		switch s := seg.(type) {
		case format.TextSegment:
			for _, blk := range s.Blocks {
				parts = append(parts, MarkdownBlock(blk))
			}
		case format.CodeSegment:
			parts = append(parts, Fence(s.Language, s.Body))
		case format.ImageSegment:
			parts = append(parts, "![image]("+s.Ref+")")
		}
	}
	return strings.Join(parts, "\n\n")
}

// MarkdownBlock serialises one block. Soft breaks become hard line breaks
// so the reply keeps its line structure in Markdown viewers.
func MarkdownBlock(blk format.Block) string {
	var sb strings.Builder
	for i, span := range blk.Spans {
		switch span.Kind {
		case format.SpanBold:
			sb.WriteString("**" + span.Text + "**")
		case format.SpanItalic:
			sb.WriteString("*" + span.Text + "*")
		case format.SpanBullet:
			sb.WriteString("- ")
		case format.SpanOrdinal:
			sb.WriteString(span.Text + " ")
		case format.SpanBreak:
			if next := i + 1; next < len(blk.Spans) && isMarker(blk.Spans[next]) {
				sb.WriteString("\n")
			} else {
				sb.WriteString("  \n")
			}
		default:
			sb.WriteString(span.Text)
		}
	}
	return sb.String()
}

func isMarker(s format.Span) bool {
	return s.Kind == format.SpanBullet || s.Kind == format.SpanOrdinal
}

// Fence wraps body in a code fence long enough not to collide with any
// backtick run inside it.
func Fence(language, body string) string {
	fence := "```"
	for strings.Contains(body, fence) {
		fence += "`"
	}
	if language == format.DefaultLanguage {
		language = ""
	}
	return fence + language + "\n" + body + "\n" + fence
}
