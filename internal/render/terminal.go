// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/ui/styles"
	"github.com/jeranaias/chatfmt/internal/util"
)

// minCodeWidth keeps code boxes readable on very narrow terminals.
const minCodeWidth = 20

// =============================================================================
// TERMINAL RENDERER
// =============================================================================

// Terminal renders messages with lipgloss styles for a color terminal.
type Terminal struct {
	Theme *styles.Theme
	// Width wraps prose and bounds code boxes; 0 disables wrapping.
	Width          int
	ShowTimestamps bool
}

// NewTerminal creates a terminal renderer.
func NewTerminal(theme *styles.Theme, width int) *Terminal {
	return &Terminal{Theme: theme, Width: width}
}

// SetWidth updates the wrap width, e.g. after a terminal resize.
func (t *Terminal) SetWidth(width int) {
	t.Width = width
}

// Message renders a header line, the segments and the reaction chips.
func (t *Terminal) Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string {
	var b strings.Builder

	label, when := header(msg, t.ShowTimestamps)
	if msg.Role == model.RoleUser {
		b.WriteString(t.Theme.UserLabel.Render(label))
	} else {
		b.WriteString(t.Theme.AssistantLabel.Render(label))
	}
	if when != "" {
		b.WriteString(" ")
		b.WriteString(t.Theme.Timestamp.Render(when))
	}

	if body := t.Segments(segs); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	if chips := t.Reactions(reactions); chips != "" {
		b.WriteString("\n")
		b.WriteString(chips)
	}
	return b.String()
}

// Segments renders segments in order, separated by blank lines.
func (t *Terminal) Segments(segs []format.Segment) string {
	parts := make([]string, 0, len(segs))
	for _, seg := range segs {
		switch s := seg.(type) {
		case format.TextSegment:
			for _, blk := range s.Blocks {
				parts = append(parts, t.Block(blk))
			}
		case format.CodeSegment:
			parts = append(parts, t.Code(s))
		case format.ImageSegment:
			parts = append(parts, t.Image(s))
		}
	}
	return strings.Join(parts, "\n\n")
}

// Block renders one paragraph, wrapped to Width.
func (t *Terminal) Block(blk format.Block) string {
	var sb strings.Builder
	for _, span := range blk.Spans {
		switch span.Kind {
		case format.SpanBold:
			sb.WriteString(t.Theme.Bold.Render(span.Text))
		case format.SpanItalic:
			sb.WriteString(t.Theme.Italic.Render(span.Text))
		case format.SpanBullet, format.SpanOrdinal:
			sb.WriteString(t.Theme.ListMarker.Render(span.Text))
			sb.WriteByte(' ')
		case format.SpanBreak:
			sb.WriteByte('\n')
		default:
			sb.WriteString(span.Text)
		}
	}
	return util.Wrap(sb.String(), t.Width)
}

// Code renders a code segment in a bordered box with a language badge and
// line numbers.
func (t *Terminal) Code(c format.CodeSegment) string {
	highlighted := Highlight(c.Body, c.Language, t.Theme.CodeStyle, t.Theme.ColorProfile)

	lines := strings.Split(highlighted, "\n")
	rendered := make([]string, len(lines))
	for i, line := range lines {
		rendered[i] = t.Theme.LineNumber.Render(strconv.Itoa(i+1)) + line
	}

	badge := t.Theme.CodeBadge.Render(codeLabel(c))
	style := t.Theme.CodeBlock
	if t.Width > 0 {
		style = style.MaxWidth(max(t.Width, minCodeWidth))
	}
	return style.Render(badge + "\n" + strings.Join(rendered, "\n"))
}

// codeLabel is the badge text: the fence tag, or a guess from the body
// when the fence had none.
func codeLabel(c format.CodeSegment) string {
	if c.Language != format.DefaultLanguage {
		return c.Language
	}
	if guess := DetectLanguage(c.Body); guess != "" {
		return strings.ToLower(guess)
	}
	return c.Language
}

// Image renders an image reference as a card. Terminals cannot show the
// image itself.
func (t *Terminal) Image(img format.ImageSegment) string {
	ref := img.Ref
	if t.Width > 8 {
		ref = util.TruncateWidth(ref, t.Width-8)
	}
	return t.Theme.ImageCard.Render("image: " + ref)
}

// Reactions renders tallies as chips in first-reaction order.
func (t *Terminal) Reactions(counts []reaction.Count) string {
	if len(counts) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, c := range counts {
		sb.WriteString(t.Theme.Reaction.Render(c.Emoji + " " + strconv.Itoa(c.Count)))
	}
	return sb.String()
}
