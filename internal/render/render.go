// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// Renderer renders one message of a transcript.
type Renderer interface {
	Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string
}

// Output format names accepted by ByName.
const (
	FormatTerminal = "terminal"
	FormatPlain    = "plain"
	FormatMarkdown = "md"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// Formats lists the names ByName accepts, in help order.
var Formats = []string{FormatTerminal, FormatPlain, FormatMarkdown, FormatHTML, FormatJSON}

// Transcript renders every message of conv with r, separated by a blank
// line. Segments come from f so unchanged messages are not re-formatted.
func Transcript(r Renderer, f *format.Formatter, conv *model.Conversation) string {
	msgs := conv.Messages()
	parts := make([]string, 0, len(msgs))
	for i, m := range msgs {
		parts = append(parts, r.Message(m, f.Format(m), conv.Reactions(i)))
	}
	return strings.Join(parts, "\n\n")
}

// Options configures ByName.
type Options struct {
	Width          int
	ShowTimestamps bool
}

// ByName returns the renderer for a format name. The terminal renderer needs
// a theme; the others ignore it.
func ByName(name string, term *Terminal, opts Options) (Renderer, error) {
	switch strings.ToLower(name) {
	case FormatTerminal, "":
		if term == nil {
			return nil, fmt.Errorf("terminal renderer needs a theme")
		}
		return term, nil
	case FormatPlain, "text":
		return &Plain{Width: opts.Width, ShowTimestamps: opts.ShowTimestamps}, nil
	case FormatMarkdown, "markdown":
		return &Markdown{ShowTimestamps: opts.ShowTimestamps}, nil
	case FormatHTML:
		return NewHTML(), nil
	case FormatJSON:
		return &JSON{Indent: "  "}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (valid: %s)", name, strings.Join(Formats, ", "))
	}
}

// header returns the role label and, when asked for, the message time.
func header(msg model.Message, timestamps bool) (label, when string) {
	label = msg.Role.DisplayName()
	if timestamps && !msg.Timestamp.IsZero() {
		when = msg.Timestamp.Format("2006-01-02 15:04")
	}
	return label, when
}

// lineCount is the number of lines in s.
func lineCount(s string) int {
	return strings.Count(s, "\n") + 1
}
