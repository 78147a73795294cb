// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/util"
)

// codeIndent prefixes code lines in plain output.
const codeIndent = "    "

// Plain renders messages as unstyled text for pipes and files.
type Plain struct {
	Width          int
	ShowTimestamps bool
}

// Message renders "Label:" followed by the body and the tallies.
func (p *Plain) Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string {
	var b strings.Builder

	label, when := header(msg, p.ShowTimestamps)
	b.WriteString(label)
	if when != "" {
		b.WriteString(" (" + when + ")")
	}
	b.WriteString(":")

	if body := p.Segments(segs); body != "" {
		b.WriteString("\n")
		b.WriteString(body)
	}
	if len(reactions) > 0 {
		b.WriteString("\n[")
		b.WriteString(reaction.Format(reactions))
		b.WriteString("]")
	}
	return b.String()
}

// Segments renders segments separated by blank lines.
func (p *Plain) Segments(segs []format.Segment) string {
	var parts []string
	for _, seg := range segs {
		switch s := seg.(type) {
		case format.TextSegment:
			for _, blk := range s.Blocks {
				parts = append(parts, util.Wrap(PlainBlock(blk), p.Width))
			}
		case format.CodeSegment:
			parts = append(parts, "["+s.Language+"]\n"+util.Indent(s.Body, codeIndent))
		case format.ImageSegment:
			parts = append(parts, "[image: "+s.Ref+"]")
		}
	}
	return strings.Join(parts, "\n\n")
}

// PlainBlock returns the text of a block with emphasis dropped and list
// markers kept.
func PlainBlock(blk format.Block) string {
	return blk.Text()
}
