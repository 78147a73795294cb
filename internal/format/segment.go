// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"fmt"
	"strings"
)

// =============================================================================
// SEGMENTS
// =============================================================================

// SegmentKind identifies the variant of a Segment.
type SegmentKind int

const (
	SegmentText SegmentKind = iota
	SegmentCode
	SegmentImage
)

// String returns the lowercase name of the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentCode:
		return "code"
	case SegmentImage:
		return "image"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SegmentKind) UnmarshalText(b []byte) error {
	for c := SegmentText; c <= SegmentImage; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown segment kind %q", b)
}

// Segment is one unit of formatted message content: TextSegment,
// CodeSegment or ImageSegment.
type Segment interface {
	Kind() SegmentKind
}

// TextSegment is prose between code fences. Raw is the source text; Blocks
// holds one rendered block per paragraph once the segment has been formatted.
// Tokenize leaves Blocks nil.
type TextSegment struct {
	Raw    string
	Blocks []Block
}

// Kind implements Segment.
func (TextSegment) Kind() SegmentKind { return SegmentText }

// CodeSegment is the verbatim body of a fenced code block.
type CodeSegment struct {
	Language string
	Body     string
}

// Kind implements Segment.
func (CodeSegment) Kind() SegmentKind { return SegmentCode }

// ImageSegment describes an image attached to a message.
type ImageSegment struct {
	Ref string
}

// Kind implements Segment.
func (ImageSegment) Kind() SegmentKind { return SegmentImage }

// =============================================================================
// SPANS AND BLOCKS
// =============================================================================

// SpanKind is the inline style of a Span.
type SpanKind int

const (
	SpanPlain SpanKind = iota
	SpanBold
	SpanItalic
	// SpanBullet marks a "• " list item; Text is the bullet glyph. The space
	// after the marker is not in any span: renderers write it themselves,
	// as Block.Text does.
	SpanBullet
	// SpanOrdinal marks a "N. " list item; Text is the numeral and period.
	// As with SpanBullet, the following space is implied.
	SpanOrdinal
	// SpanBreak is a soft line break inside a paragraph; Text is "\n".
	SpanBreak
)

// String returns the lowercase name of the kind.
func (k SpanKind) String() string {
	switch k {
	case SpanPlain:
		return "plain"
	case SpanBold:
		return "bold"
	case SpanItalic:
		return "italic"
	case SpanBullet:
		return "bullet"
	case SpanOrdinal:
		return "ordinal"
	case SpanBreak:
		return "break"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *SpanKind) UnmarshalText(b []byte) error {
	for c := SpanPlain; c <= SpanBreak; c++ {
		if c.String() == string(b) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown span kind %q", b)
}

// Span is a run of literal text with one inline style. Text is never markup:
// renderers escape it for their target.
type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

// Block is one paragraph as an ordered sequence of spans.
type Block struct {
	Spans []Span `json:"spans"`
}

// Text returns the block's literal text with breaks as newlines and list
// markers followed by a space.
func (b Block) Text() string {
	var sb strings.Builder
	for _, s := range b.Spans {
		sb.WriteString(s.Text)
		if s.Kind == SpanBullet || s.Kind == SpanOrdinal {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}

// Empty reports whether the block has no spans.
func (b Block) Empty() bool {
	return len(b.Spans) == 0
}
