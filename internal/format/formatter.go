// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"strings"
	"sync"

	"github.com/jeranaias/chatfmt/internal/model"
)

// =============================================================================
// MESSAGE FORMATTER
// =============================================================================

// Format turns a message into renderable segments in document order.
//
// An image message with a reference yields an ImageSegment first, followed
// by the formatted caption if there is one. Text runs through Tokenize;
// every text segment is split into Paragraphs and each paragraph rewritten by
// Inline, while code segments pass through untouched.
//
// Format is pure and total: it never fails, and malformed markup is left as
// literal text.
func Format(msg model.Message) []Segment {
	var out []Segment
	if msg.Kind == model.KindImage && msg.ImageRef != "" {
		out = append(out, ImageSegment{Ref: msg.ImageRef})
	}
	return append(out, FormatText(msg.Text)...)
}

// FormatText runs the text pipeline on a bare string.
func FormatText(text string) []Segment {
	if text == "" {
		return nil
	}

	tokens := Tokenize(text)
	out := make([]Segment, 0, len(tokens))
	for i, tok := range tokens {
		switch t := tok.(type) {
		case CodeSegment:
			out = append(out, t)
		case TextSegment:
			raw := t.Raw
			// The line breaks that separate prose from an adjacent fence
			// belong to the fence, not to the paragraph.
			if i > 0 {
				raw = trimLeadingBlankLines(raw)
			}
			if i < len(tokens)-1 {
				raw = trimTrailingBlankLines(raw)
			}
			if strings.TrimSpace(raw) == "" {
				continue
			}
			out = append(out, TextSegment{Raw: raw, Blocks: Blocks(raw)})
		}
	}
	return out
}

// Blocks formats prose: one Block per paragraph.
func Blocks(text string) []Block {
	paragraphs := Paragraphs(text)
	blocks := make([]Block, 0, len(paragraphs))
	for _, p := range paragraphs {
		if b := Inline(p); !b.Empty() {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// =============================================================================
// CACHING FORMATTER
// =============================================================================

// DefaultCacheSize bounds the number of messages a Formatter remembers.
const DefaultCacheSize = 512

type cacheEntry struct {
	kind     model.Kind
	text     string
	imageRef string
	segments []Segment
}

// Formatter memoises Format per message ID so a long transcript can be
// re-rendered on every resize without re-parsing it. Results are shared and
// must be treated as read-only. Safe for concurrent use.
type Formatter struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	max     int
}

// NewFormatter creates a Formatter holding at most size entries; size <= 0
// selects DefaultCacheSize.
func NewFormatter(size int) *Formatter {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &Formatter{entries: make(map[string]cacheEntry), max: size}
}

// Format returns the same segments as the package-level Format.
func (f *Formatter) Format(msg model.Message) []Segment {
	if msg.ID == "" {
		return Format(msg)
	}

	f.mu.Lock()
	e, ok := f.entries[msg.ID]
	f.mu.Unlock()
	if ok && e.kind == msg.Kind && e.text == msg.Text && e.imageRef == msg.ImageRef {
		return e.segments
	}

	segments := Format(msg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.entries) >= f.max {
		f.entries = make(map[string]cacheEntry, f.max)
	}
	f.entries[msg.ID] = cacheEntry{
		kind:     msg.Kind,
		text:     msg.Text,
		imageRef: msg.ImageRef,
		segments: segments,
	}
	return segments
}

// Len returns the number of cached messages.
func (f *Formatter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Reset empties the cache.
func (f *Formatter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]cacheEntry, f.max)
}
