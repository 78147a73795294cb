// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// JSONSegment is the wire form of a segment. Fields not used by a kind
// are omitted.
type JSONSegment struct {
	Kind     format.SegmentKind `json:"kind"`
	Blocks   []format.Block     `json:"blocks,omitempty"`
	Language string             `json:"language,omitempty"`
	Body     string             `json:"body,omitempty"`
	Ref      string             `json:"ref,omitempty"`
}

// JSONMessage is the wire form of a rendered message.
type JSONMessage struct {
	ID        string           `json:"id"`
	Role      model.Role       `json:"role"`
	Kind      model.Kind       `json:"kind"`
	Timestamp time.Time        `json:"timestamp"`
	Segments  []JSONSegment    `json:"segments"`
	Reactions []reaction.Count `json:"reactions,omitempty"`
}

// JSON renders messages as JSON documents.
type JSON struct {
	Indent string
}

// Message renders one JSON object per message.
func (j *JSON) Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string {
	data, err := json.MarshalIndent(ToJSON(msg, segs, reactions), "", j.Indent)
	if err != nil {
		return `{"error":"` + err.Error() + `"}`
	}
	return string(data)
}

// ToJSON converts a formatted message to its wire form.
func ToJSON(msg model.Message, segs []format.Segment, reactions []reaction.Count) JSONMessage {
	out := JSONMessage{
		ID:        msg.ID,
		Role:      msg.Role,
		Kind:      msg.Kind,
		Timestamp: msg.Timestamp,
		Segments:  SegmentsJSON(segs),
		Reactions: reactions,
	}
	return out
}

// SegmentsJSON converts segments to their wire form.
func SegmentsJSON(segs []format.Segment) []JSONSegment {
	out := make([]JSONSegment, 0, len(segs))
	for _, seg := range segs {
		js := JSONSegment{Kind: seg.Kind()}
		switch s := seg.(type) {
		case format.TextSegment:
			js.Blocks = s.Blocks
		case format.CodeSegment:
			js.Language = s.Language
			js.Body = s.Body
		case format.ImageSegment:
			js.Ref = s.Ref
		}
		out = append(out, js)
	}
	return out
}
