// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/render"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Document is the JSON export format. Messages carry their formatted
// segments and reactions so consumers need not re-run the formatter.
type Document struct {
	ID         string               `json:"id"`
	Title      string               `json:"title"`
	CreatedAt  time.Time            `json:"created_at"`
	ExportedAt time.Time            `json:"exported_at"`
	Messages   []render.JSONMessage `json:"messages"`
}

// JSONExporter exports conversations to JSON format. It always includes
// the complete conversation regardless of the metadata options.
type JSONExporter struct {
	options *Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts *Options) *JSONExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &JSONExporter{options: opts}
}

// Export converts a conversation to JSON format.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	f := e.options.formatter()
	msgs := conv.Messages()
	doc := Document{
		ID:         conv.ID,
		Title:      Title(conv, e.options),
		CreatedAt:  conv.CreatedAt,
		ExportedAt: time.Now(),
		Messages:   make([]render.JSONMessage, 0, len(msgs)),
	}
	for i, msg := range msgs {
		doc.Messages = append(doc.Messages, render.ToJSON(msg, f.Format(msg), conv.Reactions(i)))
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
