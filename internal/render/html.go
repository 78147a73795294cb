// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"html/template"
	"strings"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
)

// =============================================================================
// HTML RENDERER
// =============================================================================

// messageTemplate renders one message. All text passes through
// html/template escaping; only chroma output and data:image refs are
// marked trusted, in toView.
const messageTemplate = `{{define "span"}}{{if eq .Kind "bold"}}<strong>{{.Text}}</strong>{{else if eq .Kind "italic"}}<em>{{.Text}}</em>{{else if eq .Kind "break"}}<br>
{{else if eq .Kind "bullet"}}<span class="bullet">{{.Text}}</span> {{else if eq .Kind "ordinal"}}<span class="ordinal">{{.Text}}</span> {{else}}{{.Text}}{{end}}{{end}}
{{- define "message"}}<div class="message {{.Role}}" id="{{.ID}}">
<div class="message-header"><span class="role">{{.Label}}</span>{{if .When}} <time>{{.When}}</time>{{end}}</div>
{{- range .Segments}}
{{- if eq .Kind "text"}}
<p>{{range .Spans}}{{template "span" .}}{{end}}</p>
{{- else if eq .Kind "code"}}
<div class="code-block" data-language="{{.Language}}">{{.Code}}</div>
{{- else if eq .Kind "image"}}
<figure class="image"><img src="{{.Src}}" alt="Generated image" loading="lazy"></figure>
{{- end}}
{{- end}}
{{- if .Reactions}}
<div class="reactions">{{range .Reactions}}<span class="reaction">{{.Emoji}} {{.Count}}</span>{{end}}</div>
{{- end}}
</div>{{end}}`

var htmlTemplates = template.Must(template.New("render").Parse(messageTemplate))

type htmlSpan struct {
	Kind string
	Text string
}

// htmlPart is a paragraph, a code block or an image.
type htmlPart struct {
	Kind     string
	Spans    []htmlSpan
	Language string
	Code     template.HTML
	Src      any
}

type htmlMessage struct {
	ID        string
	Role      string
	Label     string
	When      string
	Segments  []htmlPart
	Reactions []reaction.Count
}

// HTML renders messages as HTML fragments.
type HTML struct {
	// CodeStyle is the chroma style for code blocks.
	CodeStyle      string
	ShowTimestamps bool
}

// NewHTML creates an HTML renderer with the default code style.
func NewHTML() *HTML {
	return &HTML{CodeStyle: "github"}
}

// Message renders a <div class="message"> fragment.
func (h *HTML) Message(msg model.Message, segs []format.Segment, reactions []reaction.Count) string {
	var sb strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&sb, "message", h.toView(msg, segs, reactions)); err != nil {
		return "<!-- render error: " + template.HTMLEscapeString(err.Error()) + " -->"
	}
	return sb.String()
}

func (h *HTML) toView(msg model.Message, segs []format.Segment, reactions []reaction.Count) htmlMessage {
	label, when := header(msg, h.ShowTimestamps)
	view := htmlMessage{
		ID:        msg.ID,
		Role:      msg.Role.String(),
		Label:     label,
		When:      when,
		Reactions: reactions,
	}

	for _, seg := range segs {
		switch s := seg.(type) {
		case format.TextSegment:
			for _, blk := range s.Blocks {
				part := htmlPart{Kind: "text", Spans: make([]htmlSpan, len(blk.Spans))}
				for i, span := range blk.Spans {
					part.Spans[i] = htmlSpan{Kind: span.Kind.String(), Text: span.Text}
				}
				view.Segments = append(view.Segments, part)
			}
		case format.CodeSegment:
			view.Segments = append(view.Segments, htmlPart{
				Kind:     "code",
				Language: s.Language,
				Code:     h.code(s),
			})
		case format.ImageSegment:
			view.Segments = append(view.Segments, htmlPart{Kind: "image", Src: imageSrc(s.Ref)})
		}
	}
	return view
}

// code highlights a code segment, falling back to an escaped <pre>.
func (h *HTML) code(c format.CodeSegment) template.HTML {
	if out, err := HighlightHTML(c.Body, c.Language, h.CodeStyle); err == nil {
		return template.HTML(out) // #nosec G203 -- chroma escapes token text
	}
	return template.HTML("<pre><code>" + template.HTMLEscapeString(c.Body) + "</code></pre>") // #nosec G203
}

// imageSrc lets inline raster images through. Every other reference is left
// to html/template's URL filter, which rejects javascript: and similar.
func imageSrc(ref string) any {
	lower := strings.ToLower(ref)
	for _, prefix := range []string{"data:image/png;", "data:image/jpeg;", "data:image/gif;", "data:image/webp;"} {
		if strings.HasPrefix(lower, prefix) {
			return template.URL(ref) // #nosec G203 -- raster data URI
		}
	}
	return ref
}
