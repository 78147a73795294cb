// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/render"
)

// =============================================================================
// HTML EXPORTER
// =============================================================================

// HTMLExporter exports conversations to a standalone HTML page with
// embedded CSS and highlighted code.
type HTMLExporter struct {
	options *Options
}

// NewHTMLExporter creates a new HTML exporter.
func NewHTMLExporter(opts *Options) *HTMLExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &HTMLExporter{options: opts}
}

type htmlPage struct {
	Title     string
	Theme     string
	Date      string
	Created   string
	Count     int
	Metadata  bool
	Messages  []template.HTML
	Generated string
}

// Export converts a conversation to HTML format.
func (e *HTMLExporter) Export(conv *model.Conversation) ([]byte, error) {
	if err := validate(conv); err != nil {
		return nil, err
	}

	theme := e.options.Theme
	if theme != "light" {
		theme = "dark"
	}
	codeStyle := "github-dark"
	if theme == "light" {
		codeStyle = "github"
	}

	r := &render.HTML{CodeStyle: codeStyle, ShowTimestamps: e.options.IncludeTimestamps}
	f := e.options.formatter()
	msgs := conv.Messages()

	page := htmlPage{
		Title:     Title(conv, e.options),
		Theme:     theme,
		Date:      conv.CreatedAt.Format(time.RFC3339),
		Created:   formatTimestamp(conv.CreatedAt),
		Count:     len(msgs),
		Metadata:  e.options.IncludeMetadata,
		Messages:  make([]template.HTML, 0, len(msgs)),
		Generated: time.Now().Format("January 2, 2006 at 3:04 PM"),
	}
	for i, msg := range msgs {
		// render.HTML escapes all message text itself
		page.Messages = append(page.Messages, template.HTML(r.Message(msg, f.Format(msg), conv.Reactions(i)))) // #nosec G203
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// FileExtension returns the file extension for HTML.
func (e *HTMLExporter) FileExtension() string {
	return ".html"
}

// MimeType returns the MIME type for HTML.
func (e *HTMLExporter) MimeType() string {
	return "text/html"
}

// =============================================================================
// PAGE TEMPLATE
// =============================================================================

var pageTemplate = template.Must(template.New("page").Parse(pageHead + pageCSS + pageBody + pageScript + pageTail))

const pageHead = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <meta name="generator" content="chatfmt">
    <meta name="date" content="{{.Date}}">
`

const pageBody = `</head>
<body class="{{.Theme}}-theme">
    <div class="container">
{{- if .Metadata}}
        <header class="header">
            <h1>{{.Title}}</h1>
            <div class="metadata">
                <span class="meta-item"><strong>Created:</strong> {{.Created}}</span>
                <span class="meta-item"><strong>Messages:</strong> {{.Count}}</span>
                <button class="theme-toggle" onclick="toggleTheme()" title="Toggle theme">[Theme]</button>
            </div>
        </header>
{{- end}}
        <main class="conversation">
{{- range .Messages}}
{{.}}
{{- end}}
        </main>
        <footer class="footer">
            <p>Exported from <strong>chatfmt</strong> on {{.Generated}}</p>
        </footer>
    </div>
`

// =============================================================================
// EMBEDDED CSS
// =============================================================================

const pageCSS = `    <style>
        /* Reset and base styles */
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        :root {
            --font-sans: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            --font-mono: "SF Mono", "Monaco", "Inconsolata", "Fira Code", "Dank Mono", "Source Code Pro", monospace;
        }

        /* Dark theme (default) */
        .dark-theme {
            --bg-primary: #1a1b26;
            --bg-secondary: #24283b;
            --bg-tertiary: #414868;
            --text-primary: #c0caf5;
            --text-secondary: #a9b1d6;
            --text-muted: #565f89;
            --border-color: #414868;
            --user-bg: #1f2335;
            --assistant-bg: #24283b;
            --code-bg: #1a1b26;
            --accent-blue: #7aa2f7;
            --accent-green: #9ece6a;
            --accent-purple: #bb9af7;
            --accent-red: #f7768e;
        }

        /* Light theme */
        .light-theme {
            --bg-primary: #ffffff;
            --bg-secondary: #f7f8fa;
            --bg-tertiary: #e1e4e8;
            --text-primary: #24292e;
            --text-secondary: #586069;
            --text-muted: #6a737d;
            --border-color: #e1e4e8;
            --user-bg: #f6f8fa;
            --assistant-bg: #ffffff;
            --code-bg: #f6f8fa;
            --accent-blue: #0366d6;
            --accent-green: #22863a;
            --accent-purple: #6f42c1;
            --accent-red: #d73a49;
        }

        body {
            font-family: var(--font-sans);
            font-size: 16px;
            line-height: 1.6;
            color: var(--text-primary);
            background: var(--bg-primary);
            padding: 20px;
            transition: background 0.3s ease, color 0.3s ease;
        }

        .container {
            max-width: 900px;
            margin: 0 auto;
            background: var(--bg-secondary);
            border-radius: 12px;
            box-shadow: 0 4px 6px rgba(0, 0, 0, 0.1);
            overflow: hidden;
        }

        /* Header */
        .header {
            padding: 32px;
            background: var(--bg-tertiary);
            border-bottom: 2px solid var(--border-color);
        }

        .header h1 {
            font-size: 28px;
            font-weight: 700;
            margin-bottom: 16px;
            color: var(--text-primary);
        }

        .metadata {
            display: flex;
            flex-wrap: wrap;
            gap: 16px;
            font-size: 14px;
            color: var(--text-secondary);
            align-items: center;
        }

        .meta-item {
            display: inline-flex;
            align-items: center;
            gap: 4px;
        }

        .theme-toggle {
            margin-left: auto;
            background: var(--bg-secondary);
            border: 1px solid var(--border-color);
            border-radius: 6px;
            padding: 6px 12px;
            cursor: pointer;
            font-size: 18px;
            transition: all 0.2s ease;
        }

        .theme-toggle:hover {
            background: var(--bg-primary);
            transform: scale(1.05);
        }

        /* Conversation */
        .conversation {
            padding: 24px 32px;
        }

        .message {
            margin-bottom: 24px;
            padding: 20px;
            border-radius: 8px;
            border-left: 4px solid transparent;
            transition: all 0.2s ease;
        }

        .message:hover {
            transform: translateX(4px);
        }

        .message.user {
            background: var(--user-bg);
            border-left-color: var(--accent-blue);
        }

        .message.assistant {
            background: var(--assistant-bg);
            border-left-color: var(--accent-green);
        }

        .message-header {
            display: flex;
            justify-content: space-between;
            align-items: center;
            margin-bottom: 12px;
            font-size: 14px;
        }

        .role {
            font-weight: 600;
            color: var(--text-primary);
        }

        .message-header time {
            color: var(--text-muted);
            font-size: 13px;
            font-family: var(--font-mono);
        }

        .message p {
            margin-bottom: 12px;
            line-height: 1.7;
        }

        .bullet, .ordinal {
            color: var(--accent-blue);
            font-weight: 600;
        }

        /* Code blocks */
        .code-block {
            margin: 16px 0;
            border-radius: 8px;
            overflow: hidden;
            background: var(--code-bg);
            border: 1px solid var(--border-color);
        }

        .code-block pre {
            margin: 0;
            padding: 16px;
            overflow-x: auto;
        }

        .code-block::before {
            content: attr(data-language);
            display: block;
            padding: 8px 16px;
            background: var(--bg-tertiary);
            font-size: 12px;
            font-weight: 600;
            color: var(--text-secondary);
            text-transform: uppercase;
            letter-spacing: 0.5px;
        }

        .code-block code {
            font-family: var(--font-mono);
            font-size: 14px;
            line-height: 1.5;
            color: var(--text-primary);
        }

        /* Images */
        .image {
            margin: 16px 0;
        }

        .image img {
            max-width: 100%;
            border-radius: 8px;
            border: 1px solid var(--border-color);
        }

        /* Reactions */
        .reactions {
            margin-top: 12px;
            display: flex;
            flex-wrap: wrap;
            gap: 8px;
        }

        .reaction {
            padding: 2px 10px;
            border-radius: 12px;
            background: var(--bg-tertiary);
            font-size: 14px;
        }

        /* Footer */
        .footer {
            padding: 20px 32px;
            text-align: center;
            font-size: 14px;
            color: var(--text-muted);
            border-top: 1px solid var(--border-color);
        }

        /* Status indicators */
        .success {
            color: var(--accent-green);
        }

        .error {
            color: var(--accent-red);
        }

        /* Print styles */
        @media print {
            body {
                padding: 0;
            }

            .container {
                box-shadow: none;
                border-radius: 0;
            }

            .theme-toggle {
                display: none;
            }

            .message {
                page-break-inside: avoid;
            }
        }

        /* Responsive */
        @media (max-width: 768px) {
            body {
                padding: 10px;
            }

            .header, .conversation, .footer {
                padding: 16px;
            }

            .message {
                padding: 16px;
            }
        }
    </style>
`

// =============================================================================
// EMBEDDED JAVASCRIPT
// =============================================================================

const pageScript = `    <script>
        function toggleTheme() {
            const body = document.body;
            if (body.classList.contains('dark-theme')) {
                body.classList.remove('dark-theme');
                body.classList.add('light-theme');
                localStorage.setItem('theme', 'light');
            } else {
                body.classList.remove('light-theme');
                body.classList.add('dark-theme');
                localStorage.setItem('theme', 'dark');
            }
        }

        // Load saved theme preference
        document.addEventListener('DOMContentLoaded', function() {
            const savedTheme = localStorage.getItem('theme');
            if (savedTheme) {
                document.body.classList.remove('dark-theme', 'light-theme');
                document.body.classList.add(savedTheme + '-theme');
            }
        });
    </script>
`

const pageTail = `</body>
</html>
`
