// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfmt/internal/model"
)

func sampleConversation(t *testing.T) *model.Conversation {
	t.Helper()
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("How do I print in Go?"))
	conv.Append(model.NewAssistantMessage("Use **fmt**:\n\n```go\nfmt.Println(\"hi\")\n```"))
	conv.Append(model.NewImageMessage("https://img.example/gopher.png", "a gopher"))
	_, err := conv.React(1, "👍")
	require.NoError(t, err)
	_, err = conv.React(1, "👍")
	require.NoError(t, err)
	return conv
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdownExporter(t *testing.T) {
	out, err := NewMarkdownExporter(nil).Export(sampleConversation(t))
	require.NoError(t, err)
	md := string(out)

	assert.True(t, strings.HasPrefix(md, "---\ntitle: How do I print in Go?\n"))
	assert.Contains(t, md, "messages: 3\n")
	assert.Contains(t, md, "# How do I print in Go?\n")
	assert.Contains(t, md, "**You**")
	assert.Contains(t, md, "Use **fmt**:")
	assert.Contains(t, md, "```go\nfmt.Println(\"hi\")\n```")
	assert.Contains(t, md, "> 👍 2")
	assert.Contains(t, md, "![image](https://img.example/gopher.png)")
}

func TestMarkdownExporter_NoMetadata(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeMetadata = false
	opts.Title = "Custom"

	out, err := NewMarkdownExporter(opts).Export(sampleConversation(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "# Custom\n"))
}

func TestEscapeYAML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain title", "plain title"},
		{"key: value", `"key: value"`},
		{`say "hi" #1`, `"say \"hi\" #1"`},
		{" padded", `" padded"`},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, escapeYAML(tc.in), tc.in)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, `\*a\_b\* \#1`, escapeMarkdown("*a_b* #1"))
}

// =============================================================================
// HTML
// =============================================================================

func TestHTMLExporter(t *testing.T) {
	out, err := NewHTMLExporter(nil).Export(sampleConversation(t))
	require.NoError(t, err)
	page := string(out)

	assert.True(t, strings.HasPrefix(page, "<!DOCTYPE html>"))
	assert.Contains(t, page, `<body class="dark-theme">`)
	assert.Contains(t, page, "<title>How do I print in Go?</title>")
	assert.Contains(t, page, `<div class="message user"`)
	assert.Contains(t, page, `<div class="message assistant"`)
	assert.Contains(t, page, "<strong>fmt</strong>")
	assert.Contains(t, page, `data-language="go"`)
	assert.Contains(t, page, `<span class="reaction">👍 2</span>`)
	assert.Contains(t, page, `src="https://img.example/gopher.png"`)
	assert.Contains(t, page, "function toggleTheme()")
}

func TestHTMLExporter_EscapesTitleAndText(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("<script>alert(1)</script>"))

	opts := DefaultOptions()
	opts.Theme = "light"
	out, err := NewHTMLExporter(opts).Export(conv)
	require.NoError(t, err)
	page := string(out)

	assert.Contains(t, page, `<body class="light-theme">`)
	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.Contains(t, page, "&lt;script&gt;alert(1)&lt;/script&gt;")
}

// =============================================================================
// JSON
// =============================================================================

func TestJSONExporter(t *testing.T) {
	conv := sampleConversation(t)
	out, err := NewJSONExporter(nil).Export(conv)
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, conv.ID, doc.ID)
	assert.Equal(t, "How do I print in Go?", doc.Title)
	require.Len(t, doc.Messages, 3)
	assert.Equal(t, model.Role("user"), doc.Messages[0].Role)
	require.Len(t, doc.Messages[1].Reactions, 1)
	assert.Equal(t, 2, doc.Messages[1].Reactions[0].Count)
	assert.Empty(t, doc.Messages[0].Reactions)
}

// =============================================================================
// SHARED BEHAVIOR
// =============================================================================

func TestExporters_RejectEmpty(t *testing.T) {
	for _, name := range []string{"md", "html", "json"} {
		exp, err := ForFormat(name, nil)
		require.NoError(t, err)

		_, err = exp.Export(model.NewConversation())
		assert.ErrorIs(t, err, ErrEmptyConversation, name)
		_, err = exp.Export(nil)
		assert.Error(t, err, name)
	}
}

func TestForFormat(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		mime string
	}{
		{"markdown", ".md", "text/markdown"},
		{"MD", ".md", "text/markdown"},
		{"htm", ".html", "text/html"},
		{"json", ".json", "application/json"},
	}
	for _, tc := range tests {
		exp, err := ForFormat(tc.name, nil)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.ext, exp.FileExtension())
		assert.Equal(t, tc.mime, exp.MimeType())
	}

	_, err := ForFormat("pdf", nil)
	assert.ErrorContains(t, err, "unsupported export format")
}

func TestExportToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	opts := DefaultOptions()
	opts.OutputDir = dir

	path, err := ExportToFile(sampleConversation(t), NewJSONExporter(opts), opts)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "chat_How_do_I_print_in_Go-_"))
	assert.Equal(t, ".json", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}

func TestTitle(t *testing.T) {
	conv := model.NewConversation()
	assert.Equal(t, "Chat", Title(conv, nil))

	conv.Append(model.NewAssistantMessage("greeting"))
	conv.Append(model.NewUserMessage(strings.Repeat("word ", 20)))
	assert.Equal(t, 40, len([]rune(Title(conv, nil))))
	assert.Equal(t, "Fixed", Title(conv, &Options{Title: "Fixed"}))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello world", "hello_world"},
		{`a/b\c:d*e?f"g<h>i|j`, "a-b-c-d-e-f-g-h-i-j"},
		{"", "conversation"},
		{"tab\there", "tab_here"},
		{"ctl\x01x", "ctl-x"},
		{strings.Repeat("é", 60), strings.Repeat("é", 50)},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, sanitizeFilename(tc.in), tc.in)
	}
}

// =============================================================================
// PREVIEW
// =============================================================================

func TestPreview(t *testing.T) {
	out, err := Preview([]byte("# Title\n\nSome **bold** text"), "notty", 40)
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")

	_, err = Preview([]byte("x"), "no-such-style", 0)
	assert.Error(t, err)
}
