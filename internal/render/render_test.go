// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/ui/styles"
	"github.com/jeranaias/chatfmt/internal/util"
)

const sampleReply = "Hello **world**\n\n• one\n• two\n\n```go\nfmt.Println(1)\n```"

var sampleReactions = []reaction.Count{{Emoji: "👍", Count: 2}, {Emoji: "❤️", Count: 1}}

func reply(text string) model.Message {
	return model.Message{ID: "m1", Role: model.RoleAssistant, Kind: model.KindText, Text: text}
}

func renderOne(r Renderer, msg model.Message, counts []reaction.Count) string {
	return r.Message(msg, format.Format(msg), counts)
}

// =============================================================================
// PLAIN
// =============================================================================

func TestPlain_Message(t *testing.T) {
	got := renderOne(&Plain{}, reply(sampleReply), sampleReactions)
	want := "Assistant:\n" +
		"Hello world\n\n" +
		"• one\n• two\n\n" +
		"[go]\n    fmt.Println(1)\n" +
		"[👍 2  ❤️ 1]"
	assert.Equal(t, want, got)
}

func TestPlain_Image(t *testing.T) {
	msg := model.NewImageMessage("https://img.example/cat.png", "a cat")
	msg.ID = "m2"
	got := renderOne(&Plain{}, msg, nil)
	assert.Equal(t, "Assistant:\n[image: https://img.example/cat.png]\n\na cat", got)
}

func TestPlain_Wraps(t *testing.T) {
	got := renderOne(&Plain{Width: 12}, reply("alpha beta gamma delta epsilon"), nil)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, util.StringWidth(line), 12, line)
	}
}

// =============================================================================
// MARKDOWN
// =============================================================================

func TestMarkdown_Message(t *testing.T) {
	got := renderOne(&Markdown{}, reply(sampleReply), sampleReactions)
	want := "**Assistant**\n\n" +
		"Hello **world**\n\n" +
		"- one\n- two\n\n" +
		"```go\nfmt.Println(1)\n```\n\n" +
		"> 👍 2  ❤️ 1"
	assert.Equal(t, want, got)
}

func TestMarkdownBlock_SoftBreak(t *testing.T) {
	assert.Equal(t, "a  \n*b*", MarkdownBlock(format.Inline("a\n*b*")))
	assert.Equal(t, "1. x\n2. y", MarkdownBlock(format.Inline("1. x\n2. y")))
}

func TestFence(t *testing.T) {
	assert.Equal(t, "```\nx\n```", Fence(format.DefaultLanguage, "x"))
	assert.Equal(t, "````go\na ``` b\n````", Fence("go", "a ``` b"))
}

// =============================================================================
// HTML
// =============================================================================

func TestHTML_Message(t *testing.T) {
	got := renderOne(NewHTML(), reply(sampleReply), sampleReactions)

	assert.Contains(t, got, `<div class="message assistant" id="m1">`)
	assert.Contains(t, got, `<span class="role">Assistant</span>`)
	assert.Contains(t, got, `<p>Hello <strong>world</strong></p>`)
	assert.Contains(t, got, `<span class="bullet">•</span> one<br>`)
	assert.Contains(t, got, `data-language="go"`)
	assert.Contains(t, got, `<pre`)
	assert.Contains(t, got, `<span class="reaction">👍 2</span><span class="reaction">❤️ 1</span>`)
}

func TestHTML_EscapesText(t *testing.T) {
	got := renderOne(NewHTML(), reply("<script>alert(1)</script> **<b>x</b>** *&*"), nil)

	assert.NotContains(t, got, "<script>")
	assert.NotContains(t, got, "<b>")
	assert.Contains(t, got, "&lt;script&gt;alert(1)&lt;/script&gt;")
	assert.Contains(t, got, "<strong>&lt;b&gt;x&lt;/b&gt;</strong>")
	assert.Contains(t, got, "<em>&amp;</em>")
}

func TestHTML_EscapesCode(t *testing.T) {
	got := renderOne(NewHTML(), reply("```html\n<script>x()</script>\n```"), nil)
	assert.NotContains(t, got, "<script>")
}

func TestHTML_ImageSources(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://img.example/a.png", `src="https://img.example/a.png"`},
		{"data:image/png;base64,AAAA", `src="data:image/png;base64,AAAA"`},
		{"javascript:alert(1)", `src="#ZgotmplZ"`},
		{"data:text/html;base64,AAAA", `src="#ZgotmplZ"`},
	}
	for _, tc := range tests {
		msg := model.NewImageMessage(tc.ref, "")
		assert.Contains(t, renderOne(NewHTML(), msg, nil), tc.want, tc.ref)
	}
}

// =============================================================================
// JSON
// =============================================================================

func TestJSON_Message(t *testing.T) {
	got := renderOne(&JSON{}, reply(sampleReply), sampleReactions)

	var doc struct {
		ID       string `json:"id"`
		Role     string `json:"role"`
		Segments []struct {
			Kind     string `json:"kind"`
			Language string `json:"language"`
			Body     string `json:"body"`
			Blocks   []struct {
				Spans []struct {
					Kind string `json:"kind"`
					Text string `json:"text"`
				} `json:"spans"`
			} `json:"blocks"`
		} `json:"segments"`
		Reactions []reaction.Count `json:"reactions"`
	}
	require.NoError(t, json.Unmarshal([]byte(got), &doc))

	assert.Equal(t, "m1", doc.ID)
	assert.Equal(t, "assistant", doc.Role)
	require.Len(t, doc.Segments, 2)
	assert.Equal(t, "text", doc.Segments[0].Kind)
	require.Len(t, doc.Segments[0].Blocks, 2)
	assert.Equal(t, "bold", doc.Segments[0].Blocks[0].Spans[1].Kind)
	assert.Equal(t, "code", doc.Segments[1].Kind)
	assert.Equal(t, "go", doc.Segments[1].Language)
	assert.Equal(t, "fmt.Println(1)", doc.Segments[1].Body)
	assert.Equal(t, sampleReactions, doc.Reactions)
}

// =============================================================================
// TERMINAL
// =============================================================================

func TestTerminal_Message(t *testing.T) {
	term := NewTerminal(styles.NewTheme("dark", "monokai"), 60)
	got := renderOne(term, reply(sampleReply), sampleReactions)

	assert.Contains(t, got, "Assistant")
	assert.Contains(t, got, "world")
	assert.Contains(t, got, "one")
	assert.Contains(t, got, "fmt.Println(1)")
	assert.Contains(t, got, "👍 2")
	assert.Contains(t, got, "❤️ 1")
	assert.Less(t, strings.Index(got, "👍 2"), strings.Index(got, "❤️ 1"), "chips keep first-reaction order")
}

func TestTerminal_Image(t *testing.T) {
	term := NewTerminal(styles.NewTheme("dark", ""), 0)
	got := term.Image(format.ImageSegment{Ref: "cat.png"})
	assert.Contains(t, got, "image: cat.png")
}

func TestTerminal_NoReactionsNoChips(t *testing.T) {
	term := NewTerminal(styles.NewTheme("dark", ""), 0)
	assert.Equal(t, "", term.Reactions(nil))
}

func TestTranscript(t *testing.T) {
	conv := model.NewConversation()
	conv.Append(model.NewUserMessage("hi"))
	conv.Append(model.NewAssistantMessage("*hello*"))
	_, err := conv.React(1, "👍")
	require.NoError(t, err)

	got := Transcript(&Plain{}, format.NewFormatter(0), conv)
	assert.Equal(t, "You:\nhi\n\nAssistant:\nhello\n[👍 1]", got)
}

func TestByName(t *testing.T) {
	term := NewTerminal(styles.NewTheme("dark", ""), 80)

	for _, name := range Formats {
		r, err := ByName(name, term, Options{})
		require.NoError(t, err, name)
		assert.NotNil(t, r)
	}

	_, err := ByName("terminal", nil, Options{})
	assert.Error(t, err)
	_, err = ByName("pdf", term, Options{})
	assert.ErrorContains(t, err, "unknown format")
}

// =============================================================================
// HIGHLIGHTING
// =============================================================================

func TestHighlight(t *testing.T) {
	code := "package main\n\nfunc main() {}"

	assert.Equal(t, code, Highlight(code, "go", "monokai", termenv.Ascii), "no colors without a color profile")

	colored := Highlight(code, "go", "monokai", termenv.TrueColor)
	assert.Contains(t, colored, "\x1b[")
	assert.Equal(t, 2, strings.Count(colored, "\n"), "line count matches the source")
}

func TestHighlight_UnknownLanguageFallsBack(t *testing.T) {
	out := Highlight("just words", "no-such-lang", "no-such-style", termenv.ANSI256)
	assert.Contains(t, out, "just")
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "Bash", DetectLanguage("#!/bin/bash\necho hi"))
}

func TestCodeLabel(t *testing.T) {
	assert.Equal(t, "go", codeLabel(format.CodeSegment{Language: "go", Body: "#!/bin/bash"}))
	assert.Equal(t, "bash", codeLabel(format.CodeSegment{Language: format.DefaultLanguage, Body: "#!/bin/bash\necho hi"}))
}

func TestFitLines(t *testing.T) {
	assert.Equal(t, "a\nb\x1b[0m", fitLines("a\nb\n\x1b[0m", 2))
	assert.Equal(t, "a\nb", fitLines("a\nb", 2))
}
