// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package format

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfmt/internal/model"
)

func plain(s string) Span   { return Span{Kind: SpanPlain, Text: s} }
func bold(s string) Span    { return Span{Kind: SpanBold, Text: s} }
func italic(s string) Span  { return Span{Kind: SpanItalic, Text: s} }
func brk() Span             { return Span{Kind: SpanBreak, Text: "\n"} }
func bullet() Span          { return Span{Kind: SpanBullet, Text: BulletGlyph} }
func ordinal(n string) Span { return Span{Kind: SpanOrdinal, Text: n + "."} }

func textMsg(s string) model.Message {
	return model.Message{ID: "m1", Role: model.RoleAssistant, Kind: model.KindText, Text: s}
}

// =============================================================================
// TOKENIZER TESTS
// =============================================================================

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Segment
	}{
		{
			name: "empty string yields one empty text segment",
			in:   "",
			want: []Segment{TextSegment{Raw: ""}},
		},
		{
			name: "no fence",
			in:   "just prose\nover two lines",
			want: []Segment{TextSegment{Raw: "just prose\nover two lines"}},
		},
		{
			name: "fence with language between text",
			in:   "a\n```js\nconsole.log(1)\n```\nb",
			want: []Segment{
				TextSegment{Raw: "a\n"},
				CodeSegment{Language: "js", Body: "console.log(1)"},
				TextSegment{Raw: "\nb"},
			},
		},
		{
			name: "missing tag defaults to text",
			in:   "```\nplain code\n```",
			want: []Segment{CodeSegment{Language: DefaultLanguage, Body: "plain code"}},
		},
		{
			name: "body whitespace is trimmed",
			in:   "```go\n\n\tfmt.Println()\n\n```",
			want: []Segment{CodeSegment{Language: "go", Body: "fmt.Println()"}},
		},
		{
			name: "two fences keep order",
			in:   "x\n```py\na = 1\n```\nmid\n```sh\nls\n```",
			want: []Segment{
				TextSegment{Raw: "x\n"},
				CodeSegment{Language: "py", Body: "a = 1"},
				TextSegment{Raw: "\nmid\n"},
				CodeSegment{Language: "sh", Body: "ls"},
			},
		},
		{
			name: "matching is non-greedy",
			in:   "```a\n1\n``` and ```b\n2\n```",
			want: []Segment{
				CodeSegment{Language: "a", Body: "1"},
				TextSegment{Raw: " and "},
				CodeSegment{Language: "b", Body: "2"},
			},
		},
		{
			name: "unterminated fence stays text",
			in:   "see ```js\nhi",
			want: []Segment{TextSegment{Raw: "see ```js\nhi"}},
		},
		{
			name: "fence without line break is not code",
			in:   "```js console.log(1)```",
			want: []Segment{TextSegment{Raw: "```js console.log(1)```"}},
		},
		{
			name: "crlf after tag",
			in:   "```rb\r\nputs 1\r\n```",
			want: []Segment{CodeSegment{Language: "rb", Body: "puts 1"}},
		},
		{
			name: "code body keeps inline markup verbatim",
			in:   "```md\n**not bold**\n• item\n```",
			want: []Segment{CodeSegment{Language: "md", Body: "**not bold**\n• item"}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Tokenize(tc.in))
		})
	}
}

// =============================================================================
// PARAGRAPH TESTS
// =============================================================================

func TestParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single line", "hello", []string{"hello"}},
		{"single newlines fall back to one paragraph", "l1\nl2", []string{"l1\nl2"}},
		{"blank line splits", "p1\n\np2", []string{"p1", "p2"}},
		{"whitespace-only separator line", "p1\n  \t\np2", []string{"p1", "p2"}},
		{"runs of blank lines", "p1\n\n\n\np2\n\np3", []string{"p1", "p2", "p3"}},
		{"paragraph keeps inner line breaks", "a\nb\n\nc", []string{"a\nb", "c"}},
		{"one real paragraph keeps original text", "\n\nonly\n\n", []string{"\n\nonly\n\n"}},
		{"crlf is normalised", "p1\r\n\r\np2", []string{"p1", "p2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Paragraphs(tc.in))
		})
	}
}

// =============================================================================
// INLINE TESTS
// =============================================================================

func TestInline(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Span
	}{
		{"plain", "hello world", []Span{plain("hello world")}},
		{"bold and italic", "**hi** and *bye*", []Span{bold("hi"), plain(" and "), italic("bye")}},
		{"bold is not re-read as italic", "**a** *b* **c**", []Span{bold("a"), plain(" "), italic("b"), plain(" "), bold("c")}},
		{"unmatched bold stays literal", "**open only", []Span{plain("**open only")}},
		{"unmatched italic stays literal", "2 * 3 = 6", []Span{plain("2 * 3 = 6")}},
		{"empty emphasis stays literal", "a ** b", []Span{plain("a ** b")}},
		{"emphasis does not cross lines", "*a\nb*", []Span{plain("*a"), brk(), plain("b*")}},
		{"bullet line", "• first", []Span{bullet(), plain("first")}},
		{"bullet needs the space", "•first", []Span{plain("•first")}},
		{"bullet only at line start", "a • b", []Span{plain("a • b")}},
		{"ordinal line", "1. one", []Span{ordinal("1"), plain("one")}},
		{"multi-digit ordinal", "12. twelve", []Span{ordinal("12"), plain("twelve")}},
		{"ordinal only at line start", "see 2. two", []Span{plain("see 2. two")}},
		{"decimal is not an ordinal", "3.14 is pi", []Span{plain("3.14 is pi")}},
		{
			name: "list lines",
			in:   "Steps:\n1. **install**\n2. run *it*\n• done",
			want: []Span{
				plain("Steps:"), brk(),
				ordinal("1"), bold("install"), brk(),
				ordinal("2"), plain("run "), italic("it"), brk(),
				bullet(), plain("done"),
			},
		},
		{"bullet before bold", "• **key** value", []Span{bullet(), bold("key"), plain(" value")}},
		{"line starting with bold has no marker check after it", "**1.** x", []Span{bold("1."), plain(" x")}},
		{"trailing break kept", "a\n", []Span{plain("a"), brk()}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Inline(tc.in).Spans)
		})
	}
}

func TestInline_EmptyParagraph(t *testing.T) {
	assert.True(t, Inline("").Empty())
}

func TestBlock_Text(t *testing.T) {
	b := Inline("• **a** b\n2. c")
	assert.Equal(t, "• a b\n2. c", b.Text())

	// The space after a list marker is implied, not carried in a span.
	require.GreaterOrEqual(t, len(b.Spans), 2)
	assert.Equal(t, bullet(), b.Spans[0])
	assert.Equal(t, bold("a"), b.Spans[1])
	for _, sp := range b.Spans {
		if sp.Kind == SpanOrdinal {
			assert.Equal(t, "2.", sp.Text)
		}
	}
}

// =============================================================================
// FORMATTER TESTS
// =============================================================================

func TestFormat_FenceExtraction(t *testing.T) {
	got := Format(textMsg("a\n```js\nconsole.log(1)\n```\nb"))

	require.Len(t, got, 3)
	assert.Equal(t, TextSegment{Raw: "a", Blocks: []Block{{Spans: []Span{plain("a")}}}}, got[0])
	assert.Equal(t, CodeSegment{Language: "js", Body: "console.log(1)"}, got[1])
	assert.Equal(t, TextSegment{Raw: "b", Blocks: []Block{{Spans: []Span{plain("b")}}}}, got[2])
}

func TestFormat_UnterminatedFence(t *testing.T) {
	in := "see ```js\nhi"
	got := Format(textMsg(in))

	require.Len(t, got, 1)
	text, ok := got[0].(TextSegment)
	require.True(t, ok, "expected a text segment, got %T", got[0])
	assert.Equal(t, in, text.Raw)
	require.Len(t, text.Blocks, 1)
	assert.Equal(t, "see ```js\nhi", text.Blocks[0].Text())
}

func TestFormat_BoldItalic(t *testing.T) {
	got := Format(textMsg("**hi** and *bye*"))

	require.Len(t, got, 1)
	text := got[0].(TextSegment)
	require.Len(t, text.Blocks, 1)
	assert.Equal(t, []Span{bold("hi"), plain(" and "), italic("bye")}, text.Blocks[0].Spans)
}

func TestFormat_Paragraphs(t *testing.T) {
	two := Format(textMsg("p1\n\np2"))
	require.Len(t, two, 1)
	assert.Len(t, two[0].(TextSegment).Blocks, 2)

	one := Format(textMsg("l1\nl2"))
	require.Len(t, one, 1)
	blocks := one[0].(TextSegment).Blocks
	require.Len(t, blocks, 1)
	assert.Equal(t, []Span{plain("l1"), brk(), plain("l2")}, blocks[0].Spans)
}

func TestFormat_ImageMessage(t *testing.T) {
	msg := model.Message{Role: model.RoleAssistant, Kind: model.KindImage, ImageRef: "x.png", Text: "caption"}
	got := Format(msg)

	require.Len(t, got, 2)
	assert.Equal(t, ImageSegment{Ref: "x.png"}, got[0])
	assert.Equal(t, SegmentText, got[1].Kind())
	assert.Equal(t, "caption", got[1].(TextSegment).Raw)
}

func TestFormat_ImageWithoutCaption(t *testing.T) {
	got := Format(model.NewImageMessage("data:image/png;base64,AAAA", ""))
	assert.Equal(t, []Segment{ImageSegment{Ref: "data:image/png;base64,AAAA"}}, got)
}

func TestFormat_ImageKindWithoutRefFallsBackToText(t *testing.T) {
	got := Format(model.Message{Kind: model.KindImage, Text: "no picture"})
	require.Len(t, got, 1)
	assert.Equal(t, SegmentText, got[0].Kind())
}

func TestFormat_EmptyAndBlank(t *testing.T) {
	assert.Empty(t, Format(textMsg("")))
	assert.Empty(t, Format(textMsg("   \n\t\n")))
}

func TestFormat_CodeOnly(t *testing.T) {
	got := Format(textMsg("\n\n```go\nx := 1\n```\n\n"))
	assert.Equal(t, []Segment{CodeSegment{Language: "go", Body: "x := 1"}}, got)
}

func TestFormat_CodeBetweenParagraphs(t *testing.T) {
	got := Format(textMsg("Intro.\n\nMore intro.\n\n```sh\nmake\n```\n\n• done\n• next"))

	require.Len(t, got, 3)
	assert.Len(t, got[0].(TextSegment).Blocks, 2)
	assert.Equal(t, CodeSegment{Language: "sh", Body: "make"}, got[1])
	tail := got[2].(TextSegment)
	require.Len(t, tail.Blocks, 1)
	assert.Equal(t, []Span{bullet(), plain("done"), brk(), bullet(), plain("next")}, tail.Blocks[0].Spans)
}

func TestFormat_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"**hi** and *bye*",
		"a\n```js\nconsole.log(1)\n```\nb",
		"see ```js\nhi",
		"p1\n\np2\n\n1. x\n• y",
	}
	for _, in := range inputs {
		msg := textMsg(in)
		assert.Equal(t, Format(msg), Format(msg), "input %q", in)
	}
}

// TestFormat_PreservesContent checks that text without fences or markup
// comes back as one text segment with every non-space character intact.
func TestFormat_PreservesContent(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	alphabet := []rune("abcxyz  .,!?é漢\n")

	compact := func(s string) string { return strings.Join(strings.Fields(s), "") }

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(60)
		runes := make([]rune, n)
		for j := range runes {
			runes[j] = alphabet[rng.Intn(len(alphabet))]
		}
		s := "w" + string(runes)

		got := Format(textMsg(s))
		require.Len(t, got, 1, "input %q", s)
		text := got[0].(TextSegment)
		assert.Equal(t, s, text.Raw)

		var rebuilt strings.Builder
		for _, b := range text.Blocks {
			rebuilt.WriteString(b.Text())
			rebuilt.WriteString("\n")
		}
		assert.Equal(t, compact(s), compact(rebuilt.String()), "input %q", s)
	}
}

func TestFormat_NeverPanics(t *testing.T) {
	inputs := []string{
		"```", "``````", "```\n```", "*", "**", "***", "****", "*****",
		"• ", "1. ", "\n\n\n", "```js\n", "**```\ncode\n```**",
		"\r\n\r\n", "\x00", "😀 *😀* **😀**",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Format(textMsg(in)) }, "input %q", in)
	}
}

// =============================================================================
// CACHING FORMATTER TESTS
// =============================================================================

func TestFormatter_MatchesFormat(t *testing.T) {
	f := NewFormatter(0)
	msg := textMsg("**a**\n\n```go\nx\n```")

	first := f.Format(msg)
	assert.Equal(t, Format(msg), first)
	assert.Equal(t, first, f.Format(msg))
	assert.Equal(t, 1, f.Len())
}

func TestFormatter_TextChangeInvalidates(t *testing.T) {
	f := NewFormatter(4)
	msg := textMsg("one")
	f.Format(msg)

	msg.Text = "*two*"
	got := f.Format(msg)
	assert.Equal(t, Format(msg), got)
}

func TestFormatter_Bounded(t *testing.T) {
	f := NewFormatter(2)
	for _, id := range []string{"a", "b", "c"} {
		f.Format(model.Message{ID: id, Kind: model.KindText, Text: id})
	}
	assert.LessOrEqual(t, f.Len(), 2)

	f.Reset()
	assert.Equal(t, 0, f.Len())
}

func TestFormatter_NoIDBypassesCache(t *testing.T) {
	f := NewFormatter(2)
	f.Format(model.Message{Kind: model.KindText, Text: "x"})
	assert.Equal(t, 0, f.Len())
}

func TestKinds_TextRoundTrip(t *testing.T) {
	var sk SegmentKind
	require.NoError(t, sk.UnmarshalText([]byte("code")))
	assert.Equal(t, SegmentCode, sk)
	assert.Error(t, sk.UnmarshalText([]byte("video")))

	var pk SpanKind
	require.NoError(t, pk.UnmarshalText([]byte("ordinal")))
	assert.Equal(t, SpanOrdinal, pk)
	assert.Error(t, pk.UnmarshalText([]byte("underline")))
}
