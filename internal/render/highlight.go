// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatfmt/internal/format"
)

// =============================================================================
// SYNTAX HIGHLIGHTING (Chroma-based)
// =============================================================================

// lexerFor picks a lexer by fence tag, then by content, then the plain-text
// fallback. Untagged fences are guessed from their body.
func lexerFor(code, language string) chroma.Lexer {
	var lexer chroma.Lexer
	if language != "" && language != format.DefaultLanguage {
		lexer = lexers.Get(language)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

func styleFor(name string) *chroma.Style {
	style := chromaStyles.Get(name)
	if style == nil {
		style = chromaStyles.Fallback
	}
	return style
}

// terminalFormatter maps a color profile to the chroma formatter that
// uses the most colors the terminal supports. Ascii gets none.
func terminalFormatter(profile termenv.Profile) chroma.Formatter {
	var name string
	switch profile {
	case termenv.TrueColor:
		name = "terminal16m"
	case termenv.ANSI256:
		name = "terminal256"
	case termenv.ANSI:
		name = "terminal16"
	default:
		return nil
	}
	f := formatters.Get(name)
	if f == nil {
		f = formatters.Fallback
	}
	return f
}

// Highlight applies ANSI syntax highlighting to code for a terminal with
// the given profile. It returns code unchanged when the profile has no
// colors or highlighting fails. The result has as many lines as code.
func Highlight(code, language, style string, profile termenv.Profile) string {
	formatter := terminalFormatter(profile)
	if formatter == nil || code == "" {
		return code
	}

	iterator, err := lexerFor(code, language).Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, styleFor(style), iterator); err != nil {
		return code
	}
	return fitLines(buf.String(), lineCount(code))
}

// HighlightHTML renders code as a <pre> block with inline styles. Chroma
// escapes token text, so the result is safe to embed.
func HighlightHTML(code, language, style string) (string, error) {
	iterator, err := lexerFor(code, language).Tokenise(nil, code)
	if err != nil {
		return "", err
	}
	formatter := chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4))
	var buf strings.Builder
	if err := formatter.Format(&buf, styleFor(style), iterator); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// DetectLanguage guesses the language name of code, or "" if unknown.
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

// fitLines folds anything past line n onto line n. Lexers that append a
// final newline leave a trailing line holding only reset sequences.
func fitLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	tail := strings.Join(lines[n-1:], "")
	return strings.Join(append(lines[:n-1], tail), "\n")
}
