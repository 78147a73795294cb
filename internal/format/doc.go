// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package format turns raw reply text into typed, renderable segments.
//
// The pipeline has four stages:
//
//   - Tokenize splits text on ``` fences into TextSegment and CodeSegment.
//   - Paragraphs splits prose on blank lines.
//   - Inline rewrites a paragraph into spans: bold, italic, bullet and
//     ordinal markers, soft breaks and plain text.
//   - Format drives the stages for one model.Message and prepends an
//     ImageSegment for image messages.
//
// The vocabulary is deliberately small (bold, italic, two list markers and
// fences). This is not a Markdown parser: rules run in a fixed order without
// backtracking, and anything that does not match is kept as literal text.
// Output is data, never markup; renderers own escaping.
//
// # Usage
//
//	segs := format.Format(model.NewAssistantMessage("**hi** and *bye*"))
//	for _, s := range segs {
//	    switch s := s.(type) {
//	    case format.TextSegment:
//	        // s.Blocks[0].Spans: bold "hi", plain " and ", italic "bye"
//	    case format.CodeSegment:
//	        // s.Language, s.Body
//	    }
//	}
package format
