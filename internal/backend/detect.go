// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package backend

import "strings"

// imageKeywords are the phrases the backend routes to image generation.
var imageKeywords = []string{"image of", "show me", "generate image", "picture of"}

// IsImageRequest reports whether text will likely produce an image reply,
// so a front end can say "generating image" instead of "thinking".
func IsImageRequest(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range imageKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Apology texts appended in place of a reply when a request fails.
const (
	SendErrorText    = "❌ Sorry, I encountered an error. Please try again."
	HistoryErrorText = "❌ Error loading chat history. Please try again."
)
