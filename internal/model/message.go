// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "Assistant"
	default:
		return string(r)
	}
}

// ParseRole maps a wire role to a Role. The chat backend labels its own
// replies "ai"; anything that is not the user is treated as the assistant.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", "human":
		return RoleUser
	default:
		return RoleAssistant
	}
}

// =============================================================================
// KIND TYPE
// =============================================================================

// Kind is the variant of a message: plain text or image-bearing.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// ErrMissingImageRef is returned by Validate for an image message without a reference.
var ErrMissingImageRef = errors.New("image message has no image reference")

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single conversation message. Messages are immutable once
// appended to a Conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text,omitempty"`
	ImageRef  string    `json:"image_ref,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new text message with a generated ID.
func NewMessage(role Role, text string) Message {
	return Message{
		ID:        generateID(),
		Role:      role,
		Kind:      KindText,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) Message {
	return NewMessage(RoleUser, text)
}

// NewAssistantMessage creates a new assistant text reply.
func NewAssistantMessage(text string) Message {
	return NewMessage(RoleAssistant, text)
}

// NewImageMessage creates an assistant message carrying an image and an
// optional caption.
func NewImageMessage(imageRef, caption string) Message {
	msg := NewMessage(RoleAssistant, caption)
	msg.Kind = KindImage
	msg.ImageRef = imageRef
	return msg
}

// =============================================================================
// MESSAGE METHODS
// =============================================================================

// IsImage reports whether the message is image-bearing.
func (m Message) IsImage() bool {
	return m.Kind == KindImage
}

// Validate checks the message invariants.
func (m Message) Validate() error {
	if m.Kind == KindImage && strings.TrimSpace(m.ImageRef) == "" {
		return ErrMissingImageRef
	}
	return nil
}

// SameContent reports whether m and other show the same thing: role, kind,
// text and image reference. IDs and timestamps are ignored.
func (m Message) SameContent(other Message) bool {
	return m.Role == other.Role &&
		m.Kind == other.Kind &&
		m.Text == other.Text &&
		m.ImageRef == other.ImageRef
}

// Preview returns a truncated single-line preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m Message) Preview(maxLen int) string {
	if maxLen < 0 {
		maxLen = 0
	}
	content := strings.Join(strings.Fields(m.Text), " ")
	if content == "" && m.IsImage() {
		content = "[image]"
	}
	runes := []rune(content)
	if len(runes) <= maxLen {
		return content
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateID creates a unique message ID.
func generateID() string {
	return "msg_" + uuid.NewString()
}
