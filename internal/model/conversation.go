// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/chatfmt/internal/reaction"
)

// ErrIndexOutOfRange is returned when a reaction targets a message position
// that does not exist.
var ErrIndexOutOfRange = errors.New("message index out of range")

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Conversation is the append-only message list of a chat session together
// with the reaction ledger keyed by message position.
//
// Positions are stable because messages are only ever appended; Clear drops
// the messages and the ledger together so no stale reaction can attach to a
// new message at a reused position.
type Conversation struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	messages  []Message
	reactions *reaction.Ledger
}

// NewConversation creates an empty conversation with a generated ID.
func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        "conv_" + uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		messages:  make([]Message, 0),
		reactions: reaction.NewLedger(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message and returns its position.
func (c *Conversation) Append(msg Message) int {
	if msg.ID == "" {
		msg.ID = generateID()
	}
	if msg.Kind == "" {
		msg.Kind = KindText
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	c.messages = append(c.messages, msg)
	c.UpdatedAt = time.Now()
	return len(c.messages) - 1
}

// Messages returns a copy of the message list.
func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// At returns the message at position i.
func (c *Conversation) At(i int) (Message, bool) {
	if i < 0 || i >= len(c.messages) {
		return Message{}, false
	}
	return c.messages[i], true
}

// Last returns the most recent message, if any.
func (c *Conversation) Last() (Message, bool) {
	return c.At(len(c.messages) - 1)
}

// LastAssistantIndex returns the position of the most recent assistant
// message, or -1.
func (c *Conversation) LastAssistantIndex() int {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == RoleAssistant {
			return i
		}
	}
	return -1
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	return len(c.messages)
}

// IsEmpty returns true if there are no messages.
func (c *Conversation) IsEmpty() bool {
	return len(c.messages) == 0
}

// Clear removes all messages and destroys the reaction ledger.
func (c *Conversation) Clear() {
	c.messages = make([]Message, 0)
	c.reactions.Reset()
	c.UpdatedAt = time.Now()
}

// =============================================================================
// REACTIONS
// =============================================================================

// React records an emoji reaction on the message at position index and
// returns the new count.
func (c *Conversation) React(index int, emoji string) (int, error) {
	if index < 0 || index >= len(c.messages) {
		return 0, fmt.Errorf("%w: %d (have %d messages)", ErrIndexOutOfRange, index, len(c.messages))
	}
	return c.reactions.Record(index, emoji), nil
}

// Reactions returns the reaction tallies for position index in insertion order.
func (c *Conversation) Reactions(index int) []reaction.Count {
	return c.reactions.Snapshot(index)
}

// Ledger exposes the reaction ledger for renderers and persistence.
func (c *Conversation) Ledger() *reaction.Ledger {
	return c.reactions
}

// Clone returns a deep copy of the conversation, reactions included, that
// can be read without holding the owner's lock.
func (c *Conversation) Clone() *Conversation {
	out := &Conversation{
		ID:        c.ID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		messages:  c.Messages(),
		reactions: reaction.NewLedger(),
	}
	for _, idx := range c.reactions.Indexes() {
		out.reactions.Load(idx, c.reactions.Snapshot(idx))
	}
	return out
}
