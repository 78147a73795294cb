// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one chat message with role, kind, text and optional image reference
//   - Conversation: append-only message list that owns the reaction ledger
//   - Role: user or assistant; ParseRole folds the backend's "ai" into assistant
//   - Kind: text or image
//
// Reactions are keyed by message position. Positions never shift because a
// Conversation only grows; Clear resets messages and reactions together.
//
// # Usage
//
//	conv := model.NewConversation()
//	conv.Append(model.NewUserMessage("show me a cat"))
//	i := conv.Append(model.NewImageMessage("https://example.com/cat.png", "a cat"))
//	conv.React(i, "❤️")
package model
