// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session holds the live state of one chat.
//
// A Session owns the conversation and its reaction ledger, talks to the chat
// backend and mirrors everything into an optional transcript store. The
// front ends (TUI and line REPL) only ever go through a Session.
//
// # Key Types
//
//   - Session: the state container; Load, Send, ClearLocal, ClearHistory, React
//   - Backend: the remote chat service, implemented by backend.Client
//   - Store: local persistence, implemented by storage.Store
//   - Pending: what the session is waiting on, for status lines
//
// Failures of Load and Send never leave the transcript silent: an assistant
// apology is appended and the error is returned as well.
//
// # Usage
//
//	s := session.New(backend.NewClient(cfg.Backend.URL), session.Options{Store: store})
//	if err := s.Load(ctx); err != nil {
//	    log.Printf("history unavailable: %v", err)
//	}
//	reply, _ := s.Send(ctx, "show me a lighthouse")
//
// Bubble Tea programs use LoadCmd, SendCmd, ClearHistoryCmd and ReactCmd and
// receive the matching *Msg types.
package session
