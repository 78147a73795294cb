// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatfmt/internal/model"
)

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// HistoryLoadedMsg reports the end of a Load.
type HistoryLoadedMsg struct {
	Err error
}

// ReplyMsg reports the end of a Send. Reply is the appended assistant
// message, which is the apology when Err is set.
type ReplyMsg struct {
	Reply model.Message
	Err   error
}

// HistoryClearedMsg reports the end of a ClearHistory.
type HistoryClearedMsg struct {
	Err error
}

// ReactedMsg reports a recorded reaction.
type ReactedMsg struct {
	Index int
	Emoji string
	Count int
	Err   error
}

// LoadCmd runs Load off the UI goroutine.
func (s *Session) LoadCmd(ctx context.Context, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		return HistoryLoadedMsg{Err: s.Load(ctx)}
	}
}

// SendCmd runs Send off the UI goroutine.
func (s *Session) SendCmd(ctx context.Context, text string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		reply, err := s.Send(ctx, text)
		return ReplyMsg{Reply: reply, Err: err}
	}
}

// ClearHistoryCmd runs ClearHistory off the UI goroutine.
func (s *Session) ClearHistoryCmd(ctx context.Context, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := withTimeout(ctx, timeout)
		defer cancel()
		return HistoryClearedMsg{Err: s.ClearHistory(ctx)}
	}
}

// ReactCmd records a reaction; the store write happens off the UI goroutine.
func (s *Session) ReactCmd(ctx context.Context, index int, emoji string) tea.Cmd {
	return func() tea.Msg {
		n, err := s.React(ctx, index, emoji)
		return ReactedMsg{Index: index, Emoji: emoji, Count: n, Err: err}
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
