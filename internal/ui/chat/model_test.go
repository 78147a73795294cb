// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/session"
	"github.com/jeranaias/chatfmt/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type fakeBackend struct {
	mu      sync.Mutex
	reply   string
	cleared int
}

func (f *fakeBackend) History(ctx context.Context) ([]model.Message, error) {
	return nil, nil
}

func (f *fakeBackend) Send(ctx context.Context, text string) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return model.NewAssistantMessage(f.reply), nil
}

func (f *fakeBackend) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func newTestModel(t *testing.T, reply string) (Model, *session.Session, *fakeBackend) {
	t.Helper()
	fb := &fakeBackend{reply: reply}
	s := session.New(fb, session.Options{})
	m := New(Options{
		Session: s,
		Theme:   styles.NewTheme("dark", "monokai"),
		Offline: true,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	return m, s, fb
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func press(t *testing.T, m Model, k tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(Model), cmd
}

// run executes cmd and flattens batches.
func run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, run(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// feed runs cmd and passes every resulting session or copy message back in.
func feed(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range run(cmd) {
		switch msg.(type) {
		case session.ReplyMsg, session.ReactedMsg, session.HistoryClearedMsg, session.HistoryLoadedMsg, CopiedMsg:
			m = update(t, m, msg)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func altDigit(n rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{n}, Alt: true}
}

// =============================================================================
// SEND
// =============================================================================

func TestModel_SendShowsReply(t *testing.T) {
	m, s, _ := newTestModel(t, "Here is **bold** text")

	m = typeText(t, m, "hello")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "", m.input.Value())
	assert.True(t, m.waiting)

	m = feed(t, m, cmd)
	assert.False(t, m.waiting)
	assert.Equal(t, 2, s.Len())

	view := m.View()
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "bold")
	assert.NotContains(t, view, "**")
}

func TestModel_BlankInputIgnored(t *testing.T) {
	m, s, _ := newTestModel(t, "x")
	m = typeText(t, m, "   ")
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, s.Len())
}

func TestModel_SendWhileWaiting(t *testing.T) {
	m, _, _ := newTestModel(t, "x")
	m.waiting = true
	m = typeText(t, m, "again")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "Wait for the current reply", m.Status())
	assert.Equal(t, "again", m.input.Value())
}

func TestModel_WaitsForHistoryBeforeSending(t *testing.T) {
	fb := &fakeBackend{reply: "x"}
	s := session.New(fb, session.Options{})
	m := New(Options{Session: s, Theme: styles.NewTheme("dark", "")})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	require.NotNil(t, m.Init())
	assert.True(t, m.waiting)

	m = typeText(t, m, "too early")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "too early", m.input.Value())

	m = update(t, m, session.HistoryLoadedMsg{})
	assert.False(t, m.waiting)
	_, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestModel_HistoryErrorShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t, "x")
	m = update(t, m, session.HistoryLoadedMsg{Err: errors.New("down")})
	assert.Equal(t, "History unavailable: down", m.Status())
	assert.True(t, m.statusError)
}

// =============================================================================
// SELECTION AND REACTIONS
// =============================================================================

func TestModel_ReactToLatestReply(t *testing.T) {
	m, s, _ := newTestModel(t, "answer")
	_, err := s.Send(context.Background(), "question")
	require.NoError(t, err)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	m, cmd := press(t, m, altDigit('1'))
	require.NotNil(t, cmd)
	m = feed(t, m, cmd)

	assert.Equal(t, []reaction.Count{{Emoji: reaction.DefaultPalette[0], Count: 1}}, s.Reactions(1))
	assert.Equal(t, reaction.DefaultPalette[0]+" 1", m.Status())
	assert.Contains(t, m.View(), reaction.DefaultPalette[0]+" 1")
}

func TestModel_ReactWithoutReply(t *testing.T) {
	m, _, _ := newTestModel(t, "x")
	m, cmd := press(t, m, altDigit('1'))
	assert.Nil(t, cmd)
	assert.Equal(t, "No reply to react to", m.Status())
}

func TestModel_SelectionMovesBetweenReplies(t *testing.T) {
	m, s, _ := newTestModel(t, "answer")
	ctx := context.Background()
	for _, q := range []string{"one", "two"} {
		_, err := s.Send(ctx, q)
		require.NoError(t, err)
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	steps := []struct {
		key  tea.KeyMsg
		want int
	}{
		{up, 3},
		{up, 1},
		{up, 1},
		{down, 3},
		{down, noSelection},
		{down, noSelection},
	}
	for i, step := range steps {
		m, _ = press(t, m, step.key)
		assert.Equal(t, step.want, m.Selected(), "step %d", i)
	}

	m, _ = press(t, m, up)
	m, _ = press(t, m, up)
	m, cmd := press(t, m, altDigit('3'))
	m = feed(t, m, cmd)
	assert.Equal(t, []reaction.Count{{Emoji: reaction.DefaultPalette[2], Count: 1}}, s.Reactions(1))
	assert.Empty(t, s.Reactions(3))

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, noSelection, m.Selected())
}

func TestModel_ReactionKeyPastPalette(t *testing.T) {
	fb := &fakeBackend{reply: "a"}
	s := session.New(fb, session.Options{})
	m := New(Options{Session: s, Palette: []string{"🔥"}, Offline: true})
	m = update(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	_, err := s.Send(context.Background(), "q")
	require.NoError(t, err)

	_, cmd := press(t, m, altDigit('2'))
	msgs := run(cmd)
	for _, msg := range msgs {
		_, isReaction := msg.(session.ReactedMsg)
		assert.False(t, isReaction)
	}
	assert.Empty(t, s.Reactions(1))
}

// =============================================================================
// CLEARING
// =============================================================================

func TestModel_ClearLocal(t *testing.T) {
	m, s, fb := newTestModel(t, "a")
	_, err := s.Send(context.Background(), "q")
	require.NoError(t, err)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, fb.cleared)
	assert.Equal(t, "Transcript cleared", m.Status())
}

func TestModel_ClearHistory(t *testing.T) {
	m, s, fb := newTestModel(t, "a")
	_, err := s.Send(context.Background(), "q")
	require.NoError(t, err)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.NotNil(t, cmd)
	m = feed(t, m, cmd)

	assert.Equal(t, 1, fb.cleared)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, "History deleted", m.Status())
}

// =============================================================================
// CLIPBOARD
// =============================================================================

func TestModel_CopyLastCodeBlock(t *testing.T) {
	fb := &fakeBackend{reply: "Try:\n\n```go\nx := 1\nfmt.Println(x)\n```"}
	s := session.New(fb, session.Options{})

	var copied string
	m := New(Options{
		Session:   s,
		Offline:   true,
		Clipboard: func(text string) error { copied = text; return nil },
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 30})
	_, err := s.Send(context.Background(), "how?")
	require.NoError(t, err)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	require.NotNil(t, cmd)
	m = feed(t, m, cmd)

	assert.Equal(t, "x := 1\nfmt.Println(x)", copied)
	assert.Equal(t, "Copied go block (2 lines)", m.Status())
}

func TestModel_CopyWithoutCode(t *testing.T) {
	m, _, _ := newTestModel(t, "no code here")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Nil(t, cmd)
	assert.Equal(t, "No code block to copy", m.Status())

	m = update(t, m, CopiedMsg{Err: errors.New("no clipboard")})
	assert.Equal(t, "Copy failed: no clipboard", m.Status())
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

func TestModel_ConfigChanged(t *testing.T) {
	m, _, _ := newTestModel(t, "x")

	cfg := config.Default()
	cfg.UI.Theme = "light"
	cfg.UI.Reactions = []string{"🔥", "👀"}
	m = update(t, m, ConfigChangedMsg{Config: cfg})

	assert.False(t, m.theme.IsDark)
	assert.Same(t, m.theme, m.term.Theme)
	assert.Equal(t, []string{"🔥", "👀"}, m.palette)
	assert.Len(t, m.keys.React, 2)
	assert.Equal(t, "Config reloaded", m.Status())

	m = update(t, m, ConfigChangedMsg{Err: errors.New("bad toml")})
	assert.Equal(t, "Config reload failed: bad toml", m.Status())
	assert.Len(t, m.keys.React, 2, "failed reload keeps the previous palette")
}

// =============================================================================
// HELPERS
// =============================================================================

func TestDefaultKeyMap_ReactionBindings(t *testing.T) {
	palette := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"}
	km := DefaultKeyMap(palette)
	require.Len(t, km.React, maxReactionKeys)
	assert.Equal(t, []string{"alt+1"}, km.React[0].Keys())
	assert.Equal(t, 2, km.reactionIndex(altDigit('3')))
	assert.Equal(t, -1, km.reactionIndex(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}}))
}

func TestLastCodeBlock(t *testing.T) {
	f := format.NewFormatter(0)
	msgs := []model.Message{
		model.NewAssistantMessage("```sh\nls\n```\n\n```go\nfirst()\n```"),
		model.NewUserMessage("thanks"),
	}
	code, ok := lastCodeBlock(msgs, f)
	require.True(t, ok)
	assert.Equal(t, "go", code.Language)
	assert.Equal(t, "first()", code.Body)

	_, ok = lastCodeBlock(msgs[1:], f)
	assert.False(t, ok)
}

func TestNextAssistant(t *testing.T) {
	msgs := []model.Message{
		model.NewUserMessage("q"),
		model.NewAssistantMessage("a"),
		model.NewUserMessage("q"),
	}
	assert.Equal(t, 1, nextAssistant(msgs, 2, -1))
	assert.Equal(t, 1, nextAssistant(msgs, 0, 1))
	assert.Equal(t, -1, nextAssistant(msgs, 2, 1))
	assert.Equal(t, -1, nextAssistant(msgs, 0, -1))
}
