// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// maxReactionKeys is the number of alt+digit reaction shortcuts.
const maxReactionKeys = 9

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Send           key.Binding
	SelectUp       key.Binding
	SelectDown     key.Binding
	ClearSelection key.Binding
	PageUp         key.Binding
	PageDown       key.Binding
	ClearLocal     key.Binding
	ClearHistory   key.Binding
	CopyCode       key.Binding
	Help           key.Binding
	Quit           key.Binding

	// React holds one alt+N binding per palette emoji, in palette order.
	React []key.Binding
}

// DefaultKeyMap returns the default key bindings for a reaction palette.
func DefaultKeyMap(palette []string) KeyMap {
	km := KeyMap{
		Send: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		SelectUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("up", "previous reply"),
		),
		SelectDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("down", "next reply"),
		),
		ClearSelection: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "latest reply"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
			key.WithHelp("PgDn", "page down"),
		),
		ClearLocal: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("C-l", "clear screen"),
		),
		ClearHistory: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete history"),
		),
		CopyCode: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("C-y", "copy code"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("F1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}

	for i, emoji := range palette {
		if i >= maxReactionKeys {
			break
		}
		keyName := fmt.Sprintf("alt+%d", i+1)
		km.React = append(km.React, key.NewBinding(
			key.WithKeys(keyName),
			key.WithHelp(fmt.Sprintf("M-%d", i+1), "react "+emoji),
		))
	}
	return km
}

// =============================================================================
// KEY BINDING HELPERS
// =============================================================================

// ShortHelp returns the bindings shown in the one-line help.
func (k KeyMap) ShortHelp() []key.Binding {
	short := []key.Binding{k.Send, k.SelectUp}
	if len(k.React) > 0 {
		short = append(short, k.React[0])
	}
	return append(short, k.CopyCode, k.Help, k.Quit)
}

// FullHelp returns the bindings shown in the expanded help, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.SelectUp, k.SelectDown, k.ClearSelection},
		{k.PageUp, k.PageDown, k.CopyCode},
		{k.ClearLocal, k.ClearHistory, k.Help, k.Quit},
		k.React,
	}
}

// reactionIndex returns the palette position bound to msg, or -1.
func (k KeyMap) reactionIndex(msg tea.KeyMsg) int {
	for i, b := range k.React {
		if key.Matches(msg, b) {
			return i
		}
	}
	return -1
}
