// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfmt/internal/session"
)

// =============================================================================
// MAIN VIEW
// =============================================================================

// View renders header, transcript, status line, input and help.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerView(),
		m.viewport.View(),
		m.statusView(),
		m.input.View(),
		m.help.View(m.keys),
	)
}

func (m Model) headerView() string {
	title := fmt.Sprintf("chatfmt  %s · %d messages", m.session.Name(), m.rendered)
	return m.theme.Header.Copy().MaxWidth(max(m.width, 1)).Render(title)
}

// statusView shows the pending request, else the last status, else the
// selection hint.
func (m Model) statusView() string {
	var line string
	switch {
	case m.waiting && m.session.Pending() != session.PendingNone:
		line = m.spinner.View() + " " + m.theme.Spinner.Render(m.session.Pending().String()+"...")
	case m.status != "" && m.statusError:
		line = m.theme.Error.Render(m.status)
	case m.status != "":
		line = m.theme.StatusBar.Render(m.status)
	case m.selected != noSelection:
		line = m.theme.Hint.Render(fmt.Sprintf("reply %d selected, alt+1..%d to react", m.selected+1, len(m.keys.React)))
	default:
		line = " "
	}
	return lipgloss.NewStyle().MaxWidth(max(m.width, 1)).Render(line)
}
