// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/chatfmt/internal/backend"
	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/render"
	"github.com/jeranaias/chatfmt/internal/session"
	"github.com/jeranaias/chatfmt/internal/ui/styles"
)

// noSelection means the view follows the newest message.
const noSelection = -1

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a chat Model.
type Options struct {
	Session *session.Session

	// Theme defaults to a dark theme with the monokai code style.
	Theme *styles.Theme

	// Palette is the emoji offered on alt+1..alt+N. Empty selects
	// reaction.DefaultPalette.
	Palette []string

	// Timeout bounds each backend request; 0 means no limit.
	Timeout time.Duration

	ShowTimestamps bool

	// Offline skips the history request on start; the caller has already
	// loaded the stored transcript into Session.
	Offline bool

	// Clipboard replaces the system clipboard, mainly for tests.
	Clipboard func(string) error

	Context context.Context
	Logger  *slog.Logger
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	ctx     context.Context
	session *session.Session
	logger  *slog.Logger

	// Rendering
	theme     *styles.Theme
	term      *render.Terminal
	formatter *format.Formatter

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap

	palette   []string
	timeout   time.Duration
	offline   bool
	clipboard func(string) error

	// Dimensions
	width  int
	height int
	ready  bool

	// selected is the message index under the cursor, or noSelection.
	selected int
	// offsets holds the first viewport line of each rendered message.
	offsets  []int
	rendered int

	// waiting is set while a session command is in flight; it keeps the
	// spinner ticking.
	waiting bool

	status      string
	statusError bool
}

// New creates a chat model over opts.Session.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("dark", "")
	}
	palette := opts.Palette
	if len(palette) == 0 {
		palette = reaction.DefaultPalette
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = copyToClipboard
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(styles.ThinkingSpinner))

	term := render.NewTerminal(theme, 0)
	term.ShowTimestamps = opts.ShowTimestamps

	m := Model{
		ctx:       ctx,
		session:   opts.Session,
		logger:    logger,
		theme:     theme,
		term:      term,
		formatter: format.NewFormatter(0),
		viewport:  viewport.New(0, 0),
		input:     ti,
		spinner:   sp,
		help:      help.New(),
		keys:      DefaultKeyMap(palette),
		palette:   palette,
		timeout:   opts.Timeout,
		offline:   opts.Offline,
		clipboard: clip,
		selected:  noSelection,
		// Online, Init starts with the history request.
		waiting: !opts.Offline,
	}
	m.applyTheme()
	return m
}

// Init starts the cursor blink and, when online, the history request.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if !m.offline {
		cmds = append(cmds, m.session.LoadCmd(m.ctx, m.timeout), m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Selected returns the selected message index, or -1 when following the
// newest message.
func (m Model) Selected() int {
	return m.selected
}

// Status returns the current status line text.
func (m Model) Status() string {
	return m.status
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case session.HistoryLoadedMsg:
		m.waiting = false
		m.selected = noSelection
		if msg.Err != nil {
			m.setError("History unavailable: %v", msg.Err)
		}
		m.refresh()
		return m, nil

	case session.ReplyMsg:
		m.waiting = false
		switch {
		case errors.Is(msg.Err, session.ErrBusy):
			m.setError("Wait for the current reply")
		case msg.Err != nil:
			m.setError("Send failed: %v", msg.Err)
		default:
			m.clearStatus()
		}
		m.refresh()
		return m, nil

	case session.HistoryClearedMsg:
		m.waiting = false
		if msg.Err != nil {
			m.setError("Clear history failed: %v", msg.Err)
			return m, nil
		}
		m.selected = noSelection
		m.setStatus("History deleted")
		m.refresh()
		return m, nil

	case session.ReactedMsg:
		if msg.Err != nil {
			m.setError("Reaction failed: %v", msg.Err)
			return m, nil
		}
		m.setStatus("%s %d", msg.Emoji, msg.Count)
		m.refresh()
		return m, nil

	case CopiedMsg:
		if msg.Err != nil {
			m.setError("Copy failed: %v", msg.Err)
		} else {
			m.setStatus("Copied %s block (%d lines)", msg.Language, msg.Lines)
		}
		return m, nil

	case ConfigChangedMsg:
		return m.handleConfig(msg)

	case spinner.TickMsg:
		if !m.waiting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The user message lands in the session before the reply does.
		if m.session.Len() != m.rendered {
			m.refresh()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		return m.send()

	case key.Matches(msg, m.keys.SelectUp):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.SelectDown):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.ClearSelection):
		m.selected = noSelection
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.ClearLocal):
		m.session.ClearLocal(m.ctx)
		m.selected = noSelection
		m.setStatus("Transcript cleared")
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.ClearHistory):
		if m.waiting {
			m.setError("Wait for the current request")
			return m, nil
		}
		m.waiting = true
		m.setStatus("Deleting history...")
		return m, tea.Batch(m.session.ClearHistoryCmd(m.ctx, m.timeout), m.spinner.Tick)

	case key.Matches(msg, m.keys.CopyCode):
		return m.copyLastCode()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	}

	if i := m.keys.reactionIndex(msg); i >= 0 {
		return m.react(i)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// =============================================================================
// ACTIONS
// =============================================================================

func (m Model) send() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.waiting {
		m.setError("Wait for the current reply")
		return m, nil
	}

	if backend.IsImageRequest(text) {
		m.spinner.Spinner = styles.ImageSpinner
	} else {
		m.spinner.Spinner = styles.ThinkingSpinner
	}
	m.input.Reset()
	m.selected = noSelection
	m.waiting = true
	m.clearStatus()
	m.logger.Debug("sending message", "chars", len(text))

	return m, tea.Batch(m.session.SendCmd(m.ctx, text, m.timeout), m.spinner.Tick)
}

// react records palette[i] on the selected reply, or on the newest one.
func (m Model) react(i int) (tea.Model, tea.Cmd) {
	if i >= len(m.palette) {
		return m, nil
	}
	target := m.selected
	if target == noSelection {
		msgs := m.session.Messages()
		target = nextAssistant(msgs, len(msgs)-1, -1)
	}
	if target == noSelection {
		m.setError("No reply to react to")
		return m, nil
	}
	return m, m.session.ReactCmd(m.ctx, target, m.palette[i])
}

// moveSelection steps between assistant replies. Moving down past the
// newest reply returns to following the transcript.
func (m *Model) moveSelection(dir int) {
	msgs := m.session.Messages()
	switch {
	case m.selected == noSelection && dir < 0:
		m.selected = nextAssistant(msgs, len(msgs)-1, -1)
	case m.selected == noSelection:
		return
	default:
		next := nextAssistant(msgs, m.selected+dir, dir)
		if next != noSelection || dir > 0 {
			m.selected = next
		}
	}
	m.refresh()
}

func (m Model) copyLastCode() (tea.Model, tea.Cmd) {
	code, ok := lastCodeBlock(m.session.Messages(), m.formatter)
	if !ok {
		m.setError("No code block to copy")
		return m, nil
	}
	clip := m.clipboard
	return m, func() tea.Msg {
		return CopiedMsg{
			Language: code.Language,
			Lines:    lineCount(code.Body),
			Err:      clip(code.Body),
		}
	}
}

func (m Model) handleConfig(msg ConfigChangedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.setError("Config reload failed: %v", msg.Err)
		return m, nil
	}
	cfg := msg.Config
	m.theme = styles.NewTheme(cfg.UI.Theme, cfg.UI.CodeStyle)
	m.term.Theme = m.theme
	m.term.ShowTimestamps = cfg.UI.ShowTimestamps
	if len(cfg.UI.Reactions) > 0 {
		m.palette = cfg.UI.Reactions
		m.keys = DefaultKeyMap(m.palette)
	}
	if cfg.Backend.TimeoutSecs > 0 {
		m.timeout = time.Duration(cfg.Backend.TimeoutSecs) * time.Second
	}
	m.applyTheme()
	m.setStatus("Config reloaded")
	m.layout()
	m.refresh()
	m.logger.Info("config reloaded", "theme", cfg.UI.Theme, "code_style", cfg.UI.CodeStyle)
	return m, nil
}

// =============================================================================
// LAYOUT AND RENDERING
// =============================================================================

func (m *Model) applyTheme() {
	m.input.PromptStyle = m.theme.InputPrompt
	m.input.PlaceholderStyle = m.theme.Hint
	m.spinner.Style = m.theme.Spinner
	m.help.Styles.ShortKey = m.theme.Hint.Copy().Bold(true)
	m.help.Styles.ShortDesc = m.theme.Hint
	m.help.Styles.FullKey = m.theme.Hint.Copy().Bold(true)
	m.help.Styles.FullDesc = m.theme.Hint
}

// layout sizes the viewport to what the chrome leaves over.
func (m *Model) layout() {
	if !m.ready {
		return
	}
	m.help.Width = m.width
	chrome := lipgloss.Height(m.headerView()) + 1 + 1 + lipgloss.Height(m.help.View(m.keys))
	height := m.height - chrome
	if height < 1 {
		height = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = height

	inputWidth := m.width - lipgloss.Width(m.input.Prompt) - 1
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	// Two columns go to the selection border.
	m.term.SetWidth(max(m.width-2, 0))
}

// refresh re-renders the transcript into the viewport.
func (m *Model) refresh() {
	conv := m.session.Conversation()
	msgs := conv.Messages()
	if m.selected >= len(msgs) {
		m.selected = noSelection
	}

	var b strings.Builder
	m.offsets = m.offsets[:0]
	line := 0
	for i, msg := range msgs {
		block := m.term.Message(msg, m.formatter.Format(msg), conv.Reactions(i))
		if i == m.selected {
			block = m.theme.Selected.Render(block)
		} else {
			block = m.theme.Unselected.Render(block)
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		m.offsets = append(m.offsets, line)
		line += lipgloss.Height(block) + 1
	}
	m.rendered = len(msgs)

	m.viewport.SetContent(b.String())
	if m.selected == noSelection {
		m.viewport.GotoBottom()
		return
	}
	m.scrollToSelection()
}

// scrollToSelection brings the top of the selected message into view.
func (m *Model) scrollToSelection() {
	if m.selected < 0 || m.selected >= len(m.offsets) {
		return
	}
	top := m.offsets[m.selected]
	if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top)
	}
}

func (m *Model) setStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusError = false
}

func (m *Model) setError(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
	m.statusError = true
}

func (m *Model) clearStatus() {
	m.status = ""
	m.statusError = false
}
