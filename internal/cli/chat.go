// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - "chatfmt chat": a line-based REPL over the chat backend.
//
// Commands:
//
//	/help, /h           Show help
//	/history            Print the conversation
//	/react [N] EMOJI    React to message N (default: the latest reply).
//	                    EMOJI may be a palette number, e.g. /react 1
//	/clear, /c          Clear the screen transcript (backend keeps history)
//	/delete             Delete the conversation history on the backend
//	/quit, /q           Exit
//
// Ctrl+C cancels a request in flight; Ctrl+D exits.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatfmt/internal/backend"
	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/model"
	"github.com/jeranaias/chatfmt/internal/reaction"
	"github.com/jeranaias/chatfmt/internal/render"
	"github.com/jeranaias/chatfmt/internal/session"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI and loads the saved input history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.ConfigDir()
	if err != nil {
		configDir = os.TempDir()
	}

	c := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	c.LoadHistory()
	return c
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line with the given prompt. Non-blank input is added
// to the history.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory writes the input history, owner read/write only.
func (c *ChatCLI) SaveHistory() {
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and restores the terminal.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// chatREPL holds what the loop needs between lines.
type chatREPL struct {
	env      *Env
	renderer render.Renderer
	palette  []string
	out      io.Writer
	errOut   io.Writer
}

func newChatREPL(env *Env, r render.Renderer) *chatREPL {
	palette := env.Config.UI.Reactions
	if len(palette) == 0 {
		palette = reaction.DefaultPalette
	}
	return &chatREPL{
		env:      env,
		renderer: r,
		palette:  palette,
		out:      env.Out,
		errOut:   env.Err,
	}
}

// HandleChat runs the REPL until /quit, Ctrl+C at the prompt or EOF.
func HandleChat(ctx context.Context, env *Env, args Args) error {
	r, err := env.Renderer(args.Format, args)
	if err != nil {
		return NewUsageError(err.Error(), "chatfmt chat --format plain")
	}
	repl := newChatREPL(env, r)

	if err := env.LoadTranscript(ctx); err != nil {
		if env.Offline() {
			return NewCommandError("chat", "load", "cannot read the stored transcript", err)
		}
		fmt.Fprintln(env.Err, RenderConditional(WarningStyle, "History unavailable: "+err.Error()))
	}
	repl.printWelcome()

	input := NewChatCLI()
	defer input.Close()

	prompt := RenderConditional(TitleStyle, "chatfmt> ")
	for {
		line, err := input.ReadInput(prompt)
		if err != nil {
			// Ctrl+C at the prompt, Ctrl+D or a closed stdin.
			fmt.Fprintln(env.Out)
			return nil
		}

		cont, err := repl.handleLine(ctx, line)
		if err != nil {
			fmt.Fprintf(env.Err, "%s %v\n", RenderConditional(ErrorStyle, "[Error]"), err)
		}
		if !cont {
			return nil
		}
	}
}

// handleLine processes one line of input. It returns false when the user
// asked to leave.
func (r *chatREPL) handleLine(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return true, nil
	case strings.HasPrefix(line, "/"):
		return r.handleSlashCommand(ctx, line)
	case strings.EqualFold(line, "exit"), strings.EqualFold(line, "quit"):
		return false, nil
	default:
		return true, r.send(ctx, line)
	}
}

// send posts text and prints the reply. Ctrl+C cancels the request.
func (r *chatREPL) send(ctx context.Context, text string) error {
	if r.env.Offline() {
		return errors.New("offline: messages cannot be sent (drop --offline to chat)")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, r.env.Timeout())
	defer cancel()

	pending := session.PendingThinking
	if backend.IsImageRequest(text) {
		pending = session.PendingImage
	}
	fmt.Fprintln(r.errOut, RenderConditional(DimStyle, pending.String()+"..."))

	reply, err := r.env.Session.Send(ctx, text)
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(r.errOut, RenderConditional(WarningStyle, "[Cancelled]"))
	}
	if reply.ID != "" {
		r.printMessage(r.env.Session.Len()-1, reply)
	}
	return err
}

func (r *chatREPL) printMessage(index int, msg model.Message) {
	out := r.renderer.Message(msg, r.env.Formatter().Format(msg), r.env.Session.Reactions(index))
	fmt.Fprintf(r.out, "%s\n\n", out)
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

func (r *chatREPL) handleSlashCommand(ctx context.Context, line string) (bool, error) {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "/help", "/h", "/?", "/":
		r.printHelp()
		return true, nil

	case "/history":
		r.printHistory()
		return true, nil

	case "/react", "/r":
		return true, r.react(ctx, args)

	case "/clear", "/c":
		r.env.Session.ClearLocal(ctx)
		fmt.Fprintln(r.out, RenderConditional(DimStyle, "[Transcript cleared; the backend keeps its history]"))
		return true, nil

	case "/delete":
		if r.env.Offline() {
			r.env.Session.ClearLocal(ctx)
		} else {
			ctx, cancel := context.WithTimeout(ctx, r.env.Timeout())
			defer cancel()
			if err := r.env.Session.ClearHistory(ctx); err != nil {
				return true, fmt.Errorf("delete history: %w", err)
			}
		}
		fmt.Fprintln(r.out, RenderConditional(SuccessStyle, "[History deleted]"))
		return true, nil

	case "/quit", "/q", "/exit":
		return false, nil

	default:
		return true, fmt.Errorf("unknown command: %s (type /help for commands)", command)
	}
}

func (r *chatREPL) react(ctx context.Context, args []string) error {
	conv := r.env.Session.Conversation()
	index, emoji, err := parseReactCommand(args, r.palette, conv.LastAssistantIndex())
	if err != nil {
		return err
	}
	if msg, ok := conv.At(index); ok && msg.Role != model.RoleAssistant {
		return fmt.Errorf("message %d is not a reply", index+1)
	}

	n, err := r.env.Session.React(ctx, index, emoji)
	if err != nil {
		return fmt.Errorf("react to message %d: %w", index+1, err)
	}
	fmt.Fprintf(r.out, "%s %s %d\n", RenderConditional(SuccessStyle, "[Reacted]"), emoji, n)
	return nil
}

// parseReactCommand reads "/react" arguments: an optional 1-based message
// number followed by an emoji or a 1-based palette number. Without a
// message number the reaction goes to lastReply, a 0-based index that is
// negative when there is no reply.
func parseReactCommand(args []string, palette []string, lastReply int) (int, string, error) {
	var (
		index = lastReply
		token string
	)
	switch len(args) {
	case 1:
		token = args[0]
	case 2:
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return 0, "", fmt.Errorf("invalid message number %q", args[0])
		}
		index = n - 1
		token = args[1]
	default:
		return 0, "", errors.New("usage: /react [MESSAGE] EMOJI")
	}

	if index < 0 {
		return 0, "", errors.New("no reply to react to")
	}

	if n, err := strconv.Atoi(token); err == nil {
		if n < 1 || n > len(palette) {
			return 0, "", fmt.Errorf("palette has %d reactions, got %d", len(palette), n)
		}
		return index, palette[n-1], nil
	}
	return index, token, nil
}

// =============================================================================
// OUTPUT
// =============================================================================

func (r *chatREPL) printWelcome() {
	fmt.Fprintln(r.out, RenderConditional(TitleStyle, "chatfmt chat"))
	if r.env.Offline() {
		fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Transcript:"), "stored copy (offline)")
	} else {
		fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Backend:"), r.env.Config.Backend.URL)
	}
	if n := r.env.Session.Len(); n > 0 {
		fmt.Fprintf(r.out, "%s %d (/history to show)\n", RenderLabel("Messages:"), n)
	}
	fmt.Fprintf(r.out, "%s %s\n", RenderLabel("Reactions:"), paletteHint(r.palette))
	fmt.Fprintln(r.out, RenderConditional(DimStyle, "Type /help for commands, Ctrl+D to exit."))
	fmt.Fprintln(r.out)
}

func (r *chatREPL) printHelp() {
	commands := []struct{ cmd, desc string }{
		{"/help, /h", "Show this help"},
		{"/history", "Print the conversation"},
		{"/react [N] EMOJI", "React to message N (default: latest reply)"},
		{"/clear, /c", "Clear the transcript on screen"},
		{"/delete", "Delete the conversation history"},
		{"/quit, /q", "Exit chat"},
	}
	fmt.Fprintln(r.out)
	for _, c := range commands {
		fmt.Fprintf(r.out, "  %s %s\n", RenderLabel(c.cmd), c.desc)
	}
	fmt.Fprintf(r.out, "\n%s\n\n", RenderConditional(DimStyle, "Palette: "+paletteHint(r.palette)))
}

// printHistory numbers each message so /react can refer to it.
func (r *chatREPL) printHistory() {
	msgs := r.env.Session.Messages()
	if len(msgs) == 0 {
		fmt.Fprintln(r.out, RenderConditional(DimStyle, "No messages."))
		return
	}
	for i, m := range msgs {
		fmt.Fprintln(r.out, RenderConditional(DimStyle, fmt.Sprintf("#%d", i+1)))
		r.printMessage(i, m)
	}
}

func paletteHint(palette []string) string {
	parts := make([]string, 0, len(palette))
	for i, e := range palette {
		parts = append(parts, fmt.Sprintf("%d %s", i+1, e))
	}
	return strings.Join(parts, "  ")
}
