// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - The default command: the full-screen chat view.
package cli

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/ui/chat"
)

// RunTUI starts the Bubble Tea program and blocks until it exits. Changes
// to the config file are sent to the running view.
func RunTUI(ctx context.Context, env *Env) error {
	if err := RequireTerminal("run the chat view", `use "chatfmt chat" or "chatfmt history"`); err != nil {
		return err
	}

	if env.Offline() {
		if err := env.Session.LoadOffline(ctx); err != nil {
			return NewCommandError("tui", "load", "cannot read the stored transcript", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := chat.New(chat.Options{
		Session:        env.Session,
		Theme:          env.Theme(),
		Palette:        env.Config.UI.Reactions,
		Timeout:        env.Timeout(),
		ShowTimestamps: env.Config.UI.ShowTimestamps,
		Offline:        env.Offline(),
		Context:        ctx,
		Logger:         env.Logger,
	})

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if env.ConfigPath != "" {
		if _, err := os.Stat(env.ConfigPath); err == nil {
			w, err := config.Watch(ctx, env.ConfigPath, config.DefaultWatchDebounce, func(cfg *config.Config, err error) {
				p.Send(chat.ConfigChangedMsg{Config: cfg, Err: err})
			})
			if err != nil {
				env.Logger.Warn("config watch unavailable", "path", env.ConfigPath, "error", err)
			} else {
				defer w.Close()
			}
		}
	}

	env.Logger.Info("tui started", "session", env.Session.Name(), "offline", env.Offline())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run chat view: %w", err)
	}
	return nil
}
