// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Shared command environment: config, backend, store and session.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/chatfmt/internal/backend"
	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/format"
	"github.com/jeranaias/chatfmt/internal/render"
	"github.com/jeranaias/chatfmt/internal/session"
	"github.com/jeranaias/chatfmt/internal/storage"
	"github.com/jeranaias/chatfmt/internal/ui/styles"
)

// =============================================================================
// CONFIG LOADING
// =============================================================================

// LoadConfig loads the config named by --config, or the default config
// file, and applies the global flags on top. The returned path is where
// "config set" saves. A config that fails to load is reported together
// with the defaults, so commands can still run.
func LoadConfig(args Args) (*config.Config, string, error) {
	path := args.ConfigPath
	var (
		cfg     *config.Config
		loadErr error
	)
	if path != "" {
		cfg, loadErr = config.LoadFromPath(path)
		if loadErr != nil {
			cfg = config.Default()
			cfg.ApplyEnvOverrides()
		}
	} else {
		cfg, loadErr = config.Load()
		if p, err := config.ConfigPathTOML(); err == nil {
			path = p
		}
	}

	if args.Offline {
		cfg.Backend.Offline = true
	}
	if args.Session != "" {
		cfg.Storage.Session = args.Session
	}
	if args.NoColor {
		DisableColors()
	}

	if loadErr != nil {
		return cfg, path, &ConfigError{Path: path, Err: loadErr}
	}
	return cfg, path, nil
}

// DisableColors turns off styling for this process.
func DisableColors() {
	ForceColorsEnabled(false)
	lipgloss.SetColorProfile(termenv.Ascii)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

// Env carries what every command needs. Store is nil when transcript
// storage is disabled.
type Env struct {
	Config     *config.Config
	ConfigPath string
	Logger     *slog.Logger

	Backend *backend.Client
	Store   *storage.Store
	Session *session.Session

	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// NewEnv builds the backend client, opens the transcript store and creates
// the session. Offline mode needs the store; otherwise a store that cannot
// be opened only costs persistence.
func NewEnv(cfg *config.Config, configPath string, logger *slog.Logger) (*Env, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client := backend.NewClient(cfg.Backend.URL).
		WithTimeout(time.Duration(cfg.Backend.TimeoutSecs) * time.Second).
		WithMaxRetries(cfg.Backend.MaxRetries).
		WithRateLimit(cfg.Backend.RequestsPerSec).
		WithLogger(logger)

	env := &Env{
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
		Backend:    client,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
	}

	opts := session.Options{Name: cfg.Storage.Session, Logger: logger}
	if cfg.Storage.Enabled || cfg.Backend.Offline {
		store, err := storage.Open(cfg.StoragePath())
		switch {
		case err == nil:
			env.Store = store
			opts.Store = store
		case cfg.Backend.Offline:
			return nil, fmt.Errorf("open transcript store: %w", err)
		default:
			logger.Warn("transcript store unavailable, continuing without it",
				"path", cfg.StoragePath(), "error", err)
		}
	}

	env.Session = session.New(client, opts)
	return env, nil
}

// Close releases the transcript store.
func (e *Env) Close() error {
	if e.Store == nil {
		return nil
	}
	return e.Store.Close()
}

// Offline reports whether the backend is skipped.
func (e *Env) Offline() bool {
	return e.Config.Backend.Offline
}

// Timeout is the per-request limit from the config.
func (e *Env) Timeout() time.Duration {
	return time.Duration(e.Config.Backend.TimeoutSecs) * time.Second
}

// LoadTranscript fills the session from the backend, or from the store when
// offline. A failed backend load is returned as is; the session keeps the
// apology it appended for the TUI.
func (e *Env) LoadTranscript(ctx context.Context) error {
	if e.Offline() {
		return e.Session.LoadOffline(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, e.Timeout())
	defer cancel()
	return e.Session.Load(ctx)
}

// =============================================================================
// RENDERING
// =============================================================================

// Theme returns the UI theme from the config.
func (e *Env) Theme() *styles.Theme {
	return styles.NewTheme(e.Config.UI.Theme, e.Config.UI.CodeStyle)
}

// Width is the wrap width for command output: --width, then ui.word_wrap,
// then the terminal width.
func (e *Env) Width(args Args) int {
	switch {
	case args.Width > 0:
		return args.Width
	case e.Config.UI.WordWrap > 0:
		return e.Config.UI.WordWrap
	default:
		return GetTerminalWidth()
	}
}

// Renderer returns the renderer for a format name. An empty name selects
// terminal output on a color terminal and plain text otherwise.
func (e *Env) Renderer(name string, args Args) (render.Renderer, error) {
	if name == "" {
		name = render.FormatPlain
		if ColorsEnabled() {
			name = render.FormatTerminal
		}
	}
	width := e.Width(args)
	term := render.NewTerminal(e.Theme(), width)
	term.ShowTimestamps = e.Config.UI.ShowTimestamps
	return render.ByName(name, term, render.Options{
		Width:          width,
		ShowTimestamps: e.Config.UI.ShowTimestamps,
	})
}

// Formatter returns a fresh segment cache sized for one transcript.
func (e *Env) Formatter() *format.Formatter {
	return format.NewFormatter(0)
}
