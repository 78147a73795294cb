// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for chatfmt.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, validation and live reload.
//
// # Key Types
//
//   - Config: main configuration structure
//   - BackendConfig: chat backend URL, timeout, retries and rate limit
//   - UIConfig: theme, code style, wrap width and reaction palette
//   - LogConfig: log level, format, file and rotation
//   - StorageConfig: local transcript store
//   - Watcher: fsnotify-based reloader
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CHATFMT_*)
//   - ~/.chatfmt/config.toml
//   - ~/.chatfmt/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
//	}
//	client := backend.NewClient(cfg.Backend.URL)
//
// Watch for edits while the TUI runs:
//
//	w, err := config.Watch(ctx, path, 0, func(c *config.Config, err error) { ... })
//	defer w.Close()
package config
