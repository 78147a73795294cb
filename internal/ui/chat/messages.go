// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "github.com/jeranaias/chatfmt/internal/config"

// ConfigChangedMsg carries a reloaded configuration, or the error that
// prevented the reload. Send it from a config.Watch callback.
type ConfigChangedMsg struct {
	Config *config.Config
	Err    error
}

// CopiedMsg reports the result of copying a code block to the clipboard.
type CopiedMsg struct {
	Language string
	Lines    int
	Err      error
}
