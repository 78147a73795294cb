// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// ASCII frame sets for the pending indicator. Thinking spins, image
// generation fills a bar, which tells the two waits apart at a glance.
var (
	ThinkingSpinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	ImageSpinner = spinner.Spinner{
		Frames: []string{"[    ]", "[=   ]", "[==  ]", "[=== ]", "[====]", "[ ===]", "[  ==]", "[   =]"},
		FPS:    time.Second / 6,
	}
)
