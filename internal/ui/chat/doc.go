// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the interactive chat view of the chatfmt TUI.

The Model is a Bubble Tea model over a session.Session. It renders the
transcript through the terminal renderer into a viewport, with an input
line, a spinner while a request is pending and a help line.

# Keys

  - Enter sends the input line
  - Up and Down select an assistant reply; Esc returns to the latest
  - Alt+1 to Alt+N react to the selected (or latest) reply with the Nth
    palette emoji
  - Ctrl+Y copies the newest code block to the clipboard
  - Ctrl+L clears the local transcript, Ctrl+X deletes the backend history
  - Ctrl+C quits

Send ConfigChangedMsg from a config.Watch callback to re-theme a running
program.
*/
package chat
