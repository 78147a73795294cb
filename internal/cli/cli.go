// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and usage text for chatfmt.
package cli

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdChat
	CmdRender
	CmdHistory
	CmdClear
	CmdExport
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string // --config FILE replaces ~/.chatfmt/config.toml
	Offline    bool   // read the local transcript store, never the backend
	JSON       bool
	NoColor    bool
	Session    string // store session name
	Width      int    // wrap width override

	// Command-specific
	Subcommand string
	File       string
	Format     string
	Output     string
	Role       string
	Preview    bool
	Open       bool
	List       bool
	ConfigKey  string
	ConfigVal  string

	// Unknown is set when the command name was not recognised.
	Unknown string

	Raw []string
}

// boolFlagNames never consume the following argument.
var boolFlagNames = []string{
	"offline", "json", "no-color", "preview", "open", "list", "l",
	"help", "h", "version", "v",
}

const usageText = `chatfmt - terminal client for a chat backend, with rich message formatting

Assistant replies are formatted for display: fenced code blocks are
highlighted, **bold** and *italic* are styled, bullet and numbered lists are
kept, and image replies are shown as cards. Replies can be tagged with emoji
reactions, which are counted per message.

Usage:
  chatfmt                       Start the TUI (default)
  chatfmt chat                  Line-based chat (REPL)
  chatfmt render [FILE|-]       Format a reply read from FILE or stdin
  chatfmt history               Print the conversation
  chatfmt clear                 Delete the conversation history
  chatfmt export                Write the conversation to a file
  chatfmt config [SUBCOMMAND]   Show or change configuration
  chatfmt version               Print version information

Render Options:
  --format FORMAT               terminal, plain, md, html or json
                                (default: terminal on a TTY, plain otherwise)
  --role ROLE                   user or assistant (default: assistant)

History Options:
  --format FORMAT               Output format, as for render
  --list                        List sessions in the transcript store

Export Options:
  --format md|html|json         Export format (default: md)
  --output DIR, -o DIR          Output directory (default: .)
  --open                        Open the file after export
  --preview                     Print a rendered Markdown preview instead

Config Commands:
  chatfmt config show           Print the effective configuration
  chatfmt config get KEY        Print one value (e.g. ui.theme)
  chatfmt config set KEY VALUE  Change a value and save the config file
  chatfmt config keys           List all keys
  chatfmt config path           Print the config file path

Global Options:
  --config FILE                 Use FILE instead of ~/.chatfmt/config.toml
  --offline                     Use the local transcript store only
  --session NAME                Transcript store session (default: default)
  --width N                     Wrap width for rendered output
  --json                        JSON output where supported
  --no-color                    Disable colors
  -h, --help                    Show this help
  -v, --version                 Show version

TUI Keys:
  Enter send, Up/Down select a reply, Alt+1..6 react, Ctrl+Y copy code,
  Ctrl+L clear screen, Ctrl+X delete history, F1 help, Ctrl+C quit

Environment:
  CHATFMT_BACKEND_URL, CHATFMT_THEME, CHATFMT_LOG_LEVEL, CHATFMT_OFFLINE,
  NO_COLOR, FORCE_COLOR
`

// PrintUsage prints the usage text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion prints version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "chatfmt %s\n", Version)
	fmt.Fprintf(w, "  commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	fmt.Fprintf(w, "  go:     %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Parse parses os.Args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs parses argv (without the program name).
func ParseArgs(argv []string) (Command, Args) {
	p := NewArgParser(argv, boolFlagNames...)

	args := Args{
		ConfigPath: p.Flag("config"),
		Offline:    p.BoolFlag("offline"),
		JSON:       p.BoolFlag("json"),
		NoColor:    p.BoolFlag("no-color"),
		Session:    p.Flag("session"),
		Width:      p.FlagIntOrDefault("width", 0),
		Format:     p.Flag("format", "f"),
		Output:     p.Flag("output", "o"),
		Role:       p.Flag("role"),
		Preview:    p.BoolFlag("preview"),
		Open:       p.BoolFlag("open"),
		List:       p.BoolFlag("list", "l"),
		Raw:        argv,
	}

	if p.BoolFlag("version", "v") {
		return CmdVersion, args
	}
	if p.BoolFlag("help", "h") {
		return CmdHelp, args
	}

	rest := p.PositionalFrom(1)
	switch name := p.Subcommand(); strings.ToLower(name) {
	case "", "tui":
		return CmdTUI, args
	case "chat", "c":
		return CmdChat, args
	case "render", "r":
		if len(rest) > 0 {
			args.File = rest[0]
		}
		return CmdRender, args
	case "history", "h":
		return CmdHistory, args
	case "clear":
		return CmdClear, args
	case "export", "e":
		return CmdExport, args
	case "config":
		parseConfigArgs(&args, rest)
		return CmdConfig, args
	case "version":
		return CmdVersion, args
	case "help":
		return CmdHelp, args
	default:
		args.Unknown = name
		return CmdHelp, args
	}
}

func parseConfigArgs(args *Args, rest []string) {
	args.Subcommand = "show"
	if len(rest) > 0 {
		args.Subcommand = strings.ToLower(rest[0])
	}
	if len(rest) > 1 {
		args.ConfigKey = rest[1]
	}
	if len(rest) > 2 {
		// Values may contain spaces, e.g. a reaction list.
		args.ConfigVal = strings.Join(rest[2:], " ")
	}
}
