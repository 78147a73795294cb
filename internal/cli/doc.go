// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the chatfmt commands.
//
// ParseArgs turns argv into a Command and its Args. main then loads the
// config with LoadConfig, builds an Env (backend client, transcript store,
// session) and calls the handler:
//
//	cmd, args := cli.Parse()
//	cfg, path, err := cli.LoadConfig(args)
//	env, err := cli.NewEnv(cfg, path, logger)
//	switch cmd {
//	case cli.CmdRender:
//	    err = cli.HandleRender(env, args)
//	// ...
//	}
//	os.Exit(cli.GetExitCode(err))
//
// # Commands
//
//   - (none): full-screen chat view (RunTUI)
//   - chat: line-based REPL with slash commands (HandleChat)
//   - render: format one message read from a file or stdin (HandleRender)
//   - history, clear: print or delete the conversation
//   - export: write the conversation as Markdown, HTML or JSON
//   - config: show, get, set, reset, keys, path
//
// Handlers write to Env.Out and Env.Err and return errors instead of
// printing them. DisplayError and GetExitCode turn an error into output and
// an exit code. Commands that produce data accept --json.
package cli
