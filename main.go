// chatfmt - a terminal client for a chat backend, with rich message formatting.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeranaias/chatfmt/internal/cli"
	"github.com/jeranaias/chatfmt/internal/logging"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args := cli.Parse()

	switch cmd {
	case cli.CmdHelp:
		if args.Unknown != "" {
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args.Unknown)
			cli.PrintUsage(os.Stderr)
			return cli.ExitUsageError
		}
		cli.PrintUsage(os.Stdout)
		return cli.ExitSuccess
	case cli.CmdVersion:
		cli.PrintVersion(os.Stdout)
		return cli.ExitSuccess
	}

	cfg, configPath, err := cli.LoadConfig(args)
	if err != nil {
		// Defaults are usable; "config" must still run so the file can be fixed.
		fmt.Fprintf(os.Stderr, "%s %v (using defaults)\n",
			cli.RenderConditional(cli.WarningStyle, "[WARN]"), err)
	}

	logger, err := logging.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s logging disabled: %v\n",
			cli.RenderConditional(cli.WarningStyle, "[WARN]"), err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	env, err := cli.NewEnv(cfg, configPath, logger)
	if err != nil {
		cli.DisplayError(os.Stderr, err, args.JSON)
		return cli.GetExitCode(err)
	}
	defer env.Close()

	logger.Debug("command start", "command", cmd, "offline", cfg.Backend.Offline)

	switch cmd {
	case cli.CmdChat:
		err = cli.HandleChat(ctx, env, args)
	case cli.CmdRender:
		err = cli.HandleRender(env, args)
	case cli.CmdHistory:
		err = cli.HandleHistory(ctx, env, args)
	case cli.CmdClear:
		err = cli.HandleClear(ctx, env, args)
	case cli.CmdExport:
		err = cli.HandleExport(ctx, env, args)
	case cli.CmdConfig:
		err = cli.HandleConfig(env, args)
	default:
		err = cli.RunTUI(ctx, env)
	}

	if err != nil {
		logger.Error("command failed", "command", cmd, "error", err)
		cli.DisplayError(os.Stderr, err, args.JSON)
		return cli.GetExitCode(err)
	}
	return cli.ExitSuccess
}
