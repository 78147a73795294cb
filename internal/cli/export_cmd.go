// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// export_cmd.go - "chatfmt export": write the conversation to a file.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/chatfmt/internal/export"
)

// HandleExport loads the conversation and writes it as Markdown, HTML or
// JSON. With --preview the Markdown export is rendered to the terminal
// instead of written.
func HandleExport(ctx context.Context, env *Env, args Args) error {
	formatName := strings.ToLower(args.Format)
	if formatName == "" {
		formatName = "md"
	}

	opts := export.DefaultOptions()
	opts.OpenAfterExport = args.Open
	opts.IncludeTimestamps = env.Config.UI.ShowTimestamps
	opts.Theme = exportTheme(env.Config.UI.Theme)
	opts.Formatter = env.Formatter()
	if args.Output != "" {
		opts.OutputDir = args.Output
	}
	if args.Preview {
		formatName = "md"
	}

	exporter, err := export.ForFormat(formatName, opts)
	if err != nil {
		return NewUsageError(err.Error(), "chatfmt export --format html")
	}

	if err := env.LoadTranscript(ctx); err != nil {
		return NewCommandError("export", "load", "cannot load the conversation", err)
	}
	conv := env.Session.Conversation()

	if args.Preview {
		return previewExport(env, args, exporter)
	}

	path, err := export.ExportToFile(conv, exporter, opts)
	if err != nil && path == "" {
		return NewCommandError("export", "write", "cannot write the export", err)
	}
	if err != nil {
		// The file exists; only opening it failed.
		env.Logger.Warn("export open failed", "path", path, "error", err)
		fmt.Fprintln(env.Err, RenderConditional(WarningStyle, err.Error()))
	}

	if args.JSON {
		return NewJSONResponse("export", ExportData{Path: path, Format: formatName}).Print(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s\n", RenderConditional(SuccessStyle, "Exported to"), path)
	return nil
}

func previewExport(env *Env, args Args, exporter export.Exporter) error {
	content, err := exporter.Export(env.Session.Conversation())
	if err != nil {
		return NewCommandError("export", "preview", "cannot export the conversation", err)
	}

	style := exportTheme(env.Config.UI.Theme)
	if !ColorsEnabled() {
		style = "notty"
	}
	out, err := export.Preview(content, style, env.Width(args))
	if err != nil {
		return NewCommandError("export", "preview", "cannot render the preview", err)
	}
	_, err = fmt.Fprint(env.Out, out)
	return err
}

// exportTheme maps ui.theme to a concrete light or dark theme.
func exportTheme(theme string) string {
	if strings.EqualFold(theme, "light") {
		return "light"
	}
	return "dark"
}
