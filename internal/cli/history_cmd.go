// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - "chatfmt history" and "chatfmt clear".
package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/chatfmt/internal/render"
	"github.com/jeranaias/chatfmt/internal/session"
	"github.com/jeranaias/chatfmt/internal/util"
)

// =============================================================================
// HISTORY
// =============================================================================

// HandleHistory prints the conversation, or with --list the sessions in the
// transcript store.
func HandleHistory(ctx context.Context, env *Env, args Args) error {
	if args.List {
		return listSessions(ctx, env, args)
	}

	r, err := env.Renderer(args.Format, args)
	if err != nil {
		return NewUsageError(err.Error(), "chatfmt history --format md")
	}
	if err := env.LoadTranscript(ctx); err != nil {
		return NewCommandError("history", "load", "cannot load the conversation", err)
	}

	conv := env.Session.Conversation()
	if conv.IsEmpty() {
		fmt.Fprintln(env.Err, RenderConditional(DimStyle, "No messages."))
		return nil
	}
	_, err = fmt.Fprintln(env.Out, render.Transcript(r, env.Formatter(), conv))
	return err
}

func listSessions(ctx context.Context, env *Env, args Args) error {
	if env.Store == nil {
		return NewCommandError("history", "list", "transcript storage is disabled", session.ErrNoStore)
	}
	metas, err := env.Store.Sessions(ctx)
	if err != nil {
		return NewCommandError("history", "list", "cannot read the transcript store", err)
	}

	if args.JSON {
		rows := make([]SessionData, 0, len(metas))
		for _, m := range metas {
			rows = append(rows, SessionData{
				Name:      m.Name,
				Messages:  m.MessageCount,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
				Preview:   m.Preview,
			})
		}
		return NewJSONResponse("history", rows).Print(env.Out)
	}

	if len(metas) == 0 {
		fmt.Fprintln(env.Err, RenderConditional(DimStyle, "No stored sessions."))
		return nil
	}
	fmt.Fprintln(env.Out, RenderConditional(TitleStyle, "Sessions"))
	for _, m := range metas {
		fmt.Fprintf(env.Out, "%s %4d  %s  %s\n",
			RenderConditional(LabelStyle, util.PadRight(util.TruncateWidth(m.Name, 20), 20)),
			m.MessageCount,
			m.UpdatedAt.Format("2006-01-02 15:04"),
			RenderConditional(DimStyle, m.Preview),
		)
	}
	return nil
}

// =============================================================================
// CLEAR
// =============================================================================

// HandleClear deletes the conversation history. Offline only the stored
// transcript is cleared.
func HandleClear(ctx context.Context, env *Env, args Args) error {
	remote := !env.Offline()
	if remote {
		ctx, cancel := context.WithTimeout(ctx, env.Timeout())
		defer cancel()
		if err := env.Session.ClearHistory(ctx); err != nil {
			return NewCommandError("clear", "delete", "the backend refused to delete the history", err)
		}
	} else {
		env.Session.ClearLocal(ctx)
	}

	if args.JSON {
		return NewJSONResponse("clear", ClearData{Session: env.Session.Name(), Remote: remote}).Print(env.Out)
	}
	fmt.Fprintln(env.Out, RenderConditional(SuccessStyle, "History deleted."))
	return nil
}
