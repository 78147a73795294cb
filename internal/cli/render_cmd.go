// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// render_cmd.go - "chatfmt render": format one message read from a file.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jeranaias/chatfmt/internal/model"
)

// maxRenderInput bounds what render reads from a file or stdin.
const maxRenderInput = 4 << 20

// HandleRender formats the message in args.File ("-" or empty reads stdin)
// and writes it to env.Out.
func HandleRender(env *Env, args Args) error {
	role, err := parseRoleFlag(args.Role)
	if err != nil {
		return err
	}

	text, err := readInput(env.In, args.File)
	if err != nil {
		return NewCommandError("render", "read", "cannot read input", err)
	}

	r, err := env.Renderer(args.Format, args)
	if err != nil {
		return NewUsageError(err.Error(), "chatfmt render --format html reply.txt")
	}

	msg := model.NewMessage(role, text)
	out := r.Message(msg, env.Formatter().Format(msg), nil)
	_, err = fmt.Fprintln(env.Out, out)
	return err
}

func parseRoleFlag(s string) (model.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "assistant", "ai":
		return model.RoleAssistant, nil
	case "user", "human":
		return model.RoleUser, nil
	default:
		return "", NewUsageError(fmt.Sprintf("unknown role %q (valid: user, assistant)", s),
			"chatfmt render --role user")
	}
}

func readInput(stdin io.Reader, path string) (string, error) {
	var r io.Reader = stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(io.LimitReader(r, maxRenderInput))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
