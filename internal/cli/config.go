// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - "chatfmt config": view and modify configuration.
//
// Subcommands:
//
//	show (default)      Print the effective configuration as TOML
//	get KEY             Print one value, e.g. ui.theme
//	set KEY VALUE       Change a value and save the config file
//	reset               Write the default configuration
//	keys                List all keys
//	path                Print the config file path
//
// Examples:
//
//	chatfmt config set backend.url http://chat.internal:5000
//	chatfmt config set ui.reactions "👍 🎉 🤔"
//	chatfmt config get ui.code_style --json
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/chatfmt/internal/config"
	"github.com/jeranaias/chatfmt/internal/util"
)

// keyColumn fits the longest dotted key.
const keyColumn = 26

// HandleConfig dispatches the config subcommands.
func HandleConfig(env *Env, args Args) error {
	switch args.Subcommand {
	case "", "show":
		return handleConfigShow(env, args)
	case "get":
		return handleConfigGet(env, args)
	case "set":
		return handleConfigSet(env, args)
	case "reset":
		return handleConfigReset(env, args)
	case "keys":
		return handleConfigKeys(env, args)
	case "path":
		return handleConfigPath(env, args)
	default:
		return NewUsageError(fmt.Sprintf("unknown config subcommand: %s", args.Subcommand),
			"chatfmt config get ui.theme")
	}
}

func handleConfigShow(env *Env, args Args) error {
	if args.JSON {
		return NewJSONResponse("config show", env.Config).Print(env.Out)
	}
	if err := toml.NewEncoder(env.Out).Encode(env.Config); err != nil {
		return NewCommandError("config", "show", "cannot encode the configuration", err)
	}
	fmt.Fprintf(env.Err, "\n%s %s\n", RenderConditional(DimStyle, "Config file:"), env.ConfigPath)
	return nil
}

func handleConfigGet(env *Env, args Args) error {
	if args.ConfigKey == "" {
		return NewUsageError("config get needs a key", "chatfmt config get ui.theme")
	}
	value, err := env.Config.Get(args.ConfigKey)
	if err != nil {
		return NewUsageError(err.Error(), "chatfmt config keys")
	}
	if args.JSON {
		return NewJSONResponse("config get", ConfigValueData{Key: args.ConfigKey, Value: value}).Print(env.Out)
	}
	_, err = fmt.Fprintln(env.Out, formatConfigValue(value))
	return err
}

// handleConfigSet edits the file on disk rather than env.Config, so
// environment overrides and command-line flags are not saved.
func handleConfigSet(env *Env, args Args) error {
	if args.ConfigKey == "" || args.ConfigVal == "" {
		return NewUsageError("config set needs a key and a value", "chatfmt config set ui.theme light")
	}
	if env.ConfigPath == "" {
		return &ConfigError{Err: errors.New("no config file path")}
	}

	cfg, err := config.LoadFile(env.ConfigPath)
	if err != nil {
		return &ConfigError{Path: env.ConfigPath, Err: err}
	}
	if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
		return NewUsageError(err.Error(), "chatfmt config keys")
	}
	if err := cfg.Validate(); err != nil {
		return &ConfigError{Path: env.ConfigPath, Err: err}
	}
	if err := config.Save(cfg, env.ConfigPath); err != nil {
		return &ConfigError{Path: env.ConfigPath, Err: err}
	}
	env.Logger.Info("config updated", "key", args.ConfigKey, "path", env.ConfigPath)

	value, _ := cfg.Get(args.ConfigKey)
	if args.JSON {
		return NewJSONResponse("config set", ConfigValueData{Key: args.ConfigKey, Value: value}).Print(env.Out)
	}
	fmt.Fprintf(env.Out, "%s %s = %s\n", RenderConditional(SuccessStyle, "[OK]"),
		args.ConfigKey, formatConfigValue(value))
	return nil
}

func handleConfigReset(env *Env, args Args) error {
	if env.ConfigPath == "" {
		return &ConfigError{Err: errors.New("no config file path")}
	}
	if err := config.Save(config.Default(), env.ConfigPath); err != nil {
		return &ConfigError{Path: env.ConfigPath, Err: err}
	}
	if args.JSON {
		return NewJSONResponse("config reset", map[string]string{"path": env.ConfigPath}).Print(env.Out)
	}
	fmt.Fprintf(env.Out, "%s Configuration reset to defaults\n", RenderConditional(SuccessStyle, "[OK]"))
	return nil
}

func handleConfigKeys(env *Env, args Args) error {
	keys := config.GetAllKeys()
	if args.JSON {
		return NewJSONResponse("config keys", keys).Print(env.Out)
	}
	for _, key := range keys {
		value, _ := env.Config.Get(key)
		fmt.Fprintf(env.Out, "%s %s\n", RenderConditional(DimStyle, util.PadRight(key, keyColumn)), formatConfigValue(value))
	}
	return nil
}

func handleConfigPath(env *Env, args Args) error {
	_, err := os.Stat(env.ConfigPath)
	exists := err == nil
	if args.JSON {
		return NewJSONResponse("config path", map[string]interface{}{
			"path":   env.ConfigPath,
			"exists": exists,
		}).Print(env.Out)
	}
	fmt.Fprintln(env.Out, env.ConfigPath)
	if !exists {
		fmt.Fprintln(env.Err, RenderConditional(DimStyle, "(file does not exist yet; config set creates it)"))
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func formatConfigValue(v interface{}) string {
	if list, ok := v.([]string); ok {
		return strings.Join(list, " ")
	}
	return fmt.Sprint(v)
}
