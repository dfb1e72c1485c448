// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and create the configuration file
//
// Subcommands:
//   show (default)      Display the effective configuration (key masked)
//   path                Show the configuration file path
//   init                Write a default configuration file
//
// Examples:
//   devops-assistant config
//   devops-assistant config show --json
//   devops-assistant config init --force
//
// Flags:
//   --json              Output in JSON format (show)
//   --force, -f         Overwrite an existing file (init)

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jeranaias/devops-assistant/internal/cloud"
	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/util"
)

// labelWidth aligns the values printed by config show.
const labelWidth = 16

// RunConfig handles the config subcommands.
func (r *Runner) RunConfig(sub string, jsonMode, force bool) error {
	switch sub {
	case "", "show":
		return r.showConfig(jsonMode)
	case "path":
		fmt.Fprintln(r.Stdout, r.ConfigPath)
		return nil
	case "init":
		return r.initConfig(force)
	default:
		return &UsageError{
			Reason:  fmt.Sprintf("unknown config subcommand %q", sub),
			Example: "devops-assistant config [show|path|init]",
		}
	}
}

func (r *Runner) showConfig(jsonMode bool) error {
	cfg := r.Config
	if cfg == nil {
		return errors.New("no configuration loaded")
	}

	data := ConfigData{
		Path:         r.ConfigPath,
		APIKeySet:    cfg.Cloud.APIKey != "",
		BaseURL:      cfg.Cloud.BaseURL,
		Model:        cfg.Cloud.Model,
		SystemPrompt: cfg.Cloud.SystemPrompt,
		SiteURL:      cfg.Cloud.SiteURL,
		SiteName:     cfg.Cloud.SiteName,
		Markdown:     cfg.UI.Markdown,
		Placeholder:  cfg.UI.Placeholder,
		Theme:        cfg.UI.Theme,
		LogLevel:     cfg.Log.Level,
		LogFormat:    cfg.Log.Format,
		LogPath:      cfg.Log.Path,
	}
	if data.APIKeySet {
		data.APIKeyMasked = cloud.MaskAPIKey(cfg.Cloud.APIKey)
		if err := cloud.ValidateAPIKey(cfg.Cloud.APIKey); err != nil {
			data.APIKeyWarning = err.Error()
		}
	}

	if jsonMode {
		return writeJSON(r.Stdout, data)
	}

	key := "(not set)"
	if data.APIKeySet {
		key = data.APIKeyMasked
	}
	logPath := data.LogPath
	if logPath == "" {
		logPath = "(default)"
	}

	fmt.Fprintln(r.Stdout, RenderConditional(TitleStyle, "Configuration"))
	fmt.Fprintf(r.Stdout, "  %s\n\n", RenderConditional(DimStyle, data.Path))

	rows := []struct{ label, value string }{
		{"API key", key},
		{"Base URL", data.BaseURL},
		{"Model", data.Model},
		{"System prompt", util.TruncateWidth(data.SystemPrompt, GetTerminalWidth()-labelWidth-4)},
		{"Site URL", data.SiteURL},
		{"Site name", data.SiteName},
		{"Markdown", fmt.Sprintf("%t", data.Markdown)},
		{"Placeholder", data.Placeholder},
		{"Theme", data.Theme},
		{"Log level", data.LogLevel},
		{"Log format", data.LogFormat},
		{"Log file", logPath},
	}
	for _, row := range rows {
		fmt.Fprintf(r.Stdout, "  %s%s\n",
			RenderConditional(LabelStyle, util.PadRight(row.label, labelWidth)),
			RenderConditional(ValueStyle, row.value))
	}
	if data.APIKeyWarning != "" {
		fmt.Fprintf(r.Stdout, "\n  %s %s\n", RenderConditional(WarningStyle, "Warning:"), data.APIKeyWarning)
	}
	return nil
}

// initConfig writes the default configuration. The API key is left empty;
// it is expected from the environment or an edit of the file.
func (r *Runner) initConfig(force bool) error {
	if r.ConfigPath == "" {
		return errors.New("no config path")
	}

	if _, err := os.Stat(r.ConfigPath); err == nil && !force {
		return &UsageError{
			Reason:  fmt.Sprintf("%s already exists", r.ConfigPath),
			Example: "devops-assistant config init --force",
		}
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if err := config.SaveTOML(config.Default(), r.ConfigPath); err != nil {
		return err
	}
	fmt.Fprintf(r.Stdout, "%s %s\n", RenderConditional(SuccessStyle, "Wrote"), r.ConfigPath)
	return nil
}
