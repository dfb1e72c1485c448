// devops-assistant - a terminal chat assistant for DevOps questions.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devops-assistant/internal/cli"
	"github.com/jeranaias/devops-assistant/internal/cloud"
	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/logging"
	"github.com/jeranaias/devops-assistant/internal/ui/chat"
	"github.com/jeranaias/devops-assistant/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd, args, err := cli.Parse(os.Args[1:])
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	configPath := args.ConfigPath
	if configPath == "" {
		if configPath, err = config.ConfigPath(); err != nil {
			cli.DisplayError(os.Stderr, err)
			return cli.ExitConfigError
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if !cli.NeedsConfig(cmd, args) {
		runner := cli.NewRunner(nil, configPath, nil, nil)
		return exitCode(runner.Run(ctx, cmd, args))
	}

	cfg, err := loadConfig(configPath, args.Overrides())
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.GetExitCode(err)
	}

	log, closeLog, err := newLogger(cfg, cmd)
	if err != nil {
		cli.DisplayError(os.Stderr, err)
		return cli.ExitConfigError
	}
	defer closeLog()
	logConfigWarnings(log, cfg)

	log.Info("starting", "command", cmd.String(), "version", Version, "model", cfg.Cloud.Model,
		"key_fingerprint", cloud.KeyFingerprint(cfg.Cloud.APIKey))

	if cmd == cli.CmdTUI {
		return exitCode(runTUI(ctx, cfg, configPath, args, log))
	}

	runner := cli.NewRunner(cfg, configPath, newCompleter(cfg, log), log)
	return exitCode(runner.Run(ctx, cmd, args))
}

// loadConfig loads the effective configuration and applies flag overrides.
func loadConfig(path string, overrides config.Overrides) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyOverrides(overrides)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// newLogger builds the operator log. The full-screen chat owns the terminal,
// so it always logs to a file; the line-mode commands log warnings to
// stderr unless a file is configured.
func newLogger(cfg *config.Config, cmd cli.Command) (*slog.Logger, func() error, error) {
	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Path:   cfg.Log.Path,
	}

	switch {
	case opts.Path != "":
	case cmd == cli.CmdTUI:
		path, err := config.DefaultLogPath()
		if err != nil {
			return nil, nil, err
		}
		opts.Path = path
	default:
		opts.Writer = os.Stderr
		if logging.ParseLevel(opts.Level) < slog.LevelWarn {
			opts.Level = "warn"
		}
	}
	return logging.New(opts)
}

func logConfigWarnings(log *slog.Logger, cfg *config.Config) {
	for _, w := range cfg.Warnings() {
		log.Warn("config", "warning", w)
	}
}

// newCompleter builds the completion client for cfg.
func newCompleter(cfg *config.Config, log *slog.Logger) *cloud.Client {
	opts := cfg.CloudOptions()
	opts.Logger = log
	opts.UserAgent = "devops-assistant/" + Version
	return cloud.NewClient(opts)
}

// runTUI starts the full-screen chat and watches the config file for
// changes while it runs.
func runTUI(ctx context.Context, cfg *config.Config, configPath string, args cli.Args, log *slog.Logger) error {
	if err := cli.RequiresTTY("start the full-screen chat"); err != nil {
		return err
	}
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	store := conversation.NewStore()
	ctrl := conversation.NewController(store, newCompleter(cfg, log), log)

	m := chat.New(chat.Options{
		Controller: ctrl,
		Config:     cfg,
		Theme:      styles.NewTheme(cfg.UI.Theme),
		Logger:     log,
		Context:    ctx,
		NewCompleter: func(c *config.Config) conversation.Completer {
			return newCompleter(c, log)
		},
	})

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	watcher, err := config.NewWatcher(configPath,
		func() (*config.Config, error) {
			c, err := loadConfig(configPath, args.Overrides())
			if err == nil {
				logConfigWarnings(log, c)
			}
			return c, err
		},
		func(c *config.Config, err error) { p.Send(chat.ConfigReloadedMsg{Config: c, Err: err}) },
		log,
	)
	if err != nil {
		log.Warn("config watch unavailable", "error", err)
	} else if err := watcher.Start(); err != nil {
		log.Warn("config watch unavailable", "error", err)
	} else {
		defer watcher.Close()
	}

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("chat view: %w", err)
	}
	if fm, ok := final.(chat.Model); ok {
		log.Info("session ended", "messages", fm.Store().Len())
	}
	return nil
}

// exitCode prints err, if any, and maps it to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return cli.ExitSuccess
	}
	cli.DisplayError(os.Stderr, err)
	return cli.GetExitCode(err)
}
