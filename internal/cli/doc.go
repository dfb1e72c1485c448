// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and the line-mode commands for
// devops-assistant.
//
// The full-screen chat lives in internal/ui/chat and is started by main;
// this package covers everything that prints to a plain terminal or a pipe.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global and command-specific flags
//   - Runner: Executes ask, chat and config against a loaded configuration
//   - ArgParser: Flag and positional splitting for command arguments
//
// # Usage
//
//	cmd, args, err := cli.Parse(os.Args[1:])
//	if err != nil {
//	    cli.DisplayError(os.Stderr, err)
//	    os.Exit(cli.GetExitCode(err))
//	}
//	runner := cli.NewRunner(cfg, path, client, logger)
//	err = runner.Run(ctx, cmd, args)
//
// # Commands Overview
//
//   - chat: line-mode REPL on a conversation store
//   - ask: one question, one answer; --json for scripts
//   - config: show, path, init
//   - version, help
package cli
