// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for devops-assistant.

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
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
	CmdAsk
	CmdConfig
	CmdVersion
	CmdHelp
)

// String returns the command name.
func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdChat:
		return "chat"
	case CmdAsk:
		return "ask"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	case CmdHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	ConfigPath string
	Model      string
	LogLevel   string
	NoMarkdown bool
	JSON       bool

	// Command-specific
	Query      string
	Subcommand string
	Force      bool

	// Raw args (remaining after the command name)
	Raw []string
}

// Overrides returns the flag values that override the loaded config.
func (a Args) Overrides() config.Overrides {
	return config.Overrides{
		Model:      a.Model,
		LogLevel:   a.LogLevel,
		NoMarkdown: a.NoMarkdown,
	}
}

const usageText = `devops-assistant - a terminal chat assistant for DevOps questions

Usage:
  devops-assistant                   Start the full-screen chat (default)
  devops-assistant chat              Line-mode chat in the current terminal
  devops-assistant ask "question"    Ask a single question and print the answer
  devops-assistant config [show|path|init]
                                     Show, locate or create the config file
  devops-assistant version           Show version information
  devops-assistant help              Show this help

Global Flags:
  -c, --config PATH   Config file (default ~/.devops-assistant/config.toml)
  -m, --model NAME    Override the model for this run
  --log-level LEVEL   debug, info, warn or error
  --no-markdown       Print bot replies as plain text
  --json              JSON output (ask, config show, version)

Config Flags:
  --force             config init: overwrite an existing file

Environment:
  OPENROUTER_API_KEY          OpenRouter API key
  DEVOPS_ASSISTANT_API_KEY    API key (takes precedence)
  DEVOPS_ASSISTANT_MODEL      Model override
  DEVOPS_ASSISTANT_BASE_URL   API base URL
  DEVOPS_ASSISTANT_LOG_LEVEL  Log level
  A .env file in the working directory or the config directory is also read.

Chat Keys:
  Enter send, Up/Down and PgUp/PgDn scroll, Esc or Ctrl+C quit

Examples:
  devops-assistant ask "What is a blue/green deployment?"
  devops-assistant ask --json "Explain Kubernetes liveness probes"
  devops-assistant --model openai/gpt-4o-mini chat
  devops-assistant config init

Version: %s
`

// PrintUsage writes the usage/help text to w.
func PrintUsage(w io.Writer) {
	fmt.Fprintf(w, usageText, Version)
}

// PrintVersion writes version information to w.
func PrintVersion(w io.Writer, jsonMode bool) error {
	if jsonMode {
		return writeJSON(w, VersionData{
			Version:   Version,
			GitCommit: GitCommit,
			BuildDate: BuildDate,
			GoVersion: runtime.Version(),
		})
	}
	fmt.Fprintf(w, "devops-assistant version %s\n", Version)
	fmt.Fprintf(w, "  Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "  Build date: %s\n", BuildDate)
	return nil
}

// =============================================================================
// PARSING
// =============================================================================

// Parse parses command-line arguments (without the program name) and
// returns the command and args.
func Parse(argv []string) (Command, Args, error) {
	remaining, parsedArgs, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, parsedArgs, err
	}

	if len(remaining) == 0 {
		return CmdTUI, parsedArgs, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs, nil

	case "chat":
		return CmdChat, parsedArgs, nil

	case "ask":
		parser := NewArgParser(remaining)
		parsedArgs.Query = strings.TrimSpace(JoinPositionalArgs(parser, 0))
		if parsedArgs.Query == "" {
			return CmdAsk, parsedArgs, &UsageError{
				Reason:  "ask requires a question",
				Example: `devops-assistant ask "How do I roll back a Helm release?"`,
			}
		}
		return CmdAsk, parsedArgs, nil

	case "config":
		parser := NewArgParser(remaining)
		parsedArgs.Subcommand = strings.ToLower(parser.Subcommand())
		if parsedArgs.Subcommand == "" {
			parsedArgs.Subcommand = "show"
		}
		parsedArgs.Force = parser.BoolFlag("force") || parser.BoolFlag("f")
		switch parsedArgs.Subcommand {
		case "show", "path", "init":
			return CmdConfig, parsedArgs, nil
		default:
			return CmdConfig, parsedArgs, &UsageError{
				Reason:  fmt.Sprintf("unknown config subcommand %q", parsedArgs.Subcommand),
				Example: "devops-assistant config [show|path|init]",
			}
		}

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs, nil

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs, nil

	default:
		return CmdHelp, parsedArgs, &UsageError{
			Reason:  fmt.Sprintf("unknown command %q", cmd),
			Example: "devops-assistant [chat|ask|config|version|help]",
		}
	}
}

// parseGlobalFlags extracts global flags from anywhere in args and returns
// the remaining args.
func parseGlobalFlags(args []string) ([]string, Args, error) {
	var remaining []string
	var parsedArgs Args

	valueFor := func(i int, name string) (string, error) {
		if i+1 >= len(args) || strings.HasPrefix(args[i+1], "-") {
			return "", &UsageError{Reason: fmt.Sprintf("flag %s requires a value", name)}
		}
		return args[i+1], nil
	}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// Everything after "--" is left for the command.
		if arg == "--" {
			remaining = append(remaining, args[i:]...)
			break
		}

		switch arg {
		case "--json":
			parsedArgs.JSON = true
		case "--no-markdown":
			parsedArgs.NoMarkdown = true
		case "-c", "--config", "-m", "--model", "--log-level":
			value, err := valueFor(i, arg)
			if err != nil {
				return nil, parsedArgs, err
			}
			setGlobalValue(&parsedArgs, arg, value)
			i++
		default:
			name, value, ok := strings.Cut(arg, "=")
			if ok && isValueFlag(name) {
				setGlobalValue(&parsedArgs, name, value)
				continue
			}
			remaining = append(remaining, arg)
		}
	}

	return remaining, parsedArgs, nil
}

func isValueFlag(name string) bool {
	switch name {
	case "-c", "--config", "-m", "--model", "--log-level":
		return true
	}
	return false
}

func setGlobalValue(a *Args, name, value string) {
	switch name {
	case "-c", "--config":
		a.ConfigPath = value
	case "-m", "--model":
		a.Model = value
	case "--log-level":
		a.LogLevel = value
	}
}

// NeedsConfig reports whether cmd needs a loaded configuration. config path
// and config init work even when the existing file is invalid.
func NeedsConfig(cmd Command, args Args) bool {
	switch cmd {
	case CmdVersion, CmdHelp:
		return false
	case CmdConfig:
		return args.Subcommand == "show"
	}
	return true
}

// =============================================================================
// RUNNER
// =============================================================================

// Runner executes the line-mode commands against a loaded configuration.
// The full-screen chat is started by main.
type Runner struct {
	Config     *config.Config
	ConfigPath string
	Completer  conversation.Completer
	Logger     *slog.Logger

	Stdout io.Writer
	Stderr io.Writer

	// Interactive reports whether stdout is a terminal. Markdown styling is
	// applied only when it is.
	Interactive bool

	// newLineReader opens the chat prompt; tests substitute a script.
	newLineReader func() (lineReader, error)
}

// NewRunner creates a Runner on the process's stdout and stderr.
func NewRunner(cfg *config.Config, configPath string, completer conversation.Completer, log *slog.Logger) *Runner {
	return &Runner{
		Config:      cfg,
		ConfigPath:  configPath,
		Completer:   completer,
		Logger:      log,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: IsStdoutTTY(),
	}
}

// Run executes cmd. CmdTUI is not handled here.
func (r *Runner) Run(ctx context.Context, cmd Command, args Args) error {
	switch cmd {
	case CmdAsk:
		return r.RunAsk(ctx, args.Query, args.JSON)
	case CmdChat:
		return r.RunChat(ctx)
	case CmdConfig:
		return r.RunConfig(args.Subcommand, args.JSON, args.Force)
	case CmdVersion:
		return PrintVersion(r.Stdout, args.JSON)
	case CmdHelp:
		PrintUsage(r.Stdout)
		return nil
	default:
		return fmt.Errorf("command %s cannot run in line mode", cmd)
	}
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}
