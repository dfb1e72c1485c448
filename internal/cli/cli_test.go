// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/peterh/liner"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/devops-assistant/internal/cloud"
	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "boolean flag that never takes a value",
			args:    []string{"--force", "init"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be true")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"show", "--format=json"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("format") != "json" {
					t.Errorf("Flag(format) = %q, want %q", p.Flag("format"), "json")
				}
			},
		},
		{
			name:    "explicit boolean value",
			args:    []string{"init", "--force=false"},
			wantSub: "init",
			validate: func(t *testing.T, p *ArgParser) {
				if p.BoolFlag("force") {
					t.Error("BoolFlag(force) should be false")
				}
				if !p.HasFlag("force") {
					t.Error("HasFlag(force) should be true")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"how", "do", "I", "roll", "back"},
			wantSub: "how",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 5 {
					t.Errorf("PositionalCount() = %d, want 5", p.PositionalCount())
				}
				if got := JoinPositionalArgs(p, 0); got != "how do I roll back" {
					t.Errorf("JoinPositionalArgs = %q", got)
				}
			},
		},
		{
			name:    "double dash ends flags",
			args:    []string{"what", "does", "--", "-v", "do"},
			wantSub: "what",
			validate: func(t *testing.T, p *ArgParser) {
				if got := JoinPositionalArgs(p, 0); got != "what does -v do" {
					t.Errorf("JoinPositionalArgs = %q", got)
				}
			},
		},
		{
			name:    "no args",
			args:    nil,
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Positional(0) != "" || len(p.PositionalFrom(1)) != 0 {
					t.Error("expected no positionals")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewArgParser(tt.args)
			if parser.Subcommand() != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", parser.Subcommand(), tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, parser)
			}
		})
	}
}

// =============================================================================
// PARSE TESTS (cli.go)
// =============================================================================

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		argv    []string
		wantCmd Command
		check   func(*testing.T, Args)
		wantErr bool
	}{
		{
			name:    "no args starts TUI",
			argv:    nil,
			wantCmd: CmdTUI,
		},
		{
			name:    "global flags before command",
			argv:    []string{"--model", "openai/gpt-4o-mini", "-c", "/tmp/c.toml", "chat"},
			wantCmd: CmdChat,
			check: func(t *testing.T, a Args) {
				if a.Model != "openai/gpt-4o-mini" || a.ConfigPath != "/tmp/c.toml" {
					t.Errorf("globals not parsed: %+v", a)
				}
			},
		},
		{
			name:    "ask joins the question and takes flags anywhere",
			argv:    []string{"ask", "what", "is", "--json", "terraform?", "--log-level=debug"},
			wantCmd: CmdAsk,
			check: func(t *testing.T, a Args) {
				if a.Query != "what is terraform?" {
					t.Errorf("Query = %q", a.Query)
				}
				if !a.JSON || a.LogLevel != "debug" {
					t.Errorf("flags not parsed: %+v", a)
				}
			},
		},
		{
			name:    "ask without a question",
			argv:    []string{"ask", "   "},
			wantCmd: CmdAsk,
			wantErr: true,
		},
		{
			name:    "config defaults to show",
			argv:    []string{"config"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "show" {
					t.Errorf("Subcommand = %q", a.Subcommand)
				}
			},
		},
		{
			name:    "config init force",
			argv:    []string{"config", "init", "--force"},
			wantCmd: CmdConfig,
			check: func(t *testing.T, a Args) {
				if a.Subcommand != "init" || !a.Force {
					t.Errorf("config args = %+v", a)
				}
			},
		},
		{
			name:    "config unknown subcommand",
			argv:    []string{"config", "set"},
			wantCmd: CmdConfig,
			wantErr: true,
		},
		{
			name:    "no-markdown",
			argv:    []string{"--no-markdown", "tui"},
			wantCmd: CmdTUI,
			check: func(t *testing.T, a Args) {
				if !a.Overrides().NoMarkdown {
					t.Error("NoMarkdown not carried into overrides")
				}
			},
		},
		{
			name:    "version flag",
			argv:    []string{"--version"},
			wantCmd: CmdVersion,
		},
		{
			name:    "help",
			argv:    []string{"help"},
			wantCmd: CmdHelp,
		},
		{
			name:    "missing flag value",
			argv:    []string{"--model"},
			wantErr: true,
			wantCmd: CmdHelp,
		},
		{
			name:    "unknown command",
			argv:    []string{"deploy"},
			wantCmd: CmdHelp,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args, err := Parse(tt.argv)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && GetExitCode(err) != ExitUsageError {
				t.Errorf("parse error exit code = %d, want %d", GetExitCode(err), ExitUsageError)
			}
			if cmd != tt.wantCmd {
				t.Errorf("cmd = %v, want %v", cmd, tt.wantCmd)
			}
			if tt.check != nil {
				tt.check(t, args)
			}
		})
	}
}

func TestNeedsConfig(t *testing.T) {
	tests := []struct {
		cmd  Command
		sub  string
		want bool
	}{
		{CmdTUI, "", true},
		{CmdAsk, "", true},
		{CmdChat, "", true},
		{CmdConfig, "show", true},
		{CmdConfig, "path", false},
		{CmdConfig, "init", false},
		{CmdVersion, "", false},
		{CmdHelp, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.cmd.String()+"/"+tt.sub, func(t *testing.T) {
			if got := NeedsConfig(tt.cmd, Args{Subcommand: tt.sub}); got != tt.want {
				t.Errorf("NeedsConfig = %v, want %v", got, tt.want)
			}
		})
	}
}

// =============================================================================
// EXIT CODE TESTS (errors.go)
// =============================================================================

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Reason: "x"}, ExitUsageError},
		{"missing key", config.ErrNoAPIKey, ExitConfigError},
		{"validation", config.ValidateErrors{{Field: "log.level", Message: "bad"}}, ExitConfigError},
		{"completion failed", &CompletionFailedError{Err: errors.New("HTTP 500")}, ExitGeneralError},
		{"completion failed without key", &CompletionFailedError{Err: cloud.ErrNotConfigured}, ExitGeneralError},
		{"tty", &TTYRequiredError{Operation: "start"}, ExitGeneralError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

// =============================================================================
// RUNNER HELPERS
// =============================================================================

type stubCompleter struct {
	reply string
	err   error
	calls int
	input string
}

func (s *stubCompleter) Complete(_ context.Context, input string) (string, error) {
	s.calls++
	s.input = input
	return s.reply, s.err
}

func newTestRunner(t *testing.T, completer conversation.Completer) (*Runner, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Cloud.APIKey = "sk-or-v1-test"

	var stdout, stderr bytes.Buffer
	r := &Runner{
		Config:     cfg,
		ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
		Completer:  completer,
		Stdout:     &stdout,
		Stderr:     &stderr,
	}
	return r, &stdout, &stderr
}

// scriptedLines replays a fixed list of inputs, then reports EOF.
type scriptedLines struct {
	inputs  []string
	history []string
	closed  bool
	final   error
}

func (s *scriptedLines) Prompt(string) (string, error) {
	if len(s.inputs) == 0 {
		if s.final != nil {
			return "", s.final
		}
		return "", io.EOF
	}
	line := s.inputs[0]
	s.inputs = s.inputs[1:]
	return line, nil
}

func (s *scriptedLines) AppendHistory(item string) { s.history = append(s.history, item) }

func (s *scriptedLines) Close() error {
	s.closed = true
	return nil
}

// =============================================================================
// ASK TESTS (ask.go)
// =============================================================================

func TestRunAsk_Text(t *testing.T) {
	stub := &stubCompleter{reply: "Use **kubectl rollout undo**."}
	r, stdout, _ := newTestRunner(t, stub)

	err := r.RunAsk(context.Background(), "  how do I roll back?  ", false)
	require.NoError(t, err)
	require.Equal(t, "how do I roll back?", stub.input)
	require.Equal(t, "Use **kubectl rollout undo**.\n", stdout.String())
}

func TestRunAsk_JSON(t *testing.T) {
	stub := &stubCompleter{reply: "Blue/green keeps two environments."}
	r, stdout, _ := newTestRunner(t, stub)

	require.NoError(t, r.RunAsk(context.Background(), "what is blue/green?", true))

	var got AskResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Equal(t, AskResult{
		Question: "what is blue/green?",
		Answer:   "Blue/green keeps two environments.",
		OK:       true,
	}, got)
}

func TestRunAsk_FailurePrintsPlaceholder(t *testing.T) {
	stub := &stubCompleter{err: errors.New("HTTP 500")}
	r, stdout, _ := newTestRunner(t, stub)

	err := r.RunAsk(context.Background(), "deploy?", true)
	require.Error(t, err)

	var failed *CompletionFailedError
	require.ErrorAs(t, err, &failed)
	require.Equal(t, ExitGeneralError, GetExitCode(err))

	var got AskResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.False(t, got.OK)
	require.Equal(t, conversation.FailureReply, got.Answer)
}

func TestRunAsk_NoChoicesIsSuccess(t *testing.T) {
	stub := &stubCompleter{reply: conversation.NoChoicesReply}
	r, stdout, _ := newTestRunner(t, stub)

	require.NoError(t, r.RunAsk(context.Background(), "anything", false))
	require.Contains(t, stdout.String(), conversation.NoChoicesReply)
}

func TestRunAsk_RequiresAPIKey(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	r, stdout, _ := newTestRunner(t, stub)
	r.Config.Cloud.APIKey = ""

	err := r.RunAsk(context.Background(), "anything", false)
	require.ErrorIs(t, err, config.ErrNoAPIKey)
	require.Equal(t, ExitConfigError, GetExitCode(err))
	require.Zero(t, stub.calls)
	require.Empty(t, stdout.String())
}

func TestRunAsk_EmptyQuestion(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	r, _, _ := newTestRunner(t, stub)

	err := r.RunAsk(context.Background(), " \t ", false)
	require.Equal(t, ExitUsageError, GetExitCode(err))
	require.Zero(t, stub.calls)
}

// =============================================================================
// CHAT TESTS (chat.go)
// =============================================================================

func TestRunChat_Conversation(t *testing.T) {
	stub := &stubCompleter{reply: "Pipelines automate delivery."}
	r, stdout, stderr := newTestRunner(t, stub)

	lines := &scriptedLines{inputs: []string{"", "  what is CI?  ", "/help", "/quit", "never read"}}
	r.newLineReader = func() (lineReader, error) { return lines, nil }

	require.NoError(t, r.RunChat(context.Background()))

	require.True(t, lines.closed)
	require.Equal(t, 1, stub.calls)
	require.Equal(t, "what is CI?", stub.input)
	require.Equal(t, []string{"what is CI?", "/help", "/quit"}, lines.history)
	require.Equal(t, []string{"never read"}, lines.inputs)

	out := stdout.String()
	require.Contains(t, out, "DevOps Assistant")
	require.Contains(t, out, "Bot: Pipelines automate delivery.")
	require.Contains(t, out, "Commands")
	require.Contains(t, out, "Goodbye. 2 messages this session.")
	require.Contains(t, stderr.String(), "Bot is typing...")
}

func TestRunChat_ExitOnEOFAndAbort(t *testing.T) {
	for _, final := range []error{io.EOF, liner.ErrPromptAborted} {
		t.Run(final.Error(), func(t *testing.T) {
			r, stdout, _ := newTestRunner(t, &stubCompleter{reply: "x"})
			r.newLineReader = func() (lineReader, error) {
				return &scriptedLines{final: final}, nil
			}

			require.NoError(t, r.RunChat(context.Background()))
			require.Contains(t, stdout.String(), "Goodbye. 0 messages this session.")
		})
	}
}

func TestRunChat_FailureReplyShown(t *testing.T) {
	stub := &stubCompleter{err: errors.New("connection refused")}
	r, stdout, _ := newTestRunner(t, stub)
	r.newLineReader = func() (lineReader, error) {
		return &scriptedLines{inputs: []string{"hello", "exit"}}, nil
	}

	require.NoError(t, r.RunChat(context.Background()))
	require.Contains(t, stdout.String(), "Bot: "+conversation.FailureReply)
	require.NotContains(t, stdout.String(), "connection refused")
}

func TestRunChat_ReadError(t *testing.T) {
	r, _, _ := newTestRunner(t, &stubCompleter{})
	boom := errors.New("terminal gone")
	r.newLineReader = func() (lineReader, error) {
		return &scriptedLines{final: boom}, nil
	}

	require.ErrorIs(t, r.RunChat(context.Background()), boom)
}

// =============================================================================
// CONFIG TESTS (config.go)
// =============================================================================

func TestRunConfig_ShowMasksKey(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &stubCompleter{})
	r.Config.Cloud.APIKey = "sk-or-v1-0123456789abcdef0123456789abcdef"

	require.NoError(t, r.RunConfig("show", false, false))
	out := stdout.String()
	require.Contains(t, out, config.Default().Cloud.Model)
	require.Contains(t, out, "REDACTED")
	require.NotContains(t, out, "0123456789abcdef")
	require.NotContains(t, out, "Warning:")
}

func TestRunConfig_ShowJSON(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &stubCompleter{})
	r.Config.Cloud.APIKey = "not-an-openrouter-key"

	require.NoError(t, r.RunConfig("show", true, false))

	var got ConfigData
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.True(t, got.APIKeySet)
	require.NotContains(t, got.APIKeyMasked, "not-an-openrouter-key")
	require.NotEmpty(t, got.APIKeyWarning)
	require.Equal(t, r.ConfigPath, got.Path)
	require.Equal(t, config.Default().Cloud.Model, got.Model)
}

func TestRunConfig_Path(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &stubCompleter{})
	require.NoError(t, r.RunConfig("path", false, false))
	require.Equal(t, r.ConfigPath+"\n", stdout.String())
}

func TestRunConfig_Init(t *testing.T) {
	r, _, _ := newTestRunner(t, &stubCompleter{})

	require.NoError(t, r.RunConfig("init", false, false))

	info, err := os.Stat(r.ConfigPath)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		require.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	data, err := os.ReadFile(r.ConfigPath)
	require.NoError(t, err)
	require.NotContains(t, string(data), "sk-or-v1-test")

	loaded := config.Default()
	require.NoError(t, config.LoadTOML(loaded, r.ConfigPath))
	require.Equal(t, config.Default().Cloud.Model, loaded.Cloud.Model)

	// A second init refuses to overwrite without --force.
	err = r.RunConfig("init", false, false)
	require.Equal(t, ExitUsageError, GetExitCode(err))
	require.NoError(t, r.RunConfig("init", false, true))
}

func TestRunner_VersionJSON(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &stubCompleter{})
	require.NoError(t, r.Run(context.Background(), CmdVersion, Args{JSON: true}))

	var got VersionData
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Equal(t, Version, got.Version)
}

func TestRunner_Help(t *testing.T) {
	r, stdout, _ := newTestRunner(t, &stubCompleter{})
	require.NoError(t, r.Run(context.Background(), CmdHelp, Args{}))
	require.True(t, strings.HasPrefix(stdout.String(), "devops-assistant"))
}

func TestRunner_TUINotLineMode(t *testing.T) {
	r, _, _ := newTestRunner(t, &stubCompleter{})
	require.Error(t, r.Run(context.Background(), CmdTUI, Args{}))
}
