// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode chat command handler.
//
// Command: chat
// Short:   Chat in the current terminal without the full-screen view
//
// Interactive Commands (during chat):
//   /help, /h           Show available commands
//   /quit, /q, exit     Exit chat
//   Ctrl+D, Ctrl+C      Exit chat
//
// Input history is kept for the session only.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/ui/markdown"
	"github.com/jeranaias/devops-assistant/internal/util"
)

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the prompt used by the chat loop. *liner.State satisfies it.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// newLinerReader opens a liner prompt with Ctrl+C aborting the prompt.
func newLinerReader() (lineReader, error) {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line, nil
}

const (
	chatPrompt = "You: "
	botLabel   = "Bot: "
)

// =============================================================================
// CHAT HANDLER
// =============================================================================

// RunChat runs the line-mode REPL. Transcript output is driven by store
// events, the same way the full-screen view is.
func (r *Runner) RunChat(ctx context.Context) error {
	if err := r.Config.RequireAPIKey(); err != nil {
		return err
	}

	open := r.newLineReader
	if open == nil {
		open = newLinerReader
	}
	lines, err := open()
	if err != nil {
		return fmt.Errorf("open prompt: %w", err)
	}
	defer lines.Close()

	store := conversation.NewStore()
	ctrl := conversation.NewController(store, r.Completer, r.logger())

	md := r.replyRenderer()
	unsubscribe := store.Subscribe(func(ev conversation.Event) {
		r.printEvent(ev, md)
	})
	defer unsubscribe()

	r.printWelcome()

	for {
		input, err := lines.Prompt(chatPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.Stdout)
				r.printGoodbye(store)
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		lines.AppendHistory(input)

		switch strings.ToLower(input) {
		case "/quit", "/q", "/exit", "exit", "quit":
			r.printGoodbye(store)
			return nil
		case "/help", "/h":
			r.printChatHelp()
			continue
		}

		if _, err := ctrl.Send(ctx, input); err != nil {
			fmt.Fprintf(r.Stderr, "%s %v\n", RenderConditional(ErrorStyle, "[Error]"), err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// printEvent writes the typing indicator and bot replies. User input is
// already on screen from the prompt.
func (r *Runner) printEvent(ev conversation.Event, md *markdown.Renderer) {
	switch ev.Kind {
	case conversation.EventSubmitted:
		fmt.Fprintln(r.Stderr, RenderConditional(DimStyle, "Bot is typing..."))
	case conversation.EventResolved:
		label := RenderConditional(BotLabelStyle, botLabel)
		body := r.formatReply(ev.Message.Text, md)
		fmt.Fprintf(r.Stdout, "%s%s\n\n", label, util.Indent(body, util.StringWidth(botLabel)))
	}
}

func (r *Runner) printWelcome() {
	fmt.Fprintln(r.Stdout, RenderConditional(TitleStyle, "DevOps Assistant 🤖"))
	model := util.TruncateWidth(r.Config.Cloud.Model, GetTerminalWidth()-10)
	fmt.Fprintf(r.Stdout, "%s %s\n", RenderConditional(LabelStyle, "Model:"), RenderConditional(ValueStyle, model))
	fmt.Fprintln(r.Stdout, RenderConditional(DimStyle, "Type /help for commands, /quit or Ctrl+D to exit."))
	fmt.Fprintln(r.Stdout)
}

func (r *Runner) printChatHelp() {
	fmt.Fprintln(r.Stdout, RenderConditional(TitleStyle, "Commands"))
	fmt.Fprintln(r.Stdout, "  /help, /h         Show this help")
	fmt.Fprintln(r.Stdout, "  /quit, /q, exit   Exit chat")
	fmt.Fprintln(r.Stdout, "  Ctrl+D, Ctrl+C    Exit chat")
	fmt.Fprintln(r.Stdout)
}

func (r *Runner) printGoodbye(store *conversation.Store) {
	fmt.Fprintln(r.Stdout, RenderConditional(DimStyle,
		fmt.Sprintf("Goodbye. %d messages this session.", store.Len())))
}
