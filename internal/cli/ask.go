// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - Single question command handler.
//
// Command: ask [question]
// Short:   Ask a single question and print the answer
//
// Examples:
//   devops-assistant ask "What is a blue/green deployment?"
//   devops-assistant ask --json "Explain Kubernetes liveness probes"
//
// Flags:
//   --json              Print {"question","answer","ok"} instead of text
//   --no-markdown       Print the reply without markdown styling
//
// The exit code is 1 when the completion failed.

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/ui/markdown"
)

// RunAsk sends one question through a fresh conversation and prints the
// bot reply.
func (r *Runner) RunAsk(ctx context.Context, question string, jsonMode bool) error {
	if err := r.Config.RequireAPIKey(); err != nil {
		return err
	}

	store := conversation.NewStore()
	ctrl := conversation.NewController(store, r.Completer, r.logger())

	req, err := store.Submit(question)
	if err != nil {
		return &UsageError{
			Reason:  "ask requires a question",
			Example: `devops-assistant ask "How do I roll back a Helm release?"`,
		}
	}

	outcome := ctrl.Complete(ctx, req)
	reply, err := store.Resolve(req.ID, outcome)
	if err != nil {
		return fmt.Errorf("resolve reply: %w", err)
	}

	if jsonMode {
		if err := writeJSON(r.Stdout, AskResult{
			Question: req.Input,
			Answer:   reply.Text,
			OK:       outcome.OK(),
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(r.Stdout, r.formatReply(reply.Text, r.replyRenderer()))
	}

	if !outcome.OK() {
		return &CompletionFailedError{Err: outcome.Err()}
	}
	return nil
}

// replyRenderer returns a markdown renderer for bot replies, or nil when
// output is not a terminal or markdown is disabled.
func (r *Runner) replyRenderer() *markdown.Renderer {
	if !r.Interactive || r.Config == nil || !r.Config.UI.Markdown {
		return nil
	}
	style := strings.ToLower(r.Config.UI.Theme)
	if style != "dark" && style != "light" {
		style = "auto"
	}
	return markdown.New(style, GetTerminalWidth()-4)
}

// formatReply styles a bot reply. Placeholder replies are colored; other
// text goes through md when it is non-nil.
func (r *Runner) formatReply(text string, md *markdown.Renderer) string {
	switch text {
	case conversation.FailureReply:
		return RenderConditional(ErrorStyle, text)
	case conversation.NoChoicesReply:
		return RenderConditional(WarningStyle, text)
	}
	if md != nil {
		return md.Render(text)
	}
	return text
}
