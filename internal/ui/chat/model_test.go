// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

type stubCompleter struct {
	reply string
	err   error
	calls atomic.Int32
	last  atomic.Value
}

func (s *stubCompleter) Complete(_ context.Context, input string) (string, error) {
	s.calls.Add(1)
	s.last.Store(input)
	return s.reply, s.err
}

func newTestModel(t *testing.T, completer conversation.Completer) Model {
	t.Helper()
	cfg := config.Default()
	cfg.UI.Markdown = false

	ctrl := conversation.NewController(conversation.NewStore(), completer, nil)
	m := New(Options{
		Controller: ctrl,
		Config:     cfg,
		Theme:      styles.NewTheme("dark"),
	})
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
}

// update applies msg and returns the new model, discarding the command.
func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func pressEnter(m Model) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

// completionFrom runs cmd (and any batched commands) until it yields a
// CompletionDoneMsg.
func completionFrom(t *testing.T, cmd tea.Cmd) CompletionDoneMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	switch msg := cmd().(type) {
	case CompletionDoneMsg:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if done, ok := c().(CompletionDoneMsg); ok {
				return done
			}
		}
	}
	t.Fatal("command did not produce a CompletionDoneMsg")
	return CompletionDoneMsg{}
}

// =============================================================================
// SUBMIT / RESOLVE
// =============================================================================

func TestSubmit_FullCycle(t *testing.T) {
	stub := &stubCompleter{reply: "Blue/green keeps two environments."}
	m := newTestModel(t, stub)

	m = typeText(t, m, "  what is blue/green?  ")
	m, cmd := pressEnter(m)

	if !m.Pending() {
		t.Fatal("model should be pending after submit")
	}
	if m.InputValue() != "" {
		t.Errorf("input should be cleared, got %q", m.InputValue())
	}
	state := m.Store().Snapshot()
	if state.Len() != 1 || state.Messages[0].Text != "  what is blue/green?  " {
		t.Fatalf("unexpected transcript after submit: %+v", state.Messages)
	}

	done := completionFrom(t, cmd)
	if got := stub.last.Load(); got != "what is blue/green?" {
		t.Errorf("completer input = %v", got)
	}

	m = update(t, m, done)
	if m.Pending() {
		t.Error("model should not be pending after completion")
	}
	state = m.Store().Snapshot()
	if state.Len() != 2 {
		t.Fatalf("expected 2 messages, got %d", state.Len())
	}
	if !state.Messages[1].IsBot() || state.Messages[1].Text != stub.reply {
		t.Errorf("bot message = %+v", state.Messages[1])
	}
}

func TestSubmit_FailureShowsPlaceholder(t *testing.T) {
	stub := &stubCompleter{err: errors.New("HTTP 500")}
	m := newTestModel(t, stub)

	m = typeText(t, m, "deploy?")
	m, cmd := pressEnter(m)
	m = update(t, m, completionFrom(t, cmd))

	last, _ := m.Store().Snapshot().Last()
	if last.Text != conversation.FailureReply {
		t.Errorf("last message = %q, want failure placeholder", last.Text)
	}
	if !strings.Contains(m.View(), conversation.FailureReply) {
		t.Error("failure placeholder should be rendered")
	}
}

func TestSubmit_WhitespaceIgnored(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	m := newTestModel(t, stub)

	m = typeText(t, m, "   ")
	m, cmd := pressEnter(m)

	if cmd != nil {
		t.Error("whitespace submit should not start a completion")
	}
	if m.Pending() || m.Store().Len() != 0 {
		t.Error("whitespace submit should not change the store")
	}
}

func TestSubmit_IgnoredWhilePending(t *testing.T) {
	stub := &stubCompleter{reply: "x"}
	m := newTestModel(t, stub)

	m = typeText(t, m, "first")
	m, _ = pressEnter(m)

	// Typing is disabled while pending.
	m = typeText(t, m, "second")
	if m.InputValue() != "" {
		t.Errorf("input accepted text while pending: %q", m.InputValue())
	}

	m, cmd := pressEnter(m)
	if cmd != nil {
		t.Error("Enter while pending should not start a completion")
	}
	if m.Store().Len() != 1 {
		t.Errorf("expected 1 message, got %d", m.Store().Len())
	}
	if stub.calls.Load() != 0 {
		t.Error("completer should not have been called yet")
	}
}

func TestCompletionDone_StaleIgnored(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "x"})

	m = update(t, m, CompletionDoneMsg{RequestID: "unknown", Outcome: conversation.Success("late")})
	if m.Store().Len() != 0 {
		t.Error("completion without a pending request must not append")
	}
}

// =============================================================================
// VIEW
// =============================================================================

func TestView_Layout(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "Use a pipeline."})

	view := m.View()
	for _, want := range []string{"DevOps Assistant", config.DefaultPlaceholder, "Send", emptyStateText} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Contains(view, TypingText) {
		t.Error("typing indicator shown while idle")
	}
}

func TestView_PendingShowsTypingIndicator(t *testing.T) {
	m := newTestModel(t, &stubCompleter{reply: "Use a pipeline."})

	m = typeText(t, m, "what is CI?")
	m, cmd := pressEnter(m)

	view := m.View()
	if !strings.Contains(view, TypingText) {
		t.Error("typing indicator missing while pending")
	}
	if !strings.Contains(view, "You:") || !strings.Contains(view, "what is CI?") {
		t.Error("user message not rendered")
	}
	if !strings.Contains(view, "...") || strings.Contains(view, "Send") {
		t.Error("send hint should read ... while pending")
	}

	m = update(t, m, completionFrom(t, cmd))
	view = m.View()
	if strings.Contains(view, TypingText) {
		t.Error("typing indicator still shown after completion")
	}
	if !strings.Contains(view, "Bot:") || !strings.Contains(view, "Use a pipeline.") {
		t.Error("bot reply not rendered")
	}
}

func TestView_BeforeResize(t *testing.T) {
	ctrl := conversation.NewController(conversation.NewStore(), &stubCompleter{}, nil)
	m := New(Options{Controller: ctrl, Config: config.Default(), Theme: styles.NewTheme("dark")})
	if m.View() != "Loading..." {
		t.Errorf("View() before first resize = %q", m.View())
	}
}

// =============================================================================
// KEYS AND RELOAD
// =============================================================================

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := newTestModel(t, &stubCompleter{})
		_, cmd := m.Update(k)
		if cmd == nil {
			t.Fatalf("%s should return a command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should quit", k)
		}
	}
}

func TestConfigReload_SwapsCompleter(t *testing.T) {
	oldStub := &stubCompleter{reply: "old"}
	newStub := &stubCompleter{reply: "new"}

	cfg := config.Default()
	cfg.UI.Markdown = false
	ctrl := conversation.NewController(conversation.NewStore(), oldStub, nil)
	m := New(Options{
		Controller:   ctrl,
		Config:       cfg,
		Theme:        styles.NewTheme("dark"),
		NewCompleter: func(*config.Config) conversation.Completer { return newStub },
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	reloaded := cfg.Clone()
	reloaded.Cloud.Model = "openai/gpt-4o-mini"
	reloaded.UI.Placeholder = "Ask away..."
	m = update(t, m, ConfigReloadedMsg{Config: reloaded})

	if m.ModelName() != "openai/gpt-4o-mini" {
		t.Errorf("ModelName() = %q", m.ModelName())
	}
	if !strings.Contains(m.View(), "Ask away...") {
		t.Error("placeholder not updated")
	}

	m = typeText(t, m, "hi")
	m, cmd := pressEnter(m)
	m = update(t, m, completionFrom(t, cmd))

	last, _ := m.Store().Snapshot().Last()
	if last.Text != "new" {
		t.Errorf("reply = %q, want reply from the rebuilt completer", last.Text)
	}
	if oldStub.calls.Load() != 0 {
		t.Error("old completer should not be used after reload")
	}
}

func TestConfigReload_ErrorKeepsSettings(t *testing.T) {
	m := newTestModel(t, &stubCompleter{})
	before := m.ModelName()

	m = update(t, m, ConfigReloadedMsg{Err: errors.New("bad toml")})
	if m.ModelName() != before {
		t.Error("failed reload must not change settings")
	}
	if !strings.Contains(m.View(), "config reload failed") {
		t.Error("reload error should be shown in the status bar")
	}
}
