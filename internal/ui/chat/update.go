// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/ui/markdown"
)

// typingHeight is the line reserved for the typing indicator.
const typingHeight = 1

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case CompletionDoneMsg:
		return m.handleCompletionDone(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case spinner.TickMsg:
		if !m.store.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		if m.store.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.input.Width = max(m.width-lipgloss.Width(m.renderSendHint())-6, 10)

	chrome := lipgloss.Height(m.renderHeader()) + typingHeight +
		lipgloss.Height(m.renderInput()) + lipgloss.Height(m.renderStatusBar())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)

	if m.cfg.UI.Markdown {
		width := m.contentWidth()
		if m.md == nil || m.md.Width() != width {
			m.md = markdown.New(m.theme.GlamourStyle(), width)
			clear(m.rendered)
		}
	}

	m.refreshViewport(m.viewport.AtBottom())
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil
	}

	// Input is disabled while a reply is pending.
	if m.store.Pending() {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit hands the input to the store and starts the completion.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.store.Pending() {
		return m, nil
	}

	req, err := m.store.Submit(m.input.Value())
	switch {
	case errors.Is(err, conversation.ErrEmptyInput):
		return m, nil
	case err != nil:
		m.log.Warn("submit rejected", "error", err)
		return m, nil
	}

	m.input.Reset()
	m.input.Blur()
	m.lastError = ""
	m.refreshViewport(true)

	return m, tea.Batch(m.completeCmd(req), m.spinner.Tick)
}

// completeCmd runs the completion off the UI goroutine. The controller is
// captured so a config reload does not affect a request already in flight.
func (m Model) completeCmd(req conversation.Request) tea.Cmd {
	ctrl := m.ctrl
	ctx := m.ctx
	return func() tea.Msg {
		return CompletionDoneMsg{RequestID: req.ID, Outcome: ctrl.Complete(ctx, req)}
	}
}

func (m Model) handleCompletionDone(msg CompletionDoneMsg) (tea.Model, tea.Cmd) {
	if _, err := m.store.Resolve(msg.RequestID, msg.Outcome); err != nil {
		m.log.Warn("dropping completion", "request_id", msg.RequestID, "error", err)
		return m, nil
	}

	m.refreshViewport(true)
	return m, tea.Batch(m.input.Focus(), textinput.Blink)
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.lastError = "config reload failed: " + msg.Err.Error()
		return m, nil
	}
	cfg := msg.Config
	if cfg == nil {
		return m, nil
	}

	if m.newCompleter != nil && m.cfg.CloudChanged(cfg) {
		m.ctrl = m.ctrl.WithCompleter(m.newCompleter(cfg))
		m.log.Info("completion client rebuilt", "model", cfg.Cloud.Model)
	}

	if cfg.UI.Markdown != m.cfg.UI.Markdown {
		m.md = nil
		clear(m.rendered)
		if cfg.UI.Markdown && m.width > 0 {
			m.md = markdown.New(m.theme.GlamourStyle(), m.contentWidth())
		}
	}
	m.input.Placeholder = cfg.UI.Placeholder
	m.cfg = cfg
	m.lastError = ""

	m.refreshViewport(m.viewport.AtBottom())
	return m, nil
}

// refreshViewport re-renders the transcript into the viewport.
func (m *Model) refreshViewport(gotoBottom bool) {
	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// contentWidth is the text width inside a message block.
func (m Model) contentWidth() int {
	return max(m.width-4, 20)
}
