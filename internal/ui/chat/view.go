// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/util"
)

// emptyStateText is shown before the first message.
const emptyStateText = "No messages yet. Ask a DevOps question to get started."

// renderChat lays out header, transcript, typing indicator, input and status.
func (m Model) renderChat() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderTyping(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	inner := max(m.width-6, 1) // border + padding
	title := m.theme.HeaderTitle.Render(util.TruncateWidth(Title, inner))

	subtitle := ""
	if remaining := inner - util.StringWidth(Title) - 3; remaining > 3 {
		subtitle = m.theme.HeaderSubtitle.Render(" · " + util.TruncateWidth(m.cfg.Cloud.Model, remaining))
	}

	return m.theme.Header.
		Width(max(m.width-2, 1)).
		Render(title + subtitle)
}

// renderTranscript renders every message in the store, in order.
func (m Model) renderTranscript() string {
	state := m.store.Snapshot()
	if state.Len() == 0 {
		return m.theme.EmptyState.Render(emptyStateText)
	}

	blocks := make([]string, 0, state.Len())
	for _, msg := range state.Messages {
		blocks = append(blocks, m.renderMessage(msg))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) renderMessage(msg conversation.Message) string {
	width := m.contentWidth()

	if msg.IsUser() {
		label := m.theme.UserLabel.Render(msg.Sender.DisplayName() + ":")
		body := m.theme.UserText.Width(width).Render(msg.Text)
		return label + "\n" + body
	}

	label := m.theme.BotLabel.Render(msg.Sender.DisplayName() + ":")
	var body string
	switch msg.Text {
	case conversation.FailureReply:
		body = m.theme.FailureText.Width(width).Render(msg.Text)
	case conversation.NoChoicesReply:
		body = m.theme.NoticeText.Width(width).Render(msg.Text)
	default:
		if m.cfg.UI.Markdown && m.md != nil {
			body = m.theme.BotText.Render(m.renderMarkdown(msg))
		} else {
			body = m.theme.BotText.Width(width).Render(msg.Text)
		}
	}
	return label + "\n" + body
}

// renderMarkdown renders a bot message once per width and caches the result.
func (m Model) renderMarkdown(msg conversation.Message) string {
	if out, ok := m.rendered[msg.ID]; ok {
		return out
	}
	out := m.md.Render(msg.Text)
	m.rendered[msg.ID] = out
	return out
}

// renderTyping renders the typing indicator, visible only while pending.
func (m Model) renderTyping() string {
	if !m.store.Pending() {
		return ""
	}
	return " " + m.spinner.View() + " " + m.theme.TypingText.Render(TypingText)
}

func (m Model) renderSendHint() string {
	if m.store.Pending() {
		return m.theme.SendButtonBusy.Render("...")
	}
	return m.theme.SendButton.Render("Send")
}

func (m Model) renderInput() string {
	field := m.input.View()
	if m.store.Pending() {
		field = m.theme.InputDisabled.Render(field)
	}

	hint := m.renderSendHint()
	gap := max(m.width-lipgloss.Width(field)-lipgloss.Width(hint)-2, 1)
	row := field + strings.Repeat(" ", gap) + hint

	return m.theme.InputContainer.Width(max(m.width, 1)).Render(row)
}

func (m Model) renderStatusBar() string {
	var parts []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		parts = append(parts, m.theme.ShortcutKey.Render(h.Key)+" "+m.theme.ShortcutDesc.Render(h.Desc))
	}
	left := strings.Join(parts, "  ")

	right := fmt.Sprintf("%d messages", m.store.Len())
	if m.lastError != "" {
		right = m.theme.ErrorStyle.Render(util.TruncateWidth(m.lastError, max(m.width/2, 10)))
	}

	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return m.theme.StatusBar.Width(max(m.width, 1)).Render(left + strings.Repeat(" ", gap) + right)
}
