// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view for devops-assistant.

The view is a Bubble Tea model over a conversation.Store. It never keeps its
own copy of the transcript: every frame is rendered from a store snapshot.

# Key Components

## Model (model.go)

The Model wires the store, the controller and the bubbles widgets:
  - viewport for the scrolling transcript
  - textinput for the question, disabled while a reply is pending
  - spinner for the typing indicator

## Update Loop (update.go)

Enter submits the input to the store and starts the completion in a tea.Cmd.
The command returns a CompletionDoneMsg, and the store is resolved inside
Update, so all mutation happens on the Bubble Tea goroutine.

## View Rendering (view.go)

Header, transcript with "You:" and "Bot:" labels, typing indicator, input row
with the send hint and a status bar. Bot replies are rendered as markdown
when enabled.

# Usage

	store := conversation.NewStore()
	ctrl := conversation.NewController(store, client, logger)
	m := chat.New(chat.Options{
		Controller: ctrl,
		Config:     cfg,
		Theme:      styles.NewTheme(cfg.UI.Theme),
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
*/
package chat
