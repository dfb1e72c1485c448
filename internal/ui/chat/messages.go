// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
)

// CompletionDoneMsg carries the settled outcome of a started request back to
// Update, where the store is resolved.
type CompletionDoneMsg struct {
	RequestID string
	Outcome   conversation.Outcome
}

// ConfigReloadedMsg is sent by the config watcher after the file changed.
// Err is set when the new file could not be loaded; the old settings stay.
type ConfigReloadedMsg struct {
	Config *config.Config
	Err    error
}
