// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for the devops-assistant chat view.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection.

# Color System (colors.go)

  - Purple - Bot label and header border
  - Cyan - User label and input prompt
  - Emerald - Send button
  - Rose - Failure replies and errors
  - Amber - Empty-choice replies and warnings

# Theme (theme.go)

NewTheme builds every lipgloss.Style the chat view needs. The theme mode
("dark", "light", "auto") also selects the glamour style used for markdown.

	theme := styles.NewTheme(cfg.UI.Theme)
	label := theme.BotLabel.Render("Bot:")
*/
package styles
