// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Display-width helpers. Emoji and CJK characters occupy two terminal
// columns, so byte or rune counts misalign headers and labels.

// StringWidth returns the display width of s in terminal columns.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// TruncateWidth truncates s to at most maxWidth columns, ending with "..."
// when anything was cut. The result never exceeds maxWidth.
func TruncateWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// PadRight pads s with spaces to width columns. Strings already at least
// width wide are returned unchanged.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Indent prefixes every line after the first with width spaces, so a
// multi-line message lines up under a label of that width.
func Indent(s string, width int) string {
	if width <= 0 || !strings.Contains(s, "\n") {
		return s
	}
	pad := strings.Repeat(" ", width)
	return strings.ReplaceAll(s, "\n", "\n"+pad)
}
