// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markdown renders model replies for the terminal with glamour.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer wraps a glamour renderer for a fixed style and width. A Renderer
// whose glamour setup failed falls back to returning its input unchanged.
type Renderer struct {
	style string
	width int
	r     *glamour.TermRenderer
}

// New creates a renderer. style is a glamour standard style name ("dark",
// "light", "notty") or "auto" to detect from the terminal. Widths below 20
// are raised to 20.
func New(style string, width int) *Renderer {
	if width < 20 {
		width = 20
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		// Plain text fallback.
		r = nil
	}
	return &Renderer{style: style, width: width, r: r}
}

// Width returns the word-wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Style returns the configured style name.
func (r *Renderer) Style() string {
	return r.style
}

// Render returns content as styled terminal text, trimmed of the blank lines
// glamour adds around blocks. On failure the content is returned as-is.
func (r *Renderer) Render(content string) string {
	if r == nil || r.r == nil || strings.TrimSpace(content) == "" {
		return content
	}
	out, err := r.r.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(out, "\n")
}
