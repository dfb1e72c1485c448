// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"log/slog"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/devops-assistant/internal/config"
	"github.com/jeranaias/devops-assistant/internal/conversation"
	"github.com/jeranaias/devops-assistant/internal/ui/markdown"
	"github.com/jeranaias/devops-assistant/internal/ui/styles"
)

// Title is the header text of the chat view.
const Title = "DevOps Assistant 🤖"

// TypingText follows the spinner while a reply is pending.
const TypingText = "Bot is typing..."

// Options configures a chat Model.
type Options struct {
	// Controller binds the store to the completion client. Required.
	Controller *conversation.Controller

	// Config supplies the model name, placeholder and markdown setting.
	// Defaults are used when nil.
	Config *config.Config

	// Theme defaults to styles.NewTheme(Config.UI.Theme).
	Theme *styles.Theme

	Logger *slog.Logger

	// NewCompleter builds a completer for a reloaded config. When nil,
	// config reloads update display settings only.
	NewCompleter func(*config.Config) conversation.Completer

	// Context is passed to every completion. Defaults to context.Background.
	Context context.Context
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Conversation
	ctrl  *conversation.Controller
	store *conversation.Store

	// Settings
	cfg          *config.Config
	newCompleter func(*config.Config) conversation.Completer
	ctx          context.Context
	log          *slog.Logger

	// Styling
	theme    *styles.Theme
	md       *markdown.Renderer
	rendered map[string]string // bot message ID -> rendered markdown

	// Dimensions
	width  int
	height int

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Status
	lastError string
}

// New creates a chat model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme(cfg.UI.Theme)
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = cfg.UI.Placeholder
	ti.CharLimit = 4096
	ti.PromptStyle = theme.InputPrompt
	ti.PlaceholderStyle = theme.InputDisabled
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = theme.Spinner

	return Model{
		ctrl:         opts.Controller,
		store:        opts.Controller.Store(),
		cfg:          cfg,
		newCompleter: opts.NewCompleter,
		ctx:          ctx,
		log:          log.With("component", "chat"),
		theme:        theme,
		rendered:     make(map[string]string),
		viewport:     vp,
		input:        ti,
		spinner:      sp,
		keyMap:       DefaultKeyMap(),
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Pending reports whether a reply is outstanding.
func (m Model) Pending() bool {
	return m.store.Pending()
}

// Store returns the conversation store behind the view.
func (m Model) Store() *conversation.Store {
	return m.store
}

// ModelName returns the model identifier shown in the header.
func (m Model) ModelName() string {
	return m.cfg.Cloud.Model
}

// InputValue returns the current contents of the text input.
func (m Model) InputValue() string {
	return m.input.Value()
}
