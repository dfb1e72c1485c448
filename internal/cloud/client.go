// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cloud

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jeranaias/devops-assistant/internal/conversation"
)

// Configuration defaults for the OpenRouter endpoint.
const (
	// DefaultBaseURL is the base URL for the OpenRouter API.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "mistralai/mistral-7b-instruct"

	// DefaultSystemPrompt is the fixed persona sent ahead of every input.
	DefaultSystemPrompt = "You are a helpful DevOps assistant. Provide concise, technical answers about DevOps practices, tools, and methodologies."

	// DefaultSiteName is sent as the X-Title attribution header.
	DefaultSiteName = "devops-assistant"
)

// Options configures a Client. Zero values fall back to the defaults above.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	SiteURL      string
	SiteName     string
	UserAgent    string

	// HTTPClient supplies the transport. Its Timeout is left as given;
	// the zero value means requests are bounded only by the context.
	HTTPClient *http.Client

	Logger *slog.Logger
}

// Client is an OpenRouter chat-completions client. It is safe for concurrent
// use and holds no conversation state.
type Client struct {
	api          *openai.Client
	apiKey       string
	baseURL      string
	model        string
	systemPrompt string
	log          *slog.Logger
}

var _ conversation.Completer = (*Client)(nil)

// NewClient creates a client from opts. An empty API key still yields a
// client, but every Complete call fails with ErrNotConfigured.
func NewClient(opts Options) *Client {
	apiKey := strings.TrimSpace(opts.APIKey)
	baseURL := strings.TrimSuffix(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	systemPrompt := opts.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	siteName := opts.SiteName
	if siteName == "" {
		siteName = DefaultSiteName
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	httpClient := &http.Client{}
	if opts.HTTPClient != nil {
		copied := *opts.HTTPClient
		httpClient = &copied
	}
	httpClient.Transport = &headerTransport{
		base:      httpClient.Transport,
		siteURL:   opts.SiteURL,
		siteName:  siteName,
		userAgent: opts.UserAgent,
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	config.HTTPClient = httpClient

	return &Client{
		api:          openai.NewClientWithConfig(config),
		apiKey:       apiKey,
		baseURL:      baseURL,
		model:        model,
		systemPrompt: systemPrompt,
		log:          log.With("component", "cloud"),
	}
}

// Model returns the model identifier sent with every request.
func (c *Client) Model() string {
	return c.model
}

// BaseURL returns the endpoint base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsConfigured returns true if the client has an API key.
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete sends input with the system persona and returns the first choice's
// content, trimmed. An empty choices list, or a JSON error body from the
// endpoint, is not an error: it yields conversation.NoChoicesReply. A first
// choice without message content, and every other failure, is a
// *CompletionError.
func (c *Client) Complete(ctx context.Context, input string) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			reply = ""
			err = requestFailed(fmt.Errorf("panic during completion: %v", r))
		}
	}()

	if !c.IsConfigured() {
		return "", requestFailed(ErrNotConfigured)
	}

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: strings.TrimSpace(input)},
		},
	}

	start := time.Now()
	c.log.Debug("chat completion request",
		"model", c.model,
		"key", c.KeyFingerprint(),
		"input_len", len(req.Messages[1].Content))

	shape := &replyShape{}
	resp, err := c.api.CreateChatCompletion(withReplyShape(ctx, shape), req)
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		// A JSON error body parses but has no choices.
		c.log.Warn("model returned an error body instead of choices",
			"model", c.model,
			"status", apiErr.HTTPStatusCode,
			"message", apiErr.Message,
			"duration", time.Since(start))
		return conversation.NoChoicesReply, nil
	}
	if err != nil {
		ce := requestFailed(err)
		c.log.Debug("chat completion error",
			"status", ce.Status,
			"duration", time.Since(start))
		return "", ce
	}

	c.log.Debug("chat completion response",
		"id", resp.ID,
		"choices", len(resp.Choices),
		"total_tokens", resp.Usage.TotalTokens,
		"duration", time.Since(start))

	if len(resp.Choices) == 0 {
		c.log.Warn("model returned no choices", "model", c.model, "id", resp.ID)
		return conversation.NoChoicesReply, nil
	}
	if shape.inspected && !shape.hasContent {
		return "", requestFailed(ErrMalformedChoice)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// KeyFingerprint returns a short SHA-256 fingerprint of the API key for logs.
// The key itself is never exposed.
func (c *Client) KeyFingerprint() string {
	return KeyFingerprint(c.apiKey)
}

// APIKeyMasked returns a display form of the configured key.
func (c *Client) APIKeyMasked() string {
	return MaskAPIKey(c.apiKey)
}

// KeyFingerprint returns the first 8 hex characters of the key's SHA-256.
func KeyFingerprint(apiKey string) string {
	if apiKey == "" {
		return "none"
	}
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:4])
}

// MaskAPIKey returns a redacted description of apiKey.
func MaskAPIKey(apiKey string) string {
	if apiKey == "" {
		return "[not set]"
	}
	return fmt.Sprintf("[REDACTED, length=%d, fingerprint=%s]", len(apiKey), KeyFingerprint(apiKey))
}

// ValidateAPIKey checks that apiKey looks like an OpenRouter key.
// It does not contact the endpoint.
func ValidateAPIKey(apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return ErrNotConfigured
	}
	if !strings.HasPrefix(apiKey, "sk-or-") {
		return errors.New("API key should start with sk-or-")
	}
	if len(apiKey) < 38 {
		return errors.New("API key is too short")
	}
	return nil
}
