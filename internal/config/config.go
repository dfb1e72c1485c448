// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/devops-assistant/internal/cloud"
	"github.com/jeranaias/devops-assistant/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete devops-assistant configuration.
type Config struct {
	// Cloud (OpenRouter) configuration
	Cloud CloudConfig `toml:"cloud" json:"cloud"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Operator log configuration
	Log LogConfig `toml:"log" json:"log"`

	warnings []string
}

// Warnings returns non-fatal problems found while loading, for the caller
// to log. Nothing is printed during Load so a running full-screen view is
// never written over.
func (c *Config) Warnings() []string {
	return c.warnings
}

// CloudConfig contains the completion endpoint configuration.
type CloudConfig struct {
	// APIKey is the OpenRouter bearer credential
	APIKey string `toml:"api_key" json:"api_key"`
	// BaseURL is the OpenAI-compatible API root
	BaseURL string `toml:"base_url" json:"base_url"`
	// Model is the model identifier sent with every request
	Model string `toml:"model" json:"model"`
	// SystemPrompt is the fixed persona sent ahead of the user input
	SystemPrompt string `toml:"system_prompt" json:"system_prompt"`
	// SiteURL is sent as the HTTP-Referer attribution header
	SiteURL string `toml:"site_url" json:"site_url"`
	// SiteName is sent as the X-Title attribution header
	SiteName string `toml:"site_name" json:"site_name"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Markdown renders bot replies through glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// Placeholder is the empty-input hint
	Placeholder string `toml:"placeholder" json:"placeholder"`
	// Theme is "dark", "light" or "auto"
	Theme string `toml:"theme" json:"theme"`
}

// LogConfig contains operator log configuration.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// Format is "text" or "json"
	Format string `toml:"format" json:"format"`
	// Path is the log file; empty means the default file under ConfigDir
	Path string `toml:"path" json:"path"`
}

// Overrides carries command-line flag values. Empty fields are ignored.
type Overrides struct {
	Model      string
	LogLevel   string
	NoMarkdown bool
}

// DefaultPlaceholder is the input hint shown when the input is empty.
const DefaultPlaceholder = "Ask me about DevOps..."

// ErrNoAPIKey is returned by RequireAPIKey when no credential is configured.
var ErrNoAPIKey = errors.New("no API key configured: set OPENROUTER_API_KEY or cloud.api_key in " + configFileName)

const (
	configDirName  = ".devops-assistant"
	configFileName = "config.toml"
	logFileName    = "devops-assistant.log"
	dotEnvFileName = ".env"
)

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values. The API key is
// never defaulted.
func Default() *Config {
	return &Config{
		Cloud: CloudConfig{
			BaseURL:      cloud.DefaultBaseURL,
			Model:        cloud.DefaultModel,
			SystemPrompt: cloud.DefaultSystemPrompt,
			SiteName:     cloud.DefaultSiteName,
		},
		UI: UIConfig{
			Markdown:    true,
			Placeholder: DefaultPlaceholder,
			Theme:       "auto",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the devops-assistant configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// ConfigPath returns the path to the default TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// DefaultLogPath returns the path of the operator log file.
func DefaultLogPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, logFileName), nil
}

// ensureSecurePermissions checks and fixes permissions on config files.
// Config files hold the API key and must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load builds the effective configuration from, lowest precedence first:
// built-in defaults, the TOML file at path (ConfigPath when empty), .env
// files, and the process environment. A missing config file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
	}

	if err := LoadDotEnv(dotEnvPaths(path)...); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML decodes the TOML file at path on top of cfg. Keys absent from the
// file keep their current values. Unknown keys and unfixable permissions are
// recorded in cfg.Warnings.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable on all systems.
		cfg.warnings = append(cfg.warnings,
			fmt.Sprintf("could not ensure secure permissions on %s: %v", path, err))
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		cfg.warnings = append(cfg.warnings,
			fmt.Sprintf("unknown config keys in %s: %s", path, strings.Join(keys, ", ")))
	}
	fillDefaults(cfg)
	return nil
}

// fillDefaults restores defaults for fields the file set to empty strings.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if strings.TrimSpace(cfg.Cloud.BaseURL) == "" {
		cfg.Cloud.BaseURL = defaults.Cloud.BaseURL
	}
	if strings.TrimSpace(cfg.Cloud.Model) == "" {
		cfg.Cloud.Model = defaults.Cloud.Model
	}
	if strings.TrimSpace(cfg.Cloud.SystemPrompt) == "" {
		cfg.Cloud.SystemPrompt = defaults.Cloud.SystemPrompt
	}
	if cfg.Cloud.SiteName == "" {
		cfg.Cloud.SiteName = defaults.Cloud.SiteName
	}
	if cfg.UI.Placeholder == "" {
		cfg.UI.Placeholder = defaults.UI.Placeholder
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = defaults.Log.Format
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - OPENROUTER_API_KEY: overrides cloud.api_key
//   - DEVOPS_ASSISTANT_API_KEY: overrides cloud.api_key, wins over OPENROUTER_API_KEY
//   - DEVOPS_ASSISTANT_MODEL: overrides cloud.model
//   - DEVOPS_ASSISTANT_BASE_URL: overrides cloud.base_url
//   - DEVOPS_ASSISTANT_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if key := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); key != "" {
		c.Cloud.APIKey = key
	}
	if key := strings.TrimSpace(os.Getenv("DEVOPS_ASSISTANT_API_KEY")); key != "" {
		c.Cloud.APIKey = key
	}
	if model := strings.TrimSpace(os.Getenv("DEVOPS_ASSISTANT_MODEL")); model != "" {
		c.Cloud.Model = model
	}
	if baseURL := strings.TrimSpace(os.Getenv("DEVOPS_ASSISTANT_BASE_URL")); baseURL != "" {
		c.Cloud.BaseURL = baseURL
	}
	if level := strings.TrimSpace(os.Getenv("DEVOPS_ASSISTANT_LOG_LEVEL")); level != "" {
		c.Log.Level = level
	}
}

// ApplyOverrides applies command-line flag values, the highest precedence.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Model != "" {
		c.Cloud.Model = o.Model
	}
	if o.LogLevel != "" {
		c.Log.Level = o.LogLevel
	}
	if o.NoMarkdown {
		c.UI.Markdown = false
	}
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// SaveTOML writes the configuration to path atomically with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# devops-assistant configuration file")
	fmt.Fprintln(&buf, "# The API key may also come from OPENROUTER_API_KEY or a .env file.")
	fmt.Fprintln(&buf, "")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors. A missing API key is not a validation error; see
// RequireAPIKey.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if u, err := url.Parse(c.Cloud.BaseURL); err != nil || u.Host == "" ||
		(u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, ValidationError{
			Field:   "cloud.base_url",
			Message: fmt.Sprintf("invalid URL '%s', must be an absolute http(s) URL", c.Cloud.BaseURL),
		})
	}

	if strings.TrimSpace(c.Cloud.Model) == "" {
		errs = append(errs, ValidationError{Field: "cloud.model", Message: "must not be empty"})
	}

	if c.Cloud.SiteURL != "" {
		if u, err := url.Parse(c.Cloud.SiteURL); err != nil || u.Scheme == "" {
			errs = append(errs, ValidationError{
				Field:   "cloud.site_url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Cloud.SiteURL),
			})
		}
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Log.Format)] {
		errs = append(errs, ValidationError{
			Field:   "log.format",
			Message: fmt.Sprintf("invalid format '%s', must be one of: text, json", c.Log.Format),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequireAPIKey returns ErrNoAPIKey when no credential is configured.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.Cloud.APIKey) == "" {
		return ErrNoAPIKey
	}
	return nil
}

// =============================================================================
// CLIENT CONSTRUCTION
// =============================================================================

// CloudOptions converts the cloud section into completion client options.
func (c *Config) CloudOptions() cloud.Options {
	return cloud.Options{
		APIKey:       c.Cloud.APIKey,
		BaseURL:      c.Cloud.BaseURL,
		Model:        c.Cloud.Model,
		SystemPrompt: c.Cloud.SystemPrompt,
		SiteURL:      c.Cloud.SiteURL,
		SiteName:     c.Cloud.SiteName,
	}
}

// CloudChanged reports whether other would build a different completion
// client than c.
func (c *Config) CloudChanged(other *Config) bool {
	return c.Cloud != other.Cloud
}

// =============================================================================
// DISPLAY
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as JSON with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Cloud.APIKey != "" {
		safe.Cloud.APIKey = cloud.MaskAPIKey(safe.Cloud.APIKey)
	}
	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}
