// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// json_output.go - JSON output for scripting (--json).
//
// Human-readable messages go to stderr when JSON mode is enabled.

package cli

import (
	"encoding/json"
	"io"
)

// AskResult is the --json output of the ask command.
type AskResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	OK       bool   `json:"ok"`
}

// VersionData is the --json output of the version command.
type VersionData struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version,omitempty"`
}

// ConfigData is the --json output of config show.
type ConfigData struct {
	Path          string `json:"config_path"`
	APIKeySet     bool   `json:"api_key_configured"`
	APIKeyMasked  string `json:"api_key,omitempty"`
	APIKeyWarning string `json:"api_key_warning,omitempty"`
	BaseURL       string `json:"base_url"`
	Model         string `json:"model"`
	SystemPrompt  string `json:"system_prompt"`
	SiteURL       string `json:"site_url,omitempty"`
	SiteName      string `json:"site_name"`
	Markdown      bool   `json:"markdown"`
	Placeholder   string `json:"placeholder"`
	Theme         string `json:"theme"`
	LogLevel      string `json:"log_level"`
	LogFormat     string `json:"log_format"`
	LogPath       string `json:"log_path,omitempty"`
}

// writeJSON encodes v to w with indentation.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
