// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// devops-assistant.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - CloudConfig: Completion endpoint, model and credential
//   - Overrides: Command-line flag values
//   - Watcher: Reloads the config file when it changes
//
// # Configuration Precedence
//
// Configuration is resolved from (highest precedence first):
//   - Command-line flags (Overrides)
//   - Environment variables (OPENROUTER_API_KEY, DEVOPS_ASSISTANT_*)
//   - .env files in the working directory and the config directory
//   - ~/.devops-assistant/config.toml
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//	cfg.ApplyOverrides(config.Overrides{Model: flagModel})
//	if err := cfg.RequireAPIKey(); err != nil {
//	    return err
//	}
//	client := cloud.NewClient(cfg.CloudOptions())
package config
