// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cloud provides the OpenRouter completion client.
//
// The client is a stateless adapter: one trimmed user input goes out together
// with a fixed system persona, and one reply string (or a typed failure) comes
// back. No conversation history is sent and there are no retries.
//
// # Key Types
//
//   - Client: OpenRouter chat-completions client built on go-openai
//   - Options: API key, endpoint, model and attribution settings
//   - CompletionError: typed failure carrying the underlying cause
//
// # Usage
//
//	client := cloud.NewClient(cloud.Options{
//	    APIKey: os.Getenv("OPENROUTER_API_KEY"),
//	    Model:  cloud.DefaultModel,
//	})
//	reply, err := client.Complete(ctx, "How do I roll back a Helm release?")
//
// # Security
//
// The API key is never logged. Use KeyFingerprint to correlate log lines
// with a key.
package cloud
