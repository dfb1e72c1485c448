// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the UI and config packages.
//
// # Key Functions
//
// String Utilities:
//   - StringWidth, TruncateWidth, PadRight: terminal-column aware layout
//   - Indent: align continuation lines under a label
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	title := util.TruncateWidth("DevOps Assistant 🤖", width)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
