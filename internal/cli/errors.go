// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// errors.go - Error types and exit codes for the devops-assistant commands.
//
// Commands return errors; main prints them and exits with GetExitCode.

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/jeranaias/devops-assistant/internal/cloud"
	"github.com/jeranaias/devops-assistant/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError covers failed completions and unknown errors
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates a configuration file or settings error
	ExitConfigError = 3
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError is returned for invalid command-line usage.
type UsageError struct {
	Reason  string
	Example string
}

func (e *UsageError) Error() string {
	if e.Example != "" {
		return fmt.Sprintf("%s\nUsage: %s", e.Reason, e.Example)
	}
	return e.Reason
}

// CompletionFailedError is returned by ask when the completion failed. The
// failure placeholder has already been printed.
type CompletionFailedError struct {
	Err error
}

func (e *CompletionFailedError) Error() string {
	if e.Err == nil {
		return "completion failed"
	}
	return "completion failed: " + e.Err.Error()
}

func (e *CompletionFailedError) Unwrap() error {
	return e.Err
}

// =============================================================================
// EXIT CODE MAPPING
// =============================================================================

// GetExitCode determines the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return ExitUsageError
	}

	// A failed completion outranks its cause, which may be a missing key.
	var failed *CompletionFailedError
	if errors.As(err, &failed) {
		return ExitGeneralError
	}

	var validateErrs config.ValidateErrors
	if errors.As(err, &validateErrs) ||
		errors.Is(err, config.ErrNoAPIKey) ||
		errors.Is(err, cloud.ErrNotConfigured) {
		return ExitConfigError
	}

	return ExitGeneralError
}

// DisplayError writes err to w in the "Error: ..." form main uses.
func DisplayError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(w, "%s %v\n", RenderConditional(ErrorStyle, "Error:"), err)
}
