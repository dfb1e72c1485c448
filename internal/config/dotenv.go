// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads KEY=VALUE pairs from each existing file into the process
// environment. Variables already set are never overwritten, so real
// environment values win over .env files. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// dotEnvPaths returns the .env files consulted for a config file: one in the
// working directory, then one next to the config file.
func dotEnvPaths(configPath string) []string {
	paths := []string{dotEnvFileName}
	sibling := filepath.Join(filepath.Dir(configPath), dotEnvFileName)
	if abs, err := filepath.Abs(sibling); err == nil {
		if cwd, err := filepath.Abs(dotEnvFileName); err == nil && abs == cwd {
			return paths
		}
	}
	return append(paths, sibling)
}
