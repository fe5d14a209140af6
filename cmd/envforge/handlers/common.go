// Package handlers implements the command execution logic for the envforge
// CLI. Commands in the commands package parse flags and delegate here.
package handlers

import (
	"errors"
	"fmt"
	"os"

	"github.com/envforge/envforge/internal/config"
)

// loadConfig loads and validates the environment configuration. If
// configPath is empty, it looks for envforge.yaml in the current directory.
func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no config file found at %s: %w\nRun 'envforge init' to create one", configPath, err)
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
