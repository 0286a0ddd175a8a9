package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jprabhas/openxla-xla/internal/infra/confloader"
)

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".xla-replay", "config.yaml")
}

// Load builds the effective configuration: defaults, overlaid by the
// YAML file (if present), overlaid by XLA_REPLAY_* environment
// variables. An empty path falls back to DefaultConfigPath; a missing
// file at that default is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		path = ""
	}

	cfg := Default()
	loader := confloader.NewLoader(confloader.WithConfigFile(path))
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
