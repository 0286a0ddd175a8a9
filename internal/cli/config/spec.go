package config

import (
	"fmt"
	"time"
)

// Config is the replay tool's configuration.
type Config struct {
	Backend BackendConfig `koanf:"backend"`
	Log     LogConfig     `koanf:"log"`
}

// BackendConfig locates the execution backend.
type BackendConfig struct {
	// Address is the backend endpoint, host:port or a full URL.
	Address string `koanf:"address"`
	// Timeout bounds each backend request, as a Go duration string.
	Timeout string `koanf:"timeout"`
}

// TimeoutDuration parses the request timeout.
func (b BackendConfig) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(b.Timeout)
	if err != nil {
		return 0, fmt.Errorf("backend.timeout: %w", err)
	}
	return d, nil
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			Address: "localhost:8471",
			Timeout: "30s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate rejects configurations the tool cannot run with.
func (c *Config) Validate() error {
	if c.Backend.Address == "" {
		return fmt.Errorf("backend.address must not be empty")
	}
	if _, err := c.Backend.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}
