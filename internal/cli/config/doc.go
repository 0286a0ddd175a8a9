// Package config defines the replay tool's configuration.
//
//   - spec.go: Config struct (~/.xla-replay/config.yaml)
//   - loader.go: loading and merging of file, environment and defaults
package config
