// Package confloader loads tool configuration from layered sources.
//
// It uses koanf with the priority: flag > environment > file > default.
// Flags are merged last by the command layer through LoadMap.
package confloader
