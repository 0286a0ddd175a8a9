// Package command defines the replay-computation command line surface.
//
// The root action replays snapshot files against the configured
// execution backend; the inspect subcommand summarizes snapshot files
// without contacting a backend.
package command
