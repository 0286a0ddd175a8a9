// Package main provides the entry point for replay-computation.
//
// replay-computation replays captured computation snapshots against an
// execution backend and prints each computation's result.
package main

import (
	"fmt"
	"os"

	"github.com/jprabhas/openxla-xla/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
