package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jprabhas/openxla-xla/internal/snapshot"
)

// InspectCommand returns the inspect subcommand, which summarizes
// snapshot files without contacting a backend.
func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print a summary of snapshot files",
		ArgsUsage: "SNAPSHOT_FILE [SNAPSHOT_FILE...]",
		Action:    runInspect,
	}
}

func runInspect(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		return fmt.Errorf("at least one snapshot file is required")
	}

	failed := false
	for _, path := range paths {
		snap, err := snapshot.Read(path)
		if err != nil {
			fmt.Fprintf(c.App.ErrWriter, "%s: is not a valid snapshot: %v\n", path, err)
			failed = true
			continue
		}

		w := c.App.Writer
		fmt.Fprintf(w, "%s:\n", path)
		fmt.Fprintf(w, "  module: %s\n", snap.Module.Name)
		fmt.Fprintf(w, "  computations: %d\n", len(snap.Module.Computations))
		fmt.Fprintf(w, "  instructions: %d\n", snap.Module.InstructionCount())

		params := snap.Module.ParameterShapes()
		fmt.Fprintf(w, "  parameters: %d\n", len(params))
		for i, shape := range params {
			fmt.Fprintf(w, "    %d: %s\n", i, shape.HumanString())
		}

		fmt.Fprintf(w, "  recorded arguments: %d\n", len(snap.Arguments))
		for i, arg := range snap.Arguments {
			fmt.Fprintf(w, "    %d: %s\n", i, arg.Shape().HumanString())
		}

		if snap.HasResult() {
			fmt.Fprintf(w, "  recorded result: %s\n", snap.Result.Shape().HumanString())
		} else {
			fmt.Fprintf(w, "  recorded result: none\n")
		}

		if infeeds := snap.Module.InfeedShapes(); len(infeeds) > 0 {
			fmt.Fprintf(w, "  infeeds: %d\n", len(infeeds))
			for i, shape := range infeeds {
				fmt.Fprintf(w, "    %d: %s\n", i, shape.HumanString())
			}
		}
	}

	if failed {
		return fmt.Errorf("one or more snapshot files are invalid")
	}
	return nil
}
