package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/jprabhas/openxla-xla/internal/infra/shutdown"
	"github.com/jprabhas/openxla-xla/internal/replay"
)

func replayFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "use_fake_data",
			Usage: "Replace recorded arguments with backend-synthesized fake data",
		},
		&cli.BoolFlag{
			Name:  "print_result",
			Value: true,
			Usage: "Fetch and print the result of each computation",
		},
		&cli.IntFlag{
			Name:  "num_runs",
			Value: 1,
			Usage: "Number of times to execute each computation",
		},
		&cli.IntFlag{
			Name:  "num_infeeds",
			Value: 10,
			Usage: "Number of synthetic infeed buffers to push",
		},
		&cli.StringFlag{
			Name:  "fake_infeed_shape",
			Usage: "Shape of synthetic infeed data (e.g., f32[8,128])",
		},
		&cli.BoolFlag{
			Name:  "generate_fake_infeed",
			Usage: "Derive the infeed shape from the computation's infeed instruction",
		},
		&cli.BoolFlag{
			Name:  "xla_hlo_profile_last_run",
			Usage: "Enable detailed profiling on the final run",
		},
	}
}

func parseOptions(c *cli.Context) (replay.Options, error) {
	opts := replay.Options{
		UseFakeData:        c.Bool("use_fake_data"),
		PrintResult:        c.Bool("print_result"),
		NumRuns:            c.Int("num_runs"),
		NumInfeeds:         c.Int("num_infeeds"),
		FakeInfeedShape:    c.String("fake_infeed_shape"),
		GenerateFakeInfeed: c.Bool("generate_fake_infeed"),
		ProfileLastRun:     c.Bool("xla_hlo_profile_last_run"),
	}
	if err := opts.Validate(); err != nil {
		return replay.Options{}, err
	}
	return opts, nil
}

func runReplay(c *cli.Context) error {
	paths := c.Args().Slice()
	if len(paths) == 0 {
		fmt.Fprintf(c.App.ErrWriter, "usage: %s [options] %s\n", c.App.Name, c.App.ArgsUsage)
		return fmt.Errorf("at least one snapshot file is required")
	}

	opts, err := parseOptions(c)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	log := setupLogger(cfg)

	timeout, err := cfg.Backend.TimeoutDuration()
	if err != nil {
		return err
	}
	client := newBackendClient(cfg.Backend.Address, timeout)
	defer client.Close()

	ctx, stop := shutdown.Context(context.Background())
	defer stop()

	batch := &replay.Batch{
		Runner: replay.NewRunner(client, log),
		Stdout: c.App.Writer,
		Stderr: c.App.ErrWriter,
		Log:    log,
	}
	return batch.Run(ctx, paths, opts)
}
