package command

import (
	"time"

	"github.com/urfave/cli/v2"

	"github.com/jprabhas/openxla-xla/internal/backend"
	"github.com/jprabhas/openxla-xla/internal/cli/config"
	"github.com/jprabhas/openxla-xla/internal/infra/buildinfo"
	"github.com/jprabhas/openxla-xla/internal/telemetry/logger"
)

// newBackendClient builds the backend client for a replay. Tests swap
// it for an in-memory fake.
var newBackendClient = func(address string, timeout time.Duration) backend.Client {
	return backend.NewHTTPClient(address, timeout)
}

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:      "replay-computation",
		Usage:     "Replay captured computation snapshots against an execution backend",
		Version:   buildinfo.String(),
		ArgsUsage: "SNAPSHOT_FILE [SNAPSHOT_FILE...]",
		Flags:     append(globalFlags(), replayFlags()...),
		Action:    runReplay,
		Commands: []*cli.Command{
			InspectCommand(),
		},
	}
	return app
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Execution backend address (e.g., localhost:8471)",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Config file path (default: ~/.xla-replay/config.yaml)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
	}
}

// loadConfig resolves the effective configuration: file and environment
// via config.Load, then explicit flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("backend") {
		cfg.Backend.Address = c.String("backend")
	}
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger builds the diagnostic logger and installs it as the
// process default.
func setupLogger(cfg *config.Config) logger.Logger {
	log := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	logger.SetDefault(log)
	return log
}
