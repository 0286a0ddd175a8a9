package replay

import (
	"context"
	"fmt"
	"io"

	"github.com/jprabhas/openxla-xla/internal/snapshot"
	"github.com/jprabhas/openxla-xla/internal/telemetry/logger"
)

// Batch replays a sequence of snapshot files in order, reporting
// per-file outcomes. Results go to Stdout, error lines to Stderr.
type Batch struct {
	Runner *Runner
	Stdout io.Writer
	Stderr io.Writer
	Log    logger.Logger
}

// Run replays each file in paths in order. A file that fails to load or
// replay is reported on Stderr and skipped; remaining files still run.
// A fatal error aborts the batch immediately. Run returns ErrFilesFailed
// if any file failed, nil if all succeeded.
func (b *Batch) Run(ctx context.Context, paths []string, opts Options) error {
	failed := false
	for _, path := range paths {
		snap, err := snapshot.Read(path)
		if err != nil {
			fmt.Fprintf(b.Stderr, "%s: is not a valid snapshot: %v\n", path, err)
			failed = true
			continue
		}

		res, err := b.Runner.Replay(ctx, snap, opts)
		if err != nil {
			if IsFatal(err) {
				return err
			}
			fmt.Fprintf(b.Stderr, "%s: error: %v\n", path, err)
			failed = true
			continue
		}

		b.Log.Info("replay complete", "path", path, "computation", res.ComputationName)
		if res.Literal != nil {
			fmt.Fprintf(b.Stdout, "%s: %s :: %s:%s\n",
				path, res.ComputationName, res.Literal.Shape().HumanString(), res.Literal)
			if snap.HasResult() {
				fmt.Fprintf(b.Stdout, "was %s:%s\n",
					snap.Result.Shape().HumanString(), snap.Result)
			}
		}
	}

	if failed {
		return ErrFilesFailed
	}
	return nil
}
