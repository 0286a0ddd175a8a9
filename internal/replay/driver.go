package replay

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jprabhas/openxla-xla/internal/backend"
	"github.com/jprabhas/openxla-xla/internal/hlo"
	"github.com/jprabhas/openxla-xla/internal/snapshot"
	"github.com/jprabhas/openxla-xla/internal/telemetry/logger"
)

// Result is the outcome of replaying one snapshot.
type Result struct {
	// Literal is the fetched result of the final run, nil when result
	// fetching is disabled.
	Literal *hlo.Literal

	// ComputationName identifies the replayed module.
	ComputationName string
}

// Runner replays a single snapshot against a backend.
type Runner struct {
	client backend.Client
	log    logger.Logger
	gen    *hlo.Generator

	// fatal handles unrecoverable mid-flight failures such as a feed
	// push the backend rejected. The worker cannot return an error to
	// anyone, so it escalates here instead.
	fatal func(error)
}

// NewRunner creates a Runner bound to the given backend client.
func NewRunner(client backend.Client, log logger.Logger) *Runner {
	return &Runner{
		client: client,
		log:    log,
		gen:    hlo.NewGenerator(time.Now().UnixNano()),
		fatal: func(err error) {
			log.Error("fatal replay error", "error", err)
			os.Exit(2)
		},
	}
}

// Replay executes the snapshot's computation according to opts and
// returns the outcome of the final run. Argument resolution completes
// before the feed worker starts, and the worker is joined before Replay
// returns, success or failure.
func (r *Runner) Replay(ctx context.Context, snap *snapshot.Snapshot, opts Options) (*Result, error) {
	comp, err := r.client.LoadComputation(ctx, &snap.Module)
	if err != nil {
		return nil, fmt.Errorf("load computation: %w", err)
	}

	args, err := ResolveArguments(ctx, r.client, comp, snap, opts)
	if err != nil {
		return nil, err
	}
	r.log.Debug("arguments resolved", "computation", snap.Module.Name, "count", len(args))

	plan, err := ResolveInfeed(snap, opts)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	if plan.Active() {
		r.log.Info("starting infeed worker",
			"shape", plan.Shape.HumanString(), "count", plan.Count)
		wg.Add(1)
		go r.feedInfeed(ctx, plan, &wg)
	}
	defer wg.Wait()

	res := &Result{ComputationName: snap.Module.Name}
	for run := 1; run <= opts.NumRuns; run++ {
		execOpts := backend.ExecOptions{
			HloProfile: opts.ProfileLastRun && run == opts.NumRuns,
		}

		var profile backend.Profile
		if opts.PrintResult {
			var lit hlo.Literal
			lit, profile, err = r.client.ExecuteAndFetch(ctx, comp, args, execOpts)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", run, err)
			}
			res.Literal = &lit
		} else {
			profile, err = r.client.Execute(ctx, comp, args, execOpts)
			if err != nil {
				return nil, fmt.Errorf("run %d: %w", run, err)
			}
		}
		r.log.Info("execution complete",
			"computation", snap.Module.Name, "run", run,
			"compute_time", profile.ComputeTime)
	}

	return res, nil
}

// feedInfeed pushes Count synthetic buffers of the planned shape, each
// freshly generated so consecutive pushes carry distinct data. A
// rejected push leaves the device queue in an unknown state, so it
// escalates through the fatal handler instead of being skipped.
func (r *Runner) feedInfeed(ctx context.Context, plan InfeedPlan, wg *sync.WaitGroup) {
	defer wg.Done()

	for i := 1; i <= plan.Count; i++ {
		lit, err := r.gen.Literal(plan.Shape)
		if err != nil {
			r.fatal(fmt.Errorf("generate infeed literal: %w", err))
			return
		}
		if err := r.client.TransferToInfeed(ctx, lit); err != nil {
			r.fatal(fmt.Errorf("infeed push %d of %d: %w", i, plan.Count, err))
			return
		}
		r.log.Debug("infeed push complete", "push", i, "of", plan.Count)
	}
}
