package replay

import "fmt"

// Options control one replay invocation. They are resolved once at
// startup and never change mid-batch.
type Options struct {
	// UseFakeData replaces recorded arguments with backend-synthesized
	// ones for every parameter.
	UseFakeData bool

	// PrintResult fetches the result of each run back to the host.
	// Disabling it skips a potentially expensive device-to-host transfer.
	PrintResult bool

	// NumRuns is how many times to execute each computation.
	NumRuns int

	// NumInfeeds is how many synthetic buffers to push when a
	// streaming-input plan is active.
	NumInfeeds int

	// FakeInfeedShape, when set, is the textual shape of synthetic
	// streaming-input data. Takes precedence over GenerateFakeInfeed.
	FakeInfeedShape string

	// GenerateFakeInfeed derives the streaming-input shape from the
	// computation's single infeed instruction.
	GenerateFakeInfeed bool

	// ProfileLastRun enables detailed profiling on the final run only.
	ProfileLastRun bool
}

// DefaultOptions returns the defaults for a replay invocation.
func DefaultOptions() Options {
	return Options{
		PrintResult: true,
		NumRuns:     1,
		NumInfeeds:  10,
	}
}

// Validate rejects option values that cannot describe a replay.
func (o Options) Validate() error {
	if o.NumRuns < 1 {
		return fmt.Errorf("num_runs must be positive, got %d", o.NumRuns)
	}
	if o.NumInfeeds < 1 {
		return fmt.Errorf("num_infeeds must be positive, got %d", o.NumInfeeds)
	}
	return nil
}
