package backend

import (
	"context"
	"time"

	"github.com/jprabhas/openxla-xla/internal/hlo"
)

// ComputationHandle identifies a computation loaded on the backend.
type ComputationHandle string

// DataHandle identifies a device-resident value owned by the backend.
type DataHandle string

// ExecOptions are per-run execution options. A fresh value is built for
// every run.
type ExecOptions struct {
	// HloProfile enables detailed per-instruction profiling for the run.
	HloProfile bool
}

// Profile is the timing profile the backend reports for one execution.
type Profile struct {
	ComputeTime time.Duration
}

// Client is the execution backend capability set the replay core depends
// on. All calls block until the backend acknowledges them.
type Client interface {
	// LoadComputation registers a computation graph with the backend and
	// returns a handle for executing it.
	LoadComputation(ctx context.Context, module *hlo.Module) (ComputationHandle, error)

	// TransferToBackend moves a literal into device memory.
	TransferToBackend(ctx context.Context, lit hlo.Literal) (DataHandle, error)

	// MakeFakeArguments asks the backend to synthesize one argument per
	// declared parameter of the computation, in parameter order.
	MakeFakeArguments(ctx context.Context, comp ComputationHandle) ([]DataHandle, error)

	// ExecuteAndFetch runs the computation and transfers the result back.
	ExecuteAndFetch(ctx context.Context, comp ComputationHandle, args []DataHandle, opts ExecOptions) (hlo.Literal, Profile, error)

	// Execute runs the computation without fetching the result, which can
	// be significantly cheaper for large outputs.
	Execute(ctx context.Context, comp ComputationHandle, args []DataHandle, opts ExecOptions) (Profile, error)

	// TransferToInfeed pushes one literal to the streaming-input channel,
	// waiting for the backend to accept it.
	TransferToInfeed(ctx context.Context, lit hlo.Literal) error

	// Close releases the backend session and any data it still holds.
	Close() error
}
