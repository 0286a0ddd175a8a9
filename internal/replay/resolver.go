package replay

import (
	"context"
	"fmt"

	"github.com/jprabhas/openxla-xla/internal/backend"
	"github.com/jprabhas/openxla-xla/internal/hlo"
	"github.com/jprabhas/openxla-xla/internal/snapshot"
)

// InfeedMode selects where the streaming-input shape comes from.
type InfeedMode int

const (
	// InfeedNone disables streaming input for the file.
	InfeedNone InfeedMode = iota
	// InfeedFromShape uses an explicitly supplied shape.
	InfeedFromShape
	// InfeedFromModule uses the shape of the module's single infeed
	// instruction.
	InfeedFromModule
)

// InfeedPlan describes the streaming-input work for one file.
type InfeedPlan struct {
	Mode  InfeedMode
	Shape hlo.Shape
	Count int
}

// Active reports whether the plan requires a feed worker.
func (p InfeedPlan) Active() bool { return p.Mode != InfeedNone }

// ResolveArguments produces the device-side argument handles for one
// execution, either synthesized by the backend or transferred from the
// recorded literals in their captured order. Any failure aborts
// resolution for the file.
func ResolveArguments(ctx context.Context, client backend.Client, comp backend.ComputationHandle, snap *snapshot.Snapshot, opts Options) ([]backend.DataHandle, error) {
	if opts.UseFakeData {
		handles, err := client.MakeFakeArguments(ctx, comp)
		if err != nil {
			return nil, fmt.Errorf("make fake arguments: %w", err)
		}
		return handles, nil
	}

	handles := make([]backend.DataHandle, 0, len(snap.Arguments))
	for i, arg := range snap.Arguments {
		h, err := client.TransferToBackend(ctx, arg)
		if err != nil {
			return nil, fmt.Errorf("transfer argument %d: %w", i, err)
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// ResolveInfeed decides the streaming-input plan for one file. An
// explicit shape wins over derivation from the module; neither option
// set means no streaming input. A malformed explicit shape or an
// ambiguous module (more than one infeed instruction anywhere in it)
// is a fatal invocation error, not a per-file one.
func ResolveInfeed(snap *snapshot.Snapshot, opts Options) (InfeedPlan, error) {
	if opts.FakeInfeedShape != "" {
		shape, err := hlo.ParseShape(opts.FakeInfeedShape)
		if err != nil {
			return InfeedPlan{}, fatalf("parse fake_infeed_shape %q: %w", opts.FakeInfeedShape, err)
		}
		return InfeedPlan{Mode: InfeedFromShape, Shape: shape, Count: opts.NumInfeeds}, nil
	}

	if opts.GenerateFakeInfeed {
		shapes := snap.Module.InfeedShapes()
		switch len(shapes) {
		case 0:
			return InfeedPlan{Mode: InfeedNone}, nil
		case 1:
			return InfeedPlan{Mode: InfeedFromModule, Shape: shapes[0], Count: opts.NumInfeeds}, nil
		default:
			return InfeedPlan{}, fatalf("module %s has %d infeed instructions, cannot generate fake infeed", snap.Module.Name, len(shapes))
		}
	}

	return InfeedPlan{Mode: InfeedNone}, nil
}
