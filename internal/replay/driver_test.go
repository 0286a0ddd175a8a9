package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/jprabhas/openxla-xla/internal/backend"
	"github.com/jprabhas/openxla-xla/internal/hlo"
	"github.com/jprabhas/openxla-xla/internal/snapshot"
	"github.com/jprabhas/openxla-xla/internal/telemetry/logger"
)

// fakeClient is a scripted in-memory backend. It records every call so
// tests can assert on ordering, counts and options.
type fakeClient struct {
	mu sync.Mutex

	loaded    []string
	transfers []hlo.Literal
	fakeCalls int
	execOpts  []backend.ExecOptions
	fetched   []bool
	infeeds   []hlo.Literal

	fakeArgs []backend.DataHandle
	result   hlo.Literal

	loadErr     error
	transferErr error
	fakeErr     error
	execErr     error
	infeedErr   error
}

func (c *fakeClient) LoadComputation(_ context.Context, m *hlo.Module) (backend.ComputationHandle, error) {
	c.loaded = append(c.loaded, m.Name)
	if c.loadErr != nil {
		return "", c.loadErr
	}
	return backend.ComputationHandle("comp-1"), nil
}

func (c *fakeClient) TransferToBackend(_ context.Context, lit hlo.Literal) (backend.DataHandle, error) {
	if c.transferErr != nil {
		return "", c.transferErr
	}
	c.transfers = append(c.transfers, lit)
	return backend.DataHandle(fmt.Sprintf("data-%d", len(c.transfers))), nil
}

func (c *fakeClient) MakeFakeArguments(_ context.Context, _ backend.ComputationHandle) ([]backend.DataHandle, error) {
	c.fakeCalls++
	if c.fakeErr != nil {
		return nil, c.fakeErr
	}
	return c.fakeArgs, nil
}

func (c *fakeClient) ExecuteAndFetch(_ context.Context, _ backend.ComputationHandle, _ []backend.DataHandle, opts backend.ExecOptions) (hlo.Literal, backend.Profile, error) {
	c.execOpts = append(c.execOpts, opts)
	c.fetched = append(c.fetched, true)
	if c.execErr != nil {
		return hlo.Literal{}, backend.Profile{}, c.execErr
	}
	return c.result, backend.Profile{}, nil
}

func (c *fakeClient) Execute(_ context.Context, _ backend.ComputationHandle, _ []backend.DataHandle, opts backend.ExecOptions) (backend.Profile, error) {
	c.execOpts = append(c.execOpts, opts)
	c.fetched = append(c.fetched, false)
	if c.execErr != nil {
		return backend.Profile{}, c.execErr
	}
	return backend.Profile{}, nil
}

func (c *fakeClient) TransferToInfeed(_ context.Context, lit hlo.Literal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.infeedErr != nil {
		return c.infeedErr
	}
	c.infeeds = append(c.infeeds, lit)
	return nil
}

func (c *fakeClient) Close() error { return nil }

func testLogger() logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

// newTestRunner wires a Runner whose fatal handler records instead of
// exiting. Fatal errors are read only after Replay returns, which is
// safe because the feed worker is joined by then.
func newTestRunner(c backend.Client) (*Runner, *[]error) {
	fatals := &[]error{}
	r := &Runner{
		client: c,
		log:    testLogger(),
		gen:    hlo.NewGenerator(1),
		fatal:  func(err error) { *fatals = append(*fatals, err) },
	}
	return r, fatals
}

func testSnapshot() *snapshot.Snapshot {
	return &snapshot.Snapshot{
		Module: hlo.Module{
			Name: "add_one",
			Computations: []hlo.Computation{{
				Name: "add_one.entry",
				Instructions: []hlo.Instruction{
					{Opcode: hlo.OpcodeParameter, Name: "p0", Shape: hlo.ScalarShape(hlo.S32)},
					{Opcode: "add", Name: "sum", Shape: hlo.ScalarShape(hlo.S32)},
				},
			}},
		},
		Arguments: []hlo.Literal{hlo.ScalarS32(41)},
	}
}

func infeedSnapshot(shapes ...hlo.Shape) *snapshot.Snapshot {
	snap := testSnapshot()
	for i, s := range shapes {
		snap.Module.Computations[0].Instructions = append(
			snap.Module.Computations[0].Instructions,
			hlo.Instruction{Opcode: hlo.OpcodeInfeed, Name: fmt.Sprintf("infeed.%d", i), Shape: s},
		)
	}
	return snap
}

func TestReplay_SingleRun(t *testing.T) {
	client := &fakeClient{result: hlo.ScalarS32(42)}
	r, _ := newTestRunner(client)

	res, err := r.Replay(context.Background(), testSnapshot(), DefaultOptions())
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if res.ComputationName != "add_one" {
		t.Fatalf("ComputationName = %q, want %q", res.ComputationName, "add_one")
	}
	if res.Literal == nil || !res.Literal.Equal(hlo.ScalarS32(42)) {
		t.Fatalf("Literal = %v, want 42", res.Literal)
	}
	if len(client.loaded) != 1 || client.loaded[0] != "add_one" {
		t.Fatalf("loaded = %v, want [add_one]", client.loaded)
	}
	if len(client.transfers) != 1 || !client.transfers[0].Equal(hlo.ScalarS32(41)) {
		t.Fatalf("transfers = %v, want recorded argument", client.transfers)
	}
}

func TestReplay_NumRuns(t *testing.T) {
	client := &fakeClient{result: hlo.ScalarS32(7)}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.NumRuns = 5
	res, err := r.Replay(context.Background(), testSnapshot(), opts)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(client.execOpts) != 5 {
		t.Fatalf("executions = %d, want 5", len(client.execOpts))
	}
	if res.Literal == nil || !res.Literal.Equal(hlo.ScalarS32(7)) {
		t.Fatalf("Literal = %v, want last run result", res.Literal)
	}
}

func TestReplay_NoPrintResultSkipsFetch(t *testing.T) {
	client := &fakeClient{}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.PrintResult = false
	opts.NumRuns = 2
	res, err := r.Replay(context.Background(), testSnapshot(), opts)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if res.Literal != nil {
		t.Fatalf("Literal = %v, want nil", res.Literal)
	}
	for i, fetched := range client.fetched {
		if fetched {
			t.Fatalf("run %d fetched its result, want execute-only", i+1)
		}
	}
}

func TestReplay_ProfileLastRunOnly(t *testing.T) {
	client := &fakeClient{result: hlo.ScalarS32(0)}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.NumRuns = 3
	opts.ProfileLastRun = true
	if _, err := r.Replay(context.Background(), testSnapshot(), opts); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}

	want := []bool{false, false, true}
	for i, o := range client.execOpts {
		if o.HloProfile != want[i] {
			t.Fatalf("run %d HloProfile = %v, want %v", i+1, o.HloProfile, want[i])
		}
	}
}

func TestReplay_FakeDataSkipsRecordedArguments(t *testing.T) {
	client := &fakeClient{
		result:   hlo.ScalarS32(1),
		fakeArgs: []backend.DataHandle{"fake-1"},
	}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.UseFakeData = true
	if _, err := r.Replay(context.Background(), testSnapshot(), opts); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if client.fakeCalls != 1 {
		t.Fatalf("fakeCalls = %d, want 1", client.fakeCalls)
	}
	if len(client.transfers) != 0 {
		t.Fatalf("transfers = %d, want 0 with fake data", len(client.transfers))
	}
}

func TestReplay_InfeedWorkerPushesFreshLiterals(t *testing.T) {
	client := &fakeClient{result: hlo.ScalarS32(0)}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.GenerateFakeInfeed = true
	opts.NumInfeeds = 4
	snap := infeedSnapshot(hlo.ArrayShape(hlo.F32, 3))

	if _, err := r.Replay(context.Background(), snap, opts); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(client.infeeds) != 4 {
		t.Fatalf("infeed pushes = %d, want 4", len(client.infeeds))
	}
	for i, lit := range client.infeeds {
		if !lit.Shape().Equal(hlo.ArrayShape(hlo.F32, 3)) {
			t.Fatalf("push %d shape = %s, want f32[3]", i+1, lit.Shape().HumanString())
		}
	}
	// Consecutive pushes carry distinct synthetic data.
	if client.infeeds[0].Equal(client.infeeds[1]) {
		t.Fatal("pushes 1 and 2 are identical, want fresh data per push")
	}
}

func TestReplay_InfeedPushFailureIsFatal(t *testing.T) {
	client := &fakeClient{
		result:    hlo.ScalarS32(0),
		infeedErr: errors.New("device queue full"),
	}
	r, fatals := newTestRunner(client)

	opts := DefaultOptions()
	opts.FakeInfeedShape = "s32[2]"
	if _, err := r.Replay(context.Background(), testSnapshot(), opts); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(*fatals) != 1 {
		t.Fatalf("fatal handler calls = %d, want 1", len(*fatals))
	}
	if got := (*fatals)[0].Error(); got == "" || !errors.Is((*fatals)[0], client.infeedErr) {
		t.Fatalf("fatal error = %v, want wrapped push failure", (*fatals)[0])
	}
}

func TestReplay_TwoInfeedsIsFatal(t *testing.T) {
	client := &fakeClient{result: hlo.ScalarS32(0)}
	r, _ := newTestRunner(client)

	opts := DefaultOptions()
	opts.GenerateFakeInfeed = true
	snap := infeedSnapshot(hlo.ScalarShape(hlo.S32), hlo.ScalarShape(hlo.F32))

	_, err := r.Replay(context.Background(), snap, opts)
	if !IsFatal(err) {
		t.Fatalf("Replay() error = %v, want fatal", err)
	}
	if len(client.infeeds) != 0 {
		t.Fatalf("infeed pushes = %d, want 0", len(client.infeeds))
	}
}

func TestReplay_LoadFailure(t *testing.T) {
	client := &fakeClient{loadErr: errors.New("backend unavailable")}
	r, _ := newTestRunner(client)

	_, err := r.Replay(context.Background(), testSnapshot(), DefaultOptions())
	if err == nil || IsFatal(err) {
		t.Fatalf("Replay() error = %v, want plain per-file error", err)
	}
}

func TestReplay_ExecutionFailure(t *testing.T) {
	client := &fakeClient{execErr: errors.New("out of memory")}
	r, _ := newTestRunner(client)

	_, err := r.Replay(context.Background(), testSnapshot(), DefaultOptions())
	if err == nil || !errors.Is(err, client.execErr) {
		t.Fatalf("Replay() error = %v, want wrapped execution failure", err)
	}
}
