package snapshot

import (
	"github.com/jprabhas/openxla-xla/internal/hlo"
)

// Snapshot is a captured computation: the graph plus optionally the
// inputs it ran with and the result it produced. Argument order is
// parameter order.
type Snapshot struct {
	Module    hlo.Module
	Arguments []hlo.Literal
	Result    *hlo.Literal
}

// HasResult reports whether the capture recorded an expected result.
func (s *Snapshot) HasResult() bool { return s.Result != nil }
