// Package shutdown provides interrupt handling for long replays.
package shutdown

import (
	"context"
	"os/signal"
	"syscall"
)

// Context returns a context canceled on SIGINT or SIGTERM. The stop
// function releases the signal registration; a second signal after
// cancellation terminates the process with the default behavior.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
