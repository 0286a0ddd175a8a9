package replay

import (
	"errors"
	"fmt"
)

// ErrFilesFailed reports that at least one snapshot file failed to
// replay. The batch still processed every file.
var ErrFilesFailed = errors.New("replay: one or more snapshot files failed")

// FatalError marks a failure the batch controller must not recover from:
// a malformed invocation or a corrupted backend state rather than a
// per-file data problem.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return e.Err.Error() }

func (e *FatalError) Unwrap() error { return e.Err }

func fatalf(format string, args ...any) error {
	return &FatalError{Err: fmt.Errorf(format, args...)}
}

// IsFatal reports whether err is (or wraps) a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
