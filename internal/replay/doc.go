// Package replay contains the replay orchestration logic: deciding what
// inputs to supply for a captured computation (recorded vs. synthetic),
// whether to drive a concurrent streaming-input feed, how many times to
// execute, and how to report results and errors per input file.
//
// Failures come in two kinds and are never conflated: per-file errors,
// which the batch controller reports and skips past, and FatalError,
// which indicates a broken invocation or unrecoverable backend state and
// aborts the whole process.
package replay
