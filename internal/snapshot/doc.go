// Package snapshot reads and writes captured computation snapshots.
//
// A snapshot file is a single binary record: the computation module, zero
// or more recorded argument literals (in parameter order), and an optional
// recorded expected-result literal.
//
// File layout: magic bytes, a big-endian uint32 payload length, the
// protobuf wire-format payload, and a sha256 checksum trailer covering
// everything before it.
package snapshot
