// Package hlo defines the domain model for captured computations:
// primitive types, shapes, literals, and the module/instruction graph
// carried inside a snapshot.
//
// Shapes and literals use the textual forms produced by the capture side,
// e.g. "f32[2,3]" for a shape and "{{1, 2, 3}, {4, 5, 6}}" for a literal.
package hlo
