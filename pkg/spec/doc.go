// Package spec defines the declarative chart specification tree and the
// generic operations that rewrite strategies build on.
//
// # Overview
//
// A [Spec] is the root document handed to plugins before the host renders a
// chart. It owns exactly one root [Unit] plus registries of named scales,
// sources, transformation functions, and settings. Units form a tree: a unit
// is either a coordinate container (type prefixed with "COORDS.") holding
// child units, or a visual element (type prefixed with "ELEMENT.") that is a
// leaf.
//
//	s := &spec.Spec{
//	    Unit: &spec.Unit{
//	        Type: "COORDS.RECT", X: "x_date", Y: "y_total",
//	        Units: []*spec.Unit{{Type: "ELEMENT.LINE", X: "x_date", Y: "y_total"}},
//	    },
//	}
//
// # Tree Utilities
//
// The package provides the tree core every strategy relies on:
//
//   - [Clone]: deep, alias-free copy of a unit and all descendants
//   - [Traverse]: pre-order walk over Units with parent tracking
//   - [Reduce]: fold over the same pre-order sequence
//   - [DepthFirstSearch]: first unit matching a predicate
//
// Traversal follows Units only. Frames are attached by rewrites after
// traversal-driven analysis has finished and are not walked.
//
// # Ownership
//
// Children are exclusively owned by their parent. A unit reachable twice
// (a cycle or a shared child) is structural corruption: [Traverse] and
// [Reduce] return an error with code STRUCTURAL_CORRUPTION and [Clone]
// panics with the same error, since continuing would produce an inconsistent
// spec.
//
// # Concurrency
//
// Specs are not safe for concurrent use. A rewrite pass owns the spec for its
// whole duration.
package spec
