// Package sdk is the mutation surface rewrite strategies use on a chart spec.
//
// Strategies never poke spec fields directly. They wrap the spec they were
// handed with [Spec] and individual tree nodes with [Unit]:
//
//	s := sdk.Spec(specRef)
//	s.AddScale("layer:1:likes", &spec.Scale{Type: spec.ScaleLinear, Source: "/", Dim: "likes"})
//	s.RegisterTransformation("defined-only", definedOnly)
//
//	root := s.Unit()
//	if root.IsCoordinates() {
//	    root.AddTransformation("defined-only", map[string]any{"key": "likes"})
//	}
//
// # Total Lookups
//
// Every lookup is total: an unknown scale, source, dimension, or setting
// yields a zero value and a false ok flag (or an empty slice), never an error.
// Strategies probe optimistically across many spec shapes, so a miss is an
// ordinary answer. Only structural corruption (cycles, missing required node
// fields) surfaces as an error.
//
// # Extras
//
// [FieldsInfo] summarizes label, format, and null alias per bound dimension,
// and [Query] evaluates a JSONPath selector against the spec's JSON form.
package sdk
