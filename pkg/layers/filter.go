package layers

import (
	"reflect"

	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// Transformation names registered on every rewritten spec.
const (
	// TransformDefinedOnly drops records whose args["key"] field is null or
	// absent.
	TransformDefinedOnly = "defined-only"
	// TransformSliceBy keeps records whose args["key"] field equals
	// args["val"].
	TransformSliceBy = "slice-by"
)

// DefinedOnly is the TransformDefinedOnly filter.
func DefinedOnly(records []spec.Record, args map[string]any) []spec.Record {
	key, _ := args["key"].(string)
	out := make([]spec.Record, 0, len(records))
	for _, r := range records {
		if v, ok := r[key]; ok && v != nil {
			out = append(out, r)
		}
	}
	return out
}

// SliceBy is the TransformSliceBy filter. Numbers compare by value whatever
// their Go type; a nil val matches absent and null fields.
func SliceBy(records []spec.Record, args map[string]any) []spec.Record {
	key, _ := args["key"].(string)
	val := args["val"]
	out := make([]spec.Record, 0, len(records))
	for _, r := range records {
		if sameValue(r[key], val) {
			out = append(out, r)
		}
	}
	return out
}

func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, aok := spec.ToFloat(a)
	fb, bok := spec.ToFloat(b)
	if aok && bok {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}

func registerFilters(sa *sdk.SpecAccessor) {
	sa.RegisterTransformation(TransformDefinedOnly, DefinedOnly)
	sa.RegisterTransformation(TransformSliceBy, SliceBy)
}

// isLeafElement reports whether u is an element placed directly inside a
// coordinate container.
func isLeafElement(u, parent *spec.Unit) bool {
	return parent != nil && parent.IsCoordinates() && !u.IsCoordinates()
}

// applyDefinedOnly appends a defined-only filter on the y dimension to every
// leaf element under root. Elements whose y scale is unknown are left alone.
func applyDefinedOnly(sa *sdk.SpecAccessor, root *spec.Unit) error {
	return spec.Traverse(root, func(u, parent *spec.Unit) {
		if !isLeafElement(u, parent) {
			return
		}
		sc, ok := sa.Scale(u.Y)
		if !ok || sc.Dim == "" {
			return
		}
		sdk.Unit(u).AddTransformation(TransformDefinedOnly, map[string]any{"key": sc.Dim})
	})
}
