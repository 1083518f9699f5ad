package sdk

import (
	"sort"

	"github.com/matzehuels/layerspec/pkg/spec"
)

// SpecAccessor is a structured view over a spec. The zero value is not
// usable; create one with [Spec].
type SpecAccessor struct {
	ref *spec.Spec
}

// Spec wraps s. Registries that are nil are created lazily on first write.
func Spec(s *spec.Spec) *SpecAccessor {
	return &SpecAccessor{ref: s}
}

// Value returns the wrapped spec.
func (a *SpecAccessor) Value() *spec.Spec { return a.ref }

// Unit returns an accessor for the root unit.
func (a *SpecAccessor) Unit() *UnitAccessor { return Unit(a.ref.Unit) }

// SetUnit replaces the root unit and returns an accessor for it.
func (a *SpecAccessor) SetUnit(u *spec.Unit) *UnitAccessor {
	a.ref.Unit = u
	return Unit(u)
}

// Traverse walks the root unit in pre-order. See [spec.Traverse].
func (a *SpecAccessor) Traverse(visit spec.VisitFunc) error {
	return spec.Traverse(a.ref.Unit, visit)
}

// Reduce folds over the root unit in pre-order. See [spec.Reduce].
func (a *SpecAccessor) Reduce(fold func(acc any, node, parent *spec.Unit) any, initial any) (any, error) {
	return spec.Reduce(a.ref.Unit, fold, initial)
}

// Scale returns the named scale descriptor.
func (a *SpecAccessor) Scale(name string) (*spec.Scale, bool) {
	sc, ok := a.ref.Scales[name]
	return sc, ok && sc != nil
}

// AddScale registers sc under name. An existing scale with the same name is
// silently replaced.
func (a *SpecAccessor) AddScale(name string, sc *spec.Scale) *SpecAccessor {
	if a.ref.Scales == nil {
		a.ref.Scales = make(map[string]*spec.Scale)
	}
	a.ref.Scales[name] = sc
	return a
}

// RemoveScale deletes the named scale. Unknown names are ignored.
func (a *SpecAccessor) RemoveScale(name string) *SpecAccessor {
	delete(a.ref.Scales, name)
	return a
}

// ScaleNames returns the registered scale names in sorted order.
func (a *SpecAccessor) ScaleNames() []string {
	names := make([]string, 0, len(a.ref.Scales))
	for name := range a.ref.Scales {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterSource registers src under name, replacing any existing source.
func (a *SpecAccessor) RegisterSource(name string, src *spec.Source) *SpecAccessor {
	if a.ref.Sources == nil {
		a.ref.Sources = make(map[string]*spec.Source)
	}
	a.ref.Sources[name] = src
	return a
}

// RemoveSource deletes the named source. Unknown names are ignored.
func (a *SpecAccessor) RemoveSource(name string) *SpecAccessor {
	delete(a.ref.Sources, name)
	return a
}

// SourceData returns the records of the named source, or an empty slice when
// the source is unknown.
func (a *SpecAccessor) SourceData(name string) []spec.Record {
	src, ok := a.ref.Sources[name]
	if !ok || src == nil || src.Data == nil {
		return []spec.Record{}
	}
	return src.Data
}

// SourceDim returns the descriptor of dim in the named source, or the zero
// Dim when either is unknown.
func (a *SpecAccessor) SourceDim(name, dim string) spec.Dim {
	src, ok := a.ref.Sources[name]
	if !ok || src == nil {
		return spec.Dim{}
	}
	return src.Dims[dim]
}

// ScaleDim resolves a scale name to the descriptor of the dimension it binds.
// The zero Dim is returned when the scale or its dimension is unknown.
func (a *SpecAccessor) ScaleDim(scale string) spec.Dim {
	sc, ok := a.Scale(scale)
	if !ok {
		return spec.Dim{}
	}
	return a.SourceDim(sc.Source, sc.Dim)
}

// RegisterTransformation registers a named filter function.
func (a *SpecAccessor) RegisterTransformation(name string, fn spec.TransformFunc) *SpecAccessor {
	if a.ref.Transformations == nil {
		a.ref.Transformations = make(map[string]spec.TransformFunc)
	}
	a.ref.Transformations[name] = fn
	return a
}

// Transformation returns the named filter function.
func (a *SpecAccessor) Transformation(name string) (spec.TransformFunc, bool) {
	fn, ok := a.ref.Transformations[name]
	return fn, ok && fn != nil
}

// Apply runs ts over records left to right. Entries naming an unregistered
// transformation are skipped.
func (a *SpecAccessor) Apply(records []spec.Record, ts []spec.Transformation) []spec.Record {
	for _, t := range ts {
		if fn, ok := a.Transformation(t.Type); ok {
			records = fn(records, t.Args)
		}
	}
	return records
}

// Setting returns the named setting.
func (a *SpecAccessor) Setting(name string) (any, bool) {
	v, ok := a.ref.Settings[name]
	return v, ok
}

// SetSetting stores a setting.
func (a *SpecAccessor) SetSetting(name string, value any) *SpecAccessor {
	if a.ref.Settings == nil {
		a.ref.Settings = make(map[string]any)
	}
	a.ref.Settings[name] = value
	return a
}
