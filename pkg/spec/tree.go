package spec

import (
	"maps"

	"github.com/matzehuels/layerspec/pkg/errors"
)

// VisitFunc is called for every unit during traversal. Parent is nil for the
// root.
type VisitFunc func(node, parent *Unit)

// Traverse walks root and its descendants (via Units) in pre-order, calling
// visit with each node and its parent. A nil root is a no-op.
//
// Traverse returns a STRUCTURAL_CORRUPTION error if a unit is reached twice,
// which means a cycle or a shared child was introduced. Nodes visited before
// the corruption was found have already been passed to visit.
func Traverse(root *Unit, visit VisitFunc) error {
	if root == nil {
		return nil
	}
	seen := make(map[*Unit]bool)

	var walk func(node, parent *Unit) error
	walk = func(node, parent *Unit) error {
		if seen[node] {
			return errors.New(errors.ErrCodeStructural, "unit %q reached twice during traversal", node.Type)
		}
		seen[node] = true
		visit(node, parent)
		for _, child := range node.Units {
			if child == nil {
				return errors.New(errors.ErrCodeStructural, "unit %q has a nil child", node.Type)
			}
			if err := walk(child, node); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(root, nil)
}

// Reduce folds over the same pre-order sequence as [Traverse], threading the
// accumulator through fold.
func Reduce[T any](root *Unit, fold func(acc T, node, parent *Unit) T, initial T) (T, error) {
	acc := initial
	err := Traverse(root, func(node, parent *Unit) {
		acc = fold(acc, node, parent)
	})
	return acc, err
}

// DepthFirstSearch returns the first unit in pre-order satisfying pred. The
// boolean is false when nothing matches; absence is never an error.
func DepthFirstSearch(root *Unit, pred func(*Unit) bool) (*Unit, bool) {
	if root == nil {
		return nil, false
	}
	if pred(root) {
		return root, true
	}
	for _, child := range root.Units {
		if child == nil {
			continue
		}
		if found, ok := DepthFirstSearch(child, pred); ok {
			return found, true
		}
	}
	return nil, false
}

// Clone returns a deep copy of u. Guides, transformation args, frames, and
// children are all copied; the result shares no mutable state with u.
//
// Clone panics with a STRUCTURAL_CORRUPTION *errors.Error if u contains a
// cycle or a shared child.
func Clone(u *Unit) *Unit {
	if u == nil {
		return nil
	}
	c := cloner{seen: make(map[*Unit]bool)}
	return c.unit(u)
}

type cloner struct {
	seen map[*Unit]bool
}

func (c cloner) unit(u *Unit) *Unit {
	if c.seen[u] {
		panic(errors.New(errors.ErrCodeStructural, "unit %q reached twice while cloning", u.Type))
	}
	c.seen[u] = true

	out := &Unit{
		Type:           u.Type,
		X:              u.X,
		Y:              u.Y,
		Color:          u.Color,
		Size:           u.Size,
		Transformation: cloneTransformations(u.Transformation),
	}
	if u.Guide != nil {
		out.Guide = Guide(copyMap(u.Guide))
	}
	if u.Expression != nil {
		e := *u.Expression
		e.Operator = copyValue(e.Operator)
		out.Expression = &e
	}
	if u.Units != nil {
		out.Units = make([]*Unit, len(u.Units))
		for i, child := range u.Units {
			if child != nil {
				out.Units[i] = c.unit(child)
			}
		}
	}
	if u.Frames != nil {
		out.Frames = make([]*Frame, len(u.Frames))
		for i, f := range u.Frames {
			if f != nil {
				out.Frames[i] = c.frame(f)
			}
		}
	}
	return out
}

func (c cloner) frame(f *Frame) *Frame {
	out := &Frame{
		Key:    copyMap(f.Key),
		Source: f.Source,
		Pipe:   cloneTransformations(f.Pipe),
	}
	if f.Units != nil {
		out.Units = make([]*Unit, len(f.Units))
		for i, child := range f.Units {
			if child != nil {
				out.Units[i] = c.unit(child)
			}
		}
	}
	return out
}

func cloneTransformations(ts []Transformation) []Transformation {
	if ts == nil {
		return nil
	}
	out := make([]Transformation, len(ts))
	for i, t := range ts {
		out[i] = Transformation{Type: t.Type, Args: copyMap(t.Args)}
	}
	return out
}

// copyMap deep-copies a JSON-shaped map. Nil stays nil.
func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch x := v.(type) {
	case Guide:
		return Guide(copyMap(x))
	case map[string]any:
		return copyMap(x)
	case Record:
		return Record(copyMap(x))
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	}
	return v
}

// Clone returns a deep copy of s. Transformation functions are shared since
// they are pure.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}
	out := &Spec{
		Unit:            Clone(s.Unit),
		Settings:        copyMap(s.Settings),
		Transformations: maps.Clone(s.Transformations),
	}
	if s.Scales != nil {
		out.Scales = make(map[string]*Scale, len(s.Scales))
		for name, sc := range s.Scales {
			out.Scales[name] = sc.Clone()
		}
	}
	if s.Sources != nil {
		out.Sources = make(map[string]*Source, len(s.Sources))
		for name, src := range s.Sources {
			out.Sources[name] = src.Clone()
		}
	}
	return out
}

// Clone returns a copy of sc with its own Min, Max, and AutoScale.
func (sc *Scale) Clone() *Scale {
	if sc == nil {
		return nil
	}
	out := *sc
	if sc.Min != nil {
		v := *sc.Min
		out.Min = &v
	}
	if sc.Max != nil {
		v := *sc.Max
		out.Max = &v
	}
	if sc.AutoScale != nil {
		v := *sc.AutoScale
		out.AutoScale = &v
	}
	return &out
}

// Clone returns a copy of src with copied dims and records.
func (src *Source) Clone() *Source {
	if src == nil {
		return nil
	}
	out := &Source{Dims: maps.Clone(src.Dims)}
	if src.Data != nil {
		out.Data = make([]Record, len(src.Data))
		for i, r := range src.Data {
			out.Data[i] = Record(copyMap(r))
		}
	}
	return out
}
