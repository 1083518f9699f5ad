package sdk

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// FrameIDKey is the frame key entry AddFrame fills with a generated identifier.
const FrameIDKey = "__layerid__"

// UnitAccessor is a structured view over a single tree node.
type UnitAccessor struct {
	ref   *spec.Unit
	stamp int64
}

// Unit wraps u. Frame identifiers generated through the accessor use the
// current time in milliseconds; pin it with [UnitAccessor.WithStamp].
func Unit(u *spec.Unit) *UnitAccessor {
	return &UnitAccessor{ref: u, stamp: time.Now().UnixMilli()}
}

// WithStamp sets the pass timestamp used for frame identifiers.
func (a *UnitAccessor) WithStamp(ms int64) *UnitAccessor {
	a.stamp = ms
	return a
}

// Value returns the wrapped unit.
func (a *UnitAccessor) Value() *spec.Unit { return a.ref }

// Clone returns a deep copy of the wrapped unit.
func (a *UnitAccessor) Clone() *spec.Unit { return spec.Clone(a.ref) }

// Traverse walks the wrapped unit in pre-order.
func (a *UnitAccessor) Traverse(visit spec.VisitFunc) error {
	return spec.Traverse(a.ref, visit)
}

// Reduce folds over the wrapped unit in pre-order. Use [spec.Reduce] for a
// typed accumulator.
func (a *UnitAccessor) Reduce(fold func(acc any, node, parent *spec.Unit) any, initial any) (any, error) {
	return spec.Reduce(a.ref, fold, initial)
}

// AddTransformation appends a filter application. Existing entries are kept
// in place.
func (a *UnitAccessor) AddTransformation(typ string, args map[string]any) *UnitAccessor {
	a.ref.Transformation = append(a.ref.Transformation, spec.Transformation{Type: typ, Args: args})
	return a
}

// AddFrame appends f to the unit's frames. The frame key receives a
// FrameIDKey entry combining the pass stamp with the frame's position. An
// empty Source defaults to the unit's expression source and a nil Pipe to an
// empty one.
//
// AddFrame returns a STRUCTURAL_CORRUPTION error when f has no source and the
// unit has no expression to inherit one from.
func (a *UnitAccessor) AddFrame(f *spec.Frame) error {
	if f.Source == "" {
		if a.ref.Expression == nil {
			return errors.New(errors.ErrCodeStructural, "unit %q has no expression to source frame from", a.ref.Type)
		}
		f.Source = a.ref.Expression.Source
	}
	if f.Key == nil {
		f.Key = make(map[string]any)
	}
	f.Key[FrameIDKey] = fmt.Sprintf("L%d%d", a.stamp, len(a.ref.Frames))
	if f.Pipe == nil {
		f.Pipe = []spec.Transformation{}
	}
	a.ref.Frames = append(a.ref.Frames, f)
	return nil
}

// IsCoordinates reports whether the unit is a coordinate container.
func (a *UnitAccessor) IsCoordinates() bool {
	return a.ref.IsCoordinates()
}

// IsElementOf reports whether the unit is an element drawn inside containers
// of the given kind. Element types without a "KIND/" prefix belong to RECT.
// The comparison ignores case; coordinate containers are never elements.
func (a *UnitAccessor) IsElementOf(kind string) bool {
	if a.IsCoordinates() {
		return false
	}
	return strings.EqualFold(a.ref.ContainerKind(), kind)
}
