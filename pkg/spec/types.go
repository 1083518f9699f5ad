package spec

import "strings"

// Unit type prefixes.
const (
	CoordsPrefix  = "COORDS."
	ElementPrefix = "ELEMENT."

	// CoordsRect is the rectangular coordinate container type.
	CoordsRect = "COORDS.RECT"

	// DefaultContainerKind is the container kind implied by an element type
	// without an explicit "KIND/" prefix.
	DefaultContainerKind = "RECT"
)

// Scale types.
const (
	ScaleOrdinal = "ordinal"
	ScaleLinear  = "linear"
)

// Dimension types.
const (
	DimCategory = "category"
	DimMeasure  = "measure"
)

// Record is one row of a data source.
type Record map[string]any

// TransformFunc is a pure filter over source records. Args come from the
// Transformation entry that references the function by name.
type TransformFunc func(records []Record, args map[string]any) []Record

// Spec is the root chart document.
type Spec struct {
	Unit            *Unit                    `json:"unit"`
	Scales          map[string]*Scale        `json:"scales"`
	Sources         map[string]*Source       `json:"sources"`
	Settings        map[string]any           `json:"settings,omitempty"`
	Transformations map[string]TransformFunc `json:"-"`
}

// Scale maps a source dimension to a visual encoding.
type Scale struct {
	Type      string   `json:"type"`
	Source    string   `json:"source"`
	Dim       string   `json:"dim"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	AutoScale *bool    `json:"autoScale,omitempty"`
}

// Dim describes a source dimension. The zero Dim is returned for lookups
// that miss.
type Dim struct {
	Type string `json:"type,omitempty"`
}

// IsMeasure reports whether the dimension holds numeric measures.
func (d Dim) IsMeasure() bool { return d.Type == DimMeasure }

// Source is a named table of records with typed dimensions.
type Source struct {
	Dims map[string]Dim `json:"dims"`
	Data []Record       `json:"data"`
}

// Transformation is one filter application on a unit, applied left to right.
type Transformation struct {
	Type string         `json:"type"`
	Args map[string]any `json:"args,omitempty"`
}

// Expression describes how data reaches a unit.
type Expression struct {
	Source   string `json:"source"`
	Inherit  bool   `json:"inherit"`
	Operator any    `json:"operator"`
}

// Frame is an independently keyed rendering cell of a coordinate container.
type Frame struct {
	Key    map[string]any   `json:"key"`
	Source string           `json:"source"`
	Pipe   []Transformation `json:"pipe"`
	Units  []*Unit          `json:"units"`
}

// Unit is a node of the spec tree: a coordinate container or a visual element.
type Unit struct {
	Type           string           `json:"type"`
	X              string           `json:"x,omitempty"`
	Y              string           `json:"y,omitempty"`
	Color          string           `json:"color,omitempty"`
	Size           string           `json:"size,omitempty"`
	Guide          Guide            `json:"guide,omitempty"`
	Transformation []Transformation `json:"transformation,omitempty"`
	Expression     *Expression      `json:"expression,omitempty"`
	Units          []*Unit          `json:"units,omitempty"`
	Frames         []*Frame         `json:"frames,omitempty"`
}

// Kind classifies a unit.
type Kind int

const (
	// KindElement is a visual element (leaf).
	KindElement Kind = iota
	// KindCoordinates is a coordinate container.
	KindCoordinates
)

func (k Kind) String() string {
	if k == KindCoordinates {
		return "coordinates"
	}
	return "element"
}

// Kind reports whether u is a coordinate container or an element.
// The "COORDS." prefix is matched case-insensitively.
func (u *Unit) Kind() Kind {
	if strings.HasPrefix(strings.ToUpper(u.Type), CoordsPrefix) {
		return KindCoordinates
	}
	return KindElement
}

// IsCoordinates reports whether u is a coordinate container.
func (u *Unit) IsCoordinates() bool { return u.Kind() == KindCoordinates }

// ContainerKind returns the container kind an element belongs to: the part of
// Type before '/', or "RECT" when there is none. Coordinate containers return
// their own kind suffix ("RECT" for "COORDS.RECT").
func (u *Unit) ContainerKind() string {
	if u.IsCoordinates() {
		return strings.ToUpper(u.Type[len(CoordsPrefix):])
	}
	if prefix, _, ok := strings.Cut(u.Type, "/"); ok {
		return prefix
	}
	return DefaultContainerKind
}

// ScaleRefs returns the non-empty scale names referenced by u, in x, y,
// color, size order.
func (u *Unit) ScaleRefs() []string {
	var refs []string
	for _, name := range []string{u.X, u.Y, u.Color, u.Size} {
		if name != "" {
			refs = append(refs, name)
		}
	}
	return refs
}
