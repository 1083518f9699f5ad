package layers

import (
	"fmt"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/plugin"
)

// Mode selects how layer panes are laid out.
type Mode string

// Layout modes.
const (
	ModeDock  Mode = "dock"
	ModeSplit Mode = "split"
	ModeMerge Mode = "merge"
)

// Modes lists the layout modes in presentation order.
var Modes = []Mode{ModeDock, ModeSplit, ModeMerge}

// Valid reports whether m is a known layout mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeDock, ModeSplit, ModeMerge:
		return true
	}
	return false
}

// Layout constants.
const (
	// DefaultUnitPad is the horizontal room reserved per stacked y label.
	DefaultUnitPad = 30.0
	// DefaultLabelGap separates consecutive docked layer labels.
	DefaultLabelGap = 10.0
	// DefaultLabelPadding is the padding of the reformatted base y label.
	DefaultLabelPadding = 10.0
	// DefaultLabelClass is the CSS class attached to docked y labels.
	DefaultLabelClass = "layers-label"
)

// Layer describes one additional measure. Layers are read-only to the
// strategy.
type Layer struct {
	Type  string      `json:"type" toml:"type"`
	Y     string      `json:"y" toml:"y"`
	By    string      `json:"by,omitempty" toml:"by"`
	Is    any         `json:"is,omitempty" toml:"is"`
	Guide *LayerGuide `json:"guide,omitempty" toml:"guide"`
}

// LayerGuide holds optional display hints for a layer's y axis.
type LayerGuide struct {
	Label     string   `json:"label,omitempty" toml:"label"`
	Min       *float64 `json:"min,omitempty" toml:"min"`
	Max       *float64 `json:"max,omitempty" toml:"max"`
	AutoScale *bool    `json:"autoScale,omitempty" toml:"auto_scale"`
}

// Label returns the axis label for the layer: the explicit guide label, or
// the field name.
func (l Layer) Label() string {
	if l.Guide != nil && l.Guide.Label != "" {
		return l.Guide.Label
	}
	return l.Y
}

// Config is the strategy configuration. Obtain one from [DefaultConfig] so
// boolean toggles start enabled; zero numeric fields are filled by
// SetDefaults.
type Config struct {
	Layers     []Layer `json:"layers" toml:"layers"`
	Mode       Mode    `json:"mode" toml:"mode"`
	ShowLayers bool    `json:"showLayers" toml:"show_layers"`
	ShowPanel  bool    `json:"showPanel" toml:"show_panel"`
	HideError  bool    `json:"hideError" toml:"hide_error"`

	UnitPad      float64 `json:"unitPad,omitempty" toml:"unit_pad"`
	LabelGap     float64 `json:"labelGap,omitempty" toml:"label_gap"`
	LabelPadding float64 `json:"labelPadding,omitempty" toml:"label_padding"`
	LabelClass   string  `json:"labelClass,omitempty" toml:"label_class"`
}

// DefaultConfig returns a configuration with layers and the panel shown, in
// dock mode, with the default layout constants.
func DefaultConfig() Config {
	c := Config{ShowLayers: true, ShowPanel: true}
	c.SetDefaults()
	return c
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDock
	}
	if c.UnitPad == 0 {
		c.UnitPad = DefaultUnitPad
	}
	if c.LabelGap == 0 {
		c.LabelGap = DefaultLabelGap
	}
	if c.LabelPadding == 0 {
		c.LabelPadding = DefaultLabelPadding
	}
	if c.LabelClass == "" {
		c.LabelClass = DefaultLabelClass
	}
}

// Validate checks every layer descriptor and the layout mode. It returns one
// INVALID_CONFIG diagnostic per problem; nil means the configuration is
// usable.
func (c Config) Validate() []plugin.Diagnostic {
	var diags []plugin.Diagnostic
	add := func(path, format string, args ...any) {
		diags = append(diags, plugin.Diagnostic{
			Code:    errors.ErrCodeInvalidConfig,
			Message: fmt.Sprintf(format, args...),
			Path:    path,
		})
	}

	if c.Mode != "" && !c.Mode.Valid() {
		add("mode", "unknown layout mode %q (must be one of: dock, split, merge)", c.Mode)
	}
	for i, l := range c.Layers {
		path := fmt.Sprintf("layers[%d]", i)
		if _, ok := ElementType(l.Type); !ok {
			add(path, "unknown layer type %q", l.Type)
		}
		if l.Y == "" {
			add(path, "layer is missing the y field")
		} else if err := errors.ValidateFieldName(l.Y); err != nil {
			add(path, "%s", errors.UserMessage(err))
		}
		if l.Guide != nil && l.Guide.Min != nil && l.Guide.Max != nil && *l.Guide.Min > *l.Guide.Max {
			add(path, "guide min %g is greater than max %g", *l.Guide.Min, *l.Guide.Max)
		}
	}
	return diags
}

// clone returns a copy of c that shares no slices with it.
func (c Config) clone() Config {
	out := c
	if c.Layers != nil {
		out.Layers = make([]Layer, len(c.Layers))
		copy(out.Layers, c.Layers)
	}
	return out
}
