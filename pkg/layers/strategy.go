package layers

import (
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// Names of the synthetic source and scales added by a layer pass.
const (
	SourceName = "$layers"
	ScaleX     = SourceName + ":x"
	ScaleY     = SourceName + ":y"

	layerScalePrefix = "layer:"
)

// LayerScaleName returns the name of the y scale bound for layer i (1-based).
func LayerScaleName(i int, field string) string {
	return fmt.Sprintf("%s%d:%s", layerScalePrefix, i, field)
}

// DomainFunc resolves a scale name to the host's live domain. A nil
// DomainFunc behaves as if every domain were empty.
type DomainFunc func(scale string) []any

// Result summarizes one pass.
type Result struct {
	Mode Mode
	// Applied is true when layer synthesis ran and replaced the root unit.
	Applied bool
	// Frames is the number of panes attached to the synthetic root.
	Frames int
	// Excluded lists the 1-based indexes of layers dropped from a merged
	// layout because their live domain had no finite numbers.
	Excluded []int
	// Domain is the shared [min, max] assigned in merge mode.
	Domain      []float64
	Diagnostics []plugin.Diagnostic
}

// Strategy is the layer rewrite strategy. It keeps the pristine template of
// the chart it first saw; call [Strategy.Reset] before using it for a
// different chart.
type Strategy struct {
	Logger *log.Logger
	// Now supplies the pass timestamp used in frame identifiers.
	Now func() time.Time

	mu         sync.Mutex
	cfg        Config
	template   *spec.Unit
	baseScales map[string]*spec.Scale
	baseSource *spec.Source
	diags      []plugin.Diagnostic
	applicable bool
	configOK   bool

	// synthetic holds the scales registered by the previous pass;
	// ownsSource is set while the $layers source is ours.
	synthetic  map[string]bool
	ownsSource bool
}

// New creates a strategy with cfg. Unset fields of cfg take their defaults.
func New(cfg Config) *Strategy {
	cfg = cfg.clone()
	cfg.SetDefaults()
	return &Strategy{
		Logger:     log.NewWithOptions(io.Discard, log.Options{}),
		Now:        time.Now,
		cfg:        cfg,
		applicable: true,
		configOK:   true,
		synthetic:  make(map[string]bool),
	}
}

// Config returns a copy of the current configuration.
func (st *Strategy) Config() Config {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.cfg.clone()
}

// SetConfig installs cfg for subsequent passes.
func (st *Strategy) SetConfig(cfg Config) {
	cfg = cfg.clone()
	cfg.SetDefaults()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.cfg = cfg
}

// Diagnostics returns the diagnostics of the last pass.
func (st *Strategy) Diagnostics() []plugin.Diagnostic {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]plugin.Diagnostic(nil), st.diags...)
}

// Applicable reports whether the last pass found the chart structurally able
// to carry layers.
func (st *Strategy) Applicable() bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.applicable
}

// Reset drops the retained template. The next pass captures a new one.
// Registrations made by earlier passes are still removed by the next pass.
func (st *Strategy) Reset() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.template = nil
	st.baseScales = nil
	st.baseSource = nil
	st.diags = nil
	st.applicable = true
	st.configOK = true
}

// Rewrite runs one pass over s, replacing s.Unit with the rewritten tree.
// Configuration and applicability problems are reported in the result and
// through [Strategy.Diagnostics]; the returned error is reserved for
// structural corruption, in which case s is left as it was.
func (st *Strategy) Rewrite(s *spec.Spec, domain DomainFunc) (res Result, err error) {
	if s == nil || s.Unit == nil {
		return Result{}, errors.New(errors.ErrCodeStructural, "spec has no root unit")
	}
	if domain == nil {
		domain = func(string) []any { return nil }
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.template == nil {
		if err := st.capture(s); err != nil {
			return Result{}, err
		}
	}

	cfg := st.cfg
	res.Mode = cfg.Mode
	sa := sdk.Spec(s)

	base, err := cloneTree(st.template)
	if err != nil {
		return Result{}, err
	}
	st.restore(sa)
	registerFilters(sa)

	applicability, err := CheckApplicable(&spec.Spec{Unit: st.template, Scales: s.Scales, Sources: s.Sources})
	if err != nil {
		return Result{}, err
	}
	st.applicable = len(applicability) == 0

	if diags := cfg.Validate(); len(diags) > 0 {
		sa.SetUnit(base)
		st.configOK = false
		st.diags = diags
		res.Diagnostics = diags
		st.Logger.Warn("invalid layers configuration", "problems", len(diags))
		return res, nil
	}
	st.configOK = true
	st.diags = applicability
	res.Diagnostics = applicability

	if !cfg.ShowLayers || !st.applicable || len(cfg.Layers) == 0 {
		if err := applyDefinedOnly(sa, base); err != nil {
			return Result{}, err
		}
		sa.SetUnit(base)
		st.Logger.Debug("layers skipped",
			"show", cfg.ShowLayers,
			"applicable", st.applicable,
			"layers", len(cfg.Layers))
		return res, nil
	}

	root, err := st.synthesize(sa, cfg, base, domain, &res)
	if err != nil {
		return Result{}, err
	}
	sa.SetUnit(root)
	res.Applied = true
	res.Frames = len(root.Frames)

	st.Logger.Debug("layers applied",
		"mode", cfg.Mode,
		"frames", res.Frames,
		"excluded", len(res.Excluded))
	return res, nil
}

// capture retains the pre-rewrite root unit and the scales a pass may
// modify. It runs before the first mutation of s.
func (st *Strategy) capture(s *spec.Spec) error {
	if err := spec.Traverse(s.Unit, func(*spec.Unit, *spec.Unit) {}); err != nil {
		return err
	}
	tpl, err := cloneTree(s.Unit)
	if err != nil {
		return err
	}
	st.template = tpl
	st.baseScales = make(map[string]*spec.Scale, len(s.Scales))
	for name, sc := range s.Scales {
		if sc != nil && !st.synthetic[name] {
			st.baseScales[name] = sc.Clone()
		}
	}
	if src, ok := s.Sources[SourceName]; ok && src != nil && !st.ownsSource {
		st.baseSource = src.Clone()
	}
	return nil
}

// restore removes the registrations made by the previous pass and resets
// captured scales and sources to their pre-rewrite state.
func (st *Strategy) restore(sa *sdk.SpecAccessor) {
	for name := range st.synthetic {
		sa.RemoveScale(name)
	}
	clear(st.synthetic)
	if st.ownsSource {
		sa.RemoveSource(SourceName)
		st.ownsSource = false
	}
	for name, sc := range st.baseScales {
		sa.AddScale(name, sc.Clone())
	}
	if st.baseSource != nil {
		sa.RegisterSource(SourceName, st.baseSource.Clone())
	}
}

// addScale registers a scale that the next pass removes again.
func (st *Strategy) addScale(sa *sdk.SpecAccessor, name string, sc *spec.Scale) {
	sa.AddScale(name, sc)
	st.synthetic[name] = true
}

// cloneTree is spec.Clone with the structural panic turned into an error.
func cloneTree(u *spec.Unit) (out *spec.Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			e, ok := r.(*errors.Error)
			if !ok {
				panic(r)
			}
			err = e
		}
	}()
	return spec.Clone(u), nil
}

// =============================================================================
// Synthesis
// =============================================================================

// pane is a coordinate container together with the leaf elements it holds.
type pane struct {
	container *spec.Unit
	elements  []*spec.Unit
}

func collectPanes(root *spec.Unit) ([]*pane, error) {
	var panes []*pane
	byContainer := make(map[*spec.Unit]*pane)
	err := spec.Traverse(root, func(u, parent *spec.Unit) {
		if !isLeafElement(u, parent) {
			return
		}
		p, ok := byContainer[parent]
		if !ok {
			p = &pane{container: parent}
			byContainer[parent] = p
			panes = append(panes, p)
		}
		p.elements = append(p.elements, u)
	})
	return panes, err
}

func guideOf(u *spec.Unit) spec.Guide {
	if u.Guide == nil {
		u.Guide = spec.Guide{}
	}
	return u.Guide
}

// setLabel replaces the label text of an axis guide, keeping an object-form
// label's other settings.
func setLabel(axis spec.Guide, text string) {
	if obj, ok := axis.Lookup("label"); ok {
		obj.Set("text", text)
		delete(obj, "_original_text")
		return
	}
	axis.Set("label", text)
}

func (st *Strategy) synthesize(sa *sdk.SpecAccessor, cfg Config, base *spec.Unit, domain DomainFunc, res *Result) (*spec.Unit, error) {
	basePanes, err := collectPanes(base)
	if err != nil {
		return nil, err
	}
	primaryY := basePanes[0].elements[0].Y
	primary, _ := sa.Scale(primaryY)

	// Layer scales
	n := len(cfg.Layers)
	names := make([]string, n+1)
	for i, l := range cfg.Layers {
		idx := i + 1
		names[idx] = LayerScaleName(idx, l.Y)
		sc := &spec.Scale{Type: spec.ScaleLinear, Source: primary.Source, Dim: l.Y}
		if l.Guide != nil {
			sc.Min = copyFloat(l.Guide.Min)
			sc.Max = copyFloat(l.Guide.Max)
			if l.Guide.AutoScale != nil {
				auto := *l.Guide.AutoScale
				sc.AutoScale = &auto
			}
		}
		st.addScale(sa, names[idx], sc)
	}

	included := make([]int, 0, n)
	for idx := 1; idx <= n; idx++ {
		included = append(included, idx)
	}
	if cfg.Mode == ModeMerge {
		included = st.mergeDomains(sa, primaryY, names, included, domain, res)
	}

	// Base pane
	if err := applyDefinedOnly(sa, base); err != nil {
		return nil, err
	}
	baseLabel := ""
	for _, p := range basePanes {
		g := guideOf(p.container)
		y := g.Sub("y")
		if baseLabel == "" {
			baseLabel = y.LabelText()
		}
		if baseLabel == "" {
			baseLabel = primary.Dim
		}
		switch cfg.Mode {
		case ModeDock:
			g.Sub("padding").Add("l", float64(n)*cfg.UnitPad)
			y.Set("label", map[string]any{
				"text":       baseLabel,
				"dock":       "right",
				"textAnchor": "end",
				"padding":    cfg.LabelPadding,
				"cssClass":   cfg.LabelClass,
			})
		case ModeMerge:
			labels := []string{baseLabel}
			for _, idx := range included {
				labels = append(labels, cfg.Layers[idx-1].Label())
			}
			setLabel(y, strings.Join(labels, ", "))
		}
	}

	// Layer panes
	clones := make([]*spec.Unit, 0, len(included))
	for _, idx := range included {
		c, err := cloneTree(st.template)
		if err != nil {
			return nil, err
		}
		if err := editLayerClone(c, cfg, idx, names[idx]); err != nil {
			return nil, err
		}
		clones = append(clones, c)
	}

	// Synthetic source, scales, and root
	cells := 1
	if cfg.Mode == ModeSplit {
		cells = len(clones) + 1
	}
	data := make([]spec.Record, cells)
	for k := range data {
		data[k] = spec.Record{"x": 1, "y": k + 1}
	}
	st.ownsSource = true
	sa.RegisterSource(SourceName, &spec.Source{
		Dims: map[string]spec.Dim{
			"x": {Type: spec.DimCategory},
			"y": {Type: spec.DimCategory},
		},
		Data: data,
	})
	st.addScale(sa, ScaleX, &spec.Scale{Type: spec.ScaleOrdinal, Source: SourceName, Dim: "x"})
	st.addScale(sa, ScaleY, &spec.Scale{Type: spec.ScaleOrdinal, Source: SourceName, Dim: "y"})

	root := &spec.Unit{
		Type: spec.CoordsRect,
		X:    ScaleX,
		Y:    ScaleY,
		Expression: &spec.Expression{
			Source:   SourceName,
			Inherit:  false,
			Operator: false,
		},
		Guide: spec.Guide{"showGridLines": ""},
	}
	ua := sdk.Unit(root).WithStamp(st.Now().UnixMilli())
	for k, u := range append([]*spec.Unit{base}, clones...) {
		cellY := 1
		if cfg.Mode == ModeSplit {
			cellY = k + 1
		}
		frame := &spec.Frame{
			Key:   map[string]any{"x": 1, "y": cellY, "i": k},
			Units: []*spec.Unit{u},
		}
		if err := ua.AddFrame(frame); err != nil {
			return nil, err
		}
	}
	return root, nil
}

// editLayerClone turns a copy of the template into the pane for layer idx.
func editLayerClone(c *spec.Unit, cfg Config, idx int, scale string) error {
	l := cfg.Layers[idx-1]
	elemType, _ := ElementType(l.Type)

	panes, err := collectPanes(c)
	if err != nil {
		return err
	}
	for _, p := range panes {
		rebound := make(map[string]bool)
		for _, el := range p.elements {
			rebound[el.Y] = true
		}
		if rebound[p.container.Y] {
			p.container.Y = scale
		}

		// A layer pane draws its series once: the first element stands in
		// for all of the pane's elements.
		el := p.elements[0]
		collapseElements(p.container, el)
		el.Type = elemType
		el.Y = scale
		ua := sdk.Unit(el)
		ua.AddTransformation(TransformDefinedOnly, map[string]any{"key": l.Y})
		if l.By != "" {
			ua.AddTransformation(TransformSliceBy, map[string]any{"key": l.By, "val": l.Is})
		}

		g := guideOf(p.container)
		g.Sub("x").Set("hide", true)
		y := g.Sub("y")
		setLabel(y, l.Label())
		switch cfg.Mode {
		case ModeDock:
			y.Add("padding", float64(idx)*(cfg.UnitPad+cfg.LabelGap))
		case ModeSplit:
			g.Set("showGridLines", "xy")
		case ModeMerge:
			y.Set("hide", true)
		}
	}
	return nil
}

// collapseElements replaces the leaf elements of container with keep, at the
// position of the first one. Nested containers stay in place.
func collapseElements(container, keep *spec.Unit) {
	units := make([]*spec.Unit, 0, len(container.Units))
	placed := false
	for _, u := range container.Units {
		if u.IsCoordinates() {
			units = append(units, u)
			continue
		}
		if !placed {
			units = append(units, keep)
			placed = true
		}
	}
	container.Units = units
}

// mergeDomains assigns the union of the finite live domains of the primary
// scale and every included layer scale to all of them, with auto-scaling
// disabled. Layers without finite values are dropped from the result.
func (st *Strategy) mergeDomains(sa *sdk.SpecAccessor, primaryY string, names []string, included []int, domain DomainFunc, res *Result) []int {
	lo, hi := math.Inf(1), math.Inf(-1)
	fold := func(values []float64) {
		for _, v := range values {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}

	fold(finite(domain(primaryY)))
	kept := included[:0]
	for _, idx := range included {
		values := finite(domain(names[idx]))
		if len(values) == 0 {
			res.Excluded = append(res.Excluded, idx)
			continue
		}
		fold(values)
		kept = append(kept, idx)
	}

	if lo > hi {
		return kept
	}
	res.Domain = []float64{lo, hi}

	merged := []string{primaryY}
	for _, idx := range kept {
		merged = append(merged, names[idx])
	}
	for _, name := range merged {
		sc, ok := sa.Scale(name)
		if !ok {
			continue
		}
		minV, maxV, auto := lo, hi, false
		sc.Min, sc.Max, sc.AutoScale = &minV, &maxV, &auto
	}
	return kept
}

func finite(values []any) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		f, ok := spec.ToFloat(v)
		if ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
			out = append(out, f)
		}
	}
	return out
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}
