package layers

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// newChart builds a single-pane line chart of sales over date.
func newChart() *spec.Spec {
	return &spec.Spec{
		Scales: map[string]*spec.Scale{
			"x": {Type: spec.ScaleLinear, Source: "/", Dim: "date"},
			"y": {Type: spec.ScaleLinear, Source: "/", Dim: "sales"},
		},
		Sources: map[string]*spec.Source{
			"/": {
				Dims: map[string]spec.Dim{
					"date":   {Type: spec.DimMeasure},
					"sales":  {Type: spec.DimMeasure},
					"cost":   {Type: spec.DimMeasure},
					"profit": {Type: spec.DimMeasure},
					"region": {Type: spec.DimCategory},
				},
				Data: []spec.Record{
					{"date": 1.0, "sales": 2.0, "cost": 0.0, "profit": 5.0, "region": "EU"},
					{"date": 2.0, "sales": 8.0, "cost": 10.0, "profit": 20.0, "region": "US"},
				},
			},
		},
		Unit: &spec.Unit{
			Type:       spec.CoordsRect,
			X:          "x",
			Y:          "y",
			Expression: &spec.Expression{Source: "/", Inherit: false},
			Guide: spec.Guide{
				"padding": map[string]any{"l": 40.0, "b": 20.0},
				"x":       map[string]any{"label": "Date"},
				"y":       map[string]any{"label": "Sales", "padding": 20.0},
			},
			Units: []*spec.Unit{
				{Type: "ELEMENT.LINE", X: "x", Y: "y", Expression: &spec.Expression{Source: "/", Inherit: true}},
			},
		},
	}
}

func twoLayers(mode Mode) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.Layers = []Layer{
		{Type: "line", Y: "cost"},
		{Type: "bar", Y: "profit", Guide: &LayerGuide{Label: "Profit"}},
	}
	return cfg
}

func newStrategy(cfg Config) *Strategy {
	st := New(cfg)
	st.Now = func() time.Time { return time.UnixMilli(1700000000000) }
	return st
}

func frameUnit(t *testing.T, s *spec.Spec, i int) *spec.Unit {
	t.Helper()
	require.Greater(t, len(s.Unit.Frames), i)
	require.Len(t, s.Unit.Frames[i].Units, 1)
	return s.Unit.Frames[i].Units[0]
}

func sub(t *testing.T, g spec.Guide, key string) spec.Guide {
	t.Helper()
	v, ok := g.Lookup(key)
	require.True(t, ok, "guide has no %q", key)
	return v
}

func transformTypes(u *spec.Unit) []string {
	var out []string
	for _, tr := range u.Transformation {
		out = append(out, tr.Type)
	}
	return out
}

// =============================================================================
// Dock
// =============================================================================

func TestDockPadding(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeDock))

	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.Equal(t, 3, res.Frames)
	assert.Empty(t, res.Diagnostics)

	base := frameUnit(t, s, 0)
	assert.Equal(t, 40.0+2*DefaultUnitPad, sub(t, base.Guide, "padding").Float("l"))
	assert.Equal(t, 20.0, sub(t, base.Guide, "padding").Float("b"))

	label := sub(t, sub(t, base.Guide, "y"), "label")
	assert.Equal(t, "Sales", label["text"])
	assert.Equal(t, "right", label["dock"])
	assert.Equal(t, "end", label["textAnchor"])
	assert.Equal(t, DefaultLabelPadding, label["padding"])
	assert.Equal(t, DefaultLabelClass, label["cssClass"])

	first := frameUnit(t, s, 1)
	assert.Equal(t, 20.0+1*(DefaultUnitPad+DefaultLabelGap), sub(t, first.Guide, "y").Float("padding"))

	second := frameUnit(t, s, 2)
	assert.Equal(t, 20.0+2*DefaultUnitPad+2*DefaultLabelGap, sub(t, second.Guide, "y").Float("padding"))
	assert.Equal(t, "Profit", sub(t, second.Guide, "y")["label"])
	assert.Equal(t, true, sub(t, second.Guide, "x")["hide"])
}

func TestLayerClonesRebindY(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeDock))
	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)

	base := frameUnit(t, s, 0)
	assert.Equal(t, "ELEMENT.LINE", base.Units[0].Type)
	assert.Equal(t, "y", base.Units[0].Y)
	require.Len(t, base.Units[0].Transformation, 1)
	assert.Equal(t, spec.Transformation{Type: TransformDefinedOnly, Args: map[string]any{"key": "sales"}}, base.Units[0].Transformation[0])

	cost := frameUnit(t, s, 1)
	assert.Equal(t, "layer:1:cost", cost.Y)
	assert.Equal(t, "ELEMENT.LINE", cost.Units[0].Type)
	assert.Equal(t, "layer:1:cost", cost.Units[0].Y)
	assert.Equal(t, "cost", sub(t, cost.Guide, "y")["label"])

	profit := frameUnit(t, s, 2)
	assert.Equal(t, "ELEMENT.INTERVAL", profit.Units[0].Type)
	assert.Equal(t, "layer:2:profit", profit.Units[0].Y)
	assert.Equal(t, []string{TransformDefinedOnly}, transformTypes(profit.Units[0]))
	assert.Equal(t, "profit", profit.Units[0].Transformation[0].Args["key"])

	sc, ok := sdk.Spec(s).Scale("layer:2:profit")
	require.True(t, ok)
	assert.Equal(t, &spec.Scale{Type: spec.ScaleLinear, Source: "/", Dim: "profit"}, sc)
}

func TestSyntheticRoot(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeDock))
	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)

	root := s.Unit
	assert.Equal(t, spec.CoordsRect, root.Type)
	assert.Equal(t, ScaleX, root.X)
	assert.Equal(t, ScaleY, root.Y)
	assert.Equal(t, SourceName, root.Expression.Source)

	src := s.Sources[SourceName]
	require.NotNil(t, src)
	assert.Len(t, src.Data, 1)
	assert.Equal(t, spec.DimCategory, src.Dims["x"].Type)
	assert.Equal(t, spec.ScaleOrdinal, s.Scales[ScaleX].Type)
	assert.Equal(t, "y", s.Scales[ScaleY].Dim)

	ids := make(map[any]bool)
	for i, f := range root.Frames {
		assert.Equal(t, SourceName, f.Source)
		assert.NotNil(t, f.Pipe)
		assert.Equal(t, i, f.Key["i"])
		ids[f.Key[sdk.FrameIDKey]] = true
	}
	assert.Len(t, ids, len(root.Frames), "frame ids must be distinct")
}

// =============================================================================
// Split
// =============================================================================

func TestSplitCells(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeSplit))
	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frames)

	assert.Len(t, s.Sources[SourceName].Data, 3)
	for i, f := range s.Unit.Frames {
		assert.Equal(t, i+1, f.Key["y"])
	}

	base := frameUnit(t, s, 0)
	assert.Equal(t, 40.0, sub(t, base.Guide, "padding").Float("l"), "split leaves base padding alone")

	for i := 1; i <= 2; i++ {
		u := frameUnit(t, s, i)
		assert.Equal(t, "xy", u.Guide["showGridLines"])
		assert.Equal(t, 20.0, sub(t, u.Guide, "y").Float("padding"))
	}
}

// =============================================================================
// Merge
// =============================================================================

func domains(m map[string][]any) DomainFunc {
	return func(scale string) []any { return m[scale] }
}

func TestMergeDomainUnion(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeMerge))
	res, err := st.Rewrite(s, domains(map[string][]any{
		"y":              {2.0, 8.0},
		"layer:1:cost":   {0.0, 10.0},
		"layer:2:profit": {5, 20},
	}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 20}, res.Domain)
	assert.Equal(t, 3, res.Frames)

	for _, name := range []string{"y", "layer:1:cost", "layer:2:profit"} {
		sc := s.Scales[name]
		require.NotNil(t, sc, name)
		require.NotNil(t, sc.Min, name)
		require.NotNil(t, sc.Max, name)
		require.NotNil(t, sc.AutoScale, name)
		assert.Equal(t, 0.0, *sc.Min, name)
		assert.Equal(t, 20.0, *sc.Max, name)
		assert.False(t, *sc.AutoScale, name)
	}

	base := frameUnit(t, s, 0)
	assert.Equal(t, "Sales, cost, Profit", sub(t, base.Guide, "y")["label"])
	for i := 1; i <= 2; i++ {
		assert.Equal(t, true, sub(t, frameUnit(t, s, i).Guide, "y")["hide"])
	}
}

func TestMergeExcludesNonNumericLayers(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeMerge))
	res, err := st.Rewrite(s, domains(map[string][]any{
		"y":              {2.0, 8.0},
		"layer:1:cost":   {0.0, math.Inf(1), 10.0},
		"layer:2:profit": {"a", nil, math.NaN()},
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{2}, res.Excluded)
	assert.Equal(t, 2, res.Frames)
	assert.Equal(t, []float64{0, 10}, res.Domain)
	assert.Nil(t, s.Scales["layer:2:profit"].Min)
	assert.Equal(t, "Sales, cost", sub(t, frameUnit(t, s, 0).Guide, "y")["label"])
}

// =============================================================================
// Gating and fallbacks
// =============================================================================

func TestApplicabilityGating(t *testing.T) {
	s := newChart()
	s.Scales["y"].Dim = "region"
	st := newStrategy(twoLayers(ModeDock))

	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, errors.ErrCodeNotApplicable, res.Diagnostics[0].Code)
	assert.False(t, st.Applicable())

	assert.Empty(t, s.Unit.Frames)
	assert.NotContains(t, s.Sources, SourceName)
	require.Len(t, s.Unit.Units, 1)
	assert.Equal(t, []string{TransformDefinedOnly}, transformTypes(s.Unit.Units[0]))
	assert.Equal(t, "region", s.Unit.Units[0].Transformation[0].Args["key"])
}

func TestCheckApplicable(t *testing.T) {
	tests := []struct {
		name  string
		unit  *spec.Unit
		count int
	}{
		{
			name: "plain",
			unit: &spec.Unit{Type: spec.CoordsRect, Units: []*spec.Unit{{Type: "ELEMENT.LINE", Y: "y"}}},
		},
		{
			name: "facet",
			unit: &spec.Unit{Type: spec.CoordsRect, Units: []*spec.Unit{
				{Type: spec.CoordsRect, Units: []*spec.Unit{{Type: "ELEMENT.LINE", Y: "y"}}},
			}},
			count: 1,
		},
		{
			name:  "non-rectangular",
			unit:  &spec.Unit{Type: "COORDS.PARALLEL", Units: []*spec.Unit{{Type: "PARALLEL/ELEMENT.LINE", Y: "y"}}},
			count: 1,
		},
		{
			name:  "categorical y and no y",
			unit:  &spec.Unit{Type: spec.CoordsRect, Units: []*spec.Unit{{Type: "ELEMENT.LINE", Y: "c"}, {Type: "ELEMENT.POINT"}}},
			count: 2,
		},
		{
			name:  "no elements",
			unit:  &spec.Unit{Type: spec.CoordsRect},
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newChart()
			s.Scales["c"] = &spec.Scale{Type: spec.ScaleOrdinal, Source: "/", Dim: "region"}
			s.Unit = tt.unit

			diags, err := CheckApplicable(s)
			require.NoError(t, err)
			assert.Len(t, diags, tt.count)
			for _, d := range diags {
				assert.Equal(t, errors.ErrCodeNotApplicable, d.Code)
				assert.NotEmpty(t, d.Path)
			}
		})
	}
}

func TestConfigErrorRendersUnmodifiedBase(t *testing.T) {
	s := newChart()
	want := spec.Clone(s.Unit)

	cfg := DefaultConfig()
	cfg.Layers = []Layer{{Type: "pie", Y: "cost"}, {Type: "line"}}
	st := newStrategy(cfg)

	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	require.Len(t, res.Diagnostics, 2)
	for _, d := range res.Diagnostics {
		assert.Equal(t, errors.ErrCodeInvalidConfig, d.Code)
	}
	assert.Equal(t, want, s.Unit)
}

func TestEmptyLayersRenderBaseOnly(t *testing.T) {
	s := newChart()
	st := newStrategy(DefaultConfig())

	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, "ELEMENT.LINE", s.Unit.Units[0].Type)
	assert.Equal(t, []string{TransformDefinedOnly}, transformTypes(s.Unit.Units[0]))
}

func TestSliceBy(t *testing.T) {
	s := newChart()
	cfg := DefaultConfig()
	cfg.Layers = []Layer{{Type: "dots", Y: "cost", By: "region", Is: "EU"}}
	st := newStrategy(cfg)

	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)

	el := frameUnit(t, s, 1).Units[0]
	assert.Equal(t, "ELEMENT.POINT", el.Type)
	assert.Equal(t, []string{TransformDefinedOnly, TransformSliceBy}, transformTypes(el))
	assert.Equal(t, map[string]any{"key": "region", "val": "EU"}, el.Transformation[1].Args)

	rows := sdk.Spec(s).Apply(s.Sources["/"].Data, el.Transformation)
	require.Len(t, rows, 1)
	assert.Equal(t, "EU", rows[0]["region"])
}

// =============================================================================
// Re-entrancy
// =============================================================================

func TestRepeatedPassesDoNotCompound(t *testing.T) {
	for _, mode := range Modes {
		t.Run(string(mode), func(t *testing.T) {
			s := newChart()
			st := newStrategy(twoLayers(mode))
			dom := domains(map[string][]any{
				"y":              {2.0, 8.0},
				"layer:1:cost":   {0.0, 10.0},
				"layer:2:profit": {5.0, 20.0},
			})

			_, err := st.Rewrite(s, dom)
			require.NoError(t, err)
			first, err := json.Marshal(s)
			require.NoError(t, err)

			_, err = st.Rewrite(s, dom)
			require.NoError(t, err)
			second, err := json.Marshal(s)
			require.NoError(t, err)

			assert.JSONEq(t, string(first), string(second))
		})
	}
}

func TestToggleOffRestoresBase(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeMerge))
	_, err := st.Rewrite(s, domains(map[string][]any{"y": {1.0}, "layer:1:cost": {3.0}, "layer:2:profit": {4.0}}))
	require.NoError(t, err)
	require.NotNil(t, s.Scales["y"].Min)

	st.SetConfig(UpdateConfig(st.Config(), Event{Type: EventToggleLayers, Checked: false}))
	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.False(t, res.Applied)

	assert.Equal(t, spec.CoordsRect, s.Unit.Type)
	assert.Equal(t, "y", s.Unit.Y)
	assert.Empty(t, s.Unit.Frames)
	assert.Nil(t, s.Scales["y"].Min, "merged domain must not outlive the merge pass")
	assert.NotContains(t, s.Sources, SourceName)
	assert.NotContains(t, s.Scales, "layer:1:cost")
	assert.NotContains(t, s.Scales, ScaleX)
}

func TestUserScaleWithLayerPrefixSurvives(t *testing.T) {
	s := newChart()
	s.Scales["layer:depth"] = s.Scales["y"]
	delete(s.Scales, "y")
	s.Unit.Y = "layer:depth"
	s.Unit.Units[0].Y = "layer:depth"
	st := newStrategy(twoLayers(ModeDock))

	for pass := 1; pass <= 2; pass++ {
		res, err := st.Rewrite(s, nil)
		require.NoError(t, err)
		assert.True(t, res.Applied, "pass %d", pass)
		assert.Empty(t, res.Diagnostics, "pass %d", pass)
		assert.Contains(t, s.Scales, "layer:depth", "pass %d", pass)
	}
	assert.Equal(t, "layer:depth", frameUnit(t, s, 0).Units[0].Y)

	st.SetConfig(UpdateConfig(st.Config(), Event{Type: EventToggleLayers, Checked: false}))
	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.Contains(t, s.Scales, "layer:depth")
	assert.NotContains(t, s.Scales, "layer:1:cost")
	assert.NotContains(t, s.Scales, ScaleY)
}

func TestUserSourceNamedLikeSyntheticSurvives(t *testing.T) {
	s := newChart()
	own := &spec.Source{Dims: map[string]spec.Dim{"k": {Type: spec.DimCategory}}, Data: []spec.Record{{"k": "a"}}}
	s.Sources[SourceName] = own.Clone()
	st := newStrategy(twoLayers(ModeDock))

	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)

	st.SetConfig(UpdateConfig(st.Config(), Event{Type: EventToggleLayers, Checked: false}))
	_, err = st.Rewrite(s, nil)
	require.NoError(t, err)
	assert.Equal(t, own, s.Sources[SourceName])
}

func TestLayerPaneKeepsOneElement(t *testing.T) {
	s := newChart()
	s.Unit.Units = append(s.Unit.Units,
		&spec.Unit{Type: "ELEMENT.POINT", X: "x", Y: "y", Expression: &spec.Expression{Source: "/", Inherit: true}})
	st := newStrategy(twoLayers(ModeSplit))

	res, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	require.Equal(t, 3, res.Frames)

	base := frameUnit(t, s, 0)
	require.Len(t, base.Units, 2)
	assert.Equal(t, "ELEMENT.LINE", base.Units[0].Type)
	assert.Equal(t, "ELEMENT.POINT", base.Units[1].Type)

	tests := []struct {
		frame    int
		elemType string
		y        string
	}{
		{1, "ELEMENT.LINE", "layer:1:cost"},
		{2, "ELEMENT.INTERVAL", "layer:2:profit"},
	}
	for _, tt := range tests {
		pane := frameUnit(t, s, tt.frame)
		require.Len(t, pane.Units, 1, "frame %d", tt.frame)
		assert.Equal(t, tt.elemType, pane.Units[0].Type)
		assert.Equal(t, tt.y, pane.Units[0].Y)
		assert.Equal(t, []string{TransformDefinedOnly}, transformTypes(pane.Units[0]))
	}
}

func TestStructuralCorruption(t *testing.T) {
	s := newChart()
	s.Unit.Units = append(s.Unit.Units, s.Unit)
	st := newStrategy(twoLayers(ModeDock))

	_, err := st.Rewrite(s, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeStructural))

	_, err = st.Rewrite(&spec.Spec{}, nil)
	assert.True(t, errors.Is(err, errors.ErrCodeStructural))
}

// =============================================================================
// Filters
// =============================================================================

func TestDefinedOnly(t *testing.T) {
	rows := []spec.Record{{"a": 1}, {"a": nil}, {"b": 2}, {"a": 0}}
	got := DefinedOnly(rows, map[string]any{"key": "a"})
	assert.Equal(t, []spec.Record{{"a": 1}, {"a": 0}}, got)
}

func TestSliceByFilter(t *testing.T) {
	rows := []spec.Record{{"k": 1.0}, {"k": 2}, {"k": "1"}, {}, {"k": nil}}

	assert.Equal(t, []spec.Record{{"k": 1.0}}, SliceBy(rows, map[string]any{"key": "k", "val": 1}))
	assert.Equal(t, []spec.Record{{"k": "1"}}, SliceBy(rows, map[string]any{"key": "k", "val": "1"}))
	assert.Equal(t, []spec.Record{{}, {"k": nil}}, SliceBy(rows, map[string]any{"key": "k", "val": nil}))
}

// =============================================================================
// Configuration, events, panel
// =============================================================================

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		count int
	}{
		{"valid", twoLayers(ModeSplit), 0},
		{"unknown mode", Config{Mode: "stack"}, 1},
		{"unknown type", Config{Layers: []Layer{{Type: "pie", Y: "a"}}}, 1},
		{"missing y", Config{Layers: []Layer{{Type: "line"}}}, 1},
		{"slash in y", Config{Layers: []Layer{{Type: "line", Y: "a/b"}}}, 1},
		{"min above max", Config{Layers: []Layer{{Type: "area", Y: "a", Guide: &LayerGuide{Min: ptr(5.0), Max: ptr(1.0)}}}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.cfg.Validate(), tt.count)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, cfg.ShowLayers)
	assert.True(t, cfg.ShowPanel)
	assert.Equal(t, ModeDock, cfg.Mode)
	assert.Equal(t, 30.0, cfg.UnitPad)
	assert.Equal(t, 10.0, cfg.LabelGap)
	assert.Equal(t, 10.0, cfg.LabelPadding)
}

func TestElementTypes(t *testing.T) {
	for layerType, want := range map[string]string{
		"line":        "ELEMENT.LINE",
		"area":        "ELEMENT.AREA",
		"dots":        "ELEMENT.POINT",
		"scatterplot": "ELEMENT.POINT",
		"bar":         "ELEMENT.INTERVAL",
		"stacked-bar": "ELEMENT.INTERVAL.STACKED",
	} {
		got, ok := ElementType(layerType)
		assert.True(t, ok, layerType)
		assert.Equal(t, want, got, layerType)
	}
	_, ok := ElementType("pie")
	assert.False(t, ok)
	assert.Len(t, LayerTypes(), 6)
}

func TestUpdateConfigIsPure(t *testing.T) {
	cfg := twoLayers(ModeDock)

	next := UpdateConfig(cfg, Event{Type: EventSetMode, Mode: ModeMerge})
	assert.Equal(t, ModeMerge, next.Mode)
	assert.Equal(t, ModeDock, cfg.Mode)

	next.Layers[0].Y = "changed"
	assert.Equal(t, "cost", cfg.Layers[0].Y)

	assert.Equal(t, ModeDock, UpdateConfig(cfg, Event{Type: EventSetMode, Mode: "bogus"}).Mode)
	assert.False(t, UpdateConfig(cfg, Event{Type: EventToggleLayers}).ShowLayers)
	assert.Equal(t, cfg, UpdateConfig(cfg, Event{Type: "unknown"}))
}

func TestNextMode(t *testing.T) {
	assert.Equal(t, ModeSplit, NextMode(ModeDock))
	assert.Equal(t, ModeMerge, NextMode(ModeSplit))
	assert.Equal(t, ModeDock, NextMode(ModeMerge))
	assert.Equal(t, ModeDock, NextMode(""))
}

func TestPanel(t *testing.T) {
	s := newChart()
	s.Scales["y"].Dim = "region"
	cfg := twoLayers(ModeDock)
	st := newStrategy(cfg)
	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)

	p := st.Panel()
	assert.Equal(t, PanelTitle, p.Title)
	assert.False(t, p.Checked)
	assert.False(t, p.Applicable)
	assert.Contains(t, p.Error, "should be a measure")
	assert.Equal(t, []string{"cost", "Profit"}, p.Layers)

	cfg.HideError = true
	st.SetConfig(cfg)
	assert.Empty(t, st.Panel().Error)
}

func TestPanelAfterConfigError(t *testing.T) {
	s := newChart()
	st := newStrategy(twoLayers(ModeDock))
	_, err := st.Rewrite(s, nil)
	require.NoError(t, err)
	require.True(t, st.Panel().Checked)

	bad := twoLayers(ModeDock)
	bad.Layers = append(bad.Layers, Layer{Type: "pie", Y: "cost"})
	st.SetConfig(bad)
	_, err = st.Rewrite(s, nil)
	require.NoError(t, err)

	p := st.Panel()
	assert.True(t, p.Applicable, "the chart itself still admits layers")
	assert.False(t, p.Checked, "no layers are drawn with an invalid configuration")
	assert.NotEmpty(t, p.Error)

	flat := newChart()
	flat.Scales["y"].Dim = "region"
	st = newStrategy(bad)
	_, err = st.Rewrite(flat, nil)
	require.NoError(t, err)
	assert.False(t, st.Panel().Applicable)
	assert.False(t, st.Applicable())
}

// =============================================================================
// Plugin
// =============================================================================

type fakeHost struct {
	refreshes int
	domains   map[string][]any
}

func (h *fakeHost) LiveDomain(scale string) []any     { return h.domains[scale] }
func (h *fakeHost) Refresh(context.Context) error     { h.refreshes++; return nil }
func (h *fakeHost) TraverseSpec(s *spec.Spec, v spec.VisitFunc) error {
	return spec.Traverse(s.Unit, v)
}

func TestPluginLifecycle(t *testing.T) {
	p, err := plugin.New(PluginName, func(v any) error {
		cfg := v.(*Config)
		cfg.Layers = []Layer{{Type: "area", Y: "cost"}}
		return nil
	})
	require.NoError(t, err)
	lp, ok := p.(*Plugin)
	require.True(t, ok)
	assert.True(t, lp.Config().ShowLayers, "defaults survive decoding")

	ctx := context.Background()
	host := &fakeHost{}
	require.NoError(t, p.Init(ctx, host))

	s := newChart()
	require.NoError(t, p.SpecReady(ctx, host, s))
	assert.Len(t, s.Unit.Frames, 2)
	require.NoError(t, p.RenderComplete(ctx, host))

	require.NoError(t, lp.Dispatch(ctx, Event{Type: EventSetMode, Mode: ModeSplit}))
	assert.Equal(t, 1, host.refreshes)
	assert.Equal(t, ModeSplit, lp.Config().Mode)

	var _ plugin.Reporter = lp
}
