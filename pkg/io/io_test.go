package io

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/layers"
)

const chartJSON = `{
  "scales": {
    "x": {"type": "linear", "source": "/", "dim": "date"},
    "y": {"type": "linear", "source": "/", "dim": "sales"}
  },
  "sources": {
    "/": {
      "dims": {"date": {"type": "measure"}, "sales": {"type": "measure"}},
      "data": [{"date": 1, "sales": 3}, {"date": 2, "sales": null}]
    }
  },
  "unit": {
    "type": "COORDS.RECT", "x": "x", "y": "y",
    "expression": {"source": "/", "inherit": false, "operator": false},
    "guide": {"padding": {"l": 40}, "y": {"label": "Sales"}},
    "units": [{"type": "ELEMENT.LINE", "x": "x", "y": "y"}]
  }
}`

func TestReadSpec(t *testing.T) {
	s, err := ReadSpec(strings.NewReader(chartJSON))
	require.NoError(t, err)

	assert.Equal(t, "COORDS.RECT", s.Unit.Type)
	require.Len(t, s.Unit.Units, 1)
	assert.Equal(t, "ELEMENT.LINE", s.Unit.Units[0].Type)
	assert.Equal(t, "sales", s.Scales["y"].Dim)
	assert.Len(t, s.Sources["/"].Data, 2)
	assert.Equal(t, 40.0, s.Unit.Guide.Sub("padding").Float("l"))
	assert.Equal(t, false, s.Unit.Expression.Operator)
}

func TestReadSpecRejects(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(string) string
		wantErr string
	}{
		{"malformed", func(string) string { return "{" }, "decode spec"},
		{"no unit", func(string) string { return `{"scales": {}}` }, "no root unit"},
		{"unknown scale ref", func(s string) string {
			return strings.Replace(s, `"units": [{"type": "ELEMENT.LINE", "x": "x", "y": "y"}]`, `"units": [{"type": "ELEMENT.LINE", "x": "x", "y": "nope"}]`, 1)
		}, "unknown scale"},
		{"unknown source", func(s string) string {
			return strings.Replace(s, `"source": "/", "dim": "date"`, `"source": "?", "dim": "date"`, 1)
		}, "unknown source"},
		{"unknown dim", func(s string) string {
			return strings.Replace(s, `"dim": "sales"}`, `"dim": "profit"}`, 1)
		}, "unknown dim"},
		{"bad scale type", func(s string) string {
			return strings.Replace(s, `{"type": "linear", "source": "/", "dim": "date"}`, `{"type": "log", "source": "/", "dim": "date"}`, 1)
		}, "unknown type"},
		{"bad unit type", func(s string) string {
			return strings.Replace(s, `"ELEMENT.LINE"`, `"A/B/ELEMENT.LINE"`, 1)
		}, "container prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSpec(strings.NewReader(tt.mutate(chartJSON)))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "code = %s", errors.GetCode(err))
		})
	}
}

func TestSpecRoundTrip(t *testing.T) {
	s, err := ReadSpec(strings.NewReader(chartJSON))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSpec(s, &buf))

	again, err := ReadSpec(&buf)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestImportExportSpec(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "chart.json")
	require.NoError(t, os.WriteFile(in, []byte(chartJSON), 0o644))

	s, err := ImportSpec(in)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.json")
	require.NoError(t, ExportSpec(s, out))
	_, err = ImportSpec(out)
	require.NoError(t, err)

	_, err = ImportSpec(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

const layersTOML = `
[pipeline]
plugins = ["layers"]

[plugins.layers]
mode = "merge"
hide_error = true
unit_pad = 24.0

[[plugins.layers.layers]]
type = "bar"
y = "profit"
by = "region"
is = "EU"
guide = { label = "Profit", min = 0.0, auto_scale = false }

[[plugins.layers.layers]]
type = "line"
y = "cost"
`

func TestReadConfig(t *testing.T) {
	c, err := ReadConfig(strings.NewReader(layersTOML))
	require.NoError(t, err)
	assert.Equal(t, []string{"layers"}, c.Plugins)
	assert.Equal(t, []string{"layers"}, c.Tables())

	cfg := layers.DefaultConfig()
	require.NoError(t, c.Decoder("layers")(&cfg))

	assert.Equal(t, layers.ModeMerge, cfg.Mode)
	assert.True(t, cfg.HideError)
	assert.True(t, cfg.ShowLayers, "unset keys keep defaults")
	assert.Equal(t, 24.0, cfg.UnitPad)
	assert.Equal(t, layers.DefaultLabelGap, cfg.LabelGap)

	require.Len(t, cfg.Layers, 2)
	bar := cfg.Layers[0]
	assert.Equal(t, "bar", bar.Type)
	assert.Equal(t, "profit", bar.Y)
	assert.Equal(t, "EU", bar.Is)
	require.NotNil(t, bar.Guide)
	assert.Equal(t, "Profit", bar.Guide.Label)
	require.NotNil(t, bar.Guide.Min)
	assert.Equal(t, 0.0, *bar.Guide.Min)
	assert.Nil(t, bar.Guide.Max)
	require.NotNil(t, bar.Guide.AutoScale)
	assert.False(t, *bar.Guide.AutoScale)
	assert.Equal(t, "cost", cfg.Layers[1].Label())

	assert.Empty(t, cfg.Validate())
}

func TestConfigMissingTable(t *testing.T) {
	c, err := ReadConfig(strings.NewReader("[pipeline]\nplugins = []\n"))
	require.NoError(t, err)
	assert.Empty(t, c.Decoders())

	cfg := layers.DefaultConfig()
	require.NoError(t, c.Decoder("layers")(&cfg))
	assert.Equal(t, layers.DefaultConfig(), cfg)
}

func TestConfigUndecodedKeys(t *testing.T) {
	c, err := ReadConfig(strings.NewReader("[plugins.layers]\nmdoe = \"split\"\n"))
	require.NoError(t, err)

	cfg := layers.DefaultConfig()
	require.NoError(t, c.Decoders()["layers"](&cfg))
	assert.Contains(t, c.Undecoded(), "plugins.layers.mdoe")
}

func TestReadConfigErrors(t *testing.T) {
	_, err := ReadConfig(strings.NewReader("[pipeline\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))

	_, err = ReadConfig(strings.NewReader("[pipeline]\nplugins = [\"\"]\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidName))

	_, err = ImportConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
