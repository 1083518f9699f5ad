// Package plugin defines the lifecycle contract between a chart host and the
// spec rewrite strategies it runs.
//
// A host owns the live spec and drives every registered plugin through three
// hooks per render cycle:
//
//  1. Init, once, before the first pass
//  2. SpecReady, with the live spec, before layout and render
//  3. RenderComplete, after the host has drawn the rewritten spec
//
// Plugins mutate the spec in place during SpecReady. The host guarantees the
// spec has a single owner for the duration of the call; plugins must not keep
// references to it across passes.
//
// # Registration
//
// Strategies register a [Factory] under a name, usually from an init function:
//
//	func init() {
//	    plugin.Register("layers", NewPlugin)
//	}
//
// Hosts create instances by name, passing a decode function that fills the
// plugin's own configuration struct (from TOML, JSON, or defaults):
//
//	p, err := plugin.New("layers", func(v any) error {
//	    return md.PrimitiveDecode(prim, v)
//	})
package plugin

import (
	"context"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// Host is the chart host as seen from a plugin.
type Host interface {
	// LiveDomain returns the host's resolved data-driven extent for the named
	// scale. Unknown scales yield an empty slice.
	LiveDomain(scale string) []any

	// Refresh re-runs the whole pipeline from current settings.
	Refresh(ctx context.Context) error

	// TraverseSpec walks s in pre-order with parent tracking, with the same
	// semantics as [spec.Traverse].
	TraverseSpec(s *spec.Spec, visit spec.VisitFunc) error
}

// Plugin is a spec rewrite strategy.
type Plugin interface {
	Init(ctx context.Context, host Host) error
	SpecReady(ctx context.Context, host Host, s *spec.Spec) error
	RenderComplete(ctx context.Context, host Host) error
}

// Diagnostic is a user-visible message produced by a plugin pass.
type Diagnostic struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
	Path    string      `json:"path,omitempty"` // unit path, e.g. "unit/units[0]"
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return d.Message
	}
	return d.Path + ": " + d.Message
}

// Reporter is implemented by plugins that surface diagnostics from their most
// recent pass.
type Reporter interface {
	Diagnostics() []Diagnostic
}

// Factory creates a plugin. decode fills the plugin's configuration value; it
// leaves fields it has no data for untouched.
type Factory func(decode func(v any) error) (Plugin, error)

// NoDecode is a decode function that leaves the configuration at its defaults.
func NoDecode(any) error { return nil }
