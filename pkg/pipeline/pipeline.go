// Package pipeline is the reference chart host for layerspec.
//
// A [Runner] owns one live spec and drives the registered rewrite plugins
// through their lifecycle. It implements [plugin.Host]: live domains are
// computed from the spec's own source data, and Refresh simply runs another
// pass over the live spec.
//
// # Passes
//
// Every call to [Runner.Execute] is one render cycle:
//
//  1. Init every plugin (first pass only)
//  2. SpecReady on every plugin, in configuration order
//  3. RenderComplete on every plugin
//
// Passes are serialized; the spec has a single owner while a pass runs.
// Plugins must not call Refresh from inside a hook.
//
// # Usage
//
//	s, _ := io.ImportSpec("chart.json")
//	r, err := pipeline.NewRunner(s, pipeline.Options{
//	    Plugins:  []string{"layers"},
//	    Decoders: cfg.Decoders(),
//	    Logger:   logger,
//	})
//	if err != nil {
//	    return err
//	}
//	result, err := r.Execute(ctx)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// DefaultPlugin is the plugin run when Options names none.
const DefaultPlugin = "layers"

// Lifecycle hook names, as reported to observability hooks and in errors.
const (
	HookInit           = "init"
	HookSpecReady      = "spec-ready"
	HookRenderComplete = "render-complete"
)

// Decoder fills a plugin's configuration value.
type Decoder = func(v any) error

// =============================================================================
// Options - Runner Configuration
// =============================================================================

// Options configures a Runner.
type Options struct {
	// Plugins lists the plugins to run, in order.
	Plugins []string `json:"plugins,omitempty"`

	// Runtime options (not serialized)
	Decoders map[string]Decoder `json:"-"`
	Logger   *log.Logger        `json:"-"`

	validated bool
}

// Result describes one completed pass.
type Result struct {
	// PassID identifies the pass in logs.
	PassID string `json:"pass_id"`

	// Spec is the live spec after the pass.
	Spec *spec.Spec `json:"spec"`

	// Diagnostics holds the messages each reporting plugin produced,
	// keyed by plugin name.
	Diagnostics map[string][]plugin.Diagnostic `json:"diagnostics,omitempty"`

	Stats Stats `json:"stats"`
}

// Stats contains pass statistics.
type Stats struct {
	Pass     int           `json:"pass"`
	Units    int           `json:"units"`
	Frames   int           `json:"frames"`
	Duration time.Duration `json:"duration"`
}

// HasDiagnostics reports whether any plugin reported a problem.
func (r *Result) HasDiagnostics() bool {
	for _, d := range r.Diagnostics {
		if len(d) > 0 {
			return true
		}
	}
	return false
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidatePlugin checks that name is a registered plugin.
func ValidatePlugin(name string) error {
	if err := errors.ValidateName("plugin", name); err != nil {
		return err
	}
	if _, err := plugin.Lookup(name); err != nil {
		return fmt.Errorf("invalid plugin: %q (must be one of: %v): %w", name, plugin.Names(), err)
	}
	return nil
}

// ValidatePlugins checks that every name is registered and appears once.
func ValidatePlugins(names []string) error {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := ValidatePlugin(name); err != nil {
			return err
		}
		if seen[name] {
			return fmt.Errorf("plugin %q listed twice", name)
		}
		seen[name] = true
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if len(o.Plugins) == 0 {
		o.Plugins = []string{DefaultPlugin}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateAndSetDefaults applies defaults and validates the plugin list.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidatePlugins(o.Plugins); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// decoder returns the configured decoder for name, or one that keeps the
// plugin's defaults.
func (o *Options) decoder(name string) Decoder {
	if d, ok := o.Decoders[name]; ok && d != nil {
		return d
	}
	return plugin.NoDecode
}
