package pipeline

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/observability"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

type namedPlugin struct {
	name string
	p    plugin.Plugin
}

// loggerSetter is implemented by plugins that accept the runner's logger.
type loggerSetter interface {
	SetLogger(*log.Logger)
}

// Runner owns a live spec and runs plugin passes over it.
//
// Execute and Refresh are safe to call from multiple goroutines; passes run
// one at a time. LiveDomain and TraverseSpec read the live spec and are meant
// to be called by plugins during a pass.
type Runner struct {
	Logger *log.Logger

	spec    *spec.Spec
	plugins []namedPlugin

	mu          sync.Mutex
	initialized bool
	passes      int
	last        *Result
}

// NewRunner creates a runner over s and instantiates the configured plugins.
func NewRunner(s *spec.Spec, opts Options) (*Runner, error) {
	if s == nil || s.Unit == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "spec has no root unit")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	r := &Runner{Logger: opts.Logger, spec: s}
	for _, name := range opts.Plugins {
		p, err := plugin.New(name, opts.decoder(name))
		if err != nil {
			return nil, err
		}
		if ls, ok := p.(loggerSetter); ok {
			ls.SetLogger(opts.Logger.WithPrefix(name))
		}
		r.plugins = append(r.plugins, namedPlugin{name: name, p: p})
	}
	return r, nil
}

// Spec returns the live spec.
func (r *Runner) Spec() *spec.Spec { return r.spec }

// Plugin returns the running instance of the named plugin.
func (r *Runner) Plugin(name string) (plugin.Plugin, bool) {
	for _, np := range r.plugins {
		if np.name == name {
			return np.p, true
		}
	}
	return nil, false
}

// Last returns the result of the most recent pass, or nil before the first.
func (r *Runner) Last() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

// Execute runs one pass: Init (first pass only), SpecReady, and
// RenderComplete on every plugin. A hook error aborts the pass.
func (r *Runner) Execute(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	passID := uuid.NewString()
	start := time.Now()
	logger := r.Logger.With("pass", passID[:8])
	observability.Pass().OnPassStart(ctx, passID, len(r.plugins))

	result, err := r.execute(ctx, passID, logger)
	duration := time.Since(start)

	frames := 0
	if result != nil {
		result.Stats.Duration = duration
		frames = result.Stats.Frames
	}
	observability.Pass().OnPassComplete(ctx, passID, frames, duration, err)
	if err != nil {
		logger.Error("pass failed", "error", err, "duration", duration)
		return nil, err
	}

	logger.Info("pass complete",
		"units", result.Stats.Units,
		"frames", result.Stats.Frames,
		"duration", duration)
	r.last = result
	return result, nil
}

func (r *Runner) execute(ctx context.Context, passID string, logger *log.Logger) (*Result, error) {
	if !r.initialized {
		for _, np := range r.plugins {
			if err := r.call(ctx, np, HookInit, func() error { return np.p.Init(ctx, r) }); err != nil {
				return nil, err
			}
		}
		r.initialized = true
	}

	// Non-fatal hook errors become diagnostics of their plugin.
	soft := make(map[string][]plugin.Diagnostic)
	for _, np := range r.plugins {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := r.call(ctx, np, HookSpecReady, func() error { return np.p.SpecReady(ctx, r, r.spec) })
		if err == nil {
			continue
		}
		code := errors.GetCode(err)
		if code.IsFatal() {
			return nil, err
		}
		soft[np.name] = append(soft[np.name], plugin.Diagnostic{Code: code, Message: errors.UserMessage(err)})
	}

	result := &Result{PassID: passID, Spec: r.spec}
	for _, np := range r.plugins {
		diags := soft[np.name]
		if rep, ok := np.p.(plugin.Reporter); ok {
			diags = append(diags, rep.Diagnostics()...)
		}
		if len(diags) == 0 {
			continue
		}
		if result.Diagnostics == nil {
			result.Diagnostics = make(map[string][]plugin.Diagnostic)
		}
		result.Diagnostics[np.name] = diags
		for _, d := range diags {
			logger.Warn(d.Message, "plugin", np.name, "code", d.Code, "path", d.Path)
		}
	}

	for _, np := range r.plugins {
		if err := r.call(ctx, np, HookRenderComplete, func() error { return np.p.RenderComplete(ctx, r) }); err != nil {
			return nil, err
		}
	}

	r.passes++
	result.Stats.Pass = r.passes
	stats, err := countTree(r.spec.Unit)
	if err != nil {
		return nil, err
	}
	result.Stats.Units, result.Stats.Frames = stats.units, stats.frames
	return result, nil
}

func (r *Runner) call(ctx context.Context, np namedPlugin, hook string, fn func() error) error {
	start := time.Now()
	observability.Pass().OnPluginStart(ctx, np.name, hook)
	err := fn()
	observability.Pass().OnPluginComplete(ctx, np.name, hook, time.Since(start), err)
	if err != nil {
		return fmt.Errorf("%s %s: %w", np.name, hook, err)
	}
	return nil
}

type treeStats struct {
	units, frames int
}

// countTree counts units and frames, descending into frame children.
func countTree(root *spec.Unit) (treeStats, error) {
	var st treeStats
	var nested []*spec.Unit
	err := spec.Traverse(root, func(node, _ *spec.Unit) {
		st.units++
		st.frames += len(node.Frames)
		for _, f := range node.Frames {
			nested = append(nested, f.Units...)
		}
	})
	if err != nil {
		return st, err
	}
	for _, u := range nested {
		sub, err := countTree(u)
		if err != nil {
			return st, err
		}
		st.units += sub.units
		st.frames += sub.frames
	}
	return st, nil
}

// =============================================================================
// plugin.Host
// =============================================================================

// Refresh runs another pass.
func (r *Runner) Refresh(ctx context.Context) error {
	_, err := r.Execute(ctx)
	return err
}

// TraverseSpec walks s.Unit in pre-order. See [spec.Traverse].
func (r *Runner) TraverseSpec(s *spec.Spec, visit spec.VisitFunc) error {
	return spec.Traverse(s.Unit, visit)
}

// LiveDomain computes the domain of the named scale from the live spec's
// source data. Linear scales yield [min, max] over numeric values, widened
// by explicit scale bounds; when a linear dimension holds no numbers, its
// distinct raw values are returned instead. Ordinal scales yield distinct
// values in first-seen order. Unknown scales yield an empty slice.
func (r *Runner) LiveDomain(scale string) []any {
	return LiveDomain(r.spec, scale)
}

// LiveDomain is the domain oracle used by [Runner.LiveDomain].
func LiveDomain(s *spec.Spec, scale string) []any {
	sa := sdk.Spec(s)
	sc, ok := sa.Scale(scale)
	if !ok {
		return []any{}
	}
	rows := sa.SourceData(sc.Source)

	if sc.Type == spec.ScaleLinear {
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, row := range rows {
			if f, ok := spec.ToFloat(row[sc.Dim]); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				lo, hi = math.Min(lo, f), math.Max(hi, f)
			}
		}
		if sc.Min != nil {
			lo = math.Min(lo, *sc.Min)
		}
		if sc.Max != nil {
			hi = math.Max(hi, *sc.Max)
		}
		if lo <= hi {
			return []any{lo, hi}
		}
	}
	return distinct(rows, sc.Dim)
}

func distinct(rows []spec.Record, dim string) []any {
	out := []any{}
	seen := make(map[any]bool)
	for _, row := range rows {
		v, ok := row[dim]
		if !ok {
			continue
		}
		key := v
		if !isComparable(v) {
			key = fmt.Sprint(v)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

func isComparable(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint64:
		return true
	}
	return false
}
