package layers

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// PluginName is the registry name of the layers plugin.
const PluginName = "layers"

func init() {
	plugin.Register(PluginName, NewPlugin)
}

// Plugin adapts a [Strategy] to the host lifecycle.
type Plugin struct {
	*Strategy
	host plugin.Host
}

// NewPlugin is the [plugin.Factory] for the layers plugin. decode receives a
// *Config pre-filled by [DefaultConfig].
func NewPlugin(decode func(v any) error) (plugin.Plugin, error) {
	cfg := DefaultConfig()
	if err := decode(&cfg); err != nil {
		return nil, err
	}
	return &Plugin{Strategy: New(cfg)}, nil
}

// SetLogger replaces the strategy's logger.
func (p *Plugin) SetLogger(l *log.Logger) {
	if l != nil {
		p.Logger = l
	}
}

// Init remembers the host so UI events can trigger refreshes.
func (p *Plugin) Init(_ context.Context, host plugin.Host) error {
	p.host = host
	return nil
}

// SpecReady rewrites s using the host's live domains.
func (p *Plugin) SpecReady(_ context.Context, host plugin.Host, s *spec.Spec) error {
	_, err := p.Rewrite(s, host.LiveDomain)
	return err
}

// RenderComplete logs the sidebar state.
func (p *Plugin) RenderComplete(context.Context, plugin.Host) error {
	panel := p.Panel()
	if !panel.Visible {
		return nil
	}
	p.Logger.Debug("layers panel",
		"checked", panel.Checked,
		"mode", panel.Mode,
		"error", panel.Error)
	return nil
}

// Dispatch applies a UI event to the configuration and asks the host to
// re-run the pipeline.
func (p *Plugin) Dispatch(ctx context.Context, ev Event) error {
	p.SetConfig(UpdateConfig(p.Config(), ev))
	if p.host == nil {
		return nil
	}
	return p.host.Refresh(ctx)
}
