package layers

import "strings"

// PanelTitle is the heading of the layers sidebar.
const PanelTitle = "Layers"

// Panel is what the layers sidebar shows after a pass.
type Panel struct {
	Title      string   `json:"title"`
	Visible    bool     `json:"visible"`
	Checked    bool     `json:"checked"`
	Applicable bool     `json:"applicable"`
	Mode       Mode     `json:"mode"`
	Layers     []string `json:"layers"`
	Error      string   `json:"error,omitempty"`
}

// Panel returns the sidebar state for the current configuration and the
// diagnostics of the last pass. The error text is empty when HideError is
// set.
func (st *Strategy) Panel() Panel {
	st.mu.Lock()
	defer st.mu.Unlock()

	p := Panel{
		Title:      PanelTitle,
		Visible:    st.cfg.ShowPanel,
		Checked:    st.cfg.ShowLayers && st.applicable && st.configOK,
		Applicable: st.applicable,
		Mode:       st.cfg.Mode,
	}
	for _, l := range st.cfg.Layers {
		p.Layers = append(p.Layers, l.Label())
	}
	if !st.cfg.HideError && len(st.diags) > 0 {
		msgs := make([]string, len(st.diags))
		for i, d := range st.diags {
			msgs[i] = d.String()
		}
		p.Error = strings.Join(msgs, "\n")
	}
	return p
}
