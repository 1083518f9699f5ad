package layers

// EventType names a sidebar interaction.
type EventType string

// Sidebar interactions.
const (
	EventToggleLayers EventType = "toggle-layers"
	EventSetMode      EventType = "set-mode"
)

// Event is one UI interaction delivered by the host.
type Event struct {
	Type    EventType `json:"type"`
	Checked bool      `json:"checked,omitempty"`
	Mode    Mode      `json:"mode,omitempty"`
}

// UpdateConfig returns the configuration that results from applying ev to
// cfg. It never modifies cfg. Unknown events and unknown modes leave the
// configuration unchanged.
func UpdateConfig(cfg Config, ev Event) Config {
	next := cfg.clone()
	switch ev.Type {
	case EventToggleLayers:
		next.ShowLayers = ev.Checked
	case EventSetMode:
		if ev.Mode.Valid() {
			next.Mode = ev.Mode
		}
	}
	return next
}

// NextMode returns the mode following m in [Modes], wrapping around.
func NextMode(m Mode) Mode {
	for i, candidate := range Modes {
		if candidate == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}
