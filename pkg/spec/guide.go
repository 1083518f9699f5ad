package spec

import "encoding/json"

// Guide holds display hints for a unit: padding, axis labels, grid lines.
// It is opaque to the engine except for the few sub-fields rewrites touch,
// which are reached through the helpers below. Nested objects decoded from
// JSON arrive as map[string]any and are accepted interchangeably with Guide.
type Guide map[string]any

// Sub returns the nested guide stored under key, creating it when absent or
// when the existing value is not an object. The returned guide aliases the
// stored map, so writes through it are visible from g.
func (g Guide) Sub(key string) Guide {
	switch v := g[key].(type) {
	case Guide:
		return v
	case map[string]any:
		return Guide(v)
	}
	sub := Guide{}
	g[key] = sub
	return sub
}

// Lookup returns the nested guide under key without creating it.
func (g Guide) Lookup(key string) (Guide, bool) {
	switch v := g[key].(type) {
	case Guide:
		return v, true
	case map[string]any:
		return Guide(v), true
	}
	return nil, false
}

// Float returns the numeric value under key, or 0 when absent or not a number.
func (g Guide) Float(key string) float64 {
	f, _ := toFloat(g[key])
	return f
}

// Add increments the numeric value under key by delta and returns the result.
func (g Guide) Add(key string, delta float64) float64 {
	v := g.Float(key) + delta
	g[key] = v
	return v
}

// Set stores value under key.
func (g Guide) Set(key string, value any) {
	g[key] = value
}

// String returns the string under key, or "".
func (g Guide) String(key string) string {
	s, _ := g[key].(string)
	return s
}

// LabelText returns the text of the guide's "label" entry, which is either a
// plain string or an object carrying "text" (or "_original_text" once a host
// has formatted it).
func (g Guide) LabelText() string {
	switch v := g["label"].(type) {
	case string:
		return v
	case map[string]any:
		return labelObjectText(v)
	case Guide:
		return labelObjectText(v)
	}
	return ""
}

func labelObjectText(m map[string]any) string {
	if s, ok := m["_original_text"].(string); ok && s != "" {
		return s
	}
	s, _ := m["text"].(string)
	return s
}

// ToFloat converts a decoded data value to float64. It accepts every numeric
// kind encoding/json and hand-built records produce. Strings are not numbers.
func ToFloat(v any) (float64, bool) {
	return toFloat(v)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
