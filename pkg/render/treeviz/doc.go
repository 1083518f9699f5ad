// Package treeviz renders the unit tree of a chart spec as a Graphviz
// diagram, for inspecting what a rewrite pass produced.
//
// # Usage
//
//	dot, err := treeviz.ToDOT(s, treeviz.Options{Detailed: true})
//	svg, err := treeviz.RenderSVG(dot)
//
// Coordinate containers are drawn as rounded boxes and elements as ellipses.
// Child units hang off their parent with solid edges. Each frame becomes a
// cluster labeled with its key; its units connect to the owning container
// with a dashed edge.
//
// # Options
//
//   - Detailed: add transformation pipelines and guide keys to labels
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package treeviz
