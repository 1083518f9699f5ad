// Package layers implements the layer rewrite strategy: it turns one chart
// spec into a multi-pane chart where every configured layer renders an
// additional measure against the same x axis.
//
// # Layout Modes
//
// Three layout modes share one algorithm:
//
//   - [ModeDock]: all panes overlay one cell; per-layer y labels are stacked
//     on the left by widening the base pane's padding
//   - [ModeSplit]: every layer gets its own cell below the base pane
//   - [ModeMerge]: all panes overlay one cell and share a single y domain,
//     the union of the live domains of every merged scale
//
// # Pass Structure
//
// Each call to [Strategy.Rewrite] rebuilds the chart from a retained template:
// a deep copy of the root unit taken before the first pass ever mutated the
// spec. Repeated passes therefore never compound.
//
//  1. Validate the configuration. Errors render the unmodified base.
//  2. Check applicability on the template. Violations render the base with
//     defined-only filtering.
//  3. Synthesize a "$layers" source, two ordinal scales over it, and a new
//     COORDS.RECT root with one frame per pane.
//
// Diagnostics from the last pass are available from [Strategy.Diagnostics]
// and summarized for a sidebar by [Strategy.Panel].
//
// # Configuration Changes
//
// UI events never mutate a live configuration. [UpdateConfig] maps an event to
// a new [Config]; the host installs it and refreshes.
package layers
