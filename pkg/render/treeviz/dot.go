package treeviz

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// Options configures tree rendering.
type Options struct {
	// Detailed includes transformations and guide keys in unit labels.
	// When false, only the type and scale bindings are shown.
	Detailed bool
}

type writer struct {
	buf      bytes.Buffer
	opts     Options
	ids      map[*spec.Unit]string
	clusters int
}

// ToDOT converts the unit tree of s, frames included, to Graphviz DOT.
// It returns a STRUCTURAL_CORRUPTION error when a unit is reachable twice.
func ToDOT(s *spec.Spec, opts Options) (string, error) {
	if s == nil || s.Unit == nil {
		return "", errors.New(errors.ErrCodeInvalidInput, "spec has no root unit")
	}

	w := &writer{opts: opts, ids: make(map[*spec.Unit]string)}
	w.buf.WriteString("digraph G {\n")
	w.buf.WriteString("  rankdir=TB;\n")
	w.buf.WriteString("  bgcolor=\"transparent\";\n")
	w.buf.WriteString("  node [fontsize=14, margin=\"0.15,0.08\"];\n")
	w.buf.WriteString("  ranksep=0.4;\n")
	w.buf.WriteString("  nodesep=0.3;\n")
	w.buf.WriteString("\n")

	if err := w.unit(s.Unit, "  "); err != nil {
		return "", err
	}

	w.buf.WriteString("}\n")
	return w.buf.String(), nil
}

func (w *writer) unit(u *spec.Unit, indent string) error {
	if _, seen := w.ids[u]; seen {
		return errors.New(errors.ErrCodeStructural, "unit %q reached twice while rendering", u.Type)
	}
	id := fmt.Sprintf("u%d", len(w.ids))
	w.ids[u] = id

	fmt.Fprintf(&w.buf, "%s%s [%s];\n", indent, id, strings.Join(fmtAttrs(u, w.opts.Detailed), ", "))

	for _, child := range u.Units {
		if child == nil {
			return errors.New(errors.ErrCodeStructural, "unit %q has a nil child", u.Type)
		}
		if err := w.unit(child, indent); err != nil {
			return err
		}
		fmt.Fprintf(&w.buf, "%s%s -> %s;\n", indent, id, w.ids[child])
	}

	for _, f := range u.Frames {
		if f == nil {
			continue
		}
		fmt.Fprintf(&w.buf, "%ssubgraph cluster_%d {\n", indent, w.clusters)
		w.clusters++
		inner := indent + "  "
		fmt.Fprintf(&w.buf, "%slabel=%q;\n", inner, fmtKey(f))
		fmt.Fprintf(&w.buf, "%sstyle=dashed;\n", inner)
		for _, child := range f.Units {
			if child == nil {
				return errors.New(errors.ErrCodeStructural, "frame of %q holds a nil unit", u.Type)
			}
			if err := w.unit(child, inner); err != nil {
				return err
			}
		}
		fmt.Fprintf(&w.buf, "%s}\n", indent)
		for _, child := range f.Units {
			fmt.Fprintf(&w.buf, "%s%s -> %s [style=dashed];\n", indent, id, w.ids[child])
		}
	}
	return nil
}

func fmtLabel(u *spec.Unit, detailed bool) string {
	lines := []string{u.Type}
	var refs []string
	for _, b := range [][2]string{{"x", u.X}, {"y", u.Y}, {"color", u.Color}, {"size", u.Size}} {
		if b[1] != "" {
			refs = append(refs, b[0]+"="+b[1])
		}
	}
	if len(refs) > 0 {
		lines = append(lines, strings.Join(refs, " "))
	}
	if !detailed {
		return strings.Join(lines, "\n")
	}

	for _, t := range u.Transformation {
		lines = append(lines, fmt.Sprintf("| %s %v", t.Type, fmtArgs(t.Args)))
	}
	if len(u.Guide) > 0 {
		lines = append(lines, "guide: "+strings.Join(slices.Sorted(maps.Keys(u.Guide)), ", "))
	}
	return strings.Join(lines, "\n")
}

func fmtArgs(args map[string]any) string {
	parts := make([]string, 0, len(args))
	for _, k := range slices.Sorted(maps.Keys(args)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, args[k]))
	}
	return strings.Join(parts, " ")
}

func fmtKey(f *spec.Frame) string {
	parts := make([]string, 0, len(f.Key))
	for _, k := range slices.Sorted(maps.Keys(f.Key)) {
		parts = append(parts, fmt.Sprintf("%s=%v", k, f.Key[k]))
	}
	label := strings.Join(parts, " ")
	if f.Source != "" {
		label += " @ " + f.Source
	}
	return label
}

func fmtAttrs(u *spec.Unit, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(u, detailed))}
	if u.IsCoordinates() {
		attrs = append(attrs, "shape=box", "style=\"rounded,filled\"", "fillcolor=white")
	} else {
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=lightgrey")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg tag so the drawing scales from a
// zero origin.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
