package layers

import (
	"fmt"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/plugin"
	"github.com/matzehuels/layerspec/pkg/sdk"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// CheckApplicable reports every structural reason layers cannot be drawn on
// s. An empty result means the spec is applicable. The check never mutates s.
//
// A spec is not applicable when a leaf element's y dimension is not a
// measure, when the container holding a leaf element is nested inside
// another coordinate container (a facet), or when any unit sits inside a
// non-rectangular coordinate container. A chart without any element inside a
// coordinate container is not applicable either.
func CheckApplicable(s *spec.Spec) ([]plugin.Diagnostic, error) {
	sa := sdk.Spec(s)
	parents := make(map[*spec.Unit]*spec.Unit)
	paths := make(map[*spec.Unit]string)

	var diags []plugin.Diagnostic
	leaves := 0
	add := func(path, format string, args ...any) {
		diags = append(diags, plugin.Diagnostic{
			Code:    errors.ErrCodeNotApplicable,
			Message: fmt.Sprintf(format, args...),
			Path:    path,
		})
	}

	err := spec.Traverse(s.Unit, func(u, parent *spec.Unit) {
		parents[u] = parent
		paths[u] = unitPath(paths, u, parent)
		path := paths[u]

		if parent == nil {
			return
		}
		if parent.IsCoordinates() && parent.ContainerKind() != spec.DefaultContainerKind {
			add(path, "layers require rectangular coordinates, found %s", parent.Type)
		}
		if !isLeafElement(u, parent) {
			return
		}
		leaves++
		if grand := parents[parent]; grand != nil && grand.IsCoordinates() {
			add(path, "layers are not supported for faceted charts")
		}
		dim := sa.ScaleDim(u.Y)
		if !dim.IsMeasure() {
			if u.Y == "" {
				add(path, "element %s has no y scale", u.Type)
			} else {
				add(path, "y axis %q should be a measure", u.Y)
			}
		}
	})
	if err != nil {
		return nil, err
	}
	if leaves == 0 {
		add("unit", "chart has no elements inside a coordinate container")
	}
	return diags, nil
}

func unitPath(paths map[*spec.Unit]string, u, parent *spec.Unit) string {
	if parent == nil {
		return "unit"
	}
	for i, c := range parent.Units {
		if c == u {
			return fmt.Sprintf("%s/units[%d]", paths[parent], i)
		}
	}
	return paths[parent] + "/?"
}
