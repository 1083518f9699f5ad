package sdk

import (
	"strings"

	"github.com/matzehuels/layerspec/pkg/spec"
)

// FieldInfo summarizes how a bound dimension is presented across the spec.
type FieldInfo struct {
	Label     string // first non-empty guide label, else the dimension name
	Format    string // tick format or period name; "" when none
	NullAlias string // text shown for null values
	TickLabel string // sub-field used as tick label for complex values

	// ParentField names the synthetic entry derived for a complex field.
	ParentField string
	// IsComplexField marks entries derived from a TickLabel.
	IsComplexField bool
}

type fieldSlots struct {
	label, format, nullAlias, tickLabel []string
}

// FieldsInfo collects label, format, and null-alias information for every
// dimension bound through a scale. Rectangular coordinate containers
// contribute their x and y guides; any unit contributes color and size.
// When guides disagree, the first non-empty value in traversal order wins.
func FieldsInfo(s *spec.Spec) map[string]*FieldInfo {
	slots := make(map[string]*fieldSlots)
	var order []string

	fill := func(u *spec.Unit, key, scaleName string) {
		sc, ok := s.Scales[scaleName]
		if !ok || sc == nil || sc.Dim == "" {
			return
		}
		fs, ok := slots[sc.Dim]
		if !ok {
			fs = &fieldSlots{}
			slots[sc.Dim] = fs
			order = append(order, sc.Dim)
		}
		var g spec.Guide
		if u.Guide != nil {
			g, _ = u.Guide.Lookup(key)
		}
		fs.label = append(fs.label, g.LabelText())
		format := g.String("tickFormat")
		if format == "" {
			format = g.String("tickPeriod")
		}
		fs.format = append(fs.format, format)
		fs.nullAlias = append(fs.nullAlias, g.String("tickFormatNullAlias"))
		fs.tickLabel = append(fs.tickLabel, g.String("tickLabel"))
	}

	_ = spec.Traverse(s.Unit, func(u, _ *spec.Unit) {
		if u.Type == spec.CoordsRect {
			if u.X != "" {
				fill(u, "x", u.X)
			}
			if u.Y != "" {
				fill(u, "y", u.Y)
			}
		}
		if u.Color != "" {
			fill(u, "color", u.Color)
		}
		if u.Size != "" {
			fill(u, "size", u.Size)
		}
	})

	out := make(map[string]*FieldInfo, len(slots))
	for _, dim := range order {
		fs := slots[dim]
		info := &FieldInfo{
			Label:     firstNonEmpty(fs.label, dim),
			Format:    firstNonEmpty(fs.format, ""),
			TickLabel: firstNonEmpty(fs.tickLabel, ""),
		}
		info.NullAlias = firstNonEmpty(fs.nullAlias, "No "+info.Label)
		if info.Format == "x-time-auto" {
			info.Format = "day"
		}
		out[dim] = info

		if info.TickLabel != "" {
			parent := strings.Replace(dim, "."+info.TickLabel, "", 1)
			out[parent] = &FieldInfo{
				Label:          info.Label,
				Format:         info.Format,
				NullAlias:      info.NullAlias,
				TickLabel:      info.TickLabel,
				IsComplexField: true,
			}
			info.ParentField = parent
		}
	}
	return out
}

func firstNonEmpty(values []string, fallback string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return fallback
}
