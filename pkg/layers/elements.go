package layers

import "sort"

var elementTypes = map[string]string{
	"line":        "ELEMENT.LINE",
	"area":        "ELEMENT.AREA",
	"dots":        "ELEMENT.POINT",
	"scatterplot": "ELEMENT.POINT",
	"bar":         "ELEMENT.INTERVAL",
	"stacked-bar": "ELEMENT.INTERVAL.STACKED",
}

// ElementType maps a layer type to the element type it renders as.
func ElementType(layerType string) (string, bool) {
	t, ok := elementTypes[layerType]
	return t, ok
}

// LayerTypes returns the accepted layer types in sorted order.
func LayerTypes() []string {
	types := make([]string, 0, len(elementTypes))
	for t := range elementTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
