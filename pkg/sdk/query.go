package sdk

import (
	"encoding/json"
	"fmt"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/matzehuels/layerspec/pkg/spec"
)

// Query evaluates a JSONPath selector against the JSON form of s and returns
// the matching values as generic JSON data (maps, slices, scalars).
//
//	types, _ := sdk.Query(s, "$..units[*].type")
//	frames, _ := sdk.Query(s, "$.unit.frames[*].key")
//
// Transformation functions are not part of the JSON form and cannot be
// selected.
func Query(s *spec.Spec, selector string) ([]any, error) {
	x, err := jp.ParseString(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", selector, err)
	}

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode spec: %w", err)
	}
	tree, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse spec: %w", err)
	}

	return x.Get(tree), nil
}
