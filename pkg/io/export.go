package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/layerspec/pkg/spec"
)

// WriteSpec encodes s as indented JSON and writes it to w.
// The output can be re-imported with [ReadSpec].
func WriteSpec(s *spec.Spec, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportSpec writes s to a JSON file at path.
func ExportSpec(s *spec.Spec, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteSpec(s, f)
}
