package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/layerspec/pkg/errors"
	"github.com/matzehuels/layerspec/pkg/spec"
)

// ReadSpec decodes a JSON spec from r and validates it with [ValidateSpec].
// ReadSpec does not close r.
func ReadSpec(r io.Reader) (*spec.Spec, error) {
	var s spec.Spec
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode spec")
	}
	if err := ValidateSpec(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ImportSpec reads a JSON spec file at path.
func ImportSpec(path string) (*spec.Spec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	s, err := ReadSpec(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ValidateSpec checks the structural and reference invariants of s.
func ValidateSpec(s *spec.Spec) error {
	if s.Unit == nil {
		return errors.New(errors.ErrCodeInvalidInput, "spec has no root unit")
	}

	for name, sc := range s.Scales {
		if sc == nil {
			return errors.New(errors.ErrCodeInvalidInput, "scale %q is null", name)
		}
		if sc.Type != spec.ScaleLinear && sc.Type != spec.ScaleOrdinal {
			return errors.New(errors.ErrCodeInvalidInput, "scale %q has unknown type %q", name, sc.Type)
		}
		src, ok := s.Sources[sc.Source]
		if !ok || src == nil {
			return errors.New(errors.ErrCodeInvalidInput, "scale %q references unknown source %q", name, sc.Source)
		}
		if _, ok := src.Dims[sc.Dim]; !ok {
			return errors.New(errors.ErrCodeInvalidInput, "scale %q references unknown dim %q of source %q", name, sc.Dim, sc.Source)
		}
	}

	var problem error
	check := func(u *spec.Unit) {
		if problem != nil {
			return
		}
		if err := errors.ValidateElementType(u.Type); err != nil {
			problem = err
			return
		}
		for _, ref := range u.ScaleRefs() {
			if _, ok := s.Scales[ref]; !ok {
				problem = errors.New(errors.ErrCodeInvalidInput, "unit %s references unknown scale %q", u.Type, ref)
				return
			}
		}
	}
	if err := walkAll(s.Unit, check); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid unit tree")
	}
	if problem != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, problem, "invalid unit")
	}
	return nil
}

// walkAll visits every unit reachable through units and frames.
func walkAll(root *spec.Unit, fn func(*spec.Unit)) error {
	var nested []*spec.Unit
	err := spec.Traverse(root, func(u, _ *spec.Unit) {
		fn(u)
		for _, f := range u.Frames {
			if f != nil {
				nested = append(nested, f.Units...)
			}
		}
	})
	if err != nil {
		return err
	}
	for _, u := range nested {
		if u == nil {
			return errors.New(errors.ErrCodeStructural, "frame holds a nil unit")
		}
		if err := walkAll(u, fn); err != nil {
			return err
		}
	}
	return nil
}
