package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds scale, source, and field names accepted from
// configuration files.
const maxNameLength = 256

// ValidateName validates a registry name (scale, source, transformation, or
// plugin name) supplied by configuration.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No surrounding whitespace
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "%s name contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "%s name %q has surrounding whitespace", kind, name)
	}

	return nil
}

// ValidateFieldName validates a data field (dimension) name referenced by a
// layer descriptor. Field names additionally may not contain '/' because the
// element type grammar uses it as the container-kind separator.
func ValidateFieldName(name string) error {
	if err := ValidateName("field", name); err != nil {
		return err
	}
	if strings.Contains(name, "/") {
		return New(ErrCodeInvalidName, "field name %q cannot contain '/'", name)
	}
	return nil
}

// ValidateElementType checks the shape of a unit type tag such as
// "ELEMENT.LINE" or "PARALLEL/ELEMENT.LINE": at most one container-kind
// prefix, no empty segments.
func ValidateElementType(t string) error {
	if t == "" {
		return New(ErrCodeStructural, "unit type cannot be empty")
	}
	parts := strings.Split(t, "/")
	if len(parts) > 2 {
		return New(ErrCodeStructural, "unit type %q has more than one container prefix", t)
	}
	for _, p := range parts {
		if p == "" {
			return New(ErrCodeStructural, "unit type %q has an empty segment", t)
		}
	}
	return nil
}
