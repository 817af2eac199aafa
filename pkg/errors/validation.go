package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds map and level names.
const maxNameLength = 256

// ValidateName validates a map or level name.
//
// Names become YAML mapping keys and storage keys, so the rules are
// conservative:
//   - No empty names
//   - No leading or trailing whitespace
//   - No control characters or null bytes
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidName, "%s name %q has surrounding whitespace", kind, name)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "%s name contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidateLevelName validates a level name.
func ValidateLevelName(name string) error {
	return ValidateName("level", name)
}

// ValidateMapName validates a building map name.
func ValidateMapName(name string) error {
	return ValidateName("map", name)
}

// ValidateLocation performs scheme-independent checks on a save location.
// Sinks apply their own, stricter rules after routing.
func ValidateLocation(location string) error {
	if strings.TrimSpace(location) == "" {
		return New(ErrCodeInvalidLocation, "location cannot be empty")
	}

	for _, r := range location {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidLocation, "location contains invalid characters")
		}
	}

	return nil
}
