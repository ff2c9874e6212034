package errors

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// ValidateElementID checks an element id taken from an imported project.
// Ids are opaque strings, but they must be non-empty, reasonably short and
// free of control characters so they can be used as map keys and in URLs.
func ValidateElementID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidElement, "element id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidElement, "element id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidElement, "element id contains control characters")
		}
	}
	return nil
}

// hexColorRegex matches #rgb, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// ValidateColor validates a text color. Only hex notation is accepted because
// the raster exporter has to parse it without a CSS engine.
func ValidateColor(c string) error {
	if !hexColorRegex.MatchString(c) {
		return New(ErrCodeInvalidInput, "invalid color %q (want #rgb or #rrggbb)", c)
	}
	return nil
}

// ParseAspectRatio parses a "W:H" ratio such as "16:9" and returns H/W.
// The returned factor converts a stage width into a stage height.
func ParseAspectRatio(s string) (float64, error) {
	w, h, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, New(ErrCodeInvalidInput, "invalid aspect ratio %q (want W:H)", s)
	}
	wf, err := strconv.ParseFloat(strings.TrimSpace(w), 64)
	if err != nil || wf <= 0 {
		return 0, New(ErrCodeInvalidInput, "invalid aspect ratio width in %q", s)
	}
	hf, err := strconv.ParseFloat(strings.TrimSpace(h), 64)
	if err != nil || hf <= 0 {
		return 0, New(ErrCodeInvalidInput, "invalid aspect ratio height in %q", s)
	}
	return hf / wf, nil
}

// ValidateStorageKey validates a storage key for the file backend.
// Keys are hashed before touching the filesystem, so the rules only guard
// against obviously broken input.
func ValidateStorageKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "storage key cannot be empty")
	}
	if len(key) > 256 {
		return New(ErrCodeInvalidInput, "storage key too long (max 256 characters)")
	}
	if strings.ContainsRune(key, '\x00') {
		return New(ErrCodeInvalidInput, "storage key contains a null byte")
	}
	return nil
}
