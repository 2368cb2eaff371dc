package util

import (
	"errors"
	"strings"
)

var errUnsafeName = errors.New("unsafe file name")

// SanitizeFileName makes a document title safe to use as a storage key
// segment. Path separators and control characters become underscores;
// traversal sequences are rejected outright.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errUnsafeName
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if r == '/' || r == '\\' || r < 0x20 {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" {
		return "", errUnsafeName
	}
	return out, nil
}
