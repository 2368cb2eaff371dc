package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashUserKey derives a fixed-width, path-safe segment from a user id for
// storage keys. Raw ids carry provider prefixes ("google:…") that are
// awkward in object paths.
func HashUserKey(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:16])
}
