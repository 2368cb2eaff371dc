package documents

import (
	"crypto/rand"
	"fmt"
	"net/url"
	"time"
)

const idAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// ResolveID establishes which document a client is editing. A `doc` query
// parameter is adopted verbatim with no existence check; otherwise a fresh id
// is synthesized and generated=true tells the caller to rewrite its
// navigation state to include it. Pure, no I/O.
func ResolveID(query url.Values) (id string, generated bool) {
	if v := query.Get("doc"); v != "" {
		return v, false
	}
	return NewID(), true
}

// NewID returns a new document id of the form doc_<epoch-millis>_<9-char
// base36 suffix>. Ids are never regenerated once assigned.
func NewID() string {
	return fmt.Sprintf("doc_%d_%s", time.Now().UnixMilli(), randomSuffix(9))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%0*d", n, time.Now().UnixNano()%1_000_000_000)
	}
	for i, b := range buf {
		buf[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(buf)
}
