package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// BuildKey joins components into a namespaced cache key, e.g.
// BuildKey("brand", "123", "dna") -> "brand:123:dna".
func BuildKey(components ...string) string {
	return strings.Join(components, ":")
}

// KeyHash generates a short SHA256 hash of s, for keying on inputs too large
// or too irregular to embed in a key directly (prompts, query bodies).
func KeyHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}
