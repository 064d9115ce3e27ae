package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// LongHash returns the collision-resistant content fingerprint of data.
func LongHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LongHashString is LongHash over a string.
func LongHashString(s string) string {
	return LongHash([]byte(s))
}

// ShortKey returns the bounded-length, filename-safe storage key component
// for a node name. Short hashes address layout only, never change detection.
func ShortKey(name string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(name))
}

// DependencyHash combines the ordered dependency fingerprints into one long
// hash. The separator keeps adjacent fingerprints from folding together.
func DependencyHash(fingerprints []string) string {
	var b strings.Builder
	for _, fp := range fingerprints {
		b.WriteString(fp)
		b.WriteByte(0)
	}
	return LongHashString(b.String())
}
