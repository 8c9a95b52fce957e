package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey builds a "prefix:hex" cache key from the JSON encoding of parts.
// The full SHA-256 digest goes into the key, so distinct inputs cannot
// collide in practice.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex-encoded SHA-256 digest of data. Row files and
// geometry documents are hashed with this to derive cache keys and ETags.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
