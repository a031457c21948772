package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey generates a cache key from a factory name and a canonical
// parameter tree. The key format is: factory:sha256(canonical).
func hashKey(factory string, canonical any) string {
	// Canonical trees hold only plain JSON values; Marshal cannot fail.
	data, _ := json.Marshal(canonical)
	return factory + ":" + Hash(data)
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
