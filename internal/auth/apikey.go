// Package auth holds API key generation and hashing. Keys are opaque bearer
// credentials; only the sha256 digest is ever stored, and organizations are
// resolved by an indexed lookup on that digest.
package auth

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateAPIKey returns a fresh plaintext API key. Shown once at
// provisioning time and never stored.
func GenerateAPIKey() string {
	return "snk_" + uuid.New().String()
}

// HashAPIKey returns the hex sha256 digest of a plaintext key. Deterministic
// so the digest can be a unique indexed column.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
