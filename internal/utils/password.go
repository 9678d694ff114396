package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashPassword returns the SHA-256 hex digest of a plain password.  Hashing
// happens only at the HTTP edge; the store layer compares digests by exact
// match and never sees the plain text.
func HashPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}
