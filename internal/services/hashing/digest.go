package hashing

import (
	"crypto/sha512"
	"encoding/hex"
)

// Digest returns the lowercase hex SHA-512 of the canonical string, the
// 128-character value the gateway verifies server-side.
func Digest(canonical string) string {
	sum := sha512.Sum512([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
