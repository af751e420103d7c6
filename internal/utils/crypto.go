package utils

import (
	"crypto/sha256"
	"crypto/subtle"
)

// SecureCompare reports whether a and b are equal without leaking, through
// timing, how long their common prefix is. Both sides are hashed first so
// the comparison time does not depend on the secret's length either.
func SecureCompare(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
