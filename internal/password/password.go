// ABOUTME: Password hashing and verification isolated behind a small API
// ABOUTME: Wraps bcrypt so the algorithm can change without touching call sites

package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DummyHash is a valid bcrypt digest of a throwaway value. Callers that want
// constant-time behavior on unknown usernames verify against it instead of
// skipping the comparison.
const DummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Hash returns a salted bcrypt digest of the plaintext. The salt is generated
// per call and embedded in the digest.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether the plaintext matches the digest. Malformed digests
// verify as false rather than erroring, so callers get a uniform
// not-authenticated outcome.
func Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
