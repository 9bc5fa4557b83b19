// ABOUTME: Tests for password hashing and verification
// ABOUTME: Covers round-trips, salt uniqueness, and malformed digests

package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerify_RoundTrip(t *testing.T) {
	digest, err := Hash("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, Verify("correct horse battery staple", digest))
	assert.False(t, Verify("wrong password", digest))
}

func TestHash_UniqueSalts(t *testing.T) {
	d1, err := Hash("same password")
	require.NoError(t, err)
	d2, err := Hash("same password")
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2, "each hash call must use a fresh salt")
	assert.True(t, Verify("same password", d1))
	assert.True(t, Verify("same password", d2))
}

func TestVerify_MalformedDigest(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "not-a-bcrypt-digest"))
	assert.False(t, Verify("anything", "$2a$10$truncated"))
}

func TestVerify_DummyHash(t *testing.T) {
	// The dummy digest must be well-formed bcrypt so comparisons against it
	// take normal time, but it should never match a real password.
	assert.False(t, Verify("password123", DummyHash))
}
