// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/passport/internal/platform/sec"
)

func newHasher(t *testing.T) *sec.PasswordHasher {
	t.Helper()
	hasher, err := sec.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return hasher
}

/*
TestPasswordHasher_RoundTrip verifies that a hashed secret verifies and a
different secret does not.
*/
func TestPasswordHasher_RoundTrip(t *testing.T) {
	hasher := newHasher(t)

	digest, err := hasher.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, "secret123", digest)
	assert.True(t, hasher.Verify("secret123", digest))
	assert.False(t, hasher.Verify("secret124", digest))
	assert.False(t, hasher.Verify("", digest))
}

/*
TestPasswordHasher_Salted verifies two hashes of one secret differ yet both verify.
*/
func TestPasswordHasher_Salted(t *testing.T) {
	hasher := newHasher(t)

	first, err := hasher.Hash("secret123")
	require.NoError(t, err)
	second, err := hasher.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("secret123", first))
	assert.True(t, hasher.Verify("secret123", second))
}

/*
TestPasswordHasher_MalformedDigest checks that garbage digests are a plain mismatch.
*/
func TestPasswordHasher_MalformedDigest(t *testing.T) {
	hasher := newHasher(t)

	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$04$short"} {
		assert.False(t, hasher.Verify("secret123", digest), digest)
	}
}

/*
TestPasswordHasher_Decoy checks the decoy digest is well-formed and uses the configured cost.
*/
func TestPasswordHasher_Decoy(t *testing.T) {
	hasher := newHasher(t)

	cost, err := bcrypt.Cost([]byte(hasher.Decoy()))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.False(t, hasher.Verify("secret123", hasher.Decoy()))
}

/*
TestNewPasswordHasher_RejectsCost covers the cost bounds.
*/
func TestNewPasswordHasher_RejectsCost(t *testing.T) {
	_, err := sec.NewPasswordHasher(bcrypt.MinCost - 1)
	assert.Error(t, err)

	_, err = sec.NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}
