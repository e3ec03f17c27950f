// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/passport/internal/platform/sec"
)

const (
	testIssuer   = "passport.test"
	testValidity = 7 * 24 * time.Hour
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

// issuedAt is a whole second so that the one-second precision of "exp" does
// not shift the window.
var issuedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newCodec(t *testing.T, clock clockwork.Clock) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec(testKey, testValidity, testIssuer, clock)
	require.NoError(t, err)
	return codec
}

/*
TestTokenCodec_ValidityWindow verifies a token issued at T is valid at T and
T+W-ε, and invalid at T+W+ε.
*/
func TestTokenCodec_ValidityWindow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(issuedAt)
	codec := newCodec(t, clock)

	token, expiresAt, err := codec.Issue("account-1")
	require.NoError(t, err)
	assert.True(t, issuedAt.Add(testValidity).Equal(expiresAt))

	// 1. At issue time
	subject, err := codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", subject)

	// 2. Just before expiry
	clock.Advance(testValidity - time.Second)
	subject, err = codec.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "account-1", subject)

	// 3. Just after expiry
	clock.Advance(2 * time.Second)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenCodec_RejectsTampering collapses every structural failure into ErrInvalidToken.
*/
func TestTokenCodec_RejectsTampering(t *testing.T) {
	clock := clockwork.NewFakeClockAt(issuedAt)
	codec := newCodec(t, clock)

	token, _, err := codec.Issue("account-1")
	require.NoError(t, err)

	otherCodec, err := sec.NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"), testValidity, testIssuer, clock)
	require.NoError(t, err)
	foreignToken, _, err := otherCodec.Issue("account-1")
	require.NoError(t, err)

	otherIssuer, err := sec.NewTokenCodec(testKey, testValidity, "someone.else", clock)
	require.NoError(t, err)
	wrongIssuerToken, _, err := otherIssuer.Issue("account-1")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tamperedSignature := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "account-1",
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject: "account-1",
		Issuer:  testIssuer,
	}).SignedString(testKey)
	require.NoError(t, err)

	emptySubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    testIssuer,
		ExpiresAt: jwt.NewNumericDate(issuedAt.Add(time.Hour)),
	}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.jwt"},
		{"tampered_signature", tamperedSignature},
		{"foreign_key", foreignToken},
		{"wrong_issuer", wrongIssuerToken},
		{"alg_none", unsigned},
		{"missing_expiry", noExpiry},
		{"empty_subject", emptySubject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, sec.ErrInvalidToken)
			assert.Empty(t, subject)
		})
	}
}

/*
TestTokenCodec_DistinctTokens checks that two tokens for one subject in the
same second still differ and both verify.
*/
func TestTokenCodec_DistinctTokens(t *testing.T) {
	codec := newCodec(t, clockwork.NewFakeClockAt(issuedAt))

	first, _, err := codec.Issue("account-1")
	require.NoError(t, err)
	second, _, err := codec.Issue("account-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, token := range []string{first, second} {
		subject, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "account-1", subject)
	}
}

/*
TestNewTokenCodec_Validation covers constructor guards.
*/
func TestNewTokenCodec_Validation(t *testing.T) {
	clock := clockwork.NewRealClock()

	_, err := sec.NewTokenCodec([]byte("short"), testValidity, testIssuer, clock)
	assert.Error(t, err)

	_, err = sec.NewTokenCodec(testKey, 0, testIssuer, clock)
	assert.Error(t, err)
}
