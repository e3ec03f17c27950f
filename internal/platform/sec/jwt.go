// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides the cryptographic primitives of the credential service.
//
// # Architecture
//
// This package isolates security-sensitive code (password hashing, session
// token signing, reset token generation) from the domain logic. The domain
// consumes it through small interfaces so tests can substitute fakes.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/passport/pkg/uuid"
)

// MinSigningKeyLength is the smallest accepted HMAC key, in bytes.
const MinSigningKeyLength = 32

// ErrInvalidToken is the only failure [TokenCodec.Verify] reports. Malformed,
// forged and expired tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("sec: invalid session token")

// SessionClaims is the payload of a session token. The subject is the account id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 session tokens.
//
// Tokens are self-contained: there is no server-side session store, so a
// token stays valid until it expires or the signing key is rotated.
type TokenCodec struct {
	key      []byte
	validity time.Duration
	issuer   string
	clock    clockwork.Clock
}

// NewTokenCodec creates a codec.
//
// # Parameters
//   - key: HMAC secret, at least [MinSigningKeyLength] bytes.
//   - validity: lifetime of an issued token.
//   - issuer: value of the "iss" claim, checked on verify.
//   - clock: time source for "iat", "exp" and expiry checks.
func NewTokenCodec(key []byte, validity time.Duration, issuer string, clock clockwork.Clock) (*TokenCodec, error) {
	if len(key) < MinSigningKeyLength {
		return nil, fmt.Errorf("sec: signing key must be at least %d bytes", MinSigningKeyLength)
	}
	if validity <= 0 {
		return nil, fmt.Errorf("sec: token validity must be positive, got %s", validity)
	}

	keyCopy := make([]byte, len(key))
	copy(keyCopy, key)

	return &TokenCodec{
		key:      keyCopy,
		validity: validity,
		issuer:   issuer,
		clock:    clock,
	}, nil
}

// Issue signs a new token for subjectID and returns it with its expiry.
func (codec *TokenCodec) Issue(subjectID string) (string, time.Time, error) {
	issuedAt := codec.clock.Now()
	expiresAt := issuedAt.Add(codec.validity)

	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   subjectID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signedToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(codec.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signedToken, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm, issuer and expiry, and returns the
// subject id. Every failure is [ErrInvalidToken].
func (codec *TokenCodec) Verify(tokenString string) (string, error) {
	claims := &SessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return codec.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(codec.clock.Now),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
