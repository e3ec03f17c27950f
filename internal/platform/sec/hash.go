// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// decoySecret only feeds the decoy digest; nothing ever verifies against it successfully.
const decoySecret = "passport-decoy-secret"

// PasswordHasher hashes and verifies account passwords with bcrypt.
//
// bcrypt salts every digest, so two hashes of the same password differ and
// only [PasswordHasher.Verify] can decide whether a password matches.
type PasswordHasher struct {
	cost  int
	decoy string
}

// NewPasswordHasher builds a hasher with the given bcrypt cost factor.
//
// It pre-computes a decoy digest with the same cost so that a login for an
// unknown account burns the same CPU time as a real comparison.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("sec: bcrypt cost %d outside [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte(decoySecret), cost)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to prepare decoy digest: %w", err)
	}

	return &PasswordHasher{cost: cost, decoy: string(decoy)}, nil
}

// Hash derives a salted digest of secret.
func (hasher *PasswordHasher) Hash(secret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(secret), hasher.cost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// Verify reports whether secret matches digest. A malformed digest is a
// mismatch, not an error.
func (hasher *PasswordHasher) Verify(secret, digest string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	return err == nil
}

// Decoy returns a well-formed digest that no caller-supplied secret matches
// in practice. Verify against it when the account lookup came up empty.
func (hasher *PasswordHasher) Decoy() string {
	return hasher.decoy
}
