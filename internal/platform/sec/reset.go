// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ResetTokenBytes is the entropy of a password reset token (256 bits).
const ResetTokenBytes = 32

// GenerateResetToken returns a fresh reset token and its storable digest.
//
// The plaintext goes to the account owner out-of-band and nowhere else. Only
// the digest is persisted.
func GenerateResetToken() (plaintext string, digest string, err error) {
	buffer := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buffer); err != nil {
		return "", "", fmt.Errorf("sec: failed to read random bytes: %w", err)
	}

	plaintext = hex.EncodeToString(buffer)
	return plaintext, HashResetToken(plaintext), nil
}

// HashResetToken derives the lookup digest (hex SHA-256) of a reset token.
func HashResetToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}
