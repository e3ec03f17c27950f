// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements credential issuance and validation.

It covers registration with uniqueness enforcement, password login, session
token issuance, identity resolution for the session guard, and the
single-use password reset lifecycle.

# Architecture

  - Entities: Account (the stored record) and Profile (its public view).
  - Service: orchestrates the flows over the interfaces in store.go.
  - Repositories: PostgreSQL, in-memory, and a Redis identity cache.
  - Security: bcrypt digests, HS256 session tokens and SHA-256 reset digests
    come from the platform sec package.
*/
package auth

import (
	"time"

	"github.com/taibuivan/passport/internal/platform/sec"
)

// # Domain Entities

// Account is a registered member as stored.
//
// PasswordHash, ResetDigest and ResetExpiresAt never leave the service; use
// [Account.Profile] for any outward representation. ResetDigest and
// ResetExpiresAt are either both nil or both set.
type Account struct {
	ID              string
	Username        string
	Email           string
	PasswordHash    string
	FirstName       string
	LastName        string
	Bio             string
	AvatarURL       string
	IsEmailVerified bool
	ResetDigest     *string
	ResetExpiresAt  *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Profile is the public view of an account.
type Profile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	AvatarURL       string    `json:"avatar_url"`
	Bio             string    `json:"bio"`
	IsEmailVerified bool      `json:"is_email_verified"`
	CreatedAt       time.Time `json:"created_at"`
}

// Profile projects the account onto its public fields.
func (account *Account) Profile() Profile {
	return Profile{
		ID:              account.ID,
		Username:        account.Username,
		Email:           account.Email,
		FirstName:       account.FirstName,
		LastName:        account.LastName,
		AvatarURL:       account.AvatarURL,
		Bio:             account.Bio,
		IsEmailVerified: account.IsEmailVerified,
		CreatedAt:       account.CreatedAt,
	}
}

// Identity projects the account onto the principal attached to requests.
func (account *Account) Identity() *sec.Identity {
	return &sec.Identity{
		AccountID: account.ID,
		Username:  account.Username,
		Email:     account.Email,
	}
}

// HasPendingReset reports whether a reset digest is outstanding.
func (account *Account) HasPendingReset() bool {
	return account.ResetDigest != nil && account.ResetExpiresAt != nil
}

// ProfileFields are the optional fields accepted at registration.
type ProfileFields struct {
	FirstName string
	LastName  string
	Bio       string
	AvatarURL string
}

// Session is an issued session token and the account it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Account   *Account
}

// # Field Identifiers

// Field names for validation and JSON payloads in the authentication domain.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFirstName       = "first_name"
	FieldLastName        = "last_name"
	FieldBio             = "bio"
	FieldAvatarURL       = "avatar_url"
	FieldToken           = "token"
	FieldExpiresAt       = "expires_at"
	FieldUser            = "user"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldMessage         = "message"
)
