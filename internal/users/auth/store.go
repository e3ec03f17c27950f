// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/taibuivan/passport/internal/platform/sec"
)

// # Account Data Access

// AccountRepository defines the data access contract for accounts.
//
// Lookups that match nothing return apperr.NotFound("User"). Email arguments
// are expected normalized (see pkg/normalize); usernameKey is the folded
// username, never the display form.
type AccountRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByID(context context.Context, id string) (*Account, error)

	/*
		FindByEmail returns the account with the given normalized email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*Account, error)

	/*
		FindByEmailOrUsername returns any account holding either key.

		Parameters:
		  - context: context.Context
		  - email: string
		  - usernameKey: string

		Returns:
		  - *Account: The first matching entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByEmailOrUsername(context context.Context, email, usernameKey string) (*Account, error)

	/*
		FindByResetDigest returns the account whose pending reset digest
		matches and has not expired at now.

		Parameters:
		  - context: context.Context
		  - digest: string
		  - now: time.Time

		Returns:
		  - *Account: Hydrated entity
		  - error: apperr.NotFound or retrieval failures
	*/
	FindByResetDigest(context context.Context, digest string, now time.Time) (*Account, error)

	/*
		Insert persists a brand-new account.

		Description: Uniqueness of email and username key is enforced
		atomically; a concurrent duplicate loses with apperr.Conflict.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.Conflict or persistence failures
	*/
	Insert(context context.Context, account *Account) error

	/*
		UpdateProfile persists the mutable profile fields of the account.

		Parameters:
		  - context: context.Context
		  - account: *Account

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdateProfile(context context.Context, account *Account) error

	/*
		UpdatePassword replaces the password digest and drops any pending reset.

		Parameters:
		  - context: context.Context
		  - id: string
		  - passwordHash: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	UpdatePassword(context context.Context, id, passwordHash string) error

	/*
		SetResetDigest records a pending reset, replacing any previous one.

		Parameters:
		  - context: context.Context
		  - id: string
		  - digest: string
		  - expiresAt: time.Time

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	SetResetDigest(context context.Context, id, digest string, expiresAt time.Time) error

	/*
		ClearResetDigest drops the pending reset only if it is still digest.

		Description: A newer request that replaced the digest is left intact.

		Parameters:
		  - context: context.Context
		  - id: string
		  - digest: string

		Returns:
		  - error: Persistence failures
	*/
	ClearResetDigest(context context.Context, id, digest string) error

	/*
		ConsumeResetDigest atomically sets the new password digest and clears
		the reset pair, provided the pair still holds digest and is unexpired.

		Parameters:
		  - context: context.Context
		  - id: string
		  - digest: string
		  - passwordHash: string
		  - now: time.Time

		Returns:
		  - error: apperr.NotFound if the token was already used, replaced or expired
	*/
	ConsumeResetDigest(context context.Context, id, digest, passwordHash string, now time.Time) error

	/*
		Delete permanently removes the account.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - error: apperr.NotFound or persistence failures
	*/
	Delete(context context.Context, id string) error
}

// # Identity Cache

// IdentityCache holds resolved identities for the session guard.
//
// Get returns apperr.NotFound on a miss. Delete evicts an entry and keeps it
// from being cached again for one TTL, so a deleted account never resolves
// from the cache.
type IdentityCache interface {
	Get(context context.Context, accountID string) (*sec.Identity, error)
	Set(context context.Context, identity *sec.Identity) error
	Delete(context context.Context, accountID string) error
}
