// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package account handles profile management for registered members.

It lets a member read profiles, edit their own profile fields, and delete
their own account.

# Architecture

  - Domain: This package depends on the auth package for the Account entity
    and reuses its repositories and identity cache.
  - Security: Every mutation is owner-only; a caller can never act on
    another member's record.
*/
package account

import (
	"context"

	"github.com/taibuivan/passport/internal/users/auth"
	"github.com/taibuivan/passport/pkg/optional"
)

// # Repository Contracts

// AccountRepository is the subset of [auth.AccountRepository] this package uses.
type AccountRepository interface {
	/*
		FindByID retrieves an account by its unique ID.

		Parameters:
		  - context: context.Context
		  - id: string (UUID)

		Returns:
		  - *auth.Account: Loaded account entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByID(context context.Context, id string) (*auth.Account, error)

	// UpdateProfile persists the mutable profile fields.
	UpdateProfile(context context.Context, account *auth.Account) error

	// Delete permanently removes the account.
	Delete(context context.Context, id string) error
}

// # Inputs

// UpdateProfileInput is a partial profile update.
//
// An absent field is left unchanged, an explicit null clears it, and a value
// replaces it.
type UpdateProfileInput struct {
	FirstName optional.Field[string] `json:"first_name"`
	LastName  optional.Field[string] `json:"last_name"`
	Bio       optional.Field[string] `json:"bio"`
	AvatarURL optional.Field[string] `json:"avatar_url"`
}

// IsEmpty reports whether the update names no field at all.
func (input UpdateProfileInput) IsEmpty() bool {
	return !input.FirstName.IsPresent() &&
		!input.LastName.IsPresent() &&
		!input.Bio.IsPresent() &&
		!input.AvatarURL.IsPresent()
}

// # Messages

const (
	MessageUpdateForbidden = "Not authorized to update this user"
	MessageDeleteForbidden = "Not authorized to delete this user"
	MessageAccountDeleted  = "User deleted successfully"

	MessageDeleteUnavailable = "User could not be deleted, try again later"
)
