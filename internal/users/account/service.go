// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/ctxutil"
	"github.com/taibuivan/passport/internal/platform/validate"
	"github.com/taibuivan/passport/internal/users/auth"
)

// # Service Layer

// Service orchestrates profile reads, owner-only edits and account deletion.
type Service struct {
	accountRepository AccountRepository
	identityCache     auth.IdentityCache
	clock             clockwork.Clock
}

// NewService constructs a new [Service]. identityCache may be nil.
func NewService(accountRepo AccountRepository, identityCache auth.IdentityCache, clock clockwork.Clock) *Service {
	return &Service{
		accountRepository: accountRepo,
		identityCache:     identityCache,
		clock:             clock,
	}
}

// # Profile Management

/*
GetProfile retrieves the public profile of an account.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - auth.Profile: The public view
  - error: apperr.NotFound or execution failures
*/
func (service *Service) GetProfile(context context.Context, accountID string) (auth.Profile, error) {
	account, err := service.accountRepository.FindByID(context, accountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return auth.Profile{}, err
		}
		return auth.Profile{}, fmt.Errorf("account_service_get_profile_failed: %w", err)
	}
	return account.Profile(), nil
}

/*
UpdateProfile applies a partial set of changes to the caller's own profile.

Description: Ownership is checked before anything is read, so a foreign id
learns nothing about whether that account exists. Username, email and the
password are not editable here. A pending password reset is left as is.

Parameters:
  - context: context.Context
  - callerID: string (the authenticated account)
  - targetID: string (the account being edited)
  - input: UpdateProfileInput

Returns:
  - auth.Profile: The updated public view
  - error: Forbidden, Validation, NotFound or storage failures
*/
func (service *Service) UpdateProfile(context context.Context, callerID, targetID string, input UpdateProfileInput) (auth.Profile, error) {
	if callerID != targetID {
		return auth.Profile{}, apperr.Forbidden(MessageUpdateForbidden)
	}

	account, err := service.accountRepository.FindByID(context, targetID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return auth.Profile{}, err
		}
		return auth.Profile{}, fmt.Errorf("account_service_update_lookup_failed: %w", err)
	}

	input.FirstName.Apply(&account.FirstName)
	input.LastName.Apply(&account.LastName)
	input.Bio.Apply(&account.Bio)
	input.AvatarURL.Apply(&account.AvatarURL)

	account.FirstName = strings.TrimSpace(account.FirstName)
	account.LastName = strings.TrimSpace(account.LastName)
	account.Bio = strings.TrimSpace(account.Bio)
	account.AvatarURL = strings.TrimSpace(account.AvatarURL)

	validator := &validate.Validator{}
	validator.MaxLen(auth.FieldFirstName, account.FirstName, auth.NameMaxLength).
		MaxLen(auth.FieldLastName, account.LastName, auth.NameMaxLength).
		MaxLen(auth.FieldBio, account.Bio, auth.BioMaxLength)
	if account.AvatarURL != "" {
		validator.URL(auth.FieldAvatarURL, account.AvatarURL)
	}
	if err := validator.Err(); err != nil {
		return auth.Profile{}, err
	}

	account.UpdatedAt = service.clock.Now()

	if err := service.accountRepository.UpdateProfile(context, account); err != nil {
		if apperr.IsNotFound(err) {
			return auth.Profile{}, err
		}
		return auth.Profile{}, fmt.Errorf("account_service_update_failed: %w", err)
	}

	ctxutil.GetLogger(context).Info("profile_updated", slog.String("account_id", account.ID))
	return account.Profile(), nil
}

/*
DeleteAccount permanently removes the caller's own account.

Description: The cached identity is evicted and tombstoned before the row is
hard-deleted; if that fails nothing is deleted. Outstanding session tokens
keep a valid signature but stop resolving, so the guard rejects them from
here on.

Parameters:
  - context: context.Context
  - callerID: string
  - targetID: string

Returns:
  - error: Forbidden, NotFound, ServiceUnavailable (cache) or storage failures
*/
func (service *Service) DeleteAccount(context context.Context, callerID, targetID string) error {
	if callerID != targetID {
		return apperr.Forbidden(MessageDeleteForbidden)
	}

	logger := ctxutil.GetLogger(context)

	// Evict first: if the cache cannot be told, the account must stay.
	if service.identityCache != nil {
		if err := service.identityCache.Delete(context, targetID); err != nil {
			logger.Warn("identity_cache_evict_failed", slog.String("account_id", targetID), slog.Any("error", err))
			return apperr.ServiceUnavailable(MessageDeleteUnavailable, err)
		}
	}

	if err := service.accountRepository.Delete(context, targetID); err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	logger.Info("account_deleted", slog.String("account_id", targetID))
	return nil
}
