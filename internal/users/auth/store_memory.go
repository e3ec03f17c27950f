// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/pkg/normalize"
	"github.com/taibuivan/passport/pkg/pointer"
)

// MemoryAccountRepository is an in-process [AccountRepository].
//
// It backs STORAGE_DRIVER=memory and the service tests. All reads return
// copies, so callers can never mutate stored state without going through the
// repository.
type MemoryAccountRepository struct {
	mu       sync.RWMutex
	clock    clockwork.Clock
	accounts map[string]*Account
}

var _ AccountRepository = (*MemoryAccountRepository)(nil)

// NewMemoryAccountRepository returns an empty repository stamping writes with clock.
func NewMemoryAccountRepository(clock clockwork.Clock) *MemoryAccountRepository {
	return &MemoryAccountRepository{
		clock:    clock,
		accounts: make(map[string]*Account),
	}
}

// FindByID returns a copy of the account with the given ID.
func (repository *MemoryAccountRepository) FindByID(_ context.Context, id string) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	account, ok := repository.accounts[id]
	if !ok {
		return nil, apperr.NotFound(resourceAccount)
	}
	return cloneAccount(account), nil
}

// FindByEmail returns a copy of the account with the given normalized email.
func (repository *MemoryAccountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	return repository.findFirst(func(account *Account) bool {
		return account.Email == email
	})
}

// FindByEmailOrUsername returns a copy of any account holding either key.
func (repository *MemoryAccountRepository) FindByEmailOrUsername(_ context.Context, email, usernameKey string) (*Account, error) {
	return repository.findFirst(func(account *Account) bool {
		return account.Email == email || normalize.Username(account.Username) == usernameKey
	})
}

// FindByResetDigest returns a copy of the account holding an unexpired digest.
func (repository *MemoryAccountRepository) FindByResetDigest(_ context.Context, digest string, now time.Time) (*Account, error) {
	return repository.findFirst(func(account *Account) bool {
		return resetMatches(account, digest, now)
	})
}

// Insert stores a copy of account. The uniqueness check and the write happen
// under one lock, so concurrent duplicates cannot both succeed.
func (repository *MemoryAccountRepository) Insert(_ context.Context, account *Account) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	usernameKey := normalize.Username(account.Username)
	for _, existing := range repository.accounts {
		if existing.ID == account.ID || existing.Email == account.Email || normalize.Username(existing.Username) == usernameKey {
			return apperr.Conflict(MessageAccountExists)
		}
	}

	repository.accounts[account.ID] = cloneAccount(account)
	return nil
}

// UpdateProfile overwrites the mutable profile fields.
func (repository *MemoryAccountRepository) UpdateProfile(_ context.Context, account *Account) error {
	return repository.mutate(account.ID, func(stored *Account) {
		stored.FirstName = account.FirstName
		stored.LastName = account.LastName
		stored.Bio = account.Bio
		stored.AvatarURL = account.AvatarURL
		stored.UpdatedAt = account.UpdatedAt
	})
}

// UpdatePassword replaces the digest and clears any pending reset.
func (repository *MemoryAccountRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return repository.mutate(id, func(stored *Account) {
		stored.PasswordHash = passwordHash
		stored.ResetDigest = nil
		stored.ResetExpiresAt = nil
		stored.UpdatedAt = repository.clock.Now()
	})
}

// SetResetDigest records a pending reset.
func (repository *MemoryAccountRepository) SetResetDigest(_ context.Context, id, digest string, expiresAt time.Time) error {
	return repository.mutate(id, func(stored *Account) {
		stored.ResetDigest = pointer.To(digest)
		stored.ResetExpiresAt = pointer.To(expiresAt)
		stored.UpdatedAt = repository.clock.Now()
	})
}

// ClearResetDigest drops the pending reset if it still holds digest.
func (repository *MemoryAccountRepository) ClearResetDigest(_ context.Context, id, digest string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.accounts[id]
	if !ok || pointer.Val(stored.ResetDigest) != digest {
		return nil
	}

	stored.ResetDigest = nil
	stored.ResetExpiresAt = nil
	stored.UpdatedAt = repository.clock.Now()
	return nil
}

// ConsumeResetDigest redeems the pending reset under the write lock.
func (repository *MemoryAccountRepository) ConsumeResetDigest(_ context.Context, id, digest, passwordHash string, now time.Time) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.accounts[id]
	if !ok || !resetMatches(stored, digest, now) {
		return apperr.NotFound(resourceAccount)
	}

	stored.PasswordHash = passwordHash
	stored.ResetDigest = nil
	stored.ResetExpiresAt = nil
	stored.UpdatedAt = repository.clock.Now()
	return nil
}

// Delete removes the account.
func (repository *MemoryAccountRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.accounts[id]; !ok {
		return apperr.NotFound(resourceAccount)
	}
	delete(repository.accounts, id)
	return nil
}

// # Helpers

func (repository *MemoryAccountRepository) findFirst(match func(*Account) bool) (*Account, error) {
	repository.mu.RLock()
	defer repository.mu.RUnlock()

	for _, account := range repository.accounts {
		if match(account) {
			return cloneAccount(account), nil
		}
	}
	return nil, apperr.NotFound(resourceAccount)
}

func (repository *MemoryAccountRepository) mutate(id string, apply func(*Account)) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	stored, ok := repository.accounts[id]
	if !ok {
		return apperr.NotFound(resourceAccount)
	}
	apply(stored)
	return nil
}

// resetMatches reports whether the account holds digest and it is still
// valid at now. Expiry is exclusive: at exactly ResetExpiresAt it is invalid.
func resetMatches(account *Account, digest string, now time.Time) bool {
	return account.HasPendingReset() &&
		*account.ResetDigest == digest &&
		now.Before(*account.ResetExpiresAt)
}

func cloneAccount(account *Account) *Account {
	clone := *account
	clone.ResetDigest = pointer.Clone(account.ResetDigest)
	clone.ResetExpiresAt = pointer.Clone(account.ResetExpiresAt)
	return &clone
}
