// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/users/auth"
	"github.com/taibuivan/passport/pkg/uuid"
)

func seedAccount(t *testing.T, repository auth.AccountRepository, username, email string) *auth.Account {
	t.Helper()
	account := &auth.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$04$placeholder",
	}
	require.NoError(t, repository.Insert(context.Background(), account))
	return account
}

/*
TestMemoryAccountRepository_Isolation ensures stored state is never shared
with callers.
*/
func TestMemoryAccountRepository_Isolation(t *testing.T) {
	repository := auth.NewMemoryAccountRepository(clockwork.NewFakeClock())
	ctx := context.Background()
	account := seedAccount(t, repository, "alice", "alice@example.com")

	// Mutating the inserted value does not reach the store
	account.FirstName = "Mallory"

	found, err := repository.FindByID(ctx, account.ID)
	require.NoError(t, err)
	assert.Empty(t, found.FirstName)

	// Mutating a read value does not either
	found.Email = "mallory@example.com"
	again, err := repository.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, account.ID, again.ID)
}

/*
TestMemoryAccountRepository_Lookups covers the key-based finders.
*/
func TestMemoryAccountRepository_Lookups(t *testing.T) {
	repository := auth.NewMemoryAccountRepository(clockwork.NewFakeClock())
	ctx := context.Background()
	account := seedAccount(t, repository, "Alice", "alice@example.com")

	found, err := repository.FindByEmailOrUsername(ctx, "other@example.com", "alice")
	require.NoError(t, err)
	assert.Equal(t, account.ID, found.ID)

	_, err = repository.FindByEmailOrUsername(ctx, "other@example.com", "bob")
	assert.True(t, apperr.IsNotFound(err))

	_, err = repository.FindByID(ctx, uuid.New())
	assert.True(t, apperr.IsNotFound(err))
}

/*
TestMemoryAccountRepository_ResetDigest covers the reset pair operations.
*/
func TestMemoryAccountRepository_ResetDigest(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	repository := auth.NewMemoryAccountRepository(clock)
	ctx := context.Background()
	account := seedAccount(t, repository, "alice", "alice@example.com")
	expiresAt := clock.Now().Add(10 * time.Minute)

	require.NoError(t, repository.SetResetDigest(ctx, account.ID, "digest-1", expiresAt))

	t.Run("ClearIgnoresStaleDigest", func(t *testing.T) {
		require.NoError(t, repository.ClearResetDigest(ctx, account.ID, "digest-0"))

		found, err := repository.FindByResetDigest(ctx, "digest-1", clock.Now())
		require.NoError(t, err)
		assert.Equal(t, account.ID, found.ID)
	})

	t.Run("ExpiredDigestIsInvisible", func(t *testing.T) {
		_, err := repository.FindByResetDigest(ctx, "digest-1", expiresAt)
		assert.True(t, apperr.IsNotFound(err))

		err = repository.ConsumeResetDigest(ctx, account.ID, "digest-1", "new-hash", expiresAt)
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("ConsumeOnce", func(t *testing.T) {
		require.NoError(t, repository.ConsumeResetDigest(ctx, account.ID, "digest-1", "new-hash", clock.Now()))

		err := repository.ConsumeResetDigest(ctx, account.ID, "digest-1", "newer-hash", clock.Now())
		assert.True(t, apperr.IsNotFound(err))

		found, err := repository.FindByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, "new-hash", found.PasswordHash)
		assert.Nil(t, found.ResetDigest)
		assert.Nil(t, found.ResetExpiresAt)
	})
}

/*
TestMemoryAccountRepository_Delete ensures deletion frees both keys.
*/
func TestMemoryAccountRepository_Delete(t *testing.T) {
	repository := auth.NewMemoryAccountRepository(clockwork.NewFakeClock())
	ctx := context.Background()
	account := seedAccount(t, repository, "alice", "alice@example.com")

	require.NoError(t, repository.Delete(ctx, account.ID))
	assert.True(t, apperr.IsNotFound(repository.Delete(ctx, account.ID)))

	seedAccount(t, repository, "alice", "alice@example.com")
}
