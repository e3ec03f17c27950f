// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/database/schema"
	"github.com/taibuivan/passport/internal/platform/dberr"
	"github.com/taibuivan/passport/internal/platform/postgres"
	"github.com/taibuivan/passport/pkg/normalize"
	"github.com/taibuivan/passport/pkg/uuid"
)

// # Queries

var (
	accountTable  = schema.UserAccount.Table
	accountSelect = "SELECT " + schema.UserAccount.SelectList() + " FROM " + accountTable

	queryFindByID              = accountSelect + " WHERE id = $1"
	queryFindByEmail           = accountSelect + " WHERE email = $1"
	queryFindByEmailOrUsername = accountSelect + " WHERE email = $1 OR usernamekey = $2 LIMIT 1"
	queryFindByResetDigest     = accountSelect + " WHERE resetdigest = $1 AND resetexpiresat > $2"
)

const (
	queryInsertAccount = `
		INSERT INTO users.account (
			id, username, usernamekey, email, passwordhash,
			firstname, lastname, bio, avatarurl, isemailverified, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	queryUpdateProfile = `
		UPDATE users.account
		SET firstname = $2, lastname = $3, bio = $4, avatarurl = $5, updatedat = $6
		WHERE id = $1`

	queryUpdatePassword = `
		UPDATE users.account
		SET passwordhash = $2, resetdigest = NULL, resetexpiresat = NULL, updatedat = NOW()
		WHERE id = $1`

	querySetResetDigest = `
		UPDATE users.account
		SET resetdigest = $2, resetexpiresat = $3, updatedat = NOW()
		WHERE id = $1`

	queryClearResetDigest = `
		UPDATE users.account
		SET resetdigest = NULL, resetexpiresat = NULL, updatedat = NOW()
		WHERE id = $1 AND resetdigest = $2`

	queryConsumeResetDigest = `
		UPDATE users.account
		SET passwordhash = $3, resetdigest = NULL, resetexpiresat = NULL, updatedat = NOW()
		WHERE id = $1 AND resetdigest = $2 AND resetexpiresat > $4`

	queryDeleteAccount = `DELETE FROM users.account WHERE id = $1`
)

// resourceAccount names the entity in NotFound errors.
const resourceAccount = "User"

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	db postgres.Querier
}

var _ AccountRepository = (*PostgresAccountRepository)(nil)

// NewAccountRepository creates a new PostgreSQL implementation of the AccountRepository.
func NewAccountRepository(db postgres.Querier) *PostgresAccountRepository {
	return &PostgresAccountRepository{db: db}
}

/*
FindByID retrieves an account by its UUID.

Description: Malformed identifiers cannot match a row and are reported as
NotFound without a round trip.

Parameters:
  - context: context.Context
  - id: string

Returns:
  - *Account: Hydrated entity
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresAccountRepository) FindByID(context context.Context, id string) (*Account, error) {
	if !uuid.Valid(id) {
		return nil, apperr.NotFound(resourceAccount)
	}

	account, err := scanAccount(repository.db.QueryRow(context, queryFindByID, id))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_id", resourceAccount, MessageAccountExists)
	}
	return account, nil
}

// FindByEmail retrieves an account by its normalized email.
func (repository *PostgresAccountRepository) FindByEmail(context context.Context, email string) (*Account, error) {
	account, err := scanAccount(repository.db.QueryRow(context, queryFindByEmail, email))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_email", resourceAccount, MessageAccountExists)
	}
	return account, nil
}

// FindByEmailOrUsername retrieves any account holding the email or the username key.
func (repository *PostgresAccountRepository) FindByEmailOrUsername(context context.Context, email, usernameKey string) (*Account, error) {
	account, err := scanAccount(repository.db.QueryRow(context, queryFindByEmailOrUsername, email, usernameKey))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_email_or_username", resourceAccount, MessageAccountExists)
	}
	return account, nil
}

// FindByResetDigest retrieves the account holding an unexpired reset digest.
func (repository *PostgresAccountRepository) FindByResetDigest(context context.Context, digest string, now time.Time) (*Account, error) {
	account, err := scanAccount(repository.db.QueryRow(context, queryFindByResetDigest, digest, now))
	if err != nil {
		return nil, dberr.Wrap(err, "account_find_by_reset_digest", resourceAccount, MessageAccountExists)
	}
	return account, nil
}

/*
Insert persists a new account into the users.account table.

Description: The username key is derived here so that the unique constraint
always sees the folded form. A unique violation on either key surfaces as
apperr.Conflict, which is how a lost registration race is reported.

Parameters:
  - context: context.Context
  - account: *Account (Entity to persist)

Returns:
  - error: apperr.Conflict or connectivity errors
*/
func (repository *PostgresAccountRepository) Insert(context context.Context, account *Account) error {
	_, err := repository.db.Exec(context, queryInsertAccount,
		account.ID,
		account.Username,
		normalize.Username(account.Username),
		account.Email,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.Bio,
		account.AvatarURL,
		account.IsEmailVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)
	return dberr.Wrap(err, "account_insert", resourceAccount, MessageAccountExists)
}

// UpdateProfile persists the mutable profile fields.
func (repository *PostgresAccountRepository) UpdateProfile(context context.Context, account *Account) error {
	return repository.execOne(context, "account_update_profile", queryUpdateProfile,
		account.ID,
		account.FirstName,
		account.LastName,
		account.Bio,
		account.AvatarURL,
		account.UpdatedAt,
	)
}

// UpdatePassword replaces the digest and clears any pending reset.
func (repository *PostgresAccountRepository) UpdatePassword(context context.Context, id, passwordHash string) error {
	return repository.execOne(context, "account_update_password", queryUpdatePassword, id, passwordHash)
}

// SetResetDigest records a pending reset.
func (repository *PostgresAccountRepository) SetResetDigest(context context.Context, id, digest string, expiresAt time.Time) error {
	return repository.execOne(context, "account_set_reset_digest", querySetResetDigest, id, digest, expiresAt)
}

// ClearResetDigest drops the pending reset if it still holds digest.
func (repository *PostgresAccountRepository) ClearResetDigest(context context.Context, id, digest string) error {
	_, err := repository.db.Exec(context, queryClearResetDigest, id, digest)
	return dberr.Wrap(err, "account_clear_reset_digest", resourceAccount, MessageAccountExists)
}

/*
ConsumeResetDigest redeems a reset token in a single conditional UPDATE.

Description: Of two concurrent redemptions of the same token, exactly one
matches the WHERE clause; the other sees zero rows and gets NotFound.

Parameters:
  - context: context.Context
  - id: string
  - digest: string
  - passwordHash: string
  - now: time.Time

Returns:
  - error: apperr.NotFound or database failures
*/
func (repository *PostgresAccountRepository) ConsumeResetDigest(context context.Context, id, digest, passwordHash string, now time.Time) error {
	return repository.execOne(context, "account_consume_reset_digest", queryConsumeResetDigest, id, digest, passwordHash, now)
}

// Delete permanently removes the account row.
func (repository *PostgresAccountRepository) Delete(context context.Context, id string) error {
	if !uuid.Valid(id) {
		return apperr.NotFound(resourceAccount)
	}
	return repository.execOne(context, "account_delete", queryDeleteAccount, id)
}

// # Helpers

// execOne runs a statement that must affect exactly one account.
func (repository *PostgresAccountRepository) execOne(context context.Context, action, query string, args ...any) error {
	tag, err := repository.db.Exec(context, query, args...)
	if err != nil {
		return dberr.Wrap(err, action, resourceAccount, MessageAccountExists)
	}

	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAccount)
	}
	return nil
}

// scanAccount hydrates an account in [schema.UserAccountTable.Columns] order.
func scanAccount(row pgx.Row) (*Account, error) {
	var account Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.FirstName,
		&account.LastName,
		&account.Bio,
		&account.AvatarURL,
		&account.IsEmailVerified,
		&account.ResetDigest,
		&account.ResetExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}
