// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/constants"
	"github.com/taibuivan/passport/internal/platform/ctxutil"
	"github.com/taibuivan/passport/internal/platform/mailer"
	"github.com/taibuivan/passport/internal/platform/metrics"
	"github.com/taibuivan/passport/internal/platform/sec"
	"github.com/taibuivan/passport/pkg/normalize"
	"github.com/taibuivan/passport/pkg/uuid"
)

// # Contracts & Types

// PasswordHasher produces and checks one-way password digests.
type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) bool
	// Decoy is a valid digest of no real password, verified against when the
	// account does not exist so both login failures cost the same.
	Decoy() string
}

// TokenProvider issues signed session tokens.
type TokenProvider interface {
	// Issue returns a token for subjectID and the instant it stops verifying.
	Issue(subjectID string) (string, time.Time, error)
}

// Dependencies are the collaborators of [Service]. Cache and Metrics are optional.
type Dependencies struct {
	Accounts AccountRepository
	Hasher   PasswordHasher
	Tokens   TokenProvider
	Mailer   mailer.Mailer
	Clock    clockwork.Clock
	Cache    IdentityCache
	Metrics  *metrics.Auth
}

// Settings holds the reset policy.
type Settings struct {
	// ResetTTL is how long a reset token stays redeemable.
	ResetTTL time.Duration
	// FrontendURL prefixes the reset link sent by mail.
	FrontendURL string
}

// Service implements the credential use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed by the security team.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   TokenProvider
	mailer   mailer.Mailer
	clock    clockwork.Clock
	cache    IdentityCache
	metrics  *metrics.Auth
	settings Settings
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(deps Dependencies, settings Settings) *Service {
	return &Service{
		accounts: deps.Accounts,
		hasher:   deps.Hasher,
		tokens:   deps.Tokens,
		mailer:   deps.Mailer,
		clock:    deps.Clock,
		cache:    deps.Cache,
		metrics:  deps.Metrics,
		settings: settings,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Profile  ProfileFields
}

/*
Register validates uniqueness, hashes, and persists a brand new account, then
issues its first session.

Description: The pre-check gives the common duplicate case a fast answer;
the unique constraints behind Insert decide concurrent races. Either way the
caller sees the same Conflict, which never says which key collided.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Session: Token and the created account
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Session, error) {
	email := normalize.Email(input.Email)
	username := strings.TrimSpace(input.Username)

	_, err := service.accounts.FindByEmailOrUsername(context, email, normalize.Username(username))
	if err == nil {
		service.metrics.Record(metrics.EventRegister, metrics.OutcomeRejected)
		return nil, apperr.Conflict(MessageAccountExists)
	}
	if !apperr.IsNotFound(err) {
		service.metrics.Record(metrics.EventRegister, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		service.metrics.Record(metrics.EventRegister, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	now := service.clock.Now()
	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(input.Profile.FirstName),
		LastName:     strings.TrimSpace(input.Profile.LastName),
		Bio:          strings.TrimSpace(input.Profile.Bio),
		AvatarURL:    strings.TrimSpace(input.Profile.AvatarURL),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.accounts.Insert(context, account); err != nil {
		if apperr.IsConflict(err) {
			service.metrics.Record(metrics.EventRegister, metrics.OutcomeRejected)
			return nil, apperr.Conflict(MessageAccountExists)
		}
		service.metrics.Record(metrics.EventRegister, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	session, err := service.issueSession(account)
	if err != nil {
		service.metrics.Record(metrics.EventRegister, metrics.OutcomeError)
		return nil, err
	}

	service.metrics.Record(metrics.EventRegister, metrics.OutcomeSuccess)
	ctxutil.GetLogger(context).Info("account_registered", slog.String("account_id", account.ID))

	return session, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates credentials and issues a session token.

Description: Unknown email and wrong password are indistinguishable to the
caller: same error, and a bcrypt comparison is paid on both paths.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *Session: Token and the authenticated account
  - err: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*Session, error) {
	account, err := service.accounts.FindByEmail(context, normalize.Email(input.Email))
	if err != nil {
		if !apperr.IsNotFound(err) {
			service.metrics.Record(metrics.EventLogin, metrics.OutcomeError)
			return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
		}

		service.hasher.Verify(input.Password, service.hasher.Decoy())
		service.metrics.Record(metrics.EventLogin, metrics.OutcomeRejected)
		return nil, apperr.Unauthorized(MessageInvalidCredentials)
	}

	if !service.hasher.Verify(input.Password, account.PasswordHash) {
		service.metrics.Record(metrics.EventLogin, metrics.OutcomeRejected)
		ctxutil.GetLogger(context).Info("login_rejected", slog.String("account_id", account.ID))
		return nil, apperr.Unauthorized(MessageInvalidCredentials)
	}

	session, err := service.issueSession(account)
	if err != nil {
		service.metrics.Record(metrics.EventLogin, metrics.OutcomeError)
		return nil, err
	}

	service.metrics.Record(metrics.EventLogin, metrics.OutcomeSuccess)
	return session, nil
}

/*
WhoAmI returns the current account of an authenticated subject.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *Account: The stored account
  - err: NotFound if the account was deleted after the token was issued
*/
func (service *Service) WhoAmI(context context.Context, accountID string) (*Account, error) {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound(resourceAccount)
		}
		return nil, fmt.Errorf("auth_service_whoami_failed: %w", err)
	}
	return account, nil
}

// # Session Resolution

/*
ResolveIdentity maps a verified token subject onto the principal attached to
the request.

Description: Reads through the identity cache when one is configured. Cache
failures degrade to a storage read; they never fail the request.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *sec.Identity: The authenticated principal
  - err: NotFound if the account no longer exists
*/
func (service *Service) ResolveIdentity(context context.Context, accountID string) (*sec.Identity, error) {
	logger := ctxutil.GetLogger(context)

	if service.cache != nil {
		identity, err := service.cache.Get(context, accountID)
		if err == nil {
			service.metrics.Record(metrics.EventSessionCheck, metrics.OutcomeSuccess)
			return identity, nil
		}
		if !apperr.IsNotFound(err) {
			logger.Warn("identity_cache_read_failed", slog.Any("error", err))
		}
	}

	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		if apperr.IsNotFound(err) {
			service.metrics.Record(metrics.EventSessionCheck, metrics.OutcomeRejected)
			return nil, apperr.NotFound(resourceAccount)
		}
		service.metrics.Record(metrics.EventSessionCheck, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_resolve_identity_failed: %w", err)
	}

	identity := account.Identity()
	if service.cache != nil {
		if err := service.cache.Set(context, identity); err != nil {
			logger.Warn("identity_cache_write_failed", slog.Any("error", err))
		}
	}

	service.metrics.Record(metrics.EventSessionCheck, metrics.OutcomeSuccess)
	return identity, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: For a registered email, stores the digest of a fresh token,
replacing any earlier one, and mails the plaintext link. For an unknown
email it does nothing and still succeeds, so the two cases look the same,
down to the recorded event outcome. If delivery fails the digest just written is withdrawn.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: ServiceUnavailable on delivery failure, or storage errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) error {
	logger := ctxutil.GetLogger(context)

	account, err := service.accounts.FindByEmail(context, normalize.Email(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeSuccess)
			return nil
		}
		service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeError)
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	plaintext, digest, err := sec.GenerateResetToken()
	if err != nil {
		service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeError)
		return fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	expiresAt := service.clock.Now().Add(service.settings.ResetTTL)
	if err := service.accounts.SetResetDigest(context, account.ID, digest, expiresAt); err != nil {
		service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeError)
		return fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	message := mailer.Message{
		To:      account.Email,
		Subject: constants.ResetEmailSubject,
		Body:    service.resetEmailBody(plaintext),
	}

	if err := service.mailer.Send(context, message); err != nil {
		logger.Warn("password_reset_delivery_failed", slog.String("account_id", account.ID), slog.Any("error", err))
		if clearErr := service.accounts.ClearResetDigest(context, account.ID, digest); clearErr != nil {
			logger.Error("reset_digest_rollback_failed",
				slog.String("account_id", account.ID),
				slog.Any("error", clearErr),
			)
		}
		service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeError)
		return apperr.ServiceUnavailable(MessageDeliveryFailed, err)
	}

	service.metrics.Record(metrics.EventResetRequest, metrics.OutcomeSuccess)
	logger.Info("password_reset_requested",
		slog.String("account_id", account.ID),
		slog.Time("expires_at", expiresAt),
	)

	return nil
}

// resetLink is the URL mailed to the account owner for a reset token.
func (service *Service) resetLink(plaintext string) string {
	return strings.TrimRight(service.settings.FrontendURL, "/") + constants.ResetPasswordPath + plaintext
}

func (service *Service) resetEmailBody(plaintext string) string {
	return fmt.Sprintf(
		"You are receiving this email because a password reset was requested for your account.\n\n"+
			"Open the link below to choose a new password. It expires in %s.\n\n%s\n\n"+
			"If you did not request this, ignore this email and your password will stay the same.\n",
		service.settings.ResetTTL, service.resetLink(plaintext),
	)
}

/*
ResetPassword completes the forgot-password flow.

Description: Redeems the token at most once. An unknown, used, superseded or
expired token all yield the same InvalidOrExpired error. On success a fresh
session is issued.

Parameters:
  - context: context.Context
  - plaintext: string
  - newPassword: string

Returns:
  - *Session: Token for the account whose password was reset
  - err: InvalidOrExpired or storage failures
*/
func (service *Service) ResetPassword(context context.Context, plaintext, newPassword string) (*Session, error) {
	digest := sec.HashResetToken(plaintext)
	now := service.clock.Now()

	account, err := service.accounts.FindByResetDigest(context, digest, now)
	if err != nil {
		if apperr.IsNotFound(err) {
			service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeRejected)
			return nil, apperr.InvalidOrExpired(MessageInvalidResetToken)
		}
		service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	passwordHash, err := service.hasher.Hash(newPassword)
	if err != nil {
		service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Another redemption may have won between the lookup and here.
	if err := service.accounts.ConsumeResetDigest(context, account.ID, digest, passwordHash, now); err != nil {
		if apperr.IsNotFound(err) {
			service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeRejected)
			return nil, apperr.InvalidOrExpired(MessageInvalidResetToken)
		}
		service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeError)
		return nil, fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	account.PasswordHash = passwordHash
	account.ResetDigest = nil
	account.ResetExpiresAt = nil

	session, err := service.issueSession(account)
	if err != nil {
		service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeError)
		return nil, err
	}

	service.metrics.Record(metrics.EventResetComplete, metrics.OutcomeSuccess)
	ctxutil.GetLogger(context).Info("password_reset_completed", slog.String("account_id", account.ID))

	return session, nil
}

/*
ChangePassword updates the password of an authenticated account.

Description: Requires the current password. Any pending reset is dropped.
Previously issued session tokens stay valid until they expire.

Parameters:
  - context: context.Context
  - accountID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized on a wrong current password, NotFound, or storage failures
*/
func (service *Service) ChangePassword(context context.Context, accountID, currentPassword, newPassword string) error {
	account, err := service.WhoAmI(context, accountID)
	if err != nil {
		service.metrics.Record(metrics.EventPasswordChange, metrics.OutcomeError)
		return err
	}

	if !service.hasher.Verify(currentPassword, account.PasswordHash) {
		service.metrics.Record(metrics.EventPasswordChange, metrics.OutcomeRejected)
		return apperr.Unauthorized(MessageWrongPassword)
	}

	passwordHash, err := service.hasher.Hash(newPassword)
	if err != nil {
		service.metrics.Record(metrics.EventPasswordChange, metrics.OutcomeError)
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.accounts.UpdatePassword(context, accountID, passwordHash); err != nil {
		service.metrics.Record(metrics.EventPasswordChange, metrics.OutcomeError)
		return fmt.Errorf("auth_service_change_password_failed: %w", err)
	}

	service.metrics.Record(metrics.EventPasswordChange, metrics.OutcomeSuccess)
	ctxutil.GetLogger(context).Info("password_changed", slog.String("account_id", accountID))

	return nil
}

// # Helpers

func (service *Service) issueSession(account *Account) (*Session, error) {
	token, expiresAt, err := service.tokens.Issue(account.ID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   account,
	}, nil
}
