// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/constants"
	"github.com/taibuivan/passport/internal/platform/ctxutil"
	"github.com/taibuivan/passport/internal/platform/respond"
	"github.com/taibuivan/passport/internal/platform/sec"
)

// messageNotAuthorized is the single answer for every guard rejection.
const messageNotAuthorized = "Not authorized to access this route"

// TokenVerifier checks a session token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// IdentityResolver maps a token subject onto a live account.
//
// It returns apperr.NotFound when the account no longer exists.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accountID string) (*sec.Identity, error)
}

// RequireSession admits only requests bearing a valid session token for an
// existing account.
//
// # Flow
//  1. If an identity is already attached, pass through.
//  2. Require 'Authorization: Bearer <token>'.
//  3. Verify the token via [TokenVerifier].
//  4. Resolve the subject via [IdentityResolver].
//  5. Attach the [*sec.Identity] to the context and call next exactly once.
//
// Every rejection in steps 2 to 4 is the same 401. A resolver failure other
// than NotFound is a server error and answers 500.
func RequireSession(verifier TokenVerifier, resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			if ctxutil.GetIdentity(request.Context()) != nil {
				next.ServeHTTP(writer, request)
				return
			}

			token, ok := bearerToken(request)
			if !ok {
				respond.Error(writer, request, apperr.Unauthorized(messageNotAuthorized))
				return
			}

			subject, err := verifier.Verify(token)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized(messageNotAuthorized))
				return
			}

			identity, err := resolver.ResolveIdentity(request.Context(), subject)
			if err != nil {
				if apperr.IsNotFound(err) {
					respond.Error(writer, request, apperr.Unauthorized(messageNotAuthorized))
					return
				}
				respond.Error(writer, request, err)
				return
			}

			recordPrincipal(request.Context(), identity.AccountID)
			next.ServeHTTP(writer, request.WithContext(ctxutil.WithIdentity(request.Context(), identity)))
		})
	}
}

// bearerToken extracts the token from the Authorization header. The scheme
// is matched case-insensitively.
func bearerToken(request *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(request.Header.Get(constants.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, constants.BearerScheme) {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}

// # Principal Holder

// principalHolder lets the outer logger see who the guard admitted.
type principalHolder struct {
	accountID string
}

type principalHolderKey struct{}

func withPrincipalHolder(ctx context.Context) (context.Context, *principalHolder) {
	holder := &principalHolder{}
	return context.WithValue(ctx, principalHolderKey{}, holder), holder
}

func recordPrincipal(ctx context.Context, accountID string) {
	if holder, ok := ctx.Value(principalHolderKey{}).(*principalHolder); ok {
		holder.accountID = accountID
	}
}
