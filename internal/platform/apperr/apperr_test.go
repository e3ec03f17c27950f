// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/passport/internal/platform/apperr"
)

/*
TestConstructors verifies the code and status of every error kind.
*/
func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *apperr.AppError
		code   string
		status int
	}{
		{"not_found", apperr.NotFound("User"), apperr.CodeNotFound, http.StatusNotFound},
		{"unauthorized", apperr.Unauthorized("Invalid credentials"), apperr.CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperr.Forbidden("nope"), apperr.CodeForbidden, http.StatusForbidden},
		{"conflict", apperr.Conflict("taken"), apperr.CodeConflict, http.StatusConflict},
		{"invalid_or_expired", apperr.InvalidOrExpired("Invalid or expired token"), apperr.CodeInvalidOrExpired, http.StatusBadRequest},
		{"validation", apperr.ValidationError("bad"), apperr.CodeValidation, http.StatusBadRequest},
		{"internal", apperr.Internal(errors.New("boom")), apperr.CodeInternal, http.StatusInternalServerError},
		{"unavailable", apperr.ServiceUnavailable("down", nil), apperr.CodeServiceUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
		})
	}

	assert.Equal(t, "User not found", apperr.NotFound("User").Error())
}

/*
TestHelpers_TraverseWrappedChains verifies classification through fmt wrapping.
*/
func TestHelpers_TraverseWrappedChains(t *testing.T) {
	wrapped := fmt.Errorf("auth_service_lookup_failed: %w", apperr.NotFound("User"))

	assert.True(t, apperr.IsNotFound(wrapped))
	assert.False(t, apperr.IsConflict(wrapped))
	require.NotNil(t, apperr.As(wrapped))
	assert.Nil(t, apperr.As(errors.New("plain")))
}

/*
TestInternal_HidesCause checks that the client message never includes the cause.
*/
func TestInternal_HidesCause(t *testing.T) {
	cause := errors.New("pq: relation users.account does not exist")
	err := apperr.Internal(cause)

	assert.NotContains(t, err.Error(), "relation")
	assert.ErrorIs(t, err, cause)
}
