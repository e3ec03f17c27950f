// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/ctxutil"
	"github.com/taibuivan/passport/internal/platform/respond"
)

/*
TestError_ClassifiedError renders the status, code and message of an AppError.
*/
func TestError_ClassifiedError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, apperr.Conflict("User already exists with this email or username"))

	assert.Equal(t, http.StatusConflict, recorder.Code)

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeConflict, envelope.Code)
	assert.Equal(t, "User already exists with this email or username", envelope.Error)
}

/*
TestError_UnclassifiedError hides the cause from the client and logs it with oops context.
*/
func TestError_UnclassifiedError(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request = request.WithContext(ctxutil.WithLogger(request.Context(), logger))

	cause := oops.In("postgres").Code("account_insert_failed").With("account_id", "a-1").Wrap(errors.New("connection reset"))
	respond.Error(recorder, request, cause)

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "connection reset")

	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	assert.Equal(t, apperr.CodeInternal, envelope.Code)

	assert.Contains(t, logs.String(), "api_server_error")
	assert.Contains(t, logs.String(), "account_insert_failed")
	assert.Contains(t, logs.String(), "connection reset")
}

/*
TestOK_Envelope wraps payloads under "data".
*/
func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]string{"message": "hi"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"message":"hi"}}`, recorder.Body.String())
}
