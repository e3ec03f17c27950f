// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Architecture
//
// Every response, success or error, uses one JSON envelope so that clients
// parse them the same way: {"data": ...} or {"error", "code", "details"}.
package respond

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/taibuivan/passport/internal/platform/apperr"
	"github.com/taibuivan/passport/internal/platform/ctxutil"
)

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Error   string              `json:"error"`
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload any) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 OK response with data wrapped in the standard success envelope.
func OK(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusOK, SuccessEnvelope{Data: data})
}

// Created writes a 201 Created response with data wrapped in the standard success envelope.
func Created(writer http.ResponseWriter, data any) {
	JSON(writer, http.StatusCreated, SuccessEnvelope{Data: data})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
//
// Unclassified errors become INTERNAL_ERROR; their text never reaches the client.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	appError := apperr.As(err)
	if appError == nil {
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= http.StatusInternalServerError {
		logServerError(request, appError)
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Error:   appError.Message,
		Code:    appError.Code,
		Details: appError.Details,
	})
}

// logServerError logs the hidden cause, expanding oops code and context when present.
func logServerError(request *http.Request, appError *apperr.AppError) {
	logger := ctxutil.GetLogger(request.Context())

	attrs := []any{
		slog.String("code", appError.Code),
		slog.String("request_id", ctxutil.GetRequestID(request.Context())),
	}

	if appError.Cause != nil {
		attrs = append(attrs, slog.String("cause", appError.Cause.Error()))

		if oopsErr, ok := oops.AsOops(appError.Cause); ok {
			if code := oopsErr.Code(); code != nil {
				attrs = append(attrs, slog.Any("cause_code", code))
			}
			if details := oopsErr.Context(); len(details) > 0 {
				attrs = append(attrs, slog.Any("cause_context", details))
			}
		}
	}

	logger.ErrorContext(request.Context(), "api_server_error", attrs...)
}
