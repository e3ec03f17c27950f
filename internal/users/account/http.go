// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/passport/internal/platform/apperr"
	requestutil "github.com/taibuivan/passport/internal/platform/request"
	"github.com/taibuivan/passport/internal/platform/respond"
	"github.com/taibuivan/passport/internal/users/auth"
)

// Handler implements the HTTP layer for profile management.
//
// # Security
//
// Every route sits behind the session guard passed to [NewHandler].
type Handler struct {
	accountService *Service
	guard          func(http.Handler) http.Handler
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, guard func(http.Handler) http.Handler) *Handler {
	return &Handler{accountService: service, guard: guard}
}

// Routes returns a [chi.Router] configured with the account domain's endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.guard)

	router.Get("/me", handler.getMe)
	router.Get("/{id}", handler.getProfile)
	router.Put("/{id}", handler.updateProfile)
	router.Patch("/{id}", handler.updateProfile)
	router.Delete("/{id}", handler.deleteAccount)

	return router
}

/*
GET /api/v1/users/me.

Response:
  - 200: Profile: The caller's profile
  - 401: UNAUTHORIZED: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: Profile
  - 404: NOT_FOUND
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.accountService.GetProfile(request.Context(), requestutil.Param(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
PUT|PATCH /api/v1/users/{id}.

Description: Both verbs apply a partial update; fields absent from the body
are left unchanged.

Response:
  - 200: Profile: The updated profile
  - 400: VALIDATION_ERROR
  - 403: FORBIDDEN: Not the caller's own account
*/
func (handler *Handler) updateProfile(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input UpdateProfileInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if input.IsEmpty() {
		respond.Error(writer, request, apperr.ValidationError("No updatable fields provided",
			apperr.FieldError{Field: auth.FieldFirstName, Message: "Provide at least one profile field"}))
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), callerID, requestutil.Param(request, "id"), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 200: Confirmation message
  - 403: FORBIDDEN: Not the caller's own account
  - 503: SERVICE_UNAVAILABLE: The identity cache could not be evicted
*/
func (handler *Handler) deleteAccount(writer http.ResponseWriter, request *http.Request) {
	callerID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), callerID, requestutil.Param(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		auth.FieldMessage: MessageAccountDeleted,
	})
}
