// Copyright (c) 2026 Passport. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/passport/internal/platform/request"
	"github.com/taibuivan/passport/internal/platform/respond"
	"github.com/taibuivan/passport/internal/platform/validate"
)

// usernamePattern restricts usernames to ASCII letters, digits and underscore.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages the credential entry points (registration, login,
// password reset) and the two session-bound actions under /auth.
type Handler struct {
	authService *Service
	guard       func(http.Handler) http.Handler
}

// NewHandler constructs a new [Handler]. guard protects /me and /change-password.
func NewHandler(service *Service, guard func(http.Handler) http.Handler) *Handler {
	return &Handler{authService: service, guard: guard}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /register               : Creates a new account and a session.
//   - POST /login                  : Authenticates and returns a session.
//   - GET  /me                     : Returns the caller's profile.
//   - POST /forgot-password        : Mails a reset link.
//   - PUT  /reset-password/{token} : Redeems a reset token.
//   - POST /change-password        : Changes the caller's password.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Put("/reset-password/{token}", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.guard)
		r.Get("/me", handler.me)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request & Response Payloads

type registerRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar_url"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// sessionResponse is the body returned whenever a session is issued.
type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      Profile   `json:"user"`
}

func newSessionResponse(session *Session) sessionResponse {
	return sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      session.Account.Profile(),
	}
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Username, Email, Password, optional profile fields)

Response:
  - 201: sessionResponse: Token and created profile
  - 400: VALIDATION_ERROR: Bad input
  - 409: CONFLICT: Username or Email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, UsernameMinLength).
		MaxLen(FieldUsername, input.Username, UsernameMaxLength).
		Matches(FieldUsername, input.Username, usernamePattern, "Only letters, numbers and underscores").
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email)
	validatePassword(validator, FieldPassword, input.Password)
	validator.MaxLen(FieldFirstName, input.FirstName, NameMaxLength).
		MaxLen(FieldLastName, input.LastName, NameMaxLength).
		MaxLen(FieldBio, input.Bio, BioMaxLength)
	if input.AvatarURL != "" {
		validator.URL(FieldAvatarURL, input.AvatarURL)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Profile: ProfileFields{
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Bio:       input.Bio,
			AvatarURL: input.AvatarURL,
		},
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, newSessionResponse(session))
}

/*
Login authenticates a user and issues a session.

POST /api/v1/auth/login

Response:
  - 200: sessionResponse: Token and profile
  - 401: UNAUTHORIZED: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newSessionResponse(session))
}

/*
Me returns the profile of the authenticated caller.

GET /api/v1/auth/me

Response:
  - 200: Profile
  - 401: UNAUTHORIZED: Missing or invalid session
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.authService.WhoAmI(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, account.Profile())
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Answers the same way whether or not the email is registered.

Response:
  - 200: Generic message
  - 400: VALIDATION_ERROR: Invalid email format
  - 503: SERVICE_UNAVAILABLE: The reset email could not be delivered
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: MessageResetRequested,
	})
}

/*
ResetPassword completes the password recovery flow.

PUT /api/v1/auth/reset-password/{token}

Response:
  - 200: sessionResponse: Token for the recovered account
  - 400: INVALID_OR_EXPIRED or VALIDATION_ERROR
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validatePassword(validator, FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.ResetPassword(request.Context(), requestutil.Param(request, FieldToken), input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, newSessionResponse(session))
}

/*
ChangePassword updates the authenticated user's password.

POST /api/v1/auth/change-password

Response:
  - 200: Success message
  - 401: UNAUTHORIZED: Session invalid or current password wrong
  - 400: VALIDATION_ERROR: Weak password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword)
	validatePassword(validator, FieldNewPassword, input.NewPassword)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), accountID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: MessagePasswordChanged,
	})
}

// validatePassword applies the password policy to a field.
func validatePassword(validator *validate.Validator, field, password string) {
	validator.Required(field, password).
		MinLen(field, password, PasswordMinLength).
		MaxBytes(field, password, PasswordMaxBytes)
}
