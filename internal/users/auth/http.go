// Copyright (c) 2026 Embershelf. All rights reserved.
// Author: dev@embershelf.app

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/embershelf/embershelf/internal/platform/apperr"
	"github.com/embershelf/embershelf/internal/platform/constants"
	"github.com/embershelf/embershelf/internal/platform/middleware"
	requestutil "github.com/embershelf/embershelf/internal/platform/request"
	"github.com/embershelf/embershelf/internal/platform/respond"
	"github.com/embershelf/embershelf/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the membership HTTP endpoints. Access tokens travel in
// the response body; refresh tokens only ever travel in an HttpOnly cookie.
type Handler struct {
	service *Service
}

// NewHandler constructs a new membership [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns a [chi.Router] configured with the membership routes.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

/*
Register enrolls a new member.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Username, Email, Password, DisplayName)

Response:
  - 201: Member: Created member profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or email already exists
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		MinLen(FieldUsername, input.Username, 3).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	member, err := handler.service.Enroll(request.Context(), EnrollInput{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, member)
}

/*
Login authenticates a member and establishes a session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Login, Password)

Response:
  - 200: Grant: Access token and member profile; refresh cookie set
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login)
	validator.Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	grant, err := handler.service.SignIn(request.Context(), SignInInput{
		Login:     input.Login,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: clientIP(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, grant.RefreshToken, grant.RefreshExpiresAt)
	respond.OK(writer, map[string]any{
		FieldAccessToken: grant.AccessToken,
		"member":         grant.Member,
	})
}

/*
Refresh rotates the refresh token and issues a new access token.

POST /api/v1/auth/refresh

Response:
  - 200: Grant: New access token; rotated refresh cookie set
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token in cookies"))
		return
	}

	grant, err := handler.service.Refresh(request.Context(), cookie.Value, request.UserAgent(), clientIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, grant.RefreshToken, grant.RefreshExpiresAt)
	respond.OK(writer, map[string]any{
		FieldAccessToken: grant.AccessToken,
		FieldTokenType:   "Bearer",
		FieldExpiresIn:   AccessTokenTTL / time.Second,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Response:
  - 204: No Content: Session terminated; refresh cookie cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil && cookie.Value != "" {
		_ = handler.service.SignOut(request.Context(), cookie.Value)
	}

	clearRefreshCookie(writer)
	respond.NoContent(writer)
}

/*
ChangePassword rotates the authenticated member's credentials.

POST /api/v1/auth/change-password

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed; other sessions revoked
  - 400: ErrInvalidJSON: Weak password or validation failure
  - 401: ErrUnauthorized: Session invalid or wrong current password
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	cookie, err := request.Cookie(constants.RefreshTokenCookieName)
	if err != nil || cookie.Value == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing active session cookie"))
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.service.ChangePassword(
		request.Context(),
		claims.UserID,
		input.CurrentPassword,
		input.NewPassword,
		cookie.Value,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

// # Cookie & Transport Helpers

// setRefreshCookie installs the refresh token as a strict HttpOnly cookie
// scoped to the refresh path.
func setRefreshCookie(writer http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    token,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  expires,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearRefreshCookie expires the refresh cookie on the client.
func clearRefreshCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clientIP extracts the caller's address, preferring proxy-set headers.
func clientIP(request *http.Request) string {
	if ip := request.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	if ip := request.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	return request.RemoteAddr
}
