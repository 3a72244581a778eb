package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/auth/domain"
	"github.com/aussiebroadwan/sessiongate/internal/auth/service"
	"github.com/aussiebroadwan/sessiongate/pkg/authsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
)

type UsersHandler struct {
	UserService *service.UserService
}

// HandleRegister godoc
//
//	@Summary		Register a user
//	@Description	Creates a user with a PBKDF2 password digest. Does not log the user in.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RegisterRequest	true	"Email and password"
//	@Success		201		{object}	authsdk.UserResponse
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing fields"
//	@Failure		409		{object}	authsdk.ErrorResponse	"Email already registered"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/v1/users [post].
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := h.UserService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, "register", err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, toUserResponse(user))
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the user named by the email claim of the access token.
//	@Tags			Users
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.UserResponse
//	@Failure		401	{string}	string					"Authorization error"
//	@Failure		404	{object}	authsdk.ErrorResponse	"User no longer exists"
//	@Router			/v1/users/me [get].
func (h *UsersHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	email, ok := claimEmail(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	user, err := h.UserService.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, "load user", err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toUserResponse(user))
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Replaces the caller's password after checking the current one. Existing tokens stay valid until they expire.
//	@Tags			Users
//	@Security		BearerAuth
//	@Accept			json
//	@Param			body	body	authsdk.ChangePasswordRequest	true	"Old and new password"
//	@Success		204
//	@Failure		400	{object}	authsdk.ErrorResponse	"Malformed body or missing fields"
//	@Failure		401	{string}	string					"Authorization error"
//	@Failure		403	{object}	authsdk.ErrorResponse	"Current password is wrong"
//	@Failure		429	{object}	authsdk.ErrorResponse	"Rate limited"
//	@Router			/v1/users/me/password [put].
func (h *UsersHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	email, ok := claimEmail(r)
	if !ok {
		httpx.WriteUnauthorized(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := h.UserService.ChangePassword(r.Context(), email, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, "change password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func claimEmail(r *http.Request) (string, bool) {
	claims, ok := httpx.ClaimsFromContext(r.Context())
	if !ok {
		return "", false
	}
	email := claims.String(service.FieldEmail)
	return email, email != ""
}

func toUserResponse(u domain.User) authsdk.UserResponse {
	return authsdk.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
