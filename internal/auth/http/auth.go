package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/auth/service"
	"github.com/aussiebroadwan/sessiongate/pkg/authsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// LoginHandler serves POST /v1/auth/login.
type LoginHandler struct {
	UserService *service.UserService
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Verifies email and password and issues an access token (30 minutes) and a refresh token (130 days).
//	@Description	The JSON body becomes the claims bundle of both tokens. The email claim is replaced by the stored email and the password is never signed.
//	@Description	Unknown email and wrong password both answer 404.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"Credentials plus any extra claims"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing email/password"
//	@Failure		404		{object}	authsdk.ErrorResponse	"No matching user"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Failure		500		{object}	authsdk.ErrorResponse	"Internal server error"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body jwtx.Claims
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.UserService.Login(r.Context(), body)
	if err != nil {
		writeServiceError(w, r, "login", err)
		return
	}

	writeTokenPair(w, pair.AccessToken, pair.RefreshToken)
}

// RefreshHandler serves POST /v1/auth/refresh.
type RefreshHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Refresh a session
//	@Description	Exchanges a valid refresh token for a new token pair carrying the same claims.
//	@Description	The presented refresh token is not revoked and stays valid until it expires.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.RefreshRequest	true	"Refresh token"
//	@Success		200		{object}	authsdk.TokenResponse	"access_token, refresh_token"
//	@Failure		400		{object}	authsdk.ErrorResponse	"Malformed body or missing refresh_token"
//	@Failure		404		{object}	authsdk.ErrorResponse	"Refresh token invalid or expired"
//	@Failure		429		{object}	authsdk.ErrorResponse	"Rate limited"
//	@Header			200		{string}	Cache-Control			"no-store"
//	@Router			/v1/auth/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body jwtx.Claims
	if err := httpx.DecodeJSON(w, r, &body); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.AuthService.Refresh(body)
	if err != nil {
		slogx.FromContext(r.Context()).Debug("refresh rejected", "err", err)
		writeServiceError(w, r, "refresh", err)
		return
	}

	writeTokenPair(w, pair.AccessToken, pair.RefreshToken)
}

func writeTokenPair(w http.ResponseWriter, access, refresh string) {
	httpx.WriteJSON(w, http.StatusOK, authsdk.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	})
}
