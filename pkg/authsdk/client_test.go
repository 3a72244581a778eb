package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@x.com",
		"exp":   exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return tok
}

func TestLoginSendsClaims(t *testing.T) {
	t.Parallel()

	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "a", RefreshToken: "r"})
	}))
	defer srv.Close()

	client := NewSDKClient(srv.URL + "/")
	resp, err := client.Login(context.Background(), LoginRequest{
		Email:    "a@x.com",
		Password: "pw",
		Extra:    map[string]any{"device": "cli", "email": "ignored"},
	})
	require.NoError(t, err)
	require.Equal(t, "a", resp.AccessToken)
	require.Equal(t, "r", resp.RefreshToken)

	require.Equal(t, map[string]any{"email": "a@x.com", "password": "pw", "device": "cli"}, got)
}

func TestErrorResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/login":
			ErrNotFound.WriteError(w)
		case "/v1/users":
			ErrEmailTaken.WriteError(w)
		case "/v1/users/me":
			http.Error(w, "Authorization error", http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	client := NewSDKClient(srv.URL)

	_, err := client.Login(ctx, LoginRequest{Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = client.Register(ctx, RegisterRequest{Email: "a@x.com", Password: "pw"})
	require.ErrorIs(t, err, ErrEmailTaken)

	session := client.NewSessionFromTokens(signedToken(t, time.Now().Add(time.Hour)), "r")
	_, err = session.Me(ctx)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = client.GetLiveness(ctx)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}

func TestSessionRefreshesExpiredToken(t *testing.T) {
	t.Parallel()

	fresh := signedToken(t, time.Now().Add(30*time.Minute))
	var refreshes atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/auth/refresh":
			refreshes.Add(1)
			var req RefreshRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			require.Equal(t, "old-refresh", req.RefreshToken)
			_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: fresh, RefreshToken: "new-refresh"})
		case "/v1/users/me":
			require.Equal(t, "Bearer "+fresh, r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode(UserResponse{ID: "u1", Email: "a@x.com"})
		}
	}))
	defer srv.Close()

	client := NewSDKClient(srv.URL)
	session := client.NewSessionFromTokens(signedToken(t, time.Now().Add(-time.Minute)), "old-refresh")

	me, err := session.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "a@x.com", me.Email)
	require.Equal(t, "new-refresh", session.RefreshToken())
	require.Equal(t, int32(1), refreshes.Load())

	// Second call reuses the fresh token.
	_, err = session.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), refreshes.Load())
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	require.Equal(t, exp.Add(-expiryBuffer).Unix(), tokenExpiry(signedToken(t, exp)).Unix())
	require.True(t, tokenExpiry("not a token").IsZero())
}
