package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	authhttp "github.com/aussiebroadwan/sessiongate/internal/auth/http"
	"github.com/aussiebroadwan/sessiongate/internal/auth/service"
	"github.com/aussiebroadwan/sessiongate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiongate/pkg/authsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type harness struct {
	router *authhttp.Router
	auth   *service.AuthService
	ip     atomic.Int32
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	auth, err := service.NewAuthService(service.Config{
		SecretKey:  []byte("router-test-key"),
		Algorithm:  "HS256",
		Salt:       []byte("router-test-salt"),
		Iterations: 1000,
	})
	require.NoError(t, err)

	logger := slogx.New(slogx.Config{Level: "error", Output: io.Discard})
	r := authhttp.NewRouter("test", st, logger)
	r.AuthService = auth
	r.UserService = &service.UserService{Store: st, Auth: auth}
	r.ApplyRoutes()

	return &harness{router: r, auth: auth}
}

type call struct {
	method string
	path   string
	body   any
	auth   string
	ip     string // defaults to a fresh address per call
}

func (h *harness) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if c.body != nil {
		if raw, ok := c.body.(string); ok {
			body = bytes.NewBufferString(raw)
		} else {
			b, err := json.Marshal(c.body)
			require.NoError(t, err)
			body = bytes.NewReader(b)
		}
	}

	req := httptest.NewRequest(c.method, c.path, body)
	if c.auth != "" {
		req.Header.Set("Authorization", c.auth)
	}
	ip := c.ip
	if ip == "" {
		ip = fmt.Sprintf("10.0.0.%d", h.ip.Add(1))
	}
	req.Header.Set("X-Forwarded-For", ip)

	rr := httptest.NewRecorder()
	h.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func (h *harness) register(t *testing.T, email, password string) {
	t.Helper()
	rr := h.do(t, call{method: http.MethodPost, path: "/v1/users", body: authsdk.RegisterRequest{Email: email, Password: password}})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
}

func (h *harness) login(t *testing.T, email, password string) authsdk.TokenResponse {
	t.Helper()
	rr := h.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: map[string]any{"email": email, "password": password}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[authsdk.TokenResponse](t, rr)
}

func TestRegister(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, call{method: http.MethodPost, path: "/v1/users", body: authsdk.RegisterRequest{Email: " Bob@X.com", Password: "pw"}})
	require.Equal(t, http.StatusCreated, rr.Code)
	user := decode[authsdk.UserResponse](t, rr)
	require.Equal(t, "bob@x.com", user.Email)
	require.NotEmpty(t, user.ID)
	require.NotContains(t, rr.Body.String(), "password")

	rr = h.do(t, call{method: http.MethodPost, path: "/v1/users", body: authsdk.RegisterRequest{Email: "bob@x.com", Password: "pw"}})
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Equal(t, authsdk.ErrorCodeConflict, decode[authsdk.ErrorResponse](t, rr).Error)

	rr = h.do(t, call{method: http.MethodPost, path: "/v1/users", body: authsdk.RegisterRequest{Email: "carol@x.com"}})
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = h.do(t, call{method: http.MethodPost, path: "/v1/users", body: "{not json"})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLogin(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com", "right")

	t.Run("success", func(t *testing.T) {
		rr := h.do(t, call{
			method: http.MethodPost,
			path:   "/v1/auth/login",
			body:   map[string]any{"email": "A@x.com", "password": "right", "device": "phone"},
		})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		require.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

		pair := decode[authsdk.TokenResponse](t, rr)
		claims, err := h.auth.Decode(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "a@x.com", claims.String("email"))
		require.Equal(t, "phone", claims.String("device"))
		require.NotContains(t, claims, "password")
	})

	cases := []struct {
		name string
		body any
		code int
	}{
		{"wrong password", map[string]any{"email": "a@x.com", "password": "wrong"}, http.StatusNotFound},
		{"unknown email", map[string]any{"email": "z@x.com", "password": "right"}, http.StatusNotFound},
		{"missing password", map[string]any{"email": "a@x.com"}, http.StatusBadRequest},
		{"malformed json", "{", http.StatusBadRequest},
		{"empty body", "", http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := h.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: tc.body})
			require.Equal(t, tc.code, rr.Code, rr.Body.String())
		})
	}
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com", "right")
	pair := h.login(t, "a@x.com", "right")

	rr := h.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", body: authsdk.RefreshRequest{RefreshToken: pair.RefreshToken}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	next := decode[authsdk.TokenResponse](t, rr)

	claims, err := h.auth.Decode(next.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.String("email"))

	rr = h.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", body: authsdk.RefreshRequest{RefreshToken: "garbage"}})
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = h.do(t, call{method: http.MethodPost, path: "/v1/auth/refresh", body: map[string]any{}})
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMe(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com", "right")
	pair := h.login(t, "a@x.com", "right")

	for name, header := range map[string]string{
		"missing": "",
		"garbage": "Bearer garbage",
	} {
		t.Run("rejects "+name, func(t *testing.T) {
			rr := h.do(t, call{method: http.MethodGet, path: "/v1/users/me", auth: header})
			require.Equal(t, http.StatusUnauthorized, rr.Code)
			require.Equal(t, "Authorization error\n", rr.Body.String())
		})
	}

	for name, header := range map[string]string{
		"bearer": "Bearer " + pair.AccessToken,
		"bare":   pair.AccessToken,
	} {
		t.Run("accepts "+name, func(t *testing.T) {
			rr := h.do(t, call{method: http.MethodGet, path: "/v1/users/me", auth: header})
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			require.Equal(t, "a@x.com", decode[authsdk.UserResponse](t, rr).Email)
		})
	}
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com", "old")
	pair := h.login(t, "a@x.com", "old")
	bearer := "Bearer " + pair.AccessToken

	rr := h.do(t, call{method: http.MethodPut, path: "/v1/users/me/password", auth: bearer,
		body: authsdk.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "new"}})
	require.Equal(t, http.StatusForbidden, rr.Code)

	rr = h.do(t, call{method: http.MethodPut, path: "/v1/users/me/password",
		body: authsdk.ChangePasswordRequest{OldPassword: "old", NewPassword: "new"}})
	require.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = h.do(t, call{method: http.MethodPut, path: "/v1/users/me/password", auth: bearer,
		body: authsdk.ChangePasswordRequest{OldPassword: "old", NewPassword: "new"}})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	h.login(t, "a@x.com", "new")
}

func TestHealth(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, call{method: http.MethodGet, path: "/livez"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "test", decode[authsdk.HealthResponse](t, rr).Version)

	rr = h.do(t, call{method: http.MethodGet, path: "/readyz"})
	require.Equal(t, http.StatusOK, rr.Code)
	health := decode[authsdk.HealthResponse](t, rr)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "ok", health.Checks.Signer)
}

func TestLoginIsRateLimitedByIP(t *testing.T) {
	h := newHarness(t)

	var last *httptest.ResponseRecorder
	for range 10 {
		last = h.do(t, call{
			method: http.MethodPost,
			path:   "/v1/auth/login",
			body:   map[string]any{"email": "a@x.com", "password": "x"},
			ip:     "192.0.2.10",
		})
		if last.Code == http.StatusTooManyRequests {
			break
		}
	}
	require.Equal(t, http.StatusTooManyRequests, last.Code)
	require.NotEmpty(t, last.Header().Get("Retry-After"))
	require.Equal(t, authsdk.ErrorCodeRateLimited, decode[authsdk.ErrorResponse](t, last).Error)

	// Another address is unaffected.
	rr := h.do(t, call{method: http.MethodPost, path: "/v1/auth/login", body: map[string]any{"email": "a@x.com", "password": "x"}})
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRequestIDAndSwagger(t *testing.T) {
	h := newHarness(t)

	rr := h.do(t, call{method: http.MethodGet, path: "/livez"})
	require.NotEmpty(t, rr.Header().Get(slogx.RequestIDHeader))

	rr = h.do(t, call{method: http.MethodGet, path: "/swagger/doc.json"})
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "/v1/auth/login")
}

func TestIssuedTokenLifetimes(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com", "right")
	pair := h.login(t, "a@x.com", "right")

	access, err := h.auth.Decode(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := h.auth.Decode(pair.RefreshToken)
	require.NoError(t, err)

	accessExp, _ := access.ExpiresAt()
	refreshExp, _ := refresh.ExpiresAt()
	now := time.Now()
	require.WithinDuration(t, now.Add(30*time.Minute), accessExp, 5*time.Second)
	require.WithinDuration(t, now.Add(130*24*time.Hour), refreshExp, 5*time.Second)
}
