//go:build e2e

package auth_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/aussiebroadwan/sessiongate/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestRateLimitLoginEndpoint verifies login allows 5 attempts per minute per IP.
func TestRateLimitLoginEndpoint(t *testing.T) {
	client := authsdk.NewSDKClient(setupAuthContainerWithDefaultRateLimits(t))
	ctx := t.Context()

	req := authsdk.LoginRequest{Email: "nobody@example.com", Password: "wrong"}
	for i := range 5 {
		_, err := client.Login(ctx, req)
		require.ErrorIs(t, err, authsdk.ErrNotFound, "request %d should not be rate limited", i+1)
	}

	_, err := client.Login(ctx, req)
	var apiErr *authsdk.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	require.Equal(t, authsdk.ErrorCodeRateLimited, apiErr.Code)
}
