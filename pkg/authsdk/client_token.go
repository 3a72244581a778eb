package authsdk

import (
	"context"
	"net/http"
)

// Login exchanges an email and password for a token pair.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/login", req.Claims())
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token is not revoked by the server.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/v1/auth/refresh", RefreshRequest{RefreshToken: refreshToken})
}

// Register creates a new user. It does not log the user in.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/users", req)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusCreated); err != nil {
		return nil, err
	}

	return &user, nil
}

func (c *SDKClient) requestToken(ctx context.Context, path string, body any) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &tokenResp, nil
}
