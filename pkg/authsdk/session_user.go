package authsdk

import (
	"context"
	"net/http"
)

// Me returns the user the session belongs to.
func (s *Session) Me(ctx context.Context) (*UserResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/users/me", nil)
	if err != nil {
		return nil, err
	}

	var user UserResponse
	if err := decodeJSON(resp, &user, http.StatusOK); err != nil {
		return nil, err
	}

	return &user, nil
}

// ChangePassword replaces the session user's password. Tokens issued before
// the change stay valid until they expire.
func (s *Session) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, "/v1/users/me/password", ChangePasswordRequest{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
