package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/sessiongate/internal/auth/domain"
	"github.com/aussiebroadwan/sessiongate/internal/auth/store"
	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/idx"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

type UserService struct {
	Store store.Store
	Auth  *AuthService
}

// NormalizeEmail trims and lower-cases an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a freshly derived password digest.
func (s *UserService) Register(ctx context.Context, email, password string) (domain.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: email and password are required", ErrMissingField)
	}

	u := domain.User{
		ID:             idx.New().String(),
		Email:          email,
		PasswordDigest: s.Auth.Digest(password),
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", slog.String("user_id", u.ID))

	// Re-read so timestamps match what the store persisted.
	return s.Store.Users().GetUserByID(ctx, u.ID)
}

// GetUserByEmail fetches a user by (normalised) email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return u, nil
}

// Login resolves the stored user for body["email"] and hands off to
// AuthService.Login. An unknown email and a wrong password both come back as
// ErrNotFound.
func (s *UserService) Login(ctx context.Context, body jwtx.Claims) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	email := NormalizeEmail(body.String(FieldEmail))
	password := body.String(FieldPassword)
	if email == "" || password == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: login payload incomplete", ErrMissingField)
	}

	user, err := s.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		// Burn the same KDF work as a real comparison.
		_ = s.Auth.Digest(password)
		l.Info("login failed", slog.String("reason", "unknown_email"))
		return domain.TokenPair{}, ErrNotFound
	}
	if err != nil {
		return domain.TokenPair{}, err
	}

	pair, err := s.Auth.Login(body, user)
	switch {
	case errors.Is(err, cryptox.ErrInvalidDigest):
		l.Error("login failed", slog.String("reason", "corrupt_digest"), slog.String("user_id", user.ID))
		return domain.TokenPair{}, err
	case errors.Is(err, ErrInvalidCredentials):
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		return domain.TokenPair{}, err
	case err != nil:
		return domain.TokenPair{}, err
	}

	l.Info("login succeeded", slog.String("user_id", user.ID))
	return pair, nil
}

// ChangePassword replaces the digest of the user identified by email after
// checking the current password.
func (s *UserService) ChangePassword(ctx context.Context, email, oldPassword, newPassword string) error {
	email = NormalizeEmail(email)
	if email == "" || oldPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: email, old and new password are required", ErrMissingField)
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		u, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := s.Auth.VerifyPassword(u.PasswordDigest, oldPassword); err != nil {
			if errors.Is(err, cryptox.ErrInvalidDigest) {
				slogx.FromContext(ctx).Error("stored password digest is corrupt", slog.String("user_id", u.ID))
			}
			return err
		}

		return tx.Users().UpdatePasswordDigest(ctx, u.ID, s.Auth.Digest(newPassword))
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("password changed")
	return nil
}
