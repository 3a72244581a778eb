package service

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/sessiongate/internal/auth/domain"
	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/httpx"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
)

// Request body keys read by Login and Refresh.
const (
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRefreshToken = "refresh_token"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrNotFound           = errors.New("not_found")
	ErrEmailTaken         = errors.New("email_taken")

	// ErrMissingField also matches ErrNotFound so callers that only care
	// about "no session" can keep checking the one sentinel.
	ErrMissingField = fmt.Errorf("%w: missing_field", ErrNotFound)
)

// Config is everything AuthService needs. It is read once at construction.
type Config struct {
	SecretKey  []byte
	Algorithm  string
	Salt       []byte
	Iterations int

	// Now overrides the wall clock. Nil means time.Now.
	Now func() time.Time
}

// AuthService hashes passwords and issues, decodes and refreshes session
// tokens. It holds no mutable state and is safe for concurrent use.
type AuthService struct {
	hasher   *cryptox.PasswordHasher
	signer   jwtx.Signer
	verifier jwtx.Verifier
	now      func() time.Time
}

func NewAuthService(cfg Config) (*AuthService, error) {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	hasher, err := cryptox.NewPasswordHasher(cfg.Salt, cfg.Iterations)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	signer, err := jwtx.NewHMACSigner(cfg.Algorithm, cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	verifier, err := jwtx.NewHMACVerifier(cfg.Algorithm, cfg.SecretKey, jwtx.WithClock(now))
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	return &AuthService{
		hasher:   hasher,
		signer:   signer,
		verifier: verifier,
		now:      now,
	}, nil
}

// Alg reports the configured signing algorithm.
func (s *AuthService) Alg() string { return s.signer.Alg() }

// Digest derives the stored form of a password.
func (s *AuthService) Digest(password string) string {
	return s.hasher.Digest(password)
}

// Compare reports whether candidate matches digest in constant time.
func (s *AuthService) Compare(digest, candidate string) bool {
	return s.hasher.Compare(digest, candidate)
}

// VerifyPassword is Compare with the cause kept: the error wraps
// ErrInvalidCredentials and one of cryptox.ErrPasswordMismatch or
// cryptox.ErrInvalidDigest.
func (s *AuthService) VerifyPassword(digest, candidate string) error {
	if err := s.hasher.Verify(digest, candidate); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return nil
}

// Issue signs claims twice: once with exp set to now+30m for the access token
// and once with exp overwritten to now+130d for the refresh token. The
// caller's map is never touched.
func (s *AuthService) Issue(claims jwtx.Claims) (domain.TokenPair, error) {
	now := s.now()
	working := claims.Clone()

	working.SetExpiry(now.Add(jwtx.AccessTokenTTL))
	access, err := s.signer.Sign(working)
	if err != nil {
		return domain.TokenPair{}, err
	}

	working.SetExpiry(now.Add(jwtx.RefreshTokenTTL))
	refresh, err := s.signer.Sign(working)
	if err != nil {
		return domain.TokenPair{}, err
	}

	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Decode verifies a token and returns its claims. Every failure matches
// ErrInvalidToken; the jwtx cause is wrapped alongside it for logging.
func (s *AuthService) Decode(token string) (jwtx.Claims, error) {
	claims, err := s.verifier.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// Authenticate reads the Authorization header, strips an optional Bearer
// prefix and decodes what is left. It satisfies httpx.Authenticator.
func (s *AuthService) Authenticate(h http.Header) (jwtx.Claims, error) {
	v := h.Get("Authorization")
	if v == "" {
		return nil, fmt.Errorf("%w: missing authorization header", ErrInvalidToken)
	}
	return s.Decode(httpx.BearerToken(v))
}

// AuthCheck reports whether the headers carry a valid token.
func (s *AuthService) AuthCheck(h http.Header) bool {
	_, err := s.Authenticate(h)
	return err == nil
}

// Login checks the submitted password against user and issues a token pair
// over the request body. The email claim is always the stored one and the
// plaintext password never reaches the token. A wrong password matches
// ErrNotFound so it reads the same as an unknown user.
func (s *AuthService) Login(body jwtx.Claims, user domain.User) (domain.TokenPair, error) {
	if body.String(FieldEmail) == "" || body.String(FieldPassword) == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: login payload incomplete", ErrMissingField)
	}

	claims := body.Clone()
	password := claims.String(FieldPassword)
	delete(claims, FieldPassword)
	claims[FieldEmail] = user.Email

	if err := s.VerifyPassword(user.PasswordDigest, password); err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return s.Issue(claims)
}

// Refresh exchanges a valid refresh token for a new pair. The presented token
// is not revoked and stays usable until its own exp.
func (s *AuthService) Refresh(body jwtx.Claims) (domain.TokenPair, error) {
	token := body.String(FieldRefreshToken)
	if token == "" {
		return domain.TokenPair{}, fmt.Errorf("%w: refresh payload incomplete", ErrMissingField)
	}

	claims, err := s.Decode(token)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return s.Issue(claims)
}
