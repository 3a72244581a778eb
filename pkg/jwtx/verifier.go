package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed      = errors.New("jwtx: malformed token")
	ErrAlgMismatch    = errors.New("jwtx: algorithm mismatch")
	ErrInvalidSig     = errors.New("jwtx: invalid signature")
	ErrExpired        = errors.New("jwtx: token expired")
	ErrNotYetValid    = errors.New("jwtx: token not yet valid")
	ErrMissingExpiry  = errors.New("jwtx: missing exp claim")
	ErrInvalidClaim   = errors.New("jwtx: invalid claims")
	ErrUnsupportedAlg = errors.New("jwtx: unsupported algorithm")
)

// HMACVerifier validates tokens produced by an HMACSigner with the same
// algorithm and key.
type HMACVerifier struct {
	method *jwt.SigningMethodHMAC
	key    []byte
	now    func() time.Time
}

// VerifierOption tweaks an HMACVerifier.
type VerifierOption func(*HMACVerifier)

// WithClock overrides the wall clock used for exp checks. Mostly for tests.
func WithClock(now func() time.Time) VerifierOption {
	return func(v *HMACVerifier) { v.now = now }
}

// NewHMACVerifier creates a verifier accepting only the named algorithm.
func NewHMACVerifier(alg string, key []byte, opts ...VerifierOption) (*HMACVerifier, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, errors.New("jwtx: empty verification key")
	}

	v := &HMACVerifier{method: method, key: key, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks signature, algorithm and expiry. Numeric claims come back as
// json.Number so large integers survive a refresh unchanged. Each failure is reported as
// one of the package sentinels wrapping the underlying parser error, so
// callers can tell the causes apart with errors.Is.
func (v *HMACVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
		jwt.WithJSONNumber(),
	)

	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		// Checked here rather than with WithValidMethods so a foreign alg is
		// reported as a mismatch, not as a bad signature.
		if t.Method == nil || t.Method.Alg() != v.method.Alg() {
			return nil, fmt.Errorf("%w: got %v", ErrAlgMismatch, t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !token.Valid {
		return nil, ErrInvalidClaim
	}

	// exp must also be readable by Claims, which is what Issue and Refresh
	// rely on downstream.
	out := Claims(claims)
	if err := out.ValidateExpiry(v.now()); err != nil {
		return nil, err
	}

	return out, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrAlgMismatch):
		return err
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrAlgMismatch, err)
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", ErrInvalidSig, err)
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", ErrMissingExpiry, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpired, err)
	case errors.Is(err, jwt.ErrTokenNotValidYet), errors.Is(err, jwt.ErrTokenUsedBeforeIssued):
		return fmt.Errorf("%w: %v", ErrNotYetValid, err)
	default:
		return fmt.Errorf("%w: %v", ErrInvalidClaim, err)
	}
}
