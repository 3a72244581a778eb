package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer is our interface for anything that can sign JWTs.
type Signer interface {
	Alg() string
	Sign(Claims) (string, error)
}

// HMACSigner signs claims with a shared secret using HS256, HS384 or HS512.
type HMACSigner struct {
	method *jwt.SigningMethodHMAC
	key    []byte
}

// NewHMACSigner creates a signer for the named algorithm.
func NewHMACSigner(alg string, key []byte) (*HMACSigner, error) {
	method, err := hmacMethod(alg)
	if err != nil {
		return nil, err
	}
	if len(key) == 0 {
		return nil, errors.New("jwtx: empty signing key")
	}

	return &HMACSigner{method: method, key: key}, nil
}

func (s *HMACSigner) Alg() string { return s.method.Alg() }

// Sign takes your claims and turns them into a signed JWT string. The whole
// map is signed as it is at the moment of the call.
func (s *HMACSigner) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, jwt.MapClaims(claims))
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// hmacMethod resolves alg to one of the HMAC signing methods. Anything else,
// including "none" and the asymmetric families, is refused since the key is a
// shared secret.
func hmacMethod(alg string) (*jwt.SigningMethodHMAC, error) {
	method, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
	return method, nil
}
