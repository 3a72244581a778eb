package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// DigestLength is the PBKDF2 output size, equal to the SHA-256 digest size.
const DigestLength = sha256.Size

var (
	ErrInvalidDigest    = errors.New("cryptox: invalid password digest")
	ErrPasswordMismatch = errors.New("cryptox: password does not match")
)

// PasswordHasher derives PBKDF2-HMAC-SHA256 password digests with a fixed,
// process-wide salt and iteration count. It holds no mutable state and is
// safe for concurrent use.
type PasswordHasher struct {
	salt       []byte
	iterations int
}

// NewPasswordHasher validates the KDF parameters. A missing salt or a
// non-positive iteration count is a configuration error.
func NewPasswordHasher(salt []byte, iterations int) (*PasswordHasher, error) {
	if len(salt) == 0 {
		return nil, errors.New("cryptox: password salt must not be empty")
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("cryptox: iterations must be positive, got %d", iterations)
	}

	s := make([]byte, len(salt))
	copy(s, salt)
	return &PasswordHasher{salt: s, iterations: iterations}, nil
}

// Digest returns the base64 (standard, padded) encoding of the PBKDF2 key for
// the UTF-8 bytes of password. The result is deterministic for a given hasher.
func (h *PasswordHasher) Digest(password string) string {
	return base64.StdEncoding.EncodeToString(h.derive(password))
}

// Verify recomputes the digest of candidate and compares it with the stored
// digest in constant time. The candidate is always derived, even when the
// stored digest cannot be decoded, so both failure paths cost the same.
func (h *PasswordHasher) Verify(digest, candidate string) error {
	computed := h.derive(candidate)

	expected, decodeErr := base64.StdEncoding.DecodeString(digest)
	if decodeErr != nil {
		expected = make([]byte, DigestLength)
	}

	match := subtle.ConstantTimeCompare(computed, expected) == 1
	switch {
	case decodeErr != nil:
		return fmt.Errorf("%w: %v", ErrInvalidDigest, decodeErr)
	case !match:
		return ErrPasswordMismatch
	default:
		return nil
	}
}

// Compare reports whether candidate matches digest. Any failure, including a
// corrupted digest, reports false.
func (h *PasswordHasher) Compare(digest, candidate string) bool {
	return h.Verify(digest, candidate) == nil
}

func (h *PasswordHasher) derive(password string) []byte {
	return pbkdf2.Key([]byte(password), h.salt, h.iterations, DigestLength, sha256.New)
}
