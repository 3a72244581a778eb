package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
)

// fingerprintLen is the number of hex characters kept by Fingerprint.
const fingerprintLen = 16

// Fingerprint shortens a secret to a stable, non-reversible label that can go
// into logs in its place. Empty input yields "".
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])[:fingerprintLen]
}
