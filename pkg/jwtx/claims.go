package jwtx

import (
	"encoding/json"
	"maps"
	"math"
	"time"
)

// Token lifetimes. The access token is meant for individual requests and the
// refresh token is exchanged for a new pair without re-entering a password.
const (
	AccessTokenTTL  = 30 * time.Minute
	RefreshTokenTTL = 130 * 24 * time.Hour
)

// ClaimExpiry is the reserved expiry claim, in Unix seconds (UTC).
const ClaimExpiry = "exp"

// Claims is a free-form claims bundle. Values must be JSON serialisable.
// Verified claims carry numbers as json.Number.
type Claims map[string]any

// Clone returns a shallow copy so callers can set exp without touching the
// original bundle.
func (c Claims) Clone() Claims {
	if c == nil {
		return Claims{}
	}
	return maps.Clone(c)
}

// SetExpiry overwrites the exp claim with t as integer Unix seconds.
func (c Claims) SetExpiry(t time.Time) {
	c[ClaimExpiry] = t.UTC().Unix()
}

// ExpiresAt returns the exp claim. The bool is false when exp is missing or
// not a number.
func (c Claims) ExpiresAt() (time.Time, bool) {
	var secs int64
	switch v := c[ClaimExpiry].(type) {
	case int64:
		secs = v
	case int:
		secs = int64(v)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return time.Time{}, false
		}
		secs = int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, ferr := v.Float64()
			if ferr != nil {
				return time.Time{}, false
			}
			n = int64(f)
		}
		secs = n
	default:
		return time.Time{}, false
	}
	return time.Unix(secs, 0).UTC(), true
}

// String returns the claim under key if it is a string, otherwise "".
func (c Claims) String(key string) string {
	s, _ := c[key].(string)
	return s
}

// ValidateExpiry ensures the bundle carries an exp later than now. A token
// is already expired at the second named by exp.
func (c Claims) ValidateExpiry(now time.Time) error {
	exp, ok := c.ExpiresAt()
	if !ok {
		return ErrMissingExpiry
	}
	if !now.Before(exp) {
		return ErrExpired
	}
	return nil
}
