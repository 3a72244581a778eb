package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiongate/pkg/cryptox"
	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// UnauthorizedMessage is the fixed body of every rejected request. Other
// services match on it, so it must not change.
const UnauthorizedMessage = "Authorization error"

const bearerPrefix = "Bearer "

// Authenticator resolves the caller's claims from request headers.
type Authenticator interface {
	Authenticate(h http.Header) (jwtx.Claims, error)
}

// BearerToken extracts the token from an Authorization header value. It
// returns the text after the last "Bearer " or, when the prefix is absent,
// the whole value.
func BearerToken(header string) string {
	if i := strings.LastIndex(header, bearerPrefix); i >= 0 {
		return header[i+len(bearerPrefix):]
	}
	return header
}

// RequireAuth rejects the request with 401 unless a authenticates it. The
// wrapped handler only runs after a successful check, with the decoded
// claims available through ClaimsFromContext.
func RequireAuth(a Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			claims, err := a.Authenticate(r.Header)
			if err != nil {
				slogx.FromContext(ctx).Debug("request rejected",
					"err", err,
					"token_fp", fingerprintHeader(r.Header.Get("Authorization")),
				)
				WriteUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(ctx, claims)))
		})
	}
}

// WriteUnauthorized aborts with 401 and the fixed UnauthorizedMessage body.
func WriteUnauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	NoCache(w)
	http.Error(w, UnauthorizedMessage, http.StatusUnauthorized)
}

func fingerprintHeader(v string) string {
	if v == "" {
		return ""
	}
	return cryptox.Fingerprint(BearerToken(v))
}
