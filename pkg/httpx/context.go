package httpx

import (
	"context"

	"github.com/aussiebroadwan/sessiongate/pkg/jwtx"
)

type ctxKey string

const CtxKeyClaims ctxKey = "claims"

func contextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, CtxKeyClaims, c)
}

// ClaimsFromContext returns the claims RequireAuth attached to the request.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return c, ok
}
