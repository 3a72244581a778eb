package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiongate/internal/auth/service"
	"github.com/aussiebroadwan/sessiongate/pkg/authsdk"
	"github.com/aussiebroadwan/sessiongate/pkg/slogx"
)

// writeServiceError maps service sentinels onto API errors. ErrMissingField
// is checked first since it also matches ErrNotFound.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrMissingField):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrNotFound):
		authsdk.ErrNotFound.WriteError(w)
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidGrant.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
