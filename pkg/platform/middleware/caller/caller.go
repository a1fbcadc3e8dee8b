// Package caller resolves the authenticated caller address for a request.
// The execution substrate in front of this service authenticates callers and
// forwards their account address in a trusted header; this middleware parses
// it into the request context so services never touch HTTP headers.
package caller

import (
	"log/slog"
	"net/http"

	"nameledger/pkg/platform/httputil"
	"nameledger/pkg/requestcontext"

	id "nameledger/pkg/domain"
	dErrors "nameledger/pkg/domain-errors"
)

const Header = "X-Caller-Address"

// Middleware parses the caller header when present. Endpoints that require a
// caller enforce presence themselves via Require.
func Middleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(Header)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			addr, err := id.ParseAddress(raw)
			if err != nil {
				logger.WarnContext(r.Context(), "caller header malformed",
					"request_id", requestcontext.RequestID(r.Context()),
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "caller address is malformed"))
				return
			}
			ctx := requestcontext.WithCaller(r.Context(), addr)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Require extracts the caller from context, failing with unauthorized when the
// request carried no caller header.
func Require(r *http.Request) (id.Address, error) {
	addr := requestcontext.Caller(r.Context())
	if addr.IsZero() {
		return id.ZeroAddress, dErrors.New(dErrors.CodeUnauthorized, "caller address required")
	}
	return addr, nil
}
