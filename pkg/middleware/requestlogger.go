package middleware

import (
	"log/slog"
	"net/http"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/logger"
)

// Identity headers set by the gateway in front of the storefront.
const (
	UserIDHeader    = "X-User-ID"
	SessionIDHeader = "X-Session-ID"
)

// RequestLogger stores a request-scoped logger enriched with correlation_id,
// user_id, session_id, trace_id and span_id in the context. Mount it after
// RequestLogging and Tracing.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if id := r.Header.Get(UserIDHeader); id != "" {
				ctx = logger.WithUserID(ctx, id)
			}
			if id := r.Header.Get(SessionIDHeader); id != "" {
				ctx = logger.WithSessionID(ctx, id)
			}

			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
