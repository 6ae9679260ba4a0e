package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
)

// Recovery turns a panic into a 500 failure envelope.
func Recovery(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					l.ErrorContext(r.Context(), "panic recovered",
						slog.Any("panic", rec),
						slog.String("stack", string(debug.Stack())),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
					httputil.WriteJSON(w, http.StatusInternalServerError, httputil.Response{
						Message: apperrors.GenericFailureMessage,
						Error:   &httputil.ErrorResponse{Code: "INTERNAL_ERROR"},
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
