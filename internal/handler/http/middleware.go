package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/middleware"
)

type contextKey string

const identityKey contextKey = "identity"

// Identity headers injected by the gateway after it authenticated the user.
const (
	headerUserRole    = "X-User-Role"
	headerUserName    = "X-User-Name"
	headerUserEmail   = "X-User-Email"
	headerUserPhone   = "X-User-Phone"
	headerUserAddress = "X-User-Address"
)

// IdentityFromHeaders reads the authenticated identity from the gateway
// headers and stores it in the request context. Requests without X-User-ID
// are rejected with 401.
func IdentityFromHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid := strings.TrimSpace(r.Header.Get(middleware.UserIDHeader))
		if uid == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), nil)
			return
		}
		identity := domain.Identity{
			UserID:  uid,
			Name:    r.Header.Get(headerUserName),
			Email:   r.Header.Get(headerUserEmail),
			Phone:   r.Header.Get(headerUserPhone),
			Address: r.Header.Get(headerUserAddress),
			Role:    domain.ParseRole(strings.ToLower(strings.TrimSpace(r.Header.Get(headerUserRole)))),
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func identityFromContext(ctx context.Context) (domain.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(domain.Identity)
	return identity, ok && identity.UserID != ""
}

// ContentTypeJSON rejects request bodies that are not JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 || r.Method == http.MethodPost || r.Method == http.MethodPut {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Message: "Content-Type must be application/json",
					Error:   &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
