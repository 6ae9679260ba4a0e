package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/validator"
)

// StorefrontHandler handles HTTP requests for the storefront endpoints. Every
// request runs against the caller's workspace while holding its lock.
type StorefrontHandler struct {
	workspaces *service.Workspaces
	logger     *slog.Logger
}

// NewStorefrontHandler creates a new storefront HTTP handler.
func NewStorefrontHandler(workspaces *service.Workspaces, logger *slog.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		workspaces: workspaces,
		logger:     logger,
	}
}

type workspaceFunc func(ctx context.Context, ws *service.Workspace) (any, error)

// serve runs fn on the caller's workspace and writes its result with status.
func (h *StorefrontHandler) serve(w http.ResponseWriter, r *http.Request, status int, fn workspaceFunc) {
	identity, ok := identityFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	data, err := h.run(r.Context(), identity, fn)

	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, status, data)
}

// run holds the workspace lock only for fn, and releases it even when fn
// panics.
func (h *StorefrontHandler) run(ctx context.Context, identity domain.Identity, fn workspaceFunc) (any, error) {
	ws := h.workspaces.Acquire(identity)
	defer ws.Unlock()
	return fn(ctx, ws)
}

// decode reads and validates a JSON body. Malformed JSON becomes an
// invalid-input error.
func decode(r *http.Request, dst any) error {
	err := validator.DecodeAndValidate(r, dst)
	if err == nil {
		return nil
	}
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return err
	}
	return apperrors.InvalidInput("invalid request body")
}
