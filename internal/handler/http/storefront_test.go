package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/middleware"
)

func TestServe_PanicReleasesWorkspace(t *testing.T) {
	api := newFakeAPI()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	h := NewStorefrontHandler(service.NewWorkspaces(service.Dependencies{
		Carts:           api,
		Vouchers:        api,
		Orders:          api,
		Dashboard:       api,
		Logger:          logger,
		DefaultSellerID: "1",
	}), logger)

	handlerFor := func(fn workspaceFunc) http.Handler {
		return middleware.Recovery(logger)(IdentityFromHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.serve(w, r, http.StatusOK, fn)
		})))
	}
	panics := handlerFor(func(context.Context, *service.Workspace) (any, error) {
		panic("cart exploded")
	})
	succeeds := handlerFor(func(context.Context, *service.Workspace) (any, error) {
		return "ok", nil
	})

	rec, _ := do(t, panics, http.MethodGet, "/", nil, buyerHeaders)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	done := make(chan int, 1)
	go func() {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		buyerHeaders(req)
		rec := httptest.NewRecorder()
		succeeds.ServeHTTP(rec, req)
		done <- rec.Code
	}()

	select {
	case code := <-done:
		assert.Equal(t, http.StatusOK, code)
	case <-time.After(2 * time.Second):
		t.Fatal("workspace still locked after a panicking request")
	}
}
