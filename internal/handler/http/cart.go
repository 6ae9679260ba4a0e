package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/pricing"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
)

// --- Request DTOs ---

// SelectionRequest is the JSON request body for selecting or deselecting lines.
type SelectionRequest struct {
	Selected *bool `json:"selected" validate:"required"`
}

// QuantityRequest is the JSON request body for setting a line quantity.
// Quantities below 1 are ignored.
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

// ApplyVoucherRequest is the JSON request body for applying a voucher code.
type ApplyVoucherRequest struct {
	Code string `json:"code" validate:"notblank"`
}

// --- Response DTOs ---

// CartResponse is the cart as shown to the buyer.
type CartResponse struct {
	Items            []domain.CartLineItem     `json:"items"`
	AllSelected      bool                      `json:"all_selected"`
	Totals           domain.CartTotals         `json:"totals"`
	Voucher          *domain.AppliedVoucher    `json:"voucher,omitempty"`
	VoucherRejection *pricing.VoucherRejection `json:"voucher_rejection,omitempty"`
}

func newCartResponse(c *service.Cart) CartResponse {
	return CartResponse{
		Items:            c.Items(),
		AllSelected:      c.AllSelected(),
		Totals:           c.Totals(),
		Voucher:          c.AppliedVoucher(),
		VoucherRejection: c.LastVoucherRejection(),
	}
}

// ensureLoaded loads the cart on first use of a workspace.
func ensureLoaded(ctx context.Context, c *service.Cart) error {
	if c.Loaded() {
		return nil
	}
	return c.Load(ctx)
}

// cartAction loads the cart if needed, runs fn and answers with the cart.
func (h *StorefrontHandler) cartAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, c *service.Cart) error) {
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		if err := ensureLoaded(ctx, ws.Cart); err != nil {
			return nil, err
		}
		if err := fn(ctx, ws.Cart); err != nil {
			return nil, err
		}
		return newCartResponse(ws.Cart), nil
	})
}

// --- Handlers ---

// GetCart handles GET /api/v1/cart
func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(context.Context, *service.Cart) error { return nil })
}

// ReloadCart handles POST /api/v1/cart/reload
func (h *StorefrontHandler) ReloadCart(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.Reload(ctx)
	})
}

// SelectAll handles PUT /api/v1/cart/selection
func (h *StorefrontHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		c.SetSelectAll(ctx, *req.Selected)
		return nil
	})
}

// SelectItem handles PUT /api/v1/cart/items/{itemId}/selection
func (h *StorefrontHandler) SelectItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	var req SelectionRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.SetSelected(ctx, itemID, *req.Selected)
	})
}

// SetQuantity handles PUT /api/v1/cart/items/{itemId}/quantity
func (h *StorefrontHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	var req QuantityRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.SetQuantity(ctx, itemID, req.Quantity)
	})
}

// IncreaseQuantity handles POST /api/v1/cart/items/{itemId}/increase
func (h *StorefrontHandler) IncreaseQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.IncreaseQuantity(ctx, itemID)
	})
}

// DecreaseQuantity handles POST /api/v1/cart/items/{itemId}/decrease
func (h *StorefrontHandler) DecreaseQuantity(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.DecreaseQuantity(ctx, itemID)
	})
}

// RemoveItem handles DELETE /api/v1/cart/items/{itemId}
func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemId")
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.RemoveItem(ctx, itemID)
	})
}

// ListVouchers handles GET /api/v1/cart/vouchers
func (h *StorefrontHandler) ListVouchers(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		return ws.Cart.AvailableVouchers(ctx), nil
	})
}

// ApplyVoucher handles POST /api/v1/cart/voucher
func (h *StorefrontHandler) ApplyVoucher(w http.ResponseWriter, r *http.Request) {
	var req ApplyVoucherRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.ApplyVoucherCode(ctx, req.Code)
	})
}

// RemoveVoucher handles DELETE /api/v1/cart/voucher
func (h *StorefrontHandler) RemoveVoucher(w http.ResponseWriter, r *http.Request) {
	h.cartAction(w, r, func(ctx context.Context, c *service.Cart) error {
		return c.ApplyVoucher(ctx, nil)
	})
}

