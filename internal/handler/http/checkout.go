package http

import (
	"context"
	"net/http"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
)

// --- Request DTOs ---

// ShippingAddressRequest is the JSON request body for the shipping address.
// Its length is checked when leaving the address step.
type ShippingAddressRequest struct {
	Address string `json:"address"`
}

// PaymentMethodRequest is the JSON request body for choosing a payment method.
type PaymentMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=cod transfer ewallet"`
}

// NotesRequest is the JSON request body for order notes.
type NotesRequest struct {
	Notes string `json:"notes" validate:"max=500"`
}

// checkoutAction runs fn on the open wizard and answers with its view.
func (h *StorefrontHandler) checkoutAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, wizard *service.CheckoutWizard) error) {
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		wizard, err := ws.Checkout()
		if err != nil {
			return nil, err
		}
		if err := fn(ctx, wizard); err != nil {
			return nil, err
		}
		return wizard.View(), nil
	})
}

// BeginCheckout handles POST /api/v1/checkout
func (h *StorefrontHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusCreated, func(ctx context.Context, ws *service.Workspace) (any, error) {
		if err := ensureLoaded(ctx, ws.Cart); err != nil {
			return nil, err
		}
		wizard, err := ws.BeginCheckout()
		if err != nil {
			return nil, err
		}
		return wizard.View(), nil
	})
}

// GetCheckout handles GET /api/v1/checkout
func (h *StorefrontHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	h.checkoutAction(w, r, func(context.Context, *service.CheckoutWizard) error { return nil })
}

// SetShippingAddress handles PUT /api/v1/checkout/address
func (h *StorefrontHandler) SetShippingAddress(w http.ResponseWriter, r *http.Request) {
	var req ShippingAddressRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.checkoutAction(w, r, func(_ context.Context, wizard *service.CheckoutWizard) error {
		return wizard.SetShippingAddress(req.Address)
	})
}

// SetPaymentMethod handles PUT /api/v1/checkout/payment
func (h *StorefrontHandler) SetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req PaymentMethodRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.checkoutAction(w, r, func(_ context.Context, wizard *service.CheckoutWizard) error {
		return wizard.SetPaymentMethod(domain.PaymentMethod(req.Method))
	})
}

// SetNotes handles PUT /api/v1/checkout/notes
func (h *StorefrontHandler) SetNotes(w http.ResponseWriter, r *http.Request) {
	var req NotesRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.checkoutAction(w, r, func(_ context.Context, wizard *service.CheckoutWizard) error {
		return wizard.SetNotes(req.Notes)
	})
}

// NextStep handles POST /api/v1/checkout/next. From the confirmation step it
// places the order.
func (h *StorefrontHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	h.checkoutAction(w, r, func(ctx context.Context, wizard *service.CheckoutWizard) error {
		return wizard.Next(ctx)
	})
}

// PreviousStep handles POST /api/v1/checkout/previous
func (h *StorefrontHandler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	h.checkoutAction(w, r, func(_ context.Context, wizard *service.CheckoutWizard) error {
		return wizard.Previous()
	})
}

// DismissCheckout handles DELETE /api/v1/checkout
func (h *StorefrontHandler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		return ws.DismissCheckout(ctx)
	})
}
