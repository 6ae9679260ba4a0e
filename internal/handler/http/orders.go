package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/httputil"
)

// --- Request DTOs ---

// RejectOrderRequest is the JSON request body for rejecting an order.
type RejectOrderRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

// ShipOrderRequest is the JSON request body for shipping an order.
type ShipOrderRequest struct {
	TrackingCode string `json:"tracking_code"`
}

// --- Response DTOs ---

// OrderListResponse is an order list with per-status counts.
type OrderListResponse struct {
	Orders []domain.Order             `json:"orders"`
	Counts map[domain.OrderStatus]int `json:"counts"`
}

func statusFilter(r *http.Request) (domain.OrderStatus, error) {
	status := strings.TrimSpace(r.URL.Query().Get("status"))
	if status == "" || status == "all" {
		return "", nil
	}
	if !domain.IsValidStatus(status) {
		return "", apperrors.InvalidInput("unknown order status " + status)
	}
	return domain.OrderStatus(status), nil
}

// --- Buyer Handlers ---

// ListBuyerOrders handles GET /api/v1/orders?status=
func (h *StorefrontHandler) ListBuyerOrders(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		if err := ws.Buyer.Refresh(ctx); err != nil {
			return nil, err
		}
		return OrderListResponse{
			Orders: ws.Buyer.Orders(status),
			Counts: ws.Buyer.CountByStatus(),
		}, nil
	})
}

// Reorder handles POST /api/v1/orders/{orderRef}/reorder
func (h *StorefrontHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	orderRef := chi.URLParam(r, "orderRef")
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		return ws.Reorder(ctx, orderRef)
	})
}

// --- Seller Handlers ---

// ListSellerOrders handles GET /api/v1/seller/orders?status=&q=
func (h *StorefrontHandler) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	status, err := statusFilter(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	query := r.URL.Query().Get("q")
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		if err := ws.Seller.Refresh(ctx); err != nil {
			return nil, err
		}
		return OrderListResponse{
			Orders: ws.Seller.Filter(service.OrderFilter{Query: query, Status: status}),
			Counts: ws.Seller.CountByStatus(),
		}, nil
	})
}

// transition runs fn for the seller and answers with the refreshed list.
func (h *StorefrontHandler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, l *service.OrderLifecycle, orderID string) error) {
	orderID := chi.URLParam(r, "orderId")
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		if err := fn(ctx, ws.Seller, orderID); err != nil {
			return nil, err
		}
		return OrderListResponse{
			Orders: ws.Seller.Orders(),
			Counts: ws.Seller.CountByStatus(),
		}, nil
	})
}

// AcceptOrder handles POST /api/v1/seller/orders/{orderId}/accept
func (h *StorefrontHandler) AcceptOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, l *service.OrderLifecycle, orderID string) error {
		return l.Accept(ctx, orderID)
	})
}

// RejectOrder handles POST /api/v1/seller/orders/{orderId}/reject
func (h *StorefrontHandler) RejectOrder(w http.ResponseWriter, r *http.Request) {
	var req RejectOrderRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
	}
	h.transition(w, r, func(ctx context.Context, l *service.OrderLifecycle, orderID string) error {
		return l.Reject(ctx, orderID, req.Reason)
	})
}

// ShipOrder handles POST /api/v1/seller/orders/{orderId}/ship
func (h *StorefrontHandler) ShipOrder(w http.ResponseWriter, r *http.Request) {
	var req ShipOrderRequest
	if err := decode(r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	h.transition(w, r, func(ctx context.Context, l *service.OrderLifecycle, orderID string) error {
		return l.Ship(ctx, orderID, req.TrackingCode)
	})
}

// CompleteOrder handles POST /api/v1/seller/orders/{orderId}/complete
func (h *StorefrontHandler) CompleteOrder(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, l *service.OrderLifecycle, orderID string) error {
		return l.Complete(ctx, orderID)
	})
}

// Dashboard handles GET /api/v1/seller/dashboard
func (h *StorefrontHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, http.StatusOK, func(ctx context.Context, ws *service.Workspace) (any, error) {
		return ws.Dashboard.Load(ctx)
	})
}
