// Package repository declares the remote stores the storefront engine talks
// to. Implementations live in subpackages.
package repository

import (
	"context"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
)

// CartStore is the buyer's server-side cart.
type CartStore interface {
	// GetCart returns the buyer's cart lines in server order.
	GetCart(ctx context.Context, buyerID string) ([]domain.CartLineItem, error)

	// UpdateQuantity sets the quantity of one cart line.
	UpdateQuantity(ctx context.Context, itemID string, quantity int) error

	// Remove deletes one cart line.
	Remove(ctx context.Context, itemID string) error

	// Add puts a product into the buyer's cart. The server merges it with an
	// existing line for the same product.
	Add(ctx context.Context, buyerID, productID string, quantity int) error
}

// VoucherStore reads seller-issued vouchers.
type VoucherStore interface {
	// List returns the vouchers of a seller with the given status.
	List(ctx context.Context, sellerID, status string) ([]domain.Voucher, error)

	// GetByCode looks up a single voucher by its code.
	GetByCode(ctx context.Context, code string) (*domain.Voucher, error)
}

// TransitionOptions carries the optional fields of a status change.
type TransitionOptions struct {
	Reason       string
	TrackingCode string
}

// OrderStore creates orders and changes their status.
type OrderStore interface {
	// Create submits an order and returns the server-assigned order number.
	// The number may be empty when the server omitted it.
	Create(ctx context.Context, placement *domain.OrderPlacement) (string, error)

	// ListBySeller returns the orders a seller has to fulfil.
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error)

	// ListByBuyer returns the orders a buyer has placed.
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error)

	// UpdateStatus asks the server to move an order to target.
	UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus, opts TransitionOptions) error
}

// DashboardStore reads the seller dashboard aggregate.
type DashboardStore interface {
	Stats(ctx context.Context, sellerID string) (*domain.DashboardStats, error)
}
