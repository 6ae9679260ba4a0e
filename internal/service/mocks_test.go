package service

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
)

// --- Mock Stores ---

type mockCartStore struct {
	mock.Mock
}

func (m *mockCartStore) GetCart(ctx context.Context, buyerID string) ([]domain.CartLineItem, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a fresh copy so the cart never aliases test fixtures.
	items := args.Get(0).([]domain.CartLineItem)
	out := make([]domain.CartLineItem, len(items))
	copy(out, items)
	return out, args.Error(1)
}

func (m *mockCartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	return m.Called(ctx, itemID, quantity).Error(0)
}

func (m *mockCartStore) Remove(ctx context.Context, itemID string) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *mockCartStore) Add(ctx context.Context, buyerID, productID string, quantity int) error {
	return m.Called(ctx, buyerID, productID, quantity).Error(0)
}

type mockVoucherStore struct {
	mock.Mock
}

func (m *mockVoucherStore) List(ctx context.Context, sellerID, status string) ([]domain.Voucher, error) {
	args := m.Called(ctx, sellerID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Voucher), args.Error(1)
}

func (m *mockVoucherStore) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Voucher), args.Error(1)
}

type mockOrderStore struct {
	mock.Mock
}

func (m *mockOrderStore) Create(ctx context.Context, placement *domain.OrderPlacement) (string, error) {
	args := m.Called(ctx, placement)
	return args.String(0), args.Error(1)
}

func (m *mockOrderStore) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	orders := args.Get(0).([]domain.Order)
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out, args.Error(1)
}

func (m *mockOrderStore) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	orders := args.Get(0).([]domain.Order)
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out, args.Error(1)
}

func (m *mockOrderStore) UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus, opts repository.TransitionOptions) error {
	return m.Called(ctx, orderID, target, opts).Error(0)
}

type mockDashboardStore struct {
	mock.Mock
}

func (m *mockDashboardStore) Stats(ctx context.Context, sellerID string) (*domain.DashboardStats, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardStats), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishOrderPlaced(ctx context.Context, data event.OrderPlacedData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockPublisher) PublishOrderStatusChanged(ctx context.Context, data event.OrderStatusChangedData) error {
	return m.Called(ctx, data).Error(0)
}

func (m *mockPublisher) PublishCartReordered(ctx context.Context, data event.CartReorderedData) error {
	return m.Called(ctx, data).Error(0)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func buyerIdentity() domain.Identity {
	return domain.Identity{
		UserID:  "7",
		Name:    "Budi Santoso",
		Email:   "budi@example.com",
		Phone:   "08123456789",
		Address: "Jl. Merdeka No. 123",
		Role:    domain.RoleBuyer,
	}
}

func sellerIdentity() domain.Identity {
	return domain.Identity{UserID: "1", Name: "Toko Buah Segar", Role: domain.RoleSeller}
}

func signedIn(identity domain.Identity) *session.Session {
	s := session.New()
	s.SetIdentity(identity)
	return s
}

func int64Ptr(v int64) *int64 { return &v }
