package service

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

func pastOrder() domain.Order {
	return domain.Order{
		ID:          "201",
		OrderNumber: "ORD-201",
		Status:      domain.OrderStatusDelivered,
		Items: []domain.OrderItem{
			{ProductID: "3", Name: "Apel Fuji", UnitPrice: 15000, Quantity: 2},
			{ProductID: "4", Name: "Jeruk Medan", UnitPrice: 10000, Quantity: 1},
			{ProductID: "5", Name: "Mangga Harum Manis", UnitPrice: 25000, Quantity: 3},
		},
		CreatedAt: baseTime,
	}
}

func TestReorder_AllLinesAdded(t *testing.T) {
	carts := new(mockCartStore)
	publisher := new(mockPublisher)
	b := NewBuyerOrders(new(mockOrderStore), carts, publisher, signedIn(buyerIdentity()), newTestLogger())
	carts.On("Add", mock.Anything, "7", "3", 2).Return(nil).Once()
	carts.On("Add", mock.Anything, "7", "4", 1).Return(nil).Once()
	carts.On("Add", mock.Anything, "7", "5", 3).Return(nil).Once()
	publisher.On("PublishCartReordered", mock.Anything, event.CartReorderedData{
		BuyerID: "7", OrderNumber: "ORD-201", Added: 3,
	}).Return(nil).Once()

	result, err := b.Reorder(context.Background(), pastOrder())

	require.NoError(t, err)
	assert.Equal(t, ReorderResult{Added: 3}, result)
	carts.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestReorder_AddsEveryLineConcurrently(t *testing.T) {
	order := pastOrder()
	for i := 6; i <= 10; i++ {
		order.Items = append(order.Items, domain.OrderItem{ProductID: strconv.Itoa(i), Quantity: 1})
	}
	lines := int32(len(order.Items))

	// Each call returns only once every line is in flight.
	var arrived, stalled atomic.Int32
	allInFlight := make(chan struct{})
	carts := new(mockCartStore)
	carts.On("Add", mock.Anything, "7", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		if arrived.Add(1) == lines {
			close(allInFlight)
		}
		select {
		case <-allInFlight:
		case <-time.After(2 * time.Second):
			stalled.Add(1)
		}
	}).Return(nil)
	publisher := new(mockPublisher)
	publisher.On("PublishCartReordered", mock.Anything, mock.Anything).Return(nil).Once()
	b := NewBuyerOrders(new(mockOrderStore), carts, publisher, signedIn(buyerIdentity()), newTestLogger())

	result, err := b.Reorder(context.Background(), order)

	require.NoError(t, err)
	assert.Equal(t, ReorderResult{Added: len(order.Items)}, result)
	assert.Zero(t, stalled.Load(), "add-to-cart calls were not all in flight together")
}

func TestReorder_PartialFailure(t *testing.T) {
	carts := new(mockCartStore)
	publisher := new(mockPublisher)
	b := NewBuyerOrders(new(mockOrderStore), carts, publisher, signedIn(buyerIdentity()), newTestLogger())
	carts.On("Add", mock.Anything, "7", "3", 2).Return(nil)
	carts.On("Add", mock.Anything, "7", "4", 1).Return(apperrors.RemoteRejected("Produk tidak tersedia", 400))
	carts.On("Add", mock.Anything, "7", "5", 3).Return(nil)
	publisher.On("PublishCartReordered", mock.Anything, mock.Anything).Return(nil).Once()

	result, err := b.Reorder(context.Background(), pastOrder())

	require.NoError(t, err)
	assert.Equal(t, ReorderResult{Added: 2, Failed: 1}, result)
	carts.AssertNumberOfCalls(t, "Add", 3)
}

func TestReorder_AllFailed(t *testing.T) {
	carts := new(mockCartStore)
	publisher := new(mockPublisher)
	b := NewBuyerOrders(new(mockOrderStore), carts, publisher, signedIn(buyerIdentity()), newTestLogger())
	carts.On("Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(apperrors.TransportFailed(errors.New("connection refused")))

	result, err := b.Reorder(context.Background(), pastOrder())

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrTransport))
	assert.Equal(t, ReorderResult{Failed: 3}, result)
	publisher.AssertNotCalled(t, "PublishCartReordered", mock.Anything, mock.Anything)
}

func TestReorder_EmptyOrder(t *testing.T) {
	carts := new(mockCartStore)
	b := NewBuyerOrders(new(mockOrderStore), carts, event.NoopPublisher{}, signedIn(buyerIdentity()), newTestLogger())

	_, err := b.Reorder(context.Background(), domain.Order{OrderNumber: "ORD-0"})

	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	carts.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuyerOrders_RefreshAndFilter(t *testing.T) {
	orders := new(mockOrderStore)
	b := NewBuyerOrders(orders, new(mockCartStore), event.NoopPublisher{}, signedIn(buyerIdentity()), newTestLogger())
	orders.On("ListByBuyer", mock.Anything, "7").Return([]domain.Order{
		{ID: "1", OrderNumber: "ORD-1", Status: domain.OrderStatusDelivered, CreatedAt: baseTime},
		{ID: "2", OrderNumber: "ORD-2", Status: domain.OrderStatusPending, CreatedAt: baseTime.Add(time.Hour)},
		{ID: "3", OrderNumber: "ORD-3", Status: domain.OrderStatusDelivered, CreatedAt: baseTime.Add(2 * time.Hour)},
	}, nil).Once()

	require.NoError(t, b.Refresh(context.Background()))

	all := b.Orders("")
	require.Len(t, all, 3)
	assert.Equal(t, "3", all[0].ID)

	delivered := b.Orders(domain.OrderStatusDelivered)
	require.Len(t, delivered, 2)
	assert.Equal(t, "3", delivered[0].ID)
	assert.Equal(t, 1, b.CountByStatus()[domain.OrderStatusPending])

	found, ok := b.Find("ORD-2")
	require.True(t, ok)
	assert.Equal(t, "2", found.ID)
	_, ok = b.Find("nope")
	assert.False(t, ok)
}

func TestBuyerOrders_RequiresSignIn(t *testing.T) {
	orders := new(mockOrderStore)
	sess := signedIn(buyerIdentity())
	sess.Clear()
	b := NewBuyerOrders(orders, new(mockCartStore), event.NoopPublisher{}, sess, newTestLogger())

	err := b.Refresh(context.Background())

	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}
