package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// ReorderResult counts the order lines that made it back into the cart.
type ReorderResult struct {
	Added  int `json:"added"`
	Failed int `json:"failed"`
}

// BuyerOrders is the buyer's order history.
type BuyerOrders struct {
	orders    repository.OrderStore
	cart      repository.CartStore
	publisher event.Publisher
	session   *session.Session
	logger    *slog.Logger

	list []domain.Order
}

// NewBuyerOrders creates the order history for the buyer signed in to sess.
func NewBuyerOrders(orders repository.OrderStore, cart repository.CartStore, publisher event.Publisher, sess *session.Session, logger *slog.Logger) *BuyerOrders {
	return &BuyerOrders{
		orders:    orders,
		cart:      cart,
		publisher: publisher,
		session:   sess,
		logger:    logger,
	}
}

func (b *BuyerOrders) buyer() (domain.Identity, error) {
	identity, ok := b.session.Current()
	if !ok {
		return domain.Identity{}, apperrors.Unauthorized("sign in to view your orders")
	}
	return identity, nil
}

// Refresh re-fetches the buyer's orders. On failure the previous list is kept.
func (b *BuyerOrders) Refresh(ctx context.Context) error {
	identity, err := b.buyer()
	if err != nil {
		return err
	}

	orders, err := b.orders.ListByBuyer(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("refresh buyer orders: %w", err)
	}
	sortNewestFirst(orders)
	b.list = orders
	return nil
}

// Orders returns the fetched orders in status, newest first. An empty status
// returns every order.
func (b *BuyerOrders) Orders(status domain.OrderStatus) []domain.Order {
	out := make([]domain.Order, 0, len(b.list))
	for _, o := range b.list {
		if status == "" || o.Status == status {
			out = append(out, o)
		}
	}
	return out
}

// CountByStatus counts the fetched orders per status.
func (b *BuyerOrders) CountByStatus() map[domain.OrderStatus]int {
	return countByStatus(b.list)
}

// Find returns a fetched order by id or order number.
func (b *BuyerOrders) Find(ref string) (domain.Order, bool) {
	for _, o := range b.list {
		if o.ID == ref || o.OrderNumber == ref {
			return o, true
		}
	}
	return domain.Order{}, false
}

// Reorder adds every line of order back to the cart at once, one call per
// line. Lines fail
// independently. It returns an error only when nothing could be added.
func (b *BuyerOrders) Reorder(ctx context.Context, order domain.Order) (ReorderResult, error) {
	identity, err := b.buyer()
	if err != nil {
		return ReorderResult{}, err
	}
	if len(order.Items) == 0 {
		return ReorderResult{}, apperrors.Validation("order has no items to reorder")
	}

	var added, failed atomic.Int64
	var firstErr error
	var once sync.Once

	g := new(errgroup.Group)
	for _, item := range order.Items {
		g.Go(func() error {
			if err := b.cart.Add(ctx, identity.UserID, item.ProductID, item.Quantity); err != nil {
				failed.Add(1)
				reorderLinesTotal.WithLabelValues(resultFailed).Inc()
				once.Do(func() { firstErr = err })
				b.logger.WarnContext(ctx, "reorder line failed",
					slog.String("order_number", order.OrderNumber),
					slog.String("product_id", item.ProductID),
					slog.String("error", err.Error()),
				)
				return nil
			}
			added.Add(1)
			reorderLinesTotal.WithLabelValues(resultSuccess).Inc()
			return nil
		})
	}
	_ = g.Wait()

	result := ReorderResult{Added: int(added.Load()), Failed: int(failed.Load())}

	b.logger.InfoContext(ctx, "reorder finished",
		slog.String("order_number", order.OrderNumber),
		slog.Int("added", result.Added),
		slog.Int("failed", result.Failed),
	)

	if result.Added == 0 {
		return result, fmt.Errorf("reorder %s: no items added: %w", order.OrderNumber, firstErr)
	}

	if err := b.publisher.PublishCartReordered(ctx, event.CartReorderedData{
		BuyerID:     identity.UserID,
		OrderNumber: order.OrderNumber,
		Added:       result.Added,
		Failed:      result.Failed,
	}); err != nil {
		b.logger.ErrorContext(ctx, "failed to publish cart reordered event",
			slog.String("order_number", order.OrderNumber),
			slog.String("error", err.Error()),
		)
	}

	return result, nil
}
