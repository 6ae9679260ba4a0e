package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// OrderLifecycle lets a seller move their orders through fulfilment. The
// remote API decides every transition: nothing is changed locally until the
// order list has been re-fetched.
type OrderLifecycle struct {
	orders    repository.OrderStore
	publisher event.Publisher
	session   *session.Session
	logger    *slog.Logger

	list []domain.Order
}

// NewOrderLifecycle creates a seller order lifecycle bound to sess.
func NewOrderLifecycle(orders repository.OrderStore, publisher event.Publisher, sess *session.Session, logger *slog.Logger) *OrderLifecycle {
	return &OrderLifecycle{
		orders:    orders,
		publisher: publisher,
		session:   sess,
		logger:    logger,
	}
}

func (l *OrderLifecycle) seller() (domain.Identity, error) {
	identity, ok := l.session.Current()
	if !ok {
		return domain.Identity{}, apperrors.Unauthorized("sign in to manage orders")
	}
	if !identity.IsSeller() {
		return domain.Identity{}, apperrors.Forbidden("only sellers can manage orders")
	}
	return identity, nil
}

// Refresh re-fetches the seller's orders. On failure the previous list is kept.
func (l *OrderLifecycle) Refresh(ctx context.Context) error {
	identity, err := l.seller()
	if err != nil {
		return err
	}

	orders, err := l.orders.ListBySeller(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("refresh seller orders: %w", err)
	}
	sortNewestFirst(orders)
	l.list = orders
	return nil
}

// Orders returns a copy of the last fetched list, newest first.
func (l *OrderLifecycle) Orders() []domain.Order {
	out := make([]domain.Order, len(l.list))
	copy(out, l.list)
	return out
}

// OrderFilter narrows the seller's order list.
type OrderFilter struct {
	// Query matches order number, customer name or phone, case-insensitively.
	Query string
	// Status keeps only orders in this status. Empty keeps all.
	Status domain.OrderStatus
}

// Filter returns the orders matching f.
func (l *OrderLifecycle) Filter(f OrderFilter) []domain.Order {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]domain.Order, 0, len(l.list))
	for _, o := range l.list {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(o.OrderNumber), query) &&
			!strings.Contains(strings.ToLower(o.CustomerName), query) &&
			!strings.Contains(o.CustomerPhone, query) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// CountByStatus counts the fetched orders per status.
func (l *OrderLifecycle) CountByStatus() map[domain.OrderStatus]int {
	return countByStatus(l.list)
}

// Accept moves a pending order to processing.
func (l *OrderLifecycle) Accept(ctx context.Context, orderID string) error {
	return l.Transition(ctx, orderID, domain.OrderStatusProcessing, repository.TransitionOptions{})
}

// Reject cancels a pending order. The reason is optional.
func (l *OrderLifecycle) Reject(ctx context.Context, orderID, reason string) error {
	return l.Transition(ctx, orderID, domain.OrderStatusCancelled, repository.TransitionOptions{
		Reason: strings.TrimSpace(reason),
	})
}

// Ship marks a processing order as shipped with a courier tracking code.
func (l *OrderLifecycle) Ship(ctx context.Context, orderID, trackingCode string) error {
	return l.Transition(ctx, orderID, domain.OrderStatusShipped, repository.TransitionOptions{
		TrackingCode: strings.TrimSpace(trackingCode),
	})
}

// Complete marks a shipped order as delivered.
func (l *OrderLifecycle) Complete(ctx context.Context, orderID string) error {
	return l.Transition(ctx, orderID, domain.OrderStatusDelivered, repository.TransitionOptions{})
}

// Transition asks the remote API to move an order to target. Illegal
// transitions and a blank tracking code are refused without a remote call.
// An order missing from the list triggers one refresh before giving up.
// After the remote accepts, the list is re-fetched.
func (l *OrderLifecycle) Transition(ctx context.Context, orderID string, target domain.OrderStatus, opts repository.TransitionOptions) error {
	if _, err := l.seller(); err != nil {
		return err
	}

	order := l.find(orderID)
	if order == nil {
		if err := l.Refresh(ctx); err != nil {
			return err
		}
		if order = l.find(orderID); order == nil {
			return apperrors.NotFound("order", orderID)
		}
	}
	from := order.Status

	if err := validateTransition(order, target, opts); err != nil {
		orderTransitionsTotal.WithLabelValues(string(target), resultRejected).Inc()
		return err
	}

	err := l.orders.UpdateStatus(ctx, orderID, target, opts)
	orderTransitionsTotal.WithLabelValues(string(target), resultLabel(err)).Inc()
	if err != nil {
		l.logger.WarnContext(ctx, "order transition failed",
			slog.String("order_id", orderID),
			slog.String("from", string(from)),
			slog.String("to", string(target)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("move order %s to %s: %w", orderID, target, err)
	}

	l.logger.InfoContext(ctx, "order status changed",
		slog.String("order_id", orderID),
		slog.String("from", string(from)),
		slog.String("to", string(target)),
	)

	if err := l.publisher.PublishOrderStatusChanged(ctx, event.OrderStatusChangedData{
		OrderID:      orderID,
		OrderNumber:  order.OrderNumber,
		OldStatus:    string(from),
		NewStatus:    string(target),
		Reason:       opts.Reason,
		TrackingCode: opts.TrackingCode,
	}); err != nil {
		l.logger.ErrorContext(ctx, "failed to publish order status changed event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	if err := l.Refresh(ctx); err != nil {
		l.logger.WarnContext(ctx, "order list refresh after transition failed",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}
	return nil
}

func (l *OrderLifecycle) find(orderID string) *domain.Order {
	for i := range l.list {
		if l.list[i].ID == orderID {
			return &l.list[i]
		}
	}
	return nil
}

func validateTransition(order *domain.Order, target domain.OrderStatus, opts repository.TransitionOptions) error {
	if order.Status.IsTerminal() {
		return apperrors.Validation(fmt.Sprintf("order is already %s", order.Status))
	}
	if !order.CanTransitionTo(target) {
		return apperrors.Validation(fmt.Sprintf("cannot change order from %s to %s", order.Status, target))
	}
	if target == domain.OrderStatusShipped && strings.TrimSpace(opts.TrackingCode) == "" {
		return apperrors.Validation("tracking code is required to ship an order")
	}
	return nil
}

func countByStatus(orders []domain.Order) map[domain.OrderStatus]int {
	counts := make(map[domain.OrderStatus]int, len(domain.ValidStatuses()))
	for _, s := range domain.ValidStatuses() {
		counts[s] = 0
	}
	for _, o := range orders {
		counts[o.Status]++
	}
	return counts
}

func sortNewestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
