// Package event publishes storefront domain events.
package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	pkgkafka "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/kafka"
)

// Kafka topics for storefront events.
var (
	TopicOrderPlaced        = pkgkafka.Topic("order", "placed")
	TopicOrderStatusChanged = pkgkafka.Topic("order", "status_changed")
	TopicCartReordered      = pkgkafka.Topic("cart", "reordered")
)

// Aggregate types.
const (
	AggregateTypeOrder = "order"
	AggregateTypeCart  = "cart"
)

// SourceStorefront identifies events from this service.
const SourceStorefront = "storefront"

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderNumber   string             `json:"order_number"`
	BuyerID       string             `json:"buyer_id"`
	SellerID      string             `json:"seller_id"`
	PaymentMethod string             `json:"payment_method"`
	VoucherCode   string             `json:"voucher_code,omitempty"`
	TotalAmount   int64              `json:"total_amount"`
	Items         []domain.OrderItem `json:"items"`
}

// OrderStatusChangedData is the payload for an order.status_changed event.
type OrderStatusChangedData struct {
	OrderID      string `json:"order_id"`
	OrderNumber  string `json:"order_number"`
	OldStatus    string `json:"old_status"`
	NewStatus    string `json:"new_status"`
	Reason       string `json:"reason,omitempty"`
	TrackingCode string `json:"tracking_code,omitempty"`
}

// CartReorderedData is the payload for a cart.reordered event.
type CartReorderedData struct {
	BuyerID     string `json:"buyer_id"`
	OrderNumber string `json:"order_number"`
	Added       int    `json:"added"`
	Failed      int    `json:"failed"`
}

// Publisher emits storefront events after a successful remote operation.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, data OrderPlacedData) error
	PublishOrderStatusChanged(ctx context.Context, data OrderStatusChangedData) error
	PublishCartReordered(ctx context.Context, data CartReorderedData) error
}

// sink is the part of *pkgkafka.Producer the publisher needs.
type sink interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka  sink
	logger *slog.Logger
}

// NewProducer creates a Kafka-backed publisher.
func NewProducer(kafka sink, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, data OrderPlacedData) error {
	return p.publish(ctx, TopicOrderPlaced, data.OrderNumber, AggregateTypeOrder, data)
}

// PublishOrderStatusChanged publishes an order.status_changed event.
func (p *Producer) PublishOrderStatusChanged(ctx context.Context, data OrderStatusChangedData) error {
	return p.publish(ctx, TopicOrderStatusChanged, data.OrderID, AggregateTypeOrder, data)
}

// PublishCartReordered publishes a cart.reordered event.
func (p *Producer) PublishCartReordered(ctx context.Context, data CartReorderedData) error {
	return p.publish(ctx, TopicCartReordered, data.BuyerID, AggregateTypeCart, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEventFromContext(ctx, topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}

// NoopPublisher drops every event. It is used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishOrderPlaced(context.Context, OrderPlacedData) error { return nil }

func (NoopPublisher) PublishOrderStatusChanged(context.Context, OrderStatusChangedData) error {
	return nil
}

func (NoopPublisher) PublishCartReordered(context.Context, CartReorderedData) error { return nil }

var (
	_ Publisher = (*Producer)(nil)
	_ Publisher = NoopPublisher{}
)
