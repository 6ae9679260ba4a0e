package domain

import "time"

// OrderStatus is a fulfilment state of an order.
type OrderStatus string

// Order status constants.
const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a server-owned order record. Only Status and TrackingCode change
// after creation, and only through the seller lifecycle.
type Order struct {
	ID              string        `json:"id"`
	OrderNumber     string        `json:"order_number"`
	BuyerID         string        `json:"buyer_id"`
	SellerID        string        `json:"seller_id"`
	CustomerName    string        `json:"customer_name,omitempty"`
	CustomerPhone   string        `json:"customer_phone,omitempty"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     int64         `json:"total_amount"`
	Status          OrderStatus   `json:"status"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Notes           string        `json:"notes,omitempty"`
	TrackingCode    string        `json:"tracking_code,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// OrderItem is a snapshot of a purchased line, decoupled from the live cart.
type OrderItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	UnitPrice int64  `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

// ValidStatuses returns all order statuses in lifecycle order.
func ValidStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusPending,
		OrderStatusProcessing,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if string(s) == status {
			return true
		}
	}
	return false
}

// AllowedTransitions defines the legal status transitions. A status never
// transitions to itself.
func AllowedTransitions() map[OrderStatus][]OrderStatus {
	return map[OrderStatus][]OrderStatus{
		OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
		OrderStatusProcessing: {OrderStatusShipped},
		OrderStatusShipped:    {OrderStatusDelivered},
		OrderStatusDelivered:  {},
		OrderStatusCancelled:  {},
	}
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(AllowedTransitions()[s]) == 0
}

// CanTransition reports whether from may move to target.
func CanTransition(from, target OrderStatus) bool {
	for _, s := range AllowedTransitions()[from] {
		if s == target {
			return true
		}
	}
	return false
}

// CanTransitionTo checks if the order can transition to the target status.
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	return CanTransition(o.Status, target)
}
