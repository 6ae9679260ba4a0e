package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/validator"
)

type orderItemDTO struct {
	ProductID   flexString `json:"product_id"`
	ProductName string     `json:"product_name"`
	Name        string     `json:"name"`
	Image       string     `json:"image"`
	Price       flexInt64  `json:"price" validate:"gte=0"`
	Quantity    flexInt64  `json:"quantity" validate:"gte=1"`
}

func (d orderItemDTO) toDomain() domain.OrderItem {
	name := d.ProductName
	if name == "" {
		name = d.Name
	}
	return domain.OrderItem{
		ProductID: string(d.ProductID),
		Name:      name,
		Image:     d.Image,
		UnitPrice: int64(d.Price),
		Quantity:  int(d.Quantity),
	}
}

// orderItems accepts an items array or the same array encoded as a JSON string.
type orderItems []orderItemDTO

func (o *orderItems) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, jsonNull) {
		*o = nil
		return nil
	}
	if b[0] == '"' {
		var encoded string
		if err := json.Unmarshal(b, &encoded); err != nil {
			return err
		}
		if encoded == "" {
			*o = nil
			return nil
		}
		b = []byte(encoded)
	}
	var items []orderItemDTO
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("decode order items: %w", err)
	}
	*o = items
	return nil
}

type orderDTO struct {
	ID              flexString `json:"id" validate:"required"`
	OrderNumber     string     `json:"order_number"`
	UserID          flexString `json:"user_id"`
	SellerID        flexString `json:"seller_id"`
	CustomerName    string     `json:"customer_name"`
	CustomerPhone   string     `json:"customer_phone"`
	Items           orderItems `json:"items" validate:"dive"`
	Total           flexInt64  `json:"total"`
	TotalAmount     flexInt64  `json:"total_amount"`
	Status          string     `json:"status" validate:"oneof=pending processing shipped delivered cancelled"`
	ShippingAddress string     `json:"shipping_address"`
	PaymentMethod   string     `json:"payment_method"`
	Notes           string     `json:"notes"`
	Resi            string     `json:"resi"`
	OrderDate       flexTime   `json:"order_date"`
	CreatedAt       flexTime   `json:"created_at"`
}

func (d orderDTO) toDomain() domain.Order {
	total := int64(d.TotalAmount)
	if total == 0 {
		total = int64(d.Total)
	}

	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, item.toDomain())
	}

	placedAt := d.OrderDate.Time()
	if placedAt.IsZero() {
		placedAt = d.CreatedAt.Time()
	}

	return domain.Order{
		ID:              string(d.ID),
		OrderNumber:     d.OrderNumber,
		BuyerID:         string(d.UserID),
		SellerID:        string(d.SellerID),
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		Items:           items,
		TotalAmount:     total,
		Status:          domain.OrderStatus(d.Status),
		ShippingAddress: d.ShippingAddress,
		PaymentMethod:   domain.PaymentMethod(d.PaymentMethod),
		Notes:           d.Notes,
		TrackingCode:    d.Resi,
		CreatedAt:       placedAt,
	}
}

type createOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     int64  `json:"price"`
}

type createOrderRequest struct {
	UserID          string            `json:"user_id"`
	SellerID        string            `json:"seller_id"`
	CustomerName    string            `json:"customer_name"`
	CustomerPhone   string            `json:"customer_phone"`
	ShippingAddress string            `json:"shipping_address"`
	PaymentMethod   string            `json:"payment_method"`
	Notes           string            `json:"notes"`
	VoucherCode     string            `json:"voucher_code,omitempty"`
	TotalAmount     int64             `json:"total_amount,omitempty"`
	Items           []createOrderItem `json:"items"`
}

type createOrderResponse struct {
	ID          flexString `json:"id"`
	OrderNumber string     `json:"order_number"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Resi   string `json:"resi,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// OrderStore implements repository.OrderStore.
type OrderStore struct {
	client *Client
}

// NewOrderStore creates an order store.
func NewOrderStore(client *Client) *OrderStore {
	return &OrderStore{client: client}
}

// Create submits an order and returns the order number the server assigned.
func (s *OrderStore) Create(ctx context.Context, placement *domain.OrderPlacement) (string, error) {
	req := createOrderRequest{
		UserID:          placement.BuyerID,
		SellerID:        placement.SellerID,
		CustomerName:    placement.CustomerName,
		CustomerPhone:   placement.CustomerPhone,
		ShippingAddress: placement.ShippingAddress,
		PaymentMethod:   string(placement.PaymentMethod),
		Notes:           placement.Notes,
		VoucherCode:     placement.VoucherCode,
		TotalAmount:     placement.TotalAmount,
		Items:           make([]createOrderItem, len(placement.Items)),
	}
	for i, item := range placement.Items {
		req.Items[i] = createOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.UnitPrice,
		}
	}

	var resp createOrderResponse
	if err := s.client.send(ctx, http.MethodPost, "/orders", nil, req, &resp); err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	return resp.OrderNumber, nil
}

// ListBySeller returns the orders of a seller.
func (s *OrderStore) ListBySeller(ctx context.Context, sellerID string) ([]domain.Order, error) {
	orders, err := s.list(ctx, url.Values{"seller_id": {sellerID}})
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return orders, nil
}

// ListByBuyer returns the orders of a buyer.
func (s *OrderStore) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	orders, err := s.list(ctx, url.Values{"user_id": {buyerID}})
	if err != nil {
		return nil, fmt.Errorf("list buyer orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus asks the server to move an order to target.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID string, target domain.OrderStatus, opts repository.TransitionOptions) error {
	path := "/orders/" + url.PathEscape(orderID)
	query := url.Values{"action": {"update-status"}}
	req := updateStatusRequest{
		Status: string(target),
		Resi:   opts.TrackingCode,
		Reason: opts.Reason,
	}
	if err := s.client.send(ctx, http.MethodPut, path, query, req, nil); err != nil {
		return fmt.Errorf("update order %s status to %s: %w", orderID, target, err)
	}
	return nil
}

// list decodes an order list, dropping and logging orders that break the
// data contract.
func (s *OrderStore) list(ctx context.Context, query url.Values) ([]domain.Order, error) {
	var data json.RawMessage
	if err := s.client.get(ctx, "/orders", query, &data); err != nil {
		return nil, err
	}

	dtos, err := decodeList[orderDTO](data, "orders")
	if err != nil {
		return nil, apperrors.TransportFailed(fmt.Errorf("decode orders: %w", err))
	}

	orders := make([]domain.Order, 0, len(dtos))
	for _, d := range dtos {
		if err := validator.Validate(d); err != nil {
			s.client.logger.WarnContext(ctx, "dropping invalid order",
				slog.String("order_id", string(d.ID)),
				slog.String("error", err.Error()),
			)
			continue
		}
		orders = append(orders, d.toDomain())
	}
	return orders, nil
}
