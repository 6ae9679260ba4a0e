package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/validator"
)

type cartItemDTO struct {
	ID        flexString `json:"id" validate:"required"`
	ProductID flexString `json:"product_id" validate:"required"`
	SellerID  flexString `json:"seller_id"`
	Name      string     `json:"name"`
	Image     string     `json:"image"`
	Price     flexInt64  `json:"price" validate:"gte=0"`
	Quantity  flexInt64  `json:"quantity" validate:"gte=1"`
	Stock     flexInt64  `json:"stock"`
}

func (d cartItemDTO) toDomain() domain.CartLineItem {
	return domain.CartLineItem{
		ID:        string(d.ID),
		ProductID: string(d.ProductID),
		SellerID:  string(d.SellerID),
		Name:      d.Name,
		Image:     d.Image,
		UnitPrice: int64(d.Price),
		Quantity:  int(d.Quantity),
		Stock:     int(d.Stock),
	}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type addToCartRequest struct {
	UserID    string `json:"user_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CartStore implements repository.CartStore.
type CartStore struct {
	client *Client
}

// NewCartStore creates a cart store.
func NewCartStore(client *Client) *CartStore {
	return &CartStore{client: client}
}

// GetCart fetches the buyer's cart. Lines that break the data contract are
// dropped and logged.
func (s *CartStore) GetCart(ctx context.Context, buyerID string) ([]domain.CartLineItem, error) {
	var data json.RawMessage
	if err := s.client.get(ctx, "/cart", url.Values{"user_id": {buyerID}}, &data); err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}

	dtos, err := decodeList[cartItemDTO](data, "items")
	if err != nil {
		return nil, apperrors.TransportFailed(fmt.Errorf("decode cart items: %w", err))
	}

	items := make([]domain.CartLineItem, 0, len(dtos))
	for i, d := range dtos {
		if err := validator.Validate(d); err != nil {
			s.client.logger.WarnContext(ctx, "dropping invalid cart line",
				slog.Int("index", i),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, d.toDomain())
	}
	return items, nil
}

// UpdateQuantity sets the quantity of one cart line.
func (s *CartStore) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	path := "/cart/" + url.PathEscape(itemID)
	if err := s.client.send(ctx, http.MethodPut, path, nil, updateQuantityRequest{Quantity: quantity}, nil); err != nil {
		return fmt.Errorf("update cart quantity: %w", err)
	}
	return nil
}

// Remove deletes one cart line.
func (s *CartStore) Remove(ctx context.Context, itemID string) error {
	path := "/cart/" + url.PathEscape(itemID)
	if err := s.client.send(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// Add puts a product into the buyer's cart.
func (s *CartStore) Add(ctx context.Context, buyerID, productID string, quantity int) error {
	req := addToCartRequest{UserID: buyerID, ProductID: productID, Quantity: quantity}
	if err := s.client.send(ctx, http.MethodPost, "/cart", nil, req, nil); err != nil {
		return fmt.Errorf("add to cart: %w", err)
	}
	return nil
}
