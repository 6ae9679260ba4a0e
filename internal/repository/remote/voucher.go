package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/validator"
)

type voucherDTO struct {
	ID          flexString `json:"id"`
	Code        string     `json:"code" validate:"notblank"`
	Type        string     `json:"type" validate:"oneof=nominal percent"`
	Discount    flexInt64  `json:"discount" validate:"gte=0"`
	MinPurchase flexInt64  `json:"min_purchase" validate:"gte=0"`
	MaxDiscount flexInt64  `json:"max_discount" validate:"gte=0"`
	Status      string     `json:"status"`
	SellerID    flexString `json:"seller_id"`
}

func (d voucherDTO) toDomain() domain.Voucher {
	v := domain.Voucher{
		ID:            string(d.ID),
		Code:          strings.TrimSpace(d.Code),
		SellerID:      string(d.SellerID),
		Type:          domain.VoucherType(d.Type),
		DiscountValue: int64(d.Discount),
		MinPurchase:   int64(d.MinPurchase),
		Status:        d.Status,
	}
	// The API reports an uncapped voucher as 0 or null.
	if d.MaxDiscount > 0 {
		maxDiscount := int64(d.MaxDiscount)
		v.MaxDiscount = &maxDiscount
	}
	return v
}

// VoucherStore implements repository.VoucherStore.
type VoucherStore struct {
	client *Client
}

// NewVoucherStore creates a voucher store.
func NewVoucherStore(client *Client) *VoucherStore {
	return &VoucherStore{client: client}
}

// List returns a seller's vouchers with the given status. Vouchers that break
// the data contract are dropped and logged.
func (s *VoucherStore) List(ctx context.Context, sellerID, status string) ([]domain.Voucher, error) {
	query := url.Values{"seller_id": {sellerID}}
	if status != "" {
		query.Set("status", status)
	}

	dtos, err := s.fetch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vouchers: %w", err)
	}

	vouchers := make([]domain.Voucher, 0, len(dtos))
	for _, d := range dtos {
		if err := validator.Validate(d); err != nil {
			s.client.logger.WarnContext(ctx, "dropping invalid voucher",
				slog.String("code", d.Code),
				slog.String("error", err.Error()),
			)
			continue
		}
		vouchers = append(vouchers, d.toDomain())
	}
	return vouchers, nil
}

// GetByCode looks up a voucher by code, case-insensitively.
func (s *VoucherStore) GetByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	code = strings.TrimSpace(code)

	dtos, err := s.fetch(ctx, url.Values{"code": {code}})
	if err != nil {
		return nil, fmt.Errorf("get voucher %s: %w", code, err)
	}

	for _, d := range dtos {
		if !strings.EqualFold(strings.TrimSpace(d.Code), code) {
			continue
		}
		if err := validator.Validate(d); err != nil {
			return nil, apperrors.TransportFailed(fmt.Errorf("invalid voucher %s: %w", code, err))
		}
		v := d.toDomain()
		return &v, nil
	}
	return nil, apperrors.NotFound("voucher", code)
}

// fetch accepts a single voucher object, a bare array, or {"vouchers": [...]}.
func (s *VoucherStore) fetch(ctx context.Context, query url.Values) ([]voucherDTO, error) {
	var data json.RawMessage
	if err := s.client.get(ctx, "/vouchers", query, &data); err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &fields); err != nil {
			return nil, apperrors.TransportFailed(fmt.Errorf("decode voucher: %w", err))
		}
		if _, wrapped := fields["vouchers"]; !wrapped {
			var single voucherDTO
			if err := json.Unmarshal(trimmed, &single); err != nil {
				return nil, apperrors.TransportFailed(fmt.Errorf("decode voucher: %w", err))
			}
			return []voucherDTO{single}, nil
		}
	}

	dtos, err := decodeList[voucherDTO](data, "vouchers")
	if err != nil {
		return nil, apperrors.TransportFailed(fmt.Errorf("decode vouchers: %w", err))
	}
	return dtos, nil
}
