package domain

// VoucherType selects how a voucher's discount value is interpreted.
type VoucherType string

const (
	VoucherTypeNominal VoucherType = "nominal"
	VoucherTypePercent VoucherType = "percent"
)

// VoucherStatusActive is the status of vouchers a buyer may apply.
const VoucherStatusActive = "active"

// IsValid reports whether t is a known voucher type.
func (t VoucherType) IsValid() bool {
	return t == VoucherTypeNominal || t == VoucherTypePercent
}

// Voucher is a seller-issued discount code. The client never mutates it.
type Voucher struct {
	ID            string      `json:"id,omitempty"`
	Code          string      `json:"code"`
	SellerID      string      `json:"seller_id,omitempty"`
	Type          VoucherType `json:"type"`
	DiscountValue int64       `json:"discount_value"`
	MinPurchase   int64       `json:"min_purchase"`
	// MaxDiscount caps percent vouchers. Nil means uncapped.
	MaxDiscount *int64 `json:"max_discount,omitempty"`
	Status      string `json:"status,omitempty"`
}

// AppliedVoucher is the result of evaluating a voucher against a subtotal.
// It is recomputed whenever the subtotal changes.
type AppliedVoucher struct {
	Code           string `json:"code"`
	DiscountAmount int64  `json:"discount_amount"`
}
