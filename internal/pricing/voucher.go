package pricing

import (
	"fmt"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
)

// RejectionReason says why a voucher cannot be applied.
type RejectionReason string

const (
	MinPurchaseNotMet RejectionReason = "min_purchase_not_met"
	UnsupportedType   RejectionReason = "unsupported_type"
)

// VoucherRejection is returned when a voucher does not apply to a subtotal.
type VoucherRejection struct {
	Code        string          `json:"code"`
	Reason      RejectionReason `json:"reason"`
	MinPurchase int64           `json:"min_purchase"`
	Subtotal    int64           `json:"subtotal"`
}

func (r *VoucherRejection) Error() string {
	switch r.Reason {
	case MinPurchaseNotMet:
		return fmt.Sprintf("voucher %s requires a minimum purchase of Rp %d", r.Code, r.MinPurchase)
	default:
		return fmt.Sprintf("voucher %s cannot be applied: %s", r.Code, r.Reason)
	}
}

// Shortfall is how much more the buyer must select to qualify.
func (r *VoucherRejection) Shortfall() int64 {
	if r.Subtotal >= r.MinPurchase {
		return 0
	}
	return r.MinPurchase - r.Subtotal
}

// ApplyVoucher evaluates v against subtotal. A nil voucher means "no voucher"
// and always succeeds with a nil result. A rejection is returned as a
// *VoucherRejection.
func ApplyVoucher(v *domain.Voucher, subtotal int64) (*domain.AppliedVoucher, error) {
	applied, rejection := Evaluate(v, subtotal)
	if rejection != nil {
		return nil, rejection
	}
	return applied, nil
}

// Evaluate is ApplyVoucher with the rejection typed.
func Evaluate(v *domain.Voucher, subtotal int64) (*domain.AppliedVoucher, *VoucherRejection) {
	if v == nil {
		return nil, nil
	}

	if subtotal < v.MinPurchase {
		return nil, &VoucherRejection{
			Code:        v.Code,
			Reason:      MinPurchaseNotMet,
			MinPurchase: v.MinPurchase,
			Subtotal:    subtotal,
		}
	}

	var discount int64
	switch v.Type {
	case domain.VoucherTypeNominal:
		// Not capped by the subtotal: the total floors at zero instead.
		discount = v.DiscountValue
	case domain.VoucherTypePercent:
		discount = subtotal * v.DiscountValue / 100
		if v.MaxDiscount != nil && discount > *v.MaxDiscount {
			discount = *v.MaxDiscount
		}
	default:
		return nil, &VoucherRejection{Code: v.Code, Reason: UnsupportedType, Subtotal: subtotal}
	}

	return &domain.AppliedVoucher{Code: v.Code, DiscountAmount: discount}, nil
}
