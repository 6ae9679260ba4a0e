package domain

import "strings"

// MinShippingAddressLength is the minimum trimmed length of a shipping address.
const MinShippingAddressLength = 10

// PaymentMethod is recorded on the order but not processed by the storefront.
type PaymentMethod string

const (
	PaymentMethodCOD      PaymentMethod = "cod"
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodEWallet  PaymentMethod = "ewallet"
)

// IsValid reports whether m is a supported payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodTransfer, PaymentMethodEWallet:
		return true
	}
	return false
}

// CheckoutStep is a position in the checkout wizard.
type CheckoutStep int

const (
	StepBuyerInfo CheckoutStep = iota + 1
	StepShippingAddress
	StepPaymentMethod
	StepConfirmation
	StepResult
)

var stepNames = map[CheckoutStep]string{
	StepBuyerInfo:       "buyer_info",
	StepShippingAddress: "shipping_address",
	StepPaymentMethod:   "payment_method",
	StepConfirmation:    "confirmation",
	StepResult:          "result",
}

func (s CheckoutStep) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return "unknown"
}

// BuyerInfo is the read-only contact block of a checkout, taken from the
// authenticated identity.
type BuyerInfo struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

// CheckoutDraft is the wizard-scoped data collected before submission.
type CheckoutDraft struct {
	Buyer           BuyerInfo     `json:"buyer"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Notes           string        `json:"notes,omitempty"`
}

// HasValidAddress reports whether the trimmed address is long enough.
func (d CheckoutDraft) HasValidAddress() bool {
	return len([]rune(strings.TrimSpace(d.ShippingAddress))) >= MinShippingAddressLength
}

// OrderPlacement is the order submitted when checkout is confirmed. Items are
// snapshots of the selected cart lines at submission time.
type OrderPlacement struct {
	BuyerID         string        `json:"user_id"`
	SellerID        string        `json:"seller_id"`
	CustomerName    string        `json:"customer_name"`
	CustomerPhone   string        `json:"customer_phone"`
	ShippingAddress string        `json:"shipping_address"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	Notes           string        `json:"notes,omitempty"`
	VoucherCode     string        `json:"voucher_code,omitempty"`
	Items           []OrderItem   `json:"items"`
	TotalAmount     int64         `json:"total_amount"`
}
