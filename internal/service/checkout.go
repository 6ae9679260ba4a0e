package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// CheckoutDeps carries what a wizard needs besides the order store.
type CheckoutDeps struct {
	SellerID  string
	Publisher event.Publisher
	Logger    *slog.Logger
	// Now defaults to time.Now. It stamps fallback order numbers.
	Now func() time.Time
}

// Outcome is what dismissing the wizard reports to its caller.
type Outcome struct {
	Success     bool   `json:"success"`
	OrderNumber string `json:"order_number,omitempty"`
}

type checkoutSnapshot struct {
	buyer       domain.BuyerInfo
	items       []domain.CartLineItem
	totals      domain.CartTotals
	voucherCode string
}

// CheckoutWizard walks a buyer through buyer info, shipping address, payment
// method and confirmation. Leaving the confirmation step submits the order.
// The wizard is not safe for concurrent use.
type CheckoutWizard struct {
	orders    repository.OrderStore
	publisher event.Publisher
	logger    *slog.Logger
	now       func() time.Time
	sellerID  string

	snapshot    checkoutSnapshot
	step        domain.CheckoutStep
	draft       domain.CheckoutDraft
	orderNumber string
	lastErr     string
	dismissed   bool
}

func newCheckoutWizard(orders repository.OrderStore, deps CheckoutDeps, snap checkoutSnapshot) *CheckoutWizard {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	publisher := deps.Publisher
	if publisher == nil {
		publisher = event.NoopPublisher{}
	}
	return &CheckoutWizard{
		orders:    orders,
		publisher: publisher,
		logger:    deps.Logger,
		now:       now,
		sellerID:  deps.SellerID,
		snapshot:  snap,
		step:      domain.StepBuyerInfo,
		draft:     domain.CheckoutDraft{Buyer: snap.buyer},
	}
}

// CheckoutView is a read-only picture of the wizard.
type CheckoutView struct {
	Step        domain.CheckoutStep   `json:"step"`
	StepName    string                `json:"step_name"`
	Draft       domain.CheckoutDraft  `json:"draft"`
	Items       []domain.CartLineItem `json:"items"`
	Totals      domain.CartTotals     `json:"totals"`
	VoucherCode string                `json:"voucher_code,omitempty"`
	OrderNumber string                `json:"order_number,omitempty"`
	LastError   string                `json:"last_error,omitempty"`
}

// View returns the current state of the wizard.
func (w *CheckoutWizard) View() CheckoutView {
	items := make([]domain.CartLineItem, len(w.snapshot.items))
	copy(items, w.snapshot.items)
	return CheckoutView{
		Step:        w.step,
		StepName:    w.step.String(),
		Draft:       w.draft,
		Items:       items,
		Totals:      w.snapshot.totals,
		VoucherCode: w.snapshot.voucherCode,
		OrderNumber: w.orderNumber,
		LastError:   w.lastErr,
	}
}

// Step returns the current step.
func (w *CheckoutWizard) Step() domain.CheckoutStep { return w.step }

// Draft returns the data collected so far.
func (w *CheckoutWizard) Draft() domain.CheckoutDraft { return w.draft }

// LastError is the message of the last failed submission, if any.
func (w *CheckoutWizard) LastError() string { return w.lastErr }

// SetShippingAddress records the free-text shipping address.
func (w *CheckoutWizard) SetShippingAddress(address string) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.ShippingAddress = address
	return nil
}

// SetPaymentMethod records the payment method.
func (w *CheckoutWizard) SetPaymentMethod(method domain.PaymentMethod) error {
	if err := w.editable(); err != nil {
		return err
	}
	if !method.IsValid() {
		return apperrors.Validation(fmt.Sprintf("unsupported payment method %q", method))
	}
	w.draft.PaymentMethod = method
	return nil
}

// SetNotes records optional notes for the seller.
func (w *CheckoutWizard) SetNotes(notes string) error {
	if err := w.editable(); err != nil {
		return err
	}
	w.draft.Notes = notes
	return nil
}

// Next validates the current step and advances. At the confirmation step it
// submits the order; on failure the wizard stays at confirmation.
func (w *CheckoutWizard) Next(ctx context.Context) error {
	if err := w.editable(); err != nil {
		return err
	}

	switch w.step {
	case domain.StepBuyerInfo:
		w.step = domain.StepShippingAddress
	case domain.StepShippingAddress:
		if !w.draft.HasValidAddress() {
			return apperrors.Validation(fmt.Sprintf("shipping address must be at least %d characters", domain.MinShippingAddressLength))
		}
		w.step = domain.StepPaymentMethod
	case domain.StepPaymentMethod:
		if !w.draft.PaymentMethod.IsValid() {
			return apperrors.Validation("choose a payment method")
		}
		w.step = domain.StepConfirmation
	case domain.StepConfirmation:
		return w.submit(ctx)
	}
	return nil
}

// Previous goes back one step. It is allowed from shipping address through
// confirmation.
func (w *CheckoutWizard) Previous() error {
	if err := w.editable(); err != nil {
		return err
	}
	if w.step <= domain.StepBuyerInfo {
		return apperrors.Validation("already at the first step")
	}
	w.step--
	return nil
}

// Dismiss closes the wizard and discards the draft. From the result step it
// reports the placed order.
func (w *CheckoutWizard) Dismiss() Outcome {
	outcome := Outcome{}
	if w.step == domain.StepResult {
		outcome = Outcome{Success: true, OrderNumber: w.orderNumber}
	}
	w.dismissed = true
	w.draft = domain.CheckoutDraft{}
	return outcome
}

func (w *CheckoutWizard) editable() error {
	if w.dismissed {
		return apperrors.Validation("checkout was dismissed")
	}
	if w.step == domain.StepResult {
		return apperrors.Validation("order already placed")
	}
	return nil
}

func (w *CheckoutWizard) submit(ctx context.Context) error {
	placement := &domain.OrderPlacement{
		BuyerID:         w.draft.Buyer.UserID,
		SellerID:        w.sellerID,
		CustomerName:    w.draft.Buyer.Name,
		CustomerPhone:   w.draft.Buyer.Phone,
		ShippingAddress: strings.TrimSpace(w.draft.ShippingAddress),
		PaymentMethod:   w.draft.PaymentMethod,
		Notes:           w.draft.Notes,
		VoucherCode:     w.snapshot.voucherCode,
		TotalAmount:     w.snapshot.totals.Total,
		Items:           make([]domain.OrderItem, len(w.snapshot.items)),
	}
	for i, item := range w.snapshot.items {
		placement.Items[i] = domain.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Image:     item.Image,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		}
	}

	number, err := w.orders.Create(ctx, placement)
	checkoutSubmissionsTotal.WithLabelValues(resultLabel(err)).Inc()
	if err != nil {
		w.lastErr = apperrors.UserMessage(err, apperrors.GenericFailureMessage)
		w.logger.WarnContext(ctx, "order submission failed",
			slog.String("user_id", placement.BuyerID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("submit order: %w", err)
	}

	if number == "" {
		number = "ORD-" + strconv.FormatInt(w.now().UnixMilli(), 10)
		w.logger.WarnContext(ctx, "order created without an order number, using local one",
			slog.String("order_number", number),
		)
	}

	w.orderNumber = number
	w.lastErr = ""
	w.step = domain.StepResult

	w.logger.InfoContext(ctx, "order placed",
		slog.String("order_number", number),
		slog.String("user_id", placement.BuyerID),
		slog.Int64("total", placement.TotalAmount),
	)

	if err := w.publisher.PublishOrderPlaced(ctx, event.OrderPlacedData{
		OrderNumber:   number,
		BuyerID:       placement.BuyerID,
		SellerID:      placement.SellerID,
		PaymentMethod: string(placement.PaymentMethod),
		VoucherCode:   placement.VoucherCode,
		TotalAmount:   placement.TotalAmount,
		Items:         placement.Items,
	}); err != nil {
		w.logger.ErrorContext(ctx, "failed to publish order placed event",
			slog.String("order_number", number),
			slog.String("error", err.Error()),
		)
	}

	return nil
}
