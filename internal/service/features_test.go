package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/cucumber/godog"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// memoryBackend is an in-memory stand-in for the storefront API.
type memoryBackend struct {
	mu            sync.Mutex
	lines         []domain.CartLineItem
	vouchers      map[string]domain.Voucher
	orders        []domain.Order
	placements    []*domain.OrderPlacement
	rejectMessage string
	statusUpdates int
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{vouchers: make(map[string]domain.Voucher)}
}

func (b *memoryBackend) GetCart(_ context.Context, _ string) ([]domain.CartLineItem, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.CartLineItem, len(b.lines))
	copy(out, b.lines)
	return out, nil
}

func (b *memoryBackend) UpdateQuantity(_ context.Context, itemID string, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if b.lines[i].ID == itemID {
			b.lines[i].Quantity = quantity
			return nil
		}
	}
	return apperrors.RemoteRejected("item not found", 404)
}

func (b *memoryBackend) Remove(_ context.Context, itemID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.lines {
		if b.lines[i].ID == itemID {
			b.lines = append(b.lines[:i], b.lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (b *memoryBackend) Add(_ context.Context, _ string, productID string, quantity int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lines = append(b.lines, domain.CartLineItem{
		ID:        "new-" + productID,
		ProductID: productID,
		Quantity:  quantity,
	})
	return nil
}

func (b *memoryBackend) List(_ context.Context, _, _ string) ([]domain.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Voucher, 0, len(b.vouchers))
	for _, v := range b.vouchers {
		out = append(out, v)
	}
	return out, nil
}

func (b *memoryBackend) GetByCode(_ context.Context, code string) (*domain.Voucher, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.vouchers[strings.ToUpper(code)]
	if !ok {
		return nil, apperrors.NotFound("voucher", code)
	}
	return &v, nil
}

func (b *memoryBackend) Create(_ context.Context, placement *domain.OrderPlacement) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rejectMessage != "" {
		return "", apperrors.RemoteRejected(b.rejectMessage, 400)
	}
	b.placements = append(b.placements, placement)
	return "ORD-" + strconv.Itoa(len(b.placements)), nil
}

func (b *memoryBackend) ListBySeller(_ context.Context, _ string) ([]domain.Order, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Order, len(b.orders))
	copy(out, b.orders)
	return out, nil
}

func (b *memoryBackend) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	return b.ListBySeller(ctx, buyerID)
}

func (b *memoryBackend) UpdateStatus(_ context.Context, orderID string, target domain.OrderStatus, _ repository.TransitionOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statusUpdates++
	for i := range b.orders {
		if b.orders[i].ID == orderID {
			b.orders[i].Status = target
			return nil
		}
	}
	return apperrors.RemoteRejected("order not found", 404)
}

var (
	_ repository.CartStore    = (*memoryBackend)(nil)
	_ repository.VoucherStore = (*memoryBackend)(nil)
	_ repository.OrderStore   = (*memoryBackend)(nil)
)

type storefrontTestContext struct {
	backend      *memoryBackend
	shippingCost int64
	cart         *Cart
	wizard       *CheckoutWizard
	lifecycle    *OrderLifecycle
	err          error
}

func (c *storefrontTestContext) reset() {
	c.backend = newMemoryBackend()
	c.shippingCost = 0
	c.cart = nil
	c.wizard = nil
	c.lifecycle = nil
	c.err = nil
}

func tableRows(table *godog.Table) []map[string]string {
	if len(table.Rows) == 0 {
		return nil
	}
	header := table.Rows[0].Cells
	rows := make([]map[string]string, 0, len(table.Rows)-1)
	for _, row := range table.Rows[1:] {
		values := make(map[string]string, len(header))
		for i, cell := range row.Cells {
			values[header[i].Value] = cell.Value
		}
		rows = append(rows, values)
	}
	return rows
}

// --- Given steps ---

func (c *storefrontTestContext) aSignedInBuyerWithACart(table *godog.Table) error {
	for _, row := range tableRows(table) {
		price, err := strconv.ParseInt(row["price"], 10, 64)
		if err != nil {
			return err
		}
		quantity, err := strconv.Atoi(row["quantity"])
		if err != nil {
			return err
		}
		stock, err := strconv.Atoi(row["stock"])
		if err != nil {
			return err
		}
		c.backend.lines = append(c.backend.lines, domain.CartLineItem{
			ID:        row["id"],
			ProductID: row["product"],
			Name:      row["name"],
			UnitPrice: price,
			Quantity:  quantity,
			Stock:     stock,
		})
	}
	return nil
}

func (c *storefrontTestContext) theShippingCostIs(cost int64) error {
	c.shippingCost = cost
	return nil
}

func (c *storefrontTestContext) theCartIsLoaded() error {
	c.cart = NewCart(c.backend, c.backend, signedIn(buyerIdentity()), CartConfig{
		ShippingCost:    c.shippingCost,
		VoucherSellerID: "1",
	}, newTestLogger())
	return c.cart.Load(context.Background())
}

func (c *storefrontTestContext) aNominalVoucher(code string, value, minPurchase int64) error {
	c.backend.vouchers[code] = domain.Voucher{
		Code:          code,
		Type:          domain.VoucherTypeNominal,
		DiscountValue: value,
		MinPurchase:   minPurchase,
		Status:        domain.VoucherStatusActive,
	}
	return nil
}

func (c *storefrontTestContext) aPercentVoucher(code string, value, minPurchase, maxDiscount int64) error {
	c.backend.vouchers[code] = domain.Voucher{
		Code:          code,
		Type:          domain.VoucherTypePercent,
		DiscountValue: value,
		MinPurchase:   minPurchase,
		MaxDiscount:   int64Ptr(maxDiscount),
		Status:        domain.VoucherStatusActive,
	}
	return nil
}

func (c *storefrontTestContext) theServerRejectsOrdersWith(message string) error {
	c.backend.rejectMessage = message
	return nil
}

func (c *storefrontTestContext) aSignedInSellerWithOrders(table *godog.Table) error {
	for _, row := range tableRows(table) {
		if !domain.IsValidStatus(row["status"]) {
			return fmt.Errorf("unknown status %q", row["status"])
		}
		c.backend.orders = append(c.backend.orders, domain.Order{
			ID:          row["id"],
			OrderNumber: row["number"],
			Status:      domain.OrderStatus(row["status"]),
		})
	}
	c.lifecycle = NewOrderLifecycle(c.backend, event.NoopPublisher{}, signedIn(sellerIdentity()), newTestLogger())
	return c.lifecycle.Refresh(context.Background())
}

// --- When steps ---

func (c *storefrontTestContext) iApplyTheVoucher(code string) error {
	c.err = c.cart.ApplyVoucherCode(context.Background(), code)
	return nil
}

func (c *storefrontTestContext) iDeselectLine(id string) error {
	return c.cart.SetSelected(context.Background(), id, false)
}

func (c *storefrontTestContext) iSetTheQuantityOfLineTo(id string, quantity int) error {
	c.err = c.cart.SetQuantity(context.Background(), id, quantity)
	return nil
}

func (c *storefrontTestContext) iBeginCheckout() error {
	wizard, err := c.cart.BeginCheckout(c.backend, CheckoutDeps{
		SellerID:  "1",
		Publisher: event.NoopPublisher{},
		Logger:    newTestLogger(),
	})
	if err != nil {
		return err
	}
	c.wizard = wizard
	return nil
}

func (c *storefrontTestContext) iContinue() error {
	c.err = c.wizard.Next(context.Background())
	return nil
}

func (c *storefrontTestContext) iEnterTheShippingAddress(address string) error {
	return c.wizard.SetShippingAddress(address)
}

func (c *storefrontTestContext) iChooseThePaymentMethod(method string) error {
	return c.wizard.SetPaymentMethod(domain.PaymentMethod(method))
}

func (c *storefrontTestContext) iAcceptOrder(id string) error {
	c.err = c.lifecycle.Accept(context.Background(), id)
	return nil
}

func (c *storefrontTestContext) iShipOrderWithTrackingCode(id, code string) error {
	c.err = c.lifecycle.Ship(context.Background(), id, code)
	return nil
}

// --- Then steps ---

func expectAmount(name string, got, want int64) error {
	if got != want {
		return fmt.Errorf("expected %s %d, got %d", name, want, got)
	}
	return nil
}

func (c *storefrontTestContext) theSubtotalIs(want int64) error {
	return expectAmount("subtotal", c.cart.Totals().Subtotal, want)
}

func (c *storefrontTestContext) theDiscountIs(want int64) error {
	return expectAmount("discount", c.cart.Totals().Discount, want)
}

func (c *storefrontTestContext) theTotalIs(want int64) error {
	return expectAmount("total", c.cart.Totals().Total, want)
}

func (c *storefrontTestContext) theVoucherIsRejected() error {
	if !errors.Is(c.err, apperrors.ErrValidation) {
		return fmt.Errorf("expected a voucher rejection, got %v", c.err)
	}
	if c.cart.AppliedVoucher() != nil {
		return errors.New("expected no applied voucher")
	}
	return nil
}

func (c *storefrontTestContext) noVoucherIsApplied() error {
	if v := c.cart.AppliedVoucher(); v != nil {
		return fmt.Errorf("expected no applied voucher, got %s", v.Code)
	}
	return nil
}

func (c *storefrontTestContext) theChangeIsRejectedLocally() error {
	if !errors.Is(c.err, apperrors.ErrValidation) {
		return fmt.Errorf("expected a validation error, got %v", c.err)
	}
	return nil
}

func (c *storefrontTestContext) theQuantityOfLineIs(id string, want int) error {
	for _, item := range c.cart.Items() {
		if item.ID == id {
			if item.Quantity != want {
				return fmt.Errorf("expected quantity %d, got %d", want, item.Quantity)
			}
			return nil
		}
	}
	return fmt.Errorf("line %s not in cart", id)
}

func (c *storefrontTestContext) theWizardIsAtStep(name string) error {
	if got := c.wizard.Step().String(); got != name {
		return fmt.Errorf("expected step %s, got %s", name, got)
	}
	return nil
}

func (c *storefrontTestContext) anOrderForWasSubmitted(total int64) error {
	if len(c.backend.placements) != 1 {
		return fmt.Errorf("expected 1 submitted order, got %d", len(c.backend.placements))
	}
	return expectAmount("order total", c.backend.placements[0].TotalAmount, total)
}

func (c *storefrontTestContext) dismissingTheWizardReportsOrder(number string) error {
	outcome := c.wizard.Dismiss()
	if !outcome.Success || outcome.OrderNumber != number {
		return fmt.Errorf("expected order %s, got %+v", number, outcome)
	}
	return nil
}

func (c *storefrontTestContext) theWizardShowsTheError(message string) error {
	if got := c.wizard.LastError(); got != message {
		return fmt.Errorf("expected error %q, got %q", message, got)
	}
	return nil
}

func (c *storefrontTestContext) orderIs(id, status string) error {
	for _, o := range c.lifecycle.Orders() {
		if o.ID == id {
			if string(o.Status) != status {
				return fmt.Errorf("expected order %s to be %s, got %s", id, status, o.Status)
			}
			return nil
		}
	}
	return fmt.Errorf("order %s not listed", id)
}

func (c *storefrontTestContext) noStatusUpdateWasSent() error {
	if c.backend.statusUpdates != 0 {
		return fmt.Errorf("expected no status update, got %d", c.backend.statusUpdates)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &storefrontTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a signed-in buyer with a cart:$`, tc.aSignedInBuyerWithACart)
	ctx.Step(`^the shipping cost is (\d+)$`, tc.theShippingCostIs)
	ctx.Step(`^the cart is loaded$`, tc.theCartIsLoaded)
	ctx.Step(`^a nominal voucher "([^"]*)" worth (\d+) with minimum purchase (\d+)$`, tc.aNominalVoucher)
	ctx.Step(`^a percent voucher "([^"]*)" worth (\d+) with minimum purchase (\d+) and maximum discount (\d+)$`, tc.aPercentVoucher)
	ctx.Step(`^the server rejects orders with "([^"]*)"$`, tc.theServerRejectsOrdersWith)
	ctx.Step(`^a signed-in seller with orders:$`, tc.aSignedInSellerWithOrders)

	// When steps
	ctx.Step(`^I apply the voucher "([^"]*)"$`, tc.iApplyTheVoucher)
	ctx.Step(`^I deselect line "([^"]*)"$`, tc.iDeselectLine)
	ctx.Step(`^I set the quantity of line "([^"]*)" to (\d+)$`, tc.iSetTheQuantityOfLineTo)
	ctx.Step(`^I begin checkout$`, tc.iBeginCheckout)
	ctx.Step(`^I continue$`, tc.iContinue)
	ctx.Step(`^I enter the shipping address "([^"]*)"$`, tc.iEnterTheShippingAddress)
	ctx.Step(`^I choose the payment method "([^"]*)"$`, tc.iChooseThePaymentMethod)
	ctx.Step(`^I accept order "([^"]*)"$`, tc.iAcceptOrder)
	ctx.Step(`^I ship order "([^"]*)" with tracking code "([^"]*)"$`, tc.iShipOrderWithTrackingCode)

	// Then steps
	ctx.Step(`^the subtotal is (\d+)$`, tc.theSubtotalIs)
	ctx.Step(`^the discount is (\d+)$`, tc.theDiscountIs)
	ctx.Step(`^the total is (\d+)$`, tc.theTotalIs)
	ctx.Step(`^the voucher is rejected$`, tc.theVoucherIsRejected)
	ctx.Step(`^no voucher is applied$`, tc.noVoucherIsApplied)
	ctx.Step(`^the change is rejected locally$`, tc.theChangeIsRejectedLocally)
	ctx.Step(`^the quantity of line "([^"]*)" is (\d+)$`, tc.theQuantityOfLineIs)
	ctx.Step(`^the wizard is at step "([^"]*)"$`, tc.theWizardIsAtStep)
	ctx.Step(`^an order for (\d+) was submitted$`, tc.anOrderForWasSubmitted)
	ctx.Step(`^dismissing the wizard reports order "([^"]*)"$`, tc.dismissingTheWizardReportsOrder)
	ctx.Step(`^the wizard shows the error "([^"]*)"$`, tc.theWizardShowsTheError)
	ctx.Step(`^order "([^"]*)" is "([^"]*)"$`, tc.orderIs)
	ctx.Step(`^no status update was sent$`, tc.noStatusUpdateWasSent)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../features"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
