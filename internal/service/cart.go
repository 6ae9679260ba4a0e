package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/pricing"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// CartConfig holds the pricing inputs a cart needs besides its lines.
type CartConfig struct {
	ShippingCost int64
	// VoucherSellerID is the seller whose active vouchers a buyer can pick.
	VoucherSellerID string
}

// Cart is the buyer's shopping cart aggregate. Lines are owned by the remote
// API; selection and the applied voucher are owned here. A Cart is not safe
// for concurrent use.
type Cart struct {
	store    repository.CartStore
	vouchers repository.VoucherStore
	session  *session.Session
	logger   *slog.Logger
	cfg      CartConfig

	ownerID       string
	items         []domain.CartLineItem
	voucher       *domain.Voucher
	applied       *domain.AppliedVoucher
	lastRejection *pricing.VoucherRejection

	unsubscribe func()
}

// NewCart creates a cart bound to sess. The cart empties itself when the
// session signs out or switches user.
func NewCart(store repository.CartStore, vouchers repository.VoucherStore, sess *session.Session, cfg CartConfig, logger *slog.Logger) *Cart {
	c := &Cart{
		store:    store,
		vouchers: vouchers,
		session:  sess,
		logger:   logger,
		cfg:      cfg,
	}
	c.unsubscribe = sess.Subscribe(c.onIdentityChange)
	return c
}

// Close detaches the cart from its session.
func (c *Cart) Close() {
	c.unsubscribe()
}

func (c *Cart) onIdentityChange(identity domain.Identity, ok bool) {
	if ok && identity.UserID == c.ownerID {
		return
	}
	c.reset()
}

func (c *Cart) reset() {
	c.ownerID = ""
	c.items = nil
	c.voucher = nil
	c.applied = nil
	c.lastRejection = nil
}

func (c *Cart) buyer() (domain.Identity, error) {
	identity, ok := c.session.Current()
	if !ok {
		return domain.Identity{}, apperrors.Unauthorized("sign in to use the cart")
	}
	return identity, nil
}

// Load fetches the cart from the remote API and selects every line.
func (c *Cart) Load(ctx context.Context) error {
	identity, err := c.buyer()
	if err != nil {
		return err
	}

	items, err := c.store.GetCart(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	for i := range items {
		items[i].Selected = true
	}
	c.ownerID = identity.UserID
	c.items = items
	c.reevaluate(ctx)

	c.logger.DebugContext(ctx, "cart loaded",
		slog.String("user_id", identity.UserID),
		slog.Int("lines", len(items)),
	)
	return nil
}

// Reload re-fetches the cart, keeping the selection of lines that still
// exist. New lines come back selected.
func (c *Cart) Reload(ctx context.Context) error {
	identity, err := c.buyer()
	if err != nil {
		return err
	}

	deselected := make(map[string]bool)
	for _, item := range c.items {
		if !item.Selected {
			deselected[item.ID] = true
		}
	}

	items, err := c.store.GetCart(ctx, identity.UserID)
	if err != nil {
		return fmt.Errorf("reload cart: %w", err)
	}

	for i := range items {
		items[i].Selected = !deselected[items[i].ID]
	}
	c.ownerID = identity.UserID
	c.items = items
	c.reevaluate(ctx)
	return nil
}

// Loaded reports whether the cart holds the signed-in buyer's lines.
func (c *Cart) Loaded() bool {
	identity, ok := c.session.Current()
	return ok && c.ownerID == identity.UserID
}

// Items returns a copy of the cart lines in server order.
func (c *Cart) Items() []domain.CartLineItem {
	out := make([]domain.CartLineItem, len(c.items))
	copy(out, c.items)
	return out
}

// SelectedItems returns a copy of the selected lines.
func (c *Cart) SelectedItems() []domain.CartLineItem {
	var out []domain.CartLineItem
	for _, item := range c.items {
		if item.Selected {
			out = append(out, item)
		}
	}
	return out
}

// AllSelected reports whether the cart is non-empty and every line is selected.
func (c *Cart) AllSelected() bool {
	if len(c.items) == 0 {
		return false
	}
	for _, item := range c.items {
		if !item.Selected {
			return false
		}
	}
	return true
}

// Totals derives the payable totals from the current state.
func (c *Cart) Totals() domain.CartTotals {
	return pricing.ComputeTotals(c.items, c.applied, c.cfg.ShippingCost)
}

// AppliedVoucher returns the voucher currently discounting the cart, if any.
func (c *Cart) AppliedVoucher() *domain.AppliedVoucher {
	if c.applied == nil {
		return nil
	}
	applied := *c.applied
	return &applied
}

// LastVoucherRejection explains why the voucher was last cleared or refused.
func (c *Cart) LastVoucherRejection() *pricing.VoucherRejection {
	return c.lastRejection
}

// SetSelected marks one line as selected or not.
func (c *Cart) SetSelected(ctx context.Context, itemID string, selected bool) error {
	i := c.indexOf(itemID)
	if i < 0 {
		return apperrors.NotFound("cart item", itemID)
	}
	c.items[i].Selected = selected
	c.reevaluate(ctx)
	return nil
}

// SetSelectAll selects or deselects every line.
func (c *Cart) SetSelectAll(ctx context.Context, selected bool) {
	for i := range c.items {
		c.items[i].Selected = selected
	}
	c.reevaluate(ctx)
}

// SetQuantity changes the quantity of one line on the remote API. A quantity
// below 1 or equal to the current one is a no-op. A quantity above the line's
// stock ceiling is refused locally. When the remote call fails the cart is
// reloaded so it shows what the server holds.
func (c *Cart) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	i := c.indexOf(itemID)
	if i < 0 {
		return apperrors.NotFound("cart item", itemID)
	}

	item := c.items[i]
	if quantity < 1 || quantity == item.Quantity {
		return nil
	}
	if ceiling := item.StockCeiling(); quantity > ceiling {
		return apperrors.Validation(fmt.Sprintf("only %d of %s in stock", ceiling, item.Name))
	}

	err := c.store.UpdateQuantity(ctx, itemID, quantity)
	cartOperationsTotal.WithLabelValues("update_quantity", resultLabel(err)).Inc()
	if err != nil {
		c.logger.WarnContext(ctx, "cart quantity update failed, reloading",
			slog.String("item_id", itemID),
			slog.Int("quantity", quantity),
			slog.String("error", err.Error()),
		)
		c.reloadAfterFailure(ctx)
		return fmt.Errorf("update quantity of %s: %w", itemID, err)
	}

	c.items[i].Quantity = quantity
	c.reevaluate(ctx)
	return nil
}

// IncreaseQuantity adds one to a line's quantity.
func (c *Cart) IncreaseQuantity(ctx context.Context, itemID string) error {
	i := c.indexOf(itemID)
	if i < 0 {
		return apperrors.NotFound("cart item", itemID)
	}
	return c.SetQuantity(ctx, itemID, c.items[i].Quantity+1)
}

// DecreaseQuantity removes one from a line's quantity. It never goes below 1.
func (c *Cart) DecreaseQuantity(ctx context.Context, itemID string) error {
	i := c.indexOf(itemID)
	if i < 0 {
		return apperrors.NotFound("cart item", itemID)
	}
	return c.SetQuantity(ctx, itemID, c.items[i].Quantity-1)
}

// RemoveItem deletes a line on the remote API and reloads the cart.
func (c *Cart) RemoveItem(ctx context.Context, itemID string) error {
	if c.indexOf(itemID) < 0 {
		return apperrors.NotFound("cart item", itemID)
	}

	err := c.store.Remove(ctx, itemID)
	cartOperationsTotal.WithLabelValues("remove", resultLabel(err)).Inc()
	if err != nil {
		c.logger.WarnContext(ctx, "cart item removal failed, reloading",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
		c.reloadAfterFailure(ctx)
		return fmt.Errorf("remove cart item %s: %w", itemID, err)
	}

	if err := c.Reload(ctx); err != nil {
		c.logger.WarnContext(ctx, "cart reload after removal failed",
			slog.String("item_id", itemID),
			slog.String("error", err.Error()),
		)
		c.dropLocal(ctx, itemID)
	}
	return nil
}

// ApplyVoucher evaluates v against the selected subtotal and applies it. A nil
// voucher removes the current one. A refused voucher leaves the cart as it was
// and the error wraps both the validation error and the *pricing.VoucherRejection.
func (c *Cart) ApplyVoucher(ctx context.Context, v *domain.Voucher) error {
	if v == nil {
		c.voucher = nil
		c.applied = nil
		c.lastRejection = nil
		return nil
	}

	applied, rejection := pricing.Evaluate(v, pricing.Subtotal(c.items))
	if rejection != nil {
		c.lastRejection = rejection
		return rejectionError(rejection)
	}

	voucher := *v
	c.voucher = &voucher
	c.applied = applied
	c.lastRejection = nil

	c.logger.DebugContext(ctx, "voucher applied",
		slog.String("code", v.Code),
		slog.Int64("discount", applied.DiscountAmount),
	)
	return nil
}

// ApplyVoucherCode looks a voucher up by code and applies it.
func (c *Cart) ApplyVoucherCode(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return apperrors.Validation("voucher code is required")
	}

	v, err := c.vouchers.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.Validation(fmt.Sprintf("voucher %s does not exist", code))
		}
		return fmt.Errorf("look up voucher %s: %w", code, err)
	}
	if v.Status != "" && v.Status != domain.VoucherStatusActive {
		return apperrors.Validation(fmt.Sprintf("voucher %s is no longer active", v.Code))
	}
	return c.ApplyVoucher(ctx, v)
}

// AvailableVouchers lists the active vouchers a buyer can pick. The list
// degrades to empty when it cannot be loaded.
func (c *Cart) AvailableVouchers(ctx context.Context) []domain.Voucher {
	vouchers, err := c.vouchers.List(ctx, c.cfg.VoucherSellerID, domain.VoucherStatusActive)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to load vouchers",
			slog.String("seller_id", c.cfg.VoucherSellerID),
			slog.String("error", err.Error()),
		)
		return []domain.Voucher{}
	}
	return vouchers
}

// BeginCheckout snapshots the selected lines into a new checkout wizard.
func (c *Cart) BeginCheckout(orders repository.OrderStore, deps CheckoutDeps) (*CheckoutWizard, error) {
	identity, err := c.buyer()
	if err != nil {
		return nil, err
	}

	selected := c.SelectedItems()
	if len(selected) == 0 {
		return nil, apperrors.Validation("select at least one item to check out")
	}

	var voucherCode string
	if c.applied != nil {
		voucherCode = c.applied.Code
	}

	return newCheckoutWizard(orders, deps, checkoutSnapshot{
		buyer: domain.BuyerInfo{
			UserID: identity.UserID,
			Name:   identity.Name,
			Email:  identity.Email,
			Phone:  identity.Phone,
		},
		items:       selected,
		totals:      c.Totals(),
		voucherCode: voucherCode,
	}), nil
}

// CompleteCheckout updates the cart after the wizard was dismissed. After a
// placed order the voucher is spent and the cart is reloaded, since the
// server removes ordered lines.
func (c *Cart) CompleteCheckout(ctx context.Context, outcome Outcome) {
	if !outcome.Success {
		return
	}

	c.voucher = nil
	c.applied = nil
	c.lastRejection = nil

	if err := c.Load(ctx); err != nil {
		c.logger.WarnContext(ctx, "cart reload after checkout failed",
			slog.String("order_number", outcome.OrderNumber),
			slog.String("error", err.Error()),
		)
	}
}

// reevaluate re-applies the voucher to the current subtotal, clearing it when
// the minimum purchase is no longer met.
func (c *Cart) reevaluate(ctx context.Context) {
	if c.voucher == nil {
		c.applied = nil
		return
	}

	applied, rejection := pricing.Evaluate(c.voucher, pricing.Subtotal(c.items))
	if rejection != nil {
		c.logger.InfoContext(ctx, "voucher cleared",
			slog.String("code", c.voucher.Code),
			slog.String("reason", string(rejection.Reason)),
			slog.Int64("min_purchase", rejection.MinPurchase),
		)
		c.voucher = nil
		c.applied = nil
		c.lastRejection = rejection
		return
	}
	c.applied = applied
}

func (c *Cart) reloadAfterFailure(ctx context.Context) {
	if err := c.Reload(ctx); err != nil {
		c.logger.WarnContext(ctx, "cart reload failed", slog.String("error", err.Error()))
	}
}

func (c *Cart) dropLocal(ctx context.Context, itemID string) {
	if i := c.indexOf(itemID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.reevaluate(ctx)
	}
}

func (c *Cart) indexOf(itemID string) int {
	for i, item := range c.items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// rejectionError maps a voucher rejection to a validation error that still
// unwraps to the rejection.
func rejectionError(r *pricing.VoucherRejection) error {
	var msg string
	switch r.Reason {
	case pricing.MinPurchaseNotMet:
		msg = fmt.Sprintf("minimum purchase for voucher %s is Rp %d", r.Code, r.MinPurchase)
	default:
		msg = fmt.Sprintf("voucher %s cannot be used", r.Code)
	}
	return fmt.Errorf("%w: %w", apperrors.Validation(msg), r)
}

// isLocalRejection reports whether err was refused before or by the remote
// rather than failing in transit.
func isLocalRejection(err error) bool {
	return errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrRemoteRejected)
}
