package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/event"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// Dependencies are shared by every workspace.
type Dependencies struct {
	Carts     repository.CartStore
	Vouchers  repository.VoucherStore
	Orders    repository.OrderStore
	Dashboard repository.DashboardStore
	Publisher event.Publisher
	Logger    *slog.Logger

	ShippingCost    int64
	DefaultSellerID string
	Now             func() time.Time
}

// Workspace is one user's storefront state: their session, cart, open
// checkout and order views. Callers must hold the workspace lock while using
// it.
type Workspace struct {
	mu sync.Mutex

	Session   *session.Session
	Cart      *Cart
	Seller    *OrderLifecycle
	Buyer     *BuyerOrders
	Dashboard *Dashboard

	deps     *Dependencies
	checkout *CheckoutWizard
	// lastUsed is guarded by the registry lock.
	lastUsed time.Time
}

func newWorkspace(deps *Dependencies) *Workspace {
	sess := session.New()
	logger := deps.Logger.With(slog.String("session_id", sess.ID()))
	return &Workspace{
		Session: sess,
		Cart: NewCart(deps.Carts, deps.Vouchers, sess, CartConfig{
			ShippingCost:    deps.ShippingCost,
			VoucherSellerID: deps.DefaultSellerID,
		}, logger),
		Seller:    NewOrderLifecycle(deps.Orders, deps.Publisher, sess, logger),
		Buyer:     NewBuyerOrders(deps.Orders, deps.Carts, deps.Publisher, sess, logger),
		Dashboard: NewDashboard(deps.Dashboard, sess, logger),
		deps:      deps,
	}
}

// Lock acquires the workspace.
func (w *Workspace) Lock() { w.mu.Lock() }

// Unlock releases the workspace.
func (w *Workspace) Unlock() { w.mu.Unlock() }

// BeginCheckout opens a wizard over the selected cart lines, replacing any
// wizard that was still open.
func (w *Workspace) BeginCheckout() (*CheckoutWizard, error) {
	wizard, err := w.Cart.BeginCheckout(w.deps.Orders, CheckoutDeps{
		SellerID:  w.deps.DefaultSellerID,
		Publisher: w.deps.Publisher,
		Logger:    w.Cart.logger,
		Now:       w.deps.Now,
	})
	if err != nil {
		return nil, err
	}
	w.checkout = wizard
	return wizard, nil
}

// Checkout returns the open wizard.
func (w *Workspace) Checkout() (*CheckoutWizard, error) {
	if w.checkout == nil {
		return nil, apperrors.NotFound("checkout", "current")
	}
	return w.checkout, nil
}

// DismissCheckout closes the open wizard and lets the cart react to the outcome.
func (w *Workspace) DismissCheckout(ctx context.Context) (Outcome, error) {
	wizard, err := w.Checkout()
	if err != nil {
		return Outcome{}, err
	}
	outcome := wizard.Dismiss()
	w.checkout = nil
	w.Cart.CompleteCheckout(ctx, outcome)
	return outcome, nil
}

// Reorder re-adds an order's lines to the cart and reloads the cart when
// anything was added.
func (w *Workspace) Reorder(ctx context.Context, orderRef string) (ReorderResult, error) {
	order, ok := w.Buyer.Find(orderRef)
	if !ok {
		if err := w.Buyer.Refresh(ctx); err != nil {
			return ReorderResult{}, err
		}
		if order, ok = w.Buyer.Find(orderRef); !ok {
			return ReorderResult{}, apperrors.NotFound("order", orderRef)
		}
	}

	result, err := w.Buyer.Reorder(ctx, order)
	if err != nil {
		return result, err
	}
	if err := w.Cart.Reload(ctx); err != nil {
		w.Cart.logger.WarnContext(ctx, "cart reload after reorder failed", slog.String("error", err.Error()))
	}
	return result, nil
}

func (w *Workspace) close() {
	w.Cart.Close()
	w.Session.Clear()
}

// Workspaces keeps one workspace per signed-in user.
type Workspaces struct {
	deps *Dependencies

	mu     sync.Mutex
	byUser map[string]*Workspace
	now    func() time.Time
}

// NewWorkspaces creates an empty registry.
func NewWorkspaces(deps Dependencies) *Workspaces {
	if deps.Publisher == nil {
		deps.Publisher = event.NoopPublisher{}
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &Workspaces{
		deps:   &deps,
		byUser: make(map[string]*Workspace),
		now:    now,
	}
}

// Acquire returns the locked workspace of identity, creating it on first use,
// and signs identity in to its session. Call Unlock when done.
func (r *Workspaces) Acquire(identity domain.Identity) *Workspace {
	r.mu.Lock()
	w, ok := r.byUser[identity.UserID]
	if !ok {
		w = newWorkspace(r.deps)
		r.byUser[identity.UserID] = w
	}
	w.lastUsed = r.now()
	r.mu.Unlock()

	w.Lock()
	w.Session.SetIdentity(identity)
	return w
}

// Len returns the number of live workspaces.
func (r *Workspaces) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

// Sweep drops workspaces idle for longer than idle and returns how many went.
// Workspaces in use are skipped.
func (r *Workspaces) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for userID, w := range r.byUser {
		if !w.mu.TryLock() {
			continue
		}
		if w.lastUsed.Before(cutoff) {
			w.close()
			delete(r.byUser, userID)
			removed++
		}
		w.mu.Unlock()
	}
	return removed
}

// Run sweeps idle workspaces every interval until ctx is done.
func (r *Workspaces) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.deps.Logger.Info("swept idle workspaces", slog.Int("count", n))
			}
		}
	}
}
