package service

import (
	"context"
	"log/slog"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/domain"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/repository"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/session"
	apperrors "github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/errors"
)

// DashboardView is the seller dashboard. Degraded is set when the stats could
// not be loaded and zero values are shown instead.
type DashboardView struct {
	Stats    domain.DashboardStats `json:"stats"`
	Degraded bool                  `json:"degraded"`
	Message  string                `json:"message,omitempty"`
}

// Dashboard reads the seller dashboard.
type Dashboard struct {
	store   repository.DashboardStore
	session *session.Session
	logger  *slog.Logger
}

// NewDashboard creates a dashboard for the seller signed in to sess.
func NewDashboard(store repository.DashboardStore, sess *session.Session, logger *slog.Logger) *Dashboard {
	return &Dashboard{store: store, session: sess, logger: logger}
}

// Load fetches the dashboard. A remote failure degrades to zero stats.
func (d *Dashboard) Load(ctx context.Context) (DashboardView, error) {
	identity, ok := d.session.Current()
	if !ok {
		return DashboardView{}, apperrors.Unauthorized("sign in to view the dashboard")
	}
	if !identity.IsSeller() {
		return DashboardView{}, apperrors.Forbidden("only sellers have a dashboard")
	}

	stats, err := d.store.Stats(ctx, identity.UserID)
	if err != nil {
		d.logger.WarnContext(ctx, "dashboard stats unavailable",
			slog.String("seller_id", identity.UserID),
			slog.String("error", err.Error()),
		)
		return DashboardView{
			Stats:    emptyStats(),
			Degraded: true,
			Message:  apperrors.UserMessage(err, apperrors.GenericFailureMessage),
		}, nil
	}

	return DashboardView{Stats: *stats}, nil
}

func emptyStats() domain.DashboardStats {
	return domain.DashboardStats{
		TopProducts:      []domain.TopProduct{},
		RecentOrders:     []domain.RecentOrderSummary{},
		LowStockProducts: []string{},
	}
}
