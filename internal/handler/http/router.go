package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muhammadnurdiansyahutama/Toko-Buahku/internal/service"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/health"
	"github.com/muhammadnurdiansyahutama/Toko-Buahku/pkg/middleware"
)

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	workspaces *service.Workspaces,
	healthHandler *health.Handler,
	logger *slog.Logger,
	corsOrigins []string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(corsOrigins)))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.Tracing("storefront"))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	h := NewStorefrontHandler(workspaces, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(IdentityFromHeaders)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Post("/reload", h.ReloadCart)
			r.Put("/selection", h.SelectAll)
			r.Put("/items/{itemId}/selection", h.SelectItem)
			r.Put("/items/{itemId}/quantity", h.SetQuantity)
			r.Post("/items/{itemId}/increase", h.IncreaseQuantity)
			r.Post("/items/{itemId}/decrease", h.DecreaseQuantity)
			r.Delete("/items/{itemId}", h.RemoveItem)
			r.Get("/vouchers", h.ListVouchers)
			r.Post("/voucher", h.ApplyVoucher)
			r.Delete("/voucher", h.RemoveVoucher)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.BeginCheckout)
			r.Get("/", h.GetCheckout)
			r.Delete("/", h.DismissCheckout)
			r.Put("/address", h.SetShippingAddress)
			r.Put("/payment", h.SetPaymentMethod)
			r.Put("/notes", h.SetNotes)
			r.Post("/next", h.NextStep)
			r.Post("/previous", h.PreviousStep)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.ListBuyerOrders)
			r.Post("/{orderRef}/reorder", h.Reorder)
		})

		r.Route("/seller", func(r chi.Router) {
			r.Get("/dashboard", h.Dashboard)
			r.Get("/orders", h.ListSellerOrders)
			r.Post("/orders/{orderId}/accept", h.AcceptOrder)
			r.Post("/orders/{orderId}/reject", h.RejectOrder)
			r.Post("/orders/{orderId}/ship", h.ShipOrder)
			r.Post("/orders/{orderId}/complete", h.CompleteOrder)
		})
	})

	return r
}
