package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart mutations sent to the storefront API by operation and result.",
		},
		[]string{"operation", "result"},
	)

	checkoutSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_checkout_submissions_total",
			Help: "Order submissions from the checkout wizard by result.",
		},
		[]string{"result"},
	)

	orderTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_transitions_total",
			Help: "Seller order status transitions by target status and result.",
		},
		[]string{"target", "result"},
	)

	reorderLinesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_reorder_lines_total",
			Help: "Order lines re-added to a cart by result.",
		},
		[]string{"result"},
	)
)

// Result label values.
const (
	resultSuccess  = "success"
	resultRejected = "rejected"
	resultFailed   = "failed"
)

// resultLabel classifies err for the result label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return resultSuccess
	case isLocalRejection(err):
		return resultRejected
	default:
		return resultFailed
	}
}
