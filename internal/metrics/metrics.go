package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersPlaced counts order rows created, by entry path (buy_now, checkout).
	OrdersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Order rows created",
		},
		[]string{"path"},
	)

	// OrderStatusChanges counts status writes by target status.
	OrderStatusChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Order status transitions",
		},
		[]string{"status"},
	)

	// CartMutations counts cart writes by action (add, inc, dec, remove).
	CartMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_mutations_total",
			Help: "Cart line writes",
		},
		[]string{"action"},
	)

	// AuthEvents counts account events by kind and outcome.
	AuthEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_events_total",
			Help: "Login, registration and password reset attempts",
		},
		[]string{"event", "outcome"},
	)
)
