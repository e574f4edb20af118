// Package metrics собирает метрики корзины и оформления заказов в отдельном реестре Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmeshcher/vinayak-store/internal/cart"
)

// Registry хранит метрики магазина.
type Registry struct {
	reg *prometheus.Registry

	CartOperations  *prometheus.CounterVec
	OrdersPlaced    prometheus.Counter
	OrdersFailed    prometheus.Counter
	CheckoutLatency prometheus.Histogram
	EventsFailed    prometheus.Counter
}

// NewRegistry создаёт и регистрирует метрики.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_cart_operations_total",
		Help: "Cart operations by outcome.",
	}, []string{"outcome"})
	placed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_placed_total"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_orders_failed_total"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "storefront_checkout_latency_seconds",
		Buckets: prometheus.DefBuckets,
	})
	eventsFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_order_events_failed_total"})

	r.MustRegister(cartOps, placed, failed, latency, eventsFailed)
	return &Registry{
		reg:             r,
		CartOperations:  cartOps,
		OrdersPlaced:    placed,
		OrdersFailed:    failed,
		CheckoutLatency: latency,
		EventsFailed:    eventsFailed,
	}
}

// ObserveCart учитывает исход операции над корзиной.
func (r *Registry) ObserveCart(outcome cart.Outcome) {
	r.CartOperations.WithLabelValues(string(outcome)).Inc()
}

// ObserveCheckout учитывает результат и длительность оформления.
func (r *Registry) ObserveCheckout(d time.Duration, err error) {
	r.CheckoutLatency.Observe(d.Seconds())
	if err != nil {
		r.OrdersFailed.Inc()
		return
	}
	r.OrdersPlaced.Inc()
}

// ObserveEventFailure учитывает неотправленное событие заказа.
func (r *Registry) ObserveEventFailure() { r.EventsFailed.Inc() }

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
