package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics counts settlement outcomes per order origin.
type CheckoutMetrics struct {
	ordersCreated     *prometheus.CounterVec
	couponRejections  prometheus.Counter
	stockRejections   prometheus.Counter
	orderTotalAmounts *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_created_total",
		Help: "Orders created at checkout, by origin.",
	}, []string{"origin"})
	couponRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_coupon_rejections_total",
		Help: "Checkouts rejected for an unknown or inactive coupon.",
	})
	stockRejections := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_stock_rejections_total",
		Help: "Checkouts rejected for insufficient stock.",
	})
	orderTotalAmounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_order_amount_total",
		Help: "Sum of settled order totals in minor currency units, by origin.",
	}, []string{"origin"})
	reg.MustRegister(ordersCreated, couponRejections, stockRejections, orderTotalAmounts)
	return &CheckoutMetrics{
		ordersCreated:     ordersCreated,
		couponRejections:  couponRejections,
		stockRejections:   stockRejections,
		orderTotalAmounts: orderTotalAmounts,
	}
}

// IncOrderCreated records a settled order and its total.
func (c *CheckoutMetrics) IncOrderCreated(origin string, totalAmount int64) {
	if c == nil || c.ordersCreated == nil {
		return
	}
	origin = normalizeLabel(origin)
	c.ordersCreated.WithLabelValues(origin).Inc()
	c.orderTotalAmounts.WithLabelValues(origin).Add(float64(totalAmount))
}

// IncCouponRejection counts a checkout refused over its coupon.
func (c *CheckoutMetrics) IncCouponRejection() {
	if c == nil || c.couponRejections == nil {
		return
	}
	c.couponRejections.Inc()
}

// IncStockRejection counts a checkout refused over stock.
func (c *CheckoutMetrics) IncStockRejection() {
	if c == nil || c.stockRejections == nil {
		return
	}
	c.stockRejections.Inc()
}
