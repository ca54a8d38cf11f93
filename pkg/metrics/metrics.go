package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders successfully created (idempotent replays excluded).",
	})
	PaymentsCaptured = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_captured_total",
		Help: "Payment captures reconciled exactly once.",
	})
	PaymentsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payments_failed_total",
		Help: "Payment failure events recorded.",
	})
	RefundsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "refunds_processed_total",
		Help: "Refund-processed events reconciled.",
	})
	AmountMismatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_amount_mismatches_total",
		Help: "Captured amounts that did not match the frozen order total; require manual reconciliation.",
	})
)

// Handler exposes the default prometheus registry for GET /metrics.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
