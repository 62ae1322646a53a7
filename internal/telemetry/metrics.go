package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	QuotesTotal     *prometheus.CounterVec
	QuoteDuration   *prometheus.HistogramVec
	OrdersTotal     *prometheus.CounterVec
	NotifyFailures  prometheus.Counter
	TokenExchanges  prometheus.Counter
}

// NewMetrics creates and registers Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		QuotesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barshshop_quotes_total",
				Help: "Total number of delivery quote resolutions by carrier and outcome",
			},
			[]string{"carrier", "outcome"},
		),
		QuoteDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "barshshop_quote_duration_seconds",
				Help:    "Delivery quote resolution duration in seconds by carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"carrier"},
		),
		OrdersTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "barshshop_orders_total",
				Help: "Total order submissions by outcome",
			},
			[]string{"outcome"},
		),
		NotifyFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "barshshop_notify_failures_total",
				Help: "Total failed order notification dispatches",
			},
		),
		TokenExchanges: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "barshshop_cdek_token_exchanges_total",
				Help: "Total CDEK credential exchanges performed",
			},
		),
	}
}

// RecordQuote records a quote resolution metric.
func (m *Metrics) RecordQuote(carrier, outcome string, duration float64) {
	m.QuotesTotal.WithLabelValues(carrier, outcome).Inc()
	m.QuoteDuration.WithLabelValues(carrier).Observe(duration)
}

// RecordOrder records an order submission metric.
func (m *Metrics) RecordOrder(outcome string) {
	m.OrdersTotal.WithLabelValues(outcome).Inc()
}
