// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Webhook metrics
	WebhooksReceived       prometheus.Counter
	EventsProcessed        *prometheus.CounterVec
	EventProcessingLatency prometheus.Histogram
	LedgerSize             prometheus.Gauge

	// Simulation metrics
	TradesOpened     prometheus.Counter
	TradesSettled    *prometheus.CounterVec
	PendingTrades    prometheus.Gauge
	CumulativeProfit prometheus.Gauge
	TradeReturnPct   prometheus.Histogram

	// Quote metrics
	QuoteFetchLatency prometheus.Histogram
	QuoteFetchErrors  prometheus.Counter

	// Health metrics
	LastWebhookTimestamp prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "solana_pool_sniper"
	}

	return &Metrics{
		// Webhook metrics
		WebhooksReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "received_total",
			Help:      "Total number of webhook deliveries received",
		}),
		EventsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "events_processed_total",
			Help:      "Total number of notifications processed by outcome",
		}, []string{"outcome"}),
		EventProcessingLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "event_processing_latency_seconds",
			Help:      "Notification processing latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		LedgerSize: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "webhook",
			Name:      "dedup_ledger_size",
			Help:      "Number of transaction signatures remembered for dedup",
		}),

		// Simulation metrics
		TradesOpened: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_opened_total",
			Help:      "Total number of simulated trades opened",
		}),
		TradesSettled: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trades_settled_total",
			Help:      "Total number of simulated trades settled by terminal status",
		}, []string{"status"}),
		PendingTrades: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "pending_trades",
			Help:      "Number of simulated trades waiting for settlement",
		}),
		CumulativeProfit: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "cumulative_profit_sol",
			Help:      "Cumulative profit of completed simulated trades in SOL",
		}),
		TradeReturnPct: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "simulation",
			Name:      "trade_return_percent",
			Help:      "Percent return of completed simulated trades",
			Buckets:   []float64{-100, -50, -20, -10, 0, 10, 20, 50, 100, 500},
		}),

		// Quote metrics
		QuoteFetchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "fetch_latency_seconds",
			Help:      "Price quote fetch latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		QuoteFetchErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "quote",
			Name:      "fetch_errors_total",
			Help:      "Total number of failed price quote fetches",
		}),

		// Health metrics
		LastWebhookTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_webhook_timestamp",
			Help:      "Unix timestamp of the last webhook delivery",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordWebhookReceived counts one webhook delivery.
func RecordWebhookReceived() {
	DefaultMetrics.WebhooksReceived.Inc()
	DefaultMetrics.LastWebhookTimestamp.Set(float64(time.Now().Unix()))
}

// RecordEventOutcome records how a notification was handled.
func RecordEventOutcome(outcome string, seconds float64) {
	DefaultMetrics.EventsProcessed.WithLabelValues(outcome).Inc()
	DefaultMetrics.EventProcessingLatency.Observe(seconds)
}

// UpdateLedgerSize updates the dedup ledger size gauge.
func UpdateLedgerSize(n int) {
	DefaultMetrics.LedgerSize.Set(float64(n))
}

// RecordTradeOpened increments the opened counter and the pending gauge.
func RecordTradeOpened() {
	DefaultMetrics.TradesOpened.Inc()
	DefaultMetrics.PendingTrades.Inc()
}

// RecordTradeSettled records a terminal transition.
func RecordTradeSettled(status string) {
	DefaultMetrics.TradesSettled.WithLabelValues(status).Inc()
	DefaultMetrics.PendingTrades.Dec()
}

// RecordTradeReturn records the outcome of a completed trade.
func RecordTradeReturn(percentReturn, cumulativeProfit float64) {
	DefaultMetrics.TradeReturnPct.Observe(percentReturn)
	DefaultMetrics.CumulativeProfit.Set(cumulativeProfit)
}

// RecordQuoteFetch records quote fetch latency and errors.
func RecordQuoteFetch(seconds float64, err error) {
	DefaultMetrics.QuoteFetchLatency.Observe(seconds)
	if err != nil {
		DefaultMetrics.QuoteFetchErrors.Inc()
	}
}
