// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Poller metrics
	PollRunsTotal   *prometheus.CounterVec
	PollErrorsTotal *prometheus.CounterVec
	PollDuration    *prometheus.HistogramVec

	// Chain access metrics
	RPCCallLatency  *prometheus.HistogramVec
	RPCCallErrors   *prometheus.CounterVec
	ExplorerLatency prometheus.Histogram

	// Dashboard state gauges
	GasPriceGwei     prometheus.Gauge
	TokenPriceUsd    prometheus.Gauge
	PoolAprPercent   *prometheus.GaugeVec
	StakingTvlTokens prometheus.Gauge

	// Whale metrics
	WhaleAlertsTotal   prometheus.Counter
	WhaleTransfersSeen prometheus.Counter

	// Compound metrics
	CompoundRunsTotal  *prometheus.CounterVec
	CompoundStepsTotal *prometheus.CounterVec

	// HTTP API metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "sld_dashboard"
	}

	return &Metrics{
		PollRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "runs_total",
			Help:      "Total poll iterations by loop",
		}, []string{"loop"}),
		PollErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "errors_total",
			Help:      "Total failed poll iterations by loop",
		}, []string{"loop"}),
		PollDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "poller",
			Name:      "duration_seconds",
			Help:      "Poll iteration duration by loop",
			Buckets:   prometheus.DefBuckets,
		}, []string{"loop"}),

		RPCCallLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "rpc_call_duration_seconds",
			Help:      "JSON-RPC call duration by method",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		RPCCallErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chain",
			Name:      "rpc_call_errors_total",
			Help:      "Total failed JSON-RPC calls by method",
		}, []string{"method"}),
		ExplorerLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "explorer",
			Name:      "request_duration_seconds",
			Help:      "Explorer API request duration",
			Buckets:   prometheus.DefBuckets,
		}),

		GasPriceGwei: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gas_price_gwei",
			Help:      "Last sampled median gas price in gwei",
		}),
		TokenPriceUsd: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "token_price_usd",
			Help:      "Last fetched token price in USD",
		}),
		PoolAprPercent: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pool_apr_percent",
			Help:      "Last snapshotted APR by pool",
		}, []string{"pool"}),
		StakingTvlTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "staking_tvl_tokens",
			Help:      "Token balance held by the staking contract",
		}),

		WhaleAlertsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whale",
			Name:      "alerts_total",
			Help:      "Total whale alerts emitted",
		}),
		WhaleTransfersSeen: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "whale",
			Name:      "transfers_seen_total",
			Help:      "Total transfer rows examined",
		}),

		CompoundRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compound",
			Name:      "runs_total",
			Help:      "Total compound chain runs by outcome",
		}, []string{"outcome"}),
		CompoundStepsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "compound",
			Name:      "steps_total",
			Help:      "Total confirmed compound steps by name",
		}, []string{"step"}),

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route and status",
		}, []string{"route", "status"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
