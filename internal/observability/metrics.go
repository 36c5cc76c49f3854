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
	// Ledger metrics
	StakesTotal       prometheus.Counter
	UnstakesTotal     prometheus.Counter
	OperationFailures *prometheus.CounterVec
	TotalStakedTokens prometheus.Gauge
	RewardsPaidTokens prometheus.Counter

	// Faucet and transfer metrics
	ClaimsTotal    prometheus.Counter
	TransfersTotal *prometheus.CounterVec

	// Latency metrics
	OperationLatency *prometheus.HistogramVec

	// Stream metrics
	StreamSubscribers prometheus.Gauge

	// Health metrics
	LastSuccessfulOperation prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "devrewards_ledger"
	}

	return &Metrics{
		StakesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staking",
			Name:      "stakes_total",
			Help:      "Total number of stake positions opened",
		}),
		UnstakesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staking",
			Name:      "unstakes_total",
			Help:      "Total number of stake positions closed",
		}),
		OperationFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_failures_total",
			Help:      "Total number of failed ledger operations by operation and reason",
		}, []string{"operation", "reason"}),
		TotalStakedTokens: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "staking",
			Name:      "total_staked_base_units",
			Help:      "Current total staked amount in base units",
		}),
		RewardsPaidTokens: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "staking",
			Name:      "rewards_paid_base_units_total",
			Help:      "Total rewards paid out in base units",
		}),

		ClaimsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "faucet",
			Name:      "claims_total",
			Help:      "Total number of successful faucet claims",
		}),
		TransfersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "token",
			Name:      "transfers_total",
			Help:      "Total number of successful transfers by authorization mode",
		}, []string{"mode"}),

		OperationLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "operation_latency_seconds",
			Help:      "Ledger operation latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),

		StreamSubscribers: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "subscribers",
			Help:      "Number of connected event stream subscribers",
		}),

		LastSuccessfulOperation: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_operation_timestamp",
			Help:      "Unix timestamp of last successful ledger operation",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStake records a successful stake and the resulting totals.
func (m *Metrics) RecordStake(totalStaked uint64) {
	m.StakesTotal.Inc()
	m.TotalStakedTokens.Set(float64(totalStaked))
}

// RecordUnstake records a successful unstake and the rewards it paid.
func (m *Metrics) RecordUnstake(totalStaked, rewards uint64) {
	m.UnstakesTotal.Inc()
	m.TotalStakedTokens.Set(float64(totalStaked))
	m.RewardsPaidTokens.Add(float64(rewards))
}

// RecordFailure records a failed ledger operation.
func (m *Metrics) RecordFailure(operation, reason string) {
	m.OperationFailures.WithLabelValues(operation, reason).Inc()
}

// RecordLatency records the duration of a ledger operation.
func (m *Metrics) RecordLatency(operation string, seconds float64) {
	m.OperationLatency.WithLabelValues(operation).Observe(seconds)
}
