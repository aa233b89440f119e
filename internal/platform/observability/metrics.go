// Package observability registers the daemon's Prometheus metrics.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fave",
			Subsystem: "rpc",
			Name:      "requests_total",
			Help:      "Total JSON-RPC requests by method and outcome.",
		},
		[]string{"method", "success"},
	)
	rpcDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fave",
			Subsystem: "rpc",
			Name:      "request_duration_seconds",
			Help:      "JSON-RPC request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "success"},
	)
	listingOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fave",
			Subsystem: "listing",
			Name:      "outcomes_total",
			Help:      "Listing pipeline completions by terminal stage.",
		},
		[]string{"stage"},
	)
	ledgerSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fave",
			Subsystem: "ledger",
			Name:      "submissions_total",
			Help:      "Ledger issuance submissions by result.",
		},
		[]string{"result"},
	)
	reconciliationPending = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fave",
			Subsystem: "listing",
			Name:      "reconciliation_pending",
			Help:      "Listings committed on the ledger but not yet persisted locally.",
		},
	)
	notificationDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fave",
			Subsystem: "notify",
			Name:      "deliveries_total",
			Help:      "Per-subscriber notification delivery attempts.",
		},
		[]string{"success"},
	)
	activeSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "fave",
			Subsystem: "notify",
			Name:      "active_subscribers",
			Help:      "Currently registered notification subscribers.",
		},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			rpcRequests,
			rpcDuration,
			listingOutcomes,
			ledgerSubmissions,
			reconciliationPending,
			notificationDeliveries,
			activeSubscribers,
		)
	})
}

func RecordRPCRequest(method string, success bool, duration time.Duration) {
	RegisterMetrics()
	label := strconv.FormatBool(success)
	rpcRequests.WithLabelValues(method, label).Inc()
	rpcDuration.WithLabelValues(method, label).Observe(duration.Seconds())
}

// RecordListingOutcome counts one pipeline completion. The stage label is the
// stage the run ended in, "done" for a fully listed work.
func RecordListingOutcome(stage string) {
	RegisterMetrics()
	listingOutcomes.WithLabelValues(stage).Inc()
}

func RecordLedgerSubmission(success bool) {
	RegisterMetrics()
	result := "committed"
	if !success {
		result = "failed"
	}
	ledgerSubmissions.WithLabelValues(result).Inc()
}

func RecordNotificationDelivery(success bool) {
	RegisterMetrics()
	notificationDeliveries.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func SetReconciliationPending(n int) {
	RegisterMetrics()
	reconciliationPending.Set(float64(n))
}

func SetActiveSubscribers(n int) {
	RegisterMetrics()
	activeSubscribers.Set(float64(n))
}
