package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ScansTotal tracks completed analysis runs per address
	ScansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noncegap_scans_total",
			Help: "Total number of completed nonce-gap scans",
		},
		[]string{"address"},
	)

	// ScanErrorsTotal tracks failed snapshot fetches per address
	ScanErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noncegap_scan_errors_total",
			Help: "Total number of failed nonce-gap scans",
		},
		[]string{"address"},
	)

	// GapsDetected tracks currently detected gaps per address and location
	GapsDetected = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_gaps_detected",
			Help: "Gaps detected in the most recent scan",
		},
		[]string{"address", "location"},
	)

	// ConfirmedNonce tracks the confirmed on-chain nonce per address
	ConfirmedNonce = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_confirmed_nonce",
			Help: "Confirmed on-chain nonce at the last scan",
		},
		[]string{"address"},
	)

	// PendingNonces tracks the size of the pending set per address
	PendingNonces = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_pending_nonces",
			Help: "Number of pending-tier nonces in the pool",
		},
		[]string{"address"},
	)

	// QueuedNonces tracks the size of the queued set per address
	QueuedNonces = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_queued_nonces",
			Help: "Number of queued-tier nonces in the pool",
		},
		[]string{"address"},
	)

	// PoolPendingTotal tracks pool-wide pending transactions per chain
	PoolPendingTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_pool_pending_total",
			Help: "Pool-wide pending transaction count",
		},
		[]string{"chain"},
	)

	// PoolQueuedTotal tracks pool-wide queued transactions per chain
	PoolQueuedTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "noncegap_pool_queued_total",
			Help: "Pool-wide queued transaction count",
		},
		[]string{"chain"},
	)

	// RPCCallsTotal tracks RPC calls per provider and method
	RPCCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noncegap_rpc_calls_total",
			Help: "Total number of RPC calls",
		},
		[]string{"provider", "method"},
	)

	// RPCErrorsTotal tracks RPC errors per provider and method
	RPCErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "noncegap_rpc_errors_total",
			Help: "Total number of RPC errors",
		},
		[]string{"provider", "method"},
	)

	// RPCLatency tracks RPC call latency
	RPCLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "noncegap_rpc_latency_seconds",
			Help:    "RPC call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider", "method"},
	)
)
