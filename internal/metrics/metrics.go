// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "watchlist"

var (
	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Decision sessions currently held in memory.",
	})

	Decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Committed swipe decisions.",
	}, []string{"decision"})

	Winners = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "winners_total",
		Help:      "Selected winners, by how they were selected (auto, manual).",
	}, []string{"via"})

	StoreCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_calls_total",
		Help:      "Calls to the entry store, by operation and result.",
	}, []string{"op", "result"})

	PoolCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pool_cache_lookups_total",
		Help:      "Candidate pool cache lookups (hit, miss, error, bypass).",
	}, []string{"result"})

	// 0 = closed, 1 = open, 2 = half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state.",
	}, []string{"name"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Open websocket drag streams.",
	})
)
