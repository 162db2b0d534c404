// Package metrics — Prometheus-коллекторы движка обсуждений.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "discussion"

// Исходы мутаций (метка outcome).
const (
	OutcomeConfirmed  = "confirmed"
	OutcomeRolledBack = "rolled_back"
	OutcomeRejected   = "rejected"
	OutcomeDiscarded  = "discarded"
)

var (
	// Rebuilds — полные перестроения леса. Labels: trigger (load, refresh, feed, mutation, overlay).
	Rebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tree",
		Name:      "rebuilds_total",
		Help:      "Total forest rebuilds by trigger",
	}, []string{"trigger"})

	// RebuildDuration — время build -> aggregate -> overlay для одного снимка.
	RebuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "tree",
		Name:      "rebuild_duration_seconds",
		Help:      "Forest rebuild latency in seconds",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	})

	// Fetches — загрузки из слоя данных. Labels: status (ok, error, stale).
	Fetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "fetches_total",
		Help:      "Total comment fetches by status",
	}, []string{"status"})

	// Mutations — оптимистичные мутации. Labels: op, outcome.
	Mutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "coordinator",
		Name:      "mutations_total",
		Help:      "Total optimistic mutations by operation and outcome",
	}, []string{"op", "outcome"})

	// FeedEvents — события канала изменений. Labels: kind.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "events_total",
		Help:      "Total change feed events by kind",
	}, []string{"kind"})

	// FeedRefreshes — перезагрузки, выпущенные дебаунсером.
	FeedRefreshes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "debounced_refreshes_total",
		Help:      "Total debounced refetch-rebuilds triggered by the change feed",
	})

	// FeedDegraded — подписки, деградировавшие до ручного обновления.
	FeedDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "feed",
		Name:      "subscribe_failures_total",
		Help:      "Total subscriptions that fell back to manual refresh",
	})

	// ReactionsDegraded — загрузки лайков, заменённые нулевыми счётчиками.
	ReactionsDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "reactions",
		Name:      "degraded_total",
		Help:      "Total like loads replaced with zero counts",
	})

	// ActiveSessions — открытые сессии.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "service",
		Name:      "active_sessions",
		Help:      "Number of open discussion sessions",
	})
)
