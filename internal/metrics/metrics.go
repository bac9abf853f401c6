// Package metrics holds Prometheus instruments that are used across the
// route synchronizer, loader, and dispatcher.  All collectors are registered
// with the global registry, so exposing promhttp.Handler() in main.go is
// enough to publish them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SyncTotal counts synchronization runs by operation
	// ("changed", "removing", "rebuild").
	SyncTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_sync_total",
			Help: "Cumulative number of route synchronization runs.",
		}, []string{"op"})

	// RecordsStagedTotal counts staged route-record changes by action
	// ("insert", "update", "delete").
	RecordsStagedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_records_staged_total",
			Help: "Cumulative number of route records written by action.",
		}, []string{"action"})

	UniquenessRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "route_uniqueness_retries_total",
			Help: "Inserts that hit the natural-key index and were retried as updates.",
		})

	CacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "route_cache_invalidations_total",
			Help: "Cumulative number of cache namespace invalidations.",
		}, []string{"tag"})

	TableEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "route_table_entries",
			Help: "Number of entries in the most recently loaded route table.",
		})

	RebuildSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "route_rebuild_seconds",
			Help:    "Duration of full route-table rebuilds.",
			Buckets: prometheus.DefBuckets,
		})
)

func init() {
	prometheus.MustRegister(
		SyncTotal,
		RecordsStagedTotal,
		UniquenessRetriesTotal,
		CacheInvalidationsTotal,
		TableEntries,
		RebuildSeconds,
	)
}
