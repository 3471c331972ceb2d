package api

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the hub's Prometheus collectors on a private registry so
// multiple servers can coexist in one process (tests).
type Metrics struct {
	registry         *prometheus.Registry
	submissionsTotal prometheus.Counter
	markSyncedTotal  prometheus.Counter
}

// NewMetrics builds the collectors. The unsynced gauge reads the store on
// every scrape so it never drifts from the actual backlog.
func NewMetrics(store RecordStore) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scouthub_submissions_total",
			Help: "Records accepted via /api/submit.",
		}),
		markSyncedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scouthub_marked_synced_total",
			Help: "Records flagged synced via /api/mark-synced.",
		}),
	}

	unsyncedGauge := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "scouthub_records_unsynced",
		Help: "Records currently awaiting reconciliation.",
	}, func() float64 {
		_, unsynced, err := store.Counts(context.Background())
		if err != nil {
			return 0
		}
		return float64(unsynced)
	})

	m.registry.MustRegister(m.submissionsTotal, m.markSyncedTotal, unsyncedGauge)
	return m
}
