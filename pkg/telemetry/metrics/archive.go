package metrics

import (
	"mercator-hq/configurator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// ArchiveMetrics tracks the audit archive.
//
// Metrics:
//   - <ns>_<sub>_archive_records_total: records stored by action and outcome
//   - <ns>_<sub>_archive_pruned_total: records removed by retention
type ArchiveMetrics struct {
	recordsTotal *prometheus.CounterVec
	prunedTotal  prometheus.Counter
}

// NewArchiveMetrics creates and registers archive metrics with the provided registry.
func NewArchiveMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *ArchiveMetrics {
	am := &ArchiveMetrics{
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "archive_records_total",
				Help:      "Total number of archive records written",
			},
			[]string{"action", "status"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "archive_pruned_total",
				Help:      "Total number of archive records removed by retention",
			},
		),
	}

	registry.MustRegister(am.recordsTotal, am.prunedTotal)

	return am
}

// RecordStore records one archive write.
func (am *ArchiveMetrics) RecordStore(action string, err error) {
	s := "ok"
	if err != nil {
		s = "error"
	}
	am.recordsTotal.WithLabelValues(action, s).Inc()
}

// RecordPruned records records removed by one retention run.
func (am *ArchiveMetrics) RecordPruned(n int64) {
	am.prunedTotal.Add(float64(n))
}
