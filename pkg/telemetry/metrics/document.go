package metrics

import (
	"time"

	"mercator-hq/configurator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// DocumentMetrics tracks parsing and saving of tree and solutions documents.
//
// Metrics:
//   - <ns>_<sub>_document_parses_total: parses by document kind and outcome
//   - <ns>_<sub>_document_parse_duration_seconds: parse duration
//   - <ns>_<sub>_document_saves_total: atomic writes by document kind and outcome
//   - <ns>_<sub>_document_errors_total: failures by document kind and error type
//   - <ns>_<sub>_tree_nodes: node count of the loaded tree by kind
type DocumentMetrics struct {
	parsesTotal   *prometheus.CounterVec
	parseDuration *prometheus.HistogramVec
	savesTotal    *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	treeNodes     *prometheus.GaugeVec
}

// NewDocumentMetrics creates and registers document metrics with the provided registry.
func NewDocumentMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *DocumentMetrics {
	dm := &DocumentMetrics{
		parsesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_parses_total",
				Help:      "Total number of documents parsed",
			},
			[]string{"document", "status"},
		),

		parseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_parse_duration_seconds",
				Help:      "Duration of document parsing in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs to 1.6s
			},
			[]string{"document"},
		),

		savesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_saves_total",
				Help:      "Total number of documents written",
			},
			[]string{"document", "status"},
		),

		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "document_errors_total",
				Help:      "Total number of document failures by error type",
			},
			[]string{"document", "type"},
		),

		treeNodes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tree_nodes",
				Help:      "Number of nodes in the loaded tree by kind",
			},
			[]string{"kind"},
		),
	}

	registry.MustRegister(
		dm.parsesTotal,
		dm.parseDuration,
		dm.savesTotal,
		dm.errorsTotal,
		dm.treeNodes,
	)

	return dm
}

// RecordParse records one parse of a document. errType is empty on success.
func (dm *DocumentMetrics) RecordParse(document, errType string, duration time.Duration) {
	dm.parsesTotal.WithLabelValues(document, status(errType)).Inc()
	dm.parseDuration.WithLabelValues(document).Observe(duration.Seconds())
	if errType != "" {
		dm.errorsTotal.WithLabelValues(document, errType).Inc()
	}
}

// RecordSave records one write of a document. errType is empty on success.
func (dm *DocumentMetrics) RecordSave(document, errType string) {
	dm.savesTotal.WithLabelValues(document, status(errType)).Inc()
	if errType != "" {
		dm.errorsTotal.WithLabelValues(document, errType).Inc()
	}
}

// SetTreeNodes sets the node gauges of the loaded tree.
func (dm *DocumentMetrics) SetTreeNodes(marks, options, models int) {
	dm.treeNodes.WithLabelValues("mark").Set(float64(marks))
	dm.treeNodes.WithLabelValues("option").Set(float64(options))
	dm.treeNodes.WithLabelValues("model").Set(float64(models))
}

func status(errType string) string {
	if errType == "" {
		return "ok"
	}
	return "error"
}
