package metrics

import (
	"mercator-hq/configurator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// SolutionMetrics tracks the solution engine.
//
// Metrics:
//   - <ns>_<sub>_solutions_built_total: solutions built by model
//   - <ns>_<sub>_solution_build_failures_total: rejected build requests
//   - <ns>_<sub>_solutions_checked_total: staleness checks by verdict
//   - <ns>_<sub>_solutions: size of the live collection
//   - <ns>_<sub>_solutions_price_total: summed price of the live collection
type SolutionMetrics struct {
	builtTotal    *prometheus.CounterVec
	failuresTotal prometheus.Counter
	checkedTotal  *prometheus.CounterVec
	solutions     prometheus.Gauge
	priceTotal    prometheus.Gauge
}

// NewSolutionMetrics creates and registers solution metrics with the provided registry.
func NewSolutionMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *SolutionMetrics {
	sm := &SolutionMetrics{
		builtTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "solutions_built_total",
				Help:      "Total number of solutions built",
			},
			[]string{"model"},
		),

		failuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "solution_build_failures_total",
				Help:      "Total number of rejected build requests",
			},
		),

		checkedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "solutions_checked_total",
				Help:      "Total number of solutions checked against the tree",
			},
			[]string{"verdict"},
		),

		solutions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "solutions",
				Help:      "Number of solutions in the live collection",
			},
		),

		priceTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "solutions_price_total",
				Help:      "Summed price of the live collection",
			},
		),
	}

	registry.MustRegister(
		sm.builtTotal,
		sm.failuresTotal,
		sm.checkedTotal,
		sm.solutions,
		sm.priceTotal,
	)

	return sm
}

// RecordBuilt records a successful build for model.
func (sm *SolutionMetrics) RecordBuilt(model string) {
	sm.builtTotal.WithLabelValues(model).Inc()
}

// RecordFailure records a rejected build request.
func (sm *SolutionMetrics) RecordFailure() {
	sm.failuresTotal.Inc()
}

// RecordChecked records the verdict counts of one staleness check.
func (sm *SolutionMetrics) RecordChecked(fresh, stale int) {
	sm.checkedTotal.WithLabelValues("fresh").Add(float64(fresh))
	sm.checkedTotal.WithLabelValues("stale").Add(float64(stale))
}

// SetCollection sets the live collection gauges.
func (sm *SolutionMetrics) SetCollection(count int, total float64) {
	sm.solutions.Set(float64(count))
	sm.priceTotal.Set(total)
}
