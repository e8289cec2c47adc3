package metrics

import (
	"sync"
	"time"

	"mercator-hq/configurator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// maxModelLabels caps the distinct model names exported as labels.
const maxModelLabels = 1000

// Collector owns every Prometheus metric of the configurator and is the
// single entry point components record through.
//
// A nil *Collector is valid and records nothing, as does a collector whose
// configuration is disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	documentMetrics *DocumentMetrics
	solutionMetrics *SolutionMetrics
	archiveMetrics  *ArchiveMetrics

	// Cardinality tracking
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a new metrics collector with the specified configuration
// and Prometheus registry. If registry is nil, a fresh registry is created.
//
// Example:
//
//	cfg := &config.MetricsConfig{
//		Enabled:   true,
//		Namespace: "vehicle",
//		Subsystem: "configurator",
//	}
//	collector := metrics.NewCollector(cfg, nil)
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		documentMetrics:    NewDocumentMetrics(cfg, registry),
		solutionMetrics:    NewSolutionMetrics(cfg, registry),
		archiveMetrics:     NewArchiveMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(maxModelLabels),
	}
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled
}

// RecordParse records a parse of document ("tree" or "solutions").
// errType is the error taxonomy type of the failure, or empty on success.
func (c *Collector) RecordParse(document, errType string, duration time.Duration) {
	if !c.enabled() {
		return
	}
	c.documentMetrics.RecordParse(document, errType, duration)
}

// RecordSave records a write of document.
func (c *Collector) RecordSave(document, errType string) {
	if !c.enabled() {
		return
	}
	c.documentMetrics.RecordSave(document, errType)
}

// SetTreeNodes publishes the node counts of the loaded tree.
func (c *Collector) SetTreeNodes(marks, options, models int) {
	if !c.enabled() {
		return
	}
	c.documentMetrics.SetTreeNodes(marks, options, models)
}

// RecordSolutionBuilt records a built solution. Model names beyond the
// cardinality limit are aggregated as "other".
func (c *Collector) RecordSolutionBuilt(model string) {
	if !c.enabled() {
		return
	}
	if !c.cardinalityLimiter.Allow(model) {
		model = "other"
	}
	c.solutionMetrics.RecordBuilt(model)
}

// RecordBuildFailure records a rejected build request.
func (c *Collector) RecordBuildFailure() {
	if !c.enabled() {
		return
	}
	c.solutionMetrics.RecordFailure()
}

// RecordCheck records the outcome of checking a collection against the tree.
func (c *Collector) RecordCheck(fresh, stale int) {
	if !c.enabled() {
		return
	}
	c.solutionMetrics.RecordChecked(fresh, stale)
}

// SetCollection publishes the size and summed price of the live collection.
func (c *Collector) SetCollection(count int, total float64) {
	if !c.enabled() {
		return
	}
	c.solutionMetrics.SetCollection(count, total)
}

// RecordArchive records one archive write.
func (c *Collector) RecordArchive(action string, err error) {
	if !c.enabled() {
		return
	}
	c.archiveMetrics.RecordStore(action, err)
}

// RecordPruned records records removed by retention.
func (c *Collector) RecordPruned(n int64) {
	if !c.enabled() {
		return
	}
	c.archiveMetrics.RecordPruned(n)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a new cardinality limiter with the specified
// maximum cardinality.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value may be used as a label. Known values are
// always allowed; new ones only while under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	if _, exists := cl.current[value]; exists {
		cl.mu.RUnlock()
		return true
	}
	cl.mu.RUnlock()

	cl.mu.Lock()
	defer cl.mu.Unlock()

	// Double-check after acquiring write lock
	if _, exists := cl.current[value]; exists {
		return true
	}

	if len(cl.current) >= cl.maxCardinality {
		return false
	}

	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
