package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mercator-hq/configurator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:   true,
		Namespace: "test",
		Subsystem: "vehicle",
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
	if cfg.Namespace != config.DefaultMetricsNamespace || cfg.Subsystem != config.DefaultMetricsSubsystem {
		t.Errorf("defaults not applied: %q/%q", cfg.Namespace, cfg.Subsystem)
	}
}

func TestCollector_RecordParse(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordParse("tree", "", 2*time.Millisecond)
	collector.RecordParse("tree", "grammar", time.Millisecond)
	collector.RecordParse("solutions", "io", time.Millisecond)

	dm := collector.documentMetrics
	if got := testutil.ToFloat64(dm.parsesTotal.WithLabelValues("tree", "ok")); got != 1 {
		t.Errorf("tree ok parses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(dm.parsesTotal.WithLabelValues("tree", "error")); got != 1 {
		t.Errorf("tree error parses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(dm.errorsTotal.WithLabelValues("solutions", "io")); got != 1 {
		t.Errorf("solutions io errors = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(dm.parseDuration); got != 2 {
		t.Errorf("parse duration series = %d, want 2", got)
	}
}

func TestCollector_Solutions(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordSolutionBuilt("Sedan")
	collector.RecordSolutionBuilt("Sedan")
	collector.RecordBuildFailure()
	collector.RecordCheck(3, 1)
	collector.SetCollection(2, 39981.0)

	sm := collector.solutionMetrics
	if got := testutil.ToFloat64(sm.builtTotal.WithLabelValues("Sedan")); got != 2 {
		t.Errorf("built Sedan = %v, want 2", got)
	}
	if got := testutil.ToFloat64(sm.failuresTotal); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.checkedTotal.WithLabelValues("stale")); got != 1 {
		t.Errorf("stale = %v, want 1", got)
	}
	if got := testutil.ToFloat64(sm.priceTotal); got != 39981.0 {
		t.Errorf("price total = %v, want 39981", got)
	}
}

func TestCollector_Archive(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordArchive("built", nil)
	collector.RecordArchive("built", errors.New("disk full"))
	collector.RecordPruned(7)

	am := collector.archiveMetrics
	if got := testutil.ToFloat64(am.recordsTotal.WithLabelValues("built", "error")); got != 1 {
		t.Errorf("failed archive writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(am.prunedTotal); got != 7 {
		t.Errorf("pruned = %v, want 7", got)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordSolutionBuilt("Sedan")
	if got := testutil.ToFloat64(collector.solutionMetrics.builtTotal.WithLabelValues("Sedan")); got != 0 {
		t.Errorf("disabled collector recorded %v", got)
	}

	var nilCollector *Collector
	nilCollector.RecordParse("tree", "", time.Second)
	nilCollector.SetCollection(1, 1)
}

func TestCollector_ModelCardinality(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.cardinalityLimiter = NewCardinalityLimiter(1)

	collector.RecordSolutionBuilt("Sedan")
	collector.RecordSolutionBuilt("Coupe")

	if got := testutil.ToFloat64(collector.solutionMetrics.builtTotal.WithLabelValues("other")); got != 1 {
		t.Errorf("other = %v, want 1", got)
	}
}

func TestCardinalityLimiter(t *testing.T) {
	cl := NewCardinalityLimiter(2)
	for _, v := range []string{"a", "b", "a"} {
		if !cl.Allow(v) {
			t.Errorf("Allow(%q) = false, want true", v)
		}
	}
	if cl.Allow("c") {
		t.Error("Allow(c) = true beyond the limit")
	}
	if cl.Count() != 2 {
		t.Errorf("Count() = %d, want 2", cl.Count())
	}
}

func TestHandler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordSolutionBuilt("Sedan")

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `test_vehicle_solutions_built_total{model="Sedan"} 1`) {
		t.Errorf("metrics output missing built counter:\n%s", rec.Body.String())
	}
}
