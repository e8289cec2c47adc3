// Package metrics provides Prometheus metrics for the vehicle configurator.
//
// # Metrics Categories
//
//   - Document Metrics: parses, saves, failures by error type, tree size
//   - Solution Metrics: builds, rejected builds, staleness verdicts, live collection size and price
//   - Archive Metrics: archive writes and retention pruning
//
// All names carry the configured namespace and subsystem, by default
// vehicle_configurator_.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	collector.RecordParse("tree", "", time.Since(start))
//	collector.RecordSolutionBuilt("Sedan")
//
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
//
// A nil collector records nothing, so components can take one optionally.
package metrics
