// Package telemetry groups the observability packages of the configurator.
//
//   - logging: slog loggers and context fields
//   - metrics: Prometheus collector for documents, solutions and the archive
//   - tracing: OpenTelemetry spans for session operations
//   - health: liveness and readiness probes for the watch command
package telemetry
