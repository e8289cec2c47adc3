// Package server provides the HTTP server behind "vehicle watch".
//
// The server exposes three routes:
//
//	GET /healthz        liveness, always 200 while the process serves
//	GET /readyz         readiness, 503 when any registered check fails
//	GET <metrics path>  Prometheus exposition, when metrics are enabled
//
// # Usage
//
//	srv := server.New(server.Options{
//	    Address:     cfg.Telemetry.Metrics.ListenAddress,
//	    Checker:     checker,
//	    MetricsPath: cfg.Telemetry.Metrics.Path,
//	    Metrics:     collector.Handler(),
//	})
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Shutdown(context.Background())
//
// Shutdown stops accepting connections and waits for in-flight requests
// up to Options.ShutdownTimeout.
package server
