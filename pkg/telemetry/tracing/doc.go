// Package tracing provides OpenTelemetry tracing of configurator operations.
//
// Session operations (loading and saving documents, building and checking
// solutions) each open a span tagged with the document, tree reference and
// solution attributes defined in this package. Spans are exported over OTLP
// gRPC when telemetry.tracing.enabled is set; otherwise every span is a noop.
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "session.LoadSolutions")
//	tracing.SetDocument(span, path, treeRef)
//	defer func() { tracing.End(span, err) }()
package tracing
