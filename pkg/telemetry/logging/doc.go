// Package logging builds the structured loggers used across the
// configurator.
//
// Loggers are plain *slog.Logger values. Components take one in their
// constructor and tag it with Component:
//
//	logger, err := logging.New(logging.Config{Level: "debug", Format: "console"})
//	e := engine.New(logging.Component(logger, "vehicle.engine"))
//
// Request-scoped fields travel in the context:
//
//	ctx = logging.WithSessionID(ctx, s.ID())
//	ctx = logging.WithDocument(ctx, "data.xml")
//	logging.FromContext(ctx, logger).Info("tree loaded")
//	// level=INFO msg="tree loaded" session=... document=data.xml
package logging
