package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/archive/storage"
	"mercator-hq/configurator/pkg/config"
	"mercator-hq/configurator/pkg/session"
	"mercator-hq/configurator/pkg/telemetry/logging"
	"mercator-hq/configurator/pkg/telemetry/metrics"
	"mercator-hq/configurator/pkg/telemetry/tracing"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/parser"
	"mercator-hq/configurator/pkg/vehicle/solution"
)

// app holds the components every command shares. It is built from the
// configuration once per command run.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	store    archive.Storage   // nil when the archive is disabled
	recorder *archive.Recorder // nil when the archive is disabled
}

// newApp loads the configuration and sets up telemetry. The archive is
// opened only when it is enabled and the command records events.
func newApp(cmd *cobra.Command, withArchive bool) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	logCfg := logging.FromConfig(cfg.Telemetry.Logging, cmd.ErrOrStderr())
	if verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, err
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to set up tracing: %w", err)
	}

	a := &app{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry()),
		tracer:  tracer,
	}

	if withArchive && cfg.Archive.Enabled {
		if err := a.openArchive(); err != nil {
			_ = tracer.Shutdown(context.Background())
			return nil, err
		}
		a.recorder = archive.NewRecorder(a.store, archive.DefaultRecorderConfig(), a.metrics, logger)
	}
	return a, nil
}

func (a *app) openArchive() error {
	store, err := storage.New(&a.cfg.Archive, a.logger)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	a.store = store
	return nil
}

func (a *app) parser() *parser.Parser {
	return parser.NewParser().
		WithMaxFileSize(a.cfg.Tree.MaxFileSize).
		WithMaxDepth(a.cfg.Tree.MaxDepth)
}

// treePath returns flagValue, or the configured tree path when it is empty.
func (a *app) treePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Tree.Path
}

func (a *app) solutionsPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return a.cfg.Solutions.Path
}

// openSession opens a session on the tree at treePath.
func (a *app) openSession(ctx context.Context, treePath string) (*session.Session, error) {
	order, err := solution.ParseOrder(a.cfg.Solutions.Sort)
	if err != nil {
		return nil, err
	}
	return session.Open(ctx, session.Options{
		TreePath:         treePath,
		Engine:           engine.New(a.logger),
		Parser:           a.parser(),
		Archive:          a.recorder,
		Metrics:          a.metrics,
		Tracer:           a.tracer,
		Logger:           a.logger,
		Sort:             order,
		DebounceInterval: a.cfg.Tree.DebounceInterval,
	})
}

// loadSolutionsIfPresent loads path into s. A missing file leaves s with
// no solutions.
func loadSolutionsIfPresent(ctx context.Context, s *session.Session, path string) (session.LoadReport, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return session.LoadReport{Path: path}, nil
	}
	return s.LoadSolutions(ctx, path)
}

// Close flushes the archive and the tracer.
func (a *app) Close() error {
	var errs []error
	if err := a.recorder.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.tracer.Shutdown(context.Background()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func errorType(err error) string {
	return string(vehErrors.TypeOf(err))
}

// commandContext returns the context of cmd, or a background context when
// the command runs outside Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
