package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/archive/retention"
	"mercator-hq/configurator/pkg/cli"
	"mercator-hq/configurator/pkg/server"
	"mercator-hq/configurator/pkg/session"
	"mercator-hq/configurator/pkg/telemetry/health"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/tree"
	"mercator-hq/configurator/pkg/vehicle/validator"
)

var watchFlags struct {
	tree   string
	file   string
	listen string
	reload bool
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Monitor a tree and the freshness of its solutions",
	Long: `Monitor a tree and the freshness of its solutions.

The command loads the tree and the solutions document, then serves
liveness on /healthz, readiness on /readyz and, when metrics are enabled,
Prometheus metrics on telemetry.metrics.path. Readiness fails while the
tree is incomplete or any solution is stale.

With tree.watch set, or --reload, the tree is reloaded whenever its file
changes and the solutions are checked again. Solutions that turn stale
are archived when the archive is enabled, and archive retention runs on
archive.retention.prune_schedule.

The command stops on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.tree, "tree", "t", "", "tree document (default: tree.path)")
	watchCmd.Flags().StringVarP(&watchFlags.file, "file", "f", "", "solutions document (default: solutions.path)")
	watchCmd.Flags().StringVar(&watchFlags.listen, "listen", "", "HTTP listen address (default: telemetry.metrics.listen_address)")
	watchCmd.Flags().BoolVar(&watchFlags.reload, "reload", false, "reload the tree on change (default: tree.watch)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	a, err := newApp(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	treePath := a.treePath(watchFlags.tree)
	s, err := a.openSession(ctx, treePath)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	report, err := loadSolutionsIfPresent(ctx, s, a.solutionsPath(watchFlags.file))
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s (%s): %d solution(s), %d stale\n",
		treePath, s.TreeRef(), len(report.Verdicts), len(report.Stale()))

	checker := newHealthChecker(a, s, treePath)
	srv, err := startHTTP(a, checker)
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	var serveErrs <-chan error
	if srv != nil {
		serveErrs = srv.Errors()
		fmt.Fprintf(out, "Serving health on http://%s\n", srv.Addr())
		defer srv.Shutdown(context.Background())
	}

	if a.store != nil {
		pruner := retention.NewPruner(a.store, retention.FromConfig(a.cfg.Archive.Retention), a.metrics, a.logger)
		if err := pruner.Start(ctx); err != nil {
			return cli.NewCommandError("watch", err)
		}
		defer pruner.Stop()
	}

	if !watchFlags.reload && !a.cfg.Tree.Watch {
		return untilServeError(ctx, serveErrs, func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		})
	}
	return untilServeError(ctx, serveErrs, func(ctx context.Context) error {
		return s.Watch(ctx, func(change session.Change) {
			printChange(out, change)
		})
	})
}

// untilServeError runs fn until it returns or the server fails, in which
// case fn's context is canceled and the server error is returned.
func untilServeError(ctx context.Context, serveErrs <-chan error, fn func(context.Context) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case err := <-serveErrs:
		cancel()
		<-done
		return cli.NewCommandError("watch", err)
	}
}

func printChange(w io.Writer, change session.Change) {
	if change.Err != nil {
		fmt.Fprintf(w, "✗ Reload failed, keeping tree %s: %v\n", change.TreeRef, change.Err)
		return
	}
	stale := 0
	for _, v := range change.Verdicts {
		if !v.Fresh() {
			stale++
		}
	}
	fmt.Fprintf(w, "Tree reloaded (%s): %d solution(s), %d stale\n", change.TreeRef, len(change.Verdicts), stale)
	for _, v := range change.Verdicts {
		if v.Status == engine.Stale {
			fmt.Fprintf(w, "  %s  %s\n", v.Hash, v.Reason)
		}
	}
}

func newHealthChecker(a *app, s *session.Session, treePath string) *health.Checker {
	checker := health.New(0)
	checker.Register("tree", func(ctx context.Context) error {
		var err error
		s.View(func(t *tree.ConfigTree) {
			err = validator.ValidateTree(t, treePath)
		})
		return err
	})
	checker.Register("solutions", func(ctx context.Context) error {
		stale := 0
		for _, v := range s.Verdicts() {
			if !v.Fresh() {
				stale++
			}
		}
		if stale > 0 {
			return fmt.Errorf("%d solution(s): %w", stale, cli.ErrStale)
		}
		return nil
	})
	if a.store != nil {
		checker.Register("archive", func(ctx context.Context) error {
			_, err := a.store.Count(ctx, nil)
			return err
		})
	}
	return checker
}

// startHTTP serves health and metrics. It returns nil when neither
// metrics nor --listen ask for a server.
func startHTTP(a *app, checker *health.Checker) (*server.Server, error) {
	metricsCfg := a.cfg.Telemetry.Metrics
	addr := watchFlags.listen
	if addr == "" {
		if !metricsCfg.Enabled {
			return nil, nil
		}
		addr = metricsCfg.ListenAddress
	}

	opts := server.Options{Address: addr, Checker: checker, Logger: a.logger}
	if metricsCfg.Enabled {
		opts.MetricsPath = metricsCfg.Path
		opts.Metrics = a.metrics.Handler()
	}
	srv := server.New(opts)
	if err := srv.Start(); err != nil {
		return nil, err
	}
	return srv, nil
}
