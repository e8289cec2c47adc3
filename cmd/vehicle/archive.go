package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/archive"
	"mercator-hq/configurator/pkg/archive/retention"
	"mercator-hq/configurator/pkg/cli"
	"mercator-hq/configurator/pkg/vehicle/serializer"
)

var archiveFlags struct {
	action  string
	hash    string
	session string
	since   string
	until   string
	limit   int
	offset  int
	format  string
	output  string

	// prune
	days       int
	maxRecords int64
}

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Query the archive of solution events",
	Long: `Query and prune the archive of solution events.

The archive backend is taken from the archive section of the
configuration. Records are read even when archiving of new events is
disabled.

Subcommands:
  query   - Query archived events with filters
  prune   - Delete events past the retention policy`,
}

var archiveQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query archived events",
	Long: `Query archived events, oldest first.

Times are RFC3339. --since is inclusive and --until exclusive.

Examples:
  # Everything built since October
  vehicle archive query --action built --since 2026-10-01T00:00:00Z

  # The history of one solution
  vehicle archive query --hash 0123456789abcdef0123456789abcdef01234567

  # Export to CSV
  vehicle archive query --format csv --output events.csv`,
	Args: cobra.NoArgs,
	RunE: queryArchive,
}

var archivePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete events past the retention policy",
	Long: `Delete events older than the retention days, then the oldest events
beyond the record limit. Flags override archive.retention.`,
	Args: cobra.NoArgs,
	RunE: pruneArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)
	archiveCmd.AddCommand(archiveQueryCmd, archivePruneCmd)

	flags := archiveQueryCmd.Flags()
	flags.StringVar(&archiveFlags.action, "action", "", "filter by action: built, saved, exported, removed, stale")
	flags.StringVar(&archiveFlags.hash, "hash", "", "filter by solution hash")
	flags.StringVar(&archiveFlags.session, "session", "", "filter by session id")
	flags.StringVar(&archiveFlags.since, "since", "", "events recorded at or after this time")
	flags.StringVar(&archiveFlags.until, "until", "", "events recorded before this time")
	flags.IntVar(&archiveFlags.limit, "limit", 100, "maximum number of events (0 = unlimited)")
	flags.IntVar(&archiveFlags.offset, "offset", 0, "events to skip")
	flags.StringVar(&archiveFlags.format, "format", "text", "output format: text, json, csv")
	flags.StringVarP(&archiveFlags.output, "output", "o", "", "output file (default: stdout)")

	archivePruneCmd.Flags().IntVar(&archiveFlags.days, "days", -1, "retention in days (default: archive.retention.days)")
	archivePruneCmd.Flags().Int64Var(&archiveFlags.maxRecords, "max-records", -1, "records to keep (default: archive.retention.max_records)")
}

func parseTimeFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s time: %w", name, err)
	}
	return &t, nil
}

func buildArchiveQuery() (*archive.Query, error) {
	query := &archive.Query{
		Action:    archive.Action(archiveFlags.action),
		Hash:      archiveFlags.hash,
		SessionID: archiveFlags.session,
		Limit:     archiveFlags.limit,
		Offset:    archiveFlags.offset,
	}
	if query.Action != "" && !query.Action.Valid() {
		return nil, fmt.Errorf("invalid action %q", archiveFlags.action)
	}
	if query.Limit < 0 || query.Offset < 0 {
		return nil, fmt.Errorf("--limit and --offset must not be negative")
	}

	var err error
	if query.Since, err = parseTimeFlag("since", archiveFlags.since); err != nil {
		return nil, err
	}
	if query.Until, err = parseTimeFlag("until", archiveFlags.until); err != nil {
		return nil, err
	}
	if query.Since != nil && query.Until != nil && !query.Since.Before(*query.Until) {
		return nil, fmt.Errorf("--since must be before --until")
	}
	return query, nil
}

func queryArchive(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(archiveFlags.format)
	if err != nil {
		return err
	}
	query, err := buildArchiveQuery()
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openArchive(); err != nil {
		return cli.NewCommandError("archive query", err)
	}

	ctx := commandContext(cmd)
	records, err := a.store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("archive query", fmt.Errorf("query failed: %w", err))
	}

	// Output results
	output := cmd.OutOrStdout()
	if archiveFlags.output != "" {
		f, err := os.Create(archiveFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	if format == cli.FormatText {
		return writeRecordsText(output, records)
	}
	exporter, err := archive.NewExporter(string(format))
	if err != nil {
		return err
	}
	return exporter.Export(ctx, records, output)
}

func writeRecordsText(w io.Writer, records []*archive.Record) error {
	fmt.Fprintf(w, "Total records: %d\n", len(records))
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return nil
	}

	for _, r := range records {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Record ID: %s\n", r.ID)
		fmt.Fprintf(w, "Recorded: %s\n", r.RecordedAt.Format(time.RFC3339Nano))
		fmt.Fprintf(w, "Action: %s\n", r.Action)
		if r.SessionID != "" {
			fmt.Fprintf(w, "Session: %s\n", r.SessionID)
		}
		if r.SolutionHash != "" {
			fmt.Fprintf(w, "Solution: %s %s %s\n", r.SolutionHash, r.ModelName, serializer.FormatPrice(r.Price))
			fmt.Fprintf(w, "Path: %s\n", r.MarkPath)
		}
		if r.Document != "" {
			fmt.Fprintf(w, "Document: %s\n", r.Document)
		}
		if r.TreeRef != "" {
			fmt.Fprintf(w, "Tree: %s\n", r.TreeRef)
		}
		if r.Detail != "" {
			fmt.Fprintf(w, "Detail: %s\n", r.Detail)
		}
	}
	return nil
}

func pruneArchive(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.openArchive(); err != nil {
		return cli.NewCommandError("archive prune", err)
	}

	policy := retention.FromConfig(a.cfg.Archive.Retention)
	if archiveFlags.days >= 0 {
		policy.RetentionDays = archiveFlags.days
	}
	if archiveFlags.maxRecords >= 0 {
		policy.MaxRecords = archiveFlags.maxRecords
	}

	pruned, err := retention.NewPruner(a.store, policy, a.metrics, a.logger).Prune(commandContext(cmd))
	if err != nil {
		return cli.NewCommandError("archive prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d record(s)\n", pruned)
	return nil
}
