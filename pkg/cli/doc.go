/*
Package cli provides command-line helpers for the vehicle command.

Output Formatting:

Results are written as text, JSON or CSV. Results that implement
TextWriter or Tabular control their own text layout; CSV needs Tabular.

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

ExitCode maps configurator errors to process exit codes so scripts can
tell a malformed document from a missing file or a stale solution.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
