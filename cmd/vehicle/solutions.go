package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/cli"
	"mercator-hq/configurator/pkg/session"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/serializer"
	"mercator-hq/configurator/pkg/vehicle/solution"
)

var solutionsFlags struct {
	tree   string
	file   string
	format string

	// check
	failOnStale bool

	// build
	selections []string
	price      string
	full       string
	short      string

	// export
	output string
}

var solutionsCmd = &cobra.Command{
	Use:   "solutions",
	Short: "Build, list and check solutions",
	Long: `Build, list and check the solutions of a tree.

The tree is read from --tree (default: tree.path) and the solutions from
--file (default: solutions.path). Loaded solutions are checked against
the tree; a stale solution is reported but never changed or removed.

When the archive is enabled, builds, saves, exports, removals and newly
stale solutions are recorded.`,
}

var solutionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the solutions and whether they still match the tree",
	Args:  cobra.NoArgs,
	RunE:  listSolutions,
}

var solutionsTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Print the number and total price of the solutions",
	Args:  cobra.NoArgs,
	RunE:  totalSolutions,
}

var solutionsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report solutions that no longer match the tree",
	Long: `Report solutions that no longer match the tree.

Examples:
  # Fail a CI job when the tree changed under saved solutions
  vehicle solutions check --fail-on-stale`,
	Args: cobra.NoArgs,
	RunE: checkSolutions,
}

var solutionsBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build a solution and add it to the solutions document",
	Long: `Build a solution from one option per mark and add it to the solutions
document. The document is created if it does not exist.

The model of the solution is the model reached by the first selection.

Examples:
  vehicle solutions build \
    --select Color=Red --select Trim=Base \
    --price 20490.25 \
    --full "Red sedan, base trim" --short "Red sedan"`,
	Args: cobra.NoArgs,
	RunE: buildSolution,
}

var solutionsExportCmd = &cobra.Command{
	Use:   "export INDEX",
	Short: "Write one solution to its own solutions document",
	Args:  cobra.ExactArgs(1),
	RunE:  exportSolution,
}

var solutionsRemoveCmd = &cobra.Command{
	Use:   "remove INDEX",
	Short: "Remove a solution from the solutions document",
	Args:  cobra.ExactArgs(1),
	RunE:  removeSolution,
}

func init() {
	rootCmd.AddCommand(solutionsCmd)
	solutionsCmd.AddCommand(solutionsListCmd, solutionsTotalCmd, solutionsCheckCmd,
		solutionsBuildCmd, solutionsExportCmd, solutionsRemoveCmd)

	flags := solutionsCmd.PersistentFlags()
	flags.StringVarP(&solutionsFlags.tree, "tree", "t", "", "tree document (default: tree.path)")
	flags.StringVarP(&solutionsFlags.file, "file", "f", "", "solutions document (default: solutions.path)")
	flags.StringVar(&solutionsFlags.format, "format", "text", "output format: text, json, csv")

	solutionsCheckCmd.Flags().BoolVar(&solutionsFlags.failOnStale, "fail-on-stale", false, "exit with an error when a solution is stale")

	solutionsBuildCmd.Flags().StringArrayVarP(&solutionsFlags.selections, "select", "s", nil, "MARK=OPTION, repeated once per mark")
	solutionsBuildCmd.Flags().StringVar(&solutionsFlags.price, "price", "", "price of the solution")
	solutionsBuildCmd.Flags().StringVar(&solutionsFlags.full, "full", "", "full description")
	solutionsBuildCmd.Flags().StringVar(&solutionsFlags.short, "short", "", "short description")
	_ = solutionsBuildCmd.MarkFlagRequired("price")

	solutionsExportCmd.Flags().StringVarP(&solutionsFlags.output, "output", "o", "", "file to write the solution to")
	_ = solutionsExportCmd.MarkFlagRequired("output")
}

// solutionsRun is an open session with the solutions document loaded.
type solutionsRun struct {
	app     *app
	session *session.Session
	path    string
	report  session.LoadReport
}

func openSolutions(cmd *cobra.Command, withArchive bool) (*solutionsRun, error) {
	a, err := newApp(cmd, withArchive)
	if err != nil {
		return nil, err
	}

	ctx := commandContext(cmd)
	s, err := a.openSession(ctx, a.treePath(solutionsFlags.tree))
	if err != nil {
		a.Close()
		return nil, err
	}

	path := a.solutionsPath(solutionsFlags.file)
	report, err := loadSolutionsIfPresent(ctx, s, path)
	if err != nil {
		a.Close()
		return nil, err
	}
	return &solutionsRun{app: a, session: s, path: path, report: report}, nil
}

// SolutionRow is one solution as listed.
type SolutionRow struct {
	Index            int    `json:"index"`
	Hash             string `json:"hash"`
	Model            string `json:"model"`
	Path             string `json:"path"`
	Price            string `json:"price"`
	ShortDescription string `json:"short_description"`
	FullDescription  string `json:"full_description"`
	Status           string `json:"status"`
	Reason           string `json:"reason,omitempty"`
}

type solutionRows []SolutionRow

func (rows solutionRows) Table() cli.Table {
	table := cli.Table{Headers: []string{"index", "hash", "model", "price", "status", "description"}}
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.Index), r.Hash, r.Model, r.Price, r.Status, r.ShortDescription,
		})
	}
	return table
}

func newSolutionRows(solutions []*solution.Solution, verdicts []engine.Verdict) solutionRows {
	rows := make(solutionRows, len(solutions))
	for i, sol := range solutions {
		rows[i] = SolutionRow{
			Index:            i,
			Hash:             sol.Hash(),
			Model:            sol.ModelName(),
			Path:             solution.EncodePath(sol.MarkPath()),
			Price:            serializer.FormatPrice(sol.Price()),
			ShortDescription: sol.ShortDescription(),
			FullDescription:  sol.FullDescription(),
			Status:           engine.Fresh.String(),
		}
		if i < len(verdicts) {
			rows[i].Status = verdicts[i].Status.String()
			rows[i].Reason = verdicts[i].Reason
		}
	}
	return rows
}

func listSolutions(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(solutionsFlags.format)
	if err != nil {
		return err
	}

	run, err := openSolutions(cmd, true)
	if err != nil {
		return cli.NewCommandError("solutions list", err)
	}
	defer run.app.Close()

	rows := newSolutionRows(run.session.Solutions(), run.report.Verdicts)
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), rows)
}

// Totals is the result of solutions total.
type Totals struct {
	Count int    `json:"count"`
	Total string `json:"total"`
}

func (t Totals) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%d solution(s), total %s\n", t.Count, t.Total)
	return err
}

func (t Totals) Table() cli.Table {
	return cli.Table{
		Headers: []string{"count", "total"},
		Rows:    [][]string{{strconv.Itoa(t.Count), t.Total}},
	}
}

func totalSolutions(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(solutionsFlags.format)
	if err != nil {
		return err
	}

	run, err := openSolutions(cmd, false)
	if err != nil {
		return cli.NewCommandError("solutions total", err)
	}
	defer run.app.Close()

	totals := Totals{
		Count: len(run.session.Solutions()),
		Total: serializer.FormatPrice(run.session.Total()),
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), totals)
}

// CheckReport is the result of solutions check.
type CheckReport struct {
	Solutions int           `json:"solutions"`
	Outdated  bool          `json:"outdated"`
	Stale     []SolutionRow `json:"stale"`
}

func (r CheckReport) WriteText(w io.Writer) error {
	if r.Outdated {
		fmt.Fprintln(w, "⚠  The solutions document was saved against another tree")
	}
	if len(r.Stale) == 0 {
		_, err := fmt.Fprintf(w, "✓ All %d solution(s) match the tree\n", r.Solutions)
		return err
	}
	fmt.Fprintf(w, "✗ %d of %d solution(s) are stale\n", len(r.Stale), r.Solutions)
	for _, row := range r.Stale {
		fmt.Fprintf(w, "  %d  %s  %s\n", row.Index, row.Hash, row.Reason)
	}
	return nil
}

func (r CheckReport) Table() cli.Table {
	table := cli.Table{Headers: []string{"index", "hash", "model", "reason"}}
	for _, row := range r.Stale {
		table.Rows = append(table.Rows, []string{strconv.Itoa(row.Index), row.Hash, row.Model, row.Reason})
	}
	return table
}

func checkSolutions(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(solutionsFlags.format)
	if err != nil {
		return err
	}

	run, err := openSolutions(cmd, true)
	if err != nil {
		return cli.NewCommandError("solutions check", err)
	}
	defer run.app.Close()

	rows := newSolutionRows(run.session.Solutions(), run.report.Verdicts)
	report := CheckReport{Solutions: len(rows), Outdated: run.report.Outdated, Stale: []SolutionRow{}}
	for _, row := range rows {
		if row.Status != engine.Fresh.String() {
			report.Stale = append(report.Stale, row)
		}
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), report); err != nil {
		return err
	}
	if solutionsFlags.failOnStale && len(report.Stale) > 0 {
		return cli.NewCommandError("solutions check",
			fmt.Errorf("%d of %d solution(s): %w", len(report.Stale), report.Solutions, cli.ErrStale))
	}
	return nil
}

// parseSelections parses MARK=OPTION flag values.
func parseSelections(values []string) ([]solution.Selection, error) {
	selections := make([]solution.Selection, 0, len(values))
	for _, v := range values {
		mark, option, ok := strings.Cut(v, "=")
		if !ok {
			return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("selection %q must have the form MARK=OPTION", v), nil)
		}
		selections = append(selections, solution.Selection{Mark: mark, Option: option})
	}
	return selections, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, vehErrors.NewInvalidSelection(fmt.Sprintf("invalid solution index %q", s), err)
	}
	return i, nil
}

func buildSolution(cmd *cobra.Command, args []string) error {
	selections, err := parseSelections(solutionsFlags.selections)
	if err != nil {
		return cli.NewCommandError("solutions build", err)
	}
	price, err := decimal.NewFromString(solutionsFlags.price)
	if err != nil {
		return cli.NewCommandError("solutions build",
			vehErrors.NewInvalidSelection(fmt.Sprintf("invalid price %q", solutionsFlags.price), err))
	}

	run, err := openSolutions(cmd, true)
	if err != nil {
		return cli.NewCommandError("solutions build", err)
	}
	defer run.app.Close()

	ctx := commandContext(cmd)
	sol, index, err := run.session.Build(ctx, engine.BuildRequest{
		Selections:       selections,
		Price:            price,
		FullDescription:  solutionsFlags.full,
		ShortDescription: solutionsFlags.short,
	})
	if err != nil {
		return cli.NewCommandError("solutions build", err)
	}
	if err := run.session.SaveSolutions(ctx, run.path); err != nil {
		return cli.NewCommandError("solutions build", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Added solution %d: %s %s (%s)\n",
		index, sol.ModelName(), serializer.FormatPrice(sol.Price()), sol.Hash())
	return nil
}

func exportSolution(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return cli.NewCommandError("solutions export", err)
	}

	run, err := openSolutions(cmd, true)
	if err != nil {
		return cli.NewCommandError("solutions export", err)
	}
	defer run.app.Close()

	if err := run.session.ExportSolution(commandContext(cmd), index, solutionsFlags.output); err != nil {
		return cli.NewCommandError("solutions export", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported solution %d to %s\n", index, solutionsFlags.output)
	return nil
}

func removeSolution(cmd *cobra.Command, args []string) error {
	index, err := parseIndex(args[0])
	if err != nil {
		return cli.NewCommandError("solutions remove", err)
	}

	run, err := openSolutions(cmd, true)
	if err != nil {
		return cli.NewCommandError("solutions remove", err)
	}
	defer run.app.Close()

	ctx := commandContext(cmd)
	sol, err := run.session.RemoveSolution(ctx, index)
	if err != nil {
		return cli.NewCommandError("solutions remove", err)
	}
	if err := run.session.SaveSolutions(ctx, run.path); err != nil {
		return cli.NewCommandError("solutions remove", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed solution %d: %s (%s)\n", index, sol.ModelName(), sol.Hash())
	return nil
}
