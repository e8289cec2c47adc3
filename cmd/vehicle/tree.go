package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/configurator/pkg/cli"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

var treeFlags struct {
	tree   string
	format string
	limit  int
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Inspect a tree document",
	Long: `Inspect the marks, options and models of a tree document.

The tree is read from --tree, or from tree.path in the configuration.`,
}

var treeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the marks and options of the tree",
	Long: `Print the marks and options of the tree.

Examples:
  vehicle tree show --tree data.xml
  vehicle tree show --format json`,
	Args: cobra.NoArgs,
	RunE: showTree,
}

var treeResolveCmd = &cobra.Command{
	Use:   "resolve MARK OPTION",
	Short: "Print the model an option of a mark leads to",
	Args:  cobra.ExactArgs(2),
	RunE:  resolveTree,
}

var treeEnumerateCmd = &cobra.Command{
	Use:   "enumerate",
	Short: "List every complete selection path of the tree",
	Long: `List every complete selection path: one option for each mark that
has options, in mark order.

Examples:
  vehicle tree enumerate --limit 20
  vehicle tree enumerate --format csv > paths.csv`,
	Args: cobra.NoArgs,
	RunE: enumerateTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.AddCommand(treeShowCmd, treeResolveCmd, treeEnumerateCmd)

	treeCmd.PersistentFlags().StringVarP(&treeFlags.tree, "tree", "t", "", "tree document (default: tree.path)")
	treeCmd.PersistentFlags().StringVar(&treeFlags.format, "format", "text", "output format: text, json, csv")
	treeEnumerateCmd.Flags().IntVar(&treeFlags.limit, "limit", 0, "maximum number of paths (0 = unlimited)")
}

// loadTreeDocument parses the tree named by the flags.
func loadTreeDocument(a *app) (*tree.ConfigTree, error) {
	path := a.treePath(treeFlags.tree)
	start := time.Now()
	t, err := a.parser().ParseTree(path)
	a.metrics.RecordParse("tree", errorType(err), time.Since(start))
	if err != nil {
		return nil, err
	}
	return t, nil
}

// outlineView is the printable form of tree.Outline.
type outlineView struct {
	tree.Outline
}

func (v outlineView) WriteText(w io.Writer) error {
	fmt.Fprintln(w, v.Name)
	for _, m := range v.Marks {
		fmt.Fprintf(w, "  %s\n", m.Name)
		for _, o := range m.Options {
			line := "    " + o.Name
			if o.Group == grammar.GroupOR {
				line += " [OR]"
			}
			if o.Model != "" {
				line += " -> " + o.Model
			} else {
				line += " (no model)"
			}
			fmt.Fprintln(w, line)
		}
	}
	return nil
}

func (v outlineView) Table() cli.Table {
	table := cli.Table{Headers: []string{"mark", "option", "group", "model"}}
	for _, m := range v.Marks {
		for _, o := range m.Options {
			table.Rows = append(table.Rows, []string{m.Name, o.Name, string(o.Group), o.Model})
		}
	}
	return table
}

func showTree(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(treeFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := loadTreeDocument(a)
	if err != nil {
		return cli.NewCommandError("tree show", err)
	}

	var data any = outlineView{t.Outline()}
	if format == cli.FormatJSON {
		data = t.Outline()
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}

// Resolution is the result of tree resolve.
type Resolution struct {
	Mark   string `json:"mark"`
	Option string `json:"option"`
	Model  string `json:"model"`
}

func (r Resolution) WriteText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s=%s -> %s\n", r.Mark, r.Option, r.Model)
	return err
}

func (r Resolution) Table() cli.Table {
	return cli.Table{
		Headers: []string{"mark", "option", "model"},
		Rows:    [][]string{{r.Mark, r.Option, r.Model}},
	}
}

func resolveTree(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(treeFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := loadTreeDocument(a)
	if err != nil {
		return cli.NewCommandError("tree resolve", err)
	}

	ref, err := t.ResolvePath(args[0], args[1])
	if err != nil {
		return cli.NewCommandError("tree resolve", err)
	}
	result := Resolution{Mark: args[0], Option: args[1], Model: ref.Name}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)
}

// pathList is the result of tree enumerate.
type pathList [][]solution.Selection

func (p pathList) Table() cli.Table {
	table := cli.Table{Headers: []string{"index", "path"}}
	for i, path := range p {
		table.Rows = append(table.Rows, []string{strconv.Itoa(i), solution.EncodePath(path)})
	}
	return table
}

func enumerateTree(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(treeFlags.format)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	t, err := loadTreeDocument(a)
	if err != nil {
		return cli.NewCommandError("tree enumerate", err)
	}

	paths, err := engine.New(a.logger).Enumerate(t, treeFlags.limit)
	if err != nil {
		return cli.NewCommandError("tree enumerate", err)
	}

	var data any = pathList(paths)
	if format == cli.FormatJSON {
		encoded := make([]string, len(paths))
		for i, path := range paths {
			encoded[i] = solution.EncodePath(path)
		}
		data = encoded
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
