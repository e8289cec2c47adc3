package main

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/net/html/charset"

	"mercator-hq/configurator/pkg/cli"
	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/engine"
	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/parser"
	"mercator-hq/configurator/pkg/vehicle/tree"
	"mercator-hq/configurator/pkg/vehicle/validator"
)

// Document kinds accepted by --kind.
const (
	kindAuto      = "auto"
	kindTree      = "tree"
	kindSolutions = "solutions"
)

var lintFlags struct {
	kind   string
	tree   string
	strict bool
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Validate tree and solutions documents",
	Long: `Validate tree and solutions documents.

Each file is parsed against its grammar. The kind of document is taken
from its root element unless --kind says otherwise.

Tree documents are also checked for completeness: a mark without
options or an option without a model is reported as a warning.

Solutions documents are checked against the tree given with --tree, if
any: solutions that no longer resolve are reported as warnings.

Examples:
  # Lint a tree and a solutions document
  vehicle lint data.xml solutions.xml

  # Check solutions against a tree, failing on stale ones
  vehicle lint solutions.xml --tree data.xml --strict

  # JSON output for CI/CD
  vehicle lint data.xml --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintDocuments,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.kind, "kind", kindAuto, "document kind: auto, tree, solutions")
	lintCmd.Flags().StringVar(&lintFlags.tree, "tree", "", "tree document to check solutions against")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// LintResult represents the validation result for a single document.
type LintResult struct {
	File     string      `json:"file"`
	Kind     string      `json:"kind"`
	Valid    bool        `json:"valid"`
	Errors   []LintIssue `json:"errors,omitempty"`
	Warnings []LintIssue `json:"warnings,omitempty"`

	err error
}

// LintIssue represents a single validation error or warning.
type LintIssue struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Type       string `json:"type,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func issueFrom(err error) LintIssue {
	var vehErr *vehErrors.Error
	if errors.As(err, &vehErr) {
		return LintIssue{
			Line:       vehErr.Location.Line,
			Column:     vehErr.Location.Column,
			Message:    vehErr.Message,
			Type:       string(vehErr.Type),
			Suggestion: vehErr.Suggestion,
		}
	}
	return LintIssue{Message: err.Error()}
}

func lintDocuments(cmd *cobra.Command, args []string) error {
	switch lintFlags.kind {
	case kindAuto, kindTree, kindSolutions:
	default:
		return fmt.Errorf("invalid kind %q: must be 'auto', 'tree', or 'solutions'", lintFlags.kind)
	}
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return err
	}
	if format == cli.FormatCSV {
		return fmt.Errorf("lint does not support csv output")
	}

	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	p := a.parser()
	var against *tree.ConfigTree
	if lintFlags.tree != "" {
		if against, err = p.ParseTree(lintFlags.tree); err != nil {
			return cli.NewCommandError("lint", err)
		}
	}

	eng := engine.New(a.logger)
	results := make([]LintResult, 0, len(args))
	for _, file := range args {
		results = append(results, lintFile(p, eng, file, against))
	}

	out := cmd.OutOrStdout()
	if format == cli.FormatJSON {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(out, results); err != nil {
			return err
		}
	} else {
		writeLintText(out, results, lintFlags.strict)
	}
	return lintOutcome(results, lintFlags.strict)
}

func lintFile(p *parser.Parser, eng *engine.Engine, file string, against *tree.ConfigTree) LintResult {
	result := LintResult{File: file, Kind: lintFlags.kind, Valid: true}

	data, err := p.ReadFile(file)
	if err != nil {
		return result.fail(err)
	}
	if result.Kind == kindAuto {
		if result.Kind, err = sniffKind(data, file); err != nil {
			return result.fail(err)
		}
	}

	switch result.Kind {
	case kindTree:
		t, err := p.ParseTreeBytes(data, file)
		if err != nil {
			return result.fail(err)
		}
		for _, issue := range validator.Issues(t) {
			result.Warnings = append(result.Warnings, issueFrom(issue))
		}
	case kindSolutions:
		doc, err := p.ParseSolutionsBytes(data, file)
		if err != nil {
			return result.fail(err)
		}
		if against != nil {
			for i, v := range eng.ValidateAll(doc.Solutions, against) {
				if !v.Fresh() {
					result.Warnings = append(result.Warnings, LintIssue{
						Message: fmt.Sprintf("solution %d (%s) is stale: %s", i, v.Hash, v.Reason),
						Type:    v.Status.String(),
					})
				}
			}
		}
	}
	return result
}

func (r LintResult) fail(err error) LintResult {
	r.Valid = false
	r.Errors = append(r.Errors, issueFrom(err))
	r.err = err
	return r
}

// sniffKind reads the name of the root element.
func sniffKind(data []byte, file string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return "", vehErrors.NewGrammarError(file, 1, 0, grammar.MsgFirstNode)
			}
			line, _ := dec.InputPos()
			return "", vehErrors.NewGrammarError(file, line, 0, err.Error())
		}
		if start, ok := tok.(xml.StartElement); ok {
			switch start.Name.Local {
			case grammar.ElementSolutions:
				return kindSolutions, nil
			default:
				// Anything else is parsed as a tree so the tree grammar
				// reports the bad root.
				return kindTree, nil
			}
		}
	}
}

func writeLintText(w io.Writer, results []LintResult, strict bool) {
	totalErrors := 0
	totalWarnings := 0

	for _, result := range results {
		fmt.Fprintf(w, "Validating %s (%s)...\n", result.File, result.Kind)

		if len(result.Errors) == 0 && len(result.Warnings) == 0 {
			fmt.Fprintln(w, "✓ Document valid")
		}

		for _, issue := range result.Errors {
			fmt.Fprintf(w, "✗ Error: %s", formatIssue(issue))
			fmt.Fprintln(w)
			totalErrors++
		}

		for _, issue := range result.Warnings {
			fmt.Fprintf(w, "⚠  Warning: %s", formatIssue(issue))
			fmt.Fprintln(w)
			totalWarnings++
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Summary:")
	fmt.Fprintf(w, "  %d error(s), %d warning(s)\n", totalErrors, totalWarnings)
	if strict && totalWarnings > 0 {
		fmt.Fprintln(w, "  Strict mode enabled: treating warnings as errors")
	}
}

func formatIssue(issue LintIssue) string {
	s := issue.Message
	if issue.Line > 0 {
		s += fmt.Sprintf(" (line %d", issue.Line)
		if issue.Column > 0 {
			s += fmt.Sprintf(", col %d", issue.Column)
		}
		s += ")"
	}
	if issue.Type != "" {
		s += fmt.Sprintf(" [%s]", issue.Type)
	}
	if issue.Suggestion != "" {
		s += fmt.Sprintf(" - %s", issue.Suggestion)
	}
	return s
}

// lintOutcome returns the error of the first failed document, so the exit
// code reflects its error type.
func lintOutcome(results []LintResult, strict bool) error {
	failed := 0
	var first error
	for _, r := range results {
		if r.err != nil {
			failed++
			if first == nil {
				first = r.err
			}
		}
	}
	if failed > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d of %d document(s) failed validation: %w", failed, len(results), first))
	}

	if strict {
		for _, r := range results {
			if len(r.Warnings) > 0 {
				return cli.NewCommandError("lint", vehErrors.NewGrammarError(r.File, r.Warnings[0].Line, r.Warnings[0].Column, "warnings treated as errors"))
			}
		}
	}
	return nil
}
