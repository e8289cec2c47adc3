package validator

import (
	"fmt"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// ValidateTree checks that every mark has at least one option, every
// option has a model reference and every name can be saved. It returns
// the first violation as a grammar error attributed to file, which may
// be empty.
//
// Edits are allowed to leave a tree incomplete between steps; this check
// runs before the tree is saved or solved against.
func ValidateTree(t *tree.ConfigTree, file string) error {
	issues := collect(t, file, true)
	if len(issues) == 0 {
		return nil
	}
	return issues[0]
}

// Issues returns every completeness violation in document order.
func Issues(t *tree.ConfigTree) []*vehErrors.Error {
	return collect(t, "", false)
}

type completeness struct {
	tree.BaseVisitor
	t      *tree.ConfigTree
	file   string
	first  bool
	issues []*vehErrors.Error
}

var errStop = fmt.Errorf("stop")

func collect(t *tree.ConfigTree, file string, first bool) []*vehErrors.Error {
	v := &completeness{t: t, file: file, first: first}
	// errStop only ends the walk early.
	_ = t.Walk(v)
	return v.issues
}

func (v *completeness) report(msg string, n tree.Node) error {
	e := &vehErrors.Error{
		Type:     vehErrors.ErrorTypeGrammar,
		Message:  msg,
		Location: vehErrors.Location{File: v.file},
	}
	if s := v.subject(n); s != "" {
		e.Suggestion = s
	}
	v.issues = append(v.issues, e)
	if v.first {
		return errStop
	}
	return nil
}

func (v *completeness) subject(n tree.Node) string {
	switch n.Kind {
	case tree.KindMark:
		return fmt.Sprintf("Add an option to mark '%s'", n.Name)
	case tree.KindOption:
		parent, _ := v.t.Node(n.Parent)
		return fmt.Sprintf("Add a model reference to option '%s' in mark '%s'", n.Name, parent.Name)
	case tree.KindRootModel, tree.KindAndOrTree, tree.KindModelRef:
	}
	return ""
}

func (v *completeness) VisitRoot(n tree.Node) error {
	return v.text(n)
}

func (v *completeness) VisitMark(n tree.Node) error {
	if err := v.text(n); err != nil {
		return err
	}
	if len(n.Children) == 0 {
		return v.report(grammar.MsgMarkChildless, n)
	}
	return nil
}

func (v *completeness) VisitOption(n tree.Node) error {
	if err := v.text(n); err != nil {
		return err
	}
	if len(n.Children) == 0 {
		return v.report(grammar.MsgOptionFirst, n)
	}
	return nil
}

func (v *completeness) VisitModelRef(n tree.Node) error {
	return v.text(n)
}

// text reports a name or detail that a saved document could not hold.
func (v *completeness) text(n tree.Node) error {
	if !grammar.ValidText(n.Name) {
		return v.report(grammar.UnsavableText(n.Kind.String()+" name", n.Name), n)
	}
	if bad, ok := unsavableDetail(n.Details); ok {
		return v.report(grammar.UnsavableText("detail", bad), n)
	}
	return nil
}

func unsavableDetail(details []tree.Detail) (string, bool) {
	for _, d := range details {
		for _, text := range []string{d.Name, d.Type, d.Value} {
			if !grammar.ValidText(text) {
				return text, true
			}
		}
		if bad, ok := unsavableDetail(d.Children); ok {
			return bad, true
		}
	}
	return "", false
}
