package parser

import (
	"strings"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// treeBuilder turns an element tree into a ConfigTree. Rules are applied
// top-down, depth-first, and the first violation aborts the build.
type treeBuilder struct {
	sourcePath string
	tree       *tree.ConfigTree
}

func newTreeBuilder(sourcePath string) *treeBuilder {
	return &treeBuilder{sourcePath: sourcePath}
}

func (b *treeBuilder) fail(el *element, message string) error {
	return vehErrors.NewGrammarError(b.sourcePath, el.line, el.column, message)
}

// build applies the tree grammar to root.
func (b *treeBuilder) build(root *element) (*tree.ConfigTree, error) {
	if root.name != grammar.ElementRoot {
		return nil, b.fail(root, grammar.MsgFirstNode)
	}
	name, _ := root.attr(grammar.AttrName)
	b.tree = tree.New(name)

	if len(root.children) == 0 {
		return nil, b.fail(root, grammar.MsgSecondNode)
	}
	andOr := root.children[0]
	if andOr.name != grammar.ElementAndOrTree {
		return nil, b.fail(andOr, grammar.MsgSecondNode)
	}

	for _, el := range andOr.childrenNamed(grammar.ElementNode) {
		if err := b.buildMark(el); err != nil {
			return nil, err
		}
	}
	return b.tree, nil
}

func (b *treeBuilder) buildMark(el *element) error {
	if kind, _ := el.attr(grammar.AttrType); !grammar.MatchType(kind, grammar.TypeMark) {
		return b.fail(el, grammar.MsgTreeChild)
	}
	name, ok := requiredName(el)
	if !ok {
		return b.fail(el, grammar.MissingName(el.line))
	}
	if _, exists := b.tree.FindMark(name); exists {
		return b.fail(el, grammar.DuplicateMark(name))
	}

	options := el.childrenNamed(grammar.ElementNode)
	if len(options) == 0 {
		return b.fail(el, grammar.MsgMarkChildless)
	}

	markID, err := b.tree.AddMark(name)
	if err != nil {
		return b.fail(el, err.Error())
	}
	for _, opt := range options {
		if err := b.buildOption(markID, name, opt); err != nil {
			return err
		}
	}
	return nil
}

func (b *treeBuilder) buildOption(markID tree.MarkID, markName string, el *element) error {
	if kind, _ := el.attr(grammar.AttrType); !grammar.MatchType(kind, grammar.TypeOption) {
		return b.fail(el, grammar.MsgMarkChild)
	}
	name, ok := requiredName(el)
	if !ok {
		return b.fail(el, grammar.MissingName(el.line))
	}
	if _, exists := b.tree.FindOption(markID, name); exists {
		return b.fail(el, grammar.DuplicateOption(markName, name))
	}
	groupAttr, _ := el.attr(grammar.AttrGroup)
	group, err := grammar.ParseGroup(groupAttr)
	if err != nil {
		return b.fail(el, err.Error())
	}

	children := el.childrenNamed(grammar.ElementNode)
	if len(children) == 0 {
		return b.fail(el, grammar.MsgOptionFirst)
	}
	model := children[0]
	if kind, _ := model.attr(grammar.AttrType); !grammar.MatchType(kind, grammar.TypeModel) {
		return b.fail(model, grammar.MsgOptionFirst)
	}
	modelName, ok := requiredName(model)
	if !ok {
		return b.fail(model, grammar.MsgModelName)
	}

	optionID, err := b.tree.AddOption(markID, name)
	if err != nil {
		return b.fail(el, err.Error())
	}
	if group != grammar.GroupAND {
		if err := b.tree.SetOptionKind(optionID, group); err != nil {
			return b.fail(el, err.Error())
		}
	}
	modelID, err := b.tree.AddModelRef(optionID, modelName)
	if err != nil {
		return b.fail(model, err.Error())
	}

	if details := buildDetails(model.childrenNamed(grammar.ElementNode)); details != nil {
		if err := b.tree.SetDetails(modelID, details); err != nil {
			return b.fail(model, err.Error())
		}
	}
	if details := buildDetails(children[1:]); details != nil {
		if err := b.tree.SetDetails(tree.NodeID(optionID), details); err != nil {
			return b.fail(el, err.Error())
		}
	}
	return nil
}

// buildDetails keeps node elements that carry no structure as opaque details.
func buildDetails(els []*element) []tree.Detail {
	if len(els) == 0 {
		return nil
	}
	details := make([]tree.Detail, len(els))
	for i, el := range els {
		name, _ := el.attr(grammar.AttrName)
		kind, _ := el.attr(grammar.AttrType)
		value, _ := el.attr(grammar.AttrValue)
		details[i] = tree.Detail{
			Name:     name,
			Type:     kind,
			Value:    value,
			Children: buildDetails(el.childrenNamed(grammar.ElementNode)),
		}
	}
	return details
}

// requiredName returns the name attribute if it is present and not blank.
func requiredName(el *element) (string, bool) {
	name, ok := el.attr(grammar.AttrName)
	if !ok || strings.TrimSpace(name) == "" {
		return "", false
	}
	return name, true
}
