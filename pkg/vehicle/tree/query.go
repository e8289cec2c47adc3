package tree

import (
	"fmt"
	"slices"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
)

// ModelRef is the result of resolving a mark and option pair.
type ModelRef struct {
	ID     NodeID
	Name   string
	Mark   MarkID
	Option OptionID
}

// Marks returns the marks in document order.
func (t *ConfigTree) Marks() []MarkID {
	children := t.nodes[t.andOr].Children
	marks := make([]MarkID, len(children))
	for i, c := range children {
		marks[i] = MarkID(c)
	}
	return marks
}

// Options returns the options of a mark in document order.
func (t *ConfigTree) Options(mark MarkID) ([]OptionID, error) {
	m, ok := t.lookup(NodeID(mark), KindMark)
	if !ok {
		return nil, notFoundID(KindMark, NodeID(mark))
	}
	options := make([]OptionID, len(m.Children))
	for i, c := range m.Children {
		options[i] = OptionID(c)
	}
	return options, nil
}

// FindMark looks a mark up by its exact name.
func (t *ConfigTree) FindMark(name string) (MarkID, bool) {
	for _, c := range t.nodes[t.andOr].Children {
		if t.nodes[c].Name == name {
			return MarkID(c), true
		}
	}
	return 0, false
}

// FindOption looks an option up by its exact name within a mark.
func (t *ConfigTree) FindOption(mark MarkID, name string) (OptionID, bool) {
	m, ok := t.lookup(NodeID(mark), KindMark)
	if !ok {
		return 0, false
	}
	for _, c := range m.Children {
		if t.nodes[c].Name == name {
			return OptionID(c), true
		}
	}
	return 0, false
}

// ModelOf returns the model reference of an option, if it has one.
func (t *ConfigTree) ModelOf(option OptionID) (Node, bool) {
	o, ok := t.lookup(NodeID(option), KindOption)
	if !ok || len(o.Children) == 0 {
		return Node{}, false
	}
	return t.Node(o.Children[0])
}

// MarkNames returns the names of all marks in document order.
func (t *ConfigTree) MarkNames() []string {
	children := t.nodes[t.andOr].Children
	names := make([]string, 0, len(children))
	for _, c := range children {
		names = append(names, t.nodes[c].Name)
	}
	return names
}

// OptionNames returns the option names of a mark in document order.
func (t *ConfigTree) OptionNames(mark MarkID) []string {
	m, ok := t.lookup(NodeID(mark), KindMark)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(m.Children))
	for _, c := range m.Children {
		names = append(names, t.nodes[c].Name)
	}
	return names
}

// ResolvePath finds the model reference reached by choosing option under mark.
// Unknown names fail with a NotFound error suggesting the closest sibling.
func (t *ConfigTree) ResolvePath(mark, option string) (ModelRef, error) {
	markID, ok := t.FindMark(mark)
	if !ok {
		return ModelRef{}, vehErrors.NewNotFound("mark", mark, t.MarkNames())
	}
	optionID, ok := t.FindOption(markID, option)
	if !ok {
		return ModelRef{}, vehErrors.NewNotFound(fmt.Sprintf("option in mark %q", mark), option, t.OptionNames(markID))
	}
	model, ok := t.ModelOf(optionID)
	if !ok {
		return ModelRef{}, &vehErrors.Error{
			Type:    vehErrors.ErrorTypeNotFound,
			Message: fmt.Sprintf("option %q in mark %q has no model reference", option, mark),
		}
	}
	return ModelRef{ID: model.ID, Name: model.Name, Mark: markID, Option: optionID}, nil
}

// Complete reports whether a mark has at least one option and every
// option carries a model reference.
func (t *ConfigTree) Complete(mark MarkID) bool {
	m, ok := t.lookup(NodeID(mark), KindMark)
	if !ok || len(m.Children) == 0 {
		return false
	}
	return !slices.ContainsFunc(m.Children, func(c NodeID) bool {
		return len(t.nodes[c].Children) == 0
	})
}
