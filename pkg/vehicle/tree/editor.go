package tree

import (
	"fmt"
	"slices"
	"strings"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
)

// Every edit checks its preconditions before touching the arena, so a
// failed edit leaves the tree exactly as it was.

// AddMark appends a mark to the and-or-tree.
func (t *ConfigTree) AddMark(name string) (MarkID, error) {
	if err := checkName("mark", name); err != nil {
		return 0, err
	}
	if _, ok := t.FindMark(name); ok {
		return 0, vehErrors.NewDuplicateName("mark", name)
	}

	id := t.alloc(KindMark, name, t.andOr)
	parent := t.nodes[t.andOr]
	parent.Children = append(parent.Children, id)
	return MarkID(id), nil
}

// AddOption appends an option to a mark.
func (t *ConfigTree) AddOption(mark MarkID, name string) (OptionID, error) {
	m, ok := t.lookup(NodeID(mark), KindMark)
	if !ok {
		return 0, notFoundID(KindMark, NodeID(mark))
	}
	if err := checkName("option", name); err != nil {
		return 0, err
	}
	if _, ok := t.FindOption(mark, name); ok {
		return 0, vehErrors.NewDuplicateName(fmt.Sprintf("option in mark %q", m.Name), name)
	}

	id := t.alloc(KindOption, name, m.ID)
	m.Children = append(m.Children, id)
	return OptionID(id), nil
}

// AddModelRef sets the model reference of an option. An existing
// reference is replaced and its subtree discarded.
func (t *ConfigTree) AddModelRef(option OptionID, name string) (NodeID, error) {
	o, ok := t.lookup(NodeID(option), KindOption)
	if !ok {
		return 0, notFoundID(KindOption, NodeID(option))
	}
	if err := checkName("model", name); err != nil {
		return 0, err
	}

	for _, old := range o.Children {
		t.sweep(old)
	}
	id := t.alloc(KindModelRef, name, o.ID)
	o.Children = []NodeID{id}
	return id, nil
}

// RemoveNode removes a mark, option or model reference with its whole
// subtree. Removing the last option of a mark is allowed; the mark stays
// incomplete until an option is added again.
func (t *ConfigTree) RemoveNode(id NodeID) error {
	n, ok := t.nodes[id]
	if !ok {
		return notFoundID(-1, id)
	}

	switch n.Kind {
	case KindRootModel, KindAndOrTree:
		return vehErrors.NewInvalidSelection(fmt.Sprintf("%s node cannot be removed", n.Kind), nil)
	case KindMark, KindOption, KindModelRef:
	}

	parent := t.nodes[n.Parent]
	parent.Children = slices.DeleteFunc(parent.Children, func(c NodeID) bool { return c == id })
	t.sweep(id)
	return nil
}

// SetOptionKind changes the AND/OR grouping tag of an option.
func (t *ConfigTree) SetOptionKind(option OptionID, group grammar.Group) error {
	o, ok := t.lookup(NodeID(option), KindOption)
	if !ok {
		return notFoundID(KindOption, NodeID(option))
	}
	g, err := grammar.ParseGroup(string(group))
	if err != nil {
		return vehErrors.NewInvalidSelection(err.Error(), nil)
	}
	o.Group = g
	return nil
}

// Rename changes the name of a node. Mark and option names stay unique
// among their siblings. The root model may be renamed to an empty name.
func (t *ConfigTree) Rename(id NodeID, name string) error {
	n, ok := t.nodes[id]
	if !ok {
		return notFoundID(-1, id)
	}

	switch n.Kind {
	case KindRootModel:
		if !grammar.ValidText(name) {
			return vehErrors.NewInvalidText("root model", name)
		}
	case KindAndOrTree:
		return vehErrors.NewInvalidSelection("and-or-tree node has no name", nil)
	case KindMark:
		if err := checkName("mark", name); err != nil {
			return err
		}
		if other, ok := t.FindMark(name); ok && NodeID(other) != id {
			return vehErrors.NewDuplicateName("mark", name)
		}
	case KindOption:
		if err := checkName("option", name); err != nil {
			return err
		}
		if other, ok := t.FindOption(MarkID(n.Parent), name); ok && NodeID(other) != id {
			return vehErrors.NewDuplicateName(fmt.Sprintf("option in mark %q", t.nodes[n.Parent].Name), name)
		}
	case KindModelRef:
		if err := checkName("model", name); err != nil {
			return err
		}
	}

	n.Name = name
	return nil
}

// SetDetails replaces the opaque details of an option or model reference.
func (t *ConfigTree) SetDetails(id NodeID, details []Detail) error {
	n, ok := t.nodes[id]
	if !ok || (n.Kind != KindOption && n.Kind != KindModelRef) {
		return notFoundID(-1, id)
	}
	if err := checkDetails(details); err != nil {
		return err
	}
	n.Details = cloneDetails(details)
	return nil
}

// sweep deletes id and everything reachable below it from the arena.
// The caller unlinks id from its parent.
func (t *ConfigTree) sweep(id NodeID) {
	stack := []NodeID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n, ok := t.nodes[cur]; ok {
			stack = append(stack, n.Children...)
			delete(t.nodes, cur)
		}
	}
}

// checkName rejects blank names and names that a save would not carry
// through unchanged.
func checkName(what, name string) error {
	if strings.TrimSpace(name) == "" {
		return vehErrors.NewInvalidName(what)
	}
	if !grammar.ValidText(name) {
		return vehErrors.NewInvalidText(what, name)
	}
	return nil
}

func checkDetails(details []Detail) error {
	for _, d := range details {
		for _, text := range []string{d.Name, d.Type, d.Value} {
			if !grammar.ValidText(text) {
				return vehErrors.NewInvalidText("detail", text)
			}
		}
		if err := checkDetails(d.Children); err != nil {
			return err
		}
	}
	return nil
}

// notFoundID reports an id that does not resolve to a node of kind.
// A negative kind stands for any kind.
func notFoundID(kind Kind, id NodeID) *vehErrors.Error {
	what := "node"
	if kind >= 0 {
		what = kind.String()
	}
	return &vehErrors.Error{
		Type:    vehErrors.ErrorTypeNotFound,
		Message: fmt.Sprintf("%s #%d not found", what, id),
	}
}
