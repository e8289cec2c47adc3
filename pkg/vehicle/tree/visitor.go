package tree

import (
	"reflect"

	"mercator-hq/configurator/pkg/vehicle/grammar"
)

// Visitor receives the nodes of a tree in document order.
// Returning an error stops the walk.
type Visitor interface {
	VisitRoot(Node) error
	VisitMark(Node) error
	VisitOption(Node) error
	VisitModelRef(Node) error
}

// BaseVisitor implements Visitor with no-ops. Embed it to handle only some kinds.
type BaseVisitor struct{}

func (BaseVisitor) VisitRoot(Node) error     { return nil }
func (BaseVisitor) VisitMark(Node) error     { return nil }
func (BaseVisitor) VisitOption(Node) error   { return nil }
func (BaseVisitor) VisitModelRef(Node) error { return nil }

// Walk traverses the tree depth-first, parents before children.
// It returns the first error returned by the visitor.
func (t *ConfigTree) Walk(v Visitor) error {
	return t.walk(t.root, v)
}

func (t *ConfigTree) walk(id NodeID, v Visitor) error {
	n := t.nodes[id]

	var err error
	switch n.Kind {
	case KindRootModel:
		err = v.VisitRoot(n.copy())
	case KindAndOrTree:
		// Structural only.
	case KindMark:
		err = v.VisitMark(n.copy())
	case KindOption:
		err = v.VisitOption(n.copy())
	case KindModelRef:
		err = v.VisitModelRef(n.copy())
	}
	if err != nil {
		return err
	}

	for _, c := range n.Children {
		if err := t.walk(c, v); err != nil {
			return err
		}
	}
	return nil
}

// Outline is a value snapshot of a tree without ids.
// Two trees are equal when their outlines are equal.
type Outline struct {
	Name  string
	Marks []MarkOutline
}

// MarkOutline is one mark of an Outline.
type MarkOutline struct {
	Name    string
	Options []OptionOutline
}

// OptionOutline is one option of an Outline. Model is empty when the
// option has no model reference.
type OptionOutline struct {
	Name         string
	Group        grammar.Group
	Model        string
	ModelDetails []Detail
	Details      []Detail
}

// Outline returns the tree as nested values.
func (t *ConfigTree) Outline() Outline {
	out := Outline{Name: t.Name()}
	for _, markID := range t.nodes[t.andOr].Children {
		m := t.nodes[markID]
		mo := MarkOutline{Name: m.Name}
		for _, optionID := range m.Children {
			o := t.nodes[optionID]
			oo := OptionOutline{
				Name:    o.Name,
				Group:   o.Group,
				Details: cloneDetails(o.Details),
			}
			if len(o.Children) > 0 {
				model := t.nodes[o.Children[0]]
				oo.Model = model.Name
				oo.ModelDetails = cloneDetails(model.Details)
			}
			mo.Options = append(mo.Options, oo)
		}
		out.Marks = append(out.Marks, mo)
	}
	return out
}

// Equal reports whether two trees hold the same marks, options, model
// references and details in the same order. Ids are not compared.
func Equal(a, b *ConfigTree) bool {
	return reflect.DeepEqual(a.Outline(), b.Outline())
}
