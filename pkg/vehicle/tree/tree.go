package tree

import (
	"fmt"
	"slices"

	"mercator-hq/configurator/pkg/vehicle/grammar"
)

// NodeID addresses a node in a ConfigTree. Ids are never reused, so an id
// whose node was removed keeps resolving to nothing.
type NodeID uint64

// MarkID addresses a mark node.
type MarkID NodeID

// OptionID addresses an option node.
type OptionID NodeID

// Kind is the closed set of node kinds.
type Kind int

const (
	KindRootModel Kind = iota
	KindAndOrTree
	KindMark
	KindOption
	KindModelRef
)

// String returns the document name of the kind.
func (k Kind) String() string {
	switch k {
	case KindRootModel:
		return grammar.ElementRoot
	case KindAndOrTree:
		return grammar.ElementAndOrTree
	case KindMark:
		return grammar.TypeMark
	case KindOption:
		return "option"
	case KindModelRef:
		return grammar.TypeModel
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Detail is an opaque subtree kept under an option or a model reference.
// It is written back as it was read and ignored by every algorithm.
type Detail struct {
	Name     string
	Type     string
	Value    string
	Children []Detail
}

// Node is a copy of one node of the tree. Mutating it has no effect on the tree.
type Node struct {
	ID       NodeID
	Kind     Kind
	Name     string
	Group    grammar.Group // Options only
	Parent   NodeID
	Children []NodeID
	Details  []Detail // Options and model references only
}

// ConfigTree is an arena of nodes rooted at a RootModel whose only child is
// the AndOrTree. It is not safe for concurrent use.
type ConfigTree struct {
	nodes map[NodeID]*Node
	root  NodeID
	andOr NodeID
	next  NodeID
}

// New returns a tree holding only the root model and an empty and-or-tree.
func New(rootName string) *ConfigTree {
	t := &ConfigTree{nodes: make(map[NodeID]*Node)}
	t.root = t.alloc(KindRootModel, rootName, 0)
	t.andOr = t.alloc(KindAndOrTree, "", t.root)
	t.nodes[t.root].Children = []NodeID{t.andOr}
	return t
}

func (t *ConfigTree) alloc(kind Kind, name string, parent NodeID) NodeID {
	t.next++
	id := t.next
	n := &Node{ID: id, Kind: kind, Name: name, Parent: parent}
	if kind == KindOption {
		n.Group = grammar.GroupAND
	}
	t.nodes[id] = n
	return id
}

// Name returns the name of the root model; it may be empty.
func (t *ConfigTree) Name() string {
	return t.nodes[t.root].Name
}

// Root returns the id of the root model.
func (t *ConfigTree) Root() NodeID {
	return t.root
}

// AndOrTree returns the id of the and-or-tree node.
func (t *ConfigTree) AndOrTree() NodeID {
	return t.andOr
}

// Len returns the number of live nodes, root included.
func (t *ConfigTree) Len() int {
	return len(t.nodes)
}

// Node returns a copy of the node with the given id.
func (t *ConfigTree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.copy(), true
}

// Clone returns a deep copy of the tree. Ids are preserved.
func (t *ConfigTree) Clone() *ConfigTree {
	c := &ConfigTree{
		nodes: make(map[NodeID]*Node, len(t.nodes)),
		root:  t.root,
		andOr: t.andOr,
		next:  t.next,
	}
	for id, n := range t.nodes {
		cp := n.copy()
		c.nodes[id] = &cp
	}
	return c
}

func (n *Node) copy() Node {
	cp := *n
	cp.Children = slices.Clone(n.Children)
	cp.Details = cloneDetails(n.Details)
	return cp
}

// cloneDetails deep-copies details. Empty input yields nil.
func cloneDetails(in []Detail) []Detail {
	if len(in) == 0 {
		return nil
	}
	out := make([]Detail, len(in))
	for i, d := range in {
		out[i] = Detail{
			Name:     d.Name,
			Type:     d.Type,
			Value:    d.Value,
			Children: cloneDetails(d.Children),
		}
	}
	return out
}

// lookup returns the live node with id if it has the wanted kind.
func (t *ConfigTree) lookup(id NodeID, kind Kind) (*Node, bool) {
	n, ok := t.nodes[id]
	if !ok || n.Kind != kind {
		return nil, false
	}
	return n, true
}
