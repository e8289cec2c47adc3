package vehicle

import (
	"mercator-hq/configurator/pkg/vehicle/parser"
	"mercator-hq/configurator/pkg/vehicle/serializer"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// ParseTree is a convenience function that parses a tree document with
// default parser settings.
func ParseTree(path string) (*tree.ConfigTree, error) {
	return parser.NewParser().ParseTree(path)
}

// ParseTreeBytes parses a tree document from memory.
func ParseTreeBytes(data []byte, sourcePath string) (*tree.ConfigTree, error) {
	return parser.NewParser().ParseTreeBytes(data, sourcePath)
}

// SerializeTree writes t to path. It returns the tree reference of the
// written document, for binding solutions to it.
func SerializeTree(path string, t *tree.ConfigTree) (string, error) {
	data, err := serializer.WriteTree(path, t)
	if err != nil {
		return "", err
	}
	return solution.TreeRef(data), nil
}

// ParseSolutions parses a solutions document with default parser settings.
func ParseSolutions(path string) (*solution.Document, error) {
	return parser.NewParser().ParseSolutions(path)
}

// SerializeSolutions writes doc to path.
func SerializeSolutions(path string, doc *solution.Document) error {
	return serializer.WriteSolutions(path, doc)
}

// LoadTree parses the tree document at path and returns it together with
// its tree reference.
func LoadTree(path string) (*tree.ConfigTree, string, error) {
	p := parser.NewParser()
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	t, err := p.ParseTreeBytes(data, path)
	if err != nil {
		return nil, "", err
	}
	return t, solution.TreeRef(data), nil
}
