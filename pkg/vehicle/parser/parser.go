package parser

import (
	"fmt"
	"io"
	"os"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
)

// Parser reads tree and solutions documents. It keeps no state between
// calls and can be reused.
type Parser struct {
	// Configuration
	maxFileSize int64 // Maximum document size in bytes (default: 10MB)
	maxDepth    int   // Maximum element nesting depth (default: 64)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    64,
	}
}

// WithMaxFileSize sets the maximum document size.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum element nesting depth.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// ParseTree parses the tree document at path.
func (p *Parser) ParseTree(path string) (*tree.ConfigTree, error) {
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseTreeBytes(data, path)
}

// ParseTreeBytes parses a tree document from memory. sourcePath is only
// used in error locations.
func (p *Parser) ParseTreeBytes(data []byte, sourcePath string) (*tree.ConfigTree, error) {
	root, err := p.decode(data, sourcePath)
	if err != nil {
		return nil, err
	}
	t, err := newTreeBuilder(sourcePath).build(root)
	if err != nil {
		return nil, withSource(err, data)
	}
	return t, nil
}

// ParseSolutions parses the solutions document at path.
func (p *Parser) ParseSolutions(path string) (*solution.Document, error) {
	data, err := p.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseSolutionsBytes(data, path)
}

// ParseSolutionsBytes parses a solutions document from memory.
func (p *Parser) ParseSolutionsBytes(data []byte, sourcePath string) (*solution.Document, error) {
	root, err := p.decode(data, sourcePath)
	if err != nil {
		return nil, err
	}
	doc, err := newSolutionsBuilder(sourcePath).build(root)
	if err != nil {
		return nil, withSource(err, data)
	}
	return doc, nil
}

func (p *Parser) decode(data []byte, sourcePath string) (*element, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, vehErrors.NewIOError(sourcePath,
			fmt.Sprintf("document size %d exceeds maximum %d bytes", len(data), p.maxFileSize), nil)
	}
	root, err := parseXML(data, sourcePath, p.maxDepth)
	if err != nil {
		return nil, withSource(err, data)
	}
	return root, nil
}

// ReadFile reads a whole document within the size limit. The handle is
// closed on every path.
func (p *Parser) ReadFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, vehErrors.NewIOError(path, "cannot open file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, vehErrors.NewIOError(path, "cannot stat file", err)
	}
	if info.Size() > p.maxFileSize {
		return nil, vehErrors.NewIOError(path,
			fmt.Sprintf("file size %d exceeds maximum %d bytes", info.Size(), p.maxFileSize), nil)
	}

	data, err := io.ReadAll(io.LimitReader(f, p.maxFileSize+1))
	if err != nil {
		return nil, vehErrors.NewIOError(path, "cannot read file", err)
	}
	return data, nil
}

func withSource(err error, data []byte) error {
	if e, ok := err.(*vehErrors.Error); ok {
		return vehErrors.WithSource(e, data)
	}
	return err
}
