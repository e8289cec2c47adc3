package parser

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/solution"
)

// solutionsBuilder turns an element tree into a solutions document.
type solutionsBuilder struct {
	sourcePath string
}

func newSolutionsBuilder(sourcePath string) *solutionsBuilder {
	return &solutionsBuilder{sourcePath: sourcePath}
}

func (b *solutionsBuilder) fail(el *element, message string) error {
	return vehErrors.NewGrammarError(b.sourcePath, el.line, el.column, message)
}

func (b *solutionsBuilder) build(root *element) (*solution.Document, error) {
	if root.name != grammar.ElementSolutions {
		return nil, b.fail(root, grammar.MsgSolutionsRoot)
	}
	ref, ok := root.attr(grammar.AttrTree)
	if !ok {
		return nil, b.fail(root, grammar.MsgSolutionsTree)
	}

	doc := solution.NewDocument(strings.TrimSpace(ref))
	for _, el := range root.children {
		if el.name != grammar.ElementSolution {
			return nil, b.fail(el, grammar.MsgSolutionChild)
		}
		s, err := b.buildSolution(el)
		if err != nil {
			return nil, err
		}
		if _, err := doc.Solutions.Add(s); err != nil {
			return nil, b.fail(el, fmt.Sprintf("duplicate solution hash '%s'", s.Hash()))
		}
	}
	return doc, nil
}

func (b *solutionsBuilder) buildSolution(el *element) (*solution.Solution, error) {
	values := make(map[string]string, len(grammar.SolutionFields))
	fieldEls := make(map[string]*element, len(grammar.SolutionFields))

	for i, field := range grammar.SolutionFields {
		if i >= len(el.children) {
			return nil, b.fail(el, grammar.SolutionField(i, field))
		}
		child := el.children[i]
		if child.name != field {
			return nil, b.fail(child, grammar.SolutionField(i, field))
		}
		value, ok := child.attr(grammar.AttrValue)
		if !ok || (!grammar.FreeText(field) && strings.TrimSpace(value) == "") {
			return nil, b.fail(child, grammar.SolutionValue(field))
		}
		values[field] = value
		fieldEls[field] = child
	}
	if extra := len(grammar.SolutionFields); len(el.children) > extra {
		child := el.children[extra]
		return nil, b.fail(child, fmt.Sprintf("unexpected <%s> after the %s node", child.name, grammar.FieldHash))
	}

	price, err := decimal.NewFromString(strings.TrimSpace(values[grammar.FieldPrice]))
	if err != nil || price.IsNegative() {
		return nil, b.fail(fieldEls[grammar.FieldPrice],
			fmt.Sprintf("price value '%s' must be a non-negative number", values[grammar.FieldPrice]))
	}

	path, err := solution.DecodePath(values[grammar.FieldMark])
	if err != nil {
		return nil, b.fail(fieldEls[grammar.FieldMark], fmt.Sprintf("mark value is not a valid mark path: %v", err))
	}

	hash := strings.ToLower(strings.TrimSpace(values[grammar.FieldHash]))
	if !solution.IsHash(hash) {
		return nil, b.fail(fieldEls[grammar.FieldHash],
			fmt.Sprintf("hash value must be %d hexadecimal characters", solution.HashLength))
	}

	s, err := solution.New(solution.Fields{
		FullDescription:  values[grammar.FieldFullDescription],
		ShortDescription: values[grammar.FieldShortDescription],
		Price:            price,
		ModelName:        values[grammar.FieldModel],
		MarkPath:         path,
		Hash:             hash,
	})
	if err != nil {
		msg := err.Error()
		if ve, ok := err.(*vehErrors.Error); ok {
			msg = ve.Message
		}
		return nil, b.fail(el, msg)
	}
	return s, nil
}
