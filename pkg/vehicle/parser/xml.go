package parser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
)

// element is the intermediate form of an XML element. Only elements and
// their attributes are kept; text, comments and processing instructions
// carry no meaning in either document format.
type element struct {
	name     string
	attrs    []xml.Attr
	line     int
	column   int
	children []*element
}

// attr returns the value of the named attribute and whether it is present.
func (e *element) attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

// childrenNamed returns the child elements with the given name, in order.
func (e *element) childrenNamed(name string) []*element {
	var out []*element
	for _, c := range e.children {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

// parseXML decodes data into an element tree. Syntax errors become grammar
// errors at the line the decoder stopped on.
func parseXML(data []byte, file string, maxDepth int) (*element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *element
		stack []*element
	)
	for {
		line, column := dec.InputPos()
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, syntaxError(err, file, line)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &element{
				name:   t.Name.Local,
				attrs:  t.Attr,
				line:   line,
				column: column,
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, vehErrors.NewGrammarError(file, line, column,
						fmt.Sprintf("unexpected element <%s> after the document element", el.name))
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, el)
			}
			stack = append(stack, el)
			if len(stack) > maxDepth {
				return nil, vehErrors.NewGrammarError(file, line, column,
					fmt.Sprintf("document nesting exceeds maximum depth %d", maxDepth))
			}
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		}
	}

	if root == nil {
		return nil, vehErrors.NewGrammarError(file, 1, 0, grammar.MsgFirstNode)
	}
	return root, nil
}

func syntaxError(err error, file string, line int) *vehErrors.Error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &vehErrors.Error{
			Type:     vehErrors.ErrorTypeGrammar,
			Message:  "malformed XML: " + se.Msg,
			Location: vehErrors.Location{File: file, Line: se.Line},
		}
	}
	return &vehErrors.Error{
		Type:     vehErrors.ErrorTypeGrammar,
		Message:  "malformed XML",
		Location: vehErrors.Location{File: file, Line: max(line, 1)},
		Cause:    err,
	}
}
