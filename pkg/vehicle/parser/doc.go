// Package parser reads the vehicle tree document and the solutions document.
//
// Both formats are XML. The parser streams tokens through encoding/xml,
// builds an intermediate element tree with line and column positions, and
// then applies the document grammar top-down. The first violation aborts
// the parse and is returned as a grammar error carrying the file path, the
// line and the surrounding source lines.
//
// # Usage
//
//	p := parser.NewParser()
//	t, err := p.ParseTree("data.xml")
//	if err != nil {
//	    fmt.Println(err) // [grammar] mark node must have at least one child ...
//	}
//
//	doc, err := p.ParseSolutions("solutions.xml")
//
// Documents declaring a non-UTF-8 encoding are transcoded on the fly.
package parser
