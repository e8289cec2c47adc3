package serializer

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"mercator-hq/configurator/pkg/vehicle/grammar"
	"mercator-hq/configurator/pkg/vehicle/solution"
	"mercator-hq/configurator/pkg/vehicle/tree"
	"mercator-hq/configurator/pkg/vehicle/validator"
)

const indentUnit = "  "

// EncodeTree renders t as a tree document. An incomplete tree is rejected
// with the grammar error the parser would report for it.
func EncodeTree(t *tree.ConfigTree) ([]byte, error) {
	if err := validator.ValidateTree(t, ""); err != nil {
		return nil, err
	}
	return encodeTree(t), nil
}

func encodeTree(t *tree.ConfigTree) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)

	openTag(&b, 0, grammar.ElementRoot, attrs{grammar.AttrName, t.Name()})
	b.WriteString(">\n")
	indent(&b, 1)
	b.WriteString("<" + grammar.ElementAndOrTree + ">\n")

	outline := t.Outline()
	for _, m := range outline.Marks {
		openTag(&b, 2, grammar.ElementNode, attrs{grammar.AttrType, grammar.TypeMark, grammar.AttrName, m.Name})
		b.WriteString(">\n")
		for _, o := range m.Options {
			a := attrs{grammar.AttrType, grammar.TypeOption, grammar.AttrName, o.Name}
			if o.Group == grammar.GroupOR {
				a = append(a, grammar.AttrGroup, string(grammar.GroupOR))
			}
			openTag(&b, 3, grammar.ElementNode, a)
			b.WriteString(">\n")

			model := attrs{grammar.AttrType, grammar.TypeModel, grammar.AttrName, o.Model}
			writeNode(&b, 4, model, o.ModelDetails)
			for _, d := range o.Details {
				writeDetail(&b, 4, d)
			}
			closeTag(&b, 3, grammar.ElementNode)
		}
		closeTag(&b, 2, grammar.ElementNode)
	}

	closeTag(&b, 1, grammar.ElementAndOrTree)
	closeTag(&b, 0, grammar.ElementRoot)
	return b.Bytes()
}

func writeDetail(b *bytes.Buffer, depth int, d tree.Detail) {
	writeNode(b, depth, attrs{grammar.AttrType, d.Type, grammar.AttrName, d.Name, grammar.AttrValue, d.Value}, d.Children)
}

// writeNode writes a node element, self-closing when it has no children.
func writeNode(b *bytes.Buffer, depth int, a attrs, children []tree.Detail) {
	openTag(b, depth, grammar.ElementNode, a)
	if len(children) == 0 {
		b.WriteString("/>\n")
		return
	}
	b.WriteString(">\n")
	for _, c := range children {
		writeDetail(b, depth+1, c)
	}
	closeTag(b, depth, grammar.ElementNode)
}

// EncodeSolutions renders doc as a solutions document.
func EncodeSolutions(doc *solution.Document) []byte {
	return encodeSolutions(doc.TreeRef, doc.Solutions.All())
}

func encodeSolutions(treeRef string, solutions []*solution.Solution) []byte {
	var b bytes.Buffer
	b.WriteString(xml.Header)

	openTag(&b, 0, grammar.ElementSolutions, nil)
	// The tree attribute is required even when empty.
	b.WriteString(` ` + grammar.AttrTree + `="`)
	escape(&b, treeRef)
	b.WriteString("\">\n")

	for _, s := range solutions {
		indent(&b, 1)
		b.WriteString("<" + grammar.ElementSolution + ">\n")
		fields := []struct{ name, value string }{
			{grammar.FieldFullDescription, s.FullDescription()},
			{grammar.FieldShortDescription, s.ShortDescription()},
			{grammar.FieldPrice, FormatPrice(s.Price())},
			{grammar.FieldModel, s.ModelName()},
			{grammar.FieldMark, solution.EncodePath(s.MarkPath())},
			{grammar.FieldHash, s.Hash()},
		}
		for _, f := range fields {
			indent(&b, 2)
			b.WriteString("<" + f.name + ` ` + grammar.AttrValue + `="`)
			escape(&b, f.value)
			b.WriteString("\"/>\n")
		}
		closeTag(&b, 1, grammar.ElementSolution)
	}

	closeTag(&b, 0, grammar.ElementSolutions)
	return b.Bytes()
}

// FormatPrice renders a price with two decimals, or with its full
// precision when it has more.
func FormatPrice(p decimal.Decimal) string {
	if p.Equal(p.Round(2)) {
		return p.StringFixed(2)
	}
	return p.String()
}

// attrs is a flat list of name, value pairs. Empty values are omitted.
type attrs []string

func openTag(b *bytes.Buffer, depth int, name string, a attrs) {
	indent(b, depth)
	b.WriteString("<" + name)
	for i := 0; i+1 < len(a); i += 2 {
		if a[i+1] == "" {
			continue
		}
		fmt.Fprintf(b, ` %s="`, a[i])
		escape(b, a[i+1])
		b.WriteByte('"')
	}
}

func closeTag(b *bytes.Buffer, depth int, name string) {
	indent(b, depth)
	b.WriteString("</" + name + ">\n")
}

func indent(b *bytes.Buffer, depth int) {
	b.WriteString(strings.Repeat(indentUnit, depth))
}

// escape writes s as attribute text. xml.EscapeText also escapes quotes
// and line breaks, so values survive a round trip unchanged.
func escape(b *bytes.Buffer, s string) {
	// bytes.Buffer writes never fail.
	_ = xml.EscapeText(b, []byte(s))
}
