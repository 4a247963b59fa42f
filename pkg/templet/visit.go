package templet

import (
	"bytes"
	"fmt"
)

type Visitor interface {
	Visit(n Node) error
}

func Walk(v Visitor, n Node) error {
	if err := v.Visit(n); err != nil { return err }
	switch t := n.(type) {
	case *IfNode:
		for _, br := range t.Branches {
			for _, c := range br.Body { if err := Walk(v, c); err != nil { return err } }
		}
	case *ForNode:
		for _, c := range t.Body { if err := Walk(v, c); err != nil { return err } }
	case *BlockNode:
		for _, c := range t.Body { if err := Walk(v, c); err != nil { return err } }
	case *IncludeNode:
		for _, c := range t.Template.nodes { if err := Walk(v, c); err != nil { return err } }
	}
	return nil
}

// Pretty returns a line-oriented string representation of a compiled
// template's node list.
func Pretty(t *Template) string {
	var buf bytes.Buffer
	for _, n := range t.nodes { ppNode(&buf, 0, n) }
	return buf.String()
}

func ppNode(buf *bytes.Buffer, indent int, n Node) {
	ind := func() { for i := 0; i < indent; i++ { buf.WriteByte(' ') } }
	switch t := n.(type) {
	case *TextNode:
		ind(); fmt.Fprintf(buf, "Text(%q)\n", t.Text)
	case *OutputNode:
		ind(); fmt.Fprintf(buf, "Output(%s)\n", t.Expr)
	case *IfNode:
		for i, br := range t.Branches {
			switch {
			case i == 0:
				ind(); fmt.Fprintf(buf, "If(%s)\n", br.Cond)
			case br.Cond != nil:
				ind(); fmt.Fprintf(buf, "Elif(%s)\n", br.Cond)
			default:
				ind(); buf.WriteString("Else\n")
			}
			for _, c := range br.Body { ppNode(buf, indent+2, c) }
		}
	case *ForNode:
		ind(); fmt.Fprintf(buf, "For(%v in %s)\n", t.Vars, t.Iter)
		for _, c := range t.Body { ppNode(buf, indent+2, c) }
	case *BlockNode:
		ind(); fmt.Fprintf(buf, "Block(%s)\n", t.Name)
		for _, c := range t.Body { ppNode(buf, indent+2, c) }
	case *IncludeNode:
		ind(); fmt.Fprintf(buf, "Include(%s)\n", t.Name)
		for _, c := range t.Template.nodes { ppNode(buf, indent+2, c) }
	}
}
