package templet

import (
	"regexp"
	"strconv"
	"strings"
)

var nameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
var intRe = regexp.MustCompile(`^-?[0-9]+$`)

// IsValidName reports whether s is a valid template name: an identifier of
// letters, digits and underscores not starting with a digit. The grammar
// applies to path segments, filter names, loop variables, block names and
// extends/include targets alike.
func IsValidName(s string) bool { return nameRe.MatchString(s) }

// Expr describes a parsed variable expression: a head atom followed by a
// filter pipeline, e.g. "obj.getit.y|str" or "num|add:2". The head is
// either a dotted path or a literal (an integer or single-quoted string).
type Expr struct {
	Root    Value    // non-nil when the head atom is a literal
	Path    []string // dotted path segments; empty only when Root is set
	Filters []FilterCall
}

// FilterCall is one application in a filter pipeline. Filters take at most
// one argument.
type FilterCall struct {
	Name string
	Args []Arg
}

// Arg is a filter argument: exactly one of Literal or Path is set.
type Arg struct {
	Literal Value
	Path    []string
}

func (e *Expr) String() string {
	var b strings.Builder
	if e.Root != nil {
		b.WriteString(literalString(e.Root))
	} else {
		b.WriteString(strings.Join(e.Path, "."))
	}
	for _, f := range e.Filters {
		b.WriteByte('|')
		b.WriteString(f.Name)
		for _, a := range f.Args {
			b.WriteByte(':')
			if a.Literal != nil {
				b.WriteString(literalString(a.Literal))
			} else {
				b.WriteString(strings.Join(a.Path, "."))
			}
		}
	}
	return b.String()
}

func literalString(v Value) string {
	if s, ok := v.(StringValue); ok {
		return "'" + string(s) + "'"
	}
	return v.String()
}

// parseExpr parses the raw contents of an expression tag or a tag operand.
func parseExpr(raw string) (*Expr, error) {
	parts := strings.Split(raw, "|")
	e := &Expr{}
	head := strings.TrimSpace(parts[0])
	if lit, ok := parseLiteral(head); ok {
		e.Root = lit
	} else {
		path, err := parsePath(head)
		if err != nil {
			return nil, err
		}
		e.Path = path
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		name := part
		var args []Arg
		if i := strings.IndexByte(part, ':'); i >= 0 {
			name = strings.TrimSpace(part[:i])
			arg, err := parseArg(strings.TrimSpace(part[i+1:]))
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		if !nameRe.MatchString(name) {
			return nil, syntaxErrorf("Not a valid name", name)
		}
		e.Filters = append(e.Filters, FilterCall{Name: name, Args: args})
	}
	return e, nil
}

// parsePath splits a dotted path and validates every segment independently.
func parsePath(s string) ([]string, error) {
	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if !nameRe.MatchString(seg) {
			return nil, syntaxErrorf("Not a valid name", seg)
		}
	}
	return segs, nil
}

// parseLiteral recognizes the two literal atom forms: integers and
// single-quoted strings. Quoted strings carry no escape processing.
func parseLiteral(s string) (Value, bool) {
	if intRe.MatchString(s) {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, false
		}
		return IntValue(n), true
	}
	if len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\'' {
		return StringValue(s[1 : len(s)-1]), true
	}
	return nil, false
}

func parseArg(s string) (Arg, error) {
	if lit, ok := parseLiteral(s); ok {
		return Arg{Literal: lit}, nil
	}
	path, err := parsePath(s)
	if err != nil {
		return Arg{}, err
	}
	return Arg{Path: path}, nil
}
