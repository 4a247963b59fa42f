// Package templet compiles and renders a small text template language.
//
// Templates interpolate expressions with {{ ... }}, run control flow
// with {% ... %} action tags (if/elif/else, for, block, extends,
// include) and drop {# ... #} comments. A template is compiled once
// against a construction namespace and can then be rendered any number
// of times against per-render contexts.
package templet

import "strings"

// Context is a set of named values, used both as the construction
// namespace a template is compiled against and as the data a render
// consults.
type Context map[string]Value

// NewContext converts plain Go values into a Context.
func NewContext(m map[string]any) Context {
	ctx := make(Context, len(m))
	for k, v := range m {
		ctx[k] = FromGo(v)
	}
	return ctx
}

// Merge returns a copy of c with the entries of others layered on top,
// later contexts winning.
func (c Context) Merge(others ...Context) Context {
	out := make(Context, len(c))
	for k, v := range c {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Template is a compiled template, reusable across renders.
type Template struct {
	nodes  []Node
	blocks map[string][]Node
	ns     Context
}

// Compile parses text against the construction namespace ns, resolving
// extends and include references through it, and returns the compiled
// template. The returned error is a *SyntaxError when text is malformed.
func Compile(text string, ns Context) (*Template, error) {
	return compile(text, ns, 0)
}

// MustCompile is like Compile but panics on error. It simplifies safe
// initialization of templates held in package variables.
func MustCompile(text string, ns Context) *Template {
	t, err := Compile(text, ns)
	if err != nil {
		panic(err)
	}
	return t
}

// Render evaluates the template against ctx and returns the produced
// text. Name scoping is loop locals first, then ctx, then the
// construction namespace.
func (t *Template) Render(ctx Context) (string, error) {
	rc := &renderCtx{
		ns:     t.ns,
		ctx:    ctx,
		locals: map[string]Value{},
		out:    &strings.Builder{},
	}
	if err := rc.renderNodes(t.nodes); err != nil {
		return "", err
	}
	return rc.out.String(), nil
}

// Nodes exposes the compiled node list, mainly for inspection tooling.
func (t *Template) Nodes() []Node {
	return t.nodes
}

// Blocks returns the names of the blocks the template defines at top
// level, after inheritance has been resolved.
func (t *Template) Blocks() []string {
	names := make([]string, 0, len(t.blocks))
	for name := range t.blocks {
		names = append(names, name)
	}
	return names
}

// TemplateString is an uncompiled template source, handy for namespaces
// and manifests that carry sources around before compilation.
type TemplateString string

// Compile compiles the source against ns.
func (s TemplateString) Compile(ns Context) (*Template, error) {
	return Compile(string(s), ns)
}

// Render compiles against ns and renders against ctx in one step.
func (s TemplateString) Render(ns, ctx Context) (string, error) {
	t, err := Compile(string(s), ns)
	if err != nil {
		return "", err
	}
	return t.Render(ctx)
}
