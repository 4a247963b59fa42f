package templet

import "strings"

// maxNestingDepth bounds recursive extends/include resolution. A cyclic
// chain of template references would otherwise recurse without
// termination, so compilation fails once the chain gets this deep.
const maxNestingDepth = 24

// frame is one entry of the compile-time tag stack: an open if/for/block
// tag together with the body being accumulated for its current section.
type frame struct {
	kind string
	ifn  *IfNode
	forn *ForNode
	blk  *BlockNode
	body []Node
}

type compiler struct {
	ns     Context
	depth  int
	top    []Node
	stack  []*frame
	blocks map[string][]Node // this template's own top-level block bodies
	parent *Template
}

func compile(text string, ns Context, depth int) (*Template, error) {
	if ns == nil {
		ns = Context{}
	}
	c := &compiler{ns: ns, depth: depth, blocks: map[string][]Node{}}
	lx := newLexer(text)
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		switch tok.kind {
		case tokComment:
			// contributes nothing
		case tokText:
			if tok.raw != "" {
				c.emit(&TextNode{Text: tok.raw})
			}
		case tokExpr:
			e, err := parseExpr(tok.content)
			if err != nil {
				return nil, err
			}
			c.emit(&OutputNode{Expr: e})
		case tokAction:
			if err := c.action(tok); err != nil {
				return nil, err
			}
		}
	}
	if len(c.stack) > 0 {
		return nil, syntaxErrorf("Unmatched action tag", c.stack[0].kind)
	}
	nodes, blocks := c.top, c.blocks
	if c.parent != nil {
		nodes = overrideBlocks(c.parent.nodes, c.blocks)
		blocks = map[string][]Node{}
		for name, body := range c.parent.blocks {
			blocks[name] = body
		}
		for name, body := range c.blocks {
			if _, ok := blocks[name]; ok {
				blocks[name] = body
			}
		}
	}
	return &Template{nodes: nodes, blocks: blocks, ns: ns}, nil
}

func (c *compiler) emit(n Node) {
	if len(c.stack) > 0 {
		f := c.stack[len(c.stack)-1]
		f.body = append(f.body, n)
		return
	}
	c.top = append(c.top, n)
}

func (c *compiler) peek() *frame {
	return c.stack[len(c.stack)-1]
}

// closeBranch seals the section body accumulated so far into the last
// branch of the open if.
func (f *frame) closeBranch() {
	f.ifn.Branches[len(f.ifn.Branches)-1].Body = f.body
	f.body = nil
}

func (c *compiler) action(tok token) error {
	words := strings.Fields(tok.content)
	if len(words) == 0 {
		return syntaxErrorf("Don't understand tag", tok.content)
	}
	switch words[0] {
	case "if":
		if len(words) != 2 {
			return syntaxErrorf("Don't understand if", tok.raw)
		}
		e, err := parseExpr(words[1])
		if err != nil {
			return err
		}
		c.stack = append(c.stack, &frame{kind: "if", ifn: &IfNode{Branches: []Branch{{Cond: e}}}})
	case "elif":
		if len(c.stack) == 0 {
			return syntaxErrorf("Unmatched action tag", "elif")
		}
		f := c.peek()
		if f.kind != "if" {
			return syntaxErrorf("Mismatched elif tag", f.kind)
		}
		if len(words) != 2 {
			return syntaxErrorf("Don't understand elif", tok.raw)
		}
		e, err := parseExpr(words[1])
		if err != nil {
			return err
		}
		f.closeBranch()
		f.ifn.Branches = append(f.ifn.Branches, Branch{Cond: e})
	case "else":
		if len(c.stack) == 0 {
			return syntaxErrorf("Unmatched action tag", "else")
		}
		f := c.peek()
		if f.kind != "if" {
			return syntaxErrorf("Mismatched else tag", f.kind)
		}
		if len(words) != 1 {
			return syntaxErrorf("Don't understand else", tok.raw)
		}
		f.closeBranch()
		f.ifn.Branches = append(f.ifn.Branches, Branch{})
		f.ifn.HasElse = true
	case "for":
		if len(words) != 4 || words[2] != "in" {
			return syntaxErrorf("Don't understand for", tok.raw)
		}
		vars := strings.Split(words[1], ",")
		if len(vars) > 2 {
			return syntaxErrorf("Don't understand for", tok.raw)
		}
		for _, v := range vars {
			if !nameRe.MatchString(v) {
				return syntaxErrorf("Not a valid name", v)
			}
		}
		iter, err := parseExpr(words[3])
		if err != nil {
			return err
		}
		c.stack = append(c.stack, &frame{kind: "for", forn: &ForNode{Vars: vars, Iter: iter}})
	case "block":
		if len(words) != 2 {
			return syntaxErrorf("Don't understand block", tok.raw)
		}
		if !nameRe.MatchString(words[1]) {
			return syntaxErrorf("Not a valid name", words[1])
		}
		c.stack = append(c.stack, &frame{kind: "block", blk: &BlockNode{Name: words[1]}})
	case "extends":
		if len(words) != 2 {
			return syntaxErrorf("Don't understand extends", tok.raw)
		}
		// Only understood in leading position: no content emitted yet, no
		// open tags, no parent already resolved.
		if len(c.top) != 0 || len(c.stack) != 0 || c.parent != nil {
			return syntaxErrorf("Don't understand extends", tok.raw)
		}
		if !nameRe.MatchString(words[1]) {
			return syntaxErrorf("Not a valid name", words[1])
		}
		src, ok := c.ns[words[1]]
		if !ok {
			return syntaxErrorf("Not a valid name", words[1])
		}
		sv, ok := src.(StringValue)
		if !ok {
			return syntaxErrorf("Not a valid template", words[1])
		}
		parent, err := c.subCompile(string(sv), words[1])
		if err != nil {
			return err
		}
		c.parent = parent
	case "include":
		if len(words) != 2 {
			return syntaxErrorf("Don't understand include", tok.raw)
		}
		if !nameRe.MatchString(words[1]) {
			return syntaxErrorf("Not a valid name", words[1])
		}
		src, ok := c.ns[words[1]]
		if !ok {
			return syntaxErrorf("Don't understand include", tok.raw)
		}
		sv, ok := src.(StringValue)
		if !ok {
			return syntaxErrorf("Don't understand include", tok.raw)
		}
		sub, err := c.subCompile(string(sv), words[1])
		if err != nil {
			return err
		}
		c.emit(&IncludeNode{Name: words[1], Template: sub})
	default:
		if strings.HasPrefix(words[0], "end") {
			return c.end(tok, words)
		}
		return syntaxErrorf("Don't understand tag", words[0])
	}
	return nil
}

func (c *compiler) end(tok token, words []string) error {
	if len(words) != 1 {
		return syntaxErrorf("Don't understand end", tok.raw)
	}
	kind := words[0][len("end"):]
	if len(c.stack) == 0 {
		return syntaxErrorf("Too many ends", tok.raw)
	}
	f := c.peek()
	if f.kind != kind {
		return syntaxErrorf("Mismatched end tag", kind)
	}
	c.stack = c.stack[:len(c.stack)-1]
	switch kind {
	case "if":
		f.closeBranch()
		c.emit(f.ifn)
	case "for":
		f.forn.Body = f.body
		c.emit(f.forn)
	case "block":
		f.blk.Body = f.body
		c.emit(f.blk)
		if len(c.stack) == 0 {
			c.blocks[f.blk.Name] = f.blk.Body
		}
	}
	return nil
}

// subCompile compiles an extends/include target against the same
// construction namespace, one level deeper.
func (c *compiler) subCompile(src, name string) (*Template, error) {
	if c.depth+1 > maxNestingDepth {
		return nil, syntaxErrorf("Template nesting too deep", name)
	}
	return compile(src, c.ns, c.depth+1)
}

// overrideBlocks rebuilds a parent body, replacing the body of every block
// (found recursively) whose name has an override. Replacement bodies are
// used as-is; non-overridden blocks keep their own bodies.
func overrideBlocks(nodes []Node, ov map[string][]Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		switch t := n.(type) {
		case *BlockNode:
			if body, ok := ov[t.Name]; ok {
				out[i] = &BlockNode{Name: t.Name, Body: body}
			} else {
				out[i] = &BlockNode{Name: t.Name, Body: overrideBlocks(t.Body, ov)}
			}
		case *IfNode:
			branches := make([]Branch, len(t.Branches))
			for j, br := range t.Branches {
				branches[j] = Branch{Cond: br.Cond, Body: overrideBlocks(br.Body, ov)}
			}
			out[i] = &IfNode{Branches: branches, HasElse: t.HasElse}
		case *ForNode:
			out[i] = &ForNode{Vars: t.Vars, Iter: t.Iter, Body: overrideBlocks(t.Body, ov)}
		default:
			out[i] = n
		}
	}
	return out
}
