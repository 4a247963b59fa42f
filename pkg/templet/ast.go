package templet

// Node is any node in a compiled template's syntax tree.
type Node interface {
	node()
}

// TextNode is literal text between tags, emitted verbatim.
type TextNode struct {
	Text string
}

func (*TextNode) node() {}

// OutputNode evaluates an expression and emits its textual form: {{ expr }}
type OutputNode struct {
	Expr *Expr
}

func (*OutputNode) node() {}

// Branch is one condition/body pair of an IfNode. A nil Cond is the
// else-arm and always matches.
type Branch struct {
	Cond *Expr
	Body []Node
}

// IfNode selects the body of the first branch whose condition is true.
type IfNode struct {
	Branches []Branch
	HasElse  bool
}

func (*IfNode) node() {}

// ForNode renders its body once per element of the iterable, binding the
// element to one loop variable, or unpacking a pair into two.
type ForNode struct {
	Vars []string
	Iter *Expr
	Body []Node
}

func (*ForNode) node() {}

// BlockNode is a named section. Blocks have no runtime effect of their own;
// they are the override points used by extends.
type BlockNode struct {
	Name string
	Body []Node
}

func (*BlockNode) node() {}

// IncludeNode splices the rendered output of a template that was compiled
// at construction time from the namespace entry of the same name.
type IncludeNode struct {
	Name     string
	Template *Template
}

func (*IncludeNode) node() {}
