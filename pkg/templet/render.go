package templet

import (
	"fmt"
	"strings"
)

// renderCtx carries the three name scopes a render consults, innermost
// first: loop-local bindings, the per-render context, then the
// construction namespace.
type renderCtx struct {
	ns     Context
	ctx    Context
	locals map[string]Value
	out    *strings.Builder
}

func (rc *renderCtx) lookup(name string) (Value, bool) {
	if v, ok := rc.locals[name]; ok {
		return v, true
	}
	if v, ok := rc.ctx[name]; ok {
		return v, true
	}
	if v, ok := rc.ns[name]; ok {
		return v, true
	}
	return nil, false
}

func (rc *renderCtx) renderNodes(nodes []Node) error {
	for _, n := range nodes {
		switch t := n.(type) {
		case *TextNode:
			rc.out.WriteString(t.Text)
		case *OutputNode:
			v, err := rc.evalExpr(t.Expr)
			if err != nil {
				return err
			}
			rc.out.WriteString(v.String())
		case *IfNode:
			if err := rc.renderIf(t); err != nil {
				return err
			}
		case *ForNode:
			if err := rc.renderFor(t); err != nil {
				return err
			}
		case *BlockNode:
			if err := rc.renderNodes(t.Body); err != nil {
				return err
			}
		case *IncludeNode:
			if err := rc.renderNodes(t.Template.nodes); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown node %T", n)
		}
	}
	return nil
}

func (rc *renderCtx) renderIf(n *IfNode) error {
	for _, br := range n.Branches {
		if br.Cond == nil {
			return rc.renderNodes(br.Body)
		}
		v, err := rc.evalExpr(br.Cond)
		if err != nil {
			return err
		}
		if v.Truth() {
			return rc.renderNodes(br.Body)
		}
	}
	return nil
}

func (rc *renderCtx) renderFor(n *ForNode) error {
	iter, err := rc.evalExpr(n.Iter)
	if err != nil {
		return err
	}
	items, err := iterate(iter)
	if err != nil {
		return err
	}
	// Loop variables shadow whatever was bound before; the previous
	// bindings come back once the loop finishes.
	saved := make(map[string]Value, len(n.Vars))
	had := make(map[string]bool, len(n.Vars))
	for _, name := range n.Vars {
		saved[name], had[name] = rc.locals[name]
	}
	defer func() {
		for _, name := range n.Vars {
			if had[name] {
				rc.locals[name] = saved[name]
			} else {
				delete(rc.locals, name)
			}
		}
	}()
	for _, item := range items {
		if len(n.Vars) == 1 {
			rc.locals[n.Vars[0]] = item
		} else {
			pair, ok := item.(ListValue)
			if !ok || len(pair) != len(n.Vars) {
				return fmt.Errorf("cannot unpack %s into %d names", typeName(item), len(n.Vars))
			}
			for i, name := range n.Vars {
				rc.locals[name] = pair[i]
			}
		}
		if err := rc.renderNodes(n.Body); err != nil {
			return err
		}
	}
	return nil
}

func (rc *renderCtx) evalExpr(e *Expr) (Value, error) {
	var v Value
	var err error
	if e.Root != nil {
		v = e.Root
	} else {
		v, err = rc.resolvePath(e.Path)
		if err != nil {
			return nil, err
		}
	}
	for _, fc := range e.Filters {
		fn, ok := rc.lookup(fc.Name)
		if !ok {
			return nil, &NameError{Name: fc.Name}
		}
		call, ok := fn.(Callable)
		if !ok {
			return nil, fmt.Errorf("'%s' is not callable", fc.Name)
		}
		args := []Value{v}
		for _, a := range fc.Args {
			av, err := rc.evalArg(a)
			if err != nil {
				return nil, err
			}
			args = append(args, av)
		}
		v, err = call.Call(args)
		if err != nil {
			return nil, fmt.Errorf("filter '%s': %w", fc.Name, err)
		}
	}
	return v, nil
}

func (rc *renderCtx) evalArg(a Arg) (Value, error) {
	if a.Literal != nil {
		return a.Literal, nil
	}
	return rc.resolvePath(a.Path)
}

// resolvePath evaluates a dotted path. The leading name consults the
// scopes; each further segment is attribute access falling back to item
// access. A no-argument callable reached through a dot is invoked before
// the next segment applies.
func (rc *renderCtx) resolvePath(path []string) (Value, error) {
	v, ok := rc.lookup(path[0])
	if !ok {
		return nil, &NameError{Name: path[0]}
	}
	for _, seg := range path[1:] {
		next, ok := access(v, seg)
		if !ok {
			return nil, &LookupError{Key: seg, On: typeName(v)}
		}
		if call, ok := next.(Callable); ok {
			out, err := call.Call(nil)
			if err != nil {
				return nil, err
			}
			next = out
		}
		v = next
	}
	return v, nil
}

func access(v Value, key string) (Value, bool) {
	if ag, ok := v.(AttrGetter); ok {
		if out, ok := ag.Attr(key); ok {
			return out, true
		}
	}
	if ig, ok := v.(ItemGetter); ok {
		if out, ok := ig.Item(key); ok {
			return out, true
		}
	}
	return nil, false
}
