package pyparse

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/garagon/mancheck/pyast"
)

// parameters sorts a `parameters` node into Python's argument groups.
// Parameters before `/` are positional-only, parameters after `*` or
// `*args` are keyword-only.
func (c *converter) parameters(n *sitter.Node) *pyast.Arguments {
	args := &pyast.Arguments{}
	if n == nil {
		return args
	}
	args.Pos = position(n)

	keywordOnly := false
	add := func(a *pyast.Arg) {
		if keywordOnly {
			args.KwOnlyArgs = append(args.KwOnlyArgs, a)
		} else {
			args.Args = append(args.Args, a)
		}
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)
		switch p.Type() {
		case "identifier":
			add(&pyast.Arg{Name: c.text(p), Pos: position(p)})
		case "default_parameter", "typed_default_parameter":
			a := &pyast.Arg{Name: c.text(p.ChildByFieldName("name")), Pos: position(p)}
			if typ := p.ChildByFieldName("type"); typ != nil {
				a.Annotation = c.expr(typ)
			}
			add(a)
		case "typed_parameter":
			a, kind := c.typedParameter(p)
			switch kind {
			case "list_splat_pattern":
				args.VarArg = a
				keywordOnly = true
			case "dictionary_splat_pattern":
				args.KwArg = a
			default:
				add(a)
			}
		case "list_splat_pattern":
			args.VarArg = &pyast.Arg{Name: c.splatName(p), Pos: position(p)}
			keywordOnly = true
		case "dictionary_splat_pattern":
			args.KwArg = &pyast.Arg{Name: c.splatName(p), Pos: position(p)}
		case "keyword_separator":
			keywordOnly = true
		case "positional_separator":
			args.PosOnlyArgs = append(args.PosOnlyArgs, args.Args...)
			args.Args = nil
		case "tuple_pattern":
			add(&pyast.Arg{Name: c.text(p), Pos: position(p)})
		}
	}
	return args
}

// typedParameter handles `name: T`, `*args: T` and `**kw: T`. It returns
// the node type of the annotated target.
func (c *converter) typedParameter(p *sitter.Node) (*pyast.Arg, string) {
	a := &pyast.Arg{Pos: position(p)}
	if typ := p.ChildByFieldName("type"); typ != nil {
		a.Annotation = c.expr(typ)
	}
	if p.NamedChildCount() == 0 {
		return a, ""
	}
	target := p.NamedChild(0)
	switch target.Type() {
	case "list_splat_pattern", "dictionary_splat_pattern":
		a.Name = c.splatName(target)
	default:
		a.Name = c.text(target)
	}
	return a, target.Type()
}

func (c *converter) splatName(n *sitter.Node) string {
	if n.NamedChildCount() > 0 {
		return c.text(n.NamedChild(0))
	}
	return c.text(n)
}

// expr converts the expression shapes decorator matching cares about.
// A `type` wrapper (used for annotations) and redundant parentheses are
// looked through.
func (c *converter) expr(n *sitter.Node) pyast.Expr {
	switch n.Type() {
	case "identifier":
		return &pyast.Name{ID: c.text(n), Pos: position(n)}
	case "attribute":
		return &pyast.Attribute{
			Value: c.exprOrNil(n.ChildByFieldName("object")),
			Attr:  c.text(n.ChildByFieldName("attribute")),
			Pos:   position(n),
		}
	case "call":
		return &pyast.Call{Func: c.exprOrNil(n.ChildByFieldName("function")), Pos: position(n)}
	case "type", "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return c.expr(n.NamedChild(0))
		}
	}
	return &pyast.OtherExpr{Type: n.Type(), Text: c.text(n), Pos: position(n)}
}

func (c *converter) exprOrNil(n *sitter.Node) pyast.Expr {
	if n == nil {
		return nil
	}
	return c.expr(n)
}
