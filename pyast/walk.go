package pyast

// Children returns the direct children of n in source field order
// (arguments, body, decorators, annotations), matching the order Python's
// own node visitor uses. Nil entries are omitted.
func Children(n Node) []Node {
	var out []Node
	addExpr := func(e Expr) {
		if e != nil {
			out = append(out, e)
		}
	}
	addArg := func(a *Arg) {
		if a != nil {
			out = append(out, a)
		}
	}
	addStmts := func(body []Stmt) {
		for _, s := range body {
			if s != nil {
				out = append(out, s)
			}
		}
	}

	switch n := n.(type) {
	case *Module:
		addStmts(n.Body)
	case *ClassDef:
		addStmts(n.Body)
		for _, d := range n.Decorators {
			addExpr(d)
		}
	case *FunctionDef:
		if n.Args != nil {
			out = append(out, n.Args)
		}
		addStmts(n.Body)
		for _, d := range n.Decorators {
			addExpr(d)
		}
		addExpr(n.Returns)
	case *Arguments:
		for _, a := range n.PosOnlyArgs {
			addArg(a)
		}
		for _, a := range n.Args {
			addArg(a)
		}
		addArg(n.VarArg)
		for _, a := range n.KwOnlyArgs {
			addArg(a)
		}
		addArg(n.KwArg)
	case *Arg:
		addExpr(n.Annotation)
	case *Compound:
		for _, body := range n.Bodies {
			addStmts(body)
		}
	case *Attribute:
		addExpr(n.Value)
	case *Call:
		addExpr(n.Func)
	}
	return out
}

// Inspect traverses the tree rooted at n in depth-first order. It calls
// f(node) for each node; if f returns true, Inspect descends into the
// node's children.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// Functions returns every function definition in the tree, outer
// definitions before the ones nested inside them.
func Functions(n Node) []*FunctionDef {
	var fns []*FunctionDef
	Inspect(n, func(n Node) bool {
		if fn, ok := n.(*FunctionDef); ok {
			fns = append(fns, fn)
		}
		return true
	})
	return fns
}
