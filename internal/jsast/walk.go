package jsast

// Children returns a node's immediate syntactic children, in source
// order, the same "one traversal, many visitors" shape as the teacher's
// internal/printer walking its own astro AST. The analyzer's own passes
// (callable, throws, effect) do not use Walk/Children; each walks the tree
// with its own type switch.
func Children(n Node) []Node {
	switch v := n.(type) {
	case *Program:
		return v.Body
	case Program:
		return v.Body
	case *BlockStmt:
		return v.Body
	case BlockStmt:
		return v.Body
	case ExprStmt:
		return []Node{v.Expr}
	case IfStmt:
		out := []Node{v.Test, v.Cons}
		if v.Alt != nil {
			out = append(out, v.Alt)
		}
		return out
	case ReturnStmt:
		if v.Arg != nil {
			return []Node{v.Arg}
		}
	case ThrowStmt:
		return []Node{v.Arg}
	case TryStmt:
		out := []Node{v.Block}
		if v.Handler != nil {
			out = append(out, *v.Handler)
		}
		if v.Finalizer != nil {
			out = append(out, v.Finalizer)
		}
		return out
	case CatchClause:
		return []Node{v.Body}
	case VarDecl:
		var out []Node
		for _, d := range v.Declarators {
			if d.Init != nil {
				out = append(out, d.Init)
			}
		}
		return out
	case FuncDecl:
		return []Node{v.Body}
	case *FuncExpr:
		if v.IsArrow && v.ArrowExprBody != nil {
			return []Node{v.ArrowExprBody}
		}
		if v.Body != nil {
			return []Node{v.Body}
		}
	case FuncExpr:
		if v.IsArrow && v.ArrowExprBody != nil {
			return []Node{v.ArrowExprBody}
		}
		if v.Body != nil {
			return []Node{v.Body}
		}
	case ClassDecl:
		var out []Node
		for _, m := range v.Members {
			out = append(out, *m)
		}
		return out
	case ClassMember:
		if v.Value != nil {
			return []Node{v.Value}
		}
		if v.FieldInit != nil {
			return []Node{v.FieldInit}
		}
	case BreakContinueStmt, EmptyStmt, ImportDecl, Ident, Literal, ThisExpr:
		return nil
	case OpaqueStmt:
		return v.Exprs
	case ArrayExpr:
		return v.Elements
	case ObjectExpr:
		var out []Node
		for _, prop := range v.Properties {
			out = append(out, prop.Value)
		}
		return out
	case MemberExpr:
		return []Node{v.Object}
	case CallExpr:
		out := []Node{v.Callee}
		return append(out, v.Args...)
	case NewExpr:
		out := []Node{v.Callee}
		return append(out, v.Args...)
	case UnaryExpr:
		return []Node{v.Arg}
	case BinaryExpr:
		return []Node{v.Left, v.Right}
	case LogicalExpr:
		return []Node{v.Left, v.Right}
	case AssignExpr:
		return []Node{v.Target, v.Value}
	case CondExpr:
		return []Node{v.Test, v.Cons, v.Alt}
	case SequenceExpr:
		return v.Exprs
	case ParenExpr:
		if v.Inner != nil {
			return []Node{v.Inner}
		}
	case SpreadExpr:
		return []Node{v.Arg}
	case AwaitExpr:
		return []Node{v.Arg}
	case YieldExpr:
		if v.Arg != nil {
			return []Node{v.Arg}
		}
	case TaggedTemplateExpr:
		return []Node{v.Tag}
	case JSXExpr:
		return v.Exprs
	}
	return nil
}

// IsCallableNode reports whether n introduces a new Callable (per
// spec.md §4.1). Walk does not consult it; a visitor that stops at
// callable boundaries can.
func IsCallableNode(n Node) bool {
	switch n.(type) {
	case FuncDecl:
		return true
	case *FuncExpr, FuncExpr:
		return true
	}
	return false
}

// Walk visits n and every descendant reachable through Children,
// depth-first, pre-order. visit returns false to stop descending into
// that node's children (used to stop at nested-callable boundaries, per
// spec.md §4.2's "descend into nested Callables only to record them").
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, visit)
	}
}
