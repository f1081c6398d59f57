// Package throws implements spec.md §4.2: for each Callable, walk its
// body (stopping at nested Callable boundaries) recording raise sites and
// the try frames that enclose them. Grounded on original_source's
// throw_finder.rs ThrowAnalyzer::visit_throw_stmt for the
// new-Id/bare-Id/literal/anonymous kind inference, and on the same
// file's catch-body walk for the bare-rethrow exemption.
package throws

import (
	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/jsast"
)

// Result is the throw collector's output: every RaiseSite and TryFrame
// found across the whole file, plus the AST handler each TryFrame came
// from so the catch analyzer (internal/analyzer/catch) can flatten its
// instanceof chain without re-walking the tree from scratch.
type Result struct {
	RaiseSites []model.RaiseSite
	TryFrames  []model.TryFrame
	FrameNode  map[int]*jsast.TryStmt
}

type collector struct {
	analysis *callable.Analysis
	result   *Result
}

// Collect mutates analysis.Callables in place (RaiseSites/TryFrames index
// lists) and returns the flat records those indices point into.
func Collect(analysis *callable.Analysis) *Result {
	c := &collector{
		analysis: analysis,
		result: &Result{
			FrameNode: map[int]*jsast.TryStmt{},
		},
	}
	for id := range analysis.Callables {
		c.walkCallable(id)
	}
	return c.result
}

func (c *collector) walkCallable(id int) {
	if body, ok := c.analysis.Body[id]; ok {
		for _, stmt := range body {
			c.walkStmt(stmt, id, -1, "")
		}
		return
	}
	if expr, ok := c.analysis.ExprBody[id]; ok {
		c.walkExpr(expr, id, -1, "")
	}
}

// walkStmt descends into statement n that belongs to Callable callableID.
// tryID is the innermost enclosing try frame's protected-region id (-1 if
// none); catchBound is the bound exception name of the innermost
// enclosing catch handler body we are currently inside ("" if not inside
// one).
func (c *collector) walkStmt(n jsast.Node, callableID, tryID int, catchBound string) {
	if n == nil {
		return
	}
	switch s := n.(type) {
	case *jsast.BlockStmt:
		for _, st := range s.Body {
			c.walkStmt(st, callableID, tryID, catchBound)
		}
	case jsast.BlockStmt:
		for _, st := range s.Body {
			c.walkStmt(st, callableID, tryID, catchBound)
		}
	case jsast.ExprStmt:
		c.walkExpr(s.Expr, callableID, tryID, catchBound)
	case jsast.IfStmt:
		c.walkExpr(s.Test, callableID, tryID, catchBound)
		c.walkStmt(s.Cons, callableID, tryID, catchBound)
		if s.Alt != nil {
			c.walkStmt(s.Alt, callableID, tryID, catchBound)
		}
	case jsast.ReturnStmt:
		if s.Arg != nil {
			c.walkExpr(s.Arg, callableID, tryID, catchBound)
		}
	case jsast.ThrowStmt:
		c.handleThrow(s, callableID, tryID, catchBound)
	case jsast.TryStmt:
		c.walkTry(s, callableID, tryID)
	case jsast.VarDecl:
		for _, d := range s.Declarators {
			if d.Init != nil {
				c.walkExpr(d.Init, callableID, tryID, catchBound)
			}
		}
	case jsast.ClassDecl:
		// Nested class declarations inside a function body introduce
		// their own Callables for methods; nothing at this level to
		// attribute upward, matching the nested-Callable skip rule.
	case jsast.OpaqueStmt:
		// Statement body of a for/while/do/switch construct; see the
		// matching comment in internal/analyzer/callable.
		for _, body := range s.Exprs {
			c.walkStmt(body, callableID, tryID, catchBound)
		}
	case jsast.FuncDecl, *jsast.FuncExpr, jsast.FuncExpr:
		// Nested Callable boundary: recorded separately by the callable
		// enumerator and walked on its own iteration of walkCallable.
	}
}

func (c *collector) walkTry(s jsast.TryStmt, callableID, outerTryID int) {
	frameID := len(c.result.TryFrames)
	frame := model.TryFrame{
		ID:               frameID,
		CallableID:       callableID,
		BodySpan:         s.Block.Span(),
		ParentTryFrameID: outerTryID,
	}
	if s.Handler != nil {
		frame.HasCatch = true
		frame.CatchHead = s.Handler.HeadSpan
		frame.BoundName = s.Handler.Param
	}
	c.result.TryFrames = append(c.result.TryFrames, frame)
	c.result.FrameNode[frameID] = &s
	c.analysis.Callables[callableID].TryFrames = append(c.analysis.Callables[callableID].TryFrames, frameID)

	for _, st := range s.Block.Body {
		c.walkStmt(st, callableID, frameID, "")
	}
	if s.Handler != nil {
		for _, st := range s.Handler.Body.Body {
			c.walkStmt(st, callableID, outerTryID, s.Handler.Param)
		}
	}
	if s.Finalizer != nil {
		for _, st := range s.Finalizer.Body {
			c.walkStmt(st, callableID, outerTryID, "")
		}
	}
}

func (c *collector) handleThrow(s jsast.ThrowStmt, callableID, tryID int, catchBound string) {
	if catchBound != "" {
		if id, ok := s.Arg.(jsast.Ident); ok && id.Name == catchBound {
			// Bare re-raise of the bound exception: not a new RaiseSite,
			// per spec.md §4.2. internal/analyzer/catch re-derives
			// reachability for has_unconditional_rethrow directly from
			// the AST.
			return
		}
	}
	kind := inferKind(s.Arg)
	site := model.RaiseSite{
		ID:         len(c.result.RaiseSites),
		Span:       s.Span(),
		Kind:       kind,
		TryFrameID: tryID,
		CallableID: callableID,
	}
	c.result.RaiseSites = append(c.result.RaiseSites, site)
	c.analysis.Callables[callableID].RaiseSites = append(c.analysis.Callables[callableID].RaiseSites, site.ID)
}

// walkExpr visits nothing: throw is always a statement in ECMAScript, so
// an expression position holds no further RaiseSite, and Callables nested
// inside an expression (arrow functions, IIFEs) are handled elsewhere. No
// RaiseSite is ever created here.
func (c *collector) walkExpr(n jsast.Node, callableID, tryID int, catchBound string) {
	// Expressions cannot themselves contain statement-level throws in
	// ECMAScript; nested Callables inside an expression are discovered
	// independently via the callable enumerator's own traversal and
	// processed on their own walkCallable call.
}

func inferKind(arg jsast.Node) model.ErrorKind {
	switch e := arg.(type) {
	case jsast.NewExpr:
		if id, ok := e.Callee.(jsast.Ident); ok {
			return model.Named(id.Name)
		}
		return model.Anonymous()
	case jsast.Ident:
		return model.Variable(e.Name)
	case jsast.Literal:
		switch e.Kind {
		case jsast.LitString, jsast.LitNumber, jsast.LitTemplate:
			return model.Literal()
		default:
			return model.Anonymous()
		}
	case jsast.ParenExpr:
		return inferKind(e.Inner)
	default:
		return model.Anonymous()
	}
}
