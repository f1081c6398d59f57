// Package effect implements spec.md §4.5 (Effect Solver) and §4.6 (Call
// Linker): collect call sites, resolve the ones reachable by a single
// lexical hop (unqualified identifier, `this.m()`, `obj.m()`), and fold
// their raises into the caller's effective set. Grounded on
// original_source's lib.rs two-pass driver
// (collect_function_definitions/resolve_function_calls) and
// try_catch_finder.rs's get_effectively_caught_errors_for_function for
// the re-resolution-under-growing-protected-set idea.
package effect

import (
	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/jsast"
)

// Result is the call-site collector's output.
type Result struct {
	CallSites []model.CallSite
}

type collector struct {
	analysis *callable.Analysis
	result   *Result
	// nextTryID mirrors internal/analyzer/throws's own TryFrame counter.
	// Both collectors walk the identical Analysis.Body/ExprBody trees in
	// the identical pre-order (same statement-dispatch order, same
	// recursion into Block/Handler/Finalizer), so the Nth TryStmt
	// encountered is assigned id N by both — a deliberate coupling kept
	// in place of threading throws.Result through this package, recorded
	// as a design tradeoff rather than an accident.
	nextTryID int
}

// Collect walks every Callable's body recording CallExpr call sites.
// Must run over the same Analysis throws.Collect already ran over, and
// before the try-frame-id-dependent parts of Solve.
func Collect(analysis *callable.Analysis) *Result {
	c := &collector{analysis: analysis, result: &Result{}}
	for id := range analysis.Callables {
		c.walkCallable(id)
	}
	return c.result
}

func (c *collector) walkCallable(id int) {
	if body, ok := c.analysis.Body[id]; ok {
		for _, stmt := range body {
			c.walkStmt(stmt, id, -1)
		}
		return
	}
	if expr, ok := c.analysis.ExprBody[id]; ok {
		c.walkExpr(expr, id, -1)
	}
}

func (c *collector) walkStmt(n jsast.Node, callableID, tryID int) {
	if n == nil {
		return
	}
	switch s := n.(type) {
	case *jsast.BlockStmt:
		for _, st := range s.Body {
			c.walkStmt(st, callableID, tryID)
		}
	case jsast.BlockStmt:
		for _, st := range s.Body {
			c.walkStmt(st, callableID, tryID)
		}
	case jsast.ExprStmt:
		c.walkExpr(s.Expr, callableID, tryID)
	case jsast.IfStmt:
		c.walkExpr(s.Test, callableID, tryID)
		c.walkStmt(s.Cons, callableID, tryID)
		if s.Alt != nil {
			c.walkStmt(s.Alt, callableID, tryID)
		}
	case jsast.ReturnStmt:
		if s.Arg != nil {
			c.walkExpr(s.Arg, callableID, tryID)
		}
	case jsast.ThrowStmt:
		c.walkExpr(s.Arg, callableID, tryID)
	case jsast.TryStmt:
		c.walkTry(s, callableID, tryID)
	case jsast.VarDecl:
		for _, d := range s.Declarators {
			if d.Init != nil {
				c.walkExpr(d.Init, callableID, tryID)
			}
		}
	case jsast.ClassDecl:
		// Nested class methods are independent Callables, walked on
		// their own walkCallable iteration.
	case jsast.OpaqueStmt:
		for _, body := range s.Exprs {
			c.walkStmt(body, callableID, tryID)
		}
	case jsast.FuncDecl, *jsast.FuncExpr, jsast.FuncExpr:
		// Nested Callable boundary.
	}
}

func (c *collector) walkTry(s jsast.TryStmt, callableID, outerTryID int) {
	frameID := c.nextTryID
	c.nextTryID++
	for _, st := range s.Block.Body {
		c.walkStmt(st, callableID, frameID)
	}
	if s.Handler != nil {
		for _, st := range s.Handler.Body.Body {
			c.walkStmt(st, callableID, outerTryID)
		}
	}
	if s.Finalizer != nil {
		for _, st := range s.Finalizer.Body {
			c.walkStmt(st, callableID, outerTryID)
		}
	}
}

func (c *collector) walkExpr(n jsast.Node, callableID, tryID int) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case jsast.CallExpr:
		c.recordCall(v, callableID, tryID)
		c.walkExpr(v.Callee, callableID, tryID)
		for _, a := range v.Args {
			c.walkExpr(a, callableID, tryID)
		}
	case jsast.NewExpr:
		// Constructor calls are deliberately not linked: a `new Foo()`
		// site is not recorded as a CallSite at all, so it is never fed
		// to lexical resolution; only its arguments are walked.
		for _, a := range v.Args {
			c.walkExpr(a, callableID, tryID)
		}
	case jsast.ObjectExpr:
		for _, p := range v.Properties {
			c.walkExpr(p.Value, callableID, tryID)
		}
	case jsast.ArrayExpr:
		for _, el := range v.Elements {
			c.walkExpr(el, callableID, tryID)
		}
	case jsast.MemberExpr:
		c.walkExpr(v.Object, callableID, tryID)
	case jsast.UnaryExpr:
		c.walkExpr(v.Arg, callableID, tryID)
	case jsast.BinaryExpr:
		c.walkExpr(v.Left, callableID, tryID)
		c.walkExpr(v.Right, callableID, tryID)
	case jsast.LogicalExpr:
		c.walkExpr(v.Left, callableID, tryID)
		c.walkExpr(v.Right, callableID, tryID)
	case jsast.AssignExpr:
		c.walkExpr(v.Target, callableID, tryID)
		c.walkExpr(v.Value, callableID, tryID)
	case jsast.CondExpr:
		c.walkExpr(v.Test, callableID, tryID)
		c.walkExpr(v.Cons, callableID, tryID)
		c.walkExpr(v.Alt, callableID, tryID)
	case jsast.SequenceExpr:
		for _, ex := range v.Exprs {
			c.walkExpr(ex, callableID, tryID)
		}
	case jsast.ParenExpr:
		c.walkExpr(v.Inner, callableID, tryID)
	case jsast.SpreadExpr:
		c.walkExpr(v.Arg, callableID, tryID)
	case jsast.AwaitExpr:
		c.walkExpr(v.Arg, callableID, tryID)
	case jsast.YieldExpr:
		if v.Arg != nil {
			c.walkExpr(v.Arg, callableID, tryID)
		}
	case jsast.TaggedTemplateExpr:
		c.walkExpr(v.Tag, callableID, tryID)
	case jsast.JSXExpr:
		for _, ex := range v.Exprs {
			c.walkExpr(ex, callableID, tryID)
		}
	case *jsast.FuncExpr, jsast.ClassDecl:
		// Nested Callable boundary.
	}
}

func (c *collector) recordCall(call jsast.CallExpr, callableID, tryID int) {
	callee, ok := calleeText(call.Callee)
	if !ok {
		return
	}
	cs := model.CallSite{
		ID:               len(c.result.CallSites),
		Span:             call.Span(),
		Callee:           callee,
		CallableID:       callableID,
		TryFrameID:       tryID,
		LinkedCallableID: -1,
	}
	c.result.CallSites = append(c.result.CallSites, cs)
	c.analysis.Callables[callableID].CallSites = append(c.analysis.Callables[callableID].CallSites, cs.ID)
}

// calleeText renders the syntactic callee path spec.md §4.5 resolves
// lexically: a bare identifier, `this.prop`, or `obj.prop`. Anything else
// (computed member access, a call result, an IIFE) is unresolved at
// collection time.
func calleeText(n jsast.Node) (string, bool) {
	switch v := n.(type) {
	case jsast.Ident:
		return v.Name, true
	case jsast.MemberExpr:
		if v.Computed {
			return "", false
		}
		switch obj := v.Object.(type) {
		case jsast.ThisExpr:
			return "this." + v.Property, true
		case jsast.Ident:
			return obj.Name + "." + v.Property, true
		}
	}
	return "", false
}
