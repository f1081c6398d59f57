// Package callable implements spec.md §4.1: a single pass over the
// internal/jsast AST that produces the Callable set in deterministic
// source order, grounded on original_source's function_finder.rs
// FunctionFinder visitor (naming/kind rules for free, method,
// constructor, accessor, arrow, object-literal-method, and
// anonymous-callback declarations), restated as a tagged-variant
// traversal over our own AST rather than a swc Visit impl.
package callable

import (
	"fmt"

	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/jsast"
	"github.com/does-it-throw/analyzer/internal/loc"
)

// Analysis is the enumerator's output: the Callable set plus enough
// back-references for later stages (throw collector, catch analyzer,
// doc reconciler, effect solver) to walk each Callable's own body
// without re-deriving naming context.
type Analysis struct {
	Callables []model.Callable
	// Body maps a Callable id to the statement list of its body (nil for
	// arrow functions with a concise expression body, whose single
	// expression is in ExprBody instead).
	Body map[int][]jsast.Node
	// ExprBody holds a concise arrow body's expression, e.g. `x => x.f()`.
	ExprBody map[int]jsast.Node
	// Params holds a Callable's declared parameters, consulted by the
	// [NEW] parameter-level @throws reconciliation in internal/analyzer/jsdoc.
	Params map[int][]jsast.Param
}

type namingHint struct {
	Name     string
	Kind     model.CallableKind
	Exported bool
	Valid    bool
}

type enumerator struct {
	filename string
	source   string
	lines    *loc.LineTable
	comments *jsast.CommentIndex
	analysis *Analysis
}

// Enumerate builds the Callable set for one parsed file.
func Enumerate(prog *jsast.Program, filename, source string, lines *loc.LineTable, comments *jsast.CommentIndex) *Analysis {
	e := &enumerator{
		filename: filename,
		source:   source,
		lines:    lines,
		comments: comments,
		analysis: &Analysis{
			Body:     map[int][]jsast.Node{},
			ExprBody: map[int]jsast.Node{},
			Params:   map[int][]jsast.Param{},
		},
	}
	moduleID := e.addCallable(model.ModuleCallableName, model.KindFree, jsast.Span{}, prog.Span(), -1, false, nil)
	e.analysis.Callables[moduleID].HasParent = false
	e.analysis.Body[moduleID] = prog.Body
	e.visitStmtList(prog.Body, moduleID)
	return e.analysis
}

func (e *enumerator) addCallable(name string, kind model.CallableKind, headSpan, bodySpan jsast.Span, parentID int, exported bool, params []jsast.Param) int {
	if name == "" {
		pos := e.lines.Position(headSpan.Start)
		name = fmt.Sprintf("<anonymous@%s:%d:%d>", e.filename, pos.Line, pos.Character)
	}
	id := len(e.analysis.Callables)
	c := model.Callable{
		ID:         id,
		Name:       name,
		Kind:       kind,
		HeadSpan:   headSpan,
		BodySpan:   bodySpan,
		ParentID:   parentID,
		HasParent:  parentID >= 0,
		Exported:   exported,
		RaisedBody: []model.ErrorKind{},
		Documented: []model.ErrorKind{},
		Effective:  []model.ErrorKind{},
	}
	if ds, ok := e.docSpanFor(headSpan.Start); ok {
		c.DocSpan = ds
		c.HasDoc = true
	}
	e.analysis.Callables = append(e.analysis.Callables, c)
	if parentID >= 0 {
		e.analysis.Callables[parentID].Children = append(e.analysis.Callables[parentID].Children, id)
	}
	if params != nil {
		e.analysis.Params[id] = params
	}
	return id
}

// docSpanFor applies spec.md §4.1's doc-ownership rule: a /** ... */
// block owned by the next Callable iff only whitespace separates them.
// `//` line comments never carry @throws, so only block comments whose
// stripped text begins with the second '*' of "/**" qualify.
func (e *enumerator) docSpanFor(pos int) (jsast.Span, bool) {
	cm, ok := e.comments.ImmediatelyPreceding(e.source, pos)
	if !ok {
		return jsast.Span{}, false
	}
	if cm.Sub != jsast.CommentBlock || len(cm.Text) == 0 || cm.Text[0] != '*' {
		return jsast.Span{}, false
	}
	return cm.Span, true
}

func (e *enumerator) visitStmtList(list []jsast.Node, parentID int) {
	for _, s := range list {
		e.visitStatement(s, parentID)
	}
}

func (e *enumerator) visitStatement(n jsast.Node, parentID int) {
	if n == nil {
		return
	}
	switch s := n.(type) {
	case jsast.FuncDecl:
		bodySpan := s.Span()
		if s.Body != nil {
			bodySpan = s.Body.Span()
		}
		id := e.addCallable(anonIfEmpty(s.Name), model.KindFree, s.HeadSpan, bodySpan, parentID, s.Exported, s.Params)
		if s.Body != nil {
			e.analysis.Body[id] = s.Body.Body
			e.visitStmtList(s.Body.Body, id)
		}
	case *jsast.BlockStmt:
		e.visitStmtList(s.Body, parentID)
	case jsast.BlockStmt:
		e.visitStmtList(s.Body, parentID)
	case jsast.ExprStmt:
		e.visitExpr(s.Expr, parentID, nil)
	case jsast.IfStmt:
		e.visitExpr(s.Test, parentID, nil)
		e.visitStatement(s.Cons, parentID)
		if s.Alt != nil {
			e.visitStatement(s.Alt, parentID)
		}
	case jsast.ReturnStmt:
		if s.Arg != nil {
			e.visitExpr(s.Arg, parentID, nil)
		}
	case jsast.ThrowStmt:
		e.visitExpr(s.Arg, parentID, nil)
	case jsast.TryStmt:
		e.visitStatement(s.Block, parentID)
		if s.Handler != nil {
			e.visitStatement(s.Handler.Body, parentID)
		}
		if s.Finalizer != nil {
			e.visitStatement(s.Finalizer, parentID)
		}
	case jsast.VarDecl:
		for _, d := range s.Declarators {
			if d.Init == nil {
				continue
			}
			hint := &namingHint{Name: d.Name, Kind: model.KindFree, Exported: s.Exported, Valid: d.Name != "" && !d.Destruct}
			e.visitExpr(d.Init, parentID, hint)
		}
	case jsast.ClassDecl:
		for _, m := range s.Members {
			e.visitClassMember(m, parentID)
		}
	case jsast.OpaqueStmt:
		// OpaqueStmt wraps the statement body of a for/while/do/switch
		// construct the grammar doesn't model structurally (see
		// parser.go's parseLoopHeaderThenBody/parseSwitch); despite the
		// field name, its contents are statements, not expressions.
		for _, body := range s.Exprs {
			e.visitStatement(body, parentID)
		}
	case jsast.ImportDecl, jsast.BreakContinueStmt, jsast.EmptyStmt:
		// no callables, no nested expressions
	}
}

func (e *enumerator) visitClassMember(m *jsast.ClassMember, parentID int) {
	if m == nil {
		return
	}
	if m.Value != nil {
		kind := model.KindMethod
		name := m.Key
		switch m.Kind {
		case jsast.ClassConstructor:
			kind = model.KindConstructor
			name = "<constructor>"
		case jsast.ClassGetter, jsast.ClassSetter:
			kind = model.KindAccessor
		}
		bodySpan := m.Value.Span()
		if m.Value.Body != nil {
			bodySpan = m.Value.Body.Span()
		}
		id := e.addCallable(anonIfEmpty(name), kind, m.HeadSpan, bodySpan, parentID, false, m.Value.Params)
		if m.Value.Body != nil {
			e.analysis.Body[id] = m.Value.Body.Body
			e.visitStmtList(m.Value.Body.Body, id)
		}
		return
	}
	if m.FieldInit != nil {
		hint := &namingHint{Name: m.Key, Kind: model.KindFree, Valid: true}
		e.visitExpr(m.FieldInit, parentID, hint)
	}
}

func (e *enumerator) visitExpr(n jsast.Node, parentID int, hint *namingHint) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *jsast.FuncExpr:
		e.visitFuncExpr(v, parentID, hint)
	case jsast.ObjectExpr:
		for _, prop := range v.Properties {
			e.visitObjectProp(prop, parentID)
		}
	case jsast.CallExpr:
		e.visitExpr(v.Callee, parentID, nil)
		for _, a := range v.Args {
			e.visitExpr(a, parentID, nil)
		}
	case jsast.NewExpr:
		e.visitExpr(v.Callee, parentID, nil)
		for _, a := range v.Args {
			e.visitExpr(a, parentID, nil)
		}
	case jsast.ArrayExpr:
		for _, el := range v.Elements {
			e.visitExpr(el, parentID, nil)
		}
	case jsast.MemberExpr:
		e.visitExpr(v.Object, parentID, nil)
	case jsast.UnaryExpr:
		e.visitExpr(v.Arg, parentID, nil)
	case jsast.BinaryExpr:
		e.visitExpr(v.Left, parentID, nil)
		e.visitExpr(v.Right, parentID, nil)
	case jsast.LogicalExpr:
		e.visitExpr(v.Left, parentID, nil)
		e.visitExpr(v.Right, parentID, nil)
	case jsast.AssignExpr:
		if name, ok := simpleAssignTargetName(v.Target); ok {
			e.visitExpr(v.Value, parentID, &namingHint{Name: name, Kind: model.KindFree, Valid: true})
		} else {
			e.visitExpr(v.Value, parentID, nil)
		}
		e.visitExpr(v.Target, parentID, nil)
	case jsast.CondExpr:
		e.visitExpr(v.Test, parentID, nil)
		e.visitExpr(v.Cons, parentID, nil)
		e.visitExpr(v.Alt, parentID, nil)
	case jsast.SequenceExpr:
		for _, ex := range v.Exprs {
			e.visitExpr(ex, parentID, nil)
		}
	case jsast.ParenExpr:
		e.visitExpr(v.Inner, parentID, hint)
	case jsast.SpreadExpr:
		e.visitExpr(v.Arg, parentID, nil)
	case jsast.AwaitExpr:
		e.visitExpr(v.Arg, parentID, nil)
	case jsast.YieldExpr:
		if v.Arg != nil {
			e.visitExpr(v.Arg, parentID, nil)
		}
	case jsast.TaggedTemplateExpr:
		e.visitExpr(v.Tag, parentID, nil)
	case jsast.JSXExpr:
		for _, ex := range v.Exprs {
			e.visitExpr(ex, parentID, nil)
		}
	case jsast.ClassDecl:
		for _, m := range v.Members {
			e.visitClassMember(m, parentID)
		}
	}
}

func (e *enumerator) visitObjectProp(prop *jsast.ObjectProp, parentID int) {
	switch prop.Kind {
	case jsast.PropMethod:
		e.visitExpr(prop.Value, parentID, &namingHint{Name: prop.Key, Kind: model.KindObjectLiteralMethod, Valid: true})
	case jsast.PropGetter, jsast.PropSetter:
		e.visitExpr(prop.Value, parentID, &namingHint{Name: prop.Key, Kind: model.KindAccessor, Valid: true})
	case jsast.PropInit:
		if _, ok := prop.Value.(*jsast.FuncExpr); ok {
			e.visitExpr(prop.Value, parentID, &namingHint{Name: prop.Key, Kind: model.KindObjectLiteralMethod, Valid: true})
		} else {
			e.visitExpr(prop.Value, parentID, nil)
		}
	default:
		e.visitExpr(prop.Value, parentID, nil)
	}
}

func (e *enumerator) visitFuncExpr(v *jsast.FuncExpr, parentID int, hint *namingHint) {
	kind := model.KindAnonymousCallback
	name := ""
	exported := false
	if hint != nil && hint.Valid {
		kind = hint.Kind
		name = hint.Name
		exported = hint.Exported
	}
	var bodySpan jsast.Span
	if v.Body != nil {
		bodySpan = v.Body.Span()
	} else if v.ArrowExprBody != nil {
		bodySpan = v.ArrowExprBody.Span()
	} else {
		bodySpan = v.Span()
	}
	id := e.addCallable(name, kind, v.HeadSpan, bodySpan, parentID, exported, v.Params)
	if v.Body != nil {
		e.analysis.Body[id] = v.Body.Body
		e.visitStmtList(v.Body.Body, id)
	} else if v.ArrowExprBody != nil {
		e.analysis.ExprBody[id] = v.ArrowExprBody
		e.visitExpr(v.ArrowExprBody, id, nil)
	}
}

func simpleAssignTargetName(n jsast.Node) (string, bool) {
	switch t := n.(type) {
	case jsast.Ident:
		return t.Name, true
	case jsast.MemberExpr:
		if !t.Computed && t.Property != "" {
			return t.Property, true
		}
	}
	return "", false
}

func anonIfEmpty(name string) string { return name }
