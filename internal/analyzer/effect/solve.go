package effect

import (
	"sort"
	"strings"

	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/catch"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/analyzer/throws"
	"github.com/does-it-throw/analyzer/internal/jsast"
)

// Link resolves each CallSite's LinkedCallableID by the one-hop lexical
// rule spec.md §4.5 names: an unqualified identifier against a free
// Callable anywhere in the file, and both `this.m()` and `obj.m()`
// against a method, constructor, accessor or object-literal method
// (tried in that order) declared in the same enclosing scope as the call. Resolving "same enclosing scope" by ParentID equality rather
// than true class/object identity is a deliberate one-file
// simplification: two same-scope classes sharing a method name could
// collide, an accepted approximation for a single lexical hop.
func Link(analysis *callable.Analysis, result *Result) {
	for i := range result.CallSites {
		cs := &result.CallSites[i]
		calling := analysis.Callables[cs.CallableID]
		name, kind := splitCallee(cs.Callee)
		switch kind {
		case calleeIdent:
			cs.LinkedCallableID = findByKind(analysis, name, calling.ParentID, model.KindFree, true)
		case calleeThis, calleeObj:
			id := findByKind(analysis, name, calling.ParentID, model.KindMethod, false)
			if id < 0 {
				id = findByKind(analysis, name, calling.ParentID, model.KindConstructor, false)
			}
			if id < 0 {
				id = findByKind(analysis, name, calling.ParentID, model.KindAccessor, false)
			}
			if id < 0 {
				id = findByKind(analysis, name, calling.ParentID, model.KindObjectLiteralMethod, false)
			}
			cs.LinkedCallableID = id
		}
	}
}

type calleeKind int

const (
	calleeIdent calleeKind = iota
	calleeThis
	calleeObj
)

func splitCallee(s string) (name string, kind calleeKind) {
	if strings.HasPrefix(s, "this.") {
		return strings.TrimPrefix(s, "this."), calleeThis
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[i+1:], calleeObj
	}
	return s, calleeIdent
}

func findByKind(analysis *callable.Analysis, name string, scopeParentID int, kind model.CallableKind, anyScope bool) int {
	for _, c := range analysis.Callables {
		if c.Kind != kind || c.Name != name {
			continue
		}
		if anyScope || c.ParentID == scopeParentID {
			return c.ID
		}
	}
	return -1
}

// Solve runs spec.md §4.5's two passes over analysis.Callables (whose
// Documented field is assumed already populated by internal/analyzer/jsdoc)
// and tr.TryFrames (mutated in place with Protected/Masked/Rethrown/
// Unhandled). Pass 1 resolves each Callable's own RaisedBody from its own
// raise sites and try/catch structure alone. Pass 2 imports each
// CallSite's linked callee's Pass-1 RaisedBody into the caller, including
// into any enclosing TryFrame's protected set, and only then computes
// Effective.
func Solve(analysis *callable.Analysis, tr *throws.Result, result *Result) {
	base := frameRaiseKinds(tr)
	pass1Protected := copyKindMap(base)
	pass1 := resolveFrames(tr, pass1Protected, catchHandlerFor(tr))
	applyTopLevel(analysis, tr, pass1, pass1Protected, nil)

	imported := map[int][]model.ErrorKind{}      // callableID -> top-level imported kinds
	importedIntoFrame := map[int][]model.ErrorKind{} // tryFrameID -> imported kinds
	for _, cs := range result.CallSites {
		kinds := calleeRaises(analysis, cs)
		if len(kinds) == 0 {
			continue
		}
		if cs.TryFrameID >= 0 {
			importedIntoFrame[cs.TryFrameID] = model.UnionKinds(importedIntoFrame[cs.TryFrameID], kinds)
		} else {
			imported[cs.CallableID] = model.UnionKinds(imported[cs.CallableID], kinds)
		}
	}

	pass2Protected := copyKindMap(base)
	for id, kinds := range importedIntoFrame {
		pass2Protected[id] = model.UnionKinds(pass2Protected[id], kinds)
	}
	pass2 := resolveFrames(tr, pass2Protected, catchHandlerFor(tr))
	applyTopLevel(analysis, tr, pass2, pass2Protected, imported)
}

func copyKindMap(m map[int][]model.ErrorKind) map[int][]model.ErrorKind {
	out := make(map[int][]model.ErrorKind, len(m))
	for id, kinds := range m {
		out[id] = model.UnionKinds(nil, kinds)
	}
	return out
}

func calleeRaises(analysis *callable.Analysis, cs model.CallSite) []model.ErrorKind {
	if cs.LinkedCallableID >= 0 {
		return analysis.Callables[cs.LinkedCallableID].RaisedBody
	}
	return cs.ImportedRaises
}

// frameRaiseKinds buckets each RaiseSite's kind by its innermost
// enclosing TryFrame id (skipping -1, the no-frame bucket handled
// separately at the Callable level).
func frameRaiseKinds(tr *throws.Result) map[int][]model.ErrorKind {
	out := map[int][]model.ErrorKind{}
	for _, site := range tr.RaiseSites {
		if site.TryFrameID < 0 {
			continue
		}
		out[site.TryFrameID] = append(out[site.TryFrameID], site.Kind)
	}
	return out
}

func catchHandlerFor(tr *throws.Result) func(frameID int) *jsast.CatchClause {
	return func(frameID int) *jsast.CatchClause {
		node, ok := tr.FrameNode[frameID]
		if !ok || node == nil {
			return nil
		}
		return node.Handler
	}
}

// resolveFrames processes tr.TryFrames from the highest id down so a
// nested frame's Rethrown set is folded into protected[parentID] before
// the parent frame is resolved (child ids are always greater than their
// parent's, since a TryFrame can only be discovered while walking inside
// its parent's already-assigned extent).
func resolveFrames(tr *throws.Result, protected map[int][]model.ErrorKind, handlerFor func(int) *jsast.CatchClause) map[int]catch.Resolved {
	order := make([]int, len(tr.TryFrames))
	for i, f := range tr.TryFrames {
		order[i] = f.ID
	}
	sort.Sort(sort.Reverse(sort.IntSlice(order)))

	resolved := map[int]catch.Resolved{}
	for _, id := range order {
		f := tr.TryFrames[id]
		chain := catch.FlattenGuards(handlerFor(id))
		r := catch.Resolve(chain, protected[id])
		resolved[id] = r
		if f.ParentTryFrameID >= 0 {
			protected[f.ParentTryFrameID] = model.UnionKinds(protected[f.ParentTryFrameID], r.Rethrown)
		}
	}
	return resolved
}

// applyTopLevel writes tr.TryFrames' Protected/Masked/Rethrown/Unhandled
// fields from the given resolution and computes each Callable's
// RaisedBody/Effective. extraTopLevel, when non-nil, is Pass 2's
// call-imported top-level kinds (no enclosing try); pass 1 is called
// with extraTopLevel == nil and leaves Effective untouched until pass 2.
func applyTopLevel(analysis *callable.Analysis, tr *throws.Result, resolved map[int]catch.Resolved, protectedUsed map[int][]model.ErrorKind, extraTopLevel map[int][]model.ErrorKind) {
	for i, f := range tr.TryFrames {
		r := resolved[f.ID]
		f.Protected = protectedUsed[f.ID]
		f.Masked = r.Masked
		f.Rethrown = r.Rethrown
		f.Unhandled = r.Unhandled
		tr.TryFrames[i] = f
	}

	topLevelRaise := map[int][]model.ErrorKind{}
	for _, site := range tr.RaiseSites {
		if site.TryFrameID < 0 {
			topLevelRaise[site.CallableID] = append(topLevelRaise[site.CallableID], site.Kind)
		}
	}

	for i := range analysis.Callables {
		c := &analysis.Callables[i]
		raised := model.UnionKinds(nil, topLevelRaise[c.ID])
		for _, frameID := range c.TryFrames {
			if tr.TryFrames[frameID].ParentTryFrameID < 0 {
				raised = model.UnionKinds(raised, resolved[frameID].Rethrown)
			}
		}
		if extraTopLevel == nil {
			c.RaisedBody = raised
			continue
		}
		final := model.UnionKinds(raised, extraTopLevel[c.ID])
		c.Effective = model.SubtractKinds(final, c.Documented)
	}
}
