// Package catch implements spec.md §4.3: given a TryFrame's handler AST,
// flatten its instanceof guard chain, detect the unconditional-rethrow
// escape hatch, and resolve a protected kind set into masked/rethrown/
// unhandled sets. Resolve decides each guard with a switch on its
// disposition followed by set subtraction; there is no lookup table. Grounded on original_source's
// try_catch_finder.rs CatchAnalysis fields
// (errors_thrown_in_try/errors_handled_in_catch/errors_effectively_caught/
// errors_propagated) and lib.rs's get_effectively_caught_errors_for_function.
package catch

import (
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/jsast"
)

// Chain is the guard-chain analysis for one catch handler, computed once
// from the AST and independent of which kinds ended up protected.
type Chain struct {
	Branches                []model.GuardBranch
	HasUnconditionalRethrow bool
}

// FlattenGuards implements spec.md §4.3 step 1-2 for a catch handler with
// bound exception name `bound`. A handler with no catch (bound == "")
// yields an empty, non-rethrowing chain.
func FlattenGuards(handler *jsast.CatchClause) Chain {
	if handler == nil || handler.Param == "" {
		return Chain{}
	}
	branches, rethrow := flattenGuards(handler.Body.Body, handler.Param)
	return Chain{Branches: branches, HasUnconditionalRethrow: rethrow}
}

func flattenGuards(stmts []jsast.Node, bound string) ([]model.GuardBranch, bool) {
	if len(stmts) == 0 {
		return nil, false
	}
	ifStmt, ok := stmts[0].(jsast.IfStmt)
	if !ok {
		return nil, bodyEndsInBareRethrow(stmts, bound)
	}
	kind, ok := instanceofGuardKind(ifStmt.Test, bound)
	if !ok {
		return nil, bodyEndsInBareRethrow(stmts, bound)
	}

	var branches []model.GuardBranch
	cur := ifStmt
	for {
		branches = append(branches, classifyBranch(kind, cur.Cons, bound))
		switch alt := cur.Alt.(type) {
		case jsast.IfStmt:
			k2, ok2 := instanceofGuardKind(alt.Test, bound)
			if !ok2 {
				tail := append([]jsast.Node{alt}, stmts[1:]...)
				return branches, bodyEndsInBareRethrow(tail, bound)
			}
			cur = alt
			kind = k2
			continue
		case *jsast.BlockStmt:
			return branches, bodyEndsInBareRethrow(alt.Body, bound)
		case nil:
			return branches, bodyEndsInBareRethrow(stmts[1:], bound)
		default:
			return branches, bodyEndsInBareRethrow([]jsast.Node{alt}, bound)
		}
	}
}

func instanceofGuardKind(test jsast.Node, bound string) (model.ErrorKind, bool) {
	bin, ok := test.(jsast.BinaryExpr)
	if !ok || bin.Op != "instanceof" {
		return model.ErrorKind{}, false
	}
	id, ok2 := bin.Left.(jsast.Ident)
	if !ok2 || id.Name != bound {
		return model.ErrorKind{}, false
	}
	rhs, ok3 := bin.Right.(jsast.Ident)
	if !ok3 {
		return model.ErrorKind{}, false
	}
	return model.Named(rhs.Name), true
}

// classifyBranch decides a guard's disposition per spec.md §4.3 step 1. A
// branch whose body neither returns nor rethrows (e.g. it only logs) is
// conservatively treated as `returns`: it does not re-raise, so nothing
// escapes through it, matching the decision table's assumption that
// disposition is one of exactly these two outcomes.
func classifyBranch(kind model.ErrorKind, cons jsast.Node, bound string) model.GuardBranch {
	stmts := blockBody(cons)
	if len(stmts) > 0 {
		last := stmts[len(stmts)-1]
		if _, ok := last.(jsast.ReturnStmt); ok {
			return model.GuardBranch{Kind: kind, Disposition: model.DispositionReturns}
		}
		if th, ok := last.(jsast.ThrowStmt); ok {
			if id, ok2 := th.Arg.(jsast.Ident); ok2 && id.Name == bound {
				return model.GuardBranch{Kind: kind, Disposition: model.DispositionRethrows, RethrowsBound: true}
			}
			if ne, ok2 := th.Arg.(jsast.NewExpr); ok2 {
				if nid, ok3 := ne.Callee.(jsast.Ident); ok3 {
					rk := model.Named(nid.Name)
					return model.GuardBranch{Kind: kind, Disposition: model.DispositionRethrows, RethrowKind: &rk}
				}
			}
		}
	}
	return model.GuardBranch{Kind: kind, Disposition: model.DispositionReturns}
}

func bodyEndsInBareRethrow(stmts []jsast.Node, bound string) bool {
	if bound == "" || len(stmts) == 0 {
		return false
	}
	last := stmts[len(stmts)-1]
	switch s := last.(type) {
	case jsast.ThrowStmt:
		id, ok := s.Arg.(jsast.Ident)
		return ok && id.Name == bound
	case *jsast.BlockStmt:
		return bodyEndsInBareRethrow(s.Body, bound)
	case jsast.BlockStmt:
		return bodyEndsInBareRethrow(s.Body, bound)
	default:
		return false
	}
}

func blockBody(n jsast.Node) []jsast.Node {
	switch b := n.(type) {
	case *jsast.BlockStmt:
		return b.Body
	case jsast.BlockStmt:
		return b.Body
	default:
		return []jsast.Node{n}
	}
}

// Resolved is the set-algebra output of spec.md §4.3 steps 3-5.
type Resolved struct {
	Masked    []model.ErrorKind
	Rethrown  []model.ErrorKind
	Unhandled []model.ErrorKind // non-empty only when !chain.HasUnconditionalRethrow
}

// Resolve applies the decision table to one protected kind set. Callable
// multiple times as the effect solver's call-linker pass grows Protected
// with one-hop call-derived kinds (spec.md §4.3 step 3's "including
// one-hop inferred kinds from CallSites").
func Resolve(chain Chain, protected []model.ErrorKind) Resolved {
	guardedSet := make([]model.ErrorKind, 0, len(chain.Branches))
	var masked, rethrownFromGuards []model.ErrorKind
	for _, g := range chain.Branches {
		guardedSet = append(guardedSet, g.Kind)
		switch g.Disposition {
		case model.DispositionReturns:
			masked = append(masked, g.Kind)
		case model.DispositionRethrows:
			if g.RethrowKind != nil {
				rethrownFromGuards = append(rethrownFromGuards, *g.RethrowKind)
			} else {
				rethrownFromGuards = append(rethrownFromGuards, g.Kind)
			}
		}
	}
	masked = model.UnionKinds(nil, masked)
	masked = model.SubtractKinds(masked, model.SubtractKinds(masked, protected))
	rest := model.SubtractKinds(protected, masked, guardedSet)

	if chain.HasUnconditionalRethrow {
		return Resolved{
			Masked:   masked,
			Rethrown: model.UnionKinds(rethrownFromGuards, rest),
		}
	}
	return Resolved{
		Masked:    masked,
		Rethrown:  model.UnionKinds(nil, rethrownFromGuards),
		Unhandled: rest,
	}
}
