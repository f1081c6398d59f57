package suppress

import (
	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/effect"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/analyzer/throws"
)

// Apply walks the precedence order spec.md §4.7 names — file, then
// function-leading, then proximity — marking Suppressed on every
// Callable/RaiseSite/CallSite it covers, and returns every pragma that
// matched at least one site. internal/analyzer/emit reads the Suppressed
// flags to drop diagnostics; internal/analyzer consults the returned list,
// when asked, to report UnusedSuppression for a function-leading pragma
// whose Callable would have produced no diagnostic anyway.
func Apply(e *Engine, analysis *callable.Analysis, tr *throws.Result, ef *effect.Result) []model.Suppression {
	var claimed []model.Suppression

	if e.FileDisabled {
		for i := range analysis.Callables {
			analysis.Callables[i].Suppressed = true
		}
		for i := range tr.RaiseSites {
			tr.RaiseSites[i].Suppressed = true
		}
		for i := range ef.CallSites {
			ef.CallSites[i].Suppressed = true
		}
		return claimed
	}

	for i := range analysis.Callables {
		c := &analysis.Callables[i]
		s, ok := e.FunctionLeading(c.HeadSpan.Start)
		if !ok {
			continue
		}
		c.Suppressed = true
		s.TargetCallableID = c.ID
		s.Claimed = true
		claimed = append(claimed, s)
	}

	for i := range tr.RaiseSites {
		rs := &tr.RaiseSites[i]
		if analysis.Callables[rs.CallableID].Suppressed {
			rs.Suppressed = true
			continue
		}
		if s, ok := e.Proximity(rs.Span.Start); ok {
			rs.Suppressed = true
			s.TargetCallableID = rs.CallableID
			s.Claimed = true
			claimed = append(claimed, s)
		}
	}

	for i := range ef.CallSites {
		cs := &ef.CallSites[i]
		if analysis.Callables[cs.CallableID].Suppressed {
			cs.Suppressed = true
			continue
		}
		if s, ok := e.Proximity(cs.Span.Start); ok {
			cs.Suppressed = true
			s.TargetCallableID = cs.CallableID
			s.Claimed = true
			claimed = append(claimed, s)
		}
	}

	return claimed
}
