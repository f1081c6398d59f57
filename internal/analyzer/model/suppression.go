package model

import "github.com/does-it-throw/analyzer/internal/jsast"

// SuppressionScope is the precedence-ordered set from spec.md §4.7.
type SuppressionScope int

const (
	ScopeFile SuppressionScope = iota
	ScopeFunction
	ScopeProximity
)

// Suppression is one recognised pragma occurrence.
type Suppression struct {
	Scope   SuppressionScope
	Span    jsast.Span // the comment's own span
	Token   string     // the matched pragma token text
	Claimed bool       // set true once Apply attaches it to a Callable or site
	// TargetCallableID is set for ScopeFunction, -1 otherwise.
	TargetCallableID int
}
