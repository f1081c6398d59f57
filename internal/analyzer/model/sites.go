package model

import "github.com/does-it-throw/analyzer/internal/jsast"

// RaiseSite is one `throw` expression, per spec.md §3.
type RaiseSite struct {
	ID         int
	Span       jsast.Span
	Kind       ErrorKind
	TryFrameID int // -1 if not enclosed by a try body
	CallableID int
	Suppressed bool // proximity pragma (§4.7 scope 3) or owning Callable suppressed
}

// CallSite is one call expression, per spec.md §3. Callee is the
// syntactic path as written (`foo`, `this.bar`, `obj.baz`), used for
// lexical resolution in the effect solver (§4.5) — never a resolved
// pointer at collection time.
type CallSite struct {
	ID         int
	Span       jsast.Span
	Callee     string
	CallableID int
	TryFrameID int // -1 if not enclosed by a try body

	// LinkedCallableID is set by the call linker (§4.6) once resolution
	// succeeds; -1 means unknown/unresolved (imported or dynamic).
	LinkedCallableID int
	// ImportedRaises holds kinds an imported callee raises, kept separate
	// from LinkedCallableID because an imported callee is never "in the
	// same file" per §4.5's lexical-resolution rule. No stage of the
	// analyzer fills it; internal/project splices cross-file diagnostics
	// into the wire Result instead.
	ImportedRaises []ErrorKind
	Suppressed     bool
}
