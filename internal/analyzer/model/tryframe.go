package model

import "github.com/does-it-throw/analyzer/internal/jsast"

// GuardDisposition is what a catch-handler instanceof branch does once it
// matches, per spec.md §4.3 step 1.
type GuardDisposition int

const (
	DispositionReturns GuardDisposition = iota
	DispositionRethrows
)

// GuardBranch is one arm of a flattened `if (e instanceof X) ... else if
// ...` chain inside a catch handler.
type GuardBranch struct {
	Kind        ErrorKind // always KindNamed; the instanceof-tested identifier
	Disposition GuardDisposition
	// RethrowKind is set only when Disposition == DispositionRethrows and
	// the branch ends with `throw new Id2(...)` rather than `throw e`; it
	// is the kind that actually escapes instead of the guarded kind.
	RethrowKind   *ErrorKind
	RethrowsBound bool // true for a bare `throw e`
}

// TryFrame is one try/catch/finally construct, per spec.md §3.
type TryFrame struct {
	ID         int
	CallableID int
	BodySpan   jsast.Span
	HasCatch   bool
	CatchHead  jsast.Span // `catch (e)` head, anchors ExhaustiveCatchMissing
	BoundName  string     // "" if the catch binds no identifier

	// ParentTryFrameID is the id of the try frame this one is nested
	// inside (a try directly in an enclosing try's body), or -1 if this
	// frame is top-level within its Callable. The effect solver (§4.5)
	// walks frames in descending id order so a nested frame's Rethrown
	// set is folded into its parent's Protected set before the parent is
	// resolved.
	ParentTryFrameID int

	Guards                 []GuardBranch
	HasUnconditionalRethrow bool

	// Protected is the set of kinds raised by statements in the try body
	// (§4.3 step 3), computed once RaiseSites/CallSites inside the frame
	// are known.
	Protected []ErrorKind
	// Masked is the subset of Protected absorbed by `returns` guards.
	Masked []ErrorKind
	// Rethrown is the subset that still escapes the frame (rethrowing
	// guards plus whatever the escape hatch lets through).
	Rethrown []ErrorKind
	// Unhandled is Protected minus Masked minus anything a guard or the
	// escape hatch accounts for — what ExhaustiveCatchMissing lists.
	Unhandled []ErrorKind
}
