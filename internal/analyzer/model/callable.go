package model

import "github.com/does-it-throw/analyzer/internal/jsast"

// CallableKind is the closed set from spec.md §3/§4.1.
type CallableKind int

const (
	KindFree CallableKind = iota
	KindMethod
	KindConstructor
	KindArrow
	KindAccessor
	KindObjectLiteralMethod
	KindAnonymousCallback
)

func (k CallableKind) String() string {
	switch k {
	case KindFree:
		return "free"
	case KindMethod:
		return "method"
	case KindConstructor:
		return "constructor"
	case KindArrow:
		return "arrow"
	case KindAccessor:
		return "accessor"
	case KindObjectLiteralMethod:
		return "object-literal-method"
	case KindAnonymousCallback:
		return "anonymous-callback"
	default:
		return "unknown"
	}
}

// Callable is the tagged-variant record spec.md §9 asks for: one shared
// header, no kind-specific subtypes, following the teacher's
// flat-struct-with-enum-discriminant style over a deep hierarchy.
type Callable struct {
	ID   int // index into the owning Analysis's Callables slice
	Name string
	Kind CallableKind

	HeadSpan jsast.Span // declaration head, anchors FunctionMayThrow
	BodySpan jsast.Span

	DocSpan   jsast.Span // zero value if undocumented
	HasDoc    bool
	ParentID  int // -1 if top-level <module>
	HasParent bool
	Exported  bool

	RaiseSites []int // indices into throws.Result.RaiseSites
	TryFrames  []int
	CallSites  []int
	Children   []int // nested Callable ids, in source order

	// RaisedBody is the kind set collected directly from this Callable's
	// own throw statements and try/catch masking (§4.5 Pass 1), before
	// doc subtraction or call-site propagation.
	RaisedBody []ErrorKind
	// Documented is the doc reconciler's parsed @throws set (§4.4).
	Documented []ErrorKind
	// Effective is the final raised set after masking, doc subtraction,
	// and one-hop call propagation (§4.5 Pass 2).
	Effective []ErrorKind

	Suppressed bool // function-leading pragma (§4.7 scope 2)
}

// ModuleCallableID is the reserved id for the synthetic top-level
// Callable every file-scope RaiseSite attaches to, per spec.md §3's
// invariant.
const ModuleCallableID = 0

// ModuleCallableName is that synthetic Callable's fixed name.
const ModuleCallableName = "<module>"
