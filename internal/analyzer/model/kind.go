// Package model holds the shared record types every analysis stage reads
// and writes: Callable, TryFrame, RaiseSite, CallSite, DocBlock,
// Suppression. One declaration family per file, following
// internal/loc's layout in the teacher repo.
package model

// ErrorKindTag is the tagged-union discriminant for ErrorKind, per
// spec.md §3.
type ErrorKindTag int

const (
	KindNamed ErrorKindTag = iota
	KindAnonymous
	KindLiteral
	KindVariable
)

// ErrorKind is the class of a thrown value as inferred syntactically.
// Named and Variable carry the identifier text in Name; Anonymous and
// Literal carry nothing.
type ErrorKind struct {
	Tag  ErrorKindTag
	Name string
}

func Named(id string) ErrorKind    { return ErrorKind{Tag: KindNamed, Name: id} }
func Anonymous() ErrorKind         { return ErrorKind{Tag: KindAnonymous} }
func Literal() ErrorKind           { return ErrorKind{Tag: KindLiteral} }
func Variable(id string) ErrorKind { return ErrorKind{Tag: KindVariable, Name: id} }

// DisplayName renders the kind the way §4.8's message templates list it:
// a bare name for Named/Anonymous, "Error" for Literal, and
// "{variable: name}" for Variable — the inconsistency spec.md §9's Open
// Questions flags explicitly rather than smooths over.
func (k ErrorKind) DisplayName() string {
	switch k.Tag {
	case KindNamed:
		return k.Name
	case KindAnonymous:
		return "Error"
	case KindLiteral:
		return "Error"
	case KindVariable:
		return "{variable: " + k.Name + "}"
	default:
		return "Error"
	}
}

// Key is a map/set key for an ErrorKind: two kinds with the same Tag and
// Name collapse, which is how "raised ∖ documented" subtraction and
// dedup by kind are implemented without a custom Set type.
func (k ErrorKind) Key() string {
	switch k.Tag {
	case KindNamed:
		return "named:" + k.Name
	case KindVariable:
		return "variable:" + k.Name
	case KindLiteral:
		return "literal"
	default:
		return "anonymous"
	}
}

// UnionKinds appends b's kinds onto a, keeping a's source-appearance
// order and skipping anything already present by Key, per spec.md §9's
// "deterministic kind ordering: source-appearance order, never an
// insertion-order map keyed by hash" — the slice itself *is* the
// insertion order; Key is only used for membership tests.
func UnionKinds(a, b []ErrorKind) []ErrorKind {
	seen := make(map[string]bool, len(a))
	out := make([]ErrorKind, 0, len(a)+len(b))
	for _, k := range a {
		if !seen[k.Key()] {
			seen[k.Key()] = true
			out = append(out, k)
		}
	}
	for _, k := range b {
		if !seen[k.Key()] {
			seen[k.Key()] = true
			out = append(out, k)
		}
	}
	return out
}

// SubtractKinds returns the kinds in a not present (by Key) in any of b.
func SubtractKinds(a []ErrorKind, b ...[]ErrorKind) []ErrorKind {
	exclude := map[string]bool{}
	for _, s := range b {
		for _, k := range s {
			exclude[k.Key()] = true
		}
	}
	var out []ErrorKind
	for _, k := range a {
		if !exclude[k.Key()] {
			out = append(out, k)
		}
	}
	return out
}

// ContainsKind reports whether set contains a kind with the same Key.
func ContainsKind(set []ErrorKind, k ErrorKind) bool {
	for _, x := range set {
		if x.Key() == k.Key() {
			return true
		}
	}
	return false
}
