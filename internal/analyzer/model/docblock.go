package model

import "github.com/does-it-throw/analyzer/internal/jsast"

// DocBlock is a parsed `/** ... */` comment's @throws content, per
// spec.md §3/§4.4.
type DocBlock struct {
	Span       jsast.Span
	Documented []ErrorKind // empty, never nil, when no @throws tag is present
	RawText    string
}

// ParamThrows is the [NEW] restored feature (SPEC_FULL §4.4): a @throws
// tag documented against a named callback parameter rather than the
// function itself, grounded on original_source's param_finder.rs.
type ParamThrows struct {
	ParamName  string    `json:"param_name"`
	Documented []ErrorKind `json:"documented"`
}

// CallbackType is the [NEW] restored feature for a named
// `@callback`/`@typedef` JSDoc type alias whose own doc block documents
// throws, grounded on original_source's callback_finder.rs/typedef_finder.rs.
// It is reported on the Result only; the effect solver does not read it,
// so invoking a parameter annotated `@param {NAME} cb` adds no raises.
type CallbackType struct {
	Name       string    `json:"name"`
	Documented []ErrorKind `json:"documented"`
}
