//go:build js && wasm

// Package wasm_utils bridges Go values across the WASM boundary for
// cmd/doesitthrow-wasm, adapted from the teacher's own internal_wasm
// utilities: the vert-backed JSError conversion survives unchanged in
// shape, since a fatal analysis failure needs the same
// message+stack-trace js.Value the teacher's own compiler errors used.
package wasm_utils

import (
	"runtime/debug"
	"strings"
	"syscall/js"

	"github.com/norunners/vert"

	"github.com/does-it-throw/analyzer/internal/handler"
)

// JSError is the shape a thrown JS Error takes once vert converts it.
type JSError struct {
	Message string `js:"message"`
	Stack   string `js:"stack"`
}

func (err *JSError) Value() js.Value {
	return vert.ValueOf(err).Value
}

// ErrorToJSError renders a fatal handler failure as a JS Error value,
// including a Go stack trace for debugging the WASM host side — the same
// trade-off the teacher's own ErrorToJSError makes for compiler panics.
func ErrorToJSError(h *handler.Handler, err error) js.Value {
	stack := string(debug.Stack())
	message := strings.TrimSpace(err.Error())
	jsError := JSError{
		Message: message,
		Stack:   stack,
	}
	return jsError.Value()
}

// ValueOf converts any Go value (Result, WireDiagnostic, ...) to its
// js.Value representation via struct `js:"..."` tags, the same
// conversion the teacher's JSError.Value uses for its own wire types.
func ValueOf(v interface{}) js.Value {
	return vert.ValueOf(v).Value
}
