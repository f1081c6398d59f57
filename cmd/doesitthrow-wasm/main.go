//go:build js && wasm

// Command doesitthrow-wasm exposes the core analyzer to a JS host over
// syscall/js, the same entry-point shape the teacher's cmd/astro-wasm
// uses: one global function, registered once, blocking forever on a
// channel so the WASM instance stays alive for repeated calls.
package main

import (
	"syscall/js"

	"github.com/does-it-throw/analyzer/internal/analyzer"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/handler"
	wasmutils "github.com/does-it-throw/analyzer/internal_wasm/utils"
)

func main() {
	js.Global().Set("__does_it_throw_analyze", js.FuncOf(Analyze))
	<-make(chan bool)
}

func jsString(j js.Value) string {
	if j.IsUndefined() || j.IsNull() {
		return ""
	}
	return j.String()
}

func jsBool(j js.Value) bool {
	if j.IsUndefined() || j.IsNull() {
		return false
	}
	return j.Bool()
}

func jsInt(j js.Value) int {
	if j.IsUndefined() || j.IsNull() {
		return 0
	}
	return j.Int()
}

func jsStringArray(j js.Value) []string {
	if j.IsUndefined() || j.IsNull() {
		return nil
	}
	out := make([]string, j.Length())
	for i := range out {
		out[i] = j.Index(i).String()
	}
	return out
}

// Analyze is the `__does_it_throw_analyze(source, options)` JS entry
// point. options is a plain object whose fields mirror analyzer.Input's
// severity selectors, flags, and ignore_statements list; any field left
// undefined keeps its Go zero value.
func Analyze(this js.Value, args []js.Value) interface{} {
	source := jsString(args[0])
	filename := "input.ts"
	var options js.Value
	if len(args) > 1 {
		options = args[1]
	}

	input := analyzer.Input{
		FileContent: source,
		Filename:    filename,
	}
	if !options.IsUndefined() && !options.IsNull() {
		if fn := options.Get("filename"); !fn.IsUndefined() {
			input.Filename = jsString(fn)
		}
		input.ThrowStatement = model.Severity(jsInt(options.Get("throwStatement")))
		input.FunctionThrow = model.Severity(jsInt(options.Get("functionThrow")))
		input.CallToThrow = model.Severity(jsInt(options.Get("callToThrow")))
		input.CallToImportedThrow = model.Severity(jsInt(options.Get("callToImportedThrow")))
		input.IncludeTryStatementThrows = jsBool(options.Get("includeTryStatementThrows"))
		input.ReportUnusedSuppression = jsBool(options.Get("reportUnusedSuppressions"))
		input.IgnoreStatements = jsStringArray(options.Get("ignoreStatements"))
	}

	result, err := analyzer.Analyze(input)
	if err != nil {
		h := handler.New(input.Filename)
		h.Fail(err)
		return wasmutils.ErrorToJSError(h, err)
	}
	return wasmutils.ValueOf(result)
}
