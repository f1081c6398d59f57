// Package emit implements spec.md §4.8: turn the analysed Callable/
// TryFrame/CallSite records into the stable-sorted, deduplicated
// Diagnostic list, rendering each into one of the five fixed message
// templates. Grounded on original_source's lib.rs's final diagnostic
// assembly pass and message_templates.rs for the exact wording.
package emit

import (
	"sort"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/effect"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/analyzer/throws"
)

// Severities is the four configurable severity selectors spec.md §6
// names. ExhaustiveCatchMissing and JSDocMismatch have no dedicated
// selector in the input structure, so they borrow FunctionThrow's — both
// are function/doc-level findings, the same bucket FunctionMayThrow itself
// uses. UnusedSuppression is always reported as a warning
// (internal/analyzer sets it directly).
type Severities struct {
	ThrowStatement      model.Severity
	FunctionThrow       model.Severity
	CallToThrow         model.Severity
	CallToImportedThrow model.Severity
}

// Config is the emitter's view of the `analyze` input structure's
// severity/behavior fields (spec.md §6); file_content and the pragma
// token list live elsewhere in the pipeline.
type Config struct {
	Severities                Severities
	IncludeTryStatementThrows bool
	ReportUnusedSuppression   bool
}

func codeFor(kind model.DiagnosticKind) string {
	return strcase.ToKebab(kind.String())
}

func joinKinds(kinds []model.ErrorKind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.DisplayName()
	}
	return strings.Join(names, ", ")
}

func functionMayThrowMessage(name string, kinds []model.ErrorKind) string {
	if strings.HasPrefix(name, "<anonymous@") {
		return "Anonymous function may throw: {" + joinKinds(kinds) + "}"
	}
	return "Function " + name + " may throw: {" + joinKinds(kinds) + "}"
}

func callMayThrowMessage(kinds []model.ErrorKind) string {
	return "Function call may throw: {" + joinKinds(kinds) + "}."
}

func exhaustiveCatchMessage(kinds []model.ErrorKind) string {
	return "Exhaustive catch is missing handlers for: " + joinKinds(kinds)
}

func jsdocMismatchMessage(documented, undocumented []model.ErrorKind) string {
	return "JSDoc defines " + joinKinds(documented) + ", but not " + joinKinds(undocumented)
}

// Emit builds the final stably-sorted, deduplicated Diagnostic list.
// analysis/tr/ef must already have suppression applied (Suppressed flags
// set by internal/suppress) and effects solved (internal/analyzer/effect).
func Emit(analysis *callable.Analysis, tr *throws.Result, ef *effect.Result, cfg Config) []model.Diagnostic {
	var out []model.Diagnostic
	for _, c := range analysis.Callables {
		out = append(out, callableDiagnostics(c, tr, cfg, false)...)
	}
	for _, cs := range ef.CallSites {
		if cs.Suppressed {
			continue
		}
		if d, ok := callSiteDiagnostic(analysis, cs, cfg); ok {
			out = append(out, d)
		}
	}
	for _, f := range tr.TryFrames {
		if !f.HasCatch || analysis.Callables[f.CallableID].Suppressed {
			continue
		}
		if len(f.Unhandled) == 0 {
			continue
		}
		out = append(out, model.Diagnostic{
			Kind:     model.DiagExhaustiveCatchMissing,
			Span:     f.CatchHead,
			Severity: cfg.Severities.FunctionThrow,
			Message:  exhaustiveCatchMessage(f.Unhandled),
			Code:     codeFor(model.DiagExhaustiveCatchMissing),
		})
	}
	return sortAndDedup(out)
}

// callableDiagnostics renders a Callable's own FunctionMayThrow,
// ThrowStatement (one per RaiseSite), and JSDocMismatch diagnostics.
// ignoreSuppressed, when true, renders them regardless of the Suppressed
// flag — used by UnusedSuppression detection to ask "what would this
// Callable have produced had its pragma not been here?"
func callableDiagnostics(c model.Callable, tr *throws.Result, cfg Config, ignoreSuppressed bool) []model.Diagnostic {
	if c.Suppressed && !ignoreSuppressed {
		return nil
	}
	var out []model.Diagnostic
	if c.ID != model.ModuleCallableID && len(c.Effective) > 0 {
		out = append(out, model.Diagnostic{
			Kind:     model.DiagFunctionMayThrow,
			Span:     c.HeadSpan,
			Severity: cfg.Severities.FunctionThrow,
			Message:  functionMayThrowMessage(c.Name, c.Effective),
			Code:     codeFor(model.DiagFunctionMayThrow),
		})
	}
	if len(c.Documented) > 0 && len(c.Effective) > 0 {
		out = append(out, model.Diagnostic{
			Kind:     model.DiagJSDocMismatch,
			Span:     c.DocSpan,
			Severity: cfg.Severities.FunctionThrow,
			Message:  jsdocMismatchMessage(c.Documented, c.Effective),
			Code:     codeFor(model.DiagJSDocMismatch),
		})
	}
	for _, rsID := range c.RaiseSites {
		rs := tr.RaiseSites[rsID]
		if rs.Suppressed && !ignoreSuppressed {
			continue
		}
		if rs.TryFrameID >= 0 && !cfg.IncludeTryStatementThrows {
			if model.ContainsKind(tr.TryFrames[rs.TryFrameID].Masked, rs.Kind) {
				continue
			}
		}
		if model.ContainsKind(c.Documented, rs.Kind) {
			continue
		}
		out = append(out, model.Diagnostic{
			Kind:     model.DiagThrowStatement,
			Span:     rs.Span,
			Severity: cfg.Severities.ThrowStatement,
			Message:  "Throw statement.",
			Code:     codeFor(model.DiagThrowStatement),
		})
	}
	return out
}

func callSiteDiagnostic(analysis *callable.Analysis, cs model.CallSite, cfg Config) (model.Diagnostic, bool) {
	caller := analysis.Callables[cs.CallableID]
	var kinds []model.ErrorKind
	var kind model.DiagnosticKind
	var sev model.Severity
	switch {
	case cs.LinkedCallableID >= 0:
		kinds = analysis.Callables[cs.LinkedCallableID].RaisedBody
		kind = model.DiagCallMayThrow
		sev = cfg.Severities.CallToThrow
	case len(cs.ImportedRaises) > 0:
		kinds = cs.ImportedRaises
		kind = model.DiagImportedCallMayThrow
		sev = cfg.Severities.CallToImportedThrow
	default:
		return model.Diagnostic{}, false
	}
	// Suppressed only when the callee's whole raised set is covered by the
	// caller's documentation; otherwise the diagnostic lists every kind
	// the callee may raise, not just the undocumented remainder.
	if len(model.SubtractKinds(kinds, caller.Documented)) == 0 {
		return model.Diagnostic{}, false
	}
	return model.Diagnostic{
		Kind:     kind,
		Span:     cs.Span,
		Severity: sev,
		Message:  callMayThrowMessage(kinds),
		Code:     codeFor(kind),
	}, true
}

// WouldEmitForCallable answers whether a Callable's own diagnostics —
// FunctionMayThrow, ThrowStatement, JSDocMismatch — would be non-empty if
// it were not suppressed; UnusedSuppression's "suppressed nothing" test
// for a function-leading pragma (spec.md §4.7's closing paragraph).
func WouldEmitForCallable(c model.Callable, tr *throws.Result, cfg Config) bool {
	return len(callableDiagnostics(c, tr, cfg, true)) > 0
}

func sortAndDedup(diags []model.Diagnostic) []model.Diagnostic {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Span.Start != diags[j].Span.Start {
			return diags[i].Span.Start < diags[j].Span.Start
		}
		if diags[i].Span.End != diags[j].Span.End {
			return diags[i].Span.End < diags[j].Span.End
		}
		return diags[i].Message < diags[j].Message
	})
	seen := make(map[string]bool, len(diags))
	out := make([]model.Diagnostic, 0, len(diags))
	for _, d := range diags {
		key := dedupKey(d)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, d)
	}
	return out
}

func dedupKey(d model.Diagnostic) string {
	var b strings.Builder
	b.WriteString(d.Message)
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(d.Span.Start))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(d.Span.End))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(int(d.Severity)))
	b.WriteByte('|')
	b.WriteString(d.Code)
	return b.String()
}
