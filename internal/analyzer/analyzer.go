// Package analyzer wires spec.md §2's nine stages into the single
// `analyze(source) -> ParseResult` entry point spec.md §6 describes:
// parse, enumerate Callables, collect throws and try frames, reconcile
// docs, solve effects, apply suppression, emit diagnostics, and build the
// cross-file bridge surface. Grounded on original_source's lib.rs driver
// function, restated as a pipeline of independently testable packages
// rather than one monolithic pass.
package analyzer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/does-it-throw/analyzer/internal/analyzer/bridge"
	"github.com/does-it-throw/analyzer/internal/analyzer/callable"
	"github.com/does-it-throw/analyzer/internal/analyzer/effect"
	"github.com/does-it-throw/analyzer/internal/analyzer/emit"
	"github.com/does-it-throw/analyzer/internal/analyzer/jsdoc"
	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/analyzer/throws"
	"github.com/does-it-throw/analyzer/internal/handler"
	"github.com/does-it-throw/analyzer/internal/jsast"
	"github.com/does-it-throw/analyzer/internal/loc"
	"github.com/does-it-throw/analyzer/internal/suppress"
	"github.com/does-it-throw/analyzer/internal/suppress/directives"
)

// ErrParseFailed is the sentinel spec.md §7's fatal outcome wraps: a
// source the tokenizer/parser cannot turn into an AST at all. Callers can
// test for it with errors.Is to distinguish "this file can't be analyzed"
// from any other error a collaborator (internal/project, cmd/doesitthrow)
// might return.
var ErrParseFailed = errors.New("analyzer: parse failed")

// Input is spec.md §6's `analyze` input structure.
type Input struct {
	FileContent string
	// Filename seeds the ThrowId's file-stable-id and the fatal-error
	// message; callers should pass a project-relative path, never an
	// absolute one (spec.md §9's cross-file bridge stability note).
	Filename string

	ThrowStatement      model.Severity
	FunctionThrow       model.Severity
	CallToThrow         model.Severity
	CallToImportedThrow model.Severity

	IncludeTryStatementThrows bool
	IgnoreStatements          []string
	ReportUnusedSuppression   bool
}

// WireDiagnostic is one entry of ParseResult.diagnostics: the only point
// where a Span becomes a one-based Range, per spec.md §3's "zero-based
// offsets internally, one-based on external emission."
type WireDiagnostic struct {
	Message  string              `json:"message" js:"message"`
	Range    loc.Range           `json:"range" js:"range"`
	Severity model.Severity      `json:"severity" js:"severity"`
	Source   string              `json:"source" js:"source"`
	Code     string              `json:"code,omitempty" js:"code"`
	Data     *model.QuickFixHint `json:"data,omitempty" js:"data"`
}

// Result is spec.md §6's `ParseResult`.
type Result struct {
	Diagnostics                    []WireDiagnostic         `json:"diagnostics" js:"diagnostics"`
	RelativeImports                []string                 `json:"relative_imports" js:"relativeImports"`
	ThrowIDs                       []string                 `json:"throw_ids" js:"throwIds"`
	ImportedIdentifiersDiagnostics map[string]bridge.Bundle `json:"imported_identifiers_diagnostics" js:"importedIdentifiersDiagnostics"`

	// ParamThrows/CallbackTypes are the [NEW] restored parameter-level
	// @throws surface (SPEC_FULL §4.4), exposed for collaborators that
	// want finer-grained callback-argument documentation than ThrowIds
	// give; nothing in the core's own diagnostic set depends on them.
	ParamThrows   map[int][]model.ParamThrows `json:"param_throws,omitempty"`
	CallbackTypes []model.CallbackType        `json:"callback_types,omitempty"`

	// UnresolvedCalls is the [NEW] candidate surface for internal/project's
	// splicing: call sites the linker could not resolve within this file
	// (any recorded callee shape, no same-file match, not suppressed). A
	// caller that has fetched another file's ThrowIDs can test whether
	// Callee + that file's stable id forms a known ThrowId and, if so,
	// splice the matching bundle's diagnostic in at Range.
	UnresolvedCalls []UnresolvedCall `json:"unresolved_calls,omitempty"`
}

// UnresolvedCall is one candidate cross-file call site.
type UnresolvedCall struct {
	Callee string    `json:"callee"`
	Range  loc.Range `json:"range"`
}

// Analyze runs the full pipeline once over one source unit. A parser
// failure is the only fatal outcome (spec.md §7); every other
// unrecognised or malformed construct degrades gracefully to an empty
// contribution rather than an error.
func Analyze(input Input) (Result, error) {
	h := handler.New(input.Filename)
	prog, comments, err := jsast.Parse(input.FileContent)
	if err != nil {
		h.Fail(fmt.Errorf("%w: %s: %s", ErrParseFailed, input.Filename, err))
		return Result{}, h.Err()
	}

	lines := loc.NewLineTable(input.FileContent)
	analysis := callable.Enumerate(prog, input.Filename, input.FileContent, lines, comments)
	tr := throws.Collect(analysis)
	ef := effect.Collect(analysis)
	effect.Link(analysis, ef)

	commentsByStart := make(map[int]jsast.Comment, len(comments.All()))
	for _, cm := range comments.All() {
		commentsByStart[cm.Span.Start] = cm
	}
	paramThrows := map[int][]model.ParamThrows{}
	var callbackTypes []model.CallbackType
	for i := range analysis.Callables {
		c := &analysis.Callables[i]
		if !c.HasDoc {
			continue
		}
		cm, ok := commentsByStart[c.DocSpan.Start]
		if !ok {
			continue
		}
		c.Documented = jsdoc.ParseDocBlock(cm.Text).Documented
		if pt := jsdoc.ParseParamThrows(cm.Text); len(pt) > 0 {
			paramThrows[c.ID] = pt
		}
		if cb, ok := jsdoc.ParseCallbackType(cm.Text); ok {
			callbackTypes = append(callbackTypes, cb)
		}
	}

	effect.Solve(analysis, tr, ef)

	tokens := directives.Default().WithExtra(input.IgnoreStatements)
	engine := suppress.New(input.FileContent, comments, tokens)
	claimed := suppress.Apply(engine, analysis, tr, ef)

	cfg := emit.Config{
		Severities: emit.Severities{
			ThrowStatement:      input.ThrowStatement,
			FunctionThrow:       input.FunctionThrow,
			CallToThrow:         input.CallToThrow,
			CallToImportedThrow: input.CallToImportedThrow,
		},
		IncludeTryStatementThrows: input.IncludeTryStatementThrows,
		ReportUnusedSuppression:   input.ReportUnusedSuppression,
	}
	diagnostics := emit.Emit(analysis, tr, ef, cfg)
	if cfg.ReportUnusedSuppression {
		diagnostics = appendUnusedSuppressions(diagnostics, claimed, analysis, tr, cfg)
	}

	fileStableID := bridge.StableID(input.Filename)
	throwIDs, bundles := bridge.Build(fileStableID, analysis, cfg)

	return Result{
		Diagnostics:                    toWire(diagnostics, lines),
		RelativeImports:                relativeImports(prog),
		ThrowIDs:                       throwIDs,
		ImportedIdentifiersDiagnostics: bundles,
		ParamThrows:                    paramThrows,
		CallbackTypes:                  callbackTypes,
		UnresolvedCalls:                unresolvedCalls(ef, lines),
	}, nil
}

// unresolvedCalls lists every non-suppressed call site the linker could
// not resolve to a same-file Callable — the candidates internal/project
// matches against another file's exported ThrowIDs by callee name.
func unresolvedCalls(ef *effect.Result, lines *loc.LineTable) []UnresolvedCall {
	var out []UnresolvedCall
	for _, cs := range ef.CallSites {
		if cs.Suppressed || cs.LinkedCallableID >= 0 || len(cs.ImportedRaises) > 0 {
			continue
		}
		out = append(out, UnresolvedCall{Callee: cs.Callee, Range: lines.Range(loc.Span(cs.Span))})
	}
	return out
}

func appendUnusedSuppressions(diagnostics []model.Diagnostic, claimed []model.Suppression, analysis *callable.Analysis, tr *throws.Result, cfg emit.Config) []model.Diagnostic {
	for _, s := range claimed {
		if s.Scope != model.ScopeFunction || s.TargetCallableID < 0 {
			continue
		}
		c := analysis.Callables[s.TargetCallableID]
		if emit.WouldEmitForCallable(c, tr, cfg) {
			continue
		}
		diagnostics = append(diagnostics, model.Diagnostic{
			Kind:     model.DiagUnusedSuppression,
			Span:     s.Span,
			Severity: model.SeverityWarning,
			Message:  "Suppression pragma \"" + s.Token + "\" did not suppress anything.",
			Code:     "unused-suppression",
		})
	}
	return diagnostics
}

func toWire(diagnostics []model.Diagnostic, lines *loc.LineTable) []WireDiagnostic {
	out := make([]WireDiagnostic, len(diagnostics))
	for i, d := range diagnostics {
		out[i] = WireDiagnostic{
			Message:  d.Message,
			Range:    lines.Range(loc.Span(d.Span)),
			Severity: d.Severity,
			Source:   model.Source,
			Code:     d.Code,
			Data:     d.Data,
		}
	}
	return out
}

func relativeImports(prog *jsast.Program) []string {
	var out []string
	for _, n := range prog.Body {
		decl, ok := n.(jsast.ImportDecl)
		if !ok {
			continue
		}
		if strings.HasPrefix(decl.Specifier, ".") {
			out = append(out, decl.Specifier)
		}
	}
	return out
}
