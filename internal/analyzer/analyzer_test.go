package analyzer

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/does-it-throw/analyzer/internal/analyzer/model"
)

func defaultInput(filename, content string) Input {
	return Input{
		FileContent:         content,
		Filename:            filename,
		ThrowStatement:      model.SeverityError,
		FunctionThrow:       model.SeverityWarning,
		CallToThrow:         model.SeverityWarning,
		CallToImportedThrow: model.SeverityHint,
	}
}

func messages(res Result) []string {
	out := make([]string, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		out[i] = d.Message
	}
	return out
}

func containsSubstring(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}
	return false
}

func TestAnalyzeBareThrowStatementReported(t *testing.T) {
	src := "function f() {\n  throw new Error('boom');\n}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "Function f may throw"))
	assert.Assert(t, containsSubstring(messages(res), "Throw statement."))
}

func TestAnalyzeDocumentedThrowSuppressesMismatch(t *testing.T) {
	src := "" +
		"/**\n" +
		" * @throws {RangeError}\n" +
		" */\n" +
		"function f() {\n" +
		"  throw new RangeError('boom');\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, len(res.Diagnostics) == 0)
}

func TestAnalyzeUndocumentedKindStillReported(t *testing.T) {
	src := "" +
		"/**\n" +
		" * @throws {RangeError}\n" +
		" */\n" +
		"function f() {\n" +
		"  throw new TypeError('boom');\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "JSDoc defines RangeError, but not TypeError"))
}

func TestAnalyzeCallPropagatesCalleeThrow(t *testing.T) {
	src := "" +
		"function risky() {\n" +
		"  throw new Error('boom');\n" +
		"}\n" +
		"function caller() {\n" +
		"  risky();\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "Function caller may throw"))
	assert.Assert(t, containsSubstring(messages(res), "Function call may throw"))
}

func TestAnalyzeCallMayThrowListsFullCalleeSetWhenPartiallyDocumented(t *testing.T) {
	src := "" +
		"function risky() {\n" +
		"  if (x) {\n" +
		"    throw new TypeError('a');\n" +
		"  } else {\n" +
		"    throw new RangeError('b');\n" +
		"  }\n" +
		"}\n" +
		"/**\n" +
		" * @throws {TypeError}\n" +
		" */\n" +
		"function caller() {\n" +
		"  risky();\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "Function call may throw: {TypeError, RangeError}."))
}

func TestAnalyzeCallMayThrowSuppressedWhenFullyDocumented(t *testing.T) {
	src := "" +
		"function risky() {\n" +
		"  if (x) {\n" +
		"    throw new TypeError('a');\n" +
		"  } else {\n" +
		"    throw new RangeError('b');\n" +
		"  }\n" +
		"}\n" +
		"/**\n" +
		" * @throws {TypeError, RangeError}\n" +
		" */\n" +
		"function caller() {\n" +
		"  risky();\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, !containsSubstring(messages(res), "Function call may throw"))
}

func TestAnalyzeCaughtErrorNotPropagated(t *testing.T) {
	src := "" +
		"function risky() {\n" +
		"  throw new Error('boom');\n" +
		"}\n" +
		"function caller() {\n" +
		"  try {\n" +
		"    risky();\n" +
		"  } catch (e) {\n" +
		"    console.log(e);\n" +
		"  }\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, !containsSubstring(messages(res), "Function caller may throw"))
}

func TestAnalyzeNarrowedCatchLeavesUnhandledKindsReported(t *testing.T) {
	src := "" +
		"function caller() {\n" +
		"  try {\n" +
		"    throw new TypeError('boom');\n" +
		"  } catch (e) {\n" +
		"    if (e instanceof RangeError) {\n" +
		"      console.log('range');\n" +
		"    }\n" +
		"  }\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "Exhaustive catch is missing handlers for"))
	assert.Assert(t, !containsSubstring(messages(res), "Function caller may throw"))
}

func TestAnalyzeSuppressedFunctionProducesNoDiagnostics(t *testing.T) {
	src := "" +
		"// @it-throws\n" +
		"function f() {\n" +
		"  throw new Error('boom');\n" +
		"}\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, len(res.Diagnostics) == 0)
}

func TestAnalyzeUnusedSuppressionReportedWhenRequested(t *testing.T) {
	src := "" +
		"// @it-throws\n" +
		"function f() {\n" +
		"  return 1;\n" +
		"}\n"
	input := defaultInput("a.js", src)
	input.ReportUnusedSuppression = true
	res, err := Analyze(input)
	assert.NilError(t, err)
	assert.Assert(t, containsSubstring(messages(res), "did not suppress anything"))
}

func TestAnalyzeRelativeImportsCollected(t *testing.T) {
	src := "import { helper } from './util';\nfunction f() { helper(); }\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	assert.Assert(t, len(res.RelativeImports) == 1)
	assert.Equal(t, res.RelativeImports[0], "./util")
}

func TestAnalyzeUnresolvedCallExposedForCrossFileLinking(t *testing.T) {
	src := "import { helper } from './util';\nfunction f() { helper(); }\n"
	res, err := Analyze(defaultInput("a.js", src))
	assert.NilError(t, err)
	found := false
	for _, uc := range res.UnresolvedCalls {
		if uc.Callee == "helper" {
			found = true
		}
	}
	assert.Assert(t, found, "a call to an identifier with no local definition must surface as unresolved")
}
