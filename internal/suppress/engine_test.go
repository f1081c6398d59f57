package suppress

import (
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/does-it-throw/analyzer/internal/analyzer/model"
	"github.com/does-it-throw/analyzer/internal/jsast"
	"github.com/does-it-throw/analyzer/internal/suppress/directives"
)

// lineComment builds a jsast.Comment the way classifyComment does: Span
// covers the full "//..." token including the delimiter, while Text holds
// only what follows it (untrimmed), so start must be the offset of the
// leading "//" in source, not the offset of the stripped text.
func lineComment(start int, text string) jsast.Comment {
	return jsast.Comment{Sub: jsast.CommentLine, Text: text, Span: jsast.Span{Start: start, End: start + 2 + len(text)}}
}

func TestEngineFileDisableWithinFirstTenLines(t *testing.T) {
	source := "// @it-throws-disable\nfunction f() { throw new Error() }\n"
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws-disable")})
	e := New(source, comments, directives.Default())
	assert.Assert(t, e.FileDisabled)
}

func TestEngineFileDisableOutsideFirstTenLinesDoesNotCount(t *testing.T) {
	prefix := strings.Repeat("\n", 12)
	source := prefix + "// @it-throws-disable\n"
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(len(prefix), " @it-throws-disable")})
	e := New(source, comments, directives.Default())
	assert.Assert(t, !e.FileDisabled)
}

func TestWholeWordDoesNotMatchDisableAsSubstring(t *testing.T) {
	source := "// @it-throws-disable\n"
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws-disable")})
	e := New(source, comments, directives.Default())
	_, ok := e.Proximity(len(source))
	assert.Assert(t, !ok, "a search for the plain @it-throws token must not match @it-throws-disable")
}

func TestFunctionLeadingRequiresTokenAsSoleCommentContent(t *testing.T) {
	source := "// @it-throws\nfunction f() {}\n"
	pos := strings.Index(source, "function")
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws")})
	e := New(source, comments, directives.Default())
	s, ok := e.FunctionLeading(pos)
	assert.Assert(t, ok)
	assert.Equal(t, s.Scope, model.ScopeFunction)
}

func TestFunctionLeadingRejectsTrailingText(t *testing.T) {
	source := "// @it-throws but actually check this\nfunction f() {}\n"
	pos := strings.Index(source, "function")
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws but actually check this")})
	e := New(source, comments, directives.Default())
	_, ok := e.FunctionLeading(pos)
	assert.Assert(t, !ok)
}

func TestProximityMatchesWithinWindowOnly(t *testing.T) {
	lines := []string{"// @it-throws", "", "", "", "", "throw new Error()"}
	source := strings.Join(lines, "\n")
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws")})
	e := New(source, comments, directives.Default())

	throwPos := strings.LastIndex(source, "throw")
	_, ok := e.Proximity(throwPos)
	assert.Assert(t, !ok, "a pragma 5 lines above should fall outside the 3-line proximity window")
}

func TestProximityMatchesWithinWindow(t *testing.T) {
	lines := []string{"// @it-throws", "", "throw new Error()"}
	source := strings.Join(lines, "\n")
	comments := jsast.NewCommentIndex([]jsast.Comment{lineComment(0, " @it-throws")})
	e := New(source, comments, directives.Default())

	throwPos := strings.LastIndex(source, "throw")
	s, ok := e.Proximity(throwPos)
	assert.Assert(t, ok, "a pragma 2 lines above should fall inside the 3-line proximity window")
	assert.Equal(t, s.Scope, model.ScopeProximity)
}
