// Package jsast is the analyzer's own lexical/syntactic front end. The
// spec treats "the parser" as an opaque external collaborator producing an
// AST with byte-offset spans; this package plays that role inside the
// module, built the way the teacher builds its own embedded-script
// scanning in internal/js_scanner — on top of the real tdewolff/parse/v2/js
// token stream, never re-implementing JS lexing from scratch.
//
// The grammar recognized is intentionally narrow: just enough surface to
// find callables, throw/try/catch, calls, instanceof guards, and imports.
// Anything outside that (destructuring patterns, decorators, generics,
// full JSX) is skipped as an opaque balanced span rather than modeled, the
// same way the teacher's own scanners skip markup they don't need to
// understand structurally.
package jsast

import (
	"github.com/tdewolff/parse/v2"
	tdjs "github.com/tdewolff/parse/v2/js"
)

// Kind buckets a raw lexer token into the handful of categories the
// recursive-descent parser actually branches on. Keyword recognition is
// done on token text, not on tdewolff's token-type catalog, so the parser
// never depends on which of the lexer's many keyword token types a given
// reserved word comes back as.
type Kind int

const (
	KindEOF Kind = iota
	KindWhitespace
	KindComment
	KindString
	KindTemplate
	KindNumber
	KindRegExp
	KindWord // identifiers and keywords alike
	KindPunct
)

// Token is one lexical atom with its byte span in the original source.
type Token struct {
	Kind Kind
	Text string
	Span Span
}

// Span is a half-open byte range, duplicated from internal/loc to avoid a
// dependency cycle (loc never needs to know about tokens).
type Span struct{ Start, End int }

// CommentKind distinguishes "// line" from "/* block */" comments, which
// matters for spec.md §4.1 ("// line comments never carry @throws").
type CommentKind int

const (
	CommentLine CommentKind = iota
	CommentBlock
)

// Comment is one scanned comment, line or block.
type Comment struct {
	Kind Kind
	Sub  CommentKind
	Text string // raw text, delimiters stripped
	Span Span
}

// Tokenizer walks source once, left to right, handing back normalized
// Tokens. It tracks the byte offset itself (summing consumed lengths) the
// same way internal/js_scanner.GetObjectKeys drives the raw tdewolff
// lexer: `i += len(value)` after every Next().
type Tokenizer struct {
	src    string
	pos    int
	lexer  *tdjs.Lexer
	prev   Kind
	prevOp bool // true if the previous significant token can end an expression (so "/" means divide)
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{
		src:   src,
		lexer: tdjs.NewLexer(parse.NewInputString(src)),
	}
}

// Next returns the next token, or a KindEOF token once the source is
// exhausted. Comments are returned as tokens too (KindComment); callers
// that don't care about comments skip them explicitly so that the
// suppression engine and doc reconciler, which do care, see every one.
func (t *Tokenizer) Next() Token {
	if t.pos >= len(t.src) {
		return Token{Kind: KindEOF, Span: Span{t.pos, t.pos}}
	}

	// Template literals are scanned by hand against the raw source: the
	// interpolation-depth bookkeeping needed to resume a lexer mid
	// `${...}` isn't worth the risk of mis-driving a contextual lexer
	// state we can't fully observe. Interpolated expressions inside a
	// template are treated as opaque text by this package; the effect on
	// the analyzer is that a throw/call nested inside `${...}` is missed,
	// which is a narrower, explicitly accepted gap.
	if t.src[t.pos] == '`' {
		start := t.pos
		end := scanTemplate(t.src, t.pos)
		t.pos = end
		t.prevOp = true
		t.prev = KindTemplate
		return Token{Kind: KindTemplate, Text: t.src[start:end], Span: Span{start, end}}
	}

	startPos := t.pos
	tt, value := t.lexer.Next()
	t.pos += len(value)

	switch {
	case tt == tdjs.ErrorToken:
		return Token{Kind: KindEOF, Span: Span{startPos, t.pos}}

	case tt == tdjs.WhitespaceToken || tt == tdjs.LineTerminatorToken || isAllBlank(value):
		return Token{Kind: KindWhitespace, Text: string(value), Span: Span{startPos, t.pos}}

	case tt == tdjs.CommentToken || tt == tdjs.CommentLineTerminatorToken:
		t.prevOp = false
		return Token{Kind: KindComment, Text: string(value), Span: Span{startPos, t.pos}}

	case tt == tdjs.StringToken:
		t.prevOp = true
		t.prev = KindString
		return Token{Kind: KindString, Text: string(value), Span: Span{startPos, t.pos}}

	case (tt == tdjs.DivToken || tt == tdjs.DivEqToken) && !t.prevOp:
		// A "/" in a position that cannot close an expression starts a
		// regular expression literal, exactly the disambiguation the
		// teacher's own js_scanner.GetObjectKeys performs.
		_, reValue := t.lexer.RegExp()
		t.pos = startPos + len(reValue)
		t.prevOp = true
		t.prev = KindRegExp
		return Token{Kind: KindRegExp, Text: string(reValue), Span: Span{startPos, t.pos}}

	case tdjs.IsPunctuator(tt):
		t.prevOp = punctuatorCanPrecedeRegex(string(value))
		t.prev = KindPunct
		return Token{Kind: KindPunct, Text: string(value), Span: Span{startPos, t.pos}}

	case len(value) > 0 && isDigitByte(value[0]):
		t.prevOp = true
		t.prev = KindNumber
		return Token{Kind: KindNumber, Text: string(value), Span: Span{startPos, t.pos}}

	case len(value) > 0 && tdjs.IsIdentifierStart(value[:1]):
		t.prevOp = !isKeywordThatCannotEndExpr(string(value))
		t.prev = KindWord
		return Token{Kind: KindWord, Text: string(value), Span: Span{startPos, t.pos}}

	default:
		// Anything the classification above didn't claim (private
		// identifiers, stray bytes) is carried through as punctuation
		// text so the parser can still skip it without losing sync.
		t.prevOp = false
		t.prev = KindPunct
		return Token{Kind: KindPunct, Text: string(value), Span: Span{startPos, t.pos}}
	}
}

func isAllBlank(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\r' && c != '\n' && c != '\f' && c != '\v' {
			return false
		}
	}
	return true
}

func isDigitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

// punctuatorCanPrecedeRegex reports whether a "/" immediately following
// this punctuator text should be read as division (true) rather than the
// start of a regular expression (false handled by caller's !t.prevOp).
func punctuatorCanPrecedeRegex(p string) bool {
	switch p {
	case ")", "]":
		return true // `(a+b)/2`, `arr[0]/2`
	default:
		return false
	}
}

// isKeywordThatCannotEndExpr reports whether this keyword text means the
// following "/" cannot be division, e.g. `return /foo/`.
func isKeywordThatCannotEndExpr(word string) bool {
	switch word {
	case "this", "super", "true", "false", "null", "undefined":
		return false
	default:
		return isKeyword(word)
	}
}

var keywords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "export": true, "extends": true, "finally": true,
	"for": true, "function": true, "if": true, "import": true, "in": true,
	"instanceof": true, "new": true, "return": true, "super": true,
	"switch": true, "this": true, "throw": true, "try": true, "typeof": true,
	"var": true, "void": true, "while": true, "with": true, "yield": true,
	"let": true, "static": true, "async": true, "await": true, "get": true,
	"set": true, "of": true, "as": true, "from": true, "interface": true,
	"type": true, "enum": true, "namespace": true, "declare": true,
	"implements": true, "private": true, "protected": true, "public": true,
	"readonly": true, "abstract": true,
}

func isKeyword(word string) bool {
	return keywords[word]
}

// scanTemplate finds the exclusive end offset of a template literal
// beginning at start (src[start] == '`'), respecting backslash escapes
// and nested `${ ... }` brace depth so a `}` inside an interpolated
// object literal doesn't end the template early.
func scanTemplate(src string, start int) int {
	i := start + 1
	depth := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\\':
			i += 2
			continue
		case depth == 0 && c == '`':
			return i + 1
		case depth == 0 && c == '$' && i+1 < len(src) && src[i+1] == '{':
			depth = 1
			i += 2
			continue
		case depth > 0 && c == '{':
			depth++
		case depth > 0 && c == '}':
			depth--
		}
		i++
	}
	return len(src)
}
