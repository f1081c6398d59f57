package jsast

import (
	"fmt"
	"strings"
)

// ParseError is returned when the tokenizer cannot make any forward
// progress at all — the one fatal outcome spec.md §7 describes. Anything
// the recursive-descent grammar below doesn't recognize (generics,
// decorators, `interface`, `enum`, full JSX) is skipped as an opaque
// balanced span instead of failing the whole parse, so a single unusual
// construct never takes down the rest of the file's diagnostics.
type ParseError struct {
	Msg string
	Pos int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("does-it-throw: %s (offset %d)", e.Msg, e.Pos)
}

// Parse tokenizes and parses src into a Program plus the comment index
// built alongside it. It is the one opaque-AST-producer spec.md §1 treats
// as an external collaborator, implemented in-house on top of the real
// tdewolff/parse/v2/js token stream (see token.go).
func Parse(src string) (*Program, *CommentIndex, error) {
	tz := NewTokenizer(src)
	var toks []Token
	var comments []Comment

	consecutiveErrors := 0
	for {
		tok := tz.Next()
		switch tok.Kind {
		case KindEOF:
			toks = append(toks, tok)
			goto doneLexing
		case KindWhitespace:
			continue
		case KindComment:
			comments = append(comments, classifyComment(tok))
			continue
		default:
			if tok.Span.End == tok.Span.Start {
				consecutiveErrors++
				if consecutiveErrors > 4 {
					return nil, nil, &ParseError{Msg: "tokenizer made no progress", Pos: tok.Span.Start}
				}
				continue
			}
			consecutiveErrors = 0
			toks = append(toks, tok)
		}
	}
doneLexing:

	if len(strings.TrimSpace(src)) == 0 {
		return &Program{baseNode: baseNode{Span{0, len(src)}}}, NewCommentIndex(comments), nil
	}

	p := &parser{src: src, toks: toks}
	body := p.parseStatementsUntil(func() bool { return p.isEOF() })
	prog := &Program{baseNode: baseNode{Span{0, len(src)}}, Body: body}
	return prog, NewCommentIndex(comments), nil
}

func classifyComment(tok Token) Comment {
	sub := CommentLine
	text := tok.Text
	if strings.HasPrefix(text, "//") {
		sub = CommentLine
		text = strings.TrimPrefix(text, "//")
	} else if strings.HasPrefix(text, "/*") {
		sub = CommentBlock
		text = strings.TrimSuffix(strings.TrimPrefix(text, "/*"), "*/")
	}
	return Comment{Kind: KindComment, Sub: sub, Text: text, Span: tok.Span}
}

// parser walks a pre-tokenized slice with full backtracking, since arrow
// function detection needs unbounded lookahead past a parenthesized
// parameter list.
type parser struct {
	src  string
	toks []Token
	pos  int
}

func (p *parser) isEOF() bool { return p.cur().Kind == KindEOF }

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Kind: KindEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peekAt(offset int) Token {
	i := p.pos + offset
	if i >= len(p.toks) || i < 0 {
		return Token{Kind: KindEOF}
	}
	return p.toks[i]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) is(kind Kind, text string) bool {
	t := p.cur()
	return t.Kind == kind && t.Text == text
}

func (p *parser) isWord(text string) bool  { return p.is(KindWord, text) }
func (p *parser) isPunct(text string) bool { return p.is(KindPunct, text) }

func (p *parser) eatPunct(text string) bool {
	if p.isPunct(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) eatWord(text string) bool {
	if p.isWord(text) {
		p.advance()
		return true
	}
	return false
}

func (p *parser) startSpan() int { return p.cur().Span.Start }

func (p *parser) endSpan() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

// ---- statement dispatch -------------------------------------------------

func (p *parser) parseStatementsUntil(stop func() bool) []Node {
	var out []Node
	for !stop() && !p.isEOF() {
		before := p.pos
		stmt := p.parseStatement()
		if stmt != nil {
			out = append(out, stmt)
		}
		if p.pos == before {
			// Safety valve: nothing consumed any tokens. Force progress
			// so a construct we don't understand can't infinite-loop the
			// parser.
			p.advance()
		}
	}
	return out
}

func (p *parser) parseStatement() Node {
	start := p.startSpan()

	if p.eatPunct(";") {
		return EmptyStmt{baseNode{Span{start, p.endSpan()}}}
	}

	if p.isWord("export") {
		return p.parseExportStatement()
	}

	if p.isWord("import") {
		return p.parseImportDeclaration()
	}

	if p.isPunct("{") {
		return p.parseBlock()
	}

	switch {
	case p.isWord("function"):
		return p.parseFunctionDecl(false, false)
	case p.isWord("async") && p.peekAt(1).Kind == KindWord && p.peekAt(1).Text == "function":
		p.advance()
		return p.parseFunctionDecl(false, false)
	case p.isWord("class"):
		return p.parseClassDecl(false, false)
	case p.isWord("abstract") && p.peekAt(1).Text == "class":
		p.advance()
		return p.parseClassDecl(false, false)
	case p.isWord("const"), p.isWord("let"), p.isWord("var"):
		return p.parseVarDecl(false)
	case p.isWord("if"):
		return p.parseIf()
	case p.isWord("try"):
		return p.parseTry()
	case p.isWord("throw"):
		return p.parseThrow()
	case p.isWord("return"):
		return p.parseReturn()
	case p.isWord("break"), p.isWord("continue"):
		isBreak := p.isWord("break")
		p.advance()
		p.skipToStatementEnd()
		return BreakContinueStmt{baseNode{Span{start, p.endSpan()}}, isBreak}
	case p.isWord("for"), p.isWord("while"):
		return p.parseLoopHeaderThenBody()
	case p.isWord("do"):
		return p.parseDoWhile()
	case p.isWord("switch"):
		return p.parseSwitch()
	case p.isWord("interface"), p.isWord("enum"), p.isWord("namespace"),
		p.isWord("declare"), p.isWord("type"):
		return p.skipTypeOnlyStatement()
	case p.isPunct("@"):
		// Decorator: skip it, let the decorated declaration parse normally.
		p.skipDecorator()
		return p.parseStatement()
	case p.isPunct("<"):
		return p.parseExpressionStatement()
	}

	return p.parseExpressionStatement()
}

func (p *parser) parseExportStatement() Node {
	p.advance() // export
	if p.eatWord("default") {
		switch {
		case p.isWord("function"):
			fn := p.parseFunctionDecl(true, true)
			return fn
		case p.isWord("async") && p.peekAt(1).Text == "function":
			p.advance()
			return p.parseFunctionDecl(true, true)
		case p.isWord("class"):
			return p.parseClassDecl(true, true)
		default:
			// `export default <expr>;`
			start := p.startSpan()
			expr := p.parseExpression()
			p.skipToStatementEnd()
			return ExprStmt{baseNode{Span{start, p.endSpan()}}, expr}
		}
	}
	if p.isPunct("{") || p.isWord("from") || p.isPunct("*") {
		// `export { a, b }` or `export * from '...'`: no new declarations,
		// just skip to the statement end.
		start := p.startSpan()
		p.skipToStatementEnd()
		return EmptyStmt{baseNode{Span{start, p.endSpan()}}}
	}
	switch {
	case p.isWord("function"):
		return p.parseFunctionDecl(true, false)
	case p.isWord("async") && p.peekAt(1).Text == "function":
		p.advance()
		return p.parseFunctionDecl(true, false)
	case p.isWord("class"):
		return p.parseClassDecl(true, false)
	case p.isWord("const"), p.isWord("let"), p.isWord("var"):
		return p.parseVarDecl(true)
	default:
		start := p.startSpan()
		p.skipToStatementEnd()
		return EmptyStmt{baseNode{Span{start, p.endSpan()}}}
	}
}

func (p *parser) parseImportDeclaration() Node {
	start := p.startSpan()
	p.advance() // import
	var specifier string
	for !p.isEOF() && !p.isPunct(";") {
		if p.cur().Kind == KindString {
			specifier = unquote(p.cur().Text)
		}
		p.advance()
		if p.endsStatementHere() {
			break
		}
	}
	p.eatPunct(";")
	return ImportDecl{baseNode{Span{start, p.endSpan()}}, specifier}
}

// endsStatementHere applies ASI when the next token starts on a new
// source line and the token just consumed was a string (the import
// specifier); our grammar only needs this for import specifiers, where it
// prevents swallowing the following statement when a semicolon is omitted.
func (p *parser) endsStatementHere() bool {
	if p.pos == 0 || p.isEOF() {
		return false
	}
	prev := p.toks[p.pos-1]
	if prev.Kind != KindString {
		return false
	}
	return strings.Contains(p.src[prev.Span.End:p.cur().Span.Start], "\n")
}

func unquote(s string) string {
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}

func (p *parser) skipToStatementEnd() {
	depth := 0
	for !p.isEOF() {
		switch {
		case p.isPunct("(") || p.isPunct("[") || p.isPunct("{") || p.isPunct("<"):
			depth++
		case p.isPunct(")") || p.isPunct("]") || p.isPunct("}") || p.isPunct(">"):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && p.isPunct(";"):
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) skipDecorator() {
	p.advance() // @
	// decorator name, possibly a call: @Foo(...) or @a.b.c
	for p.cur().Kind == KindWord {
		p.advance()
		if p.eatPunct(".") {
			continue
		}
		break
	}
	if p.isPunct("(") {
		p.skipBalanced("(", ")")
	}
}

func (p *parser) skipTypeOnlyStatement() Node {
	start := p.startSpan()
	p.advance() // interface/enum/namespace/declare/type
	for !p.isEOF() && !p.isPunct("{") && !p.isPunct(";") {
		p.advance()
	}
	if p.isPunct("{") {
		p.skipBalanced("{", "}")
	} else {
		p.eatPunct(";")
	}
	return EmptyStmt{baseNode{Span{start, p.endSpan()}}}
}

// skipBalanced consumes from an opening punctuator through its matching
// close, inclusive, and returns the span covered. Safe to call only when
// p.cur() is the opening punctuator.
func (p *parser) skipBalanced(open, close string) Span {
	start := p.startSpan()
	depth := 0
	for !p.isEOF() {
		switch {
		case p.isPunct(open):
			depth++
		case p.isPunct(close):
			depth--
			if depth == 0 {
				p.advance()
				return Span{start, p.endSpan()}
			}
		}
		p.advance()
	}
	return Span{start, p.endSpan()}
}

func (p *parser) parseBlock() *BlockStmt {
	start := p.startSpan()
	p.eatPunct("{")
	body := p.parseStatementsUntil(func() bool { return p.isPunct("}") })
	p.eatPunct("}")
	return &BlockStmt{baseNode{Span{start, p.endSpan()}}, body}
}

func (p *parser) parseIf() Node {
	start := p.startSpan()
	p.advance() // if
	p.eatPunct("(")
	test := p.parseExpression()
	p.eatPunct(")")
	cons := p.parseStatement()
	var alt Node
	if p.eatWord("else") {
		alt = p.parseStatement()
	}
	return IfStmt{baseNode{Span{start, p.endSpan()}}, test, cons, alt}
}

func (p *parser) parseTry() Node {
	start := p.startSpan()
	p.advance() // try
	block := p.parseBlock()
	var handler *CatchClause
	var finalizer *BlockStmt
	if p.isWord("catch") {
		hStart := p.startSpan()
		p.advance()
		param := ""
		if p.eatPunct("(") {
			if p.cur().Kind == KindWord {
				param = p.advance().Text
			} else {
				p.skipBalancedFrom() // destructured catch binding
			}
			p.skipTypeAnnotationIfAny()
			p.eatPunct(")")
		}
		headEnd := p.endSpan()
		body := p.parseBlock()
		handler = &CatchClause{baseNode{Span{hStart, body.Span().End}}, Span{hStart, headEnd}, param, body}
	}
	if p.eatWord("finally") {
		finalizer = p.parseBlock()
	}
	return TryStmt{baseNode{Span{start, p.endSpan()}}, block, handler, finalizer}
}

// skipBalancedFrom skips a bracketed/braced pattern starting at the
// current token, used for destructured catch bindings and parameters.
func (p *parser) skipBalancedFrom() {
	if p.isPunct("{") {
		p.skipBalanced("{", "}")
	} else if p.isPunct("[") {
		p.skipBalanced("[", "]")
	} else {
		p.advance()
	}
}

func (p *parser) skipTypeAnnotationIfAny() {
	if !p.isPunct(":") {
		return
	}
	p.advance()
	depth := 0
	for !p.isEOF() {
		switch {
		case p.isPunct("(") || p.isPunct("[") || p.isPunct("{") || p.isPunct("<"):
			depth++
		case p.isPunct(")") || p.isPunct("]") || p.isPunct("}") || p.isPunct(">"):
			if depth == 0 {
				return
			}
			depth--
		case depth == 0 && (p.isPunct(",") || p.isPunct("=") || p.isPunct(")") || p.isPunct(";") || p.isPunct("{")):
			return
		}
		p.advance()
	}
}

func (p *parser) parseThrow() Node {
	start := p.startSpan()
	p.advance() // throw
	arg := p.parseExpression()
	p.eatPunct(";")
	return ThrowStmt{baseNode{Span{start, p.endSpan()}}, arg}
}

func (p *parser) parseReturn() Node {
	start := p.startSpan()
	p.advance() // return
	var arg Node
	if !p.isPunct(";") && !p.isPunct("}") && !p.isEOF() {
		arg = p.parseExpression()
	}
	p.eatPunct(";")
	return ReturnStmt{baseNode{Span{start, p.endSpan()}}, arg}
}

func (p *parser) parseLoopHeaderThenBody() Node {
	start := p.startSpan()
	p.advance() // for | while
	p.eatWord("await")
	if p.isPunct("(") {
		p.skipBalanced("(", ")")
	}
	body := p.parseStatement()
	return OpaqueStmt{baseNode{Span{start, p.endSpan()}}, []Node{body}}
}

func (p *parser) parseDoWhile() Node {
	start := p.startSpan()
	p.advance() // do
	body := p.parseStatement()
	p.eatWord("while")
	if p.isPunct("(") {
		p.skipBalanced("(", ")")
	}
	p.eatPunct(";")
	return OpaqueStmt{baseNode{Span{start, p.endSpan()}}, []Node{body}}
}

func (p *parser) parseSwitch() Node {
	start := p.startSpan()
	p.advance() // switch
	if p.isPunct("(") {
		p.skipBalanced("(", ")")
	}
	var body []Node
	if p.eatPunct("{") {
		for !p.isEOF() && !p.isPunct("}") {
			if p.eatWord("case") {
				p.parseExpression()
				p.eatPunct(":")
			} else if p.eatWord("default") {
				p.eatPunct(":")
			} else {
				stmt := p.parseStatement()
				if stmt != nil {
					body = append(body, stmt)
				}
			}
		}
		p.eatPunct("}")
	}
	return OpaqueStmt{baseNode{Span{start, p.endSpan()}}, body}
}

func (p *parser) parseExpressionStatement() Node {
	start := p.startSpan()
	expr := p.parseExpression()
	p.eatPunct(";")
	return ExprStmt{baseNode{Span{start, p.endSpan()}}, expr}
}

// ---- declarations ---------------------------------------------------------

func (p *parser) parseFunctionDecl(exported, isDefault bool) Node {
	start := p.startSpan()
	p.advance() // function
	p.eatPunct("*")
	name := ""
	if p.cur().Kind == KindWord && !p.isPunct("(") {
		name = p.advance().Text
	}
	p.skipGenericsIfAny()
	headEndBeforeParams := p.endSpan()
	params := p.parseParamList()
	p.skipTypeAnnotationIfAny()
	_ = headEndBeforeParams
	headEnd := p.endSpan()
	var body *BlockStmt
	if p.isPunct("{") {
		body = p.parseBlock()
	} else {
		p.eatPunct(";") // ambient/overload signature with no body
		body = &BlockStmt{baseNode{Span{headEnd, headEnd}}, nil}
	}
	return FuncDecl{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, name, params, body, exported, isDefault}
}

func (p *parser) skipGenericsIfAny() {
	if p.isPunct("<") {
		p.skipBalanced("<", ">")
	}
}

func (p *parser) parseParamList() []Param {
	var params []Param
	if !p.eatPunct("(") {
		return params
	}
	for !p.isEOF() && !p.isPunct(")") {
		p.skipDecoratorsAndModifiers()
		start := p.startSpan()
		destruct := false
		name := ""
		p.eatPunct("...")
		switch {
		case p.isPunct("{") || p.isPunct("["):
			destruct = true
			p.skipBalancedFrom()
		case p.cur().Kind == KindWord:
			name = p.advance().Text
		default:
			p.advance()
		}
		p.eatPunct("?")
		p.skipTypeAnnotationIfAny()
		if p.eatPunct("=") {
			p.parseAssignExprNoComma()
		}
		params = append(params, Param{Span{start, p.endSpan()}, name, destruct})
		if !p.eatPunct(",") {
			break
		}
	}
	p.eatPunct(")")
	return params
}

func (p *parser) skipDecoratorsAndModifiers() {
	for p.isPunct("@") {
		p.skipDecorator()
	}
	for p.isWord("public") || p.isWord("private") || p.isWord("protected") || p.isWord("readonly") {
		p.advance()
	}
}

func (p *parser) parseClassDecl(exported, isDefault bool) Node {
	start := p.startSpan()
	p.advance() // class
	name := ""
	if p.cur().Kind == KindWord && p.cur().Text != "extends" && p.cur().Text != "implements" {
		name = p.advance().Text
	}
	p.skipGenericsIfAny()
	if p.eatWord("extends") {
		p.parseLeftHandSideExpr()
		p.skipGenericsIfAny()
	}
	if p.eatWord("implements") {
		for !p.isEOF() && !p.isPunct("{") {
			p.advance()
		}
	}
	headEnd := p.endSpan()
	var members []*ClassMember
	if p.eatPunct("{") {
		for !p.isEOF() && !p.isPunct("}") {
			if p.eatPunct(";") {
				continue
			}
			m := p.parseClassMember()
			if m != nil {
				members = append(members, m)
			}
		}
		p.eatPunct("}")
	}
	return ClassDecl{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, name, members, exported, isDefault}
}

func (p *parser) parseClassMember() *ClassMember {
	start := p.startSpan()
	for p.isPunct("@") {
		p.skipDecorator()
	}
	static := false
	for {
		switch {
		case p.isWord("static"):
			static = true
			p.advance()
		case p.isWord("public"), p.isWord("private"), p.isWord("protected"),
			p.isWord("readonly"), p.isWord("abstract"), p.isWord("override"):
			p.advance()
		default:
			goto modifiersDone
		}
	}
modifiersDone:

	kind := ClassMethod
	isAsync := false
	if p.isWord("async") && p.peekAt(1).Text != "(" && p.peekAt(1).Text != "=" {
		isAsync = true
		p.advance()
	}
	_ = isAsync
	p.eatPunct("*")
	if p.isWord("get") && !isFollowedByMemberTerminator(p) {
		kind = ClassGetter
		p.advance()
	} else if p.isWord("set") && !isFollowedByMemberTerminator(p) {
		kind = ClassSetter
		p.advance()
	}

	computed := false
	key := ""
	switch {
	case p.isPunct("["):
		computed = true
		p.skipBalanced("[", "]")
	case p.isPunct("#"):
		p.advance()
		key = p.advance().Text
	case p.cur().Kind == KindString:
		key = unquote(p.advance().Text)
	case p.cur().Kind == KindNumber:
		key = p.advance().Text
	default:
		key = p.advance().Text
	}
	if key == "constructor" {
		kind = ClassConstructor
	}
	p.eatPunct("?")
	p.eatPunct("!")
	p.skipGenericsIfAny()

	if p.isPunct("(") {
		headEnd0 := p.endSpan()
		params := p.parseParamList()
		p.skipTypeAnnotationIfAny()
		headEnd := p.endSpan()
		var body *BlockStmt
		if p.isPunct("{") {
			body = p.parseBlock()
		} else {
			p.eatPunct(";")
			body = &BlockStmt{baseNode{Span{headEnd, headEnd}}, nil}
		}
		_ = headEnd0
		fn := &FuncExpr{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, key, params, body, false, nil}
		return &ClassMember{
			baseNode: baseNode{Span{start, p.endSpan()}}, HeadSpan: Span{start, headEnd},
			Kind: kind, Key: key, Computed: computed, Static: static, Value: fn,
		}
	}

	// field declaration: arrow-function initializers are common (React
	// class-component handlers) and must still surface their body for
	// throw/call discovery, so the initializer expression is kept, not
	// discarded.
	kind = ClassField
	p.skipTypeAnnotationIfAny()
	var fieldInit Node
	if p.eatPunct("=") {
		fieldInit = p.parseAssignExprNoComma()
	}
	p.eatPunct(";")
	return &ClassMember{
		baseNode: baseNode{Span{start, p.endSpan()}}, HeadSpan: Span{start, p.endSpan()},
		Kind: kind, Key: key, Computed: computed, Static: static, FieldInit: fieldInit,
	}
}

func isFollowedByMemberTerminator(p *parser) bool {
	n := p.peekAt(1)
	return n.Kind == KindPunct && (n.Text == "(" || n.Text == "=" || n.Text == ";")
}

func (p *parser) parseVarDecl(exported bool) Node {
	start := p.startSpan()
	kind := p.advance().Text // const/let/var
	var decls []Declarator
	for {
		dStart := p.startSpan()
		destruct := false
		name := ""
		if p.isPunct("{") || p.isPunct("[") {
			destruct = true
			p.skipBalancedFrom()
		} else if p.cur().Kind == KindWord {
			name = p.advance().Text
		}
		p.eatPunct("!")
		p.skipTypeAnnotationIfAny()
		var init Node
		if p.eatPunct("=") {
			init = p.parseAssignExprNoComma()
		}
		decls = append(decls, Declarator{Span{dStart, p.endSpan()}, name, destruct, init})
		if !p.eatPunct(",") {
			break
		}
	}
	p.eatPunct(";")
	return VarDecl{baseNode{Span{start, p.endSpan()}}, kind, decls, exported}
}
