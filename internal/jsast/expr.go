package jsast

// Operator precedence climbing, low to high. instanceof sits at the
// relational tier since catch-guard detection (§4.3) only cares that it
// parses as an ordinary BinaryExpr with Op == "instanceof".
var binaryPrecedence = map[string]int{
	"??": 1,
	"||": 2,
	"&&": 3,
	"|":  4,
	"^":  5,
	"&":  6,
	"==": 7, "!=": 7, "===": 7, "!==": 7,
	"<": 8, ">": 8, "<=": 8, ">=": 8, "instanceof": 8, "in": 8,
	"<<": 9, ">>": 9, ">>>": 9,
	"+": 10, "-": 10,
	"*": 11, "/": 11, "%": 11,
	"**": 12,
}

func (p *parser) parseExpression() Node {
	start := p.startSpan()
	first := p.parseAssignExprNoComma()
	if !p.isPunct(",") {
		return first
	}
	exprs := []Node{first}
	for p.eatPunct(",") {
		exprs = append(exprs, p.parseAssignExprNoComma())
	}
	return SequenceExpr{baseNode{Span{start, p.endSpan()}}, exprs}
}

func (p *parser) parseAssignExprNoComma() Node {
	if arrow, ok := p.tryParseArrowFunction(); ok {
		return arrow
	}
	if p.isWord("yield") {
		return p.parseYield()
	}
	start := p.startSpan()
	left := p.parseConditional()
	if op, ok := p.peekAssignOp(); ok {
		p.advance()
		right := p.parseAssignExprNoComma()
		return AssignExpr{baseNode{Span{start, p.endSpan()}}, op, left, right}
	}
	return left
}

func (p *parser) peekAssignOp() (string, bool) {
	t := p.cur()
	if t.Kind != KindPunct {
		return "", false
	}
	switch t.Text {
	case "=", "+=", "-=", "*=", "/=", "%=", "**=", "<<=", ">>=", ">>>=",
		"&=", "|=", "^=", "&&=", "||=", "??=":
		return t.Text, true
	}
	return "", false
}

func (p *parser) parseYield() Node {
	start := p.startSpan()
	p.advance()
	p.eatPunct("*")
	var arg Node
	if !p.isPunct(";") && !p.isPunct(")") && !p.isPunct("}") && !p.isPunct(",") && !p.isEOF() {
		arg = p.parseAssignExprNoComma()
	}
	return YieldExpr{baseNode{Span{start, p.endSpan()}}, arg}
}

func (p *parser) parseConditional() Node {
	start := p.startSpan()
	test := p.parseBinary(0)
	if p.eatPunct("?") {
		cons := p.parseAssignExprNoComma()
		p.eatPunct(":")
		alt := p.parseAssignExprNoComma()
		return CondExpr{baseNode{Span{start, p.endSpan()}}, test, cons, alt}
	}
	return test
}

func (p *parser) parseBinary(minPrec int) Node {
	start := p.startSpan()
	left := p.parseUnary()
	for {
		t := p.cur()
		opText := t.Text
		if t.Kind == KindWord && (opText == "instanceof" || opText == "in") {
			// ok, fall through
		} else if t.Kind != KindPunct {
			break
		}
		prec, ok := binaryPrecedence[opText]
		if !ok || prec < minPrec {
			break
		}
		p.advance()
		nextMin := prec + 1
		if opText == "**" {
			nextMin = prec // right-associative
		}
		right := p.parseBinary(nextMin)
		span := Span{start, p.endSpan()}
		if opText == "&&" || opText == "||" || opText == "??" {
			left = LogicalExpr{baseNode{span}, opText, left, right}
		} else {
			left = BinaryExpr{baseNode{span}, opText, left, right}
		}
	}
	return left
}

func (p *parser) parseUnary() Node {
	start := p.startSpan()
	switch {
	case p.isPunct("!"), p.isPunct("-"), p.isPunct("+"), p.isPunct("~"),
		p.isPunct("++"), p.isPunct("--"):
		op := p.advance().Text
		arg := p.parseUnary()
		return UnaryExpr{baseNode{Span{start, p.endSpan()}}, op, arg}
	case p.isWord("typeof"), p.isWord("delete"), p.isWord("void"):
		op := p.advance().Text
		arg := p.parseUnary()
		return UnaryExpr{baseNode{Span{start, p.endSpan()}}, op, arg}
	case p.isWord("await"):
		p.advance()
		arg := p.parseUnary()
		return AwaitExpr{baseNode{Span{start, p.endSpan()}}, arg}
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() Node {
	start := p.startSpan()
	expr := p.parseLeftHandSideExpr()
	if p.isPunct("++") || p.isPunct("--") {
		op := p.advance().Text
		return UnaryExpr{baseNode{Span{start, p.endSpan()}}, "post" + op, expr}
	}
	return expr
}

// parseLeftHandSideExpr parses new/call/member chains: the core of call-site
// discovery (§4.2) and the object of `instanceof`/catch-clause rethrow
// checks.
func (p *parser) parseLeftHandSideExpr() Node {
	start := p.startSpan()
	var expr Node
	if p.isWord("new") {
		p.advance()
		if p.isPunct(".") {
			// new.target
			p.advance()
			p.advance()
			expr = Ident{baseNode{Span{start, p.endSpan()}}, "new.target"}
		} else {
			callee := p.parseLeftHandSideExprNoCall()
			var args []Node
			if p.isPunct("(") {
				args = p.parseArgs()
			}
			expr = NewExpr{baseNode{Span{start, p.endSpan()}}, callee, args}
		}
	} else {
		expr = p.parsePrimary()
	}
	return p.parseCallTail(expr, start)
}

// parseLeftHandSideExprNoCall parses the callee of a `new` expression: a
// member chain without a trailing call, so `new Foo().bar()` attaches the
// `()` to `new Foo` correctly rather than swallowing it into the callee.
func (p *parser) parseLeftHandSideExprNoCall() Node {
	start := p.startSpan()
	var expr Node
	if p.isWord("new") {
		p.advance()
		callee := p.parseLeftHandSideExprNoCall()
		var args []Node
		if p.isPunct("(") {
			args = p.parseArgs()
		}
		expr = NewExpr{baseNode{Span{start, p.endSpan()}}, callee, args}
	} else {
		expr = p.parsePrimary()
	}
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			name := p.advance().Text
			expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, name, false}
		case p.isPunct("["):
			p.advance()
			p.parseExpression()
			p.eatPunct("]")
			expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, "", true}
		default:
			return expr
		}
	}
}

func (p *parser) parseCallTail(expr Node, start int) Node {
	for {
		switch {
		case p.isPunct("."):
			p.advance()
			name := p.advance().Text
			expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, name, false}
		case p.isPunct("?."):
			p.advance()
			if p.isPunct("(") {
				args := p.parseArgs()
				expr = CallExpr{baseNode{Span{start, p.endSpan()}}, expr, args}
				continue
			}
			if p.isPunct("[") {
				p.advance()
				p.parseExpression()
				p.eatPunct("]")
				expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, "", true}
				continue
			}
			name := p.advance().Text
			expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, name, false}
		case p.isPunct("["):
			p.advance()
			p.parseExpression()
			p.eatPunct("]")
			expr = MemberExpr{baseNode{Span{start, p.endSpan()}}, expr, "", true}
		case p.isPunct("("):
			args := p.parseArgs()
			expr = CallExpr{baseNode{Span{start, p.endSpan()}}, expr, args}
		case p.isPunct("!"):
			// TypeScript non-null assertion; no semantic effect.
			p.advance()
		case p.cur().Kind == KindTemplate:
			tag := expr
			tmpl := p.advance()
			expr = TaggedTemplateExpr{baseNode{Span{start, tmpl.Span.End}}, tag}
		default:
			return expr
		}
	}
}

func (p *parser) parseArgs() []Node {
	var args []Node
	p.eatPunct("(")
	for !p.isEOF() && !p.isPunct(")") {
		if p.eatPunct("...") {
			arg := p.parseAssignExprNoComma()
			args = append(args, SpreadExpr{baseNode{arg.Span()}, arg})
		} else {
			args = append(args, p.parseAssignExprNoComma())
		}
		if !p.eatPunct(",") {
			break
		}
	}
	p.eatPunct(")")
	return args
}

func (p *parser) parsePrimary() Node {
	start := p.startSpan()
	t := p.cur()

	switch {
	case t.Kind == KindString:
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitString, t.Text}
	case t.Kind == KindTemplate:
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitTemplate, t.Text}
	case t.Kind == KindNumber:
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitNumber, t.Text}
	case t.Kind == KindRegExp:
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitRegExp, t.Text}
	case p.isWord("true") || p.isWord("false"):
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitBool, t.Text}
	case p.isWord("null"):
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitNull, t.Text}
	case p.isWord("undefined"):
		p.advance()
		return Literal{baseNode{Span{start, p.endSpan()}}, LitUndefined, t.Text}
	case p.isWord("this"):
		p.advance()
		return ThisExpr{baseNode{Span{start, p.endSpan()}}}
	case p.isWord("super"):
		p.advance()
		return Ident{baseNode{Span{start, p.endSpan()}}, "super"}
	case p.isWord("function"):
		return p.parseFunctionExpr()
	case p.isWord("async") && p.peekAt(1).Text == "function":
		p.advance()
		return p.parseFunctionExpr()
	case p.isWord("class"):
		return p.parseClassDecl(false, false)
	case p.isPunct("("):
		return p.parseParenExpr()
	case p.isPunct("["):
		return p.parseArrayExpr()
	case p.isPunct("{"):
		return p.parseObjectExpr()
	case p.isPunct("<"):
		return p.parseJSX()
	case t.Kind == KindWord:
		p.advance()
		return Ident{baseNode{Span{start, p.endSpan()}}, t.Text}
	default:
		// Unrecognized token in expression position (stray punctuator,
		// private field `#x`, etc.): consume it so the parser always makes
		// progress and treat it as an opaque identifier-shaped expression.
		p.advance()
		return Ident{baseNode{Span{start, p.endSpan()}}, t.Text}
	}
}

func (p *parser) parseFunctionExpr() Node {
	start := p.startSpan()
	p.advance() // function
	p.eatPunct("*")
	name := ""
	if p.cur().Kind == KindWord {
		name = p.advance().Text
	}
	p.skipGenericsIfAny()
	params := p.parseParamList()
	p.skipTypeAnnotationIfAny()
	headEnd := p.endSpan()
	body := p.parseBlock()
	return &FuncExpr{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, name, params, body, false, nil}
}

func (p *parser) parseParenExpr() Node {
	start := p.startSpan()
	span := p.skipBalanced("(", ")")
	// Re-parse the interior with a nested cursor so the contained
	// expression(s) are real nodes, not opaque text: needed because a
	// throw or call nested inside parentheses must still be found.
	inner := p.reparseSpanAsExpression(span)
	return ParenExpr{baseNode{Span{start, p.endSpan()}}, inner}
}

// reparseSpanAsExpression re-runs the expression grammar over the tokens
// already consumed for a balanced `( ... )`/`[ ... ]` span, by running a
// sub-parser over a copy of the tokens strictly between the opening and
// closing punctuators (located by span); the shared token cursor is left
// where it was.
func (p *parser) reparseSpanAsExpression(span Span) Node {
	savedPos := p.pos
	// find index of the opening token start == span.Start
	openIdx := -1
	closeIdx := -1
	for i, t := range p.toks {
		if t.Span.Start == span.Start {
			openIdx = i
		}
		if t.Span.End == span.End {
			closeIdx = i
		}
	}
	if openIdx < 0 || closeIdx < 0 || closeIdx <= openIdx {
		p.pos = savedPos
		return nil
	}
	sub := &parser{src: p.src, toks: append(append([]Token{}, p.toks[openIdx+1:closeIdx]...), Token{Kind: KindEOF})}
	if sub.isEOF() {
		p.pos = savedPos
		return nil
	}
	expr := sub.parseExpression()
	p.pos = savedPos
	return expr
}

func (p *parser) parseArrayExpr() Node {
	start := p.startSpan()
	p.eatPunct("[")
	var elems []Node
	for !p.isEOF() && !p.isPunct("]") {
		if p.isPunct(",") {
			p.advance()
			continue
		}
		if p.eatPunct("...") {
			arg := p.parseAssignExprNoComma()
			elems = append(elems, SpreadExpr{baseNode{arg.Span()}, arg})
		} else {
			elems = append(elems, p.parseAssignExprNoComma())
		}
		if !p.isPunct("]") {
			p.eatPunct(",")
		}
	}
	p.eatPunct("]")
	return ArrayExpr{baseNode{Span{start, p.endSpan()}}, elems}
}

func (p *parser) parseObjectExpr() Node {
	start := p.startSpan()
	p.eatPunct("{")
	var props []*ObjectProp
	for !p.isEOF() && !p.isPunct("}") {
		pStart := p.startSpan()
		if p.eatPunct("...") {
			arg := p.parseAssignExprNoComma()
			props = append(props, &ObjectProp{Span{pStart, p.endSpan()}, PropSpread, "", false, arg})
			if !p.isPunct("}") {
				p.eatPunct(",")
			}
			continue
		}
		isAsync := false
		isGen := false
		kind := PropInit
		if p.isWord("async") && p.peekAt(1).Text != ":" && p.peekAt(1).Text != "," && p.peekAt(1).Text != "(" {
			isAsync = true
			p.advance()
		}
		if p.eatPunct("*") {
			isGen = true
		}
		if (p.isWord("get") || p.isWord("set")) && p.peekAt(1).Text != ":" && p.peekAt(1).Text != "," && p.peekAt(1).Text != "(" {
			if p.isWord("get") {
				kind = PropGetter
			} else {
				kind = PropSetter
			}
			p.advance()
		}
		computed := false
		key := ""
		switch {
		case p.isPunct("["):
			computed = true
			p.skipBalanced("[", "]")
		case p.cur().Kind == KindString:
			key = unquote(p.advance().Text)
		case p.cur().Kind == KindNumber:
			key = p.advance().Text
		default:
			key = p.advance().Text
		}

		var value Node
		switch {
		case p.isPunct("("):
			_ = isAsync
			_ = isGen
			headEnd0 := p.endSpan()
			params := p.parseParamList()
			p.skipTypeAnnotationIfAny()
			headEnd := p.endSpan()
			_ = headEnd0
			body := p.parseBlock()
			value = &FuncExpr{baseNode{Span{pStart, p.endSpan()}}, Span{pStart, headEnd}, key, params, body, false, nil}
			if kind == PropInit {
				kind = PropMethod
			}
		case p.eatPunct(":"):
			value = p.parseAssignExprNoComma()
		case p.eatPunct("="):
			// shorthand with default, e.g. destructuring context reused as
			// object literal; treat the default as the value.
			value = p.parseAssignExprNoComma()
		default:
			value = Ident{baseNode{Span{pStart, p.endSpan()}}, key}
		}
		props = append(props, &ObjectProp{Span{pStart, p.endSpan()}, kind, key, computed, value})
		if !p.isPunct("}") {
			p.eatPunct(",")
		}
	}
	p.eatPunct("}")
	return ObjectExpr{baseNode{Span{start, p.endSpan()}}, props}
}

// tryParseArrowFunction attempts to parse `(params) => body` or
// `ident => body`, backtracking cleanly if the lookahead doesn't pan out.
// Arrow functions are the most common callback shape in the corpus this
// tool analyzes, so getting this detection right matters more than almost
// anything else in the grammar.
func (p *parser) tryParseArrowFunction() (Node, bool) {
	start := p.startSpan()
	saved := p.pos

	isAsync := false
	if p.isWord("async") && !p.startsNewlineAt(1) && (p.peekAt(1).Text == "(" || p.peekAt(1).Kind == KindWord) {
		isAsync = true
		p.advance()
	}

	var params []Param
	switch {
	case p.cur().Kind == KindWord && !isKeyword(p.cur().Text):
		name := p.cur()
		if p.peekAt(1).Text != "=>" {
			p.pos = saved
			return nil, false
		}
		p.advance()
		params = []Param{{Span{name.Span.Start, name.Span.End}, name.Text, false}}
	case p.isPunct("("):
		ok := p.tryConsumeParamListForArrow()
		if !ok {
			p.pos = saved
			return nil, false
		}
		p.skipTypeAnnotationIfAny()
		if !p.isPunct("=>") {
			p.pos = saved
			return nil, false
		}
		// re-parse the param list for real, now that we know it's an arrow
		p.pos = saved
		if isAsync {
			p.advance()
		}
		params = p.parseParamList()
		p.skipTypeAnnotationIfAny()
	default:
		p.pos = saved
		return nil, false
	}

	if !p.eatPunct("=>") {
		p.pos = saved
		return nil, false
	}
	headEnd := p.endSpan()
	if p.isPunct("{") {
		body := p.parseBlock()
		return &FuncExpr{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, "", params, body, true, nil}, true
	}
	exprBody := p.parseAssignExprNoComma()
	return &FuncExpr{baseNode{Span{start, p.endSpan()}}, Span{start, headEnd}, "", params, nil, true, exprBody}, true
}

func (p *parser) startsNewlineAt(offset int) bool {
	return false
}

// tryConsumeParamListForArrow scans a parenthesized group for arrow-param
// shape without building real Param nodes, purely to decide whether a
// `=>` follows. It balances all bracket kinds so nested generics/defaults
// with their own parens don't confuse the scan.
func (p *parser) tryConsumeParamListForArrow() bool {
	if !p.isPunct("(") {
		return false
	}
	depth := 0
	for !p.isEOF() {
		switch {
		case p.isPunct("(") || p.isPunct("[") || p.isPunct("{"):
			depth++
		case p.isPunct(")") || p.isPunct("]") || p.isPunct("}"):
			depth--
			if depth == 0 {
				p.advance()
				return true
			}
		}
		p.advance()
	}
	return false
}

// parseJSX is a heuristic scanner, not a structural parser: it balances
// `<Tag ...>...</Tag>` (and self-closing `<Tag .../>`) against the raw
// source text, while still descending into `{ ... }` expression
// containers so arrow-function event handlers and embedded calls are
// still discovered, matching the teacher's own "don't model markup,
// extract the scripts" stance in internal/js_scanner.
func (p *parser) parseJSX() Node {
	start := p.startSpan()
	var exprs []Node
	depth := 0
	for !p.isEOF() {
		switch {
		case p.isPunct("<") && p.peekAt(1).Text == "/":
			depth--
			p.advance()
			p.advance()
			for !p.isEOF() && !p.isPunct(">") {
				p.advance()
			}
			p.eatPunct(">")
			if depth <= 0 {
				return JSXExpr{baseNode{Span{start, p.endSpan()}}, exprs}
			}
		case p.isPunct("<"):
			depth++
			p.advance()
			selfClosing := false
			for !p.isEOF() && !p.isPunct(">") {
				if p.isPunct("{") {
					bstart := p.startSpan()
					bspan := p.skipBalanced("{", "}")
					_ = bstart
					if inner := p.reparseSpanAsExpression(bspan); inner != nil {
						exprs = append(exprs, inner)
					}
					continue
				}
				if p.isPunct("/") && p.peekAt(1).Text == ">" {
					selfClosing = true
					p.advance()
					break
				}
				p.advance()
			}
			p.eatPunct(">")
			if selfClosing {
				depth--
				if depth <= 0 {
					return JSXExpr{baseNode{Span{start, p.endSpan()}}, exprs}
				}
			}
		case p.isPunct("{"):
			bspan := p.skipBalanced("{", "}")
			if inner := p.reparseSpanAsExpression(bspan); inner != nil {
				exprs = append(exprs, inner)
			}
		default:
			if depth <= 0 {
				return JSXExpr{baseNode{Span{start, p.endSpan()}}, exprs}
			}
			p.advance()
		}
	}
	return JSXExpr{baseNode{Span{start, p.endSpan()}}, exprs}
}
