package source

type parser struct {
	path string
	toks []token
	pos  int
}

func (p *parser) errf(line int, msg string) error {
	return &ParseError{Path: p.path, Line: line, Msg: msg}
}

func (p *parser) eof() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() token {
	if p.eof() {
		return token{}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

func (p *parser) lastLine() int {
	if len(p.toks) == 0 {
		return 1
	}
	return p.toks[len(p.toks)-1].line
}

// isPunct reports whether the current token is the given punctuation.
func (p *parser) isPunct(s string) bool {
	t := p.peek()
	return t.kind == tokPunct && t.text == s
}

// isKeyword reports whether the current token is the given identifier.
// Backtick-escaped identifiers never reach here as keywords because
// the lexer strips the backticks but our callers only consult raw
// declaration positions, where escaping is not legal anyway.
func (p *parser) isKeyword(s string) bool {
	t := p.peek()
	return t.kind == tokIdent && t.text == s
}

var typeKeywords = map[string]NodeKind{
	"struct":    NodeStruct,
	"class":     NodeClass,
	"enum":      NodeEnum,
	"actor":     NodeActor,
	"extension": NodeExtension,
	"protocol":  NodeProtocol,
}

// parseDecls parses declarations until the closing brace of the
// enclosing body (or end of input at the top level). enclosing is the
// kind of the surrounding type declaration, or -1 at file scope.
func (p *parser) parseDecls(depth int) ([]*Node, error) {
	return p.parseBody(-1, depth, false)
}

func (p *parser) parseBody(enclosing NodeKind, depth int, untilBrace bool) ([]*Node, error) {
	var nodes []*Node

	for !p.eof() {
		t := p.peek()

		if t.kind == tokPunct {
			switch t.text {
			case "}":
				if untilBrace {
					p.advance()
					return nodes, nil
				}
				return nil, p.errf(t.line, "unexpected '}'")
			case "{":
				// Stray block (e.g. a top-level closure). Balance it.
				if err := p.skipBalanced(); err != nil {
					return nil, err
				}
				continue
			default:
				p.advance()
				continue
			}
		}

		if t.kind != tokIdent {
			p.advance()
			continue
		}

		if kind, ok := typeKeywords[t.text]; ok {
			n, err := p.parseTypeDecl(kind, depth)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, n)
			continue
		}

		switch t.text {
		case "var", "let":
			props, err := p.parseProperty()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, props...)
		case "case":
			if enclosing != NodeEnum {
				return nil, p.errf(t.line, "'case' outside enum declaration")
			}
			cases, err := p.parseCaseList()
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, cases...)
		case "func", "init", "deinit", "subscript":
			if err := p.skipFunc(); err != nil {
				return nil, err
			}
		default:
			// Modifier, attribute name, typealias target, import path
			// and so on. Not a declaration we model.
			p.advance()
		}
	}

	if untilBrace {
		return nil, p.errf(p.lastLine(), "unexpected end of file: missing '}'")
	}
	return nodes, nil
}

// parseTypeDecl parses `struct Name<...>: A, B { ... }` and friends.
func (p *parser) parseTypeDecl(kind NodeKind, depth int) (*Node, error) {
	kw := p.advance()

	name, err := p.parseTypeName(kw.line, kw.text)
	if err != nil {
		return nil, err
	}

	if p.isPunct("<") {
		if err := p.skipGenericClause(); err != nil {
			return nil, err
		}
	}

	var inherits []string
	if p.isPunct(":") {
		p.advance()
		inherits, err = p.parseInheritanceClause(kw.line)
		if err != nil {
			return nil, err
		}
	}

	// Skip a trailing `where` clause on extensions and generics.
	for !p.eof() && !p.isPunct("{") {
		if t := p.peek(); t.kind == tokPunct && t.text == "}" {
			return nil, p.errf(t.line, "expected '{' in "+kw.text+" declaration")
		}
		p.advance()
	}
	if p.eof() {
		return nil, p.errf(kw.line, "expected '{' in "+kw.text+" declaration")
	}
	p.advance() // '{'

	children, err := p.parseBody(kind, depth+1, true)
	if err != nil {
		return nil, err
	}

	return &Node{
		Kind:     kind,
		Name:     name,
		Line:     kw.line,
		Inherits: inherits,
		Children: children,
	}, nil
}

// parseTypeName reads the declared name, which for extensions may be a
// dotted path (`extension Foo.Bar`). The last path component names the
// node.
func (p *parser) parseTypeName(line int, kw string) (string, error) {
	t := p.peek()
	if t.kind != tokIdent {
		return "", p.errf(line, "expected name after '"+kw+"'")
	}
	name := p.advance().text
	for p.isPunct(".") {
		p.advance()
		t = p.peek()
		if t.kind != tokIdent {
			return "", p.errf(t.line, "expected identifier after '.'")
		}
		name = p.advance().text
	}
	return name, nil
}

// parseInheritanceClause reads the comma-separated conformance list.
// Generic arguments on an entry (`Identifiable<ID>`) are skipped; the
// base identifier is what rules match against.
func (p *parser) parseInheritanceClause(line int) ([]string, error) {
	var inherits []string
	for {
		t := p.peek()
		if t.kind != tokIdent {
			return nil, p.errf(t.line, "expected identifier in inheritance clause")
		}
		name := p.advance().text
		for p.isPunct(".") {
			p.advance()
			t = p.peek()
			if t.kind != tokIdent {
				return nil, p.errf(t.line, "expected identifier after '.'")
			}
			name = p.advance().text
		}
		if p.isPunct("<") {
			if err := p.skipGenericClause(); err != nil {
				return nil, err
			}
		}
		inherits = append(inherits, name)
		if p.isPunct(",") {
			p.advance()
			continue
		}
		return inherits, nil
	}
}

// skipGenericClause consumes a balanced `<...>` clause.
func (p *parser) skipGenericClause() error {
	open := p.advance() // '<'
	depth := 1
	for !p.eof() {
		t := p.peek()
		if t.kind == tokPunct {
			switch t.text {
			case "<":
				depth++
			case ">":
				depth--
				if depth == 0 {
					p.advance()
					return nil
				}
			case "{", "}":
				// A brace inside a generic clause means we ran past
				// the declaration; treat as malformed.
				return p.errf(t.line, "unbalanced generic clause")
			}
		}
		p.advance()
	}
	return p.errf(open.line, "unterminated generic clause")
}

// skipBalanced consumes a `{ ... }` block, tracking nesting.
func (p *parser) skipBalanced() error {
	open := p.advance() // '{'
	depth := 1
	for !p.eof() {
		t := p.advance()
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return p.errf(open.line, "unexpected end of file: missing '}'")
}

// skipFunc consumes a func/init/deinit/subscript declaration. Bodies
// are skipped wholesale; protocol requirements have no body, so we
// stop at whatever starts the next declaration.
func (p *parser) skipFunc() error {
	p.advance() // keyword
	for !p.eof() {
		t := p.peek()
		if t.kind == tokPunct {
			switch t.text {
			case "{":
				return p.skipBalanced()
			case "}":
				return nil // bodiless requirement; '}' belongs to the enclosing type
			case "(":
				if err := p.skipParens(); err != nil {
					return err
				}
				continue
			case "<":
				if err := p.skipGenericClause(); err != nil {
					return err
				}
				continue
			}
		}
		if t.kind == tokIdent {
			if _, isType := typeKeywords[t.text]; isType {
				return nil
			}
			switch t.text {
			case "var", "let", "case", "func", "init", "deinit", "subscript":
				return nil
			}
		}
		p.advance()
	}
	return nil
}

// skipParens consumes a balanced `( ... )` group.
func (p *parser) skipParens() error {
	open := p.advance() // '('
	depth := 1
	for !p.eof() {
		t := p.advance()
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return nil
			}
		case "{":
			// Closure argument: balance it inline.
			depth2 := 1
			for !p.eof() && depth2 > 0 {
				tt := p.advance()
				if tt.kind == tokPunct {
					if tt.text == "{" {
						depth2++
					} else if tt.text == "}" {
						depth2--
					}
				}
			}
		}
	}
	return p.errf(open.line, "unterminated parenthesis")
}
