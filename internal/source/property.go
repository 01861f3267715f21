package source

// declStarters are identifiers that begin a new declaration when seen
// at brace level zero; an initializer expression cannot continue past
// one of these on a fresh line.
var declStarters = map[string]bool{
	"var": true, "let": true, "func": true, "case": true,
	"struct": true, "class": true, "enum": true, "actor": true,
	"extension": true, "protocol": true, "init": true, "deinit": true,
	"subscript": true, "typealias": true, "import": true,
	"static": true, "lazy": true, "weak": true, "unowned": true,
	"public": true, "private": true, "fileprivate": true,
	"internal": true, "open": true, "override": true, "final": true,
	"required": true, "convenience": true, "indirect": true,
	"mutating": true, "nonisolated": true,
}

// parseProperty parses a `var`/`let` declaration and returns one node
// per binding name. A binding is computed when its declaration carries
// a brace block with no `=` initializer, unless the block opens with a
// willSet/didSet observer.
func (p *parser) parseProperty() ([]*Node, error) {
	kw := p.advance() // var | let

	var nodes []*Node
	for {
		t := p.peek()
		if t.kind != tokIdent {
			return nil, p.errf(t.line, "expected name after '"+kw.text+"'")
		}
		name := p.advance()

		stored := true
		if p.isPunct(":") {
			p.advance()
			if err := p.skipType(); err != nil {
				return nil, err
			}
		}
		if p.isPunct("=") {
			p.advance()
			if err := p.skipInitializer(); err != nil {
				return nil, err
			}
		} else if p.isPunct("{") {
			stored = p.accessorBlockIsObserver()
			if err := p.skipBalanced(); err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, &Node{
			Kind:   NodeProperty,
			Name:   name.text,
			Line:   name.line,
			Stored: stored,
		})

		if p.isPunct(",") {
			p.advance()
			continue
		}
		return nodes, nil
	}
}

// accessorBlockIsObserver peeks into the brace block at the cursor and
// reports whether its first identifier is a willSet/didSet observer
// (stored property) rather than an accessor body (computed property).
func (p *parser) accessorBlockIsObserver() bool {
	i := p.pos + 1 // past '{'
	for i < len(p.toks) {
		t := p.toks[i]
		if t.kind == tokPunct && t.text == "@" {
			// Attribute on the accessor; skip it and its name.
			i += 2
			continue
		}
		if t.kind == tokIdent {
			return t.text == "willSet" || t.text == "didSet"
		}
		return false
	}
	return false
}

// skipType consumes a type annotation. Parentheses and brackets are
// balanced; angle brackets open only after an identifier (generic
// application) and `->` never closes one.
func (p *parser) skipType() error {
	angle := 0
	var prev token
	for !p.eof() {
		t := p.peek()
		if t.kind == tokPunct {
			switch t.text {
			case "(":
				if err := p.skipParens(); err != nil {
					return err
				}
				prev = t
				continue
			case "[":
				if err := p.skipBrackets(); err != nil {
					return err
				}
				prev = t
				continue
			case "<":
				if prev.kind == tokIdent {
					angle++
				}
			case ">":
				if angle > 0 && !(prev.kind == tokPunct && prev.text == "-") {
					angle--
				}
			case "=", "{", ",", "}":
				if angle == 0 {
					return nil
				}
			}
		}
		if t.kind == tokIdent && angle == 0 && declStarters[t.text] && prev.line > 0 && t.line > prev.line {
			return nil
		}
		prev = t
		p.advance()
	}
	return nil
}

// skipBrackets consumes a balanced `[ ... ]` group.
func (p *parser) skipBrackets() error {
	open := p.advance() // '['
	depth := 1
	for !p.eof() {
		t := p.advance()
		if t.kind != tokPunct {
			continue
		}
		switch t.text {
		case "[":
			depth++
		case "]":
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return p.errf(open.line, "unterminated bracket")
}

// skipInitializer consumes an initializer expression, including
// trailing-closure braces, stopping when a new declaration or the
// enclosing body's closing brace begins.
func (p *parser) skipInitializer() error {
	var prev token
	for !p.eof() {
		t := p.peek()
		if t.kind == tokPunct {
			switch t.text {
			case "(":
				if err := p.skipParens(); err != nil {
					return err
				}
				prev = t
				continue
			case "[":
				if err := p.skipBrackets(); err != nil {
					return err
				}
				prev = t
				continue
			case "{":
				if err := p.skipBalanced(); err != nil {
					return err
				}
				prev = t
				continue
			case "}", ",":
				return nil
			}
		}
		if t.kind == tokIdent && prev.line > 0 && t.line > prev.line {
			// A fresh line starting with a declaration keyword ends
			// the expression; anything else is a continuation.
			if declStarters[t.text] {
				return nil
			}
		}
		if t.kind == tokPunct && t.text == "@" && prev.line > 0 && t.line > prev.line {
			return nil
		}
		prev = t
		p.advance()
	}
	return nil
}

// parseCaseList parses `case a, b(Payload), c = "raw"` and returns one
// node per case name.
func (p *parser) parseCaseList() ([]*Node, error) {
	kw := p.advance() // case

	var nodes []*Node
	for {
		t := p.peek()
		if t.kind != tokIdent {
			return nil, p.errf(kw.line, "expected case name")
		}
		name := p.advance()

		if p.isPunct("(") {
			if err := p.skipParens(); err != nil {
				return nil, err
			}
		}
		if p.isPunct("=") {
			p.advance()
			if err := p.skipRawValue(); err != nil {
				return nil, err
			}
		}

		nodes = append(nodes, &Node{
			Kind: NodeCase,
			Name: name.text,
			Line: name.line,
		})

		if p.isPunct(",") {
			p.advance()
			continue
		}
		return nodes, nil
	}
}

// skipRawValue consumes a raw-value literal (string, number, bool, or
// a negated number).
func (p *parser) skipRawValue() error {
	t := p.peek()
	if t.kind == tokPunct && t.text == "-" {
		p.advance()
		t = p.peek()
	}
	if p.eof() {
		return p.errf(t.line, "expected raw value after '='")
	}
	p.advance()
	return nil
}
