package source

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokPunct
	tokString
	tokNumber
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lex tokenizes Swift source. Comments are discarded, string literals
// (including multiline, raw and interpolated forms) collapse to a
// single token so that braces inside them never confuse the parser.
func lex(path string, src []byte) ([]token, error) {
	l := &lexer{path: path, src: src, line: 1}
	for l.pos < len(l.src) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.toks, nil
}

type lexer struct {
	path string
	src  []byte
	pos  int
	line int
	toks []token
}

func (l *lexer) errf(line int, msg string) error {
	return &ParseError{Path: l.path, Line: line, Msg: msg}
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func (l *lexer) next() error {
	c := l.peek()

	switch {
	case c == '/' && l.peekAt(1) == '/':
		for l.pos < len(l.src) && l.peek() != '\n' {
			l.pos++
		}
		return nil
	case c == '/' && l.peekAt(1) == '*':
		return l.blockComment()
	case c == '"' || (c == '#' && l.rawStringAhead()):
		return l.stringLiteral()
	case c == '`':
		return l.backtickIdent()
	case isIdentStart(rune(c)) || c >= utf8.RuneSelf:
		l.ident()
		return nil
	case c >= '0' && c <= '9':
		l.number()
		return nil
	case c == ' ' || c == '\t' || c == '\r' || c == '\n':
		l.advance()
		return nil
	default:
		l.toks = append(l.toks, token{kind: tokPunct, text: string(c), line: l.line})
		l.advance()
		return nil
	}
}

// rawStringAhead reports whether the cursor sits on `#...#"`, the
// opening of a raw string literal (as opposed to e.g. `#if`).
func (l *lexer) rawStringAhead() bool {
	i := 0
	for l.peekAt(i) == '#' {
		i++
	}
	return i > 0 && l.peekAt(i) == '"'
}

func (l *lexer) blockComment() error {
	start := l.line
	l.advance() // '/'
	l.advance() // '*'
	depth := 1
	for l.pos < len(l.src) {
		if l.peek() == '/' && l.peekAt(1) == '*' {
			l.advance()
			l.advance()
			depth++
			continue
		}
		if l.peek() == '*' && l.peekAt(1) == '/' {
			l.advance()
			l.advance()
			depth--
			if depth == 0 {
				return nil
			}
			continue
		}
		l.advance()
	}
	return l.errf(start, "unterminated block comment")
}

func (l *lexer) backtickIdent() error {
	start := l.line
	l.advance() // '`'
	begin := l.pos
	for l.pos < len(l.src) && l.peek() != '`' {
		if l.peek() == '\n' {
			return l.errf(start, "unterminated escaped identifier")
		}
		l.advance()
	}
	if l.pos >= len(l.src) {
		return l.errf(start, "unterminated escaped identifier")
	}
	text := string(l.src[begin:l.pos])
	l.advance() // closing '`'
	l.toks = append(l.toks, token{kind: tokIdent, text: text, line: start})
	return nil
}

func (l *lexer) ident() {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRune(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	l.toks = append(l.toks, token{kind: tokIdent, text: string(l.src[start:l.pos]), line: line})
}

func (l *lexer) number() {
	start := l.pos
	line := l.line
	for l.pos < len(l.src) {
		c := l.peek()
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == '.' && l.peekAt(1) >= '0' && l.peekAt(1) <= '9' ||
			c == 'x' || c == 'o' || c == 'b' || c == '_' {
			l.pos++
			continue
		}
		break
	}
	l.toks = append(l.toks, token{kind: tokNumber, text: string(l.src[start:l.pos]), line: line})
}

// stringLiteral consumes plain, multiline and raw string literals.
// Interpolation segments `\(...)` are scanned recursively so nested
// strings and braces stay inside the literal token.
func (l *lexer) stringLiteral() error {
	start := l.line

	hashes := 0
	for l.peek() == '#' {
		hashes++
		l.advance()
	}

	multiline := l.peek() == '"' && l.peekAt(1) == '"' && l.peekAt(2) == '"'
	if multiline {
		l.advance()
		l.advance()
		l.advance()
	} else {
		l.advance() // opening '"'
	}

	for l.pos < len(l.src) {
		c := l.peek()

		if c == '\\' && l.hashRun(1) == hashes {
			// Skip the escape introducer and its delimiter hashes.
			l.advance()
			for i := 0; i < hashes; i++ {
				l.advance()
			}
			if l.peek() == '(' {
				if err := l.interpolation(start); err != nil {
					return err
				}
			} else if l.pos < len(l.src) {
				l.advance() // escaped character
			}
			continue
		}

		if c == '"' {
			if multiline {
				if l.peekAt(1) == '"' && l.peekAt(2) == '"' && l.hashRunAt(3) >= hashes {
					l.advance()
					l.advance()
					l.advance()
					for i := 0; i < hashes; i++ {
						l.advance()
					}
					l.toks = append(l.toks, token{kind: tokString, line: start})
					return nil
				}
			} else if l.hashRunAt(1) >= hashes {
				l.advance()
				for i := 0; i < hashes; i++ {
					l.advance()
				}
				l.toks = append(l.toks, token{kind: tokString, line: start})
				return nil
			}
			l.advance()
			continue
		}

		if c == '\n' && !multiline {
			return l.errf(start, "unterminated string literal")
		}
		l.advance()
	}
	return l.errf(start, "unterminated string literal")
}

// hashRun counts '#' bytes starting at the given offset.
func (l *lexer) hashRun(off int) int {
	n := 0
	for l.peekAt(off+n) == '#' {
		n++
	}
	return n
}

func (l *lexer) hashRunAt(off int) int {
	return l.hashRun(off)
}

// interpolation consumes a `\(...)` segment, balancing parentheses and
// descending into nested string literals.
func (l *lexer) interpolation(startLine int) error {
	l.advance() // '('
	depth := 1
	for l.pos < len(l.src) {
		c := l.peek()
		switch {
		case c == '(':
			depth++
			l.advance()
		case c == ')':
			depth--
			l.advance()
			if depth == 0 {
				return nil
			}
		case c == '"' || (c == '#' && l.rawStringAhead()):
			// Nested literal: consume it but drop the token it pushed.
			if err := l.stringLiteral(); err != nil {
				return err
			}
			l.toks = l.toks[:len(l.toks)-1]
		case c == '/' && l.peekAt(1) == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.pos++
			}
		default:
			l.advance()
		}
	}
	return l.errf(startLine, "unterminated string interpolation")
}

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
