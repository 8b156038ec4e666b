package manifest

import "fmt"

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokLifetime
	tokString
	tokColons  // ::
	tokArrow   // ->
	tokLt      // <
	tokGt      // >
	tokLParen  // (
	tokRParen  // )
	tokLBrack  // [
	tokRBrack  // ]
	tokComma   // ,
	tokSemi    // ;
	tokAmp     // &
	tokStar    // *
	tokBang    // !
	tokPlus    // +
	tokEq      // =
	tokInvalid
)

var tokenNames = [...]string{
	tokEOF:      "end of input",
	tokIdent:    "identifier",
	tokNumber:   "number",
	tokLifetime: "lifetime",
	tokString:   "string",
	tokColons:   "'::'",
	tokArrow:    "'->'",
	tokLt:       "'<'",
	tokGt:       "'>'",
	tokLParen:   "'('",
	tokRParen:   "')'",
	tokLBrack:   "'['",
	tokRBrack:   "']'",
	tokComma:    "','",
	tokSemi:     "';'",
	tokAmp:      "'&'",
	tokStar:     "'*'",
	tokBang:     "'!'",
	tokPlus:     "'+'",
	tokEq:       "'='",
	tokInvalid:  "invalid character",
}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind tokenKind
	text string
	off  uint32
}

// lexer turns a type expression into tokens one at a time.
type lexer struct {
	cur  cursor
	look *token
}

func newLexer(src string) *lexer {
	return &lexer{cur: newCursor(src)}
}

func (lx *lexer) peek() token {
	if lx.look == nil {
		t := lx.scan()
		lx.look = &t
	}
	return *lx.look
}

func (lx *lexer) next() token {
	t := lx.peek()
	lx.look = nil
	return t
}

func (lx *lexer) scan() token {
	c := &lx.cur
	c.skipSpace()
	start := c.mark()
	tok := func(k tokenKind) token {
		return token{kind: k, text: c.textFrom(start), off: uint32(start)}
	}
	if c.eof() {
		return tok(tokEOF)
	}
	b := c.peek()
	switch {
	case isIdentStart(b):
		c.bump()
		for isIdentContinue(c.peek()) {
			c.bump()
		}
		return tok(tokIdent)
	case b == '{':
		// {{closure}}, {{impl}} and friends are single path segments.
		if b0, b1, ok := c.peek2(); ok && b0 == '{' && b1 == '{' {
			c.bump()
			c.bump()
			for isIdentContinue(c.peek()) {
				c.bump()
			}
			if c.eat('}') && c.eat('}') {
				return tok(tokIdent)
			}
		}
		c.bump()
		return tok(tokInvalid)
	case isDigit(b):
		for isIdentContinue(c.peek()) {
			c.bump()
		}
		return tok(tokNumber)
	case b == '\'':
		c.bump()
		for isIdentContinue(c.peek()) {
			c.bump()
		}
		return tok(tokLifetime)
	case b == '"':
		c.bump()
		for !c.eof() && c.peek() != '"' {
			c.bump()
		}
		if !c.eat('"') {
			return tok(tokInvalid)
		}
		return tok(tokString)
	}

	c.bump()
	switch b {
	case ':':
		if c.eat(':') {
			return tok(tokColons)
		}
	case '-':
		if c.eat('>') {
			return tok(tokArrow)
		}
	case '<':
		return tok(tokLt)
	case '>':
		return tok(tokGt)
	case '(':
		return tok(tokLParen)
	case ')':
		return tok(tokRParen)
	case '[':
		return tok(tokLBrack)
	case ']':
		return tok(tokRBrack)
	case ',':
		return tok(tokComma)
	case ';':
		return tok(tokSemi)
	case '&':
		return tok(tokAmp)
	case '*':
		return tok(tokStar)
	case '!':
		return tok(tokBang)
	case '+':
		return tok(tokPlus)
	case '=':
		return tok(tokEq)
	}
	return tok(tokInvalid)
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentContinue(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Src string
	Off uint32
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("type %q at %d: %s", e.Src, e.Off, e.Msg)
}
