// Package lexer implements the scanner that turns Lox source text into tokens.
package lexer

import (
	"fmt"
	"lox-lang/internal/diag"
	"lox-lang/internal/span"
	"lox-lang/internal/token"
	"strconv"
	"unicode/utf8"
)

// Lexer tokenizes source code into a sequence of tokens.
type Lexer struct {
	source string

	start    int           // offset of the token being scanned
	startPos span.Position // position of the token being scanned

	pos  int // current read position in source
	line int // current line (1-based)
	col  int // current column (1-based)

	tokens []token.Token
	diags  []diag.Diagnostic
}

// New creates a new Lexer for the given source text.
func New(source string) *Lexer {
	return &Lexer{
		source: source,
		line:   1,
		col:    1,
	}
}

// Scan is shorthand for New(source).Tokenize().
func Scan(source string) ([]token.Token, []diag.Diagnostic) {
	return New(source).Tokenize()
}

// Tokenize scans the entire source and returns all tokens and diagnostics.
// Errors never stop the pass; the token slice always ends with EOF.
func (l *Lexer) Tokenize() ([]token.Token, []diag.Diagnostic) {
	for !l.isAtEnd() {
		l.start = l.pos
		l.startPos = l.curPos()
		l.scanToken()
	}
	l.start = l.pos
	l.startPos = l.curPos()
	l.tokens = append(l.tokens, token.Token{
		Kind: token.EOF,
		Line: l.line,
		Span: span.Span{Start: l.startPos, End: l.startPos},
	})
	return l.tokens, l.diags
}

// ---- internal helpers ----

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

// peek returns the current character without advancing, or 0 if at end.
func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

// peekNext returns the character after current, or 0 if at end.
func (l *Lexer) peekNext() byte {
	if l.pos+1 >= len(l.source) {
		return 0
	}
	return l.source[l.pos+1]
}

// advance consumes the current character and returns it.
func (l *Lexer) advance() byte {
	ch := l.source[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

// match consumes the current character only if it equals expected.
func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.pos] != expected {
		return false
	}
	l.advance()
	return true
}

// curPos returns the current position as a span.Position.
func (l *Lexer) curPos() span.Position {
	return span.Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) addToken(kind token.Kind) {
	l.addLiteral(kind, nil)
}

func (l *Lexer) addLiteral(kind token.Kind, literal any) {
	l.tokens = append(l.tokens, token.Token{
		Kind:    kind,
		Lexeme:  l.source[l.start:l.pos],
		Literal: literal,
		Line:    l.line,
		Span:    span.Span{Start: l.startPos, End: l.curPos()},
	})
}

// addError records a scan diagnostic on the current line.
func (l *Lexer) addError(code, msg string) {
	l.diags = append(l.diags, diag.Errorf(code, diag.Scan, l.line, "%s", msg))
}

// ---- token reading ----

func (l *Lexer) scanToken() {
	ch := l.advance()

	switch ch {
	case '(':
		l.addToken(token.LEFT_PAREN)
	case ')':
		l.addToken(token.RIGHT_PAREN)
	case '{':
		l.addToken(token.LEFT_BRACE)
	case '}':
		l.addToken(token.RIGHT_BRACE)
	case ',':
		l.addToken(token.COMMA)
	case '.':
		l.addToken(token.DOT)
	case '-':
		l.addToken(token.MINUS)
	case '+':
		l.addToken(token.PLUS)
	case ';':
		l.addToken(token.SEMICOLON)
	case '*':
		l.addToken(token.STAR)
	case '!':
		l.addToken(l.pick('=', token.BANG_EQUAL, token.BANG))
	case '=':
		l.addToken(l.pick('=', token.EQUAL_EQUAL, token.EQUAL))
	case '<':
		l.addToken(l.pick('=', token.LESS_EQUAL, token.LESS))
	case '>':
		l.addToken(l.pick('=', token.GREATER_EQUAL, token.GREATER))
	case '/':
		if l.match('/') {
			l.skipLineComment()
		} else {
			l.addToken(token.SLASH)
		}
	case ' ', '\r', '\t', '\n', '\f', '\v':
		// whitespace
	case '"':
		l.readString()
	default:
		switch {
		case isDigit(ch):
			l.readNumber()
		case isAlpha(ch):
			l.readIdentifier()
		default:
			l.unexpected(ch)
		}
	}
}

// pick returns two if the next character is next (consuming it), else one.
func (l *Lexer) pick(next byte, two, one token.Kind) token.Kind {
	if l.match(next) {
		return two
	}
	return one
}

// skipLineComment skips from // to end of line.
func (l *Lexer) skipLineComment() {
	for l.peek() != '\n' && !l.isAtEnd() {
		l.advance()
	}
}

// unexpected reports a character that cannot start any token. Multi-byte
// UTF-8 sequences are consumed whole so the report names the real character.
func (l *Lexer) unexpected(first byte) {
	if first >= utf8.RuneSelf {
		r, size := utf8.DecodeRuneInString(l.source[l.start:])
		for i := 1; i < size; i++ {
			l.advance()
		}
		l.addError("E1002", fmt.Sprintf("Unexpected character: '%c'", r))
		return
	}
	l.addError("E1002", fmt.Sprintf("Unexpected character: '%c'", first))
}

// readString reads a double-quoted string literal. Strings may span lines
// and have no escape sequences.
func (l *Lexer) readString() {
	for l.peek() != '"' && !l.isAtEnd() {
		l.advance()
	}

	if l.isAtEnd() {
		l.addError("E1001", "Unterminated string.")
		return
	}

	l.advance() // closing "
	value := l.source[l.start+1 : l.pos-1]
	l.addLiteral(token.STRING, value)
}

// readNumber reads an integer or decimal literal. A trailing '.' without a
// digit after it is not part of the number.
func (l *Lexer) readNumber() {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance() // skip '.'
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	val, _ := strconv.ParseFloat(l.source[l.start:l.pos], 64)
	l.addLiteral(token.NUMBER, val)
}

// readIdentifier reads an identifier or keyword.
func (l *Lexer) readIdentifier() {
	for isAlphaNumeric(l.peek()) {
		l.advance()
	}
	l.addToken(token.LookupIdent(l.source[l.start:l.pos]))
}

// ---- character classification ----

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}
