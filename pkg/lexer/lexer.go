// Package lexer tokenizes SQL model bodies into a lossless token stream.
//
// The scan is total: it never fails, unknown bytes become Unknown tokens, and
// concatenating every token's text in order reproduces the input exactly.
// Templating regions ({{ }}, {% %}, {# #}) are emitted as opaque tokens
// without recursing into their contents.
package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/leapstack-labs/leaplint/pkg/token"
)

// Lexer scans SQL input left to right.
type Lexer struct {
	input string
	pos   int // byte offset of the next unread byte
	line  int // 1-based line of l.pos
	col   int // 1-based column of l.pos
}

// New creates a Lexer for the given input.
func New(input string) *Lexer {
	return &Lexer{input: input, line: 1, col: 1}
}

// Tokenize returns all tokens for the input, in order.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok, ok := l.Next()
		if !ok {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}

// Next returns the next token. The second return value is false once the
// input is exhausted.
func (l *Lexer) Next() (token.Token, bool) {
	if l.pos >= len(l.input) {
		return token.Token{}, false
	}

	start := l.pos
	startLine, startCol := l.line, l.col
	kind := l.scan()

	tok := token.Token{
		Kind:   kind,
		Text:   l.input[start:l.pos],
		Offset: start,
		Line:   startLine,
		Column: startCol,
	}
	return tok, true
}

// scan consumes one token's worth of input and returns its kind.
// Cases are ordered by priority; each consumes at least one byte.
func (l *Lexer) scan() token.Kind {
	ch := l.input[l.pos]

	switch {
	case ch == '\n':
		l.advance(1)
		return token.Newline
	case ch == '\r':
		if l.peekAt(1) == '\n' {
			l.advance(2)
		} else {
			l.advance(1)
		}
		return token.Newline
	case ch == ' ' || ch == '\t':
		for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t') {
			l.advance(1)
		}
		return token.Whitespace
	case ch == '-' && l.peekAt(1) == '-':
		l.scanLineComment()
		return token.LineComment
	case ch == '/' && l.peekAt(1) == '*':
		l.scanBlockComment()
		return token.BlockComment
	case ch == '{' && l.peekAt(1) == '{':
		l.scanTemplate("}}")
		return token.TemplateExpr
	case ch == '{' && l.peekAt(1) == '%':
		l.scanTemplate("%}")
		return token.TemplateStmt
	case ch == '{' && l.peekAt(1) == '#':
		l.scanTemplate("#}")
		return token.TemplateComment
	case ch == '\'':
		l.scanQuoted('\'')
		return token.String
	case ch == '"':
		l.scanQuoted('"')
		return token.QuotedIdent
	case ch == '`':
		l.scanQuoted('`')
		return token.QuotedIdent
	case ch >= '0' && ch <= '9':
		l.scanNumber()
		return token.Number
	}

	switch ch {
	case '(', '[':
		l.advance(1)
		return token.ParenOpen
	case ')', ']':
		l.advance(1)
		return token.ParenClose
	case ',':
		l.advance(1)
		return token.Comma
	case ';':
		l.advance(1)
		return token.Semicolon
	case '.':
		l.advance(1)
		return token.Dot
	}

	if isTwoCharOperator(ch, l.peekAt(1)) {
		l.advance(2)
		return token.Operator
	}
	if isOperator(ch) {
		l.advance(1)
		return token.Operator
	}

	if isIdentStart(ch) {
		return l.scanIdent()
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	if r != utf8.RuneError && unicode.IsLetter(r) {
		return l.scanIdent()
	}

	// Unknown byte (or invalid UTF-8); consume one rune and keep going.
	if size < 1 {
		size = 1
	}
	l.advance(size)
	return token.Unknown
}

// scanLineComment consumes "--" up to, but not including, the line break.
func (l *Lexer) scanLineComment() {
	l.advance(2)
	for l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
		l.advance(1)
	}
}

// scanBlockComment consumes a block comment, honoring arbitrary nesting.
// An unterminated comment runs to end of input.
func (l *Lexer) scanBlockComment() {
	l.advance(2)
	depth := 1
	for l.pos < len(l.input) {
		if l.input[l.pos] == '/' && l.peekAt(1) == '*' {
			depth++
			l.advance(2)
			continue
		}
		if l.input[l.pos] == '*' && l.peekAt(1) == '/' {
			depth--
			l.advance(2)
			if depth == 0 {
				return
			}
			continue
		}
		l.advance(1)
	}
}

// scanTemplate consumes an opaque templating region up to and including the
// closing delimiter, or to end of input.
func (l *Lexer) scanTemplate(close string) {
	l.advance(2)
	for l.pos < len(l.input) {
		if strings.HasPrefix(l.input[l.pos:], close) {
			l.advance(len(close))
			return
		}
		l.advance(1)
	}
}

// scanQuoted consumes a quoted region where a doubled quote is an escape.
// A missing terminator runs to end of input; reporting it is the caller's job.
func (l *Lexer) scanQuoted(quote byte) {
	l.advance(1)
	for l.pos < len(l.input) {
		if l.input[l.pos] == quote {
			if l.peekAt(1) == quote {
				l.advance(2)
				continue
			}
			l.advance(1)
			return
		}
		l.advance(1)
	}
}

// scanNumber consumes digits, an optional fraction, and an optional signed
// exponent.
func (l *Lexer) scanNumber() {
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.advance(1)
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' && isDigit(l.peekAt(1)) {
		l.advance(1)
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.advance(1)
		}
	}
	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		next := l.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekAt(2))) {
			l.advance(1)
			if l.input[l.pos] == '+' || l.input[l.pos] == '-' {
				l.advance(1)
			}
			for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
				l.advance(1)
			}
		}
	}
}

// scanIdent consumes an identifier and classifies keywords.
func (l *Lexer) scanIdent() token.Kind {
	start := l.pos
	if l.input[l.pos] == '@' || l.input[l.pos] == '$' {
		l.advance(1)
	}
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if isIdentPart(ch) {
			l.advance(1)
			continue
		}
		if ch < utf8.RuneSelf {
			break
		}
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == utf8.RuneError || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			break
		}
		l.advance(size)
	}
	if token.IsKeyword(l.input[start:l.pos]) {
		return token.Keyword
	}
	return token.Ident
}

// advance moves forward n bytes, updating line and column.
func (l *Lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.input); i++ {
		if l.input[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

// peekAt returns the byte n positions ahead, or 0 past end of input.
func (l *Lexer) peekAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '@' || ch == '$' ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool {
	return ch == '_' || isDigit(ch) ||
		(ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isOperator(ch byte) bool {
	switch ch {
	case '+', '-', '*', '/', '%', '=', '<', '>', '!', '|', '&', '^', '~', '?', ':':
		return true
	}
	return false
}

func isTwoCharOperator(a, b byte) bool {
	switch {
	case a == '<' && (b == '=' || b == '>'):
		return true
	case a == '>' && b == '=':
		return true
	case a == '!' && b == '=':
		return true
	case a == '|' && b == '|':
		return true
	case a == ':' && b == ':':
		return true
	case a == '-' && b == '>':
		return true
	case a == '=' && b == '>':
		return true
	}
	return false
}
