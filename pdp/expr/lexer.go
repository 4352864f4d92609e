// Package expr implements the default policy expression engine: a lexer, a
// recursive descent parser and an evaluator for boolean policy declarations
// such as "hasRole('ADMIN') && isAuthenticated()".
package expr

import (
	"fmt"
	"unicode"
)

// TokenType represents the type of a lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenError
	TokenIdent
	TokenString // single-quoted
	TokenNumber
	TokenAnd    // &&
	TokenOr     // ||
	TokenNot    // !
	TokenEq     // ==
	TokenNeq    // !=
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,
)

// Token represents a lexical token in a policy expression.
type Token struct {
	Type TokenType
	Text string
	Pos  int // byte position in the input
}

// Lexer tokenizes a policy expression string.
type Lexer struct {
	input string
	pos   int
}

func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// NextToken returns the next token in the input. Lexical errors are reported
// as a TokenError whose Text holds the message.
func (l *Lexer) NextToken() Token {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Pos: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return Token{Type: TokenLParen, Text: "(", Pos: start}
	case ')':
		l.pos++
		return Token{Type: TokenRParen, Text: ")", Pos: start}
	case ',':
		l.pos++
		return Token{Type: TokenComma, Text: ",", Pos: start}
	case '&':
		if l.peekAt(l.pos+1) == '&' {
			l.pos += 2
			return Token{Type: TokenAnd, Text: "&&", Pos: start}
		}
		return l.errorToken(start, "unexpected '&'")
	case '|':
		if l.peekAt(l.pos+1) == '|' {
			l.pos += 2
			return Token{Type: TokenOr, Text: "||", Pos: start}
		}
		return l.errorToken(start, "unexpected '|'")
	case '!':
		if l.peekAt(l.pos+1) == '=' {
			l.pos += 2
			return Token{Type: TokenNeq, Text: "!=", Pos: start}
		}
		l.pos++
		return Token{Type: TokenNot, Text: "!", Pos: start}
	case '=':
		if l.peekAt(l.pos+1) == '=' {
			l.pos += 2
			return Token{Type: TokenEq, Text: "==", Pos: start}
		}
		return l.errorToken(start, "unexpected '='")
	case '\'':
		return l.lexString(start)
	}

	if unicode.IsDigit(rune(ch)) {
		return l.lexNumber(start)
	}
	if unicode.IsLetter(rune(ch)) || ch == '_' {
		return l.lexIdent(start)
	}
	return l.errorToken(start, fmt.Sprintf("unexpected character %q", ch))
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.input) && (l.input[l.pos] == ' ' || l.input[l.pos] == '\t' || l.input[l.pos] == '\n' || l.input[l.pos] == '\r') {
		l.pos++
	}
}

func (l *Lexer) peekAt(pos int) byte {
	if pos >= len(l.input) {
		return 0
	}
	return l.input[pos]
}

func (l *Lexer) lexString(start int) Token {
	l.pos++ // opening quote
	for l.pos < len(l.input) && l.input[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return l.errorToken(start, "unterminated string literal")
	}
	text := l.input[start+1 : l.pos]
	l.pos++ // closing quote
	return Token{Type: TokenString, Text: text, Pos: start}
}

func (l *Lexer) lexNumber(start int) Token {
	for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
		l.pos++
	}
	return Token{Type: TokenNumber, Text: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) lexIdent(start int) Token {
	for l.pos < len(l.input) {
		ch := rune(l.input[l.pos])
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		l.pos++
	}
	return Token{Type: TokenIdent, Text: l.input[start:l.pos], Pos: start}
}

func (l *Lexer) errorToken(pos int, msg string) Token {
	l.pos = len(l.input) // stop lexing
	return Token{Type: TokenError, Text: msg, Pos: pos}
}
