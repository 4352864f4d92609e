package expr

import (
	"fmt"
	"strconv"
)

// builtins maps each recognized function to its accepted argument count
// range. Unknown names and wrong arities are rejected at parse time: a
// malformed declaration should fault on first resolution, not on first
// evaluation.
var builtins = map[string][2]int{
	"hasRole":         {1, 1},
	"hasAnyRole":      {1, -1},
	"isAuthenticated": {0, 0},
	"isAnonymous":     {0, 0},
	"permitAll":       {0, 0},
	"denyAll":         {0, 0},
	"principal":       {0, 0},
	"claim":           {1, 1},
	"arg":             {1, 1},
}

// Parser is a recursive descent parser for policy expressions.
type Parser struct {
	lexer *Lexer
	tok   Token
}

func NewParser(input string) *Parser {
	return &Parser{lexer: NewLexer(input)}
}

// Parse parses the whole input as a single expression.
func (p *Parser) Parse() (node, error) {
	p.next()
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != TokenEOF {
		return nil, p.errorf("unexpected %q", p.tok.Text)
	}
	return n, nil
}

func (p *Parser) next() {
	p.tok = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("parse error at position %d: %s", p.tok.Pos, fmt.Sprintf(format, args...))
}

func (p *Parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenOr || (p.tok.Type == TokenIdent && p.tok.Text == "or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: TokenOr, left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == TokenAnd || (p.tok.Type == TokenIdent && p.tok.Text == "and") {
		p.next()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{op: TokenAnd, left: left, right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (node, error) {
	if p.tok.Type == TokenNot || (p.tok.Type == TokenIdent && p.tok.Text == "not") {
		p.next()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &notNode{operand: operand}, nil
	}
	return p.parseEquality()
}

func (p *Parser) parseEquality() (node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if p.tok.Type == TokenEq || p.tok.Type == TokenNeq {
		op := p.tok.Type
		p.next()
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &binaryNode{op: op, left: left, right: right}, nil
	}
	return left, nil
}

func (p *Parser) parsePrimary() (node, error) {
	switch p.tok.Type {
	case TokenError:
		return nil, p.errorf("%s", p.tok.Text)
	case TokenString:
		n := &literalNode{value: p.tok.Text}
		p.next()
		return n, nil
	case TokenNumber:
		v, err := strconv.Atoi(p.tok.Text)
		if err != nil {
			return nil, p.errorf("invalid number %q", p.tok.Text)
		}
		p.next()
		return &literalNode{value: v}, nil
	case TokenLParen:
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.tok.Type != TokenRParen {
			return nil, p.errorf("expected ')', got %q", p.tok.Text)
		}
		p.next()
		return n, nil
	case TokenIdent:
		switch p.tok.Text {
		case "true":
			p.next()
			return &literalNode{value: true}, nil
		case "false":
			p.next()
			return &literalNode{value: false}, nil
		}
		return p.parseCall()
	}
	return nil, p.errorf("unexpected %q", p.tok.Text)
}

func (p *Parser) parseCall() (node, error) {
	name := p.tok.Text
	pos := p.tok.Pos
	arity, known := builtins[name]
	if !known {
		return nil, p.errorf("unknown function %q", name)
	}
	p.next()
	if p.tok.Type != TokenLParen {
		return nil, p.errorf("expected '(' after %q", name)
	}
	p.next()

	var args []node
	for p.tok.Type != TokenRParen {
		if len(args) > 0 {
			if p.tok.Type != TokenComma {
				return nil, p.errorf("expected ',' or ')', got %q", p.tok.Text)
			}
			p.next()
		}
		arg, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	p.next() // consume ')'

	if len(args) < arity[0] || (arity[1] >= 0 && len(args) > arity[1]) {
		return nil, fmt.Errorf("parse error at position %d: wrong number of arguments to %q", pos, name)
	}
	return &callNode{name: name, args: args, pos: pos}, nil
}
