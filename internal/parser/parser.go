// Package parser implements the operator-precedence expression parser and
// the top-level declaration grammar described by the language's informal
// grammar. It consumes a lexer.Tokenizer and produces a flat sequence of
// ast.Node declarations.
package parser

import (
	"vslc32/internal/ast"
	"vslc32/internal/lexer"
	"vslc32/internal/token"
	"vslc32/internal/vslerr"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Parser wraps a lexer.Tokenizer with one token of lookahead, already
// primed by New.
type Parser struct {
	tz *lexer.Tokenizer
}

// ---------------------
// ----- functions -----
// ---------------------

// New primes tok with a single Advance and returns a Parser ready to parse.
func New(tok *lexer.Tokenizer) (*Parser, error) {
	if err := tok.Advance(); err != nil {
		return nil, err
	}
	return &Parser{tz: tok}, nil
}

// ParseFile parses top-level declarations until EndOfFile.
func (p *Parser) ParseFile() ([]ast.Node, error) {
	var decls []ast.Node
	for p.cur().Kind != token.EndOfFile {
		d, err := p.parseDeclaration()
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}

func (p *Parser) cur() token.Token {
	return p.tz.Current()
}

func (p *Parser) advance() error {
	return p.tz.Advance()
}

// expect consumes the current token if it is of kind, else fails with
// UnexpectedToken naming what was expected.
func (p *Parser) expect(kind token.Kind, what string) (token.Token, error) {
	t := p.cur()
	if t.Kind != kind {
		return token.Token{}, vslerr.New(vslerr.UnexpectedToken, t.Location, "expected %s, got %s", what, t)
	}
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

// ---------------------------------
// ----- declaration grammar -------
// ---------------------------------

// parseDeclaration parses one top-level variable or function declaration.
// A declaration always begins with an identifier; whether it is the
// declaration's type or its name is resolved by looking at the token that
// follows it.
func (p *Parser) parseDeclaration() (ast.Node, error) {
	start := p.cur().Location
	firstTok, err := p.expect(token.Identifier, "declaration")
	if err != nil {
		return nil, err
	}

	var typeExpr *ast.Identifier
	name := firstTok.Ident

	if p.cur().Kind == token.Identifier {
		// Two identifiers in a row: the first was a type, the second the name.
		typeExpr = &ast.Identifier{Loc: firstTok.Location, Name: firstTok.Ident}
		nameTok, err := p.expect(token.Identifier, "declaration name")
		if err != nil {
			return nil, err
		}
		name = nameTok.Ident
	}

	switch p.cur().Kind {
	case token.Equals:
		if err := p.advance(); err != nil {
			return nil, err
		}
		init, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return &ast.VariableDeclaration{Loc: start, TypeExpr: typeExpr, Name: name, Initializer: init}, nil

	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.parseArgList()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDeclaration{Loc: start, ReturnTypeExpr: typeExpr, Name: name, Args: args, Body: body}, nil

	default:
		return nil, vslerr.New(vslerr.UnexpectedToken, p.cur().Location, "expected '=' or '(' in declaration, got %s", p.cur())
	}
}

// parseArgList parses a (possibly empty) comma-separated list of "type name"
// parameter declarations. The caller has already consumed the opening '('.
func (p *Parser) parseArgList() ([]*ast.FunctionArgumentDeclaration, error) {
	if p.cur().Kind == token.RightParen {
		return nil, nil
	}
	var args []*ast.FunctionArgumentDeclaration
	for {
		a, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		if p.cur().Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseArg parses a single "type name" entry in a parameter list.
func (p *Parser) parseArg() (*ast.FunctionArgumentDeclaration, error) {
	typeTok, err := p.expect(token.Identifier, "parameter type")
	if err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Identifier, "parameter name")
	if err != nil {
		return nil, err
	}
	return &ast.FunctionArgumentDeclaration{
		Loc:      typeTok.Location,
		TypeExpr: &ast.Identifier{Loc: typeTok.Location, Name: typeTok.Ident},
		Name:     nameTok.Ident,
	}, nil
}

// parseBlock parses "{" statement* "}". The opening brace is consumed here.
func (p *Parser) parseBlock() ([]ast.Node, error) {
	if _, err := p.expect(token.LeftBrace, "'{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Node
	for p.cur().Kind != token.RightBrace {
		s, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if _, err := p.expect(token.RightBrace, "'}'"); err != nil {
		return nil, err
	}
	return stmts, nil
}

// -------------------------------
// ----- statement grammar -------
// -------------------------------

// parseStatement parses a single statement: a return, a bare call, or an
// assignment.
func (p *Parser) parseStatement() (ast.Node, error) {
	start := p.cur().Location

	if p.cur().Kind == token.Return {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.cur().Kind == token.Semicolon {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return &ast.Return{Loc: start}, nil
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return &ast.Return{Loc: start, Inner: e}, nil
	}

	e, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.cur().Kind == token.Equals {
		if err := p.advance(); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semicolon, "';'"); err != nil {
			return nil, err
		}
		return &ast.Assignment{Loc: start, LHS: e, RHS: rhs}, nil
	}

	if _, ok := e.(*ast.FunctionCall); !ok {
		return nil, vslerr.New(vslerr.UnexpectedToken, p.cur().Location, "expected '=' after expression, got %s", p.cur())
	}
	if _, err := p.expect(token.Semicolon, "';'"); err != nil {
		return nil, err
	}
	return e, nil
}

// --------------------------------
// ----- expression grammar -------
// --------------------------------

// parseExpression parses the additive precedence level, the grammar's
// entry point for expressions.
func (p *Parser) parseExpression() (ast.Node, error) {
	return p.parseAdditive()
}

// parseAdditive handles left-associative '+' and '-'.
func (p *Parser) parseAdditive() (ast.Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Plus || p.cur().Kind == token.Minus {
		opLoc := p.cur().Location
		op := ast.Add
		if p.cur().Kind == token.Minus {
			op = ast.Sub
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Loc: opLoc, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parseMultiplicative handles left-associative '*' and '/'.
func (p *Parser) parseMultiplicative() (ast.Node, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.cur().Kind == token.Star || p.cur().Kind == token.Slash {
		opLoc := p.cur().Location
		op := ast.Mul
		if p.cur().Kind == token.Slash {
			op = ast.Div
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		left = &ast.Binary{Loc: opLoc, Op: op, Left: left, Right: right}
	}
	return left, nil
}

// parsePrimary parses an optionally negated atom followed by any number of
// postfix type-casts and calls, in left-to-right order.
func (p *Parser) parsePrimary() (ast.Node, error) {
	start := p.cur().Location

	negated := false
	if p.cur().Kind == token.Minus {
		negated = true
		if err := p.advance(); err != nil {
			return nil, err
		}
	}

	result, err := p.parseAtom()
	if err != nil {
		return nil, err
	}

postfix:
	for {
		switch p.cur().Kind {
		case token.Colon:
			castLoc := p.cur().Location
			if err := p.advance(); err != nil {
				return nil, err
			}
			typeTok, err := p.expect(token.Identifier, "type name")
			if err != nil {
				return nil, err
			}
			result = &ast.TypeCast{
				Loc:            castLoc,
				Inner:          result,
				TargetTypeExpr: &ast.Identifier{Loc: typeTok.Location, Name: typeTok.Ident},
			}
		case token.LeftParen:
			callLoc := p.cur().Location
			if err := p.advance(); err != nil {
				return nil, err
			}
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RightParen, "')'"); err != nil {
				return nil, err
			}
			result = &ast.FunctionCall{Loc: callLoc, Callee: result, Args: args}
		default:
			break postfix
		}
	}

	if negated {
		result = &ast.Negation{Loc: start, Inner: result}
	}
	return result, nil
}

// parseCallArgs parses a (possibly empty) comma-separated argument list.
// The caller has already consumed the opening '('.
func (p *Parser) parseCallArgs() ([]ast.Node, error) {
	if p.cur().Kind == token.RightParen {
		return nil, nil
	}
	var args []ast.Node
	for {
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, e)
		if p.cur().Kind != token.Comma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return args, nil
}

// parseAtom parses an identifier, an integer literal, or a parenthesised
// expression.
func (p *Parser) parseAtom() (ast.Node, error) {
	t := p.cur()
	switch t.Kind {
	case token.Identifier:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Identifier{Loc: t.Location, Name: t.Ident}, nil
	case token.IntegerLiteral:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.Integer{Loc: t.Location, Value: t.Int}, nil
	case token.LeftParen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RightParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil
	default:
		return nil, vslerr.New(vslerr.UnexpectedToken, t.Location, "expected identifier, integer literal or '(', got %s", t)
	}
}
