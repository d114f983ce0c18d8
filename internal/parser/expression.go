package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

// parseExpr разбирает присваивание (правоассоциативно) поверх условного выражения.
func (p *Parser) parseExpr() (ast.Expr, bool) {
	lhs, ok := p.parseCond()
	if !ok {
		return nil, false
	}
	if !p.peek().Kind.IsAssign() {
		return lhs, true
	}
	op := p.advance()
	rhs, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	return &ast.AssignExpr{
		ExprBase: ast.ExprBase{Sp: lhs.Span().Cover(rhs.Span())},
		Op:       op.Kind,
		Target:   lhs,
		Value:    rhs,
	}, true
}

func (p *Parser) parseCond() (ast.Expr, bool) {
	cond, ok := p.parseBinary(precLowest)
	if !ok || !p.at(token.Question) {
		return cond, ok
	}
	p.advance()
	then, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' in conditional expression"); !ok {
		return nil, false
	}
	els, ok := p.parseCond()
	if !ok {
		return nil, false
	}
	return &ast.CondExpr{
		ExprBase: ast.ExprBase{Sp: cond.Span().Cover(els.Span())},
		Cond:     cond, Then: then, Else: els,
	}, true
}

// parseBinary: precedence climbing по binaryPrec.
func (p *Parser) parseBinary(min prec) (ast.Expr, bool) {
	lhs, ok := p.parseUnary()
	if !ok {
		return nil, false
	}
	for {
		op := p.peek()
		pr, isBin := binaryPrec[op.Kind]
		if !isBin || pr <= min {
			return lhs, true
		}
		p.advance()
		rhs, ok := p.parseBinary(pr)
		if !ok {
			return nil, false
		}
		lhs = &ast.BinaryExpr{
			ExprBase: ast.ExprBase{Sp: lhs.Span().Cover(rhs.Span())},
			Op:       op.Kind,
			X:        lhs,
			Y:        rhs,
		}
	}
}

func (p *Parser) parseUnary() (ast.Expr, bool) {
	switch op := p.peek(); op.Kind {
	case token.Minus, token.Bang, token.Tilde:
		p.advance()
		x, ok := p.parseUnary()
		if !ok {
			return nil, false
		}
		return &ast.UnaryExpr{ExprBase: ast.ExprBase{Sp: op.Span.Cover(x.Span())}, Op: op.Kind, X: x}, true
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Expr, bool) {
	x, ok := p.parsePrimary()
	if !ok {
		return nil, false
	}
	for {
		switch p.peek().Kind {
		case token.LParen:
			p.advance()
			call := &ast.CallExpr{Fn: x}
			for !p.at(token.RParen) && !p.at(token.EOF) {
				arg, ok := p.parseCond()
				if !ok {
					return nil, false
				}
				call.Args = append(call.Args, arg)
				if !p.eat(token.Comma) {
					break
				}
			}
			if _, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close call"); !ok {
				return nil, false
			}
			call.Sp = p.spanFrom(x.Span())
			x = call
		case token.LBracket:
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return nil, false
			}
			if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
				return nil, false
			}
			x = &ast.IndexExpr{ExprBase: ast.ExprBase{Sp: p.spanFrom(x.Span())}, X: x, Index: idx}
		case token.Dot:
			p.advance()
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected member name after '.'")
			if !ok {
				return nil, false
			}
			x = &ast.MemberExpr{
				ExprBase: ast.ExprBase{Sp: p.spanFrom(x.Span())},
				X:        x,
				Name:     ast.Ident{Name: name.Text, Span: name.Span},
			}
		default:
			return x, true
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expr, bool) {
	tok := p.peek()
	base := ast.ExprBase{Sp: tok.Span}
	switch tok.Kind {
	case token.IntLit:
		p.advance()
		return &ast.IntLit{ExprBase: base, Text: tok.Text}, true
	case token.FixedLit:
		p.advance()
		return &ast.FixedLit{ExprBase: base, Text: tok.Text}, true
	case token.StringLit:
		p.advance()
		value, err := ast.Unquote(tok.Text)
		if err != nil {
			p.errorAt(tok.Span, diag.SynExpectString, err.Error())
			return nil, false
		}
		return &ast.StringLit{ExprBase: base, Value: value}, true
	case token.KwTrue, token.KwFalse:
		p.advance()
		return &ast.BoolLit{ExprBase: base, Value: tok.Kind == token.KwTrue}, true
	case token.KwNull:
		p.advance()
		return &ast.NullLit{ExprBase: base}, true
	case token.Ident, token.KwUpmost:
		path, ok := p.parsePath()
		if !ok {
			return nil, false
		}
		return &ast.PathExpr{ExprBase: ast.ExprBase{Sp: path.Span}, Path: path}, true
	case token.LParen:
		p.advance()
		x, ok := p.parseExpr()
		if !ok {
			return nil, false
		}
		_, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
		return x, ok
	}
	p.err(diag.SynExpectExpression, "expected expression, found "+tok.Kind.String())
	return nil, false
}
