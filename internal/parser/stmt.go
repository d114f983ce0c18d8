package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

func (p *Parser) parseBlock() (*ast.BlockStmt, bool) {
	open, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{'")
	if !ok {
		return nil, false
	}
	block := &ast.BlockStmt{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		st, ok := p.parseStmt()
		if !ok {
			p.resync()
			continue
		}
		block.Stmts = append(block.Stmts, st)
	}
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close block")
	block.Sp = p.spanFrom(open.Span)
	return block, true
}

func (p *Parser) parseStmt() (ast.Stmt, bool) {
	start := p.peek().Span
	switch p.peek().Kind {
	case token.LBrace:
		return p.parseBlock()
	case token.Semicolon:
		p.advance()
		return &ast.BlockStmt{StmtBase: ast.StmtBase{Sp: start}}, true
	case token.KwIf:
		p.advance()
		cond, ok := p.parseParenCond()
		if !ok {
			return nil, false
		}
		st := &ast.IfStmt{Cond: cond}
		if st.Then, ok = p.parseStmt(); !ok {
			return nil, false
		}
		if p.eat(token.KwElse) {
			if st.Else, ok = p.parseStmt(); !ok {
				return nil, false
			}
		}
		st.Sp = p.spanFrom(start)
		return st, true
	case token.KwWhile:
		p.advance()
		cond, ok := p.parseParenCond()
		if !ok {
			return nil, false
		}
		st := &ast.WhileStmt{Cond: cond}
		if st.Body, ok = p.parseStmt(); !ok {
			return nil, false
		}
		st.Sp = p.spanFrom(start)
		return st, true
	case token.KwReturn:
		p.advance()
		st := &ast.ReturnStmt{}
		if !p.at(token.Semicolon) {
			var ok bool
			if st.Value, ok = p.parseExpr(); !ok {
				return nil, false
			}
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after return"); !ok {
			return nil, false
		}
		st.Sp = p.spanFrom(start)
		return st, true
	case token.KwBreak, token.KwContinue:
		kw := p.advance()
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after "+kw.Kind.String()); !ok {
			return nil, false
		}
		if kw.Kind == token.KwBreak {
			return &ast.BreakStmt{StmtBase: ast.StmtBase{Sp: p.spanFrom(start)}}, true
		}
		return &ast.ContinueStmt{StmtBase: ast.StmtBase{Sp: p.spanFrom(start)}}, true
	}

	if p.isLocalDeclStart() {
		decls, ok := p.parseDecl(scopeBlock)
		if !ok {
			return nil, false
		}
		return &ast.DeclStmt{StmtBase: ast.StmtBase{Sp: p.spanFrom(start)}, Decl: decls[0]}, true
	}

	x, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after expression"); !ok {
		return nil, false
	}
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Sp: p.spanFrom(start)}, X: x}, true
}

func (p *Parser) parseParenCond() (ast.Expr, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	cond, ok := p.parseExpr()
	if !ok {
		return nil, false
	}
	_, ok = p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')'")
	return cond, ok
}

// isLocalDeclStart отличает `T x;`, `T& x;`, `T[]& x;` от выражений.
func (p *Parser) isLocalDeclStart() bool {
	k := p.peek().Kind
	switch {
	case k == token.KwConst, k == token.KwTypedef, k == token.KwUsing,
		k == token.KwEnum, k == token.KwStruct, k == token.KwPrivate,
		k == token.KwWorld, k == token.KwGlobal, k.IsTypeKeyword():
		return true
	case k != token.Ident && k != token.KwUpmost:
		return false
	}

	// пропускаем путь
	i := 0
	if p.peekN(i).Kind == token.KwUpmost {
		i += 2
	}
	for p.peekN(i).Kind == token.Ident && p.peekN(i+1).Kind == token.ColonColon {
		i += 2
	}
	i++
	switch p.peekN(i).Kind {
	case token.Ident, token.KwFunction:
		return true
	case token.LBracket:
		return p.peekN(i+1).Kind == token.RBracket
	case token.Amp:
		if p.peekN(i+1).Kind != token.Ident {
			return p.peekN(i+1).Kind == token.Amp || p.peekN(i+1).Kind == token.LBracket
		}
		switch p.peekN(i + 2).Kind {
		case token.Semicolon, token.Assign, token.Comma, token.LBracket:
			return true
		}
	}
	return false
}
