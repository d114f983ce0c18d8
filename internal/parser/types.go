package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

func isTypeStart(k token.Kind) bool {
	switch k {
	case token.KwEnum, token.KwStruct, token.Ident, token.KwUpmost:
		return true
	}
	return k.IsTypeKeyword()
}

// parseTypeSpec разбирает спецификатор и следующие за ним ссылки.
func (p *Parser) parseTypeSpec() (*ast.TypeSpec, bool) {
	start := p.peek().Span
	ts := &ast.TypeSpec{}
	switch tok := p.peek(); {
	case tok.Kind.IsTypeKeyword():
		p.advance()
		ts.Kind = ast.SpecKeyword
		ts.Keyword = tok.Kind
	case tok.Kind == token.KwEnum:
		ts.Kind = ast.SpecEnum
		if p.isInlineBody() {
			p.advance()
			d := &ast.EnumDecl{}
			if p.at(token.Ident) {
				name := p.advance()
				d.Name = ast.Ident{Name: name.Text, Span: name.Span}
			}
			if !p.parseEnumBody(d) {
				return nil, false
			}
			d.Sp = p.spanFrom(start)
			ts.Enum = d
			break
		}
		p.advance()
		path, ok := p.parsePath()
		if !ok {
			return nil, false
		}
		ts.Path = path
	case tok.Kind == token.KwStruct:
		ts.Kind = ast.SpecStruct
		if p.isInlineBody() {
			p.advance()
			d := &ast.StructDecl{}
			if p.at(token.Ident) {
				name := p.advance()
				d.Name = ast.Ident{Name: name.Text, Span: name.Span}
			}
			if !p.parseStructBody(d) {
				return nil, false
			}
			d.Sp = p.spanFrom(start)
			ts.Struct = d
			break
		}
		p.advance()
		path, ok := p.parsePath()
		if !ok {
			return nil, false
		}
		ts.Path = path
	case tok.Kind == token.Ident || tok.Kind == token.KwUpmost:
		path, ok := p.parsePath()
		if !ok {
			return nil, false
		}
		ts.Kind = ast.SpecPath
		ts.Path = path
	default:
		p.err(diag.SynExpectType, "expected type specifier, found "+tok.Kind.String())
		return nil, false
	}
	if !p.parseRefs(ts) {
		return nil, false
	}
	ts.Span = p.spanFrom(start)
	return ts, true
}

// parseRefs разбирает `[]...&`, `&` и `function(...) [msgbuild] &`.
func (p *Parser) parseRefs(ts *ast.TypeSpec) bool {
	for {
		start := p.peek().Span
		switch {
		case p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket:
			ref := ast.RefSpec{Kind: ast.RefArray}
			for p.at(token.LBracket) && p.peekN(1).Kind == token.RBracket {
				p.advance()
				p.advance()
				ref.Dims++
			}
			if _, ok := p.expect(token.Amp, diag.SynUnexpectedToken, "expected '&' after array reference brackets"); !ok {
				return false
			}
			ref.Span = p.spanFrom(start)
			ts.Refs = append(ts.Refs, ref)
		case p.at(token.Amp):
			p.advance()
			ts.Refs = append(ts.Refs, ast.RefSpec{Kind: ast.RefShape, Span: p.lastSpan})
		case p.at(token.KwFunction):
			p.advance()
			ref := ast.RefSpec{Kind: ast.RefFunction}
			params, ok := p.parseParams()
			if !ok {
				return false
			}
			ref.Params = params
			ref.MsgBuild = p.eat(token.KwMsgbuild)
			if _, ok := p.expect(token.Amp, diag.SynUnexpectedToken, "expected '&' after function reference"); !ok {
				return false
			}
			ref.Span = p.spanFrom(start)
			ts.Refs = append(ts.Refs, ref)
		default:
			return true
		}
	}
}

// parsePath разбирает `a::b::c` или `upmost::a`.
func (p *Parser) parsePath() (*ast.Path, bool) {
	start := p.peek().Span
	path := &ast.Path{}
	if p.eat(token.KwUpmost) {
		path.Upmost = true
		if _, ok := p.expect(token.ColonColon, diag.SynUnexpectedToken, "expected '::' after upmost"); !ok {
			return nil, false
		}
	}
	for {
		seg, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected name")
		if !ok {
			return nil, false
		}
		path.Segments = append(path.Segments, ast.Ident{Name: seg.Text, Span: seg.Span})
		if !(p.at(token.ColonColon) && p.peekN(1).Kind == token.Ident) {
			break
		}
		p.advance()
	}
	path.Span = p.spanFrom(start)
	return path, true
}

func (p *Parser) parseParams() ([]*ast.Param, bool) {
	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected '('"); !ok {
		return nil, false
	}
	var params []*ast.Param
	for !p.at(token.RParen) && !p.at(token.EOF) {
		start := p.peek().Span
		ts, ok := p.parseTypeSpec()
		if !ok {
			return nil, false
		}
		param := &ast.Param{Type: ts}
		if p.at(token.Ident) {
			name := p.advance()
			param.Name = ast.Ident{Name: name.Text, Span: name.Span}
		}
		if p.eat(token.Assign) {
			if param.Default, ok = p.parseCond(); !ok {
				return nil, false
			}
		}
		param.Span = p.spanFrom(start)
		params = append(params, param)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.RParen, diag.SynUnclosedDelimiter, "expected ')' to close parameter list")
	return params, ok
}
