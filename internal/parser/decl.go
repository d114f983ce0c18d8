package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/source"
	"quill/internal/token"
)

// parseDecl разбирает одно объявление вместе с модификатором private.
func (p *Parser) parseDecl(scope declScope) ([]ast.Decl, bool) {
	private := false
	if p.at(token.KwPrivate) {
		p.advance()
		if scope != scopeNamespace {
			p.errorAt(p.lastSpan, diag.SynPrivateNotAllowed, "'private' is only allowed at namespace scope")
		} else {
			private = true
		}
		if p.at(token.KwNamespace) || p.at(token.KwUsing) {
			p.err(diag.SynPrivateNotAllowed, "'private' cannot apply to "+p.peek().Kind.String())
			private = false
		}
	}

	decl, ok := p.parseDeclBody(scope)
	if !ok {
		return nil, false
	}
	decl.Base().Private = private
	return []ast.Decl{decl}, true
}

func (p *Parser) parseDeclBody(scope declScope) (ast.Decl, bool) {
	start := p.peek().Span
	switch tok := p.peek(); tok.Kind {
	case token.KwNamespace:
		if scope != scopeNamespace {
			p.err(diag.SynUnexpectedToken, "namespace is not allowed inside a block")
			return nil, false
		}
		return p.parseNamespace()
	case token.KwUsing:
		return p.parseUsing()
	case token.KwEnum, token.KwStruct:
		if p.isInlineBody() {
			return p.parseTagDeclOrVar(scope)
		}
	case token.KwTypedef:
		return p.parseTypedef()
	case token.KwConst:
		return p.parseConst()
	case token.KwScript:
		if scope != scopeNamespace {
			p.err(diag.SynUnexpectedToken, "script is not allowed inside a block")
			return nil, false
		}
		return p.parseScript()
	case token.KwWorld, token.KwGlobal:
		storage := ast.StorageWorld
		if tok.Kind == token.KwGlobal {
			storage = ast.StorageGlobal
		}
		p.advance()
		if scope != scopeNamespace {
			p.errorAt(tok.Span, diag.SynUnexpectedToken, tok.Kind.String()+" storage is only allowed at namespace scope")
			storage = ast.StorageLocal
		}
		ts, ok := p.parseTypeSpec()
		if !ok {
			return nil, false
		}
		return p.parseVarRest(start, storage, ts)
	case token.KwMsgbuild:
		p.advance()
		ts, ok := p.parseTypeSpec()
		if !ok {
			return nil, false
		}
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected function name")
		if !ok {
			return nil, false
		}
		return p.parseFunc(start, scope, ts, ast.Ident{Name: name.Text, Span: name.Span}, true)
	}

	if !isTypeStart(p.peek().Kind) {
		p.err(diag.SynUnexpectedTopLevel, "expected declaration, found "+p.peek().Kind.String())
		return nil, false
	}
	ts, ok := p.parseTypeSpec()
	if !ok {
		return nil, false
	}
	return p.parseAfterType(start, scope, ts)
}

// parseAfterType решает, функция это или переменные.
func (p *Parser) parseAfterType(start source.Span, scope declScope, ts *ast.TypeSpec) (ast.Decl, bool) {
	if p.at(token.Semicolon) && (ts.Enum != nil || ts.Struct != nil) {
		// `struct P {...};` без имени переменной: чистое объявление тега
		p.advance()
		if ts.Enum != nil {
			ts.Enum.Sp = p.spanFrom(start)
			return ts.Enum, true
		}
		ts.Struct.Sp = p.spanFrom(start)
		return ts.Struct, true
	}
	if p.at(token.Ident) && p.peekN(1).Kind == token.LParen {
		name := p.advance()
		return p.parseFunc(start, scope, ts, ast.Ident{Name: name.Text, Span: name.Span}, false)
	}
	return p.parseVarRest(start, ast.StorageLocal, ts)
}

// isInlineBody reports `enum {`, `enum Name {`, `struct {`, `struct Name {`.
func (p *Parser) isInlineBody() bool {
	next := p.peekN(1).Kind
	return next == token.LBrace || (next == token.Ident && p.peekN(2).Kind == token.LBrace)
}

// parseTagDeclOrVar handles `struct P {...};` as well as `struct P {...} p;`
// where the body is declared inline in the variable's type.
func (p *Parser) parseTagDeclOrVar(scope declScope) (ast.Decl, bool) {
	start := p.peek().Span
	ts, ok := p.parseTypeSpec()
	if !ok {
		return nil, false
	}
	return p.parseAfterType(start, scope, ts)
}

func (p *Parser) parseNamespace() (ast.Decl, bool) {
	start := p.advance().Span
	path, ok := p.parsePath()
	if !ok {
		return nil, false
	}
	if path.Upmost {
		p.errorAt(path.Span, diag.SynUnexpectedToken, "namespace name cannot start with upmost")
	}
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' after namespace name"); !ok {
		return nil, false
	}
	decls := p.parseNamespaceBody()
	p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close namespace "+path.String())
	p.eat(token.Semicolon)
	ns := &ast.NamespaceDecl{Path: path, Decls: decls}
	ns.Sp = p.spanFrom(start)
	return ns, true
}

// parseUsing разбирает три формы:
//
//	using a::b;
//	using a::b: x, y = z, struct S, enum E;
//	using n = a::b;
func (p *Parser) parseUsing() (ast.Decl, bool) {
	start := p.advance().Span
	d := &ast.UsingDecl{}
	if p.at(token.Ident) && p.peekN(1).Kind == token.Assign {
		alias := p.advance()
		p.advance()
		d.Kind = ast.UsingAlias
		d.Alias = ast.Ident{Name: alias.Text, Span: alias.Span}
	}
	path, ok := p.parsePath()
	if !ok {
		return nil, false
	}
	d.Path = path
	if d.Kind != ast.UsingAlias && p.eat(token.Colon) {
		d.Kind = ast.UsingSelective
		for {
			item, ok := p.parseUsingItem()
			if !ok {
				return nil, false
			}
			d.Items = append(d.Items, item)
			if !p.eat(token.Comma) {
				break
			}
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after using"); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

func (p *Parser) parseUsingItem() (ast.UsingItem, bool) {
	start := p.peek().Span
	item := ast.UsingItem{Table: ast.ItemObject}
	switch {
	case p.eat(token.KwStruct):
		item.Table = ast.ItemStruct
	case p.eat(token.KwEnum):
		item.Table = ast.ItemEnum
	}
	first, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected imported name")
	if !ok {
		return item, false
	}
	item.Name = ast.Ident{Name: first.Text, Span: first.Span}
	if p.eat(token.Assign) {
		src, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected imported name after '='")
		if !ok {
			return item, false
		}
		item.Rename = item.Name
		item.Name = ast.Ident{Name: src.Text, Span: src.Span}
	}
	item.Span = p.spanFrom(start)
	return item, true
}

func (p *Parser) parseEnumBody(d *ast.EnumDecl) bool {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open enumeration"); !ok {
		return false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected enumerator name")
		if !ok {
			return false
		}
		en := ast.Enumerator{Name: ast.Ident{Name: name.Text, Span: name.Span}}
		if p.eat(token.Assign) {
			if en.Value, ok = p.parseCond(); !ok {
				return false
			}
		}
		d.Enumerators = append(d.Enumerators, en)
		if !p.eat(token.Comma) {
			break
		}
	}
	_, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close enumeration")
	return ok
}

func (p *Parser) parseStructBody(d *ast.StructDecl) bool {
	if _, ok := p.expect(token.LBrace, diag.SynUnexpectedToken, "expected '{' to open structure"); !ok {
		return false
	}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		ts, ok := p.parseTypeSpec()
		if !ok {
			return false
		}
		m := ast.MemberDecl{Type: ts}
		for {
			name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected member name")
			if !ok {
				return false
			}
			decl := &ast.Declarator{Name: ast.Ident{Name: name.Text, Span: name.Span}}
			if decl.Dims, ok = p.parseDims(false); !ok {
				return false
			}
			decl.Span = p.spanFrom(name.Span)
			m.Names = append(m.Names, decl)
			if !p.eat(token.Comma) {
				break
			}
		}
		if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after member"); !ok {
			return false
		}
		d.Members = append(d.Members, m)
	}
	_, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close structure")
	return ok
}

func (p *Parser) parseTypedef() (ast.Decl, bool) {
	start := p.advance().Span
	ts, ok := p.parseTypeSpec()
	if !ok {
		return nil, false
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected typedef name")
	if !ok {
		return nil, false
	}
	d := &ast.TypedefDecl{Type: ts, Name: ast.Ident{Name: name.Text, Span: name.Span}}
	if d.Dims, ok = p.parseDims(false); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after typedef"); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

func (p *Parser) parseConst() (ast.Decl, bool) {
	start := p.advance().Span
	d := &ast.ConstDecl{}
	if !(p.at(token.Ident) && p.peekN(1).Kind == token.Assign) {
		ts, ok := p.parseTypeSpec()
		if !ok {
			return nil, false
		}
		d.Type = ts
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected constant name")
	if !ok {
		return nil, false
	}
	d.Name = ast.Ident{Name: name.Text, Span: name.Span}
	if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' in constant declaration"); !ok {
		return nil, false
	}
	if d.Value, ok = p.parseCond(); !ok {
		return nil, false
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after constant"); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

func (p *Parser) parseScript() (ast.Decl, bool) {
	start := p.advance().Span
	lit, ok := p.expect(token.StringLit, diag.SynExpectString, "expected script name string")
	if !ok {
		return nil, false
	}
	name, err := ast.Unquote(lit.Text)
	if err != nil {
		p.errorAt(lit.Span, diag.SynExpectString, err.Error())
		return nil, false
	}
	d := &ast.ScriptDecl{Name: name, NameSp: lit.Span}
	if p.at(token.LParen) {
		if d.Params, ok = p.parseParams(); !ok {
			return nil, false
		}
	}
	if d.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

func (p *Parser) parseFunc(start source.Span, scope declScope, ts *ast.TypeSpec, name ast.Ident, msgbuild bool) (ast.Decl, bool) {
	if scope != scopeNamespace {
		p.errorAt(name.Span, diag.SynUnexpectedToken, "functions cannot be declared inside a block")
		return nil, false
	}
	d := &ast.FuncDecl{Type: ts, Name: name, MsgBuild: msgbuild}
	var ok bool
	if d.Params, ok = p.parseParams(); !ok {
		return nil, false
	}
	if d.Body, ok = p.parseBlock(); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

// parseVarRest разбирает список деклараторов после типа.
func (p *Parser) parseVarRest(start source.Span, storage ast.StorageKind, ts *ast.TypeSpec) (ast.Decl, bool) {
	d := &ast.VarDecl{Storage: storage, Type: ts}
	for {
		decl, ok := p.parseDeclarator(storage != ast.StorageLocal)
		if !ok {
			return nil, false
		}
		d.Vars = append(d.Vars, decl)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after declaration"); !ok {
		return nil, false
	}
	d.Sp = p.spanFrom(start)
	return d, true
}

func (p *Parser) parseDeclarator(indexed bool) (*ast.Declarator, bool) {
	start := p.peek().Span
	decl := &ast.Declarator{}
	var ok bool
	if indexed && !(p.at(token.Ident) && p.peekN(1).Kind != token.Colon) {
		if decl.Index, ok = p.parseBinary(precLowest); !ok {
			return nil, false
		}
		if _, ok := p.expect(token.Colon, diag.SynUnexpectedToken, "expected ':' after storage index"); !ok {
			return nil, false
		}
	}
	name, ok := p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")
	if !ok {
		return nil, false
	}
	decl.Name = ast.Ident{Name: name.Text, Span: name.Span}
	if decl.Dims, ok = p.parseDims(true); !ok {
		return nil, false
	}
	if p.eat(token.Assign) {
		if decl.Init, ok = p.parseInitializer(); !ok {
			return nil, false
		}
	}
	decl.Span = p.spanFrom(start)
	return decl, true
}

// parseDims разбирает `[3][N]`; пустые скобки допустимы только при implicit.
func (p *Parser) parseDims(implicit bool) ([]ast.Expr, bool) {
	var dims []ast.Expr
	for p.at(token.LBracket) {
		open := p.advance()
		if p.at(token.RBracket) {
			if !implicit {
				p.errorAt(open.Span, diag.SynExpectExpression, "array dimension required here")
			}
			p.advance()
			dims = append(dims, nil)
			continue
		}
		size, ok := p.parseCond()
		if !ok {
			return nil, false
		}
		if _, ok := p.expect(token.RBracket, diag.SynUnclosedDelimiter, "expected ']'"); !ok {
			return nil, false
		}
		dims = append(dims, size)
	}
	return dims, true
}

func (p *Parser) parseInitializer() (ast.Expr, bool) {
	if !p.at(token.LBrace) {
		return p.parseCond()
	}
	start := p.advance().Span
	list := &ast.InitList{}
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		elem, ok := p.parseInitializer()
		if !ok {
			return nil, false
		}
		list.Elems = append(list.Elems, elem)
		if !p.eat(token.Comma) {
			break
		}
	}
	if _, ok := p.expect(token.RBrace, diag.SynUnclosedDelimiter, "expected '}' to close initializer"); !ok {
		return nil, false
	}
	list.Sp = p.spanFrom(start)
	return list, true
}
