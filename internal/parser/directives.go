package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/token"
)

var directiveKinds = map[string]ast.DirectiveKind{
	"library": ast.DirLibrary,
	"import":  ast.DirImport,
	"include": ast.DirInclude,
}

// parseDirective разбирает `#library "x"`, `#import "x"`, `#include "x"`.
func (p *Parser) parseDirective(f *ast.File) {
	hash := p.advance()
	nameTok, ok := p.expect(token.Ident, diag.SynBadDirective, "expected directive name after '#'")
	if !ok {
		p.resync()
		return
	}
	kind, known := directiveKinds[nameTok.Text]
	if !known {
		p.errorAt(nameTok.Span, diag.SynBadDirective, "unknown directive #"+nameTok.Text)
		p.resync()
		return
	}
	lit, ok := p.expect(token.StringLit, diag.SynExpectString, "expected string after #"+nameTok.Text)
	if !ok {
		p.resync()
		return
	}
	value, err := ast.Unquote(lit.Text)
	if err != nil {
		p.errorAt(lit.Span, diag.SynBadDirective, err.Error())
		return
	}
	p.eat(token.Semicolon)

	d := ast.Directive{Kind: kind, Value: value, Span: hash.Span.Cover(lit.Span)}
	switch kind {
	case ast.DirLibrary:
		if f.Library != nil {
			p.errorAt(d.Span, diag.SynBadDirective, "duplicate #library directive")
			return
		}
		f.Library = &d
	case ast.DirImport:
		f.Imports = append(f.Imports, d)
	case ast.DirInclude:
		f.Includes = append(f.Includes, d)
	}
}
