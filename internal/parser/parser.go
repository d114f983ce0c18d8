package parser

import (
	"quill/internal/ast"
	"quill/internal/diag"
	"quill/internal/lexer"
	"quill/internal/source"
	"quill/internal/token"
)

type Options struct {
	MaxErrors uint
	Reporter  diag.Reporter
}

type Result struct {
	File   *ast.File
	Errors uint
}

// Parser хранит состояние парсера на один файл. Токены лексятся заранее:
// различение объявления и выражения в теле функции требует заглядывания вперёд.
type Parser struct {
	file     *source.File
	toks     []token.Token
	pos      int
	opts     Options
	errors   uint
	lastSpan source.Span
}

// ParseFile lexes and parses one source file.
func ParseFile(file *source.File, opts Options) Result {
	lx := lexer.New(file, lexer.Options{Reporter: opts.Reporter})
	p := &Parser{
		file: file,
		toks: lx.All(),
		opts: opts,
	}
	out := &ast.File{ID: file.ID, Path: file.Path}
	start := p.peek().Span
	p.parseFileItems(out)
	out.Span = start.Cover(p.peek().Span)
	return Result{File: out, Errors: p.errors}
}

type declScope uint8

const (
	scopeNamespace declScope = iota
	scopeBlock
)

func (p *Parser) parseFileItems(f *ast.File) {
	for !p.at(token.EOF) {
		if p.at(token.Hash) {
			p.parseDirective(f)
			continue
		}
		decls, ok := p.parseDecl(scopeNamespace)
		if !ok {
			p.resync()
			continue
		}
		f.Decls = append(f.Decls, decls...)
	}
}

// parseNamespaceBody parses decls until '}'.
func (p *Parser) parseNamespaceBody() []ast.Decl {
	var out []ast.Decl
	for !p.at(token.RBrace) && !p.at(token.EOF) {
		if p.at(token.Hash) {
			p.err(diag.SynBadDirective, "directives are only allowed at file scope")
			p.resync()
			continue
		}
		decls, ok := p.parseDecl(scopeNamespace)
		if !ok {
			p.resync()
			continue
		}
		out = append(out, decls...)
	}
	return out
}

// resync пропускает токены до ';' (съедая его), '}' или EOF.
func (p *Parser) resync() {
	start := p.pos
	for !p.at(token.EOF) {
		switch p.peek().Kind {
		case token.Semicolon:
			p.advance()
			return
		case token.RBrace:
			if p.pos == start {
				p.advance()
			}
			return
		}
		p.advance()
	}
}
