package ast

import (
	"quill/internal/source"
)

type DirectiveKind uint8

const (
	DirLibrary DirectiveKind = iota + 1
	DirImport
	DirInclude
)

func (k DirectiveKind) String() string {
	switch k {
	case DirLibrary:
		return "library"
	case DirImport:
		return "import"
	case DirInclude:
		return "include"
	}
	return "invalid"
}

// Directive is a `#library`, `#import` or `#include` line.
type Directive struct {
	Kind  DirectiveKind
	Value string
	Span  source.Span
}

// File is one parsed source file. Decls are in source order; nested
// namespace blocks keep their own Decls.
type File struct {
	ID       source.FileID
	Path     string
	Library  *Directive
	Imports  []Directive
	Includes []Directive
	Decls    []Decl
	Span     source.Span
}

// IsLibrary reports whether the file starts a library.
func (f *File) IsLibrary() bool {
	return f.Library != nil
}

// Ident is a single name occurrence.
type Ident struct {
	Name string
	Span source.Span
}

func (id Ident) IsZero() bool { return id.Name == "" }

// Path is `a::b::c`, optionally anchored with `upmost::`.
type Path struct {
	Upmost   bool
	Segments []Ident
	Span     source.Span
}

func (p *Path) String() string {
	if p == nil {
		return ""
	}
	s := ""
	if p.Upmost {
		s = "upmost"
	}
	for i, seg := range p.Segments {
		if i > 0 || p.Upmost {
			s += "::"
		}
		s += seg.Name
	}
	return s
}

// Last returns the terminal segment.
func (p *Path) Last() Ident {
	return p.Segments[len(p.Segments)-1]
}
