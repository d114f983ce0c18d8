package ast

import (
	"quill/internal/source"
	"quill/internal/token"
)

type SpecKind uint8

const (
	SpecKeyword SpecKind = iota // raw int fixed bool str void
	SpecEnum                    // enum Name | enum {...}
	SpecStruct                  // struct Name | struct {...}
	SpecPath                    // a::b::T, resolved by lookup
)

// TypeSpec is a specifier plus its written references. Refs are in source
// order, so Refs[0] is the innermost reference.
type TypeSpec struct {
	Kind    SpecKind
	Keyword token.Kind
	Path    *Path
	Enum    *EnumDecl   // inline body
	Struct  *StructDecl // inline body
	Refs    []RefSpec
	Span    source.Span
}

type RefKind uint8

const (
	RefArray    RefKind = iota // []...&
	RefShape                   // & on the specifier's own shape
	RefFunction                // function(params) [msgbuild] &
)

type RefSpec struct {
	Kind     RefKind
	Dims     int
	Params   []*Param
	MsgBuild bool
	Span     source.Span
}

// Param is a function, script or function-reference parameter.
type Param struct {
	Type    *TypeSpec
	Name    Ident // пусто в function(...) типах
	Default Expr
	Span    source.Span
}
